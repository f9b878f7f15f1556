package storage_test

import (
	"context"
	"testing"

	"github.com/TuSKan/zarrcore/pkg/storage"
	"github.com/TuSKan/zarrcore/pkg/storekey"
	"github.com/TuSKan/zarrcore/store/memstore"
	"github.com/stretchr/testify/require"
)

func key(t *testing.T, s string) storekey.Key {
	t.Helper()
	k, err := storekey.NewKey(s)
	require.NoError(t, err)
	return k
}

func TestAsyncReadableMatchesSyncSemantics(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, key(t, "a"), []byte("hello world")))

	ar := storage.AsyncReadable{Inner: s}

	get, err := ar.Get(ctx, key(t, "a")).Wait()
	require.NoError(t, err)
	require.True(t, get.OK())
	require.Equal(t, []byte("hello world"), get.Value())

	size, err := ar.Size(ctx, key(t, "a")).Wait()
	require.NoError(t, err)
	require.True(t, size.OK())
	require.Equal(t, uint64(11), size.Size())

	total, err := ar.SizeAll(ctx).Wait()
	require.NoError(t, err)
	require.Equal(t, uint64(11), total)

	prefixTotal, err := ar.SizePrefix(ctx, storekey.RootPrefix).Wait()
	require.NoError(t, err)
	require.Equal(t, uint64(11), prefixTotal)

	partial, err := ar.GetPartialValuesKey(ctx, key(t, "a"), []storekey.ByteRange{storekey.FromEnd(5, nil)}).Wait()
	require.NoError(t, err)
	require.True(t, partial.OK())
	require.Equal(t, [][]byte{[]byte("world")}, partial.Values())

	batch, err := ar.GetPartialValues(ctx, []storekey.KeyRange{{Key: key(t, "a"), Range: storekey.FromEnd(5, nil)}}).Wait()
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("world")}, batch)
}

func TestAsyncWritableMatchesSyncSemantics(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	aw := storage.AsyncWritable{Inner: s}

	_, err := aw.Set(ctx, key(t, "a"), []byte("0123456789")).Wait()
	require.NoError(t, err)

	_, err = aw.SetPartialValues(ctx, []storage.PartialWrite{{Key: key(t, "a"), Offset: 0, Value: []byte("XY")}}).Wait()
	require.NoError(t, err)
	got, ok, err := s.Get(ctx, key(t, "a"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("XY23456789"), got)

	_, err = aw.EraseValues(ctx, []storekey.Key{key(t, "a")}).Wait()
	require.NoError(t, err)
	_, ok, err = s.Get(ctx, key(t, "a"))
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set(ctx, key(t, "dir/a"), []byte("x")))
	_, err = aw.ErasePrefix(ctx, storekey.RootPrefix).Wait()
	require.NoError(t, err)
	_, ok, err = s.Get(ctx, key(t, "dir/a"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestAsyncListableMatchesSyncSemantics(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, key(t, "a/0"), []byte("x")))
	require.NoError(t, s.Set(ctx, key(t, "b"), []byte("y")))

	al := storage.AsyncListable{Inner: s}

	all, err := al.List(ctx).Wait()
	require.NoError(t, err)
	require.Len(t, all, 2)

	prefixed, err := al.ListPrefix(ctx, storekey.RootPrefix).Wait()
	require.NoError(t, err)
	require.Len(t, prefixed, 2)

	dir, err := al.ListDir(ctx, storekey.RootPrefix).Wait()
	require.NoError(t, err)
	require.Equal(t, []storekey.Key{key(t, "b")}, dir.Keys())
	require.Len(t, dir.Prefixes(), 1)
}
