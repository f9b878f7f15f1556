package memstore_test

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

func TestGetMissingReturnsNotFoundNotError(t *testing.T) {
	s := memstore.New()
	v, ok, err := s.Get(context.Background(), key(t, "missing"))
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, v)
}

func TestSetThenGetRoundTrips(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	k := key(t, "c/0/0")
	require.NoError(t, s.Set(ctx, k, []byte("hello")))

	v, ok, err := s.Get(ctx, k)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("hello"), v)
}

func TestEraseIsIdempotent(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	k := key(t, "c/0/0")
	require.NoError(t, s.Erase(ctx, k))
	require.NoError(t, s.Set(ctx, k, []byte("x")))
	require.NoError(t, s.Erase(ctx, k))
	require.NoError(t, s.Erase(ctx, k))

	_, ok, err := s.Get(ctx, k)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSetPartialValuesComposesReadModifyWrite(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	k := key(t, "c/0/0")
	require.NoError(t, s.Set(ctx, k, []byte("AAAAAAAAAA")))

	err := s.SetPartialValues(ctx, []storage.PartialWrite{
		{Key: k, Offset: 2, Value: []byte("BB")},
	})
	require.NoError(t, err)

	v, ok, err := s.Get(ctx, k)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("AABBAAAAAA"), v)
}

func TestListPrefixAndListDir(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, key(t, "a/zarr.json"), []byte("{}")))
	require.NoError(t, s.Set(ctx, key(t, "a/c/0/0"), []byte("x")))
	require.NoError(t, s.Set(ctx, key(t, "a/c/0/1"), []byte("x")))
	require.NoError(t, s.Set(ctx, key(t, "b/zarr.json"), []byte("{}")))

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)

	root, err := storekey.NewPrefix("")
	require.NoError(t, err)
	keys, prefixes, err := s.ListDir(ctx, root)
	require.NoError(t, err)
	require.Empty(t, keys)
	require.ElementsMatch(t, []storekey.Prefix{"a/", "b/"}, prefixes)

	aPrefix, err := storekey.NewPrefix("a/")
	require.NoError(t, err)
	keys, prefixes, err = s.ListDir(ctx, aPrefix)
	require.NoError(t, err)
	require.ElementsMatch(t, []storekey.Key{"a/zarr.json"}, keys)
	require.ElementsMatch(t, []storekey.Prefix{"a/c/"}, prefixes)
}

func TestSizePrefix(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, key(t, "a/x"), []byte("12345")))
	require.NoError(t, s.Set(ctx, key(t, "a/y"), []byte("12")))
	require.NoError(t, s.Set(ctx, key(t, "b/z"), []byte("1")))

	p, err := storekey.NewPrefix("a/")
	require.NoError(t, err)
	total, err := s.SizePrefix(ctx, p)
	require.NoError(t, err)
	require.Equal(t, uint64(7), total)
}
