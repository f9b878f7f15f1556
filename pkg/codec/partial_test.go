package codec_test

import (
	"context"
	"testing"

	"github.com/TuSKan/zarrcore/pkg/codec"
	"github.com/TuSKan/zarrcore/pkg/storekey"
	"github.com/stretchr/testify/require"
)

func TestCachingBytesPartialDecoderFetchesOnce(t *testing.T) {
	calls := 0
	inner := &countingPartialDecoder{data: []byte("hello world"), calls: &calls}
	caching := codec.NewCachingBytesPartialDecoder(inner)

	length := uint64(5)
	got, err := caching.PartialDecode(context.Background(), []storekey.ByteRange{storekey.FromStart(0, &length)})
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("hello")}, got)

	length2 := uint64(5)
	got, err = caching.PartialDecode(context.Background(), []storekey.ByteRange{storekey.FromStart(6, &length2)})
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("world")}, got)

	require.Equal(t, 1, calls)
}

func TestCachingBytesPartialDecoderErrorsOnMissingValue(t *testing.T) {
	inner := &countingPartialDecoder{missing: true}
	caching := codec.NewCachingBytesPartialDecoder(inner)

	_, err := caching.PartialDecode(context.Background(), []storekey.ByteRange{storekey.Full()})
	require.Error(t, err)
}

type countingPartialDecoder struct {
	data    []byte
	missing bool
	calls   *int
}

func (c *countingPartialDecoder) PartialDecode(_ context.Context, ranges []storekey.ByteRange) ([][]byte, error) {
	*c.calls++
	if c.missing {
		return [][]byte{nil}, nil
	}
	out := make([][]byte, len(ranges))
	for i, r := range ranges {
		resolved, err := r.Resolve(uint64(len(c.data)))
		if err != nil {
			return nil, err
		}
		out[i] = c.data[resolved.Start:resolved.End]
	}
	return out, nil
}
