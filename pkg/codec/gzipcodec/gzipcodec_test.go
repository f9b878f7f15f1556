package gzipcodec_test

import (
	"context"
	"testing"

	"github.com/TuSKan/zarrcore/pkg/codec"
	"github.com/TuSKan/zarrcore/pkg/codec/gzipcodec"
	"github.com/TuSKan/zarrcore/pkg/storekey"
	"github.com/stretchr/testify/require"
)

func TestGzipEncodeDecodeRoundTrip(t *testing.T) {
	c := gzipcodec.Codec{}
	decoded := []byte("the quick brown fox jumps over the lazy dog, repeated: the quick brown fox")

	encoded, err := c.Encode(context.Background(), decoded, codec.DefaultOptions())
	require.NoError(t, err)
	require.NotEqual(t, decoded, encoded)

	back, err := c.Decode(context.Background(), encoded, codec.BytesRepresentation{}, codec.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, decoded, back)
}

type rawStore struct{ data []byte }

func (s *rawStore) PartialDecode(_ context.Context, ranges []storekey.ByteRange) ([][]byte, error) {
	out := make([][]byte, len(ranges))
	for i, r := range ranges {
		resolved, err := r.Resolve(uint64(len(s.data)))
		if err != nil {
			return nil, err
		}
		out[i] = s.data[resolved.Start:resolved.End]
	}
	return out, nil
}

func TestGzipPartialDecoderFetchesOnceAndSlices(t *testing.T) {
	c := gzipcodec.Codec{}
	decoded := []byte("hello world, this is compressed then partially read back")
	encoded, err := c.Encode(context.Background(), decoded, codec.DefaultOptions())
	require.NoError(t, err)

	store := &rawStore{data: encoded}
	pd, err := c.PartialDecoder(context.Background(), store, codec.DefaultOptions())
	require.NoError(t, err)

	length := uint64(5)
	vals, err := pd.PartialDecode(context.Background(), []storekey.ByteRange{storekey.FromStart(0, &length)})
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), vals[0])
}
