package shardingcodec_test

import (
	"context"
	"testing"

	"github.com/TuSKan/zarrcore/pkg/codec"
	"github.com/TuSKan/zarrcore/pkg/codec/bytescodec"
	"github.com/TuSKan/zarrcore/pkg/codec/crc32ccodec"
	"github.com/TuSKan/zarrcore/pkg/codec/shardingcodec"
	"github.com/TuSKan/zarrcore/pkg/datatype"
	"github.com/TuSKan/zarrcore/pkg/indices"
	"github.com/TuSKan/zarrcore/pkg/storekey"
	"github.com/stretchr/testify/require"
)

func innerChain(t *testing.T) *codec.Chain {
	t.Helper()
	chain, err := codec.NewChain(nil, bytescodec.Codec{Endian: bytescodec.Little}, nil)
	require.NoError(t, err)
	return chain
}

func shardRep() codec.ChunkRepresentation {
	return codec.ChunkRepresentation{
		Shape:     []int64{4, 4},
		DataType:  datatype.Uint8,
		FillValue: datatype.Zero(datatype.Uint8),
	}
}

func sequentialData(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(i)
	}
	return out
}

type memStore struct{ data []byte }

func (s *memStore) PartialDecode(_ context.Context, ranges []storekey.ByteRange) ([][]byte, error) {
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

func TestShardingEncodeDecodeRoundTrip(t *testing.T) {
	c := shardingcodec.Codec{
		ChunkShape:    []int64{2, 2},
		Codecs:        innerChain(t),
		IndexCodecs:   []codec.BytesToBytesCodec{crc32ccodec.Codec{}},
		IndexLocation: shardingcodec.IndexEnd,
	}
	rep := shardRep()
	decoded := sequentialData(16)

	encoded, err := c.Encode(context.Background(), decoded, rep, codec.DefaultOptions())
	require.NoError(t, err)

	back, err := c.Decode(context.Background(), encoded, rep, codec.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, decoded, back)
}

func TestShardingEncodeDecodeRoundTripIndexAtStart(t *testing.T) {
	c := shardingcodec.Codec{
		ChunkShape:    []int64{2, 2},
		Codecs:        innerChain(t),
		IndexLocation: shardingcodec.IndexStart,
	}
	rep := shardRep()
	decoded := sequentialData(16)

	encoded, err := c.Encode(context.Background(), decoded, rep, codec.DefaultOptions())
	require.NoError(t, err)

	back, err := c.Decode(context.Background(), encoded, rep, codec.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, decoded, back)
}

func TestShardingEncodeErasesFillValueOnlyInnerChunk(t *testing.T) {
	c := shardingcodec.Codec{
		ChunkShape: []int64{2, 2},
		Codecs:     innerChain(t),
	}
	rep := shardRep()
	// Inner chunk (0,0) (rows 0-1, cols 0-1) is entirely fill value (0); the
	// other three inner chunks are not.
	decoded := []byte{
		0, 0, 3, 4,
		0, 0, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	}

	encoded, err := c.Encode(context.Background(), decoded, rep, codec.DefaultOptions())
	require.NoError(t, err)

	const indexSize = 4 * 16  // four entries, no index codecs
	const innerSize = 2 * 2 * 1 // one uint8 inner chunk, bytes codec only
	require.Equal(t, indexSize+3*innerSize, len(encoded))

	back, err := c.Decode(context.Background(), encoded, rep, codec.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, decoded, back)
}

func TestShardingPartialDecodeReadsOnlyRelevantInnerChunks(t *testing.T) {
	c := shardingcodec.Codec{
		ChunkShape:    []int64{2, 2},
		Codecs:        innerChain(t),
		IndexCodecs:   []codec.BytesToBytesCodec{crc32ccodec.Codec{}},
		IndexLocation: shardingcodec.IndexEnd,
	}
	rep := shardRep()
	decoded := sequentialData(16)

	encoded, err := c.Encode(context.Background(), decoded, rep, codec.DefaultOptions())
	require.NoError(t, err)

	store := &memStore{data: encoded}
	pd, err := c.PartialDecoder(context.Background(), store, rep, codec.DefaultOptions())
	require.NoError(t, err)

	sub, err := indices.New([]int64{2, 2}, []int64{2, 2})
	require.NoError(t, err)
	got, err := pd.PartialDecode(context.Background(), sub, codec.DefaultOptions())
	require.NoError(t, err)

	want := []byte{10, 11, 14, 15}
	require.Equal(t, want, got)
}
