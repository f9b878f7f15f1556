package bytescodec_test

import (
	"context"
	"testing"

	"github.com/TuSKan/zarrcore/pkg/codec"
	"github.com/TuSKan/zarrcore/pkg/codec/bytescodec"
	"github.com/TuSKan/zarrcore/pkg/datatype"
	"github.com/TuSKan/zarrcore/pkg/indices"
	"github.com/TuSKan/zarrcore/pkg/storekey"
	"github.com/stretchr/testify/require"
)

func rep() codec.ChunkRepresentation {
	return codec.ChunkRepresentation{
		Shape:     []int64{4},
		DataType:  datatype.Uint16,
		FillValue: datatype.Zero(datatype.Uint16),
	}
}

func TestLittleEndianIsPassthrough(t *testing.T) {
	c := bytescodec.Codec{Endian: bytescodec.Little}
	decoded := []byte{1, 0, 2, 0, 3, 0, 4, 0}
	encoded, err := c.Encode(context.Background(), decoded, rep(), codec.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, decoded, encoded)
}

func TestBigEndianSwapsBytesAndRoundTrips(t *testing.T) {
	c := bytescodec.Codec{Endian: bytescodec.Big}
	decoded := []byte{1, 0, 2, 0, 3, 0, 4, 0}
	encoded, err := c.Encode(context.Background(), decoded, rep(), codec.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, []byte{0, 1, 0, 2, 0, 3, 0, 4}, encoded)

	back, err := c.Decode(context.Background(), encoded, rep(), codec.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, decoded, back)
}

func TestEncodeRejectsWrongLength(t *testing.T) {
	c := bytescodec.Codec{Endian: bytescodec.Little}
	_, err := c.Encode(context.Background(), []byte{1, 2, 3}, rep(), codec.DefaultOptions())
	require.Error(t, err)
}

type sliceStore struct{ data []byte }

func (s *sliceStore) PartialDecode(_ context.Context, ranges []storekey.ByteRange) ([][]byte, error) {
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

func TestPartialDecodeReturnsRequestedSubsetOnly(t *testing.T) {
	c := bytescodec.Codec{Endian: bytescodec.Little}
	store := &sliceStore{data: []byte{1, 0, 2, 0, 3, 0, 4, 0}}
	pd, err := c.PartialDecoder(context.Background(), store, rep(), codec.DefaultOptions())
	require.NoError(t, err)

	sub, err := indices.New([]int64{1}, []int64{2})
	require.NoError(t, err)
	got, err := pd.PartialDecode(context.Background(), sub, codec.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, []byte{2, 0, 3, 0}, got)
}
