package transposecodec_test

import (
	"context"
	"testing"

	"github.com/TuSKan/zarrcore/pkg/codec"
	"github.com/TuSKan/zarrcore/pkg/codec/transposecodec"
	"github.com/TuSKan/zarrcore/pkg/datatype"
	"github.com/stretchr/testify/require"
)

func TestTransposeSwapsTwoDimShape(t *testing.T) {
	c := transposecodec.Codec{Order: []int{1, 0}}
	rep := codec.ChunkRepresentation{
		Shape:    []int64{2, 3},
		DataType: datatype.Uint8,
	}
	encodedRep, err := c.ComputeEncodedRepresentation(rep)
	require.NoError(t, err)
	require.Equal(t, []int64{3, 2}, encodedRep.Shape)
}

func TestTransposeEncodeDecodeRoundTrip(t *testing.T) {
	c := transposecodec.Codec{Order: []int{1, 0}}
	rep := codec.ChunkRepresentation{
		Shape:    []int64{2, 3},
		DataType: datatype.Uint8,
	}
	// row-major 2x3: [[0,1,2],[3,4,5]]
	decoded := []byte{0, 1, 2, 3, 4, 5}

	encoded, err := c.Encode(context.Background(), decoded, rep, codec.DefaultOptions())
	require.NoError(t, err)
	// transposed 3x2: [[0,3],[1,4],[2,5]]
	require.Equal(t, []byte{0, 3, 1, 4, 2, 5}, encoded)

	back, err := c.Decode(context.Background(), encoded, rep, codec.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, decoded, back)
}

func TestTransposeRejectsNonPermutation(t *testing.T) {
	c := transposecodec.Codec{Order: []int{0, 0}}
	rep := codec.ChunkRepresentation{Shape: []int64{2, 3}, DataType: datatype.Uint8}
	_, err := c.Encode(context.Background(), make([]byte, 6), rep, codec.DefaultOptions())
	require.Error(t, err)
}
