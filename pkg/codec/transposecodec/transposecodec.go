// Package transposecodec implements the "transpose" array→array codec: it
// permutes a chunk's axes before the array→bytes codec sees it. The
// element-by-element gather loop is grounded on the teacher's
// strides/copyND approach in reader.go, generalized from a pure memcpy to
// an arbitrary-permutation copy.
package transposecodec

import (
	"context"
	"fmt"

	"github.com/TuSKan/zarrcore/pkg/codec"
	"github.com/TuSKan/zarrcore/pkg/indices"
)

// Codec is the "transpose" array→array codec. Order[i] names which source
// axis becomes axis i of the encoded representation.
type Codec struct {
	Order []int
}

var _ codec.ArrayToArrayCodec = Codec{}

func (c Codec) Name() string { return "transpose" }

func (c Codec) validate(dims int) error {
	if len(c.Order) != dims {
		return fmt.Errorf("transposecodec: order has %d axes, representation has %d", len(c.Order), dims)
	}
	seen := make([]bool, dims)
	for _, a := range c.Order {
		if a < 0 || a >= dims || seen[a] {
			return fmt.Errorf("transposecodec: order %v is not a permutation of [0,%d)", c.Order, dims)
		}
		seen[a] = true
	}
	return nil
}

func inverseOrder(order []int) []int {
	inv := make([]int, len(order))
	for i, a := range order {
		inv[a] = i
	}
	return inv
}

// gather copies buf (shaped fromShape, row-major) into a buffer shaped
// outShape[i] = fromShape[ord[i]], where out[outCoord] = buf[fromCoord]
// with fromCoord[ord[i]] = outCoord[i] for every axis i.
func gather(buf []byte, fromShape []int64, ord []int, elemSize int64) []byte {
	dims := len(fromShape)
	fromStride := indices.Strides(fromShape)

	outShape := make([]int64, dims)
	for i, a := range ord {
		outShape[i] = fromShape[a]
	}
	outStride := indices.Strides(outShape)

	total := int64(1)
	for _, d := range fromShape {
		total *= d
	}
	out := make([]byte, len(buf))

	fromCoord := make([]int64, dims)
	for flat := int64(0); flat < total; flat++ {
		rem := flat
		for d := 0; d < dims; d++ {
			if fromStride[d] == 0 {
				fromCoord[d] = 0
				continue
			}
			fromCoord[d] = rem / fromStride[d]
			rem %= fromStride[d]
		}

		var outFlat int64
		for i, a := range ord {
			outFlat += fromCoord[a] * outStride[i]
		}

		srcOff := flat * elemSize
		dstOff := outFlat * elemSize
		copy(out[dstOff:dstOff+elemSize], buf[srcOff:srcOff+elemSize])
	}
	return out
}

func (c Codec) Encode(_ context.Context, decoded []byte, rep codec.ChunkRepresentation, _ codec.Options) ([]byte, error) {
	if err := c.validate(len(rep.Shape)); err != nil {
		return nil, err
	}
	return gather(decoded, rep.Shape, c.Order, int64(rep.DataType.ElementSize())), nil
}

// Decode inverts the permutation: encoded holds the representation
// ComputeEncodedRepresentation(rep) describes; rep is the original,
// pre-transpose representation to restore.
func (c Codec) Decode(_ context.Context, encoded []byte, rep codec.ChunkRepresentation, _ codec.Options) ([]byte, error) {
	if err := c.validate(len(rep.Shape)); err != nil {
		return nil, err
	}
	encodedRep, err := c.ComputeEncodedRepresentation(rep)
	if err != nil {
		return nil, err
	}
	return gather(encoded, encodedRep.Shape, inverseOrder(c.Order), int64(rep.DataType.ElementSize())), nil
}

func (c Codec) ComputeEncodedRepresentation(rep codec.ChunkRepresentation) (codec.ChunkRepresentation, error) {
	if err := c.validate(len(rep.Shape)); err != nil {
		return codec.ChunkRepresentation{}, err
	}
	shape := make([]int64, len(rep.Shape))
	for i, a := range c.Order {
		shape[i] = rep.Shape[a]
	}
	return codec.ChunkRepresentation{Shape: shape, DataType: rep.DataType, FillValue: rep.FillValue}, nil
}

func (c Codec) RecommendedConcurrency(codec.ChunkRepresentation) codec.RecommendedConcurrency {
	return codec.RecommendedConcurrency{Min: 1, Max: 1}
}
