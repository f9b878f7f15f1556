// Package bytescodec implements the "bytes" array→bytes codec: it packs
// decoded elements into their raw byte representation, optionally
// byte-swapping to big-endian. The in-memory decoded form used throughout
// this module is always little-endian, matching reader.go's ParseDType
// convention in the teacher package, so little-endian encode/decode is a
// plain copy and only big-endian requires per-element swapping.
package bytescodec

import (
	"context"
	"fmt"

	"github.com/TuSKan/zarrcore/pkg/codec"
	"github.com/TuSKan/zarrcore/pkg/indices"
	"github.com/TuSKan/zarrcore/pkg/storekey"
)

// Endian selects the byte order of the encoded representation.
type Endian string

const (
	Little Endian = "little"
	Big    Endian = "big"
)

// Codec is the "bytes" array→bytes codec.
type Codec struct {
	Endian Endian
}

var _ codec.ArrayToBytesCodec = Codec{}

func (c Codec) Name() string { return "bytes" }

func (c Codec) swap(buf []byte, elemSize int) []byte {
	if c.Endian != Big || elemSize <= 1 {
		return buf
	}
	out := make([]byte, len(buf))
	n := len(buf) / elemSize
	for i := 0; i < n; i++ {
		src := buf[i*elemSize : (i+1)*elemSize]
		dst := out[i*elemSize : (i+1)*elemSize]
		for j := 0; j < elemSize; j++ {
			dst[j] = src[elemSize-1-j]
		}
	}
	return out
}

func (c Codec) Encode(_ context.Context, decoded []byte, rep codec.ChunkRepresentation, _ codec.Options) ([]byte, error) {
	elemSize := rep.DataType.ElementSize()
	if int64(len(decoded)) != rep.DecodedSize() {
		return nil, fmt.Errorf("bytescodec: encode expected %d bytes, got %d", rep.DecodedSize(), len(decoded))
	}
	return c.swap(decoded, elemSize), nil
}

func (c Codec) Decode(_ context.Context, encoded []byte, rep codec.ChunkRepresentation, _ codec.Options) ([]byte, error) {
	elemSize := rep.DataType.ElementSize()
	if int64(len(encoded)) != rep.DecodedSize() {
		return nil, fmt.Errorf("bytescodec: decode expected %d bytes, got %d", rep.DecodedSize(), len(encoded))
	}
	return c.swap(encoded, elemSize), nil
}

func (c Codec) ComputeEncodedSize(rep codec.ChunkRepresentation) (codec.BytesRepresentation, error) {
	return codec.FixedSize(rep.DecodedSize()), nil
}

func (c Codec) RecommendedConcurrency(codec.ChunkRepresentation) codec.RecommendedConcurrency {
	return codec.RecommendedConcurrency{Min: 1, Max: 1}
}

// PartialDecoder builds a true random-access ArrayPartialDecoder: each
// requested subset is translated into the minimal set of contiguous byte
// ranges within the encoded representation and fetched directly, mirroring
// the offset arithmetic of the teacher's processChunk/ReadRegion.
func (c Codec) PartialDecoder(_ context.Context, input codec.BytesPartialDecoder, rep codec.ChunkRepresentation, _ codec.Options) (codec.ArrayPartialDecoder, error) {
	return &partialDecoder{codec: c, input: input, rep: rep}, nil
}

type partialDecoder struct {
	codec Codec
	input codec.BytesPartialDecoder
	rep   codec.ChunkRepresentation
}

func (p *partialDecoder) PartialDecode(ctx context.Context, subset indices.Subset, _ codec.Options) ([]byte, error) {
	elemSize := int64(p.rep.DataType.ElementSize())
	runs := indices.NewContiguousLinearisedIndices(subset, p.rep.Shape)

	ranges := make([]storekey.ByteRange, 0, runs.Len())
	for {
		run, ok := runs.Next()
		if !ok {
			break
		}
		length := uint64(run.Length * elemSize)
		ranges = append(ranges, storekey.FromStart(uint64(run.Offset*elemSize), &length))
	}

	values, err := p.input.PartialDecode(ctx, ranges)
	if err != nil {
		return nil, fmt.Errorf("bytescodec: partial decode: %w", err)
	}

	out := make([]byte, 0, subset.NumElements()*elemSize)
	for _, v := range values {
		out = append(out, p.codec.swap(v, int(elemSize))...)
	}
	return out, nil
}
