// Package crc32ccodec implements the "crc32c" bytes→bytes codec: it
// appends a little-endian Castagnoli CRC32 checksum trailer to the
// encoded bytes and validates it on decode. Unlike the compressors, the
// checksummed payload is byte-identical to the wrapped data, so partial
// decode needs no caching fallback: requested ranges are served directly
// from the inner decoder.
package crc32ccodec

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/TuSKan/zarrcore/pkg/codec"
	"github.com/TuSKan/zarrcore/pkg/storekey"
)

const trailerSize = 4

var castagnoliTable = crc32.MakeTable(crc32.Castagnoli)

// Codec is the "crc32c" bytes→bytes codec.
type Codec struct{}

var _ codec.BytesToBytesCodec = Codec{}

func (c Codec) Name() string { return "crc32c" }

func (c Codec) Encode(_ context.Context, decoded []byte, _ codec.Options) ([]byte, error) {
	sum := crc32.Checksum(decoded, castagnoliTable)
	out := make([]byte, len(decoded)+trailerSize)
	copy(out, decoded)
	binary.LittleEndian.PutUint32(out[len(decoded):], sum)
	return out, nil
}

func (c Codec) Decode(_ context.Context, encoded []byte, _ codec.BytesRepresentation, _ codec.Options) ([]byte, error) {
	if len(encoded) < trailerSize {
		return nil, fmt.Errorf("crc32ccodec: encoded value too short for a checksum trailer")
	}
	payload := encoded[:len(encoded)-trailerSize]
	want := binary.LittleEndian.Uint32(encoded[len(encoded)-trailerSize:])
	got := crc32.Checksum(payload, castagnoliTable)
	if got != want {
		return nil, fmt.Errorf("crc32ccodec: checksum mismatch: got %#x, want %#x", got, want)
	}
	return payload, nil
}

func (c Codec) ComputeEncodedSize(input codec.BytesRepresentation) (codec.BytesRepresentation, error) {
	if input.Kind == codec.Unbounded {
		return codec.UnboundedSize(), nil
	}
	return codec.BytesRepresentation{Kind: input.Kind, Size: input.Size + trailerSize}, nil
}

func (c Codec) RecommendedConcurrency(codec.ChunkRepresentation) codec.RecommendedConcurrency {
	return codec.RecommendedConcurrency{Min: 1, Max: 1}
}

// PartialDecoder serves byte ranges directly: the payload precedes the
// trailer byte-for-byte, so no decode step is needed to answer a range
// request that falls entirely within the payload.
func (c Codec) PartialDecoder(_ context.Context, input codec.BytesPartialDecoder, _ codec.Options) (codec.BytesPartialDecoder, error) {
	return &partialDecoder{inner: input}, nil
}

type partialDecoder struct {
	inner codec.BytesPartialDecoder
}

func (p *partialDecoder) PartialDecode(ctx context.Context, ranges []storekey.ByteRange) ([][]byte, error) {
	return p.inner.PartialDecode(ctx, ranges)
}
