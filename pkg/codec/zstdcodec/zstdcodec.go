// Package zstdcodec implements the "zstd" bytes→bytes codec using
// github.com/klauspost/compress/zstd, the compressor already referenced
// by the teacher's dataset metadata handling.
package zstdcodec

import (
	"context"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/TuSKan/zarrcore/pkg/codec"
	"github.com/TuSKan/zarrcore/pkg/storekey"
)

// Codec is the "zstd" bytes→bytes codec.
type Codec struct {
	Level zstd.EncoderLevel
}

var _ codec.BytesToBytesCodec = Codec{}

func (c Codec) Name() string { return "zstd" }

func (c Codec) level() zstd.EncoderLevel {
	if c.Level == 0 {
		return zstd.SpeedDefault
	}
	return c.Level
}

func (c Codec) Encode(_ context.Context, decoded []byte, _ codec.Options) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(c.level()))
	if err != nil {
		return nil, fmt.Errorf("zstdcodec: new encoder: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(decoded, nil), nil
}

func (c Codec) Decode(_ context.Context, encoded []byte, _ codec.BytesRepresentation, _ codec.Options) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstdcodec: new decoder: %w", err)
	}
	defer dec.Close()
	decoded, err := dec.DecodeAll(encoded, nil)
	if err != nil {
		return nil, fmt.Errorf("zstdcodec: decode: %w", err)
	}
	return decoded, nil
}

func (c Codec) ComputeEncodedSize(codec.BytesRepresentation) (codec.BytesRepresentation, error) {
	return codec.UnboundedSize(), nil
}

func (c Codec) RecommendedConcurrency(codec.ChunkRepresentation) codec.RecommendedConcurrency {
	return codec.RecommendedConcurrency{Min: 1, Max: 1}
}

// PartialDecoder falls back to whole-frame caching: zstd frames are not
// byte-range addressable without a seek table this core does not build.
func (c Codec) PartialDecoder(_ context.Context, input codec.BytesPartialDecoder, _ codec.Options) (codec.BytesPartialDecoder, error) {
	return codec.NewCachingBytesPartialDecoder(&decodingPartialDecoder{codec: c, inner: input}), nil
}

type decodingPartialDecoder struct {
	codec Codec
	inner codec.BytesPartialDecoder
}

func (d *decodingPartialDecoder) PartialDecode(ctx context.Context, ranges []storekey.ByteRange) ([][]byte, error) {
	vals, err := d.inner.PartialDecode(ctx, []storekey.ByteRange{storekey.Full()})
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 || vals[0] == nil {
		return nil, fmt.Errorf("zstdcodec: no underlying value to decompress")
	}
	decoded, err := d.codec.Decode(ctx, vals[0], codec.BytesRepresentation{}, codec.DefaultOptions())
	if err != nil {
		return nil, err
	}
	out := make([][]byte, len(ranges))
	for i := range ranges {
		out[i] = decoded
	}
	return out, nil
}
