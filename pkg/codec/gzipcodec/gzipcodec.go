// Package gzipcodec implements the "gzip" bytes→bytes codec. It is
// grounded on the teacher's zlib.NewReader decompression path in
// reader.go, generalized from zlib to gzip framing and from
// compress/zlib to klauspost/compress's drop-in gzip, which the teacher's
// go.mod already pulls in transitively through klauspost/compress.
package gzipcodec

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/TuSKan/zarrcore/pkg/codec"
	"github.com/TuSKan/zarrcore/pkg/storekey"
)

// Codec is the "gzip" bytes→bytes codec.
type Codec struct {
	// Level is the compression level, gzip.DefaultCompression if zero.
	Level int
}

var _ codec.BytesToBytesCodec = Codec{}

func (c Codec) Name() string { return "gzip" }

func (c Codec) level() int {
	if c.Level == 0 {
		return gzip.DefaultCompression
	}
	return c.Level
}

func (c Codec) Encode(_ context.Context, decoded []byte, _ codec.Options) ([]byte, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, c.level())
	if err != nil {
		return nil, fmt.Errorf("gzipcodec: new writer: %w", err)
	}
	if _, err := w.Write(decoded); err != nil {
		return nil, fmt.Errorf("gzipcodec: write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("gzipcodec: close: %w", err)
	}
	return buf.Bytes(), nil
}

func (c Codec) Decode(_ context.Context, encoded []byte, _ codec.BytesRepresentation, _ codec.Options) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("gzipcodec: new reader: %w", err)
	}
	defer r.Close()
	decoded, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("gzipcodec: read: %w", err)
	}
	return decoded, nil
}

func (c Codec) ComputeEncodedSize(codec.BytesRepresentation) (codec.BytesRepresentation, error) {
	return codec.UnboundedSize(), nil
}

func (c Codec) RecommendedConcurrency(codec.ChunkRepresentation) codec.RecommendedConcurrency {
	return codec.RecommendedConcurrency{Min: 1, Max: 1}
}

// PartialDecoder falls back to whole-value caching: gzip's entropy coding
// has no random-access structure, so any subset request requires
// decompressing the full stream once.
func (c Codec) PartialDecoder(_ context.Context, input codec.BytesPartialDecoder, _ codec.Options) (codec.BytesPartialDecoder, error) {
	return codec.NewCachingBytesPartialDecoder(&decodingPartialDecoder{codec: c, inner: input}), nil
}

// decodingPartialDecoder decompresses the inner value in full; it is only
// ever asked for storekey.Full(), since it sits behind
// CachingBytesPartialDecoder.
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
		return nil, fmt.Errorf("gzipcodec: no underlying value to decompress")
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
