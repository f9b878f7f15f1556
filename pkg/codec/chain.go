package codec

import (
	"context"
	"fmt"

	"github.com/TuSKan/zarrcore/pkg/indices"
)

// Chain is an ordered codec pipeline: zero or more array→array codecs,
// exactly one array→bytes codec, and zero or more bytes→bytes codecs. The
// intermediate representations are derived on demand by each call; the
// chain does not cache them.
type Chain struct {
	ArrayToArray []ArrayToArrayCodec
	ArrayToBytes ArrayToBytesCodec
	BytesToBytes []BytesToBytesCodec
}

// NewChain constructs a Chain, requiring exactly one array→bytes codec.
func NewChain(arrayToArray []ArrayToArrayCodec, arrayToBytes ArrayToBytesCodec, bytesToBytes []BytesToBytesCodec) (*Chain, error) {
	if arrayToBytes == nil {
		return nil, fmt.Errorf("codec: chain requires exactly one array->bytes codec, got none")
	}
	return &Chain{
		ArrayToArray: append([]ArrayToArrayCodec(nil), arrayToArray...),
		ArrayToBytes: arrayToBytes,
		BytesToBytes: append([]BytesToBytesCodec(nil), bytesToBytes...),
	}, nil
}

// arrayRepresentations returns the chunk representation seen before each
// array→array codec runs, plus the final representation the array→bytes
// codec sees, in order: [rep, after-a2a[0], after-a2a[1], ..., final].
func (c *Chain) arrayRepresentations(rep ChunkRepresentation) ([]ChunkRepresentation, error) {
	reps := make([]ChunkRepresentation, 0, len(c.ArrayToArray)+1)
	reps = append(reps, rep)
	cur := rep
	for _, codec := range c.ArrayToArray {
		next, err := codec.ComputeEncodedRepresentation(cur)
		if err != nil {
			return nil, fmt.Errorf("codec: %s compute_encoded_size: %w", codec.Name(), err)
		}
		reps = append(reps, next)
		cur = next
	}
	return reps, nil
}

// bytesRepresentations returns the encoded-size estimate after the
// array→bytes codec, then after each bytes→bytes codec, in order:
// [after-a2b, after-b2b[0], ..., final].
func (c *Chain) bytesRepresentations(finalArrayRep ChunkRepresentation) ([]BytesRepresentation, error) {
	a2bSize, err := c.ArrayToBytes.ComputeEncodedSize(finalArrayRep)
	if err != nil {
		return nil, fmt.Errorf("codec: %s compute_encoded_size: %w", c.ArrayToBytes.Name(), err)
	}
	reps := make([]BytesRepresentation, 0, len(c.BytesToBytes)+1)
	reps = append(reps, a2bSize)
	cur := a2bSize
	for _, codec := range c.BytesToBytes {
		next, err := codec.ComputeEncodedSize(cur)
		if err != nil {
			return nil, fmt.Errorf("codec: %s compute_encoded_size: %w", codec.Name(), err)
		}
		reps = append(reps, next)
		cur = next
	}
	return reps, nil
}

// EncodedRepresentation returns the chain's overall encoded-size estimate
// for a chunk representation: fixed, bounded, or unbounded.
func (c *Chain) EncodedRepresentation(rep ChunkRepresentation) (BytesRepresentation, error) {
	arrayReps, err := c.arrayRepresentations(rep)
	if err != nil {
		return BytesRepresentation{}, err
	}
	bytesReps, err := c.bytesRepresentations(arrayReps[len(arrayReps)-1])
	if err != nil {
		return BytesRepresentation{}, err
	}
	return bytesReps[len(bytesReps)-1], nil
}

// Encode runs decoded chunk bytes forward through the whole chain:
// array→array codecs in order, then the array→bytes codec, then
// bytes→bytes codecs in order.
func (c *Chain) Encode(ctx context.Context, decoded []byte, rep ChunkRepresentation, opts Options) ([]byte, error) {
	cur := decoded
	curRep := rep
	for _, codec := range c.ArrayToArray {
		var err error
		cur, err = codec.Encode(ctx, cur, curRep, opts)
		if err != nil {
			return nil, fmt.Errorf("codec: %s encode: %w", codec.Name(), err)
		}
		curRep, err = codec.ComputeEncodedRepresentation(curRep)
		if err != nil {
			return nil, fmt.Errorf("codec: %s compute_encoded_size: %w", codec.Name(), err)
		}
	}

	bytesOut, err := c.ArrayToBytes.Encode(ctx, cur, curRep, opts)
	if err != nil {
		return nil, fmt.Errorf("codec: %s encode: %w", c.ArrayToBytes.Name(), err)
	}

	for _, codec := range c.BytesToBytes {
		bytesOut, err = codec.Encode(ctx, bytesOut, opts)
		if err != nil {
			return nil, fmt.Errorf("codec: %s encode: %w", codec.Name(), err)
		}
	}
	return bytesOut, nil
}

// Decode runs encoded bytes backward through the whole chain:
// bytes→bytes codecs in reverse order, then the array→bytes codec, then
// array→array codecs in reverse order.
func (c *Chain) Decode(ctx context.Context, encoded []byte, rep ChunkRepresentation, opts Options) ([]byte, error) {
	arrayReps, err := c.arrayRepresentations(rep)
	if err != nil {
		return nil, err
	}
	finalArrayRep := arrayReps[len(arrayReps)-1]
	bytesReps, err := c.bytesRepresentations(finalArrayRep)
	if err != nil {
		return nil, err
	}

	cur := encoded
	for i := len(c.BytesToBytes) - 1; i >= 0; i-- {
		var want BytesRepresentation
		if i == 0 {
			want = bytesReps[0]
		} else {
			want = bytesReps[i]
		}
		var derr error
		cur, derr = c.BytesToBytes[i].Decode(ctx, cur, want, opts)
		if derr != nil {
			return nil, fmt.Errorf("codec: %s decode: %w", c.BytesToBytes[i].Name(), derr)
		}
	}

	arrBytes, err := c.ArrayToBytes.Decode(ctx, cur, finalArrayRep, opts)
	if err != nil {
		return nil, fmt.Errorf("codec: %s decode: %w", c.ArrayToBytes.Name(), err)
	}

	for i := len(c.ArrayToArray) - 1; i >= 0; i-- {
		arrBytes, err = c.ArrayToArray[i].Decode(ctx, arrBytes, arrayReps[i], opts)
		if err != nil {
			return nil, fmt.Errorf("codec: %s decode: %w", c.ArrayToArray[i].Name(), err)
		}
	}
	return arrBytes, nil
}

// PartialDecoder builds an ArrayPartialDecoder over encoded bytes reachable
// through input (the next layer in, toward storage), for chunk
// representation rep. When the chain includes array→array codecs, whose
// subset remapping this core does not special-case per-codec, partial
// decode falls back to a full fetch-and-decode, then a local slice —
// still a single store round trip, matching the "cannot be partially
// decoded" fallback of spec.md §4.6 for codecs without a native partial
// path.
func (c *Chain) PartialDecoder(ctx context.Context, input BytesPartialDecoder, rep ChunkRepresentation, opts Options) (ArrayPartialDecoder, error) {
	arrayReps, err := c.arrayRepresentations(rep)
	if err != nil {
		return nil, err
	}
	finalArrayRep := arrayReps[len(arrayReps)-1]

	pd := input
	for i := len(c.BytesToBytes) - 1; i >= 0; i-- {
		pd, err = c.BytesToBytes[i].PartialDecoder(ctx, pd, opts)
		if err != nil {
			return nil, fmt.Errorf("codec: %s partial_decoder: %w", c.BytesToBytes[i].Name(), err)
		}
	}

	arrayPD, err := c.ArrayToBytes.PartialDecoder(ctx, pd, finalArrayRep, opts)
	if err != nil {
		return nil, fmt.Errorf("codec: %s partial_decoder: %w", c.ArrayToBytes.Name(), err)
	}

	if len(c.ArrayToArray) == 0 {
		return arrayPD, nil
	}
	return &fallbackPartialDecoder{chain: c, rep: rep, raw: input, opts: opts}, nil
}

// fallbackPartialDecoder serves subset requests by fetching the chunk's
// full raw encoded bytes once, fully decoding, and slicing locally.
type fallbackPartialDecoder struct {
	chain *Chain
	rep   ChunkRepresentation
	raw   BytesPartialDecoder
	opts  Options

	decoded []byte
	err     error
	fetched bool
}

func (f *fallbackPartialDecoder) PartialDecode(ctx context.Context, subset indices.Subset, opts Options) ([]byte, error) {
	if !f.fetched {
		f.fetched = true
		raw, err := fullFetch(ctx, f.raw)
		if err != nil {
			f.err = err
		} else {
			f.decoded, f.err = f.chain.Decode(ctx, raw, f.rep, f.opts)
		}
	}
	if f.err != nil {
		return nil, f.err
	}

	elemSize := int64(f.rep.DataType.ElementSize())
	out := make([]byte, subset.NumElements()*elemSize)
	runs := indices.NewContiguousLinearisedIndices(subset, f.rep.Shape)
	dstOff := int64(0)
	for {
		run, ok := runs.Next()
		if !ok {
			break
		}
		srcStart := run.Offset * elemSize
		srcEnd := srcStart + run.Length*elemSize
		n := srcEnd - srcStart
		copy(out[dstOff:dstOff+n], f.decoded[srcStart:srcEnd])
		dstOff += n
	}
	return out, nil
}
