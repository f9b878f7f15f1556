// Package codec defines the three codec kinds of the codec pipeline
// (array→array, array→bytes, bytes→bytes), the chain that owns them, and
// the partial-decoder contracts that let a chunk be read without
// materializing its full decoded form.
package codec

import (
	"context"

	"github.com/TuSKan/zarrcore/pkg/datatype"
	"github.com/TuSKan/zarrcore/pkg/indices"
	"github.com/TuSKan/zarrcore/pkg/storekey"
)

// ChunkRepresentation is the (shape, data type, fill value) triple a codec
// operates against at one stage of the chain.
type ChunkRepresentation struct {
	Shape     []int64
	DataType  datatype.DataType
	FillValue datatype.FillValue
}

// NumElements returns the product of Shape.
func (r ChunkRepresentation) NumElements() int64 {
	n := int64(1)
	for _, d := range r.Shape {
		n *= d
	}
	return n
}

// DecodedSize returns the byte length of this representation's fully
// decoded form.
func (r ChunkRepresentation) DecodedSize() int64 {
	return r.NumElements() * int64(r.DataType.ElementSize())
}

// BytesRepresentationKind discriminates the three possible encoded-size
// outcomes of a codec or chain.
type BytesRepresentationKind int

const (
	// Fixed means the encoded form is always exactly Size bytes.
	Fixed BytesRepresentationKind = iota
	// Bounded means the encoded form is at most Size bytes.
	Bounded
	// Unbounded means no upper bound is known ahead of encoding.
	Unbounded
)

// BytesRepresentation describes the possible encoded size of a codec or
// chain applied to a chunk representation.
type BytesRepresentation struct {
	Kind BytesRepresentationKind
	Size int64 // meaningful when Kind != Unbounded
}

// FixedSize constructs a Fixed BytesRepresentation.
func FixedSize(n int64) BytesRepresentation { return BytesRepresentation{Kind: Fixed, Size: n} }

// BoundedSize constructs a Bounded BytesRepresentation.
func BoundedSize(n int64) BytesRepresentation { return BytesRepresentation{Kind: Bounded, Size: n} }

// UnboundedSize constructs an Unbounded BytesRepresentation.
func UnboundedSize() BytesRepresentation { return BytesRepresentation{Kind: Unbounded} }

// RecommendedConcurrency is the [Min, Max] range of internal concurrency a
// codec can usefully exploit for one chunk, used by the concurrency
// controller (spec.md §4.8) to decide whether to parallelize inside a
// codec or at chunk granularity.
type RecommendedConcurrency struct {
	Min int
	Max int
}

// ArrayToArrayCodec transforms decoded element bytes into decoded element
// bytes of the same element count but possibly a different data type or
// shape permutation (e.g. transpose).
type ArrayToArrayCodec interface {
	Name() string
	Encode(ctx context.Context, decoded []byte, rep ChunkRepresentation, opts Options) (encoded []byte, err error)
	Decode(ctx context.Context, encoded []byte, rep ChunkRepresentation, opts Options) (decoded []byte, err error)
	// ComputeEncodedRepresentation transforms rep into the representation
	// the next stage of the chain will see.
	ComputeEncodedRepresentation(rep ChunkRepresentation) (ChunkRepresentation, error)
	RecommendedConcurrency(rep ChunkRepresentation) RecommendedConcurrency
}

// ArrayToBytesCodec converts decoded element bytes into an opaque byte
// sequence. Exactly one must be present per chain.
type ArrayToBytesCodec interface {
	Name() string
	Encode(ctx context.Context, decoded []byte, rep ChunkRepresentation, opts Options) (encoded []byte, err error)
	Decode(ctx context.Context, encoded []byte, rep ChunkRepresentation, opts Options) (decoded []byte, err error)
	ComputeEncodedSize(rep ChunkRepresentation) (BytesRepresentation, error)
	RecommendedConcurrency(rep ChunkRepresentation) RecommendedConcurrency

	// PartialDecoder builds an ArrayPartialDecoder over this codec's
	// encoded bytes, backed by a BytesPartialDecoder for the next layer in
	// (toward storage).
	PartialDecoder(ctx context.Context, input BytesPartialDecoder, rep ChunkRepresentation, opts Options) (ArrayPartialDecoder, error)
}

// BytesToBytesCodec wraps a byte sequence, usually for compression or
// checksumming. Must preserve byte identity on round-trip.
type BytesToBytesCodec interface {
	Name() string
	Encode(ctx context.Context, decoded []byte, opts Options) (encoded []byte, err error)
	Decode(ctx context.Context, encoded []byte, decodedSize BytesRepresentation, opts Options) (decoded []byte, err error)
	ComputeEncodedSize(input BytesRepresentation) (BytesRepresentation, error)
	RecommendedConcurrency(rep ChunkRepresentation) RecommendedConcurrency

	// PartialDecoder builds a BytesPartialDecoder that serves byte-range
	// requests against this codec's decoded output, backed by a
	// BytesPartialDecoder for the next layer in (toward storage).
	PartialDecoder(ctx context.Context, input BytesPartialDecoder, opts Options) (BytesPartialDecoder, error)
}

// BytesPartialDecoder serves byte-range requests without necessarily
// materializing the full value. The terminal instance in a chain reads
// byte ranges directly from a store key.
type BytesPartialDecoder interface {
	PartialDecode(ctx context.Context, ranges []storekey.ByteRange) ([][]byte, error)
}

// ArrayPartialDecoder serves array-subset requests without necessarily
// materializing the full decoded chunk.
type ArrayPartialDecoder interface {
	PartialDecode(ctx context.Context, subset indices.Subset, opts Options) ([]byte, error)
}
