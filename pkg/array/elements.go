package array

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/TuSKan/zarrcore/pkg/indices"
)

// numeric is the set of element types the typed accessors below support.
// Float16, bfloat16, and complex data types are handled only through the
// untyped []byte operations (RetrieveArraySubset/StoreArraySubset).
type numeric interface {
	int8 | int16 | int32 | int64 |
		uint8 | uint16 | uint32 | uint64 |
		float32 | float64
}

func encodeElement[T numeric](dst []byte, v T) error {
	switch x := any(v).(type) {
	case int8:
		dst[0] = byte(x)
	case uint8:
		dst[0] = x
	case int16:
		binary.LittleEndian.PutUint16(dst, uint16(x))
	case uint16:
		binary.LittleEndian.PutUint16(dst, x)
	case int32:
		binary.LittleEndian.PutUint32(dst, uint32(x))
	case uint32:
		binary.LittleEndian.PutUint32(dst, x)
	case int64:
		binary.LittleEndian.PutUint64(dst, uint64(x))
	case uint64:
		binary.LittleEndian.PutUint64(dst, x)
	case float32:
		binary.LittleEndian.PutUint32(dst, math.Float32bits(x))
	case float64:
		binary.LittleEndian.PutUint64(dst, math.Float64bits(x))
	default:
		return fmt.Errorf("array: unsupported element type %T", v)
	}
	return nil
}

func decodeElement[T numeric](src []byte) (T, error) {
	var zero T
	switch any(zero).(type) {
	case int8:
		return any(int8(src[0])).(T), nil
	case uint8:
		return any(src[0]).(T), nil
	case int16:
		return any(int16(binary.LittleEndian.Uint16(src))).(T), nil
	case uint16:
		return any(binary.LittleEndian.Uint16(src)).(T), nil
	case int32:
		return any(int32(binary.LittleEndian.Uint32(src))).(T), nil
	case uint32:
		return any(binary.LittleEndian.Uint32(src)).(T), nil
	case int64:
		return any(int64(binary.LittleEndian.Uint64(src))).(T), nil
	case uint64:
		return any(binary.LittleEndian.Uint64(src)).(T), nil
	case float32:
		return any(math.Float32frombits(binary.LittleEndian.Uint32(src))).(T), nil
	case float64:
		return any(math.Float64frombits(binary.LittleEndian.Uint64(src))).(T), nil
	default:
		return zero, fmt.Errorf("array: unsupported element type %T", zero)
	}
}

func elementSize[T numeric]() int {
	var zero T
	switch any(zero).(type) {
	case int8, uint8:
		return 1
	case int16, uint16:
		return 2
	case int32, uint32, float32:
		return 4
	case int64, uint64, float64:
		return 8
	default:
		return 0
	}
}

// RetrieveElements decodes subset and reinterprets it as a slice of T,
// validating that T's size matches the array's data type.
func RetrieveElements[T numeric](ctx context.Context, a *Array, subset indices.Subset) ([]T, error) {
	size := elementSize[T]()
	if size != a.DataType.ElementSize() {
		return nil, fmt.Errorf("array: element type size %d does not match data type %s (size %d)", size, a.DataType, a.DataType.ElementSize())
	}
	raw, err := a.RetrieveArraySubset(ctx, subset)
	if err != nil {
		return nil, err
	}
	n := len(raw) / size
	out := make([]T, n)
	for i := 0; i < n; i++ {
		v, err := decodeElement[T](raw[i*size : (i+1)*size])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// StoreElements encodes values and writes them into subset.
func StoreElements[T numeric](ctx context.Context, a *Array, subset indices.Subset, values []T) error {
	size := elementSize[T]()
	if size != a.DataType.ElementSize() {
		return fmt.Errorf("array: element type size %d does not match data type %s (size %d)", size, a.DataType, a.DataType.ElementSize())
	}
	if int64(len(values)) != subset.NumElements() {
		return fmt.Errorf("array: %d values does not match subset element count %d", len(values), subset.NumElements())
	}
	raw := make([]byte, len(values)*size)
	for i, v := range values {
		if err := encodeElement(raw[i*size:(i+1)*size], v); err != nil {
			return err
		}
	}
	return a.StoreArraySubset(ctx, subset, raw)
}

// View addresses a window into a larger external buffer that the caller
// already owns. Data holds the full row-major bytes of an array shaped
// TargetShape; Origin names where a subset's elements begin within that
// target. It lets a caller decode into (or encode out of) a slice of its
// own buffer instead of one freshly allocated per call, e.g. when
// assembling many array subsets into one pre-allocated destination array.
type View struct {
	Data        []byte
	TargetShape []int64
	Origin      []int64
}

// destination resolves the absolute subset this view occupies within
// TargetShape for a region of the given shape, validating that Data is
// sized for TargetShape (misaligned) and that the resulting subset fits
// within TargetShape (out of bounds).
func (v View) destination(shape []int64, elemSize int64) (indices.Subset, error) {
	if len(v.Origin) != len(shape) {
		return indices.Subset{}, fmt.Errorf("array: view origin dimensionality %d does not match subset dimensionality %d", len(v.Origin), len(shape))
	}
	if len(v.TargetShape) != len(shape) {
		return indices.Subset{}, fmt.Errorf("array: view target shape dimensionality %d does not match subset dimensionality %d", len(v.TargetShape), len(shape))
	}
	target, err := indices.New(make([]int64, len(shape)), v.TargetShape)
	if err != nil {
		return indices.Subset{}, fmt.Errorf("array: view target shape: %w", err)
	}
	if want := target.NumElements() * elemSize; int64(len(v.Data)) != want {
		return indices.Subset{}, fmt.Errorf("array: view data length %d is misaligned with target shape %v (want %d)", len(v.Data), v.TargetShape, want)
	}
	dest, err := indices.New(v.Origin, shape)
	if err != nil {
		return indices.Subset{}, fmt.Errorf("array: view destination: %w", err)
	}
	if !dest.InBounds(v.TargetShape) {
		return indices.Subset{}, fmt.Errorf("array: view destination %v overlaps beyond target shape %v", dest, v.TargetShape)
	}
	return dest, nil
}

// Element returns the elemSize-byte slice at coord within the view's
// target buffer.
func (v View) Element(coord []int64, elemSize int64) []byte {
	stride := indices.Strides(v.TargetShape)
	var off int64
	for i, c := range coord {
		off += c * stride[i]
	}
	off *= elemSize
	return v.Data[off : off+elemSize]
}

// RetrieveArraySubsetView decodes subset directly into v's destination
// subset of v.Data, rather than returning a newly-allocated buffer.
func (a *Array) RetrieveArraySubsetView(ctx context.Context, subset indices.Subset, v View) error {
	elemSize := int64(a.DataType.ElementSize())
	dest, err := v.destination(subset.Shape, elemSize)
	if err != nil {
		return err
	}
	piece := make([]byte, subset.NumElements()*elemSize)
	if err := a.RetrieveArraySubsetInto(ctx, subset, piece); err != nil {
		return err
	}
	scatterSubset(v.Data, piece, dest, v.TargetShape, elemSize)
	return nil
}

// StoreArraySubsetView encodes the region of v.Data addressed by v's
// destination subset into subset.
func (a *Array) StoreArraySubsetView(ctx context.Context, subset indices.Subset, v View) error {
	elemSize := int64(a.DataType.ElementSize())
	dest, err := v.destination(subset.Shape, elemSize)
	if err != nil {
		return err
	}
	piece := gatherSubset(v.Data, dest, v.TargetShape, elemSize)
	return a.StoreArraySubset(ctx, subset, piece)
}
