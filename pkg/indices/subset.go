// Package indices implements rectangular hyperrectangles over array index
// space (array subsets) and the iterators built on them: element indices,
// linearised offsets, contiguous runs, and enclosing chunks.
package indices

import "fmt"

// Subset is a rectangular region of index space: coordinates
// [Start_i, Start_i+Shape_i) for every axis i. An empty subset (any Shape
// component zero) is valid and represents zero elements.
type Subset struct {
	Start []int64
	Shape []int64
}

// New constructs a Subset from a start vector and shape vector of equal
// length. Negative shape components are rejected; zero components are
// allowed (an empty subset).
func New(start, shape []int64) (Subset, error) {
	if len(start) != len(shape) {
		return Subset{}, fmt.Errorf("indices: start and shape have different dimensionality (%d vs %d)", len(start), len(shape))
	}
	for i, s := range shape {
		if s < 0 {
			return Subset{}, fmt.Errorf("indices: shape component %d is negative (%d)", i, s)
		}
	}
	st := append([]int64(nil), start...)
	sh := append([]int64(nil), shape...)
	return Subset{Start: st, Shape: sh}, nil
}

// NewFromExclusiveEnd constructs a Subset from inclusive start and
// exclusive end vectors.
func NewFromExclusiveEnd(start, end []int64) (Subset, error) {
	if len(start) != len(end) {
		return Subset{}, fmt.Errorf("indices: start and end have different dimensionality (%d vs %d)", len(start), len(end))
	}
	shape := make([]int64, len(start))
	for i := range start {
		shape[i] = end[i] - start[i]
	}
	return New(start, shape)
}

// NewFromInclusiveEnd constructs a Subset from inclusive start and
// inclusive end vectors. An inclusive end less than start is an error.
func NewFromInclusiveEnd(start, end []int64) (Subset, error) {
	if len(start) != len(end) {
		return Subset{}, fmt.Errorf("indices: start and end have different dimensionality (%d vs %d)", len(start), len(end))
	}
	for i := range start {
		if end[i] < start[i] {
			return Subset{}, fmt.Errorf("indices: inclusive end %d is less than start %d at dimension %d", end[i], start[i], i)
		}
	}
	shape := make([]int64, len(start))
	for i := range start {
		shape[i] = end[i] - start[i] + 1
	}
	return New(start, shape)
}

// Dims returns the dimensionality of the subset.
func (s Subset) Dims() int { return len(s.Shape) }

// End returns the exclusive end coordinate vector, Start_i + Shape_i.
func (s Subset) End() []int64 {
	end := make([]int64, len(s.Start))
	for i := range s.Start {
		end[i] = s.Start[i] + s.Shape[i]
	}
	return end
}

// NumElements returns the product of Shape, i.e. the element count.
func (s Subset) NumElements() int64 {
	n := int64(1)
	for _, d := range s.Shape {
		n *= d
	}
	return n
}

// IsEmpty reports whether any Shape component is zero.
func (s Subset) IsEmpty() bool {
	for _, d := range s.Shape {
		if d == 0 {
			return true
		}
	}
	return false
}

// InBounds reports whether the subset lies entirely within an array of the
// given shape.
func (s Subset) InBounds(arrayShape []int64) bool {
	if len(arrayShape) != len(s.Shape) {
		return false
	}
	end := s.End()
	for i := range arrayShape {
		if s.Start[i] < 0 || end[i] > arrayShape[i] {
			return false
		}
	}
	return true
}

// Equal reports whether two subsets describe the same region.
func (s Subset) Equal(other Subset) bool {
	if len(s.Start) != len(other.Start) {
		return false
	}
	for i := range s.Start {
		if s.Start[i] != other.Start[i] || s.Shape[i] != other.Shape[i] {
			return false
		}
	}
	return true
}

// Intersect returns the overlap of s and other, and whether one exists (a
// non-empty intersection). Both subsets must have equal dimensionality.
func (s Subset) Intersect(other Subset) (Subset, bool) {
	if len(s.Shape) != len(other.Shape) {
		return Subset{}, false
	}
	n := len(s.Shape)
	start := make([]int64, n)
	shape := make([]int64, n)
	sEnd, oEnd := s.End(), other.End()
	for i := 0; i < n; i++ {
		lo := max64(s.Start[i], other.Start[i])
		hi := min64(sEnd[i], oEnd[i])
		if hi <= lo {
			return Subset{}, false
		}
		start[i] = lo
		shape[i] = hi - lo
	}
	return Subset{Start: start, Shape: shape}, true
}

// Relative returns s expressed relative to an origin, i.e. subtracts origin
// from Start. Used to translate an array-coordinate subset into a
// chunk-local subset.
func (s Subset) Relative(origin []int64) Subset {
	start := make([]int64, len(s.Start))
	for i := range s.Start {
		start[i] = s.Start[i] - origin[i]
	}
	return Subset{Start: start, Shape: append([]int64(nil), s.Shape...)}
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// Strides computes C-order (row-major) strides for shape.
func Strides(shape []int64) []int64 {
	s := make([]int64, len(shape))
	stride := int64(1)
	for i := len(shape) - 1; i >= 0; i-- {
		s[i] = stride
		stride *= shape[i]
	}
	return s
}
