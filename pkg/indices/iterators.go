package indices

// Indices is the lazy, row-major (C order) sequence of coordinate tuples
// contained in a Subset. Its length is exactly the product of the
// subset's shape.
type Indices struct {
	subset Subset
	front  int64
	back   int64 // exclusive
}

// NewIndices constructs an Indices iterator over subset.
func NewIndices(subset Subset) *Indices {
	return &Indices{subset: subset, front: 0, back: subset.NumElements()}
}

// Len returns the exact number of remaining coordinates.
func (it *Indices) Len() int64 { return it.back - it.front }

// At returns the i-th coordinate tuple (0-indexed, row-major) without
// mutating the iterator's cursor.
func (it *Indices) At(i int64) []int64 {
	coord := make([]int64, it.subset.Dims())
	rem := i
	for d := it.subset.Dims() - 1; d >= 0; d-- {
		dim := it.subset.Shape[d]
		if dim == 0 {
			coord[d] = it.subset.Start[d]
			continue
		}
		coord[d] = it.subset.Start[d] + rem%dim
		rem /= dim
	}
	return coord
}

// Next returns the next coordinate tuple in forward order, or ok=false when
// exhausted (fused: further calls keep returning false).
func (it *Indices) Next() (coord []int64, ok bool) {
	if it.front >= it.back {
		return nil, false
	}
	coord = it.At(it.front)
	it.front++
	return coord, true
}

// NextBack returns the next coordinate tuple from the back of the
// sequence, supporting double-ended iteration.
func (it *Indices) NextBack() (coord []int64, ok bool) {
	if it.front >= it.back {
		return nil, false
	}
	it.back--
	return it.At(it.back), true
}

// Split partitions the iterator's logical index range into n contiguous,
// disjoint chunks for parallel iteration. Chunks covering an empty range
// are omitted.
func (it *Indices) Split(n int) []*Indices {
	return splitRange(n, it.front, it.back, func(lo, hi int64) *Indices {
		return &Indices{subset: it.subset, front: lo, back: hi}
	})
}

func splitRange[T any](n int, lo, hi int64, mk func(lo, hi int64) T) []T {
	total := hi - lo
	if total <= 0 || n <= 0 {
		return nil
	}
	if int64(n) > total {
		n = int(total)
	}
	out := make([]T, 0, n)
	base := total / int64(n)
	rem := total % int64(n)
	cur := lo
	for i := 0; i < n; i++ {
		size := base
		if int64(i) < rem {
			size++
		}
		if size == 0 {
			continue
		}
		out = append(out, mk(cur, cur+size))
		cur += size
	}
	return out
}

// LinearisedIndices is the lazy sequence of flat row-major offsets that the
// subset's coordinates occupy within an arrayShape-sized buffer.
type LinearisedIndices struct {
	idx         *Indices
	arrayStride []int64
}

// NewLinearisedIndices constructs a LinearisedIndices iterator.
func NewLinearisedIndices(subset Subset, arrayShape []int64) *LinearisedIndices {
	return &LinearisedIndices{idx: NewIndices(subset), arrayStride: Strides(arrayShape)}
}

// Len returns the exact number of remaining offsets.
func (it *LinearisedIndices) Len() int64 { return it.idx.Len() }

func (it *LinearisedIndices) flatten(coord []int64) int64 {
	var off int64
	for i, c := range coord {
		off += c * it.arrayStride[i]
	}
	return off
}

// Next returns the next flat offset in forward order.
func (it *LinearisedIndices) Next() (offset int64, ok bool) {
	c, ok := it.idx.Next()
	if !ok {
		return 0, false
	}
	return it.flatten(c), true
}

// NextBack returns the next flat offset from the back.
func (it *LinearisedIndices) NextBack() (offset int64, ok bool) {
	c, ok := it.idx.NextBack()
	if !ok {
		return 0, false
	}
	return it.flatten(c), true
}

// ContiguousRun is a maximal contiguous stretch of linearised indices,
// identified by its starting coordinate and its element length.
type ContiguousRun struct {
	Start  []int64
	Length int64
}

// ContiguousLinearisedRun is a ContiguousRun expressed as a flat offset.
type ContiguousLinearisedRun struct {
	Offset int64
	Length int64
}

// ContiguousIndices is the lazy sequence of maximal contiguous runs of
// linearised indices within the subset, relative to an arrayShape-sized
// buffer. This is the key primitive for memcpy-style bulk moves between a
// subset and a full array buffer: a run covers the innermost axis of the
// subset that does not span the array, together with every trailing axis
// that does.
type ContiguousIndices struct {
	subset      Subset
	arrayShape  []int64
	runLen      int64 // number of elements per run (a suffix of subset.Shape collapsed)
	outerShape  []int64
	outerStart  []int64
	outerStride []int64 // strides, in runs, of the outer (non-collapsed) dims
	front       int64
	back        int64
}

// NewContiguousIndices constructs a ContiguousIndices iterator. Trailing
// dimensions of the subset that exactly span the corresponding array
// dimension, together with the first dimension before them that does not,
// are collapsed into a single run.
func NewContiguousIndices(subset Subset, arrayShape []int64) *ContiguousIndices {
	n := subset.Dims()
	collapseFrom := n
	for d := n - 1; d >= 0; d-- {
		if subset.Start[d] == 0 && subset.Shape[d] == arrayShape[d] {
			collapseFrom = d
			continue
		}
		break
	}
	if collapseFrom > 0 {
		collapseFrom--
	}
	// Every axis after collapseFrom fully spans the array and axis
	// collapseFrom is contiguous over its own extent, so the whole suffix is
	// one contiguous sweep of runLen elements; axes before collapseFrom are
	// iterated one coordinate at a time, each yielding a separate run.
	runLen := int64(1)
	for d := collapseFrom; d < n; d++ {
		runLen *= subset.Shape[d]
	}

	outerDims := collapseFrom
	outerShape := append([]int64(nil), subset.Shape[:outerDims]...)
	outerStart := append([]int64(nil), subset.Start[:outerDims]...)
	outerStride := Strides(outerShape)

	total := int64(1)
	for _, d := range outerShape {
		total *= d
	}
	if runLen == 0 {
		total = 0
	}

	return &ContiguousIndices{
		subset: subset, arrayShape: arrayShape, runLen: runLen,
		outerShape: outerShape, outerStart: outerStart, outerStride: outerStride,
		front: 0, back: total,
	}
}

// Len returns the exact number of remaining runs.
func (it *ContiguousIndices) Len() int64 { return it.back - it.front }

// RunLength returns the element length of every run (constant).
func (it *ContiguousIndices) RunLength() int64 { return it.runLen }

// At returns the i-th run's starting coordinate (full dimensionality;
// trailing collapsed axes are set to the subset's start).
func (it *ContiguousIndices) At(i int64) ContiguousRun {
	coord := make([]int64, it.subset.Dims())
	rem := i
	for d := len(it.outerShape) - 1; d >= 0; d-- {
		dim := it.outerShape[d]
		if dim == 0 {
			coord[d] = it.outerStart[d]
			continue
		}
		coord[d] = it.outerStart[d] + rem%dim
		rem /= dim
	}
	for d := len(it.outerShape); d < it.subset.Dims(); d++ {
		coord[d] = it.subset.Start[d]
	}
	return ContiguousRun{Start: coord, Length: it.runLen}
}

// Next returns the next run in forward order.
func (it *ContiguousIndices) Next() (run ContiguousRun, ok bool) {
	if it.front >= it.back {
		return ContiguousRun{}, false
	}
	run = it.At(it.front)
	it.front++
	return run, true
}

// NextBack returns the next run from the back.
func (it *ContiguousIndices) NextBack() (run ContiguousRun, ok bool) {
	if it.front >= it.back {
		return ContiguousRun{}, false
	}
	it.back--
	return it.At(it.back), true
}

// ContiguousLinearised returns the iterator's runs expressed as flat
// offsets into an arrayShape-sized buffer.
func (it *ContiguousIndices) ContiguousLinearised() *ContiguousLinearisedIndices {
	return &ContiguousLinearisedIndices{inner: it, stride: Strides(it.arrayShape)}
}

// ContiguousLinearisedIndices is ContiguousIndices with each run's start
// expressed as a flat offset instead of a coordinate tuple.
type ContiguousLinearisedIndices struct {
	inner  *ContiguousIndices
	stride []int64
}

// NewContiguousLinearisedIndices constructs the iterator directly.
func NewContiguousLinearisedIndices(subset Subset, arrayShape []int64) *ContiguousLinearisedIndices {
	return NewContiguousIndices(subset, arrayShape).ContiguousLinearised()
}

// Len returns the exact number of remaining runs.
func (it *ContiguousLinearisedIndices) Len() int64 { return it.inner.Len() }

// RunLength returns the element length of every run (constant).
func (it *ContiguousLinearisedIndices) RunLength() int64 { return it.inner.runLen }

func (it *ContiguousLinearisedIndices) flatten(coord []int64) int64 {
	var off int64
	for i, c := range coord {
		off += c * it.stride[i]
	}
	return off
}

// Next returns the next run in forward order.
func (it *ContiguousLinearisedIndices) Next() (run ContiguousLinearisedRun, ok bool) {
	r, ok := it.inner.Next()
	if !ok {
		return ContiguousLinearisedRun{}, false
	}
	return ContiguousLinearisedRun{Offset: it.flatten(r.Start), Length: r.Length}, true
}

// NextBack returns the next run from the back.
func (it *ContiguousLinearisedIndices) NextBack() (run ContiguousLinearisedRun, ok bool) {
	r, ok := it.inner.NextBack()
	if !ok {
		return ContiguousLinearisedRun{}, false
	}
	return ContiguousLinearisedRun{Offset: it.flatten(r.Start), Length: r.Length}, true
}

// Chunks is the lazy sequence of chunk coordinates whose chunks overlap a
// subset, for a regular chunk shape.
type Chunks struct {
	idx *Indices
}

// NewChunks constructs a Chunks iterator: every chunk coordinate c such
// that chunk c (of the given chunkShape) intersects subset.
func NewChunks(subset Subset, chunkShape []int64) *Chunks {
	n := subset.Dims()
	start := make([]int64, n)
	shape := make([]int64, n)
	end := subset.End()
	for i := 0; i < n; i++ {
		if subset.Shape[i] == 0 {
			start[i] = floorDiv(subset.Start[i], chunkShape[i])
			shape[i] = 0
			continue
		}
		lastCoord := end[i] - 1
		minChunk := floorDiv(subset.Start[i], chunkShape[i])
		maxChunk := floorDiv(lastCoord, chunkShape[i])
		start[i] = minChunk
		shape[i] = maxChunk - minChunk + 1
	}
	sub, _ := New(start, shape)
	return &Chunks{idx: NewIndices(sub)}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Len returns the exact number of remaining chunk coordinates.
func (it *Chunks) Len() int64 { return it.idx.Len() }

// Next returns the next chunk coordinate in forward order.
func (it *Chunks) Next() ([]int64, bool) { return it.idx.Next() }

// NextBack returns the next chunk coordinate from the back.
func (it *Chunks) NextBack() ([]int64, bool) { return it.idx.NextBack() }

// Split partitions the chunk sequence into n disjoint sub-iterators for
// parallel iteration.
func (it *Chunks) Split(n int) []*Chunks {
	parts := it.idx.Split(n)
	out := make([]*Chunks, len(parts))
	for i, p := range parts {
		out[i] = &Chunks{idx: p}
	}
	return out
}

// All drains the iterator into a slice, consuming it.
func (it *Chunks) All() [][]int64 {
	out := make([][]int64, 0, it.Len())
	for {
		c, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, c)
	}
	return out
}

// All drains the Indices iterator into a slice, consuming it.
func (it *Indices) All() [][]int64 {
	out := make([][]int64, 0, it.Len())
	for {
		c, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, c)
	}
	return out
}
