// Package chunkgrid maps array coordinates to chunk coordinates and back,
// and chunk coordinates to store keys.
package chunkgrid

import "fmt"

// Grid supplies, for any chunk coordinate, the chunk's shape and its
// origin in array coordinates, and the reverse lookup from array
// coordinates to chunk coordinates. A regular grid stores only the base
// chunk shape; irregular grids are permitted by the interface.
type Grid interface {
	// Dims returns the grid's dimensionality.
	Dims() int

	// ChunkShape returns the effective shape of the chunk at chunkCoord:
	// the base chunk shape, or a smaller shape at array boundaries.
	ChunkShape(chunkCoord []int64) ([]int64, error)

	// ChunkOrigin returns the chunk's origin in array coordinates.
	ChunkOrigin(chunkCoord []int64) []int64

	// ChunkCoordFor returns the chunk coordinate containing arrayCoord,
	// and arrayCoord's offset within that chunk.
	ChunkCoordFor(arrayCoord []int64) (chunkCoord, withinChunk []int64)

	// GridShape returns the number of chunks along each axis.
	GridShape() []int64
}

// Regular is a Grid with a single, fixed base chunk shape. The last chunk
// along each axis may be partial if the array shape is not a multiple of
// the chunk shape.
type Regular struct {
	arrayShape []int64
	chunkShape []int64
}

// NewRegular constructs a regular chunk grid. Chunk shape components must
// be strictly positive and dimensionality must match the array shape.
func NewRegular(arrayShape, chunkShape []int64) (*Regular, error) {
	if len(arrayShape) != len(chunkShape) {
		return nil, fmt.Errorf("chunkgrid: array shape and chunk shape have different dimensionality (%d vs %d)", len(arrayShape), len(chunkShape))
	}
	for i, c := range chunkShape {
		if c <= 0 {
			return nil, fmt.Errorf("chunkgrid: chunk shape component %d must be strictly positive, got %d", i, c)
		}
	}
	return &Regular{arrayShape: append([]int64(nil), arrayShape...), chunkShape: append([]int64(nil), chunkShape...)}, nil
}

var _ Grid = (*Regular)(nil)

func (r *Regular) Dims() int { return len(r.arrayShape) }

// BaseChunkShape returns the configured (uncropped) chunk shape.
func (r *Regular) BaseChunkShape() []int64 { return append([]int64(nil), r.chunkShape...) }

func (r *Regular) GridShape() []int64 {
	shape := make([]int64, len(r.arrayShape))
	for i := range r.arrayShape {
		shape[i] = ceilDiv(r.arrayShape[i], r.chunkShape[i])
	}
	return shape
}

func (r *Regular) ChunkOrigin(chunkCoord []int64) []int64 {
	origin := make([]int64, len(chunkCoord))
	for i, c := range chunkCoord {
		origin[i] = c * r.chunkShape[i]
	}
	return origin
}

func (r *Regular) ChunkShape(chunkCoord []int64) ([]int64, error) {
	if len(chunkCoord) != r.Dims() {
		return nil, fmt.Errorf("chunkgrid: chunk coordinate dimensionality %d does not match grid dimensionality %d", len(chunkCoord), r.Dims())
	}
	shape := make([]int64, r.Dims())
	for i, c := range chunkCoord {
		if c < 0 {
			return nil, fmt.Errorf("chunkgrid: chunk coordinate %d is negative at dimension %d", c, i)
		}
		start := c * r.chunkShape[i]
		end := start + r.chunkShape[i]
		if end > r.arrayShape[i] {
			end = r.arrayShape[i]
		}
		if start >= r.arrayShape[i] {
			return nil, fmt.Errorf("chunkgrid: chunk coordinate %d is out of bounds at dimension %d", c, i)
		}
		shape[i] = end - start
	}
	return shape, nil
}

func (r *Regular) ChunkCoordFor(arrayCoord []int64) (chunkCoord, withinChunk []int64) {
	chunkCoord = make([]int64, len(arrayCoord))
	withinChunk = make([]int64, len(arrayCoord))
	for i, a := range arrayCoord {
		chunkCoord[i] = a / r.chunkShape[i]
		withinChunk[i] = a % r.chunkShape[i]
	}
	return chunkCoord, withinChunk
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}
