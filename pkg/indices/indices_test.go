package indices_test

import (
	"context"
	"sync"
	"testing"

	"github.com/TuSKan/zarrcore/pkg/indices"
	"github.com/stretchr/testify/require"
)

func TestIndicesCompletenessAndOrder(t *testing.T) {
	sub, err := indices.New([]int64{1, 1}, []int64{2, 3})
	require.NoError(t, err)
	it := indices.NewIndices(sub)
	require.Equal(t, int64(6), it.Len())

	var got [][]int64
	for {
		c, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, append([]int64(nil), c...))
	}
	require.Equal(t, [][]int64{
		{1, 1}, {1, 2}, {1, 3},
		{2, 1}, {2, 2}, {2, 3},
	}, got)
}

func TestIndicesDoubleEnded(t *testing.T) {
	sub, _ := indices.New([]int64{0}, []int64{4})
	it := indices.NewIndices(sub)

	front, _ := it.Next()
	back, _ := it.NextBack()
	require.Equal(t, []int64{0}, front)
	require.Equal(t, []int64{3}, back)
	require.Equal(t, int64(2), it.Len())
}

func TestLinearisedIndices(t *testing.T) {
	sub, _ := indices.New([]int64{1, 1}, []int64{1, 2})
	it := indices.NewLinearisedIndices(sub, []int64{4, 4})
	var offsets []int64
	for {
		o, ok := it.Next()
		if !ok {
			break
		}
		offsets = append(offsets, o)
	}
	// row 1, cols 1-2 of a 4x4 buffer: flat = row*4+col
	require.Equal(t, []int64{5, 6}, offsets)
}

func TestContiguousIndicesCompleteness(t *testing.T) {
	arrayShape := []int64{8, 8}
	sub, _ := indices.New([]int64{2, 2}, []int64{4, 4})
	it := indices.NewContiguousLinearisedIndices(sub, arrayShape)

	var total int64
	var lastEnd int64 = -1
	for {
		run, ok := it.Next()
		if !ok {
			break
		}
		require.Greater(t, run.Offset, lastEnd-1)
		lastEnd = run.Offset + run.Length
		total += run.Length
	}
	require.Equal(t, sub.NumElements(), total)
}

func TestContiguousIndicesFullRowCollapse(t *testing.T) {
	arrayShape := []int64{4, 4}
	sub, _ := indices.New([]int64{1, 0}, []int64{2, 4})
	it := indices.NewContiguousIndices(sub, arrayShape)
	// both selected rows span the full width, and are themselves
	// adjacent, so the whole 2x4 block is one contiguous run.
	require.Equal(t, int64(1), it.Len())
	run, ok := it.Next()
	require.True(t, ok)
	require.Equal(t, int64(8), run.Length)
}

func TestChunksOverlapCorrectness(t *testing.T) {
	arrayShape := []int64{8, 8}
	chunkShape := []int64{4, 4}
	sub, _ := indices.New([]int64{2, 2}, []int64{4, 4})
	chunks := indices.NewChunks(sub, chunkShape)
	got := chunks.All()

	expect := make(map[[2]int64]bool)
	for cy := int64(0); cy < 2; cy++ {
		for cx := int64(0); cx < 2; cx++ {
			chunkSub, _ := indices.New([]int64{cy * 4, cx * 4}, []int64{4, 4})
			if _, ok := chunkSub.Intersect(sub); ok {
				expect[[2]int64{cy, cx}] = true
			}
		}
	}
	require.Len(t, got, len(expect))
	for _, c := range got {
		require.True(t, expect[[2]int64{c[0], c[1]}])
	}
	_ = arrayShape
}

func TestParIndicesCoversEveryCoordinateExactlyOnce(t *testing.T) {
	sub, _ := indices.New([]int64{0, 0}, []int64{10, 10})
	var mu sync.Mutex
	seen := make(map[[2]int64]bool)

	err := indices.ParIndices(context.Background(), sub, 4, func(coord []int64) error {
		mu.Lock()
		defer mu.Unlock()
		key := [2]int64{coord[0], coord[1]}
		require.False(t, seen[key], "coordinate visited twice")
		seen[key] = true
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, int(sub.NumElements()), len(seen))
}

func TestSubsetIntersect(t *testing.T) {
	a, _ := indices.New([]int64{0, 0}, []int64{4, 4})
	b, _ := indices.New([]int64{2, 2}, []int64{4, 4})
	got, ok := a.Intersect(b)
	require.True(t, ok)
	require.Equal(t, []int64{2, 2}, got.Start)
	require.Equal(t, []int64{2, 2}, got.Shape)

	c, _ := indices.New([]int64{10, 10}, []int64{1, 1})
	_, ok = a.Intersect(c)
	require.False(t, ok)
}

func TestSubsetConstructionErrors(t *testing.T) {
	_, err := indices.NewFromInclusiveEnd([]int64{5}, []int64{3})
	require.Error(t, err)

	sub, err := indices.NewFromExclusiveEnd([]int64{1}, []int64{1})
	require.NoError(t, err)
	require.True(t, sub.IsEmpty())
}
