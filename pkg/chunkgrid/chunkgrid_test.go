package chunkgrid_test

import (
	"testing"

	"github.com/TuSKan/zarrcore/pkg/chunkgrid"
	"github.com/TuSKan/zarrcore/pkg/storekey"
	"github.com/stretchr/testify/require"
)

func TestRegularGridPartialLastChunk(t *testing.T) {
	grid, err := chunkgrid.NewRegular([]int64{10}, []int64{4})
	require.NoError(t, err)
	require.Equal(t, []int64{3}, grid.GridShape())

	shape, err := grid.ChunkShape([]int64{2})
	require.NoError(t, err)
	require.Equal(t, []int64{2}, shape) // last chunk covers [8,10)

	shape, err = grid.ChunkShape([]int64{0})
	require.NoError(t, err)
	require.Equal(t, []int64{4}, shape)
}

func TestRegularGridRejectsNonPositiveChunkShape(t *testing.T) {
	_, err := chunkgrid.NewRegular([]int64{10}, []int64{0})
	require.Error(t, err)
}

func TestRegularGridChunkCoordFor(t *testing.T) {
	grid, err := chunkgrid.NewRegular([]int64{10, 10}, []int64{4, 4})
	require.NoError(t, err)
	chunkCoord, within := grid.ChunkCoordFor([]int64{9, 5})
	require.Equal(t, []int64{2, 1}, chunkCoord)
	require.Equal(t, []int64{1, 1}, within)
}

func TestDefaultChunkKeyEncoding(t *testing.T) {
	enc := chunkgrid.Default{Sep: chunkgrid.SlashSeparator}
	key, err := enc.Encode(storekey.RootPrefix, []int64{0, 0})
	require.NoError(t, err)
	require.Equal(t, storekey.Key("c/0/0"), key)

	key, err = enc.Encode(storekey.RootPrefix, nil)
	require.NoError(t, err)
	require.Equal(t, storekey.Key("c"), key)
}

func TestV2ChunkKeyEncoding(t *testing.T) {
	enc := chunkgrid.V2{Sep: chunkgrid.DotSeparator}
	key, err := enc.Encode(storekey.RootPrefix, []int64{1, 4})
	require.NoError(t, err)
	require.Equal(t, storekey.Key("1.4"), key)

	key, err = enc.Encode(storekey.RootPrefix, nil)
	require.NoError(t, err)
	require.Equal(t, storekey.Key("0"), key)
}

func TestChunkKeyEncodingUnderPrefix(t *testing.T) {
	prefix, err := storekey.NewPrefix("arrays/temperature/")
	require.NoError(t, err)
	enc := chunkgrid.Default{Sep: chunkgrid.SlashSeparator}
	key, err := enc.Encode(prefix, []int64{1, 2})
	require.NoError(t, err)
	require.Equal(t, storekey.Key("arrays/temperature/c/1/2"), key)
}
