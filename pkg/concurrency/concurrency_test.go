package concurrency_test

import (
	"testing"

	"github.com/TuSKan/zarrcore/pkg/codec"
	"github.com/TuSKan/zarrcore/pkg/concurrency"
	"github.com/stretchr/testify/require"
)

func TestRecommendFavorsCodecWhenItRecommendsHeavyWork(t *testing.T) {
	cfg := concurrency.Config{Target: 8, ChunkMin: 1}
	split := concurrency.Recommend(cfg, 10, codec.RecommendedConcurrency{Min: 1, Max: 8})
	require.Equal(t, 1, split.ChunkConcurrency)
	require.Equal(t, 8, split.CodecConcurrency)
}

func TestRecommendSpreadsAcrossChunksWhenCodecIsSerial(t *testing.T) {
	cfg := concurrency.Config{Target: 8, ChunkMin: 1}
	split := concurrency.Recommend(cfg, 10, codec.RecommendedConcurrency{Min: 1, Max: 1})
	require.Equal(t, 8, split.ChunkConcurrency)
	require.Equal(t, 1, split.CodecConcurrency)
}

func TestRecommendNeverExceedsNumChunks(t *testing.T) {
	cfg := concurrency.Config{Target: 16, ChunkMin: 4}
	split := concurrency.Recommend(cfg, 2, codec.RecommendedConcurrency{Min: 1, Max: 1})
	require.Equal(t, 2, split.ChunkConcurrency)
}

func TestRecommendFallsBackToCodecTargetWhenCodecDeclinesToRecommend(t *testing.T) {
	cfg := concurrency.Config{Target: 16, ChunkMin: 1, CodecTarget: 4}
	split := concurrency.Recommend(cfg, 10, codec.RecommendedConcurrency{})
	require.Equal(t, 4, split.ChunkConcurrency)
	require.Equal(t, 4, split.CodecConcurrency)
}

func TestRecommendHandlesZeroChunks(t *testing.T) {
	split := concurrency.Recommend(concurrency.DefaultConfig(), 0, codec.RecommendedConcurrency{})
	require.Equal(t, 1, split.ChunkConcurrency)
	require.Equal(t, 1, split.CodecConcurrency)
}
