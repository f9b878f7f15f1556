// Package concurrency computes how a chunk operation should split its
// concurrency budget between chunk-level fan-out and codec-internal
// parallelism, per the recommended-concurrency trade-off: spend the budget
// deep inside a codec that can use it well, and shallow across chunks when
// codecs recommend little internal parallelism.
package concurrency

import "github.com/TuSKan/zarrcore/pkg/codec"

// Config is the global concurrency policy for an array or store operation.
type Config struct {
	// Target is the desired total number of goroutines in flight across
	// both chunk fan-out and codec-internal work.
	Target int
	// ChunkMin is the minimum number of chunks to process concurrently,
	// even when codecs recommend heavy internal parallelism.
	ChunkMin int
	// CodecTarget is the operator's default codec-internal concurrency,
	// used when a codec declines to recommend one of its own (rec.Max <=
	// 0). It is distinct from rec.Max: rec.Max is a property of the
	// specific codec chain being run, CodecTarget is a fixed budget the
	// caller controls independent of which codec is in play.
	CodecTarget int
}

// DefaultConfig returns a Config with a modest target, a chunk-level
// floor of 1, and a codec-target fallback of 1.
func DefaultConfig() Config {
	return Config{Target: 4, ChunkMin: 1, CodecTarget: 1}
}

// Split is the chunk-concurrency / codec-concurrency pair computed for one
// operation over N chunks.
type Split struct {
	ChunkConcurrency int
	CodecConcurrency int
}

// Recommend computes the chunk/codec concurrency split for numChunks
// chunks, given what the codec chain recommends it can use internally per
// chunk (rec). chunk_concurrency is cfg.Target divided by the codec's
// target (rec.Max, or cfg.CodecTarget when rec.Max is unset), at least
// cfg.ChunkMin and at most numChunks; codec_concurrency takes
// cfg.Target / chunk_concurrency, raised to rec.Min and capped at rec.Max.
func Recommend(cfg Config, numChunks int, rec codec.RecommendedConcurrency) Split {
	if numChunks <= 0 {
		return Split{ChunkConcurrency: 1, CodecConcurrency: 1}
	}
	if cfg.Target < 1 {
		cfg.Target = 1
	}
	if cfg.ChunkMin < 1 {
		cfg.ChunkMin = 1
	}
	if cfg.CodecTarget < 1 {
		cfg.CodecTarget = 1
	}
	codecTarget := rec.Max
	if codecTarget < 1 {
		codecTarget = cfg.CodecTarget
	}

	chunkConcurrency := cfg.Target / codecTarget
	if chunkConcurrency < cfg.ChunkMin {
		chunkConcurrency = cfg.ChunkMin
	}
	if chunkConcurrency > numChunks {
		chunkConcurrency = numChunks
	}
	if chunkConcurrency < 1 {
		chunkConcurrency = 1
	}

	codecConcurrency := cfg.Target / chunkConcurrency
	if codecConcurrency < rec.Min {
		codecConcurrency = rec.Min
	}
	if codecConcurrency < 1 {
		codecConcurrency = 1
	}
	if rec.Max > 0 && codecConcurrency > rec.Max {
		codecConcurrency = rec.Max
	}

	return Split{ChunkConcurrency: chunkConcurrency, CodecConcurrency: codecConcurrency}
}
