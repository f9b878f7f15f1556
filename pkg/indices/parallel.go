package indices

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ParIndices iterates subset's coordinates across up to concurrency
// goroutines, invoking fn once per coordinate. Each goroutine only ever
// touches its own disjoint slice of the sequence (via Indices.Split), so
// no two concurrent invocations of fn observe overlapping state.
func ParIndices(ctx context.Context, subset Subset, concurrency int, fn func(coord []int64) error) error {
	parts := NewIndices(subset).Split(concurrency)
	g, ctx := errgroup.WithContext(ctx)
	for _, part := range parts {
		part := part
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				coord, ok := part.Next()
				if !ok {
					return nil
				}
				if err := fn(coord); err != nil {
					return err
				}
			}
		})
	}
	return g.Wait()
}

// ParChunks iterates the chunk coordinates overlapping subset across up to
// concurrency goroutines, invoking fn once per chunk coordinate.
func ParChunks(ctx context.Context, chunks *Chunks, concurrency int, fn func(chunkCoord []int64) error) error {
	parts := chunks.Split(concurrency)
	g, ctx := errgroup.WithContext(ctx)
	for _, part := range parts {
		part := part
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				coord, ok := part.Next()
				if !ok {
					return nil
				}
				if err := fn(coord); err != nil {
					return err
				}
			}
		})
	}
	return g.Wait()
}
