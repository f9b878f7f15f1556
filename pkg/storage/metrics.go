package storage

import (
	"context"
	"sync/atomic"

	"github.com/TuSKan/zarrcore/pkg/storekey"
)

// PerformanceMetrics accumulates byte and call counters for a
// PerformanceMetric transformer. All fields are safe for concurrent use.
type PerformanceMetrics struct {
	BytesRead    atomic.Uint64
	BytesWritten atomic.Uint64
	Reads        atomic.Uint64
	Writes       atomic.Uint64
	Erases       atomic.Uint64
	Lists        atomic.Uint64
}

// PerformanceMetric wraps an inner storage and counts bytes read/written
// and operations per kind into Metrics.
type PerformanceMetric struct {
	Inner   ReadableWritableListable
	Metrics *PerformanceMetrics
}

// NewPerformanceMetric constructs a PerformanceMetric transformer with a
// fresh counter set.
func NewPerformanceMetric(inner ReadableWritableListable) *PerformanceMetric {
	return &PerformanceMetric{Inner: inner, Metrics: &PerformanceMetrics{}}
}

func (p *PerformanceMetric) Get(ctx context.Context, key storekey.Key) ([]byte, bool, error) {
	p.Metrics.Reads.Add(1)
	v, ok, err := p.Inner.Get(ctx, key)
	if ok {
		p.Metrics.BytesRead.Add(uint64(len(v)))
	}
	return v, ok, err
}

func (p *PerformanceMetric) GetPartialValues(ctx context.Context, requests []storekey.KeyRange) ([][]byte, error) {
	p.Metrics.Reads.Add(uint64(len(requests)))
	vs, err := p.Inner.GetPartialValues(ctx, requests)
	for _, v := range vs {
		p.Metrics.BytesRead.Add(uint64(len(v)))
	}
	return vs, err
}

func (p *PerformanceMetric) GetPartialValuesKey(ctx context.Context, key storekey.Key, ranges []storekey.ByteRange) ([][]byte, bool, error) {
	p.Metrics.Reads.Add(uint64(len(ranges)))
	vs, ok, err := p.Inner.GetPartialValuesKey(ctx, key, ranges)
	for _, v := range vs {
		p.Metrics.BytesRead.Add(uint64(len(v)))
	}
	return vs, ok, err
}

func (p *PerformanceMetric) Size(ctx context.Context, key storekey.Key) (uint64, bool, error) {
	return p.Inner.Size(ctx, key)
}

func (p *PerformanceMetric) SizePrefix(ctx context.Context, prefix storekey.Prefix) (uint64, error) {
	return p.Inner.SizePrefix(ctx, prefix)
}

func (p *PerformanceMetric) SizeAll(ctx context.Context) (uint64, error) {
	return p.Inner.SizeAll(ctx)
}

func (p *PerformanceMetric) Set(ctx context.Context, key storekey.Key, value []byte) error {
	p.Metrics.Writes.Add(1)
	p.Metrics.BytesWritten.Add(uint64(len(value)))
	return p.Inner.Set(ctx, key, value)
}

func (p *PerformanceMetric) SetPartialValues(ctx context.Context, writes []PartialWrite) error {
	p.Metrics.Writes.Add(uint64(len(writes)))
	for _, w := range writes {
		p.Metrics.BytesWritten.Add(uint64(len(w.Value)))
	}
	return p.Inner.SetPartialValues(ctx, writes)
}

func (p *PerformanceMetric) Erase(ctx context.Context, key storekey.Key) error {
	p.Metrics.Erases.Add(1)
	return p.Inner.Erase(ctx, key)
}

func (p *PerformanceMetric) EraseValues(ctx context.Context, keys []storekey.Key) error {
	p.Metrics.Erases.Add(uint64(len(keys)))
	return p.Inner.EraseValues(ctx, keys)
}

func (p *PerformanceMetric) ErasePrefix(ctx context.Context, prefix storekey.Prefix) error {
	p.Metrics.Erases.Add(1)
	return p.Inner.ErasePrefix(ctx, prefix)
}

func (p *PerformanceMetric) List(ctx context.Context) ([]storekey.Key, error) {
	p.Metrics.Lists.Add(1)
	return p.Inner.List(ctx)
}

func (p *PerformanceMetric) ListPrefix(ctx context.Context, prefix storekey.Prefix) ([]storekey.Key, error) {
	p.Metrics.Lists.Add(1)
	return p.Inner.ListPrefix(ctx, prefix)
}

func (p *PerformanceMetric) ListDir(ctx context.Context, prefix storekey.Prefix) ([]storekey.Key, []storekey.Prefix, error) {
	p.Metrics.Lists.Add(1)
	return p.Inner.ListDir(ctx, prefix)
}

var _ ReadableWritableListable = (*PerformanceMetric)(nil)
