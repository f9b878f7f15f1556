package codec

import (
	"context"
	"fmt"
	"sync"

	"github.com/TuSKan/zarrcore/pkg/storage"
	"github.com/TuSKan/zarrcore/pkg/storekey"
)

// StoragePartialDecoder is the terminal BytesPartialDecoder: it reads byte
// ranges directly from a store key.
type StoragePartialDecoder struct {
	Store storage.Readable
	Key   storekey.Key
}

var _ BytesPartialDecoder = (*StoragePartialDecoder)(nil)

func (s *StoragePartialDecoder) PartialDecode(ctx context.Context, ranges []storekey.ByteRange) ([][]byte, error) {
	values, ok, err := s.Store.GetPartialValuesKey(ctx, s.Key, ranges)
	if err != nil {
		return nil, fmt.Errorf("codec: partial read of %q failed: %w", s.Key, err)
	}
	if !ok {
		return nil, nil
	}
	return values, nil
}

// CachingBytesPartialDecoder wraps an inner BytesPartialDecoder for codecs
// that cannot serve arbitrary byte ranges without materializing the whole
// encoded representation (e.g. entropy coders). It fetches the full value
// once, on first use, and serves every subsequent range request by slicing
// the cached buffer. The cache is scoped to this decoder instance only —
// per chunk, per pipeline invocation — and is never shared across calls.
type CachingBytesPartialDecoder struct {
	inner BytesPartialDecoder
	once  sync.Once
	full  []byte
	err   error
}

// NewCachingBytesPartialDecoder wraps inner with whole-value caching.
func NewCachingBytesPartialDecoder(inner BytesPartialDecoder) *CachingBytesPartialDecoder {
	return &CachingBytesPartialDecoder{inner: inner}
}

func (c *CachingBytesPartialDecoder) fetch(ctx context.Context) ([]byte, error) {
	c.once.Do(func() {
		vals, err := c.inner.PartialDecode(ctx, []storekey.ByteRange{storekey.Full()})
		if err != nil {
			c.err = err
			return
		}
		if len(vals) == 0 || vals[0] == nil {
			c.err = fmt.Errorf("codec: caching partial decoder found no underlying value")
			return
		}
		c.full = vals[0]
	})
	return c.full, c.err
}

// PartialDecode implements BytesPartialDecoder by slicing the cached full
// value.
func (c *CachingBytesPartialDecoder) PartialDecode(ctx context.Context, ranges []storekey.ByteRange) ([][]byte, error) {
	full, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}
	out := make([][]byte, len(ranges))
	for i, r := range ranges {
		resolved, err := r.Resolve(uint64(len(full)))
		if err != nil {
			return nil, fmt.Errorf("codec: caching partial decoder: %w", err)
		}
		out[i] = full[resolved.Start:resolved.End]
	}
	return out, nil
}

var _ BytesPartialDecoder = (*CachingBytesPartialDecoder)(nil)

// fullFetch reads the entire value behind a BytesPartialDecoder with a
// single unbounded range request.
func fullFetch(ctx context.Context, pd BytesPartialDecoder) ([]byte, error) {
	vals, err := pd.PartialDecode(ctx, []storekey.ByteRange{storekey.Full()})
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 || vals[0] == nil {
		return nil, fmt.Errorf("codec: full fetch found no underlying value")
	}
	return vals[0], nil
}
