package storage

import (
	"context"
	"fmt"

	"github.com/TuSKan/zarrcore/pkg/keylock"
	"github.com/TuSKan/zarrcore/pkg/storekey"
)

// Handle wraps shared ownership of a storage implementation. Cloning a
// Handle is cheap: it copies a pointer, never the underlying back-end.
// Storage transformers wrap a Handle and expose the same capability set.
type Handle struct {
	inner ReadableWritableListable
	locks keylock.Registry
}

// NewHandle constructs a Handle over an existing storage implementation,
// using the Default (mutex-per-key) lock registry.
func NewHandle(inner ReadableWritableListable) *Handle {
	return &Handle{inner: inner, locks: keylock.NewDefault()}
}

// NewHandleWithLocks constructs a Handle with an explicit lock registry
// (e.g. keylock.Disabled for a read-only client).
func NewHandleWithLocks(inner ReadableWritableListable, locks keylock.Registry) *Handle {
	return &Handle{inner: inner, locks: locks}
}

// Clone returns a cheap, independent reference to the same underlying
// storage and lock registry.
func (h *Handle) Clone() *Handle {
	return &Handle{inner: h.inner, locks: h.locks}
}

// Locks returns the handle's per-key lock registry.
func (h *Handle) Locks() keylock.Registry { return h.locks }

// Inner returns the wrapped storage implementation, for storage
// transformers that need to delegate.
func (h *Handle) Inner() ReadableWritableListable { return h.inner }

func (h *Handle) Get(ctx context.Context, key storekey.Key) ([]byte, bool, error) {
	return h.inner.Get(ctx, key)
}

func (h *Handle) GetPartialValues(ctx context.Context, requests []storekey.KeyRange) ([][]byte, error) {
	return h.inner.GetPartialValues(ctx, requests)
}

func (h *Handle) GetPartialValuesKey(ctx context.Context, key storekey.Key, ranges []storekey.ByteRange) ([][]byte, bool, error) {
	return h.inner.GetPartialValuesKey(ctx, key, ranges)
}

func (h *Handle) Size(ctx context.Context, key storekey.Key) (uint64, bool, error) {
	return h.inner.Size(ctx, key)
}

func (h *Handle) SizePrefix(ctx context.Context, prefix storekey.Prefix) (uint64, error) {
	return h.inner.SizePrefix(ctx, prefix)
}

func (h *Handle) SizeAll(ctx context.Context) (uint64, error) {
	return h.inner.SizeAll(ctx)
}

func (h *Handle) Set(ctx context.Context, key storekey.Key, value []byte) error {
	return h.inner.Set(ctx, key, value)
}

// SetPartialValues applies each partial write under the handle's per-key
// lock, composing it from Get+Set on the inner store; the inner store's
// own SetPartialValues is not called. This is the default behavior described in
// spec.md §4.1.
func (h *Handle) SetPartialValues(ctx context.Context, writes []PartialWrite) error {
	return ComposedSetPartialValues(ctx, h.inner, h.locks, writes)
}

func (h *Handle) Erase(ctx context.Context, key storekey.Key) error {
	return h.inner.Erase(ctx, key)
}

func (h *Handle) EraseValues(ctx context.Context, keys []storekey.Key) error {
	return h.inner.EraseValues(ctx, keys)
}

func (h *Handle) ErasePrefix(ctx context.Context, prefix storekey.Prefix) error {
	return h.inner.ErasePrefix(ctx, prefix)
}

func (h *Handle) List(ctx context.Context) ([]storekey.Key, error) {
	return h.inner.List(ctx)
}

func (h *Handle) ListPrefix(ctx context.Context, prefix storekey.Prefix) ([]storekey.Key, error) {
	return h.inner.ListPrefix(ctx, prefix)
}

func (h *Handle) ListDir(ctx context.Context, prefix storekey.Prefix) ([]storekey.Key, []storekey.Prefix, error) {
	return h.inner.ListDir(ctx, prefix)
}

// ComposedSetPartialValues implements Writable.SetPartialValues by reading
// the current value (or treating a missing key as empty), overlaying each
// write, and storing the result back, serialized per key via locks. Writes
// targeting different keys proceed without cross-key ordering guarantees.
func ComposedSetPartialValues(ctx context.Context, rw ReadableWritable, locks keylock.Registry, writes []PartialWrite) error {
	byKey := make(map[storekey.Key][]PartialWrite)
	order := make([]storekey.Key, 0)
	for _, w := range writes {
		if _, seen := byKey[w.Key]; !seen {
			order = append(order, w.Key)
		}
		byKey[w.Key] = append(byKey[w.Key], w)
	}

	for _, key := range order {
		if err := func() error {
			unlock := locks.Lock(key)
			defer unlock()

			current, ok, err := rw.Get(ctx, key)
			if err != nil {
				return fmt.Errorf("storage: read-modify-write of %q failed: %w", key, err)
			}
			if !ok {
				current = nil
			}

			for _, w := range byKey[key] {
				needed := w.Offset + uint64(len(w.Value))
				if uint64(len(current)) < needed {
					grown := make([]byte, needed)
					copy(grown, current)
					current = grown
				}
				copy(current[w.Offset:needed], w.Value)
			}

			if err := rw.Set(ctx, key, current); err != nil {
				return fmt.Errorf("storage: write-back of %q failed: %w", key, err)
			}
			return nil
		}(); err != nil {
			return err
		}
	}
	return nil
}
