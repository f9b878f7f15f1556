// Package storage defines the capability-factored storage traits used by
// the rest of the core: Readable, Writable, Listable, and their closures.
// Back-ends (filesystem, HTTP object stores, in-memory, zip archives, ...)
// are external collaborators that satisfy these interfaces; only a minimal
// in-memory store and a test-only gocloud.dev/blob adapter ship with this
// module.
package storage

import (
	"context"

	"github.com/TuSKan/zarrcore/pkg/storekey"
)

// PartialWrite describes a single partial write: the bytes to place at
// offset within key's value.
type PartialWrite struct {
	Key    storekey.Key
	Offset uint64
	Value  []byte
}

// Readable is satisfied by any store that can be read from. A missing key
// is reported by returning ok=false, never an error; an invalid byte range
// is always an error.
type Readable interface {
	// Get returns the full value for key, or ok=false if it does not exist.
	Get(ctx context.Context, key storekey.Key) (value []byte, ok bool, err error)

	// GetPartialValues resolves a batch of (key, range) pairs. The result
	// slice has the same length and order as requests; an entry is nil
	// when the corresponding key does not exist.
	GetPartialValues(ctx context.Context, requests []storekey.KeyRange) ([][]byte, error)

	// GetPartialValuesKey resolves multiple byte ranges against a single
	// key in one call, returning ok=false if the key does not exist.
	GetPartialValuesKey(ctx context.Context, key storekey.Key, ranges []storekey.ByteRange) (values [][]byte, ok bool, err error)

	// Size returns the byte length of key's value, or ok=false if absent.
	Size(ctx context.Context, key storekey.Key) (size uint64, ok bool, err error)

	// SizePrefix returns the total size in bytes of all values whose key
	// starts with prefix.
	SizePrefix(ctx context.Context, prefix storekey.Prefix) (uint64, error)

	// SizeAll returns the total size in bytes of every value in the store.
	SizeAll(ctx context.Context) (uint64, error)
}

// Writable is satisfied by any store that can be written to. Erase
// operations are idempotent: erasing an already-absent key succeeds.
type Writable interface {
	// Set replaces key's value in its entirety.
	Set(ctx context.Context, key storekey.Key, value []byte) error

	// SetPartialValues applies a batch of partial writes. Back-ends that
	// cannot do this atomically may compose it from Readable+Writable
	// under a per-key lock; see storage.ComposedSetPartialValues.
	SetPartialValues(ctx context.Context, writes []PartialWrite) error

	// Erase removes key if present. Idempotent.
	Erase(ctx context.Context, key storekey.Key) error

	// EraseValues removes every key in keys. Idempotent.
	EraseValues(ctx context.Context, keys []storekey.Key) error

	// ErasePrefix removes every key starting with prefix. Idempotent.
	ErasePrefix(ctx context.Context, prefix storekey.Prefix) error
}

// Listable is satisfied by any store that supports enumeration.
type Listable interface {
	// List returns every key in the store, sorted.
	List(ctx context.Context) ([]storekey.Key, error)

	// ListPrefix returns every key starting with prefix, sorted.
	ListPrefix(ctx context.Context, prefix storekey.Prefix) ([]storekey.Key, error)

	// ListDir returns the immediate child keys and immediate child
	// prefixes of prefix (a single level of hierarchy), both sorted.
	ListDir(ctx context.Context, prefix storekey.Prefix) (keys []storekey.Key, prefixes []storekey.Prefix, err error)
}

// ReadableWritable closes Readable and Writable.
type ReadableWritable interface {
	Readable
	Writable
}

// ReadableListable closes Readable and Listable.
type ReadableListable interface {
	Readable
	Listable
}

// ReadableWritableListable closes all three capabilities; this is the
// typical shape of a fully-featured store.
type ReadableWritableListable interface {
	Readable
	Writable
	Listable
}
