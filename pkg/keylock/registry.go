// Package keylock provides mutex-per-key semantics so that read-modify-write
// sequences against a single store key are linearized within a process.
package keylock

import (
	"sync"

	"github.com/TuSKan/zarrcore/pkg/storekey"
)

// Registry hands out a lock for a given key. Implementations must be safe
// for concurrent use.
type Registry interface {
	// Lock acquires the lock associated with key, returning a function that
	// releases it. Callers must call the returned function exactly once.
	Lock(key storekey.Key) (unlock func())
}

// Default is a Registry backed by real per-key mutexes, created lazily and
// retained for the lifetime of the registry.
type Default struct {
	mu    sync.Mutex
	locks map[storekey.Key]*sync.Mutex
}

// NewDefault constructs an empty Default registry.
func NewDefault() *Default {
	return &Default{locks: make(map[storekey.Key]*sync.Mutex)}
}

// Lock implements Registry.
func (d *Default) Lock(key storekey.Key) func() {
	d.mu.Lock()
	m, ok := d.locks[key]
	if !ok {
		m = &sync.Mutex{}
		d.locks[key] = m
	}
	d.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// Disabled is a no-op Registry for read-only or single-threaded clients
// that do not need linearization.
type Disabled struct{}

// NewDisabled constructs a Disabled registry.
func NewDisabled() Disabled { return Disabled{} }

// Lock implements Registry; it performs no synchronization.
func (Disabled) Lock(storekey.Key) func() {
	return func() {}
}
