// Package memstore is an in-memory storage back-end. It is the one
// concrete store this module ships with the core: a minimal default so
// the array façade and codec chain can be exercised end to end without an
// external back-end.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/TuSKan/zarrcore/pkg/keylock"
	"github.com/TuSKan/zarrcore/pkg/storage"
	"github.com/TuSKan/zarrcore/pkg/storekey"
)

// Store is a process-local, map-backed key-value store.
type Store struct {
	mu    sync.RWMutex
	data  map[storekey.Key][]byte
	locks *keylock.Default
}

// New constructs an empty Store.
func New() *Store {
	return &Store{data: make(map[storekey.Key][]byte), locks: keylock.NewDefault()}
}

var _ storage.ReadableWritableListable = (*Store)(nil)

func (s *Store) Get(_ context.Context, key storekey.Key) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (s *Store) GetPartialValues(ctx context.Context, requests []storekey.KeyRange) ([][]byte, error) {
	out := make([][]byte, len(requests))
	for i, req := range requests {
		v, ok, err := s.Get(ctx, req.Key)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		resolved, err := req.Range.Resolve(uint64(len(v)))
		if err != nil {
			return nil, fmt.Errorf("memstore: %w", err)
		}
		out[i] = v[resolved.Start:resolved.End]
	}
	return out, nil
}

func (s *Store) GetPartialValuesKey(ctx context.Context, key storekey.Key, ranges []storekey.ByteRange) ([][]byte, bool, error) {
	v, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return nil, ok, err
	}
	out := make([][]byte, len(ranges))
	for i, r := range ranges {
		resolved, err := r.Resolve(uint64(len(v)))
		if err != nil {
			return nil, false, fmt.Errorf("memstore: %w", err)
		}
		out[i] = v[resolved.Start:resolved.End]
	}
	return out, true, nil
}

func (s *Store) Size(_ context.Context, key storekey.Key) (uint64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return 0, false, nil
	}
	return uint64(len(v)), true, nil
}

func (s *Store) SizePrefix(_ context.Context, prefix storekey.Prefix) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total uint64
	for k, v := range s.data {
		if strings.HasPrefix(k.String(), prefix.String()) {
			total += uint64(len(v))
		}
	}
	return total, nil
}

func (s *Store) SizeAll(ctx context.Context) (uint64, error) {
	return s.SizePrefix(ctx, storekey.RootPrefix)
}

func (s *Store) Set(_ context.Context, key storekey.Key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	s.data[key] = cp
	return nil
}

func (s *Store) SetPartialValues(ctx context.Context, writes []storage.PartialWrite) error {
	// Store's mutex guards each Get and Set on its own; the per-key lock
	// keeps the composed read-modify-write of one key from interleaving.
	return storage.ComposedSetPartialValues(ctx, s, s.locks, writes)
}

func (s *Store) Erase(_ context.Context, key storekey.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *Store) EraseValues(ctx context.Context, keys []storekey.Key) error {
	for _, k := range keys {
		if err := s.Erase(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) ErasePrefix(_ context.Context, prefix storekey.Prefix) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.data {
		if strings.HasPrefix(k.String(), prefix.String()) {
			delete(s.data, k)
		}
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]storekey.Key, error) {
	return s.ListPrefix(ctx, storekey.RootPrefix)
}

func (s *Store) ListPrefix(_ context.Context, prefix storekey.Prefix) ([]storekey.Key, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]storekey.Key, 0)
	for k := range s.data {
		if strings.HasPrefix(k.String(), prefix.String()) {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (s *Store) ListDir(_ context.Context, prefix storekey.Prefix) ([]storekey.Key, []storekey.Prefix, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	childKeys := make(map[storekey.Key]struct{})
	childPrefixes := make(map[storekey.Prefix]struct{})

	base := prefix.String()
	for k := range s.data {
		ks := k.String()
		if !strings.HasPrefix(ks, base) {
			continue
		}
		rest := ks[len(base):]
		if idx := strings.IndexByte(rest, '/'); idx >= 0 {
			childPrefixes[prefix.Child(rest[:idx])] = struct{}{}
		} else if rest != "" {
			childKeys[k] = struct{}{}
		}
	}

	keys := make([]storekey.Key, 0, len(childKeys))
	for k := range childKeys {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	prefixes := make([]storekey.Prefix, 0, len(childPrefixes))
	for p := range childPrefixes {
		prefixes = append(prefixes, p)
	}
	sort.Slice(prefixes, func(i, j int) bool { return prefixes[i] < prefixes[j] })

	return keys, prefixes, nil
}
