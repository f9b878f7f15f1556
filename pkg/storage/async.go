package storage

import (
	"context"

	"github.com/TuSKan/zarrcore/pkg/storekey"
)

// Future represents a pending asynchronous result. Cancelling ctx or
// calling Cancel cancels the context passed to the underlying store call;
// abandoning the Future without calling Wait or Cancel does not cancel the
// operation. There is no rollback of partial effects already committed to
// the store.
type Future[T any] struct {
	done   chan struct{}
	result T
	err    error
	cancel context.CancelFunc
}

func newFuture[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	ctx, cancel := context.WithCancel(ctx)
	f := &Future[T]{done: make(chan struct{}), cancel: cancel}
	go func() {
		defer close(f.done)
		f.result, f.err = fn(ctx)
	}()
	return f
}

// Wait blocks until the future resolves and returns its result.
func (f *Future[T]) Wait() (T, error) {
	<-f.done
	return f.result, f.err
}

// Cancel requests cancellation of the pending operation. It does not block
// for the operation to observe cancellation.
func (f *Future[T]) Cancel() { f.cancel() }

// AsyncReadable is the asynchronous flavor of Readable: every call returns
// immediately with a Future, and cancellation propagates into the
// underlying store call via context cancellation.
type AsyncReadable struct {
	Inner Readable
}

func (a AsyncReadable) Get(ctx context.Context, key storekey.Key) *Future[getResult] {
	return newFuture(ctx, func(ctx context.Context) (getResult, error) {
		v, ok, err := a.Inner.Get(ctx, key)
		return getResult{value: v, ok: ok}, err
	})
}

type getResult struct {
	value []byte
	ok    bool
}

func (g getResult) Value() []byte { return g.value }
func (g getResult) OK() bool      { return g.ok }

func (a AsyncReadable) GetPartialValues(ctx context.Context, requests []storekey.KeyRange) *Future[[][]byte] {
	return newFuture(ctx, func(ctx context.Context) ([][]byte, error) {
		return a.Inner.GetPartialValues(ctx, requests)
	})
}

func (a AsyncReadable) GetPartialValuesKey(ctx context.Context, key storekey.Key, ranges []storekey.ByteRange) *Future[partialKeyResult] {
	return newFuture(ctx, func(ctx context.Context) (partialKeyResult, error) {
		vs, ok, err := a.Inner.GetPartialValuesKey(ctx, key, ranges)
		return partialKeyResult{values: vs, ok: ok}, err
	})
}

type partialKeyResult struct {
	values [][]byte
	ok     bool
}

func (r partialKeyResult) Values() [][]byte { return r.values }
func (r partialKeyResult) OK() bool         { return r.ok }

func (a AsyncReadable) Size(ctx context.Context, key storekey.Key) *Future[sizeResult] {
	return newFuture(ctx, func(ctx context.Context) (sizeResult, error) {
		size, ok, err := a.Inner.Size(ctx, key)
		return sizeResult{size: size, ok: ok}, err
	})
}

type sizeResult struct {
	size uint64
	ok   bool
}

func (r sizeResult) Size() uint64 { return r.size }
func (r sizeResult) OK() bool     { return r.ok }

func (a AsyncReadable) SizePrefix(ctx context.Context, prefix storekey.Prefix) *Future[uint64] {
	return newFuture(ctx, func(ctx context.Context) (uint64, error) {
		return a.Inner.SizePrefix(ctx, prefix)
	})
}

func (a AsyncReadable) SizeAll(ctx context.Context) *Future[uint64] {
	return newFuture(ctx, a.Inner.SizeAll)
}

// AsyncWritable is the asynchronous flavor of Writable.
type AsyncWritable struct {
	Inner Writable
}

func (a AsyncWritable) Set(ctx context.Context, key storekey.Key, value []byte) *Future[struct{}] {
	return newFuture(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.Inner.Set(ctx, key, value)
	})
}

func (a AsyncWritable) SetPartialValues(ctx context.Context, writes []PartialWrite) *Future[struct{}] {
	return newFuture(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.Inner.SetPartialValues(ctx, writes)
	})
}

func (a AsyncWritable) Erase(ctx context.Context, key storekey.Key) *Future[struct{}] {
	return newFuture(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.Inner.Erase(ctx, key)
	})
}

func (a AsyncWritable) EraseValues(ctx context.Context, keys []storekey.Key) *Future[struct{}] {
	return newFuture(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.Inner.EraseValues(ctx, keys)
	})
}

func (a AsyncWritable) ErasePrefix(ctx context.Context, prefix storekey.Prefix) *Future[struct{}] {
	return newFuture(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.Inner.ErasePrefix(ctx, prefix)
	})
}

// AsyncListable is the asynchronous flavor of Listable.
type AsyncListable struct {
	Inner Listable
}

func (a AsyncListable) List(ctx context.Context) *Future[[]storekey.Key] {
	return newFuture(ctx, a.Inner.List)
}

func (a AsyncListable) ListPrefix(ctx context.Context, prefix storekey.Prefix) *Future[[]storekey.Key] {
	return newFuture(ctx, func(ctx context.Context) ([]storekey.Key, error) {
		return a.Inner.ListPrefix(ctx, prefix)
	})
}

func (a AsyncListable) ListDir(ctx context.Context, prefix storekey.Prefix) *Future[listDirResult] {
	return newFuture(ctx, func(ctx context.Context) (listDirResult, error) {
		keys, prefixes, err := a.Inner.ListDir(ctx, prefix)
		return listDirResult{keys: keys, prefixes: prefixes}, err
	})
}

type listDirResult struct {
	keys     []storekey.Key
	prefixes []storekey.Prefix
}

func (r listDirResult) Keys() []storekey.Key        { return r.keys }
func (r listDirResult) Prefixes() []storekey.Prefix { return r.prefixes }
