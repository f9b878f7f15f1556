package storage

import (
	"context"

	"github.com/TuSKan/zarrcore/pkg/storekey"
	"github.com/google/uuid"
)

// Transformer is anything that implements the same capability set as the
// store it wraps by delegating to an inner storage, optionally logging,
// instrumenting, or caching along the way.
type Transformer = ReadableWritableListable

// UsageLogRecord is a single call record emitted by UsageLog.
type UsageLogRecord struct {
	InvocationID uuid.UUID
	Prefix       string
	Call         string
	Key          string
}

// UsageLog wraps an inner storage and emits one UsageLogRecord per call
// through Sink. Prefix is computed per-record from a caller-supplied clock
// function, matching the "prefixed by a caller-supplied function of the
// clock" contract in spec.md §4.1.
type UsageLog struct {
	Inner ReadableWritableListable
	Clock func() string
	Sink  func(UsageLogRecord)
}

func (u *UsageLog) emit(call, key string) {
	if u.Sink == nil {
		return
	}
	prefix := ""
	if u.Clock != nil {
		prefix = u.Clock()
	}
	u.Sink(UsageLogRecord{InvocationID: uuid.New(), Prefix: prefix, Call: call, Key: key})
}

func (u *UsageLog) Get(ctx context.Context, key storekey.Key) ([]byte, bool, error) {
	u.emit("get", key.String())
	return u.Inner.Get(ctx, key)
}

func (u *UsageLog) GetPartialValues(ctx context.Context, requests []storekey.KeyRange) ([][]byte, error) {
	u.emit("get_partial_values", "")
	return u.Inner.GetPartialValues(ctx, requests)
}

func (u *UsageLog) GetPartialValuesKey(ctx context.Context, key storekey.Key, ranges []storekey.ByteRange) ([][]byte, bool, error) {
	u.emit("get_partial_values_key", key.String())
	return u.Inner.GetPartialValuesKey(ctx, key, ranges)
}

func (u *UsageLog) Size(ctx context.Context, key storekey.Key) (uint64, bool, error) {
	u.emit("size", key.String())
	return u.Inner.Size(ctx, key)
}

func (u *UsageLog) SizePrefix(ctx context.Context, prefix storekey.Prefix) (uint64, error) {
	u.emit("size_prefix", prefix.String())
	return u.Inner.SizePrefix(ctx, prefix)
}

func (u *UsageLog) SizeAll(ctx context.Context) (uint64, error) {
	u.emit("size", "")
	return u.Inner.SizeAll(ctx)
}

func (u *UsageLog) Set(ctx context.Context, key storekey.Key, value []byte) error {
	u.emit("set", key.String())
	return u.Inner.Set(ctx, key, value)
}

func (u *UsageLog) SetPartialValues(ctx context.Context, writes []PartialWrite) error {
	u.emit("set_partial_values", "")
	return u.Inner.SetPartialValues(ctx, writes)
}

func (u *UsageLog) Erase(ctx context.Context, key storekey.Key) error {
	u.emit("erase", key.String())
	return u.Inner.Erase(ctx, key)
}

func (u *UsageLog) EraseValues(ctx context.Context, keys []storekey.Key) error {
	u.emit("erase_values", "")
	return u.Inner.EraseValues(ctx, keys)
}

func (u *UsageLog) ErasePrefix(ctx context.Context, prefix storekey.Prefix) error {
	u.emit("erase_prefix", prefix.String())
	return u.Inner.ErasePrefix(ctx, prefix)
}

func (u *UsageLog) List(ctx context.Context) ([]storekey.Key, error) {
	u.emit("list", "")
	return u.Inner.List(ctx)
}

func (u *UsageLog) ListPrefix(ctx context.Context, prefix storekey.Prefix) ([]storekey.Key, error) {
	u.emit("list_prefix", prefix.String())
	return u.Inner.ListPrefix(ctx, prefix)
}

func (u *UsageLog) ListDir(ctx context.Context, prefix storekey.Prefix) ([]storekey.Key, []storekey.Prefix, error) {
	u.emit("list_dir", prefix.String())
	return u.Inner.ListDir(ctx, prefix)
}

var _ ReadableWritableListable = (*UsageLog)(nil)
