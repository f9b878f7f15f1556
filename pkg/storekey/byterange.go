package storekey

import "fmt"

// ByteRange is a half-open interval over a store value's bytes, expressed
// relative to either the start or the end of the value.
type ByteRange struct {
	fromEnd bool
	offset  uint64
	length  *uint64 // nil means "to end of value"
}

// FromStart constructs a byte range anchored at the start of the value.
// A nil length means "to the end of the value".
func FromStart(offset uint64, length *uint64) ByteRange {
	return ByteRange{fromEnd: false, offset: offset, length: length}
}

// FromEnd constructs a byte range anchored at the end of the value: offset
// counts backward from the end. A nil length means "from offset to the
// end", i.e. the last `offset` bytes when length is nil... actually means
// everything from (size-offset) to the end.
func FromEnd(offset uint64, length *uint64) ByteRange {
	return ByteRange{fromEnd: true, offset: offset, length: length}
}

// IsFromEnd reports whether the range is anchored at the end of the value.
func (b ByteRange) IsFromEnd() bool { return b.fromEnd }

// Offset returns the raw offset as constructed.
func (b ByteRange) Offset() uint64 { return b.offset }

// Length returns the configured length and whether one was set.
func (b ByteRange) Length() (uint64, bool) {
	if b.length == nil {
		return 0, false
	}
	return *b.length, true
}

// Resolved is a concrete, resolved [Start, End) byte interval.
type Resolved struct {
	Start uint64
	End   uint64
}

// Length returns End - Start.
func (r Resolved) Length() uint64 { return r.End - r.Start }

// Resolve computes the concrete [start, end) interval of b against a value
// of the given size. Returns an error if the range exceeds the value.
func (b ByteRange) Resolve(size uint64) (Resolved, error) {
	if b.fromEnd {
		if b.offset > size {
			return Resolved{}, fmt.Errorf("storekey: from-end offset %d exceeds size %d", b.offset, size)
		}
		start := size - b.offset
		end := size
		if b.length != nil {
			end = start + *b.length
		}
		if end > size {
			return Resolved{}, fmt.Errorf("storekey: byte range end %d exceeds size %d", end, size)
		}
		return Resolved{Start: start, End: end}, nil
	}

	start := b.offset
	if start > size {
		return Resolved{}, fmt.Errorf("storekey: byte range start %d exceeds size %d", start, size)
	}
	end := size
	if b.length != nil {
		end = start + *b.length
	}
	if end > size {
		return Resolved{}, fmt.Errorf("storekey: byte range end %d exceeds size %d", end, size)
	}
	return Resolved{Start: start, End: end}, nil
}

// Full returns a byte range covering the entire value.
func Full() ByteRange {
	return FromStart(0, nil)
}

// KeyRange pairs a key with a byte range, used for batched partial reads.
type KeyRange struct {
	Key   Key
	Range ByteRange
}
