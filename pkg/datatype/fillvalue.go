package datatype

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// FillValue is the default byte pattern written for a data type's missing
// chunk storage. Its length always equals the owning data type's element
// size.
type FillValue struct {
	bytes []byte
}

// NewFillValue validates that value's length matches dt's element size.
func NewFillValue(dt DataType, value []byte) (FillValue, error) {
	if len(value) != dt.ElementSize() {
		return FillValue{}, fmt.Errorf("datatype: fill value length %d does not match element size %d for %s", len(value), dt.ElementSize(), dt)
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	return FillValue{bytes: cp}, nil
}

// Bytes returns the fill value's byte pattern.
func (f FillValue) Bytes() []byte { return f.bytes }

// Len returns the fill value's byte length (== element size).
func (f FillValue) Len() int { return len(f.bytes) }

// EqualsElement reports whether the byte-sized element at elem equals the
// fill value's pattern, byte-wise, with a fast path for common element
// sizes.
func (f FillValue) EqualsElement(elem []byte) bool {
	if len(elem) != len(f.bytes) {
		return false
	}
	switch len(f.bytes) {
	case 1:
		return elem[0] == f.bytes[0]
	case 2:
		return binary.LittleEndian.Uint16(elem) == binary.LittleEndian.Uint16(f.bytes)
	case 4:
		return binary.LittleEndian.Uint32(elem) == binary.LittleEndian.Uint32(f.bytes)
	case 8:
		return binary.LittleEndian.Uint64(elem) == binary.LittleEndian.Uint64(f.bytes)
	case 16:
		return binary.LittleEndian.Uint64(elem[:8]) == binary.LittleEndian.Uint64(f.bytes[:8]) &&
			binary.LittleEndian.Uint64(elem[8:]) == binary.LittleEndian.Uint64(f.bytes[8:])
	default:
		return bytes.Equal(elem, f.bytes)
	}
}

// IsUniform reports whether every element-sized slice within data equals
// the fill value. data's length must be a multiple of the element size.
func (f FillValue) IsUniform(data []byte) bool {
	n := len(f.bytes)
	if n == 0 || len(data)%n != 0 {
		return len(data) == 0
	}
	for off := 0; off < len(data); off += n {
		if !f.EqualsElement(data[off : off+n]) {
			return false
		}
	}
	return true
}

// Fill returns a newly-allocated buffer of count elements, each set to the
// fill value's pattern.
func (f FillValue) Fill(count int) []byte {
	n := len(f.bytes)
	out := make([]byte, count*n)
	for i := 0; i < count; i++ {
		copy(out[i*n:(i+1)*n], f.bytes)
	}
	return out
}

// Zero constructs the zero fill value for dt (all-zero bytes).
func Zero(dt DataType) FillValue {
	return FillValue{bytes: make([]byte, dt.ElementSize())}
}
