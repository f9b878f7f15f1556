package datatype

// Canonical NaN bit patterns. The library always serializes these exact
// patterns but accepts (and preserves on round-trip) any NaN bit pattern
// presented on write — see spec.md §9 "NaN canonicalization".
const (
	CanonicalNaNFloat16  uint16 = 0x7e00
	CanonicalNaNBfloat16 uint16 = 0x7fc0
	CanonicalNaNFloat32  uint32 = 0x7fc00000
	CanonicalNaNFloat64  uint64 = 0x7ff8000000000000
)
