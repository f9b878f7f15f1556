package datatype

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/x448/float16"
)

// ParseFillValueJSON parses a zarr.json "fill_value" entry for data type dt,
// accepting a JSON number, an array of bytes, or the string tokens "NaN",
// "Infinity", "-Infinity", and hex-byte strings prefixed "0x", per the Zarr
// V3 metadata spec (spec.md §4.3).
func ParseFillValueJSON(dt DataType, raw json.RawMessage) (FillValue, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return FillValue{}, fmt.Errorf("datatype: empty fill_value")
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return FillValue{}, fmt.Errorf("datatype: invalid fill_value string: %w", err)
		}
		return parseFillValueString(dt, s)
	}

	if trimmed[0] == '[' {
		if IsRawBits(dt) {
			var ints []int64
			if err := json.Unmarshal(raw, &ints); err != nil {
				return FillValue{}, fmt.Errorf("datatype: invalid fill_value array: %w", err)
			}
			buf := make([]byte, len(ints))
			for i, v := range ints {
				if v < 0 || v > 255 {
					return FillValue{}, fmt.Errorf("datatype: fill_value byte %d out of range", v)
				}
				buf[i] = byte(v)
			}
			return NewFillValue(dt, buf)
		}
		var nums []float64
		if err := json.Unmarshal(raw, &nums); err == nil {
			return fillValueFromComponents(dt, nums)
		}
		var ints []int64
		if err := json.Unmarshal(raw, &ints); err != nil {
			return FillValue{}, fmt.Errorf("datatype: invalid fill_value array: %w", err)
		}
		components := make([]float64, len(ints))
		for i, v := range ints {
			components[i] = float64(v)
		}
		return fillValueFromComponents(dt, components)
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return FillValue{}, fmt.Errorf("datatype: invalid fill_value number: %w", err)
	}
	return fillValueFromComponents(dt, []float64{f})
}

func parseFillValueString(dt DataType, s string) (FillValue, error) {
	switch s {
	case "NaN":
		return canonicalNaNFillValue(dt)
	case "Infinity":
		return infinityFillValue(dt, false)
	case "-Infinity":
		return infinityFillValue(dt, true)
	}
	if strings.HasPrefix(s, "0x") {
		raw, err := hex.DecodeString(s[2:])
		if err != nil {
			return FillValue{}, fmt.Errorf("datatype: invalid hex fill_value %q: %w", s, err)
		}
		return NewFillValue(dt, raw)
	}
	return FillValue{}, fmt.Errorf("datatype: unrecognized fill_value string %q", s)
}

func canonicalNaNFillValue(dt DataType) (FillValue, error) {
	buf := make([]byte, dt.ElementSize())
	switch dt {
	case Float16:
		binary.LittleEndian.PutUint16(buf, CanonicalNaNFloat16)
	case Bfloat16:
		binary.LittleEndian.PutUint16(buf, CanonicalNaNBfloat16)
	case Float32:
		binary.LittleEndian.PutUint32(buf, CanonicalNaNFloat32)
	case Float64:
		binary.LittleEndian.PutUint64(buf, CanonicalNaNFloat64)
	default:
		return FillValue{}, fmt.Errorf("datatype: NaN fill_value is not valid for %s", dt)
	}
	return FillValue{bytes: buf}, nil
}

func infinityFillValue(dt DataType, negative bool) (FillValue, error) {
	buf := make([]byte, dt.ElementSize())
	sign := 1.0
	if negative {
		sign = -1.0
	}
	switch dt {
	case Float16:
		binary.LittleEndian.PutUint16(buf, float16.Fromfloat32(float32(sign*math.Inf(1))).Bits())
	case Bfloat16:
		bits := CanonicalNaNBfloat16 &^ 0x7fff // placeholder cleared below
		_ = bits
		v := math.Float32bits(float32(sign * math.Inf(1)))
		binary.LittleEndian.PutUint16(buf, uint16(v>>16))
	case Float32:
		binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(sign*math.Inf(1))))
	case Float64:
		binary.LittleEndian.PutUint64(buf, math.Float64bits(sign*math.Inf(1)))
	default:
		return FillValue{}, fmt.Errorf("datatype: Infinity fill_value is not valid for %s", dt)
	}
	return FillValue{bytes: buf}, nil
}

// fillValueFromComponents builds a FillValue from one (real scalars) or two
// (complex: real, imag) float64 components.
func fillValueFromComponents(dt DataType, components []float64) (FillValue, error) {
	if IsComplex(dt) {
		if len(components) != 2 {
			return FillValue{}, fmt.Errorf("datatype: complex fill_value needs 2 components, got %d", len(components))
		}
		half := dt.ElementSize() / 2
		var sub DataType
		if half == 4 {
			sub = Float32
		} else {
			sub = Float64
		}
		re, err := fillValueFromComponents(sub, components[0:1])
		if err != nil {
			return FillValue{}, err
		}
		im, err := fillValueFromComponents(sub, components[1:2])
		if err != nil {
			return FillValue{}, err
		}
		buf := append(append([]byte{}, re.Bytes()...), im.Bytes()...)
		return NewFillValue(dt, buf)
	}

	if len(components) != 1 {
		return FillValue{}, fmt.Errorf("datatype: fill_value for %s needs exactly 1 component, got %d", dt, len(components))
	}
	v := components[0]
	buf := make([]byte, dt.ElementSize())
	switch dt {
	case Bool:
		if v != 0 {
			buf[0] = 1
		}
	case Int8:
		buf[0] = byte(int8(v))
	case Int16:
		binary.LittleEndian.PutUint16(buf, uint16(int16(v)))
	case Int32:
		binary.LittleEndian.PutUint32(buf, uint32(int32(v)))
	case Int64:
		binary.LittleEndian.PutUint64(buf, uint64(int64(v)))
	case Uint8:
		buf[0] = byte(uint8(v))
	case Uint16:
		binary.LittleEndian.PutUint16(buf, uint16(v))
	case Uint32:
		binary.LittleEndian.PutUint32(buf, uint32(v))
	case Uint64:
		binary.LittleEndian.PutUint64(buf, uint64(v))
	case Float16:
		binary.LittleEndian.PutUint16(buf, float16.Fromfloat32(float32(v)).Bits())
	case Bfloat16:
		bits := math.Float32bits(float32(v))
		binary.LittleEndian.PutUint16(buf, uint16(bits>>16))
	case Float32:
		binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(v)))
	case Float64:
		binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
	default:
		return FillValue{}, fmt.Errorf("datatype: cannot build scalar fill_value for %s", dt)
	}
	return NewFillValue(dt, buf)
}

// SerializeFillValueJSON renders f as its canonical zarr.json form for dt:
// floats use strings for non-finite values, complex values are 2-element
// arrays, raw-bits types are arrays of unsigned bytes, everything else is
// a plain JSON number.
func SerializeFillValueJSON(dt DataType, f FillValue) (json.RawMessage, error) {
	if IsRawBits(dt) {
		// raw N-byte-blob type: array of unsigned bytes
		return json.Marshal(rawBytesToInts(f.Bytes()))
	}

	if IsComplex(dt) {
		half := dt.ElementSize() / 2
		var sub DataType
		if half == 4 {
			sub = Float32
		} else {
			sub = Float64
		}
		reFV, _ := NewFillValue(sub, f.Bytes()[:half])
		imFV, _ := NewFillValue(sub, f.Bytes()[half:])
		reMsg, err := SerializeFillValueJSON(sub, reFV)
		if err != nil {
			return nil, err
		}
		imMsg, err := SerializeFillValueJSON(sub, imFV)
		if err != nil {
			return nil, err
		}
		return json.Marshal([]json.RawMessage{reMsg, imMsg})
	}

	if IsFloat(dt) {
		v, isSpecial, specialStr := floatFillValueToJSON(dt, f)
		if isSpecial {
			return json.Marshal(specialStr)
		}
		return json.Marshal(v)
	}

	return json.Marshal(scalarFillValueToJSON(dt, f))
}

func rawBytesToInts(b []byte) []int {
	out := make([]int, len(b))
	for i, v := range b {
		out[i] = int(v)
	}
	return out
}

func floatFillValueToJSON(dt DataType, f FillValue) (value float64, isSpecial bool, specialStr string) {
	b := f.Bytes()
	switch dt {
	case Float16:
		v := float16.Frombits(binary.LittleEndian.Uint16(b)).Float32()
		return classifyFloat(float64(v))
	case Bfloat16:
		bits := uint32(binary.LittleEndian.Uint16(b)) << 16
		v := math.Float32frombits(bits)
		return classifyFloat(float64(v))
	case Float32:
		v := math.Float32frombits(binary.LittleEndian.Uint32(b))
		return classifyFloat(float64(v))
	case Float64:
		v := math.Float64frombits(binary.LittleEndian.Uint64(b))
		return classifyFloat(v)
	}
	return 0, false, ""
}

func classifyFloat(v float64) (float64, bool, string) {
	switch {
	case math.IsNaN(v):
		return 0, true, "NaN"
	case math.IsInf(v, 1):
		return 0, true, "Infinity"
	case math.IsInf(v, -1):
		return 0, true, "-Infinity"
	default:
		return v, false, ""
	}
}

func scalarFillValueToJSON(dt DataType, f FillValue) any {
	b := f.Bytes()
	switch dt {
	case Bool:
		return b[0] != 0
	case Int8:
		return int8(b[0])
	case Int16:
		return int16(binary.LittleEndian.Uint16(b))
	case Int32:
		return int32(binary.LittleEndian.Uint32(b))
	case Int64:
		return int64(binary.LittleEndian.Uint64(b))
	case Uint8:
		return b[0]
	case Uint16:
		return binary.LittleEndian.Uint16(b)
	case Uint32:
		return binary.LittleEndian.Uint32(b)
	case Uint64:
		return binary.LittleEndian.Uint64(b)
	default:
		return rawBytesToInts(b)
	}
}
