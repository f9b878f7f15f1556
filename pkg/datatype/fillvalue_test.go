package datatype_test

import (
	"encoding/json"
	"testing"

	"github.com/TuSKan/zarrcore/pkg/datatype"
	"github.com/stretchr/testify/require"
)

func TestFillValueEqualsElementFastPaths(t *testing.T) {
	for _, dt := range []datatype.DataType{datatype.Int8, datatype.Int16, datatype.Int32, datatype.Int64, datatype.Complex128} {
		fv := datatype.Zero(dt)
		require.True(t, fv.EqualsElement(make([]byte, dt.ElementSize())))
		nonzero := make([]byte, dt.ElementSize())
		nonzero[0] = 1
		require.False(t, fv.EqualsElement(nonzero))
	}
}

func TestFillValueIsUniform(t *testing.T) {
	fv := datatype.Zero(datatype.Int32)
	require.True(t, fv.IsUniform(make([]byte, 12)))

	data := make([]byte, 12)
	data[4] = 1
	require.False(t, fv.IsUniform(data))
}

func TestParseFillValueJSONNumber(t *testing.T) {
	fv, err := datatype.ParseFillValueJSON(datatype.Int32, json.RawMessage(`42`))
	require.NoError(t, err)
	require.Equal(t, []byte{42, 0, 0, 0}, fv.Bytes())
}

func TestParseFillValueJSONNaN(t *testing.T) {
	fv, err := datatype.ParseFillValueJSON(datatype.Float64, json.RawMessage(`"NaN"`))
	require.NoError(t, err)
	msg, err := datatype.SerializeFillValueJSON(datatype.Float64, fv)
	require.NoError(t, err)
	require.JSONEq(t, `"NaN"`, string(msg))
}

func TestParseFillValueJSONHex(t *testing.T) {
	fv, err := datatype.ParseFillValueJSON(datatype.Uint16, json.RawMessage(`"0x0102"`))
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x02}, fv.Bytes())
}

func TestParseFillValueJSONComplex(t *testing.T) {
	fv, err := datatype.ParseFillValueJSON(datatype.Complex128, json.RawMessage(`[1.5, -2.5]`))
	require.NoError(t, err)
	require.Equal(t, 16, fv.Len())

	msg, err := datatype.SerializeFillValueJSON(datatype.Complex128, fv)
	require.NoError(t, err)
	require.JSONEq(t, `[1.5, -2.5]`, string(msg))
}

func TestSerializeFillValueJSONRoundTripInt(t *testing.T) {
	fv, err := datatype.ParseFillValueJSON(datatype.Int64, json.RawMessage(`-7`))
	require.NoError(t, err)
	msg, err := datatype.SerializeFillValueJSON(datatype.Int64, fv)
	require.NoError(t, err)
	require.JSONEq(t, `-7`, string(msg))
}

func TestCanonicalNaNBitPatterns(t *testing.T) {
	fv, err := datatype.ParseFillValueJSON(datatype.Float32, json.RawMessage(`"NaN"`))
	require.NoError(t, err)
	require.Equal(t, datatype.CanonicalNaNFloat32, leU32(fv.Bytes()))
}

func leU32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
