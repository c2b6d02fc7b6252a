package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fedsync/fedsync/fed/fom"
)

func TestEncode_LittleEndianFloat_RoundTrip(t *testing.T) {
	// GIVEN a float64 value
	v := Float64Value(101.325)

	// WHEN it is encoded and decoded little-endian
	payload, err := Encode(v, fom.EncodingLittleEndian)
	require.NoError(t, err)
	require.Len(t, payload, 8)
	got, err := Decode(payload, fom.EncodingLittleEndian, KindFloat64)

	// THEN the value survives exactly
	require.NoError(t, err)
	assert.Equal(t, v, got)
}

func TestEncode_BigEndianInt_RoundTrip(t *testing.T) {
	v := Int64Value(-42)
	payload, err := Encode(v, fom.EncodingBigEndian)
	require.NoError(t, err)
	got, err := Decode(payload, fom.EncodingBigEndian, KindInt64)
	require.NoError(t, err)
	assert.Equal(t, v, got)
}

func TestEncode_Endianness_ByteOrderDiffers(t *testing.T) {
	// GIVEN the same scalar encoded both ways
	v := Int64Value(1)
	le, err := Encode(v, fom.EncodingLittleEndian)
	require.NoError(t, err)
	be, err := Encode(v, fom.EncodingBigEndian)
	require.NoError(t, err)

	// THEN the layouts mirror each other
	assert.Equal(t, byte(1), le[0])
	assert.Equal(t, byte(1), be[7])
}

func TestEncode_UnicodeString_RoundTrip(t *testing.T) {
	cases := []string{"", "cabinAtmo", "Δθ — héllo", "日本語"}
	for _, s := range cases {
		payload, err := Encode(StringValue(s), fom.EncodingUnicodeString)
		require.NoError(t, err)
		got, err := Decode(payload, fom.EncodingUnicodeString, KindString)
		require.NoError(t, err)
		assert.Equal(t, s, got.Str)
	}
}

func TestEncode_Boolean_FourByteBigEndian(t *testing.T) {
	payload, err := Encode(BoolValue(true), fom.EncodingBoolean)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 1}, payload)

	payload, err = Encode(BoolValue(false), fom.EncodingBoolean)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0}, payload)
}

func TestEncode_Opaque_RoundTrip(t *testing.T) {
	blob := []byte{0xde, 0xad, 0xbe, 0xef}
	payload, err := Encode(BytesValue(blob), fom.EncodingOpaque)
	require.NoError(t, err)
	require.Len(t, payload, 8)
	got, err := Decode(payload, fom.EncodingOpaque, KindBytes)
	require.NoError(t, err)
	assert.Equal(t, blob, got.Bytes)
}

func TestEncode_KindMismatch_Errors(t *testing.T) {
	_, err := Encode(StringValue("x"), fom.EncodingLittleEndian)
	assert.Error(t, err)
	_, err = Encode(Int64Value(1), fom.EncodingBoolean)
	assert.Error(t, err)
	_, err = Encode(Float64Value(1), fom.EncodingUnicodeString)
	assert.Error(t, err)
	_, err = Encode(BoolValue(true), fom.EncodingOpaque)
	assert.Error(t, err)
}

func TestDecode_MalformedPayloads_ErrorNotPanic(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		enc  fom.Encoding
		want Kind
	}{
		{"short scalar", []byte{1, 2, 3}, fom.EncodingLittleEndian, KindFloat64},
		{"long scalar", make([]byte, 9), fom.EncodingBigEndian, KindInt64},
		{"truncated string header", []byte{0, 0}, fom.EncodingUnicodeString, KindString},
		{"string length mismatch", []byte{0, 0, 0, 5, 0, 'a'}, fom.EncodingUnicodeString, KindString},
		{"boolean wrong width", []byte{1}, fom.EncodingBoolean, KindBool},
		{"boolean bad value", []byte{0, 0, 0, 2}, fom.EncodingBoolean, KindBool},
		{"opaque length mismatch", []byte{0, 0, 0, 9, 1}, fom.EncodingOpaque, KindBytes},
		{"unknown tag", []byte{0}, fom.EncodingUnknown, KindBytes},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.data, tc.enc, tc.want)
			assert.Error(t, err)
		})
	}
}

func TestDecode_ScalarNeedsScalarTarget(t *testing.T) {
	payload, err := Encode(Int64Value(7), fom.EncodingLittleEndian)
	require.NoError(t, err)
	_, err = Decode(payload, fom.EncodingLittleEndian, KindString)
	assert.Error(t, err)
}

func TestValue_Equal(t *testing.T) {
	assert.True(t, Int64Value(3).Equal(Int64Value(3)))
	assert.False(t, Int64Value(3).Equal(Int64Value(4)))
	assert.False(t, Int64Value(3).Equal(Float64Value(3)))
	assert.True(t, BytesValue([]byte{1, 2}).Equal(BytesValue([]byte{1, 2})))
	assert.False(t, BytesValue([]byte{1, 2}).Equal(BytesValue([]byte{1})))
}
