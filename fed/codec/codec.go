// codec.go
//
// Encodes and decodes attribute values between the typed Value representation
// and the wire byte layouts named by the encoding tags. Decode never panics on
// malformed input; truncated or over-long payloads surface as errors.

package codec

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf16"

	"github.com/fedsync/fedsync/fed/fom"
)

// Encode produces the wire bytes for v under the given encoding tag.
// Fixed records are handled by EncodeRecord, which needs the element spec.
func Encode(v Value, enc fom.Encoding) ([]byte, error) {
	switch enc {
	case fom.EncodingLittleEndian:
		bits, err := scalarBits(v)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, bits)
		return buf, nil

	case fom.EncodingBigEndian:
		bits, err := scalarBits(v)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, bits)
		return buf, nil

	case fom.EncodingUnicodeString:
		if v.Kind != KindString {
			return nil, fmt.Errorf("unicode-string encoding requires a string value, got %s", v.Kind)
		}
		units := utf16.Encode([]rune(v.Str))
		buf := make([]byte, 4+2*len(units))
		binary.BigEndian.PutUint32(buf, uint32(len(units)))
		for i, u := range units {
			binary.BigEndian.PutUint16(buf[4+2*i:], u)
		}
		return buf, nil

	case fom.EncodingBoolean:
		if v.Kind != KindBool {
			return nil, fmt.Errorf("boolean encoding requires a bool value, got %s", v.Kind)
		}
		buf := make([]byte, 4)
		if v.Bool {
			binary.BigEndian.PutUint32(buf, 1)
		}
		return buf, nil

	case fom.EncodingOpaque:
		if v.Kind != KindBytes {
			return nil, fmt.Errorf("opaque encoding requires a bytes value, got %s", v.Kind)
		}
		buf := make([]byte, 4+len(v.Bytes))
		binary.BigEndian.PutUint32(buf, uint32(len(v.Bytes)))
		copy(buf[4:], v.Bytes)
		return buf, nil

	case fom.EncodingFixedRecord:
		return nil, fmt.Errorf("fixed-record values must be encoded with EncodeRecord")

	default:
		return nil, fmt.Errorf("cannot encode with tag %q", enc)
	}
}

// Decode parses the wire bytes under the given encoding tag. want selects the
// scalar interpretation (int64 vs float64) for the endian encodings; it is
// ignored for string, boolean and opaque payloads.
func Decode(data []byte, enc fom.Encoding, want Kind) (Value, error) {
	switch enc {
	case fom.EncodingLittleEndian:
		if len(data) != 8 {
			return Value{}, fmt.Errorf("little-endian scalar needs 8 bytes, got %d", len(data))
		}
		return scalarValue(binary.LittleEndian.Uint64(data), want)

	case fom.EncodingBigEndian:
		if len(data) != 8 {
			return Value{}, fmt.Errorf("big-endian scalar needs 8 bytes, got %d", len(data))
		}
		return scalarValue(binary.BigEndian.Uint64(data), want)

	case fom.EncodingUnicodeString:
		if len(data) < 4 {
			return Value{}, fmt.Errorf("unicode-string payload truncated: %d bytes", len(data))
		}
		n := int(binary.BigEndian.Uint32(data))
		if len(data) != 4+2*n {
			return Value{}, fmt.Errorf("unicode-string length %d does not match payload of %d bytes", n, len(data))
		}
		units := make([]uint16, n)
		for i := range units {
			units[i] = binary.BigEndian.Uint16(data[4+2*i:])
		}
		return StringValue(string(utf16.Decode(units))), nil

	case fom.EncodingBoolean:
		if len(data) != 4 {
			return Value{}, fmt.Errorf("boolean payload needs 4 bytes, got %d", len(data))
		}
		switch binary.BigEndian.Uint32(data) {
		case 0:
			return BoolValue(false), nil
		case 1:
			return BoolValue(true), nil
		default:
			return Value{}, fmt.Errorf("boolean payload is neither 0 nor 1")
		}

	case fom.EncodingOpaque:
		if len(data) < 4 {
			return Value{}, fmt.Errorf("opaque payload truncated: %d bytes", len(data))
		}
		n := int(binary.BigEndian.Uint32(data))
		if len(data) != 4+n {
			return Value{}, fmt.Errorf("opaque length %d does not match payload of %d bytes", n, len(data))
		}
		blob := make([]byte, n)
		copy(blob, data[4:])
		return BytesValue(blob), nil

	case fom.EncodingFixedRecord:
		return Value{}, fmt.Errorf("fixed-record payloads must be decoded with DecodeRecord")

	default:
		return Value{}, fmt.Errorf("cannot decode with tag %q", enc)
	}
}

// scalarBits returns the 8-byte bit pattern of a scalar value.
func scalarBits(v Value) (uint64, error) {
	switch v.Kind {
	case KindInt64:
		return uint64(v.Int64), nil
	case KindFloat64:
		return math.Float64bits(v.Float64), nil
	default:
		return 0, fmt.Errorf("scalar encoding requires an int64 or float64 value, got %s", v.Kind)
	}
}

// scalarValue interprets an 8-byte bit pattern as the wanted scalar kind.
func scalarValue(bits uint64, want Kind) (Value, error) {
	switch want {
	case KindInt64:
		return Int64Value(int64(bits)), nil
	case KindFloat64:
		return Float64Value(math.Float64frombits(bits)), nil
	default:
		return Value{}, fmt.Errorf("scalar decode requires an int64 or float64 target, got %s", want)
	}
}
