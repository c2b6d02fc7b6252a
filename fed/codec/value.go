// value.go
//
// Defines the typed Value that attribute codec operations move between the
// variable store and the wire.

package codec

import "fmt"

// Kind discriminates the payload of a Value.
type Kind int

const (
	// KindInt64 holds a signed 64-bit integer.
	KindInt64 Kind = iota
	// KindFloat64 holds an IEEE-754 double.
	KindFloat64
	// KindBool holds a boolean.
	KindBool
	// KindString holds a Unicode string.
	KindString
	// KindBytes holds an opaque byte blob.
	KindBytes
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInt64:
		return "int64"
	case KindFloat64:
		return "float64"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a tagged union holding one simulation variable value. Only the
// field selected by Kind is meaningful. Fields are exported so checkpoints can
// serialize values directly.
type Value struct {
	Kind    Kind
	Int64   int64   `cbor:",omitempty"`
	Float64 float64 `cbor:",omitempty"`
	Bool    bool    `cbor:",omitempty"`
	Str     string  `cbor:",omitempty"`
	Bytes   []byte  `cbor:",omitempty"`
}

// Int64Value wraps an int64.
func Int64Value(v int64) Value { return Value{Kind: KindInt64, Int64: v} }

// Float64Value wraps a float64.
func Float64Value(v float64) Value { return Value{Kind: KindFloat64, Float64: v} }

// BoolValue wraps a bool.
func BoolValue(v bool) Value { return Value{Kind: KindBool, Bool: v} }

// StringValue wraps a string.
func StringValue(v string) Value { return Value{Kind: KindString, Str: v} }

// BytesValue wraps a byte blob. The slice is held, not copied.
func BytesValue(v []byte) Value { return Value{Kind: KindBytes, Bytes: v} }

// Equal reports whether two values have the same kind and payload.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindInt64:
		return v.Int64 == other.Int64
	case KindFloat64:
		return v.Float64 == other.Float64
	case KindBool:
		return v.Bool == other.Bool
	case KindString:
		return v.Str == other.Str
	case KindBytes:
		if len(v.Bytes) != len(other.Bytes) {
			return false
		}
		for i := range v.Bytes {
			if v.Bytes[i] != other.Bytes[i] {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String returns a human-readable rendering for logs.
func (v Value) String() string {
	switch v.Kind {
	case KindInt64:
		return fmt.Sprintf("%d", v.Int64)
	case KindFloat64:
		return fmt.Sprintf("%g", v.Float64)
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	case KindString:
		return fmt.Sprintf("%q", v.Str)
	case KindBytes:
		return fmt.Sprintf("%d bytes", len(v.Bytes))
	default:
		return "invalid"
	}
}
