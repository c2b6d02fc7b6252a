// record.go
//
// Fixed-record encoding: the ordered concatenation of each element's own
// encoding, recursively. Leaf values are pulled from and stored through
// caller-supplied accessors so the codec stays independent of the variable
// store.

package codec

import (
	"fmt"

	"github.com/fedsync/fedsync/fed/fom"
)

// LeafSource supplies the current value of a leaf element's variable path
// during record encoding.
type LeafSource func(varPath string) (Value, error)

// LeafSink stores a decoded leaf value back under its variable path during
// record decoding.
type LeafSink func(varPath string, v Value) error

// LeafKind reports the scalar interpretation expected at a variable path.
// Needed because an 8-byte endian payload is ambiguous between int64 and
// float64 without it.
type LeafKind func(varPath string) (Kind, error)

// EncodeRecord walks the spec tree in declared order, encoding each leaf with
// its own tag, and returns the concatenated payload.
func EncodeRecord(spec *fom.FixedRecordSpec, src LeafSource) ([]byte, error) {
	if spec == nil {
		return nil, fmt.Errorf("record encode: nil spec")
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("record encode: %w", err)
	}
	return encodeElement(spec, src)
}

func encodeElement(el *fom.FixedRecordSpec, src LeafSource) ([]byte, error) {
	if el.Encoding == fom.EncodingFixedRecord {
		var out []byte
		for _, sub := range el.Elements {
			payload, err := encodeElement(sub, src)
			if err != nil {
				return nil, err
			}
			out = append(out, payload...)
		}
		return out, nil
	}
	v, err := src(el.VarPath)
	if err != nil {
		return nil, fmt.Errorf("element %q: %w", el.Name, err)
	}
	payload, err := Encode(v, el.Encoding)
	if err != nil {
		return nil, fmt.Errorf("element %q: %w", el.Name, err)
	}
	return payload, nil
}

// DecodeRecord walks the spec tree in declared order, consuming each leaf's
// payload from data and storing the decoded value through sink. The whole
// payload must be consumed exactly.
func DecodeRecord(data []byte, spec *fom.FixedRecordSpec, kind LeafKind, sink LeafSink) error {
	if spec == nil {
		return fmt.Errorf("record decode: nil spec")
	}
	if err := spec.Validate(); err != nil {
		return fmt.Errorf("record decode: %w", err)
	}
	rest, err := decodeElement(data, spec, kind, sink)
	if err != nil {
		return err
	}
	if len(rest) != 0 {
		return fmt.Errorf("record decode: %d trailing bytes after record %q", len(rest), spec.Name)
	}
	return nil
}

func decodeElement(data []byte, el *fom.FixedRecordSpec, kind LeafKind, sink LeafSink) ([]byte, error) {
	if el.Encoding == fom.EncodingFixedRecord {
		var err error
		for _, sub := range el.Elements {
			data, err = decodeElement(data, sub, kind, sink)
			if err != nil {
				return nil, err
			}
		}
		return data, nil
	}

	n, err := elementSize(data, el)
	if err != nil {
		return nil, err
	}
	if len(data) < n {
		return nil, fmt.Errorf("element %q: payload truncated, need %d bytes, have %d", el.Name, n, len(data))
	}
	want := KindInt64
	if el.Encoding == fom.EncodingLittleEndian || el.Encoding == fom.EncodingBigEndian {
		want, err = kind(el.VarPath)
		if err != nil {
			return nil, fmt.Errorf("element %q: %w", el.Name, err)
		}
	}
	v, err := Decode(data[:n], el.Encoding, want)
	if err != nil {
		return nil, fmt.Errorf("element %q: %w", el.Name, err)
	}
	if err := sink(el.VarPath, v); err != nil {
		return nil, fmt.Errorf("element %q: %w", el.Name, err)
	}
	return data[n:], nil
}

// elementSize returns the wire size of one leaf element at the head of data.
func elementSize(data []byte, el *fom.FixedRecordSpec) (int, error) {
	switch el.Encoding {
	case fom.EncodingLittleEndian, fom.EncodingBigEndian:
		return 8, nil
	case fom.EncodingBoolean:
		return 4, nil
	case fom.EncodingUnicodeString:
		if len(data) < 4 {
			return 0, fmt.Errorf("element %q: truncated string header", el.Name)
		}
		return 4 + 2*int(beUint32(data)), nil
	case fom.EncodingOpaque:
		if len(data) < 4 {
			return 0, fmt.Errorf("element %q: truncated opaque header", el.Name)
		}
		return 4 + int(beUint32(data)), nil
	default:
		return 0, fmt.Errorf("element %q: cannot size encoding %q", el.Name, el.Encoding)
	}
}

func beUint32(data []byte) uint32 {
	return uint32(data[0])<<24 | uint32(data[1])<<16 | uint32(data[2])<<8 | uint32(data[3])
}
