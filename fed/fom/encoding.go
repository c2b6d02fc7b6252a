// encoding.go
//
// Defines the wire-encoding and update-condition tags attached to attribute
// and parameter mappings. The tags must match what the codec implements.

package fom

// Encoding identifies the wire representation of an attribute or parameter value.
type Encoding string

const (
	// EncodingLittleEndian is an 8-byte little-endian scalar (int64 or float64).
	EncodingLittleEndian Encoding = "little-endian"
	// EncodingBigEndian is an 8-byte big-endian scalar (int64 or float64).
	EncodingBigEndian Encoding = "big-endian"
	// EncodingUnicodeString is a length-prefixed UTF-16BE string (HLAunicodeString shape).
	EncodingUnicodeString Encoding = "unicode-string"
	// EncodingBoolean is a 4-byte big-endian 0/1 (HLAboolean shape).
	EncodingBoolean Encoding = "boolean"
	// EncodingOpaque is a length-prefixed raw byte blob.
	EncodingOpaque Encoding = "opaque"
	// EncodingFixedRecord is an ordered concatenation of sub-element encodings.
	EncodingFixedRecord Encoding = "fixed-record"
	// EncodingUnknown is the zero-value tag for unrecognized encodings.
	// It never validates; a mapping carrying it fails Freeze.
	EncodingUnknown Encoding = "unknown"
)

// validEncodings maps the encoding tags a mapping may carry.
// EncodingUnknown is deliberately absent.
var validEncodings = map[Encoding]bool{
	EncodingLittleEndian:  true,
	EncodingBigEndian:     true,
	EncodingUnicodeString: true,
	EncodingBoolean:       true,
	EncodingOpaque:        true,
	EncodingFixedRecord:   true,
}

// Valid reports whether e is an encoding the codec implements.
func (e Encoding) Valid() bool {
	return validEncodings[e]
}

// UpdateCondition controls when an owned, published attribute is sent.
type UpdateCondition string

const (
	// ConditionInitialize sends the attribute exactly once, at the startup push.
	ConditionInitialize UpdateCondition = "initialize"
	// ConditionCyclic sends the attribute on every CycleTime boundary.
	ConditionCyclic UpdateCondition = "cyclic"
	// ConditionOnChange sends the attribute on a cycle boundary only when its
	// encoded value differs from the last bytes sent.
	ConditionOnChange UpdateCondition = "on-change"
)

// validConditions maps the accepted update-condition tags.
var validConditions = map[UpdateCondition]bool{
	ConditionInitialize: true,
	ConditionCyclic:     true,
	ConditionOnChange:   true,
	"":                  true, // empty defaults to cyclic
}

// Valid reports whether c is a recognized update condition.
func (c UpdateCondition) Valid() bool {
	return validConditions[c]
}
