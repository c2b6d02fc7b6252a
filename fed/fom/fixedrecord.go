// fixedrecord.go
//
// Defines the FixedRecordSpec tree describing composite (record-of-records)
// attribute encodings.

package fom

import "fmt"

// FixedRecordSpec describes one element of a fixed-record encoding.
// A spec is either a leaf (scalar/string/boolean/opaque element bound to a
// variable path) or a nested fixed record with an ordered, non-empty list of
// sub-elements. The codec walks the tree in declared order when encoding and
// decoding.
type FixedRecordSpec struct {
	Name     string             // element name, unique among siblings
	Encoding Encoding           // leaf encoding, or EncodingFixedRecord for a nested record
	VarPath  string             // variable path backing a leaf element; empty for records
	Elements []*FixedRecordSpec // ordered sub-elements; nil for leaves
}

// NewRecordElement creates a nested fixed-record element from its sub-elements.
func NewRecordElement(name string, elements ...*FixedRecordSpec) *FixedRecordSpec {
	return &FixedRecordSpec{Name: name, Encoding: EncodingFixedRecord, Elements: elements}
}

// NewLeafElement creates a leaf element bound to a variable path.
func NewLeafElement(name, varPath string, enc Encoding) *FixedRecordSpec {
	return &FixedRecordSpec{Name: name, Encoding: enc, VarPath: varPath}
}

// Validate checks the structural invariants of the spec tree:
// a fixed-record node has at least one sub-element and no variable path,
// a leaf has a variable path and no sub-elements, every encoding tag is
// implemented, and sibling names are unique.
func (s *FixedRecordSpec) Validate() error {
	if s == nil {
		return fmt.Errorf("fixed record spec is nil")
	}
	if s.Name == "" {
		return fmt.Errorf("fixed record element has no name")
	}
	if !s.Encoding.Valid() {
		return fmt.Errorf("fixed record element %q: invalid encoding %q", s.Name, s.Encoding)
	}
	if s.Encoding == EncodingFixedRecord {
		if len(s.Elements) == 0 {
			return fmt.Errorf("fixed record element %q has no sub-elements", s.Name)
		}
		if s.VarPath != "" {
			return fmt.Errorf("fixed record element %q must not carry a variable path", s.Name)
		}
		seen := make(map[string]bool, len(s.Elements))
		for _, el := range s.Elements {
			if err := el.Validate(); err != nil {
				return fmt.Errorf("in record %q: %w", s.Name, err)
			}
			if seen[el.Name] {
				return fmt.Errorf("record %q has duplicate element %q", s.Name, el.Name)
			}
			seen[el.Name] = true
		}
		return nil
	}
	// Leaf element.
	if len(s.Elements) != 0 {
		return fmt.Errorf("leaf element %q must not have sub-elements", s.Name)
	}
	if s.VarPath == "" {
		return fmt.Errorf("leaf element %q has no variable path", s.Name)
	}
	return nil
}

// Leaves appends the leaf elements of the tree to dst in declared order and
// returns the extended slice. The scheduler uses this to bind record elements
// to variable-store slots.
func (s *FixedRecordSpec) Leaves(dst []*FixedRecordSpec) []*FixedRecordSpec {
	if s.Encoding != EncodingFixedRecord {
		return append(dst, s)
	}
	for _, el := range s.Elements {
		dst = el.Leaves(dst)
	}
	return dst
}
