// bootstrap.go
//
// Declares a variable store from a frozen federate configuration. The real
// host model declares its own variables; the standalone runner uses this to
// give every mapped path a zero-valued slot of the kind its encoding implies.

package registry

import (
	"fmt"

	"github.com/fedsync/fedsync/fed/codec"
	"github.com/fedsync/fedsync/fed/fom"
)

// NewStoreForConfig builds a VarStore with one zero-valued slot per variable
// path the configuration maps. Endian scalars default to float64; a host
// model binding its own store controls the kind itself.
func NewStoreForConfig(fc *fom.FederateConfig) (*VarStore, error) {
	store := NewVarStore()
	declare := func(path string, enc fom.Encoding) error {
		if store.Has(path) {
			// Two mappings may legitimately share a variable (publish one
			// encoding, subscribe another); first declaration wins.
			return nil
		}
		return store.Declare(path, zeroValue(enc))
	}
	for _, obj := range fc.Objects {
		for i := range obj.Attributes {
			m := &obj.Attributes[i]
			if m.Encoding == fom.EncodingFixedRecord {
				for _, leaf := range m.Record.Leaves(nil) {
					if err := declare(leaf.VarPath, leaf.Encoding); err != nil {
						return nil, fmt.Errorf("object %q: %w", obj.InstanceName, err)
					}
				}
				continue
			}
			if err := declare(m.VarPath, m.Encoding); err != nil {
				return nil, fmt.Errorf("object %q: %w", obj.InstanceName, err)
			}
		}
	}
	for _, ic := range fc.Interactions {
		for _, p := range ic.Parameters {
			if err := declare(p.VarPath, p.Encoding); err != nil {
				return nil, fmt.Errorf("interaction %q: %w", ic.ClassName, err)
			}
		}
	}
	return store, nil
}

// zeroValue returns the zero value matching an encoding tag.
func zeroValue(enc fom.Encoding) codec.Value {
	switch enc {
	case fom.EncodingBoolean:
		return codec.BoolValue(false)
	case fom.EncodingUnicodeString:
		return codec.StringValue("")
	case fom.EncodingOpaque:
		return codec.BytesValue(nil)
	default:
		return codec.Float64Value(0)
	}
}
