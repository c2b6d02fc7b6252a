// interaction.go
//
// Defines the InteractionConfig builder and its parameter mappings.

package fom

import "fmt"

// ParameterMapping binds one FOM interaction parameter to a local variable
// path, analogous to AttributeMapping for object attributes. Parameters have
// no ownership or update condition: an interaction is sent as a whole when the
// sending federate fires it.
type ParameterMapping struct {
	FOMName  string   // parameter name as declared in the FOM module
	VarPath  string   // dotted variable path supplying / receiving the value
	Encoding Encoding // wire representation tag
}

// InteractionConfig collects the parameter mappings for one FOM interaction
// class. Parameters keep insertion order.
type InteractionConfig struct {
	ClassName  string // FOM interaction class name
	Publish    bool   // this federate sends the interaction
	Subscribe  bool   // this federate receives the interaction
	Parameters []ParameterMapping
}

// NewInteractionConfig creates an InteractionConfig for the given FOM
// interaction class.
func NewInteractionConfig(className string, publish, subscribe bool) *InteractionConfig {
	return &InteractionConfig{ClassName: className, Publish: publish, Subscribe: subscribe}
}

// AddParameter appends a parameter mapping.
func (ic *InteractionConfig) AddParameter(fomName, varPath string, enc Encoding) {
	ic.Parameters = append(ic.Parameters, ParameterMapping{
		FOMName:  fomName,
		VarPath:  varPath,
		Encoding: enc,
	})
}

// validate checks the interaction and its parameter mappings.
func (ic *InteractionConfig) validate() error {
	if ic.ClassName == "" {
		return fmt.Errorf("interaction has no FOM class name")
	}
	seen := make(map[string]bool, len(ic.Parameters))
	for _, p := range ic.Parameters {
		if p.FOMName == "" {
			return fmt.Errorf("interaction %q: parameter has no FOM name", ic.ClassName)
		}
		if p.VarPath == "" {
			return fmt.Errorf("interaction %q: parameter %q has no variable path", ic.ClassName, p.FOMName)
		}
		if !p.Encoding.Valid() || p.Encoding == EncodingFixedRecord {
			return fmt.Errorf("interaction %q: parameter %q has invalid encoding %q", ic.ClassName, p.FOMName, p.Encoding)
		}
		if seen[p.FOMName] {
			return fmt.Errorf("interaction %q has duplicate parameter %q", ic.ClassName, p.FOMName)
		}
		seen[p.FOMName] = true
	}
	return nil
}
