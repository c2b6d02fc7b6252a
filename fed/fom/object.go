// object.go
//
// Defines the ObjectConfig builder that collects the attribute mappings for
// one FOM object instance.

package fom

import "fmt"

// ObjectConfig collects the attribute mappings for a single FOM object
// instance. An object is either locally created (this federate registers the
// instance and publishes its attributes by default) or discovered (a remote
// federate registers it and this federate subscribes by default).
//
// Attributes keep insertion order; the registry and scheduler walk them in the
// order they were added.
type ObjectConfig struct {
	ClassName    string             // FOM object class name
	InstanceName string             // instance name, unique within the federation
	Create       bool               // true: locally created and registered by this federate
	Attributes   []AttributeMapping // ordered attribute mappings
}

// NewObjectConfig creates an ObjectConfig for the given FOM class and
// instance. create selects locally-created (publish-by-default) versus
// discovered (subscribe-by-default) attribute defaults.
func NewObjectConfig(className, instanceName string, create bool) *ObjectConfig {
	return &ObjectConfig{
		ClassName:    className,
		InstanceName: instanceName,
		Create:       create,
	}
}

// AddAttribute appends a mapping with defaults derived from the object's
// Create flag: a locally created object publishes and owns the attribute, a
// discovered object subscribes to it. The condition defaults to cyclic on the
// federation time step. Use AddAttributeSpec to override any default.
func (o *ObjectConfig) AddAttribute(fomName, varPath string, enc Encoding) {
	o.Attributes = append(o.Attributes, AttributeMapping{
		FOMName:      fomName,
		VarPath:      varPath,
		Encoding:     enc,
		Publish:      o.Create,
		Subscribe:    !o.Create,
		LocallyOwned: o.Create,
		Condition:    ConditionCyclic,
	})
}

// AddAttributeSpec appends a fully specified mapping verbatim. This is the
// explicit-override path: the Create-flag defaults of AddAttribute do not
// apply here.
func (o *ObjectConfig) AddAttributeSpec(m AttributeMapping) {
	o.Attributes = append(o.Attributes, m)
}

// Attribute returns the mapping with the given FOM name, or nil.
func (o *ObjectConfig) Attribute(fomName string) *AttributeMapping {
	for i := range o.Attributes {
		if o.Attributes[i].FOMName == fomName {
			return &o.Attributes[i]
		}
	}
	return nil
}

// validate checks the object and all of its attribute mappings.
// Called from FederateConfig.Freeze.
func (o *ObjectConfig) validate(lcts int64) error {
	if o.ClassName == "" {
		return fmt.Errorf("object %q has no FOM class name", o.InstanceName)
	}
	if o.InstanceName == "" {
		return fmt.Errorf("object of class %q has no instance name", o.ClassName)
	}
	seen := make(map[string]bool, len(o.Attributes))
	for i := range o.Attributes {
		a := &o.Attributes[i]
		if err := a.validate(lcts); err != nil {
			return fmt.Errorf("object %q: %w", o.InstanceName, err)
		}
		if seen[a.FOMName] {
			return fmt.Errorf("object %q has duplicate attribute %q", o.InstanceName, a.FOMName)
		}
		seen[a.FOMName] = true
	}
	return nil
}
