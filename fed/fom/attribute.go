// attribute.go
//
// Defines the AttributeMapping record that binds one FOM attribute to a local
// simulation variable, and the defaults applied when an object adds one.

package fom

import "fmt"

// AttributeMapping binds a FOM attribute name to a dotted variable path in the
// host variable store, together with its wire encoding and exchange flags.
// Mappings are plain records: they are built during configuration and consumed
// by the registry and scheduler once the owning FederateConfig freezes.
type AttributeMapping struct {
	FOMName string // attribute name as declared in the FOM module
	VarPath string // dotted variable path, resolved against the variable store at freeze

	Encoding Encoding // wire representation tag

	Publish      bool // this federate sends updates for the attribute
	Subscribe    bool // this federate reflects remote updates into its variable store
	LocallyOwned bool // this federate starts as the attribute's owner
	Releasable   bool // a pull acquisition from another federate is granted without negotiation

	Condition UpdateCondition // when an owned, published attribute is sent
	CycleTime int64           // ticks between cyclic sends; 0 defaults to the federation LCTS

	Record *FixedRecordSpec // element tree, non-nil iff Encoding == EncodingFixedRecord
}

// validate checks a single mapping against the federation's least common time
// step. Called from FederateConfig.Freeze.
func (a *AttributeMapping) validate(lcts int64) error {
	if a.FOMName == "" {
		return fmt.Errorf("attribute mapping has no FOM name")
	}
	if a.Encoding != EncodingFixedRecord && a.VarPath == "" {
		return fmt.Errorf("attribute %q has no variable path", a.FOMName)
	}
	if !a.Encoding.Valid() {
		return fmt.Errorf("attribute %q: invalid encoding %q", a.FOMName, a.Encoding)
	}
	if !a.Condition.Valid() {
		return fmt.Errorf("attribute %q: invalid update condition %q", a.FOMName, a.Condition)
	}
	if a.Encoding == EncodingFixedRecord {
		if a.Record == nil {
			return fmt.Errorf("attribute %q is tagged fixed-record but has no element spec", a.FOMName)
		}
		if err := a.Record.Validate(); err != nil {
			return fmt.Errorf("attribute %q: %w", a.FOMName, err)
		}
	} else if a.Record != nil {
		return fmt.Errorf("attribute %q carries an element spec but is not fixed-record", a.FOMName)
	}
	if a.CycleTime < 0 {
		return fmt.Errorf("attribute %q: negative cycle time %d", a.FOMName, a.CycleTime)
	}
	if a.CycleTime > 0 && a.CycleTime%lcts != 0 {
		return fmt.Errorf("attribute %q: cycle time %d is not a multiple of the least common time step %d",
			a.FOMName, a.CycleTime, lcts)
	}
	return nil
}

// EffectiveCycleTime returns the mapping's cycle time, falling back to the
// federation least common time step when unset.
func (a *AttributeMapping) EffectiveCycleTime(lcts int64) int64 {
	if a.CycleTime > 0 {
		return a.CycleTime
	}
	return lcts
}
