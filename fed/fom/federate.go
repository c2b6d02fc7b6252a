// federate.go
//
// Defines the FederateConfig builder and its Building -> Frozen lifecycle.
// Every mutator is valid only while Building; after Freeze the mutators warn
// and leave state untouched.

package fom

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Lifecycle is the two-state life of a FederateConfig.
type Lifecycle int

const (
	// Building accepts mutation through the set/add methods.
	Building Lifecycle = iota
	// Frozen rejects mutation: mutators degrade to warn-only no-ops.
	Frozen
)

// String returns the lifecycle state name.
func (l Lifecycle) String() string {
	if l == Frozen {
		return "frozen"
	}
	return "building"
}

// FederateConfig aggregates everything one federate contributes to a
// federation execution: identity, time-management parameters, the federates it
// expects to join, FOM module paths, and the object/interaction mappings it
// publishes or subscribes to.
//
// A FederateConfig is built once through a sequence of set/add calls and then
// frozen with Freeze. Freeze validates the whole configuration; after a
// successful Freeze the config is immutable and safe to hand to the registry
// and executive.
type FederateConfig struct {
	FederateName   string // this federate's name in the federation
	FederationName string // federation execution name

	// KnownFederates is the list of federate names expected to join.
	// Per-instance on purpose: sharing a default slice across configs
	// aliases the list between federates.
	KnownFederates []string

	FOMModules []string // FOM module file paths handed to the runtime

	Lookahead           int64 // regulating lookahead in ticks
	LeastCommonTimeStep int64 // LCTS in ticks; all cycle times are multiples of it
	TimePadding         int64 // startup padding in ticks, at least one LCTS
	Regulating          bool  // this federate regulates federation time
	Constrained         bool  // this federate is constrained by federation time

	Objects      []*ObjectConfig
	Interactions []*InteractionConfig

	state Lifecycle
}

// NewFederateConfig creates a FederateConfig in the Building state with the
// conventional time defaults: regulating and constrained, one-step lookahead
// left for the caller to set.
func NewFederateConfig(federateName, federationName string) *FederateConfig {
	return &FederateConfig{
		FederateName:   federateName,
		FederationName: federationName,
		KnownFederates: make([]string, 0),
		FOMModules:     make([]string, 0),
		Regulating:     true,
		Constrained:    true,
	}
}

// State returns the current lifecycle state.
func (fc *FederateConfig) State() Lifecycle {
	return fc.state
}

// IsFrozen reports whether Freeze has completed.
func (fc *FederateConfig) IsFrozen() bool {
	return fc.state == Frozen
}

// mutable reports whether the config still accepts mutation, warning in the
// frozen case. Every mutator calls this first.
func (fc *FederateConfig) mutable(op string) bool {
	if fc.state == Frozen {
		logrus.Warnf("%s ignored: federate configuration %q is frozen", op, fc.FederateName)
		return false
	}
	return true
}

// SetLookahead sets the regulating lookahead in ticks.
func (fc *FederateConfig) SetLookahead(ticks int64) {
	if !fc.mutable("SetLookahead") {
		return
	}
	fc.Lookahead = ticks
}

// SetLeastCommonTimeStep sets the federation LCTS in ticks.
func (fc *FederateConfig) SetLeastCommonTimeStep(ticks int64) {
	if !fc.mutable("SetLeastCommonTimeStep") {
		return
	}
	fc.LeastCommonTimeStep = ticks
}

// SetTimePadding sets the startup time padding in ticks.
func (fc *FederateConfig) SetTimePadding(ticks int64) {
	if !fc.mutable("SetTimePadding") {
		return
	}
	fc.TimePadding = ticks
}

// SetRegulating sets whether this federate regulates federation time.
func (fc *FederateConfig) SetRegulating(regulating bool) {
	if !fc.mutable("SetRegulating") {
		return
	}
	fc.Regulating = regulating
}

// SetConstrained sets whether this federate is constrained by federation time.
func (fc *FederateConfig) SetConstrained(constrained bool) {
	if !fc.mutable("SetConstrained") {
		return
	}
	fc.Constrained = constrained
}

// AddKnownFederate appends a federate name expected to join the federation.
// Duplicates are dropped with a warning.
func (fc *FederateConfig) AddKnownFederate(name string) {
	if !fc.mutable("AddKnownFederate") {
		return
	}
	for _, known := range fc.KnownFederates {
		if known == name {
			logrus.Warnf("AddKnownFederate: federate %q already known, ignoring", name)
			return
		}
	}
	fc.KnownFederates = append(fc.KnownFederates, name)
}

// AddFOMModule appends a FOM module file path.
func (fc *FederateConfig) AddFOMModule(path string) {
	if !fc.mutable("AddFOMModule") {
		return
	}
	fc.FOMModules = append(fc.FOMModules, path)
}

// AddObject appends an object configuration.
func (fc *FederateConfig) AddObject(obj *ObjectConfig) {
	if !fc.mutable("AddObject") {
		return
	}
	if obj == nil {
		logrus.Warn("AddObject: nil object configuration ignored")
		return
	}
	fc.Objects = append(fc.Objects, obj)
}

// AddInteraction appends an interaction configuration.
func (fc *FederateConfig) AddInteraction(ic *InteractionConfig) {
	if !fc.mutable("AddInteraction") {
		return
	}
	if ic == nil {
		logrus.Warn("AddInteraction: nil interaction configuration ignored")
		return
	}
	fc.Interactions = append(fc.Interactions, ic)
}

// Freeze validates the configuration and moves it to the Frozen state.
// A second Freeze warns and returns nil, leaving the config frozen; a failed
// validation leaves the config in Building so the caller may correct it.
func (fc *FederateConfig) Freeze() error {
	if fc.state == Frozen {
		logrus.Warnf("Freeze ignored: federate configuration %q is already frozen", fc.FederateName)
		return nil
	}
	if err := fc.validate(); err != nil {
		return err
	}
	fc.state = Frozen
	logrus.Debugf("federate configuration %q frozen: %d objects, %d interactions",
		fc.FederateName, len(fc.Objects), len(fc.Interactions))
	return nil
}

// validate checks the whole configuration tree.
func (fc *FederateConfig) validate() error {
	if fc.FederateName == "" {
		return fmt.Errorf("federate configuration has no federate name")
	}
	if fc.FederationName == "" {
		return fmt.Errorf("federate %q: no federation name", fc.FederateName)
	}
	if fc.LeastCommonTimeStep <= 0 {
		return fmt.Errorf("federate %q: least common time step must be positive, got %d",
			fc.FederateName, fc.LeastCommonTimeStep)
	}
	if fc.Regulating && fc.Lookahead <= 0 {
		return fmt.Errorf("federate %q: regulating federate needs a positive lookahead, got %d",
			fc.FederateName, fc.Lookahead)
	}
	if fc.TimePadding > 0 && fc.TimePadding < fc.LeastCommonTimeStep {
		return fmt.Errorf("federate %q: time padding %d is below the least common time step %d",
			fc.FederateName, fc.TimePadding, fc.LeastCommonTimeStep)
	}
	seen := make(map[string]bool, len(fc.Objects))
	for _, obj := range fc.Objects {
		if err := obj.validate(fc.LeastCommonTimeStep); err != nil {
			return fmt.Errorf("federate %q: %w", fc.FederateName, err)
		}
		if seen[obj.InstanceName] {
			return fmt.Errorf("federate %q: duplicate object instance %q", fc.FederateName, obj.InstanceName)
		}
		seen[obj.InstanceName] = true
	}
	for _, ic := range fc.Interactions {
		if err := ic.validate(); err != nil {
			return fmt.Errorf("federate %q: %w", fc.FederateName, err)
		}
	}
	return nil
}
