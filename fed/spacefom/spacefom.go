// Package spacefom provides canned SpaceFOM-flavored federate configurations:
// the root reference frame and the conservation-parameter exchange objects
// used by the atmosphere-model federations.
package spacefom

import (
	"github.com/sirupsen/logrus"

	"github.com/fedsync/fedsync/fed/fom"
)

// conserveParams lists the conservation quantities exchanged between
// atmosphere models, in FOM declaration order.
var conserveParams = []string{"energy", "moles", "molesN2", "molesO2", "molesH2O", "molesCO2"}

// FederateConfig wraps a fom.FederateConfig with the SpaceFOM conventions:
// a single root reference frame and helper presets.
type FederateConfig struct {
	*fom.FederateConfig

	rootFrame *fom.ObjectConfig
}

// NewFederateConfig creates a SpaceFOM federate configuration.
func NewFederateConfig(federateName, federationName string) *FederateConfig {
	return &FederateConfig{
		FederateConfig: fom.NewFederateConfig(federateName, federationName),
	}
}

// RootFrame returns the configured root reference frame object, or nil.
func (sc *FederateConfig) RootFrame() *fom.ObjectConfig {
	return sc.rootFrame
}

// SetRootFrame installs the federation's root reference frame. A federation
// has exactly one root frame: a second call warns and leaves the first frame
// in place.
func (sc *FederateConfig) SetRootFrame(frame *fom.ObjectConfig) {
	if sc.rootFrame != nil {
		logrus.Warnf("SetRootFrame ignored: root frame %q already set, keeping it",
			sc.rootFrame.InstanceName)
		return
	}
	if frame == nil {
		logrus.Warn("SetRootFrame: nil root frame ignored")
		return
	}
	sc.rootFrame = frame
	sc.AddObject(frame)
}

// NewRootFrameObject builds a ReferenceFrame object: the frame name plus
// fixed-record translational and rotational states, each a position/velocity
// (or attitude/rate) vector pair.
func NewRootFrameObject(instanceName, varPrefix string, create bool) *fom.ObjectConfig {
	obj := fom.NewObjectConfig("ReferenceFrame", instanceName, create)
	obj.AddAttribute("name", varPrefix+".name", fom.EncodingUnicodeString)
	obj.AddAttributeSpec(fom.AttributeMapping{
		FOMName:      "state",
		Encoding:     fom.EncodingFixedRecord,
		Publish:      create,
		Subscribe:    !create,
		LocallyOwned: create,
		Condition:    fom.ConditionCyclic,
		Record: fom.NewRecordElement("state",
			fom.NewRecordElement("translational_state",
				vectorElement("position", varPrefix+".state.trans.position"),
				vectorElement("velocity", varPrefix+".state.trans.velocity"),
			),
			fom.NewRecordElement("rotational_state",
				vectorElement("attitude", varPrefix+".state.rot.attitude"),
				vectorElement("rate", varPrefix+".state.rot.rate"),
			),
		),
	})
	return obj
}

// vectorElement builds a 3-element little-endian vector record.
func vectorElement(name, pathPrefix string) *fom.FixedRecordSpec {
	return fom.NewRecordElement(name,
		fom.NewLeafElement("x", pathPrefix+".x", fom.EncodingLittleEndian),
		fom.NewLeafElement("y", pathPrefix+".y", fom.EncodingLittleEndian),
		fom.NewLeafElement("z", pathPrefix+".z", fom.EncodingLittleEndian),
	)
}

// NewConserveParamsObject builds the conservation-parameter exchange object
// for an atmosphere model: six little-endian quantities mapped under the
// given variable prefix. locallyOwned selects which side of the exchange is
// authoritative for the quantities.
func NewConserveParamsObject(instanceName, varPrefix string, locallyOwned bool) *fom.ObjectConfig {
	obj := fom.NewObjectConfig("ConserveParameters", instanceName, locallyOwned)
	for _, name := range conserveParams {
		obj.AddAttributeSpec(fom.AttributeMapping{
			FOMName:      name,
			VarPath:      varPrefix + "." + name,
			Encoding:     fom.EncodingLittleEndian,
			Publish:      locallyOwned,
			Subscribe:    !locallyOwned,
			LocallyOwned: locallyOwned,
			Condition:    fom.ConditionCyclic,
		})
	}
	return obj
}
