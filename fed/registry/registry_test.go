package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fedsync/fedsync/fed/codec"
	"github.com/fedsync/fedsync/fed/fom"
)

// frozenConfig builds a frozen one-object configuration for FED_A.
func frozenConfig(t *testing.T) *fom.FederateConfig {
	t.Helper()
	fc := fom.NewFederateConfig("FED_A", "AtmoExchange")
	fc.SetLookahead(250)
	fc.SetLeastCommonTimeStep(250)
	obj := fom.NewObjectConfig("ConserveParameters", "modelA.conserve", true)
	obj.AddAttribute("energy", "modelA.conserve.energy", fom.EncodingLittleEndian)
	obj.AddAttribute("moles", "modelA.conserve.moles", fom.EncodingLittleEndian)
	fc.AddObject(obj)
	remote := fom.NewObjectConfig("ConserveParameters", "modelB.conserve", false)
	remote.AddAttribute("energy", "modelB.conserve.energy", fom.EncodingLittleEndian)
	fc.AddObject(remote)
	require.NoError(t, fc.Freeze())
	return fc
}

func TestRegistry_Bind_RegistersInstances(t *testing.T) {
	// GIVEN a frozen config and a store covering its paths
	fc := frozenConfig(t)
	store, err := NewStoreForConfig(fc)
	require.NoError(t, err)

	// WHEN the registry binds
	reg := NewRegistry("FED_A")
	require.NoError(t, reg.Bind(fc, store))

	// THEN both instances are registered with origin flags and handles
	require.Equal(t, 2, reg.Len())
	local := reg.Instance("modelA.conserve")
	require.NotNil(t, local)
	assert.Equal(t, OriginLocal, local.Origin)
	assert.NotEqual(t, local.Handle.String(), "00000000-0000-0000-0000-000000000000")

	remote := reg.Instance("modelB.conserve")
	require.NotNil(t, remote)
	assert.Equal(t, OriginDiscovered, remote.Origin)
	assert.Same(t, local, reg.InstanceByHandle(local.Handle))

	// AND ownership starts where the mappings put it
	assert.True(t, local.Attribute("energy").OwnedLocally)
	assert.Equal(t, "FED_A", local.Attribute("energy").Owner)
	assert.False(t, remote.Attribute("energy").OwnedLocally)
	assert.Empty(t, remote.Attribute("energy").Owner)
}

func TestRegistry_Bind_UnresolvedPath_Errors(t *testing.T) {
	// GIVEN a store missing one mapped variable
	fc := frozenConfig(t)
	store := NewVarStore()
	require.NoError(t, store.Declare("modelA.conserve.energy", codec.Float64Value(0)))
	require.NoError(t, store.Declare("modelB.conserve.energy", codec.Float64Value(0)))

	// WHEN the registry binds
	err := NewRegistry("FED_A").Bind(fc, store)

	// THEN binding fails naming the missing path
	require.Error(t, err)
	assert.Contains(t, err.Error(), "modelA.conserve.moles")
}

func TestRegistry_Bind_RequiresFrozenConfig(t *testing.T) {
	fc := fom.NewFederateConfig("FED_A", "X")
	err := NewRegistry("FED_A").Bind(fc, NewVarStore())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not frozen")
}

func TestRegistry_OwnedPublished(t *testing.T) {
	// GIVEN a bound registry
	fc := frozenConfig(t)
	store, err := NewStoreForConfig(fc)
	require.NoError(t, err)
	reg := NewRegistry("FED_A")
	require.NoError(t, reg.Bind(fc, store))

	// WHEN owned published attributes are enumerated
	owned := reg.OwnedPublished()

	// THEN only the locally created object's attributes appear, in order
	require.Len(t, owned, 2)
	assert.Equal(t, "energy", owned[0].Mapping.FOMName)
	assert.Equal(t, "moles", owned[1].Mapping.FOMName)
}

func TestNewStoreForConfig_DeclaresEveryMappedPath(t *testing.T) {
	fc := frozenConfig(t)
	store, err := NewStoreForConfig(fc)
	require.NoError(t, err)
	assert.True(t, store.Has("modelA.conserve.energy"))
	assert.True(t, store.Has("modelA.conserve.moles"))
	assert.True(t, store.Has("modelB.conserve.energy"))

	k, err := store.Kind("modelA.conserve.energy")
	require.NoError(t, err)
	assert.Equal(t, codec.KindFloat64, k)
}

func TestNewStoreForConfig_FixedRecordLeavesAndKinds(t *testing.T) {
	// GIVEN a config with a fixed-record attribute and a boolean attribute
	fc := fom.NewFederateConfig("FED_A", "X")
	fc.SetLookahead(250)
	fc.SetLeastCommonTimeStep(250)
	obj := fom.NewObjectConfig("ReferenceFrame", "frame", true)
	obj.AddAttributeSpec(fom.AttributeMapping{
		FOMName:      "state",
		Encoding:     fom.EncodingFixedRecord,
		Publish:      true,
		LocallyOwned: true,
		Condition:    fom.ConditionCyclic,
		Record: fom.NewRecordElement("state",
			fom.NewLeafElement("x", "frame.pos.x", fom.EncodingLittleEndian),
			fom.NewLeafElement("label", "frame.label", fom.EncodingUnicodeString),
		),
	})
	obj.AddAttribute("valid", "frame.valid", fom.EncodingBoolean)
	fc.AddObject(obj)
	require.NoError(t, fc.Freeze())

	// WHEN the store is built
	store, err := NewStoreForConfig(fc)
	require.NoError(t, err)

	// THEN record leaves and encodings map to slots of the right kind
	k, err := store.Kind("frame.pos.x")
	require.NoError(t, err)
	assert.Equal(t, codec.KindFloat64, k)
	k, err = store.Kind("frame.label")
	require.NoError(t, err)
	assert.Equal(t, codec.KindString, k)
	k, err = store.Kind("frame.valid")
	require.NoError(t, err)
	assert.Equal(t, codec.KindBool, k)
}
