package fed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fedsync/fedsync/fed/codec"
	"github.com/fedsync/fedsync/fed/fom"
	"github.com/fedsync/fedsync/fed/registry"
	"github.com/fedsync/fedsync/fed/trace"
)

// memberSpec describes one federate of a two-party exchange for tests.
type memberSpec struct {
	name       string
	localInst  string
	remoteInst string
	condition  fom.UpdateCondition
	releasable bool
	padding    int64
}

// newMember wires a federate that creates localInst and discovers remoteInst,
// each carrying a single float64 "energy" attribute. The discovered side is
// both subscribed and publish-capable so ownership can move to it mid-run.
func newMember(t *testing.T, spec memberSpec) *Federate {
	t.Helper()

	fc := fom.NewFederateConfig(spec.name, "AtmoExchange")
	fc.SetLookahead(250)
	fc.SetLeastCommonTimeStep(250)
	if spec.padding > 0 {
		fc.SetTimePadding(spec.padding)
	}

	local := fom.NewObjectConfig("ConserveParameters", spec.localInst, true)
	local.AddAttributeSpec(fom.AttributeMapping{
		FOMName:      "energy",
		VarPath:      spec.localInst + ".energy",
		Encoding:     fom.EncodingLittleEndian,
		Publish:      true,
		Subscribe:    true,
		LocallyOwned: true,
		Releasable:   spec.releasable,
		Condition:    spec.condition,
	})
	fc.AddObject(local)

	remote := fom.NewObjectConfig("ConserveParameters", spec.remoteInst, false)
	remote.AddAttributeSpec(fom.AttributeMapping{
		FOMName:      "energy",
		VarPath:      spec.remoteInst + ".energy",
		Encoding:     fom.EncodingLittleEndian,
		Publish:      true,
		Subscribe:    true,
		LocallyOwned: false,
		Releasable:   spec.releasable,
		Condition:    spec.condition,
	})
	fc.AddObject(remote)
	require.NoError(t, fc.Freeze())

	store, err := registry.NewStoreForConfig(fc)
	require.NoError(t, err)
	f, err := NewFederate(fc, store)
	require.NoError(t, err)
	return f
}

// twoParty builds the standard FED_A/FED_B cross-subscribed pair.
func twoParty(t *testing.T, cond fom.UpdateCondition, releasable bool) (*Federate, *Federate) {
	t.Helper()
	a := newMember(t, memberSpec{
		name: "FED_A", localInst: "modelA.conserve", remoteInst: "modelB.conserve",
		condition: cond, releasable: releasable,
	})
	b := newMember(t, memberSpec{
		name: "FED_B", localInst: "modelB.conserve", remoteInst: "modelA.conserve",
		condition: cond, releasable: releasable,
	})
	return a, b
}

func storeFloat(t *testing.T, f *Federate, path string) float64 {
	t.Helper()
	v, err := f.Store.Get(path)
	require.NoError(t, err)
	require.Equal(t, codec.KindFloat64, v.Kind)
	return v.Float64
}

func TestExecutive_CyclicExchange_PropagatesValues(t *testing.T) {
	// GIVEN two cross-subscribed federates, each owning one value
	a, b := twoParty(t, fom.ConditionCyclic, false)
	require.NoError(t, a.Store.Set("modelA.conserve.energy", codec.Float64Value(42.5)))
	require.NoError(t, b.Store.Set("modelB.conserve.energy", codec.Float64Value(-7.25)))

	exec, err := NewExecutive(1000, 42, trace.TraceLevelNone, []*Federate{a, b})
	require.NoError(t, err)

	// WHEN the exchange runs to the horizon
	require.NoError(t, exec.Run())

	// THEN each federate's view of the other's value converged
	assert.Equal(t, 42.5, storeFloat(t, b, "modelA.conserve.energy"))
	assert.Equal(t, -7.25, storeFloat(t, a, "modelB.conserve.energy"))

	// AND both clocks reached the horizon in LCTS steps
	assert.Equal(t, int64(1000), a.Time.GrantedTime())
	assert.Equal(t, int64(1000), b.Time.GrantedTime())
	assert.Positive(t, exec.Metrics.GrantsIssued)
	assert.Positive(t, exec.Metrics.UpdatesSent)
	assert.Positive(t, exec.Metrics.BytesEncoded)
}

func TestExecutive_InitializePush_SentOnceAndReflected(t *testing.T) {
	// GIVEN initialize-condition attributes
	a, b := twoParty(t, fom.ConditionInitialize, false)
	require.NoError(t, a.Store.Set("modelA.conserve.energy", codec.Float64Value(300.15)))

	exec, err := NewExecutive(1000, 42, trace.TraceLevelNone, []*Federate{a, b})
	require.NoError(t, err)
	require.NoError(t, exec.Run())

	// THEN the startup value arrived and each attribute went out exactly once
	assert.Equal(t, 300.15, storeFloat(t, b, "modelA.conserve.energy"))
	assert.Equal(t, 2, exec.Metrics.UpdatesSent)
	assert.True(t, a.Registry.Instance("modelA.conserve").Attribute("energy").InitSent)
}

func TestExecutive_OnChange_SuppressesRepeats(t *testing.T) {
	// GIVEN on-change attributes over values that never change
	a, b := twoParty(t, fom.ConditionOnChange, false)
	require.NoError(t, a.Store.Set("modelA.conserve.energy", codec.Float64Value(1)))

	exec, err := NewExecutive(2000, 42, trace.TraceLevelNone, []*Federate{a, b})
	require.NoError(t, err)
	require.NoError(t, exec.Run())

	// THEN each side sent once and suppressed every later boundary
	assert.Equal(t, 2, exec.Metrics.UpdatesSent)
	assert.Equal(t, 1.0, storeFloat(t, b, "modelA.conserve.energy"))
}

func TestExecutive_PullAcquire_MovesOwnership(t *testing.T) {
	// GIVEN a releasable owner and a scheduled pull from the subscriber
	a, b := twoParty(t, fom.ConditionCyclic, true)
	exec, err := NewExecutive(1000, 42, trace.TraceLevelDecisions, []*Federate{a, b})
	require.NoError(t, err)
	exec.ScheduleAcquire(300, "modelA.conserve", "energy", "FED_B")

	// WHEN the exchange runs
	require.NoError(t, exec.Run())

	// THEN ownership flipped on both sides at a grant boundary
	assert.False(t, a.Registry.Instance("modelA.conserve").Attribute("energy").OwnedLocally)
	assert.True(t, b.Registry.Instance("modelA.conserve").Attribute("energy").OwnedLocally)
	assert.Equal(t, "FED_B", a.Registry.Instance("modelA.conserve").Attribute("energy").Owner)
	assert.Equal(t, 1, exec.Metrics.TransfersCompleted)

	summary := trace.Summarize(exec.Trace)
	assert.Equal(t, 1, summary.CompletedTransfers)
}

func TestExecutive_PullAcquire_NotReleasable_Rejected(t *testing.T) {
	a, b := twoParty(t, fom.ConditionCyclic, false)
	exec, err := NewExecutive(1000, 42, trace.TraceLevelNone, []*Federate{a, b})
	require.NoError(t, err)
	exec.ScheduleAcquire(300, "modelA.conserve", "energy", "FED_B")

	require.NoError(t, exec.Run())

	assert.True(t, a.Registry.Instance("modelA.conserve").Attribute("energy").OwnedLocally)
	assert.Equal(t, 0, exec.Metrics.TransfersCompleted)
	assert.Equal(t, 1, exec.Metrics.TransfersRejected)
}

func TestExecutive_Divest_FromNonOwner_FailsRun(t *testing.T) {
	// A divest request from a federate that does not own the attribute is a
	// configuration error and ends the run.
	a, b := twoParty(t, fom.ConditionCyclic, true)
	exec, err := NewExecutive(1000, 42, trace.TraceLevelNone, []*Federate{a, b})
	require.NoError(t, err)
	exec.ScheduleDivest(300, "modelA.conserve", "energy", "FED_B", "FED_A")

	err = exec.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not the owner")
}

func TestExecutive_HeldRequests_ReleasedByLaterGrants(t *testing.T) {
	// GIVEN FED_A starting with a long first advance (padding) against FED_B's
	// short regulation bound
	a := newMember(t, memberSpec{
		name: "FED_A", localInst: "modelA.conserve", remoteInst: "modelB.conserve",
		condition: fom.ConditionCyclic, padding: 1000,
	})
	a.Time.Lookahead = 1000
	b := newMember(t, memberSpec{
		name: "FED_B", localInst: "modelB.conserve", remoteInst: "modelA.conserve",
		condition: fom.ConditionCyclic,
	})

	exec, err := NewExecutive(2000, 42, trace.TraceLevelDecisions, []*Federate{a, b})
	require.NoError(t, err)

	// WHEN the exchange runs
	require.NoError(t, exec.Run())

	// THEN the held request was eventually granted and both clocks finished
	assert.Positive(t, exec.Metrics.HeldRequests)
	assert.GreaterOrEqual(t, a.Time.GrantedTime(), int64(1000))
	assert.Equal(t, int64(2000), b.Time.GrantedTime())

	summary := trace.Summarize(exec.Trace)
	assert.Positive(t, summary.HeldGrants)
	assert.Positive(t, summary.MaxGrantSlack)
	assert.Equal(t, summary.TotalGrants, summary.GrantsPerFederate["FED_A"]+summary.GrantsPerFederate["FED_B"])
}

func TestExecutive_PaddingAboveLookahead_StartsCleanly(t *testing.T) {
	// GIVEN two symmetric federates whose startup padding exceeds everyone's
	// lookahead, so every first request targets a time beyond any granted bound
	a := newMember(t, memberSpec{
		name: "FED_A", localInst: "modelA.conserve", remoteInst: "modelB.conserve",
		condition: fom.ConditionCyclic, padding: 500,
	})
	b := newMember(t, memberSpec{
		name: "FED_B", localInst: "modelB.conserve", remoteInst: "modelA.conserve",
		condition: fom.ConditionCyclic, padding: 500,
	})

	exec, err := NewExecutive(2000, 42, trace.TraceLevelDecisions, []*Federate{a, b})
	require.NoError(t, err)

	// WHEN the exchange runs
	require.NoError(t, exec.Run())

	// THEN the first grants land at the padding and both clocks reach the
	// horizon: an outstanding request bounds peers at requested+lookahead, so
	// the startup requests unblock each other
	assert.Equal(t, int64(2000), a.Time.GrantedTime())
	assert.Equal(t, int64(2000), b.Time.GrantedTime())
	assert.Positive(t, exec.Metrics.GrantsIssued)

	firstGranted := int64(-1)
	for _, g := range exec.Trace.Grants {
		if !g.Held {
			firstGranted = g.Granted
			break
		}
	}
	assert.Equal(t, int64(500), firstGranted)
}

func TestExecutive_Run_StalledFederation_ReturnsError(t *testing.T) {
	// GIVEN a federate whose startup padding lies beyond the horizon, so its
	// request can never be granted before the exchange ends
	a := newMember(t, memberSpec{
		name: "FED_A", localInst: "modelA.conserve", remoteInst: "modelB.conserve",
		condition: fom.ConditionCyclic, padding: 2000,
	})
	b := newMember(t, memberSpec{
		name: "FED_B", localInst: "modelB.conserve", remoteInst: "modelA.conserve",
		condition: fom.ConditionCyclic,
	})

	exec, err := NewExecutive(500, 42, trace.TraceLevelNone, []*Federate{a, b})
	require.NoError(t, err)

	// THEN the run surfaces the stall instead of reporting success
	err = exec.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stalled")
	assert.Contains(t, err.Error(), "FED_A")
	assert.Equal(t, int64(0), a.Time.GrantedTime())
}

func TestExecutive_SameSeed_IsDeterministic(t *testing.T) {
	run := func() (float64, float64) {
		a, b := twoParty(t, fom.ConditionCyclic, false)
		require.NoError(t, a.Store.Set("modelA.conserve.energy", codec.Float64Value(100)))
		require.NoError(t, b.Store.Set("modelB.conserve.energy", codec.Float64Value(200)))
		exec, err := NewExecutive(2000, 1234, trace.TraceLevelNone, []*Federate{a, b})
		require.NoError(t, err)
		exec.Scenario = NewScenario(0.25)
		require.NoError(t, exec.Run())
		return storeFloat(t, b, "modelA.conserve.energy"), storeFloat(t, a, "modelB.conserve.energy")
	}

	// GIVEN two runs under the same exchange key
	x1, y1 := run()
	x2, y2 := run()

	// THEN perturbed values match bit for bit
	assert.Equal(t, x1, x2)
	assert.Equal(t, y1, y2)
	assert.NotEqual(t, 100.0, x1) // the scenario actually moved the value
}

func TestNewExecutive_RejectsMismatchedStepAndDuplicates(t *testing.T) {
	a, b := twoParty(t, fom.ConditionCyclic, false)

	b.Time.LCTS = 500
	_, err := NewExecutive(1000, 42, trace.TraceLevelNone, []*Federate{a, b})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "least common time step")

	_, err = NewExecutive(1000, 42, trace.TraceLevelNone, []*Federate{a, a})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")

	_, err = NewExecutive(1000, 42, trace.TraceLevelNone, nil)
	assert.Error(t, err)
}
