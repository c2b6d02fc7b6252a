// time.go
//
// Per-federate logical time management: regulating/constrained advance under
// lookahead and the least common time step. The advance cycle is an explicit
// two-state machine (Granted -> AdvancePending -> Granted), not ad hoc flags.

package fed

import (
	"fmt"
	"math"

	"github.com/fedsync/fedsync/fed/fom"
)

// Unbounded is the GALT value for a federate no other regulating federate
// constrains.
const Unbounded = int64(math.MaxInt64)

// AdvanceState is the state of a federate's time-advance cycle.
type AdvanceState int

const (
	// StateGranted means the federate holds a grant and may request again.
	StateGranted AdvanceState = iota
	// StateAdvancePending means a request is outstanding.
	StateAdvancePending
)

// String returns the state name.
func (s AdvanceState) String() string {
	if s == StateAdvancePending {
		return "advance-pending"
	}
	return "granted"
}

// TimeManager tracks one federate's logical time advance cycle.
type TimeManager struct {
	Federate    string
	Regulating  bool
	Constrained bool
	Lookahead   int64
	LCTS        int64
	Padding     int64

	granted   int64 // current granted logical time
	requested int64 // outstanding request; meaningful only while pending
	state     AdvanceState
}

// NewTimeManager builds a TimeManager from a frozen federate configuration.
func NewTimeManager(fc *fom.FederateConfig) *TimeManager {
	return &TimeManager{
		Federate:    fc.FederateName,
		Regulating:  fc.Regulating,
		Constrained: fc.Constrained,
		Lookahead:   fc.Lookahead,
		LCTS:        fc.LeastCommonTimeStep,
		Padding:     fc.TimePadding,
	}
}

// GrantedTime returns the current granted logical time.
func (tm *TimeManager) GrantedTime() int64 {
	return tm.granted
}

// RequestedTime returns the outstanding requested time; zero-value when no
// request is pending.
func (tm *TimeManager) RequestedTime() int64 {
	return tm.requested
}

// Pending reports whether an advance request is outstanding.
func (tm *TimeManager) Pending() bool {
	return tm.state == StateAdvancePending
}

// RegulationBound returns the earliest logical time this federate could still
// send to. While granted it is granted time plus lookahead; while an advance
// request is outstanding the federate sends nothing until the grant, so the
// bound moves up to the requested time plus lookahead. Other constrained
// federates may not be granted beyond the minimum bound across regulating
// federates.
func (tm *TimeManager) RegulationBound() int64 {
	if !tm.Regulating {
		return Unbounded
	}
	if tm.state == StateAdvancePending {
		return tm.requested + tm.Lookahead
	}
	return tm.granted + tm.Lookahead
}

// RequestAdvance opens an advance request toward the given logical time.
// The effective request is rounded up to the next LCTS boundary and, for a
// regulating federate, floored at granted time plus lookahead. A duplicate
// request while one is pending is an error.
func (tm *TimeManager) RequestAdvance(to int64) (int64, error) {
	if tm.state == StateAdvancePending {
		return 0, fmt.Errorf("federate %q: advance to %d requested while a request for %d is pending",
			tm.Federate, to, tm.requested)
	}
	if to <= tm.granted {
		return 0, fmt.Errorf("federate %q: advance to %d is not beyond granted time %d",
			tm.Federate, to, tm.granted)
	}
	if tm.Regulating && to < tm.granted+tm.Lookahead {
		to = tm.granted + tm.Lookahead
	}
	to = roundUpToStep(to, tm.LCTS)
	tm.requested = to
	tm.state = StateAdvancePending
	return to, nil
}

// Grantable reports whether the outstanding request may be granted under the
// given GALT. An unconstrained federate is always grantable.
func (tm *TimeManager) Grantable(galt int64) bool {
	if tm.state != StateAdvancePending {
		return false
	}
	if !tm.Constrained {
		return true
	}
	return tm.requested <= galt
}

// Grant completes the outstanding request, moving granted time forward.
func (tm *TimeManager) Grant() (int64, error) {
	if tm.state != StateAdvancePending {
		return 0, fmt.Errorf("federate %q: grant with no pending request", tm.Federate)
	}
	tm.granted = tm.requested
	tm.requested = 0
	tm.state = StateGranted
	return tm.granted, nil
}

// roundUpToStep rounds t up to the next multiple of step.
func roundUpToStep(t, step int64) int64 {
	if step <= 0 {
		return t
	}
	rem := t % step
	if rem == 0 {
		return t
	}
	return t + step - rem
}
