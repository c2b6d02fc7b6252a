package fed

import "github.com/sirupsen/logrus"

// Event defines the interface for all exchange events.
// Each event has a Timestamp (in ticks) and an Execute method that advances
// federation state when invoked.
type Event interface {
	Timestamp() int64
	Execute(*Executive)
}

// InitPushEvent is a federate's one-shot startup push: initialize-condition
// attributes go out, then the federate opens its first time-advance request.
type InitPushEvent struct {
	time     int64
	Federate *Federate
}

// Timestamp returns the scheduled time of the InitPushEvent.
func (e *InitPushEvent) Timestamp() int64 {
	return e.time
}

// Execute sends the startup push and opens the first advance request.
func (e *InitPushEvent) Execute(exec *Executive) {
	logrus.Infof("<< InitPush: %s at %d ticks", e.Federate.Name, e.time)

	updates, err := e.Federate.CollectUpdates(exec.Sched, e.time, true)
	if err != nil {
		exec.fail(err)
		return
	}
	exec.deliver(updates)

	// First advance target: the startup padding when configured, else one LCTS.
	target := e.Federate.Time.LCTS
	if e.Federate.Time.Padding > 0 {
		target = e.Federate.Time.Padding
	}
	exec.requestAdvance(e.Federate, target)
}

// GrantEvent is the completion of a federate's time-advance request: queued
// reflections apply, pending ownership transfers resolve, the scenario driver
// mutates owned variables, due updates go out, and the next request opens.
type GrantEvent struct {
	time     int64
	Federate *Federate
}

// Timestamp returns the scheduled time of the GrantEvent.
func (e *GrantEvent) Timestamp() int64 {
	return e.time
}

// Execute runs one granted cycle boundary for the federate.
func (e *GrantEvent) Execute(exec *Executive) {
	f := e.Federate
	grant, err := f.Time.Grant()
	if err != nil {
		exec.fail(err)
		return
	}
	logrus.Infof("<< Grant: %s to %d ticks", f.Name, grant)
	exec.Metrics.GrantsIssued++

	applied, err := f.ApplyReflections(grant)
	if err != nil {
		exec.fail(err)
		return
	}
	exec.Metrics.UpdatesReflected += applied

	exec.resolveTransfers(grant)

	if exec.Scenario != nil {
		exec.Scenario.Mutate(f, grant, exec.RNG.ForSubsystem(SubsystemScenario(f.Name)))
	}

	updates, err := f.CollectUpdates(exec.Sched, grant, false)
	if err != nil {
		exec.fail(err)
		return
	}
	exec.deliver(updates)

	// A granted federate's regulation bound moved: held requests may now pass.
	exec.reexamineHeld()

	next := grant + f.Time.LCTS
	if next <= exec.Stop {
		exec.requestAdvance(f, next)
	}
}

// OwnershipEvent opens an ownership transfer negotiation at a scheduled tick.
// Push offers name both endpoints; pull requests name only the acquirer.
type OwnershipEvent struct {
	time         int64
	InstanceName string
	Attribute    string
	From         string // owner for a push; empty for a pull
	To           string
	Pull         bool
}

// Timestamp returns the scheduled time of the OwnershipEvent.
func (e *OwnershipEvent) Timestamp() int64 {
	return e.time
}

// Execute opens the negotiation with the ownership manager. A malformed
// request (unknown endpoint, duplicate negotiation) is a configuration error
// and fails the run.
func (e *OwnershipEvent) Execute(exec *Executive) {
	var err error
	if e.Pull {
		_, err = exec.Ownership.RequestAcquire(e.InstanceName, e.Attribute, e.To, e.time)
	} else {
		_, err = exec.Ownership.RequestDivest(e.InstanceName, e.Attribute, e.From, e.To, e.time)
	}
	if err != nil {
		exec.fail(err)
	}
}
