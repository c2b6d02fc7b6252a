// executive.go
package fed

import (
	"container/heap"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/fedsync/fedsync/fed/ownership"
	"github.com/fedsync/fedsync/fed/registry"
	"github.com/fedsync/fedsync/fed/trace"
)

// EventQueue implements heap.Interface and orders events by timestamp.
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-IntHeap
type EventQueue []Event

func (eq EventQueue) Len() int           { return len(eq) }
func (eq EventQueue) Less(i, j int) bool { return eq[i].Timestamp() < eq[j].Timestamp() }
func (eq EventQueue) Swap(i, j int)      { eq[i], eq[j] = eq[j], eq[i] }

func (eq *EventQueue) Push(x any) {
	*eq = append(*eq, x.(Event))
}

func (eq *EventQueue) Pop() any {
	old := *eq
	n := len(old)
	item := old[n-1]
	*eq = old[0 : n-1]
	return item
}

// Executive is the core object that holds the exchange clock, the member
// federates, and the event loop coordinating time advance, update delivery,
// and ownership transfer across them.
type Executive struct {
	Clock int64
	Stop  int64
	// EventQueue has all the exchange events: startup pushes, grants,
	// scheduled ownership negotiations.
	EventQueue EventQueue

	// Federates in configuration order; every per-boundary iteration walks
	// this slice so runs are deterministic.
	Federates []*Federate
	byName    map[string]*Federate

	Sched     *UpdateScheduler
	Ownership *ownership.Manager
	Trace     *trace.ExchangeTrace
	Metrics   *Metrics
	RNG       *PartitionedRNG
	Scenario  *Scenario

	// held collects federates whose advance request exceeded GALT; they are
	// re-examined whenever any grant moves a regulation bound forward.
	held []*Federate

	err error
}

// NewExecutive wires an Executive over already-joined federates. All members
// must share the same least common time step.
func NewExecutive(stop int64, seed int64, traceLevel trace.TraceLevel, members []*Federate) (*Executive, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("executive needs at least one federate")
	}
	lcts := members[0].Time.LCTS
	byName := make(map[string]*Federate, len(members))
	registries := make(map[string]*registry.Registry, len(members))
	for _, f := range members {
		if f.Time.LCTS != lcts {
			return nil, fmt.Errorf("federate %q: least common time step %d differs from %q's %d",
				f.Name, f.Time.LCTS, members[0].Name, lcts)
		}
		if _, ok := byName[f.Name]; ok {
			return nil, fmt.Errorf("duplicate federate %q", f.Name)
		}
		byName[f.Name] = f
		registries[f.Name] = f.Registry
	}
	return &Executive{
		Stop:       stop,
		EventQueue: make(EventQueue, 0),
		Federates:  members,
		byName:     byName,
		Sched:      NewUpdateScheduler(lcts),
		Ownership:  ownership.NewManager(registries),
		Trace:      trace.NewExchangeTrace(traceLevel),
		Metrics:    NewMetrics(),
		RNG:        NewPartitionedRNG(NewExchangeKey(seed)),
	}, nil
}

// Federate returns the member with the given name, or nil.
func (exec *Executive) Federate(name string) *Federate {
	return exec.byName[name]
}

// Schedule pushes an event into the executive's EventQueue.
func (exec *Executive) Schedule(ev Event) {
	heap.Push(&exec.EventQueue, ev)
}

// ScheduleAcquire schedules a pull ownership request at the given tick.
func (exec *Executive) ScheduleAcquire(tick int64, instanceName, attribute, to string) {
	exec.Schedule(&OwnershipEvent{
		time:         tick,
		InstanceName: instanceName,
		Attribute:    attribute,
		To:           to,
		Pull:         true,
	})
}

// ScheduleDivest schedules a push ownership offer at the given tick.
func (exec *Executive) ScheduleDivest(tick int64, instanceName, attribute, from, to string) {
	exec.Schedule(&OwnershipEvent{
		time:         tick,
		InstanceName: instanceName,
		Attribute:    attribute,
		From:         from,
		To:           to,
	})
}

// Run executes the exchange: every federate's startup push is seeded at tick
// zero, then the event loop drains until the horizon or until no events
// remain. Returns the first error any event raised.
func (exec *Executive) Run() error {
	for _, f := range exec.Federates {
		exec.Schedule(&InitPushEvent{time: 0, Federate: f})
	}

	for len(exec.EventQueue) > 0 && exec.err == nil {
		ev := heap.Pop(&exec.EventQueue).(Event)
		// advance the clock
		exec.Clock = ev.Timestamp()
		logrus.Debugf("[tick %07d] Executing %T", exec.Clock, ev)
		ev.Execute(exec)
		if exec.Clock > exec.Stop {
			break
		}
	}
	if exec.err != nil {
		return exec.err
	}
	if len(exec.held) > 0 && exec.Clock <= exec.Stop {
		names := make([]string, 0, len(exec.held))
		for _, f := range exec.held {
			names = append(names, f.Name)
		}
		return fmt.Errorf("federation stalled at %d ticks with held advance requests: %v", exec.Clock, names)
	}
	logrus.Infof("[tick %07d] Exchange ended", exec.Clock)
	return nil
}

// fail records the first run error and drains the event queue so Run stops.
func (exec *Executive) fail(err error) {
	if exec.err == nil {
		exec.err = err
	}
	exec.EventQueue = exec.EventQueue[:0]
}

// deliver routes updates to every member that accepts them.
func (exec *Executive) deliver(updates []*AttributeUpdate) {
	for _, u := range updates {
		exec.Metrics.UpdatesSent++
		exec.Metrics.BytesEncoded += int64(len(u.Payload))
		exec.Metrics.UpdatesPerInstance[u.InstanceName]++
		for _, f := range exec.Federates {
			if f.Name == u.From {
				continue
			}
			if f.Accepts(u) {
				f.Reflects.Enqueue(u)
			}
		}
	}
}

// galtFor computes the greatest available logical time bound for a federate:
// the minimum regulation bound across the other members.
func (exec *Executive) galtFor(target *Federate) int64 {
	galt := Unbounded
	for _, f := range exec.Federates {
		if f == target {
			continue
		}
		if bound := f.Time.RegulationBound(); bound < galt {
			galt = bound
		}
	}
	return galt
}

// requestAdvance opens an advance request and grants it immediately when GALT
// allows, otherwise parks the federate on the held list.
func (exec *Executive) requestAdvance(f *Federate, to int64) {
	requested, err := f.Time.RequestAdvance(to)
	if err != nil {
		exec.fail(err)
		return
	}
	galt := exec.galtFor(f)
	if f.Time.Grantable(galt) {
		exec.recordGrant(f, requested, galt, false)
		exec.scheduleGrant(f, requested)
		return
	}
	logrus.Debugf("[%s] advance to %d held (GALT %d)", f.Name, requested, galt)
	exec.Metrics.HeldRequests++
	exec.recordGrant(f, requested, galt, true)
	exec.held = append(exec.held, f)
	// Opening this request raised f's own regulation bound, which may make an
	// earlier held request grantable.
	exec.reexamineHeld()
}

// reexamineHeld retries every held advance request after a regulation bound
// moved forward.
func (exec *Executive) reexamineHeld() {
	if len(exec.held) == 0 {
		return
	}
	var still []*Federate
	for _, f := range exec.held {
		galt := exec.galtFor(f)
		if f.Time.Grantable(galt) {
			exec.recordGrant(f, f.Time.RequestedTime(), galt, false)
			exec.scheduleGrant(f, f.Time.RequestedTime())
			continue
		}
		still = append(still, f)
	}
	exec.held = still
}

// scheduleGrant enqueues the GrantEvent for a grantable request. The event
// never runs before the current clock: a held request released late keeps its
// logical grant time but executes now.
func (exec *Executive) scheduleGrant(f *Federate, requested int64) {
	at := requested
	if at < exec.Clock {
		at = exec.Clock
	}
	exec.Schedule(&GrantEvent{time: at, Federate: f})
}

// recordGrant traces one grant decision.
func (exec *Executive) recordGrant(f *Federate, requested, galt int64, held bool) {
	granted := requested
	if held {
		granted = f.Time.GrantedTime()
	}
	exec.Trace.RecordGrant(trace.GrantRecord{
		Federate:  f.Name,
		Clock:     exec.Clock,
		Requested: requested,
		Granted:   granted,
		GALT:      galt,
		Held:      held,
	})
}

// resolveTransfers drains pending ownership negotiations at a grant boundary
// and folds the outcomes into metrics and the decision trace.
func (exec *Executive) resolveTransfers(tick int64) {
	for _, t := range exec.Ownership.Resolve(tick) {
		outcome := string(t.State)
		if t.State == ownership.StateCompleted {
			exec.Metrics.TransfersCompleted++
		} else {
			exec.Metrics.TransfersRejected++
		}
		exec.Trace.RecordTransfer(trace.TransferRecord{
			InstanceName: t.InstanceName,
			Attribute:    t.Attribute,
			From:         t.From,
			To:           t.To,
			Mode:         string(t.Mode),
			Outcome:      outcome,
			Reason:       t.Reason,
			Clock:        tick,
		})
	}
}
