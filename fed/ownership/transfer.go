// transfer.go
//
// The attribute ownership transfer state machine. Ownership of an attribute
// moves between federates through a push (the owner divests) or a pull (a
// non-owner acquires). Negotiation runs through explicit states; transfers
// resolve at the next update-cycle boundary so both sides flip atomically.

package ownership

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/fedsync/fedsync/fed/registry"
)

// Mode selects the direction of a transfer negotiation.
type Mode string

const (
	// ModePush is owner-initiated divestiture: the owner offers the
	// attribute and the first willing federate receives it.
	ModePush Mode = "push"
	// ModePull is acquirer-initiated: a non-owner asks for the attribute
	// and the owner releases it if the mapping is marked releasable.
	ModePull Mode = "pull"
)

// State is the negotiation state of one transfer.
type State string

const (
	// StatePending is an open negotiation awaiting resolution at the next
	// cycle boundary.
	StatePending State = "pending"
	// StateCompleted means ownership has flipped.
	StateCompleted State = "completed"
	// StateRejected means the owner declined or the request was invalid.
	StateRejected State = "rejected"
)

// Transfer is one ownership negotiation for a single attribute.
type Transfer struct {
	InstanceName string
	Attribute    string
	From         string // owning federate at the time of the request
	To           string // receiving federate; empty for an unclaimed push offer
	Mode         Mode
	State        State
	Reason       string // populated on rejection
	RequestTick  int64
	ResolveTick  int64
}

func (t *Transfer) key() string {
	return t.InstanceName + "/" + t.Attribute
}

// Manager arbitrates ownership transfers across the federation. It holds the
// per-federate registries so a completed transfer flips both sides in one
// step.
type Manager struct {
	registries map[string]*registry.Registry // keyed by federate name
	pending    map[string]*Transfer          // keyed by instance/attribute
	order      []string                      // pending keys in request order, for deterministic resolution
	resolved   []*Transfer
}

// NewManager creates a Manager over the per-federate registries.
func NewManager(registries map[string]*registry.Registry) *Manager {
	return &Manager{
		registries: registries,
		pending:    make(map[string]*Transfer),
	}
}

// attrState looks up a federate's view of an attribute.
func (m *Manager) attrState(federate, instanceName, attribute string) (*registry.AttributeState, error) {
	reg, ok := m.registries[federate]
	if !ok {
		return nil, fmt.Errorf("unknown federate %q", federate)
	}
	inst := reg.Instance(instanceName)
	if inst == nil {
		return nil, fmt.Errorf("federate %q does not know instance %q", federate, instanceName)
	}
	as := inst.Attribute(attribute)
	if as == nil {
		return nil, fmt.Errorf("instance %q has no attribute %q", instanceName, attribute)
	}
	return as, nil
}

// RequestDivest opens a push transfer: the owner offers the attribute to a
// named receiver. Errors leave all state untouched.
func (m *Manager) RequestDivest(instanceName, attribute, from, to string, tick int64) (*Transfer, error) {
	fromState, err := m.attrState(from, instanceName, attribute)
	if err != nil {
		return nil, err
	}
	if !fromState.OwnedLocally {
		return nil, fmt.Errorf("federate %q cannot divest %s.%s: not the owner", from, instanceName, attribute)
	}
	if _, err := m.attrState(to, instanceName, attribute); err != nil {
		return nil, err
	}
	t := &Transfer{
		InstanceName: instanceName,
		Attribute:    attribute,
		From:         from,
		To:           to,
		Mode:         ModePush,
		State:        StatePending,
		RequestTick:  tick,
	}
	if open, ok := m.pending[t.key()]; ok {
		return nil, fmt.Errorf("transfer already pending for %s.%s (from %q)", instanceName, attribute, open.From)
	}
	m.pending[t.key()] = t
	m.order = append(m.order, t.key())
	logrus.Infof("[ownership] %s.%s: push divest %s -> %s requested at %d",
		instanceName, attribute, from, to, tick)
	return t, nil
}

// RequestAcquire opens a pull transfer: federate to asks for the attribute.
// The request is rejected immediately when the owner's mapping is not marked
// releasable; the rejection is returned as a resolved transfer, not an error.
func (m *Manager) RequestAcquire(instanceName, attribute, to string, tick int64) (*Transfer, error) {
	toState, err := m.attrState(to, instanceName, attribute)
	if err != nil {
		return nil, err
	}
	if toState.OwnedLocally {
		return nil, fmt.Errorf("federate %q already owns %s.%s", to, instanceName, attribute)
	}
	owner := toState.Owner
	if owner == "" {
		owner = m.currentOwner(instanceName, attribute)
	}
	if owner == "" {
		return nil, fmt.Errorf("%s.%s has no current owner to acquire from", instanceName, attribute)
	}
	ownerState, err := m.attrState(owner, instanceName, attribute)
	if err != nil {
		return nil, err
	}

	t := &Transfer{
		InstanceName: instanceName,
		Attribute:    attribute,
		From:         owner,
		To:           to,
		Mode:         ModePull,
		RequestTick:  tick,
	}
	if open, ok := m.pending[t.key()]; ok {
		return nil, fmt.Errorf("transfer already pending for %s.%s (from %q)", instanceName, attribute, open.From)
	}
	if !ownerState.Mapping.Releasable {
		t.State = StateRejected
		t.Reason = "owner does not release the attribute"
		t.ResolveTick = tick
		m.resolved = append(m.resolved, t)
		logrus.Infof("[ownership] %s.%s: pull acquire by %s rejected (owner %s holds)",
			instanceName, attribute, to, owner)
		return t, nil
	}
	t.State = StatePending
	m.pending[t.key()] = t
	m.order = append(m.order, t.key())
	logrus.Infof("[ownership] %s.%s: pull acquire %s -> %s requested at %d",
		instanceName, attribute, owner, to, tick)
	return t, nil
}

// currentOwner scans the registries for the federate whose view owns the
// attribute locally. Federates are visited in name order so a conflicting
// ownership claim (possible transiently after a bad restore) always resolves
// to the same federate.
func (m *Manager) currentOwner(instanceName, attribute string) string {
	names := make([]string, 0, len(m.registries))
	for name := range m.registries {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		inst := m.registries[name].Instance(instanceName)
		if inst == nil {
			continue
		}
		if as := inst.Attribute(attribute); as != nil && as.OwnedLocally {
			return name
		}
	}
	return ""
}

// Pending returns the number of open negotiations.
func (m *Manager) Pending() int {
	return len(m.pending)
}

// Resolve completes every pending transfer at a cycle boundary, flipping
// ownership in both federates' registries atomically, and returns the
// transfers resolved since the previous call (completions and rejections).
func (m *Manager) Resolve(tick int64) []*Transfer {
	for _, key := range m.order {
		t, ok := m.pending[key]
		if !ok {
			continue
		}
		fromState, errFrom := m.attrState(t.From, t.InstanceName, t.Attribute)
		toState, errTo := m.attrState(t.To, t.InstanceName, t.Attribute)
		if errFrom != nil || errTo != nil {
			t.State = StateRejected
			t.Reason = "endpoint disappeared during negotiation"
		} else {
			fromState.OwnedLocally = false
			fromState.Owner = t.To
			toState.OwnedLocally = true
			toState.Owner = t.To
			t.State = StateCompleted
			logrus.Infof("[ownership] %s.%s: ownership %s -> %s completed at %d",
				t.InstanceName, t.Attribute, t.From, t.To, tick)
		}
		t.ResolveTick = tick
		m.resolved = append(m.resolved, t)
		delete(m.pending, key)
	}
	m.order = m.order[:0]
	out := m.resolved
	m.resolved = nil
	return out
}
