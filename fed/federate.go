// federate.go
//
// Defines the Federate: one participant's live state in the in-process
// federation — its frozen configuration, variable store, registry, time
// manager, and the queue of updates awaiting reflection.

package fed

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/fedsync/fedsync/fed/codec"
	"github.com/fedsync/fedsync/fed/fom"
	"github.com/fedsync/fedsync/fed/registry"
)

// Federate is one participant in the federation exchange.
type Federate struct {
	Name     string
	Config   *fom.FederateConfig
	Store    *registry.VarStore
	Registry *registry.Registry
	Time     *TimeManager
	Reflects *ReflectQueue
}

// NewFederate wires a federate from its frozen configuration and variable
// store, binding every attribute mapping against the store.
func NewFederate(fc *fom.FederateConfig, store *registry.VarStore) (*Federate, error) {
	if !fc.IsFrozen() {
		return nil, fmt.Errorf("federate %q: configuration must be frozen before joining", fc.FederateName)
	}
	reg := registry.NewRegistry(fc.FederateName)
	if err := reg.Bind(fc, store); err != nil {
		return nil, fmt.Errorf("federate %q: %w", fc.FederateName, err)
	}
	return &Federate{
		Name:     fc.FederateName,
		Config:   fc,
		Store:    store,
		Registry: reg,
		Time:     NewTimeManager(fc),
		Reflects: &ReflectQueue{},
	}, nil
}

// CollectUpdates encodes every owned published attribute due at tick and
// returns the updates to deliver. Send bookkeeping (init flags, last-sent
// bytes and tick) is committed here.
func (f *Federate) CollectUpdates(sched *UpdateScheduler, tick int64, initPush bool) ([]*AttributeUpdate, error) {
	var out []*AttributeUpdate
	for _, inst := range f.Registry.Instances() {
		for _, as := range inst.Attributes {
			if !as.OwnedLocally || !as.Mapping.Publish {
				continue
			}
			if !sched.Due(as, tick, initPush) {
				continue
			}
			payload, err := EncodeAttribute(as, f.Store)
			if err != nil {
				return nil, fmt.Errorf("federate %q instance %q: %w", f.Name, inst.InstanceName, err)
			}
			if Suppress(as, payload) {
				continue
			}
			as.LastSent = payload
			as.LastSentTick = tick
			if initPush {
				as.InitSent = true
			}
			out = append(out, &AttributeUpdate{
				InstanceName: inst.InstanceName,
				Attribute:    as.Mapping.FOMName,
				From:         f.Name,
				SentTick:     tick,
				Payload:      payload,
			})
		}
	}
	return out, nil
}

// Accepts reports whether this federate reflects the given update: it must
// know the instance, subscribe to the attribute, and not own it.
func (f *Federate) Accepts(u *AttributeUpdate) bool {
	inst := f.Registry.Instance(u.InstanceName)
	if inst == nil {
		return false
	}
	as := inst.Attribute(u.Attribute)
	if as == nil {
		return false
	}
	return as.Mapping.Subscribe && !as.OwnedLocally
}

// ApplyReflections releases every queued update with a timestamp at or below
// the grant time and decodes it into the variable store. Returns the number
// of updates applied.
func (f *Federate) ApplyReflections(grant int64) (int, error) {
	due := f.Reflects.ReleaseUpTo(grant)
	for _, u := range due {
		if err := f.reflect(u); err != nil {
			return 0, fmt.Errorf("federate %q: %w", f.Name, err)
		}
		logrus.Debugf("[%s] reflected %s.%s from %s (sent %d, grant %d)",
			f.Name, u.InstanceName, u.Attribute, u.From, u.SentTick, grant)
	}
	return len(due), nil
}

// reflect decodes one update into the variable store.
func (f *Federate) reflect(u *AttributeUpdate) error {
	inst := f.Registry.Instance(u.InstanceName)
	if inst == nil {
		return fmt.Errorf("reflect of unknown instance %q", u.InstanceName)
	}
	as := inst.Attribute(u.Attribute)
	if as == nil {
		return fmt.Errorf("instance %q: reflect of unknown attribute %q", u.InstanceName, u.Attribute)
	}
	m := as.Mapping

	if m.Encoding == fom.EncodingFixedRecord {
		return codec.DecodeRecord(u.Payload, m.Record, f.Store.Kind, f.Store.Set)
	}

	want := codec.KindInt64
	if m.Encoding == fom.EncodingLittleEndian || m.Encoding == fom.EncodingBigEndian {
		k, err := f.Store.Kind(m.VarPath)
		if err != nil {
			return fmt.Errorf("attribute %q: %w", m.FOMName, err)
		}
		want = k
	}
	v, err := codec.Decode(u.Payload, m.Encoding, want)
	if err != nil {
		return fmt.Errorf("attribute %q: %w", m.FOMName, err)
	}
	return f.Store.Set(m.VarPath, v)
}
