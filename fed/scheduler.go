// scheduler.go
//
// The publish/subscribe update scheduler: decides, at each granted cycle
// boundary, which owned published attributes are due to be sent, and encodes
// them. Initialize-condition attributes go out exactly once in the startup
// push; cyclic attributes go out on their cycle-time boundaries; on-change
// attributes go out on boundaries where the encoded bytes changed.

package fed

import (
	"bytes"
	"fmt"

	"github.com/fedsync/fedsync/fed/codec"
	"github.com/fedsync/fedsync/fed/fom"
	"github.com/fedsync/fedsync/fed/registry"
)

// UpdateScheduler decides attribute due-ness against the federation least
// common time step.
type UpdateScheduler struct {
	LCTS int64
}

// NewUpdateScheduler creates a scheduler for the given least common time step.
func NewUpdateScheduler(lcts int64) *UpdateScheduler {
	return &UpdateScheduler{LCTS: lcts}
}

// Due reports whether the attribute state is due for a send at tick.
// initPush marks the one-shot startup push, where initialize-condition
// attributes (and only those) are eligible regardless of cycle boundaries.
func (s *UpdateScheduler) Due(as *registry.AttributeState, tick int64, initPush bool) bool {
	if initPush {
		return as.Mapping.Condition == fom.ConditionInitialize && !as.InitSent
	}
	switch as.Mapping.Condition {
	case fom.ConditionInitialize:
		return false // startup push only
	case fom.ConditionCyclic, fom.ConditionOnChange, "":
		cycle := as.Mapping.EffectiveCycleTime(s.LCTS)
		return tick%cycle == 0
	default:
		return false
	}
}

// EncodeAttribute produces the wire bytes for an attribute state from the
// sending federate's variable store.
func EncodeAttribute(as *registry.AttributeState, store *registry.VarStore) ([]byte, error) {
	m := as.Mapping
	if m.Encoding == fom.EncodingFixedRecord {
		return codec.EncodeRecord(m.Record, store.Get)
	}
	v, err := store.Get(m.VarPath)
	if err != nil {
		return nil, fmt.Errorf("attribute %q: %w", m.FOMName, err)
	}
	payload, err := codec.Encode(v, m.Encoding)
	if err != nil {
		return nil, fmt.Errorf("attribute %q: %w", m.FOMName, err)
	}
	return payload, nil
}

// Suppress reports whether an on-change attribute's freshly encoded payload
// matches the last bytes sent and should therefore be dropped. Other
// conditions never suppress.
func Suppress(as *registry.AttributeState, payload []byte) bool {
	if as.Mapping.Condition != fom.ConditionOnChange {
		return false
	}
	return as.LastSent != nil && bytes.Equal(as.LastSent, payload)
}
