// Package checkpoint captures and restores federation exchange state:
// the exchange clock, each federate's granted time, variable store contents,
// and per-attribute ownership. Snapshots are CBOR-encoded with deterministic
// core options so identical states produce identical files.
package checkpoint

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"

	"github.com/fedsync/fedsync/fed"
	"github.com/fedsync/fedsync/fed/codec"
)

// Snapshot is the serialized state of an exchange.
type Snapshot struct {
	Federation string             `cbor:"federation"`
	Clock      int64              `cbor:"clock"`
	Federates  []FederateSnapshot `cbor:"federates"`
}

// FederateSnapshot is one federate's captured state. Logical clocks are not
// part of the format: restore never rewinds them (see Restore).
type FederateSnapshot struct {
	Name       string                 `cbor:"name"`
	Variables  map[string]codec.Value `cbor:"variables"`
	Attributes []AttributeSnapshot    `cbor:"attributes"`
}

// AttributeSnapshot is the mutable per-attribute registry state.
type AttributeSnapshot struct {
	InstanceName string `cbor:"instance"`
	Attribute    string `cbor:"attribute"`
	OwnedLocally bool   `cbor:"owned"`
	Owner        string `cbor:"owner"`
	InitSent     bool   `cbor:"init_sent"`
	LastSentTick int64  `cbor:"last_sent_tick"`
	LastSent     []byte `cbor:"last_sent"`
}

// Capture snapshots the executive's current state.
func Capture(exec *fed.Executive) *Snapshot {
	snap := &Snapshot{
		Federation: exec.Federates[0].Config.FederationName,
		Clock:      exec.Clock,
	}
	for _, f := range exec.Federates {
		fs := FederateSnapshot{
			Name:      f.Name,
			Variables: make(map[string]codec.Value, f.Store.Len()),
		}
		for _, path := range f.Store.Paths() {
			v, err := f.Store.Get(path)
			if err != nil {
				continue
			}
			fs.Variables[path] = v
		}
		for _, inst := range f.Registry.Instances() {
			for _, as := range inst.Attributes {
				fs.Attributes = append(fs.Attributes, AttributeSnapshot{
					InstanceName: inst.InstanceName,
					Attribute:    as.Mapping.FOMName,
					OwnedLocally: as.OwnedLocally,
					Owner:        as.Owner,
					InitSent:     as.InitSent,
					LastSentTick: as.LastSentTick,
					LastSent:     as.LastSent,
				})
			}
		}
		snap.Federates = append(snap.Federates, fs)
	}
	return snap
}

// Restore applies a snapshot's variable and ownership state onto an executive
// built from the same federation configuration. Clocks are not rewound: a
// restored run continues its cycles from the restored values, matching the
// federation-save model where the run restarts from saved state.
func Restore(exec *fed.Executive, snap *Snapshot) error {
	for _, fs := range snap.Federates {
		f := exec.Federate(fs.Name)
		if f == nil {
			return fmt.Errorf("snapshot names federate %q which is not in the federation", fs.Name)
		}
		for path, v := range fs.Variables {
			if err := f.Store.Set(path, v); err != nil {
				return fmt.Errorf("federate %q: %w", fs.Name, err)
			}
		}
		for _, attr := range fs.Attributes {
			inst := f.Registry.Instance(attr.InstanceName)
			if inst == nil {
				return fmt.Errorf("federate %q: snapshot names unknown instance %q", fs.Name, attr.InstanceName)
			}
			as := inst.Attribute(attr.Attribute)
			if as == nil {
				return fmt.Errorf("instance %q: snapshot names unknown attribute %q", attr.InstanceName, attr.Attribute)
			}
			as.OwnedLocally = attr.OwnedLocally
			as.Owner = attr.Owner
			as.InitSent = attr.InitSent
			as.LastSentTick = attr.LastSentTick
			as.LastSent = attr.LastSent
		}
	}
	return nil
}

// encMode is the deterministic CBOR encoder shared by Save and Marshal.
var encMode cbor.EncMode

func init() {
	mode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("checkpoint: cannot build CBOR encoder: %v", err))
	}
	encMode = mode
}

// Marshal encodes a snapshot to deterministic CBOR bytes.
func Marshal(snap *Snapshot) ([]byte, error) {
	data, err := encMode.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a snapshot from CBOR bytes.
func Unmarshal(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := cbor.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}

// Save writes a snapshot file.
func Save(path string, snap *Snapshot) error {
	data, err := Marshal(snap)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", path, err)
	}
	return nil
}

// Load reads a snapshot file.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	return Unmarshal(data)
}
