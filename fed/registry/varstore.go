// varstore.go
//
// VarStore models the host simulation engine's variable namespace: dotted
// variable paths resolved to live value slots. Attribute mappings bind to
// slots at freeze time; a path with no slot is a configuration error.

package registry

import (
	"fmt"
	"sort"

	"github.com/fedsync/fedsync/fed/codec"
)

// VarStore maps dotted variable paths to live value slots.
// Not safe for concurrent use; the executive mutates it from a single
// goroutine, matching the host engine's input-processing model.
type VarStore struct {
	slots map[string]*codec.Value
}

// NewVarStore creates an empty variable store.
func NewVarStore() *VarStore {
	return &VarStore{slots: make(map[string]*codec.Value)}
}

// Declare creates a slot for path holding the initial value. Declaring an
// existing path is an error: the host namespace has exactly one variable per
// path.
func (vs *VarStore) Declare(path string, initial codec.Value) error {
	if path == "" {
		return fmt.Errorf("cannot declare an empty variable path")
	}
	if _, ok := vs.slots[path]; ok {
		return fmt.Errorf("variable %q already declared", path)
	}
	v := initial
	vs.slots[path] = &v
	return nil
}

// Has reports whether path resolves to a slot.
func (vs *VarStore) Has(path string) bool {
	_, ok := vs.slots[path]
	return ok
}

// Get returns the current value at path.
func (vs *VarStore) Get(path string) (codec.Value, error) {
	slot, ok := vs.slots[path]
	if !ok {
		return codec.Value{}, fmt.Errorf("variable %q not declared", path)
	}
	return *slot, nil
}

// Kind returns the declared kind of the slot at path.
func (vs *VarStore) Kind(path string) (codec.Kind, error) {
	slot, ok := vs.slots[path]
	if !ok {
		return 0, fmt.Errorf("variable %q not declared", path)
	}
	return slot.Kind, nil
}

// Set replaces the value at path. The new value must keep the slot's declared
// kind; a reflected update cannot retype a host variable.
func (vs *VarStore) Set(path string, v codec.Value) error {
	slot, ok := vs.slots[path]
	if !ok {
		return fmt.Errorf("variable %q not declared", path)
	}
	if slot.Kind != v.Kind {
		return fmt.Errorf("variable %q is %s, cannot store %s", path, slot.Kind, v.Kind)
	}
	*slot = v
	return nil
}

// Paths returns the declared paths in sorted order, for deterministic
// snapshots and logs.
func (vs *VarStore) Paths() []string {
	paths := make([]string, 0, len(vs.slots))
	for p := range vs.slots {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Len returns the number of declared slots.
func (vs *VarStore) Len() int {
	return len(vs.slots)
}
