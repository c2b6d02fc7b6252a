// registry.go
//
// The object/interaction registry tracks the instances a federate knows
// about, how each was established (locally created versus discovered), and
// the per-attribute ownership and update bookkeeping the scheduler reads.

package registry

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fedsync/fedsync/fed/fom"
)

// Origin records how an instance became known to this federate.
type Origin string

const (
	// OriginLocal means this federate registered the instance itself.
	OriginLocal Origin = "local"
	// OriginDiscovered means a remote federate registered the instance and
	// this federate discovered it through its subscription.
	OriginDiscovered Origin = "discovered"
)

// AttributeState is the registry's live view of one attribute mapping:
// the frozen mapping plus the mutable ownership and send bookkeeping.
type AttributeState struct {
	Mapping *fom.AttributeMapping

	OwnedLocally bool   // this federate is authoritative for the attribute
	Owner        string // owning federate's name; empty while in transfer limbo

	InitSent     bool   // one-shot initialize push already delivered
	LastSentTick int64  // tick of the most recent send
	LastSent     []byte // encoded bytes of the most recent send, for on-change suppression
}

// Instance is one registered object instance.
type Instance struct {
	Handle       uuid.UUID // federation-unique instance handle
	ClassName    string
	InstanceName string
	Origin       Origin
	Attributes   []*AttributeState // declared order preserved from the ObjectConfig
}

// Attribute returns the state for the given FOM attribute name, or nil.
func (in *Instance) Attribute(fomName string) *AttributeState {
	for _, as := range in.Attributes {
		if as.Mapping.FOMName == fomName {
			return as
		}
	}
	return nil
}

// Registry tracks the object instances one federate knows about.
type Registry struct {
	FederateName string
	instances    map[string]*Instance // keyed by instance name
}

// NewRegistry creates an empty registry for the named federate.
func NewRegistry(federateName string) *Registry {
	return &Registry{
		FederateName: federateName,
		instances:    make(map[string]*Instance),
	}
}

// Bind registers every object of a frozen FederateConfig, resolving each
// attribute's variable path against the store. An unresolved path is an
// error: the mapping names a variable the host model never declared.
func (r *Registry) Bind(fc *fom.FederateConfig, store *VarStore) error {
	if !fc.IsFrozen() {
		return fmt.Errorf("cannot bind federate %q: configuration is not frozen", fc.FederateName)
	}
	for _, obj := range fc.Objects {
		origin := OriginDiscovered
		if obj.Create {
			origin = OriginLocal
		}
		inst, err := r.register(obj, origin, store)
		if err != nil {
			return err
		}
		logrus.Debugf("[%s] registered %s instance %q (%d attributes)",
			r.FederateName, inst.Origin, inst.InstanceName, len(inst.Attributes))
	}
	return nil
}

// register creates the Instance for one object config.
func (r *Registry) register(obj *fom.ObjectConfig, origin Origin, store *VarStore) (*Instance, error) {
	if _, ok := r.instances[obj.InstanceName]; ok {
		return nil, fmt.Errorf("instance %q already registered", obj.InstanceName)
	}
	inst := &Instance{
		Handle:       uuid.New(),
		ClassName:    obj.ClassName,
		InstanceName: obj.InstanceName,
		Origin:       origin,
	}
	for i := range obj.Attributes {
		m := &obj.Attributes[i]
		if err := r.resolvePaths(m, store); err != nil {
			return nil, fmt.Errorf("instance %q: %w", obj.InstanceName, err)
		}
		owner := ""
		if m.LocallyOwned {
			owner = r.FederateName
		}
		inst.Attributes = append(inst.Attributes, &AttributeState{
			Mapping:      m,
			OwnedLocally: m.LocallyOwned,
			Owner:        owner,
		})
	}
	r.instances[obj.InstanceName] = inst
	return inst, nil
}

// resolvePaths checks that every variable path of a mapping has a slot in the
// store, including fixed-record leaves.
func (r *Registry) resolvePaths(m *fom.AttributeMapping, store *VarStore) error {
	if m.Encoding == fom.EncodingFixedRecord {
		for _, leaf := range m.Record.Leaves(nil) {
			if !store.Has(leaf.VarPath) {
				return fmt.Errorf("attribute %q: variable %q not declared in the store", m.FOMName, leaf.VarPath)
			}
		}
		return nil
	}
	if !store.Has(m.VarPath) {
		return fmt.Errorf("attribute %q: variable %q not declared in the store", m.FOMName, m.VarPath)
	}
	return nil
}

// Instance returns the instance with the given name, or nil.
func (r *Registry) Instance(name string) *Instance {
	return r.instances[name]
}

// InstanceByHandle returns the instance with the given handle, or nil.
func (r *Registry) InstanceByHandle(handle uuid.UUID) *Instance {
	for _, inst := range r.instances {
		if inst.Handle == handle {
			return inst
		}
	}
	return nil
}

// Instances returns all instances sorted by instance name for deterministic
// iteration.
func (r *Registry) Instances() []*Instance {
	out := make([]*Instance, 0, len(r.instances))
	for _, inst := range r.instances {
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InstanceName < out[j].InstanceName })
	return out
}

// Len returns the number of registered instances.
func (r *Registry) Len() int {
	return len(r.instances)
}

// OwnedPublished returns the attribute states this federate both owns and
// publishes, across all instances, in deterministic order. These are the only
// attributes the scheduler may send.
func (r *Registry) OwnedPublished() []*AttributeState {
	var out []*AttributeState
	for _, inst := range r.Instances() {
		for _, as := range inst.Attributes {
			if as.OwnedLocally && as.Mapping.Publish {
				out = append(out, as)
			}
		}
	}
	return out
}
