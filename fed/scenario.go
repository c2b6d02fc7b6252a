// scenario.go
//
// The scenario driver stands in for the host simulation's model code: at each
// granted boundary it perturbs the variables a federate owns so the exchange
// path (encode, deliver, reflect) carries real value changes. Mutation draws
// from the federate's partitioned RNG stream, so runs are reproducible.

package fed

import (
	"math/rand"

	"github.com/fedsync/fedsync/fed/codec"
	"github.com/fedsync/fedsync/fed/fom"
)

// Scenario mutates owned variables between cycles.
type Scenario struct {
	// Drift scales float64 perturbation per boundary.
	Drift float64
}

// NewScenario creates a Scenario with the given float drift.
func NewScenario(drift float64) *Scenario {
	return &Scenario{Drift: drift}
}

// Mutate perturbs every variable backing an owned, published attribute of the
// federate. Scalars drift; booleans occasionally flip; strings and opaque
// blobs are left alone.
func (sc *Scenario) Mutate(f *Federate, tick int64, rng *rand.Rand) {
	for _, as := range f.Registry.OwnedPublished() {
		m := as.Mapping
		if m.Encoding == fom.EncodingFixedRecord {
			for _, leaf := range m.Record.Leaves(nil) {
				sc.mutatePath(f, leaf.VarPath, rng)
			}
			continue
		}
		sc.mutatePath(f, m.VarPath, rng)
	}
}

// mutatePath perturbs a single variable slot in place.
func (sc *Scenario) mutatePath(f *Federate, path string, rng *rand.Rand) {
	v, err := f.Store.Get(path)
	if err != nil {
		return
	}
	switch v.Kind {
	case codec.KindFloat64:
		v.Float64 += sc.Drift * rng.NormFloat64()
	case codec.KindInt64:
		v.Int64 += rng.Int63n(3) - 1
	case codec.KindBool:
		if rng.Intn(8) == 0 {
			v.Bool = !v.Bool
		}
	default:
		return
	}
	// Kind is unchanged, Set cannot fail here.
	_ = f.Store.Set(path, v)
}
