package fed

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// === ExchangeKey ===

// ExchangeKey uniquely identifies a reproducible federation exchange run.
// Two runs with the same ExchangeKey and identical configuration MUST produce
// bit-for-bit identical results.
type ExchangeKey int64

// NewExchangeKey creates an ExchangeKey from a seed value.
func NewExchangeKey(seed int64) ExchangeKey {
	return ExchangeKey(seed)
}

// === Subsystem Constants ===

// SubsystemScenario returns the RNG subsystem name for a federate's scenario
// driver. Each federate mutates its owned variables from an isolated stream
// so adding a federate never perturbs another's values.
func SubsystemScenario(federate string) string {
	return fmt.Sprintf("scenario_%s", federate)
}

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per
// subsystem. The derived seed is the master seed XOR fnv1a64(subsystemName).
//
// Thread-safety: NOT thread-safe. Must be called from a single goroutine.
type PartitionedRNG struct {
	key        ExchangeKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from an ExchangeKey.
func NewPartitionedRNG(key ExchangeKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named
// subsystem. The same subsystem name always returns the same *rand.Rand
// instance (cached). Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	derivedSeed := int64(p.key) ^ fnv1a64(name)
	rng := rand.New(rand.NewSource(derivedSeed))
	p.subsystems[name] = rng
	return rng
}

// Key returns the ExchangeKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() ExchangeKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
