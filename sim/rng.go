package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// SimulationKey uniquely identifies a reproducible simulation run.
// Two simulations with the same SimulationKey and identical
// configuration MUST produce identical per-host event traces.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// SubsystemWorkload is the RNG subsystem for traffic generation.
const SubsystemWorkload = "workload"

// SubsystemWorker returns the subsystem name for worker w. Each worker
// thread draws from its own stream so that thread interleaving never
// perturbs another worker's sequence.
func SubsystemWorker(w WorkerID) string {
	return fmt.Sprintf("worker_%d", w)
}

// SubsystemFlow returns the subsystem name for traffic flow i. Each
// flow draws its inter-arrival gaps from its own stream so that one
// flow's draws never perturb another flow's schedule. The index is part
// of the name, so reordering flows in the config changes their streams.
func SubsystemFlow(i int, src, dst string) string {
	return fmt.Sprintf("flow_%d_%s_%s", i, src, dst)
}

// SubsystemHost returns the subsystem name for a host. Path-loss
// sampling draws from the sending host's stream, which makes drop
// decisions a function of that host's send order alone, independent of
// how hosts are partitioned across workers.
func SubsystemHost(name string) string {
	return "host_" + name
}

// PartitionedRNG provides deterministic, isolated RNG instances per
// subsystem, derived as masterSeed XOR fnv1a64(subsystemName).
//
// Thread-safety: NOT thread-safe. Derive every stream during the
// single-threaded init phase; the individual *rand.Rand instances are
// then each confined to one goroutine.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named
// subsystem. The same name always returns the same *rand.Rand instance
// (cached). Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(int64(p.key) ^ fnv1a64(name)))
	p.subsystems[name] = rng
	return rng
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
