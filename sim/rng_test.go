package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionedRNG_SameSubsystemSameStream(t *testing.T) {
	p1 := NewPartitionedRNG(NewSimulationKey(42))
	p2 := NewPartitionedRNG(NewSimulationKey(42))

	r1 := p1.ForSubsystem(SubsystemWorker(0))
	r2 := p2.ForSubsystem(SubsystemWorker(0))
	for i := 0; i < 100; i++ {
		assert.Equal(t, r1.Uint64(), r2.Uint64(), "draw %d diverged", i)
	}
}

func TestPartitionedRNG_SubsystemsAreIsolated(t *testing.T) {
	p := NewPartitionedRNG(NewSimulationKey(42))

	w0 := p.ForSubsystem(SubsystemWorker(0))
	w1 := p.ForSubsystem(SubsystemWorker(1))
	h := p.ForSubsystem(SubsystemHost("alpha"))

	// Streams with different names must not be the identical sequence.
	same := true
	for i := 0; i < 16; i++ {
		if w0.Uint64() != w1.Uint64() {
			same = false
		}
	}
	assert.False(t, same, "worker streams are identical")
	assert.NotNil(t, h)
}

func TestPartitionedRNG_CachesInstances(t *testing.T) {
	p := NewPartitionedRNG(NewSimulationKey(7))
	assert.Same(t, p.ForSubsystem("x"), p.ForSubsystem("x"))
	assert.Equal(t, NewSimulationKey(7), p.Key())
}

func TestSubsystemNames(t *testing.T) {
	assert.Equal(t, "worker_3", SubsystemWorker(3))
	assert.Equal(t, "host_alpha", SubsystemHost("alpha"))
	assert.Equal(t, "flow_0_a_b", SubsystemFlow(0, "a", "b"))
}
