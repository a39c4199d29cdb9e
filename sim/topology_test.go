package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopology_PathIsBidirectional(t *testing.T) {
	topo := NewTopology()
	require.NoError(t, topo.AddPath(0, 1, 500*Microsecond, 0.95))

	lat, rel, ok := topo.Path(0, 1)
	require.True(t, ok)
	assert.Equal(t, 500*Microsecond, lat)
	assert.Equal(t, 0.95, rel)

	lat, rel, ok = topo.Path(1, 0)
	require.True(t, ok)
	assert.Equal(t, 500*Microsecond, lat)
	assert.Equal(t, 0.95, rel)

	_, _, ok = topo.Path(0, 2)
	assert.False(t, ok)
}

func TestTopology_MinLatencyTracksSmallestEdge(t *testing.T) {
	topo := NewTopology()
	assert.Equal(t, SimTimeMax, topo.MinLatency())

	require.NoError(t, topo.AddPath(0, 1, 500*Microsecond, 1))
	require.NoError(t, topo.AddPath(1, 2, 100*Microsecond, 1))
	require.NoError(t, topo.AddPath(0, 2, 900*Microsecond, 1))

	assert.Equal(t, 100*Microsecond, topo.MinLatency())
}

func TestTopology_AddPathValidation(t *testing.T) {
	topo := NewTopology()
	assert.ErrorContains(t, topo.AddPath(3, 3, Microsecond, 1), "must differ")
	assert.ErrorContains(t, topo.AddPath(0, 1, 0, 1), "latency")
	assert.ErrorContains(t, topo.AddPath(0, 1, Microsecond, 1.2), "reliability")
	assert.ErrorContains(t, topo.AddPath(0, 1, Microsecond, -0.1), "reliability")

	require.NoError(t, topo.AddPath(0, 1, Microsecond, 1))
	assert.ErrorContains(t, topo.AddPath(1, 0, Microsecond, 1), "already exists")
}
