package sim

import "fmt"

type pathKey struct {
	src, dst HostID
}

type pathInfo struct {
	latency     SimTime
	reliability float64
}

// Topology records the latency/reliability edges between hosts and
// derives the lookahead floor as the minimum latency across all edges.
// Built during init, read-only during rounds.
type Topology struct {
	paths      map[pathKey]pathInfo
	minLatency SimTime
}

func NewTopology() *Topology {
	return &Topology{
		paths:      make(map[pathKey]pathInfo),
		minLatency: SimTimeMax,
	}
}

// AddPath installs a bidirectional edge between a and b. Latency must
// be positive; reliability is the per-packet delivery probability.
func (t *Topology) AddPath(a, b HostID, latency SimTime, reliability float64) error {
	if a == b {
		return fmt.Errorf("path endpoints must differ, got host %d twice", a)
	}
	if latency == 0 || latency > SimTimeMax {
		return fmt.Errorf("path latency must be a positive time, got %s", latency)
	}
	if reliability < 0 || reliability > 1 {
		return fmt.Errorf("path reliability must be in [0,1], got %g", reliability)
	}
	if _, ok := t.paths[pathKey{a, b}]; ok {
		return fmt.Errorf("path between hosts %d and %d already exists", a, b)
	}
	info := pathInfo{latency: latency, reliability: reliability}
	t.paths[pathKey{a, b}] = info
	t.paths[pathKey{b, a}] = info
	t.minLatency = minSimTime(t.minLatency, latency)
	return nil
}

// Path returns the latency and reliability between src and dst.
func (t *Topology) Path(src, dst HostID) (SimTime, float64, bool) {
	info, ok := t.paths[pathKey{src, dst}]
	return info.latency, info.reliability, ok
}

// MinLatency returns the smallest edge latency, or SimTimeMax when the
// topology has no edges.
func (t *Topology) MinLatency() SimTime {
	return t.minLatency
}
