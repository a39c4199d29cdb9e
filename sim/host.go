package sim

import "math/rand"

// Host is the opaque per-host container addressed by events. The
// scheduler owns every host for the lifetime of the run; workers
// borrow a host mutably only while executing one of its events.
//
// The scheduler-facing surface is identity plus the ingress router;
// everything protocol-level lives behind the router's packet-available
// callback.
type Host struct {
	id     HostID
	name   string
	worker WorkerID
	router *Router
	rng    *rand.Rand
}

func (h *Host) ID() HostID       { return h.id }
func (h *Host) Name() string     { return h.name }
func (h *Host) Worker() WorkerID { return h.worker }

// Router returns the host's ingress packet pipeline.
func (h *Host) Router() *Router { return h.router }

// RNG is the host's deterministic stream, used for path-loss sampling
// on sends originating here. Confined to the worker the host is
// assigned to.
func (h *Host) RNG() *rand.Rand { return h.rng }
