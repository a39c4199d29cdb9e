package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// WorkerID identifies a worker thread; it doubles as the policy-side
// key for host assignment and queue selection.
type WorkerID int

// Policy names accepted by NewPolicy.
const (
	PolicyGlobalSingle = "global-single"
	PolicyHostSingle   = "host-single"
	PolicyThreadSingle = "thread-single"
)

// SchedulerPolicy maps hosts to event queues and workers to hosts.
// All operations are threadsafe except AddHost, which must run during
// the single-threaded init phase before the first round; the host and
// assignment maps are read-only once workers start.
type SchedulerPolicy interface {
	// AddHost associates a host with a queue and, for host-affine
	// policies, with a worker. Not threadsafe.
	AddHost(h *Host) error

	// AssignedHosts returns the hosts the given worker iterates, in
	// the order they were added.
	AssignedHosts(w WorkerID) []*Host

	// Push enqueues the event for its destination, applying the
	// inter-host causality clamp against barrier.
	Push(e *Event, barrier SimTime) error

	// Pop returns the next event with time < barrier for the calling
	// worker, or nil when the worker's queues hold nothing below the
	// barrier.
	Pop(w WorkerID, barrier SimTime) *Event

	// NextTime reports the minimum head-event time across the calling
	// worker's queues, or SimTimeMax if they are all empty.
	NextTime(w WorkerID) SimTime

	// Free drains and releases every queued event. Called once, after
	// all workers have joined.
	Free()
}

// IsValidPolicy reports whether name selects a known policy.
func IsValidPolicy(name string) bool {
	switch name {
	case PolicyGlobalSingle, PolicyHostSingle, PolicyThreadSingle:
		return true
	}
	return false
}

// NewPolicy creates a SchedulerPolicy by name for the given worker
// count. Valid names: "global-single", "host-single", "thread-single".
func NewPolicy(name string, workers int, m *Metrics) (SchedulerPolicy, error) {
	switch name {
	case PolicyGlobalSingle:
		if workers != 1 {
			return nil, fmt.Errorf("policy %q requires exactly 1 worker, got %d", name, workers)
		}
		return newGlobalSinglePolicy(m), nil
	case PolicyHostSingle:
		return newHostSinglePolicy(workers, m), nil
	case PolicyThreadSingle:
		return newThreadSinglePolicy(workers, m), nil
	default:
		return nil, fmt.Errorf("unknown policy %q; valid options: %s, %s, %s",
			name, PolicyGlobalSingle, PolicyHostSingle, PolicyThreadSingle)
	}
}

// clampInterHost raises an inter-host event's time up to the barrier
// in force at push, so the destination's worker never observes an
// event in its past. Intra-host events keep their natural time; their
// queue is drained in (time, sequence) order by a single worker.
//
// Runs before the event enters any queue, so no queue lock is held
// while logging.
func clampInterHost(e *Event, barrier SimTime, m *Metrics) {
	if e.src == e.dst || e.src == HostNone {
		return
	}
	if e.time >= barrier {
		return
	}
	m.addClamped()
	logrus.Infof("inter-host event clamped: src=%d dst=%d time=%s barrier=%s",
		e.src, e.dst, e.time, barrier)
	e.setTime(barrier)
}
