// Package sim provides a parallel discrete-event simulation engine for
// networked hosts.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - event.go: events, the (time, sequence) ordering key, and task payloads
//   - policy.go: the host→queue mapping and the causality clamp
//   - scheduler.go: round orchestration, the barrier, and termination
//
// # Architecture
//
// The engine advances a global clock in rounds. Each round the
// scheduler picks a barrier no further than the lookahead (the
// minimum inter-host latency) past the current time, hands it to a
// fixed pool of workers, and waits on a countdown latch while they
// drain every event strictly below the barrier from their queues.
// Inter-host events produced during a round are clamped up to the
// barrier, which is what makes concurrent progress safe: no worker can
// observe an event in the past of another worker's hosts.
//
// # Key Interfaces
//
// The extension points are small interfaces and callbacks:
//   - SchedulerPolicy: host→queue mapping (global-single, host-single, thread-single)
//   - TaskFunc: event payloads, executed on the destination host's worker
//   - Router packet-available callback: per-host ingress notification
//
// Packet traffic enters through Router.Send, which samples path
// reliability, enforces the lookahead floor on delivery delay, and
// crosses host boundaries only via scheduler events. Deliveries pass
// through a CoDel AQM queue before reaching the receive slot.
package sim
