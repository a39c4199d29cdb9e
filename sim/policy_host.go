package sim

import "fmt"

// hostCursor tracks one worker's position in its assigned-host list
// within the current round. Each cursor is touched only by its worker,
// so no locking is needed; the barrier field detects round boundaries.
type hostCursor struct {
	barrier SimTime
	idx     int
}

// hostSinglePolicy gives every host its own queue and pins each host
// to one worker. Workers iterate their hosts in add order, draining a
// host's head events below the barrier before moving on (host-affine
// batching). Cross-queue order inside one barrier window is not
// observable, so ties across queues are broken arbitrarily.
type hostSinglePolicy struct {
	queues   map[HostID]*EventQueue
	byWorker [][]*Host
	cursors  []hostCursor
	metrics  *Metrics
}

func newHostSinglePolicy(workers int, m *Metrics) *hostSinglePolicy {
	return &hostSinglePolicy{
		queues:   make(map[HostID]*EventQueue),
		byWorker: make([][]*Host, workers),
		cursors:  make([]hostCursor, workers),
		metrics:  m,
	}
}

func (p *hostSinglePolicy) AddHost(h *Host) error {
	if int(h.worker) < 0 || int(h.worker) >= len(p.byWorker) {
		return fmt.Errorf("host %q assigned to worker %d, have %d workers", h.name, h.worker, len(p.byWorker))
	}
	if _, ok := p.queues[h.id]; ok {
		return fmt.Errorf("host %q already added", h.name)
	}
	p.queues[h.id] = NewEventQueue()
	p.byWorker[h.worker] = append(p.byWorker[h.worker], h)
	return nil
}

func (p *hostSinglePolicy) AssignedHosts(w WorkerID) []*Host {
	return p.byWorker[w]
}

func (p *hostSinglePolicy) Push(e *Event, barrier SimTime) error {
	q, ok := p.queues[e.dst]
	if !ok {
		return fmt.Errorf("push to unknown host %d", e.dst)
	}
	clampInterHost(e, barrier, p.metrics)
	q.Push(e)
	p.metrics.addPushed()
	return nil
}

// Pop resets the cursor at each new barrier, then scans the worker's
// hosts from the cursor forward for a head event below the barrier.
func (p *hostSinglePolicy) Pop(w WorkerID, barrier SimTime) *Event {
	cur := &p.cursors[w]
	if cur.barrier != barrier {
		cur.barrier = barrier
		cur.idx = 0
	}
	hosts := p.byWorker[w]
	for cur.idx < len(hosts) {
		if e := p.queues[hosts[cur.idx].id].PopBefore(barrier); e != nil {
			p.metrics.addPopped()
			return e
		}
		cur.idx++
	}
	return nil
}

func (p *hostSinglePolicy) NextTime(w WorkerID) SimTime {
	next := SimTimeMax
	for _, h := range p.byWorker[w] {
		next = minSimTime(next, p.queues[h.id].PeekTime())
	}
	return next
}

func (p *hostSinglePolicy) Free() {
	for _, q := range p.queues {
		q.drain()
	}
}
