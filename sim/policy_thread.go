package sim

import "fmt"

// threadSinglePolicy keeps one queue per worker, with no host
// affinity: any worker may push into any worker's queue, and a worker
// drains only its own. A host's events still land in a single queue
// (its worker's), preserving per-host delivery order.
type threadSinglePolicy struct {
	queues   []*EventQueue
	byWorker [][]*Host
	hostQ    map[HostID]*EventQueue
	metrics  *Metrics
}

func newThreadSinglePolicy(workers int, m *Metrics) *threadSinglePolicy {
	p := &threadSinglePolicy{
		queues:   make([]*EventQueue, workers),
		byWorker: make([][]*Host, workers),
		hostQ:    make(map[HostID]*EventQueue),
		metrics:  m,
	}
	for i := range p.queues {
		p.queues[i] = NewEventQueue()
	}
	return p
}

func (p *threadSinglePolicy) AddHost(h *Host) error {
	if int(h.worker) < 0 || int(h.worker) >= len(p.queues) {
		return fmt.Errorf("host %q assigned to worker %d, have %d workers", h.name, h.worker, len(p.queues))
	}
	if _, ok := p.hostQ[h.id]; ok {
		return fmt.Errorf("host %q already added", h.name)
	}
	p.hostQ[h.id] = p.queues[h.worker]
	p.byWorker[h.worker] = append(p.byWorker[h.worker], h)
	return nil
}

func (p *threadSinglePolicy) AssignedHosts(w WorkerID) []*Host {
	return p.byWorker[w]
}

func (p *threadSinglePolicy) Push(e *Event, barrier SimTime) error {
	q, ok := p.hostQ[e.dst]
	if !ok {
		return fmt.Errorf("push to unknown host %d", e.dst)
	}
	clampInterHost(e, barrier, p.metrics)
	q.Push(e)
	p.metrics.addPushed()
	return nil
}

func (p *threadSinglePolicy) Pop(w WorkerID, barrier SimTime) *Event {
	e := p.queues[w].PopBefore(barrier)
	if e != nil {
		p.metrics.addPopped()
	}
	return e
}

func (p *threadSinglePolicy) NextTime(w WorkerID) SimTime {
	return p.queues[w].PeekTime()
}

func (p *threadSinglePolicy) Free() {
	for _, q := range p.queues {
		q.drain()
	}
}
