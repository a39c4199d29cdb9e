package sim

// globalSinglePolicy keeps every event in one queue drained by one
// worker. It is the serial baseline used for determinism checks: with
// a single queue, (time, sequence) is a total order over the whole
// simulation.
type globalSinglePolicy struct {
	queue   *EventQueue
	hosts   []*Host
	metrics *Metrics
}

func newGlobalSinglePolicy(m *Metrics) *globalSinglePolicy {
	return &globalSinglePolicy{queue: NewEventQueue(), metrics: m}
}

func (p *globalSinglePolicy) AddHost(h *Host) error {
	p.hosts = append(p.hosts, h)
	return nil
}

func (p *globalSinglePolicy) AssignedHosts(WorkerID) []*Host {
	return p.hosts
}

func (p *globalSinglePolicy) Push(e *Event, barrier SimTime) error {
	clampInterHost(e, barrier, p.metrics)
	p.queue.Push(e)
	p.metrics.addPushed()
	return nil
}

func (p *globalSinglePolicy) Pop(_ WorkerID, barrier SimTime) *Event {
	e := p.queue.PopBefore(barrier)
	if e != nil {
		p.metrics.addPopped()
	}
	return e
}

func (p *globalSinglePolicy) NextTime(WorkerID) SimTime {
	return p.queue.PeekTime()
}

func (p *globalSinglePolicy) Free() {
	p.queue.drain()
}
