package sim

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// Status describes how a run ended.
type Status int

const (
	// StatusIdle means Run has not been called.
	StatusIdle Status = iota
	// StatusDeadline means the clock reached the configured end time.
	StatusDeadline
	// StatusQuiesced means every queue emptied before the end time.
	StatusQuiesced
	// StatusStopped means Stop was requested; the run finished its
	// round and exited.
	StatusStopped
	// StatusFailed means a worker panicked inside an event callback.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusDeadline:
		return "deadline"
	case StatusQuiesced:
		return "quiesced"
	case StatusStopped:
		return "stopped"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Scheduler owns the hosts, the worker pool, and the round barrier
// protocol. One round runs all events below the barrier in parallel;
// the barrier is bounded by the lookahead so that no worker can be
// handed an event in the past of another's progress.
type Scheduler struct {
	cfg     Config
	policy  SchedulerPolicy
	topo    *Topology
	metrics *Metrics
	rng     *PartitionedRNG
	clock   clockwork.Clock

	workers []*Worker
	latch   *CountdownLatch
	wg      sync.WaitGroup

	hosts      []*Host
	hostByName map[string]*Host

	now       SimTime
	barrier   atomic.Uint64
	lookahead atomic.Uint64

	started bool
	stopReq atomic.Bool
	status  Status

	failMu sync.Mutex
	runErr error
}

// New validates cfg and builds a scheduler over the given topology.
// topo may be nil for simulations without inter-host traffic.
func New(cfg Config, topo *Topology) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if topo == nil {
		topo = NewTopology()
	}
	m := NewMetrics()
	policy, err := NewPolicy(cfg.Policy, cfg.Workers, m)
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	s := &Scheduler{
		cfg:        cfg,
		policy:     policy,
		topo:       topo,
		metrics:    m,
		rng:        NewPartitionedRNG(NewSimulationKey(cfg.Seed)),
		clock:      clockwork.NewRealClock(),
		latch:      NewCountdownLatch(),
		hostByName: make(map[string]*Host),
	}
	for i := 0; i < cfg.Workers; i++ {
		id := WorkerID(i)
		s.workers = append(s.workers, newWorker(id, s, s.rng.ForSubsystem(SubsystemWorker(id))))
	}
	s.lookahead.Store(uint64(cfg.MinLatency))
	return s, nil
}

// AddHost registers a host during the init phase, assigning it to a
// worker round-robin. Not threadsafe; must precede Run.
func (s *Scheduler) AddHost(name string) (*Host, error) {
	return s.AddHostOn(name, WorkerID(len(s.hosts)%s.cfg.Workers))
}

// AddHostOn registers a host pinned to an explicit worker. The
// host→worker assignment is part of the determinism key and never
// changes during the run.
func (s *Scheduler) AddHostOn(name string, w WorkerID) (*Host, error) {
	if s.started {
		return nil, fmt.Errorf("cannot add host %q: simulation already started", name)
	}
	if name == "" {
		return nil, fmt.Errorf("host name must not be empty")
	}
	if _, ok := s.hostByName[name]; ok {
		return nil, fmt.Errorf("host %q already exists", name)
	}
	if int(w) < 0 || int(w) >= len(s.workers) {
		return nil, fmt.Errorf("host %q assigned to worker %d, have %d workers", name, w, len(s.workers))
	}
	h := &Host{
		id:     HostID(len(s.hosts)),
		name:   name,
		worker: w,
		rng:    s.rng.ForSubsystem(SubsystemHost(name)),
	}
	h.router = newRouter(h, s, s.cfg.CoDel)
	if err := s.policy.AddHost(h); err != nil {
		return nil, err
	}
	s.hosts = append(s.hosts, h)
	s.hostByName[name] = h
	return h, nil
}

// Host resolves an arena index; events carry IDs, not pointers.
func (s *Scheduler) Host(id HostID) *Host {
	if id < 0 || int(id) >= len(s.hosts) {
		return nil
	}
	return s.hosts[id]
}

// HostByName resolves a configured host name.
func (s *Scheduler) HostByName(name string) *Host {
	return s.hostByName[name]
}

// Hosts returns all hosts in registration order.
func (s *Scheduler) Hosts() []*Host { return s.hosts }

// Metrics returns the run's counter set.
func (s *Scheduler) Metrics() *Metrics { return s.metrics }

// RNG returns the partitioned seed store. Init phase only; stream
// derivation is not threadsafe.
func (s *Scheduler) RNG() *PartitionedRNG { return s.rng }

// EndTime returns the configured termination bound.
func (s *Scheduler) EndTime() SimTime { return s.cfg.EndTime }

// Now returns the global simulated clock. It advances only between
// rounds; workers read event times, not this.
func (s *Scheduler) Now() SimTime { return s.now }

// Status reports how the run ended.
func (s *Scheduler) Status() Status { return s.status }

// Lookahead returns the current inter-host delay floor.
func (s *Scheduler) Lookahead() SimTime {
	return SimTime(s.lookahead.Load())
}

// TightenLookahead lowers the lookahead; attempts to loosen it are
// ignored. Takes effect at the next barrier computation.
func (s *Scheduler) TightenLookahead(v SimTime) {
	for {
		cur := s.lookahead.Load()
		if uint64(v) >= cur {
			return
		}
		if s.lookahead.CompareAndSwap(cur, uint64(v)) {
			return
		}
	}
}

// Stop asks the run to exit after the round in progress completes.
func (s *Scheduler) Stop() {
	s.stopReq.Store(true)
}

// Schedule accepts ownership of an event from outside worker context,
// typically config-time injection. An event targeting a time already
// passed by the global clock with an intra-host source is rejected.
func (s *Scheduler) Schedule(e *Event) error {
	if e.src == e.dst && e.src != HostNone && e.time < s.now {
		return fmt.Errorf("causality violation: host %d event at %s is before now %s", e.src, e.time, s.now)
	}
	return s.policy.Push(e, s.barrierInForce())
}

func (s *Scheduler) barrierInForce() SimTime {
	return SimTime(s.barrier.Load())
}

// failRound records the first worker failure and aborts the latch.
func (s *Scheduler) failRound(err error) {
	s.failMu.Lock()
	if s.runErr == nil {
		s.runErr = err
	}
	s.failMu.Unlock()
	s.latch.Abort()
}

func (s *Scheduler) minNextTime() SimTime {
	next := SimTimeMax
	for _, w := range s.workers {
		next = minSimTime(next, s.policy.NextTime(w.id))
	}
	return next
}

// Run executes rounds until the end time is reached, the simulation
// quiesces, Stop is requested, or a worker fails. It may be called
// once; the policy is torn down before it returns.
func (s *Scheduler) Run() error {
	if s.started {
		return fmt.Errorf("scheduler already ran")
	}
	s.started = true

	// Default the lookahead floor to the topology's minimum edge;
	// paths are installed between New and Run.
	if s.cfg.MinLatency == 0 {
		if ml := s.topo.MinLatency(); ml != SimTimeMax {
			s.lookahead.Store(uint64(ml))
		}
	}

	s.wg.Add(len(s.workers))
	for _, w := range s.workers {
		go w.run()
	}
	defer func() {
		for _, w := range s.workers {
			close(w.rounds)
		}
		s.wg.Wait()
		s.policy.Free()
	}()

	logrus.Infof("starting simulation: policy=%s workers=%d endTime=%s lookahead=%s hosts=%d",
		s.cfg.Policy, s.cfg.Workers, s.cfg.EndTime, s.Lookahead(), len(s.hosts))

	for {
		if s.stopReq.Load() {
			s.status = StatusStopped
			logrus.Infof("stop requested at now=%s", s.now)
			return nil
		}
		if s.now >= s.cfg.EndTime {
			s.status = StatusDeadline
			logrus.Infof("simulation reached end time %s", s.cfg.EndTime)
			return nil
		}
		next := s.minNextTime()
		if next == SimTimeMax {
			// Nothing queued anywhere and events only appear inside
			// rounds, so the run has quiesced.
			s.now = s.cfg.EndTime
			s.status = StatusQuiesced
			logrus.Infof("simulation quiesced, advancing to end time %s", s.cfg.EndTime)
			return nil
		}
		if next > s.now {
			if next >= s.cfg.EndTime {
				s.now = s.cfg.EndTime
				s.status = StatusDeadline
				logrus.Infof("remaining events at/after end time %s", s.cfg.EndTime)
				return nil
			}
			// Idle stretch: no event below next, so jumping there is
			// trace-equivalent to running the empty windows.
			s.now = next
		}
		barrier := minSimTime(addSimTime(s.now, s.Lookahead()), s.cfg.EndTime)
		if barrier <= s.now {
			// Zero lookahead with work at exactly now; the smallest
			// increment keeps the round protocol live.
			barrier = s.now + 1
		}
		s.runRound(barrier)
		if s.status == StatusFailed {
			return s.runErr
		}
		s.now = barrier
	}
}

func (s *Scheduler) runRound(barrier SimTime) {
	s.barrier.Store(uint64(barrier))
	s.latch.Reset(len(s.workers))
	logrus.Debugf("round: now=%s barrier=%s", s.now, barrier)
	start := s.clock.Now()
	for _, w := range s.workers {
		w.rounds <- barrier
	}
	if err := s.latch.Wait(); err != nil {
		s.status = StatusFailed
		s.failMu.Lock()
		if s.runErr == nil {
			s.runErr = err
		}
		s.failMu.Unlock()
		return
	}
	s.metrics.observeRound(s.clock.Since(start))
}
