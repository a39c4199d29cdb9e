package sim

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"
)

// Worker drains events for its assigned hosts, one round at a time.
// Exactly one event executes on a worker at any moment; while it does,
// CurrentHost and CurrentTime reflect the event's destination and
// timestamp so that callbacks can schedule follow-up work.
type Worker struct {
	id    WorkerID
	sched *Scheduler
	rng   *rand.Rand

	rounds chan SimTime

	currentTime SimTime
	currentHost *Host
}

func newWorker(id WorkerID, s *Scheduler, rng *rand.Rand) *Worker {
	return &Worker{
		id:     id,
		sched:  s,
		rng:    rng,
		rounds: make(chan SimTime, 1),
	}
}

func (w *Worker) ID() WorkerID { return w.id }

// Scheduler returns the scheduler this worker belongs to.
func (w *Worker) Scheduler() *Scheduler { return w.sched }

// RNG is the worker's deterministic stream, derived from the global
// seed and the worker index.
func (w *Worker) RNG() *rand.Rand { return w.rng }

// CurrentTime returns the executing event's time, or the last barrier
// the worker finished when idle.
func (w *Worker) CurrentTime() SimTime { return w.currentTime }

// CurrentHost returns the executing event's destination host; nil when
// no event is running.
func (w *Worker) CurrentHost() *Host { return w.currentHost }

// AssignedHosts returns this worker's hosts under the active policy.
func (w *Worker) AssignedHosts() []*Host {
	return w.sched.policy.AssignedHosts(w.id)
}

// Schedule pushes an event produced inside a callback, under the
// barrier currently in force. An intra-host event that targets its own
// host's past is a programming error in the caller and panics; the
// scheduler converts the panic into a run failure.
func (w *Worker) Schedule(e *Event) {
	if e.src == e.dst && e.src != HostNone && e.time < w.currentTime {
		panic(fmt.Sprintf("sim: causality violation: host %d scheduled its own event at %s while executing at %s",
			e.src, e.time, w.currentTime))
	}
	if err := w.sched.policy.Push(e, w.sched.barrierInForce()); err != nil {
		panic(fmt.Sprintf("sim: push failed: %v", err))
	}
}

// run is the worker goroutine body: wait for a barrier broadcast,
// drain, count down, repeat until the round channel closes.
func (w *Worker) run() {
	defer w.sched.wg.Done()
	for barrier := range w.rounds {
		w.runRound(barrier)
	}
}

func (w *Worker) runRound(barrier SimTime) {
	defer func() {
		if r := recover(); r != nil {
			w.sched.failRound(fmt.Errorf("worker %d: %v", w.id, r))
			return
		}
		w.sched.latch.CountDown()
	}()
	for {
		e := w.sched.policy.Pop(w.id, barrier)
		if e == nil {
			break
		}
		w.execute(e)
	}
	w.currentTime = barrier
}

func (w *Worker) execute(e *Event) {
	w.currentTime = e.time
	w.currentHost = w.sched.Host(e.dst)
	logrus.Debugf("[worker %d] executing event t=%s seq=%d dst=%d", w.id, e.time, e.sequence, e.dst)
	e.execute(w)
	w.currentHost = nil
	e.Release()
}
