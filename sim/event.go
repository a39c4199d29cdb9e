package sim

import "sync/atomic"

// HostID is an arena index into the scheduler's host table. Events
// carry host IDs rather than host pointers so that no reference cycle
// exists between events, queues, and hosts.
type HostID int32

// HostNone marks an event with no source host, such as events injected
// by the config layer before the run starts.
const HostNone HostID = -1

// TaskFunc is an event payload callback. It runs on the worker that
// popped the event; the worker's current host and current time are set
// to the event's destination and timestamp for the duration of the call.
type TaskFunc func(w *Worker, object, argument any)

// FreeFunc releases a payload handle once the owning event is dropped.
type FreeFunc func(any)

// Task is the payload of an event: a callback plus two opaque handles
// and their optional release hooks. The hooks run exactly once, when
// the event's refcount reaches zero.
type Task struct {
	fn           TaskFunc
	object       any
	argument     any
	objectFree   FreeFunc
	argumentFree FreeFunc
}

// NewTask builds a task payload. fn must not be nil; the handles and
// free hooks may be.
func NewTask(fn TaskFunc, object, argument any, objectFree, argumentFree FreeFunc) *Task {
	if fn == nil {
		panic("sim: task callback must not be nil")
	}
	return &Task{
		fn:           fn,
		object:       object,
		argument:     argument,
		objectFree:   objectFree,
		argumentFree: argumentFree,
	}
}

func (t *Task) run(w *Worker) {
	t.fn(w, t.object, t.argument)
}

func (t *Task) free() {
	if t.objectFree != nil {
		t.objectFree(t.object)
	}
	if t.argumentFree != nil {
		t.argumentFree(t.argument)
	}
}

// Event is the unit of simulation work. Once pushed it is immutable
// except for the sequence stamp assigned by the receiving queue (and
// the one-time causality clamp applied by the policy before the push).
//
// Events are reference counted: the creator holds one reference, and
// policy machinery may retain the event transiently. The payload's
// free hooks run when the count reaches zero.
type Event struct {
	time     SimTime
	sequence uint64
	src, dst HostID
	task     *Task
	refs     atomic.Int32
}

// NewEvent creates an event carrying task, to be delivered to dst at
// the given time. The caller holds the initial reference.
func NewEvent(time SimTime, src, dst HostID, task *Task) *Event {
	e := &Event{time: time, src: src, dst: dst, task: task}
	e.refs.Store(1)
	return e
}

func (e *Event) Time() SimTime    { return e.time }
func (e *Event) Sequence() uint64 { return e.sequence }
func (e *Event) Src() HostID      { return e.src }
func (e *Event) Dst() HostID      { return e.dst }

// setTime is the causality clamp's hook; never called after the event
// has entered a queue.
func (e *Event) setTime(t SimTime) { e.time = t }

// stamp assigns the queue-local sequence number; called under the
// queue mutex at push.
func (e *Event) stamp(seq uint64) { e.sequence = seq }

// Retain adds a reference.
func (e *Event) Retain() {
	e.refs.Add(1)
}

// Release drops a reference; at zero the payload free hooks run.
func (e *Event) Release() {
	if e.refs.Add(-1) == 0 && e.task != nil {
		e.task.free()
	}
}

func (e *Event) execute(w *Worker) {
	e.task.run(w)
}
