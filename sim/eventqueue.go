package sim

import (
	"container/heap"
	"fmt"
	"sync"
)

// eventHeap implements heap.Interface over (time, sequence).
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-IntHeap
type eventHeap []*Event

func (eh eventHeap) Len() int { return len(eh) }

func (eh eventHeap) Less(i, j int) bool {
	if eh[i].time != eh[j].time {
		return eh[i].time < eh[j].time
	}
	return eh[i].sequence < eh[j].sequence
}

func (eh eventHeap) Swap(i, j int) { eh[i], eh[j] = eh[j], eh[i] }

func (eh *eventHeap) Push(x any) {
	*eh = append(*eh, x.(*Event))
}

func (eh *eventHeap) Pop() any {
	old := *eh
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*eh = old[0 : n-1]
	return item
}

// EventQueue is a mutex-guarded min-heap of events ordered by
// (time, sequence). The sequence stamp is assigned under the mutex at
// push, so within one queue, push order breaks timestamp ties.
//
// Popped times are non-decreasing over the queue's lifetime; a pop
// that would travel backwards panics, since it means an event was
// pushed into the past of its own queue.
type EventQueue struct {
	mu          sync.Mutex
	heap        eventHeap
	pushCounter uint64
	lastPopTime SimTime
}

func NewEventQueue() *EventQueue {
	return &EventQueue{}
}

// Push stamps the event with the next sequence number and enqueues it.
func (q *EventQueue) Push(e *Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pushCounter++
	e.stamp(q.pushCounter)
	heap.Push(&q.heap, e)
}

// PopBefore removes and returns the earliest event with time strictly
// below barrier, or nil.
func (q *EventQueue) PopBefore(barrier SimTime) *Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.heap) == 0 || q.heap[0].time >= barrier {
		return nil
	}
	e := heap.Pop(&q.heap).(*Event)
	if e.time < q.lastPopTime {
		panic(fmt.Sprintf("sim: event queue moved backwards: popped %s after %s", e.time, q.lastPopTime))
	}
	q.lastPopTime = e.time
	return e
}

// PeekTime returns the head event's time, or SimTimeMax if empty.
func (q *EventQueue) PeekTime() SimTime {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.heap) == 0 {
		return SimTimeMax
	}
	return q.heap[0].time
}

func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.heap)
}

// drain removes and releases every remaining event; teardown only.
func (q *EventQueue) drain() {
	q.mu.Lock()
	events := q.heap
	q.heap = nil
	q.mu.Unlock()
	for _, e := range events {
		e.Release()
	}
}
