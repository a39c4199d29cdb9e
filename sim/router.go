package sim

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Packet is the unit of inter-host traffic. Its ID is drawn from the
// sending host's RNG stream so that identical runs mint identical IDs.
type Packet struct {
	ID       uuid.UUID
	Src, Dst HostID
	Payload  []byte

	SentAt    SimTime
	ArrivedAt SimTime
	Dropped   bool
}

// Router is a host's packet pipeline: the send entry point on the
// source side, and on the receive side a CoDel ingress queue feeding a
// single-packet delivery slot with a packet-available callback.
//
// Ownership follows the host: the AQM queue and the slot are touched
// only by the worker the owning host is assigned to. Senders cross the
// host boundary exclusively through the delivery event that Send
// injects into the scheduler.
type Router struct {
	host  *Host
	sched *Scheduler
	aqm   *CoDelQueue

	slot        *Packet
	onAvailable func(*Worker, *Packet)
}

func newRouter(h *Host, s *Scheduler, cfg CoDelConfig) *Router {
	return &Router{host: h, sched: s, aqm: NewCoDelQueue(cfg)}
}

// SetPacketAvailable installs the callback fired when a packet lands
// in the delivery slot. It runs on the owning host's worker, so the
// callback may call Receive directly. Init phase only.
func (r *Router) SetPacketAvailable(fn func(*Worker, *Packet)) {
	r.onAvailable = fn
}

// QueueLen reports the AQM backlog, excluding the delivery slot.
func (r *Router) QueueLen() int { return r.aqm.Len() }

// Send transmits payload from this router's host to dst. The path's
// reliability is sampled from the sending host's RNG; survivors are
// delivered via a scheduler event no earlier than the lookahead floor,
// which is what keeps inter-host traffic out of other workers' pasts.
//
// The returned packet is the caller's receipt: a dropped packet is
// returned with Dropped set and no event is scheduled.
func (r *Router) Send(w *Worker, dst HostID, payload []byte) (*Packet, error) {
	src := r.host.id
	latency, reliability, ok := r.sched.topo.Path(src, dst)
	if !ok {
		return nil, fmt.Errorf("no path from host %q to host %d", r.host.name, dst)
	}
	id, err := uuid.NewRandomFromReader(r.host.rng)
	if err != nil {
		return nil, fmt.Errorf("minting packet id: %w", err)
	}
	pkt := &Packet{
		ID:      id,
		Src:     src,
		Dst:     dst,
		Payload: payload,
		SentAt:  w.CurrentTime(),
	}
	if reliability < 1 && r.host.rng.Float64() >= reliability {
		pkt.Dropped = true
		r.sched.metrics.AddPathDrop()
		return pkt, nil
	}
	delay := max(latency, r.sched.Lookahead())
	deliverAt := addSimTime(pkt.SentAt, delay)
	task := NewTask(deliverPacket, r.sched.Host(dst).Router(), pkt, nil, nil)
	w.Schedule(NewEvent(deliverAt, src, dst, task))
	return pkt, nil
}

// deliverPacket is the delivery event's callback, running on the
// destination host's worker.
func deliverPacket(w *Worker, object, argument any) {
	object.(*Router).Arrived(w, argument.(*Packet))
}

// Arrived admits a delivered packet into the AQM queue and, when the
// delivery slot is free, moves the queue head there and fires the
// packet-available callback.
func (r *Router) Arrived(w *Worker, pkt *Packet) {
	now := w.CurrentTime()
	pkt.ArrivedAt = now
	if !r.aqm.Enqueue(pkt, now) {
		pkt.Dropped = true
		r.sched.metrics.AddAQMDrops(1)
		logrus.Debugf("host %q: aqm full, dropped packet %s", r.host.name, pkt.ID)
		return
	}
	r.fill(w, now)
}

// Receive returns and clears the delivery slot, then refills it from
// the AQM head so the next packet is announced.
func (r *Router) Receive(w *Worker) *Packet {
	pkt := r.slot
	r.slot = nil
	if pkt != nil {
		r.fill(w, w.CurrentTime())
	}
	return pkt
}

func (r *Router) fill(w *Worker, now SimTime) {
	if r.slot != nil {
		return
	}
	pkt, dropped := r.aqm.Dequeue(now)
	if dropped > 0 {
		r.sched.metrics.AddAQMDrops(dropped)
	}
	if pkt == nil {
		return
	}
	r.slot = pkt
	if r.onAvailable != nil {
		r.onAvailable(w, pkt)
	}
}
