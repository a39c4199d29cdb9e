package sim

import (
	"fmt"
	"math"
)

// CoDel defaults; all three are reconfigurable via CoDelConfig.
const (
	DefaultCoDelLimit    = 1000
	DefaultCoDelTarget   = 5 * Millisecond
	DefaultCoDelInterval = 100 * Millisecond
)

// CoDelConfig parameterizes a router's ingress AQM queue.
type CoDelConfig struct {
	Limit    int     // hard drop threshold in packets
	Target   SimTime // standing-queue sojourn goal
	Interval SimTime // sliding window for sojourn estimation
}

func (c CoDelConfig) withDefaults() CoDelConfig {
	if c.Limit == 0 {
		c.Limit = DefaultCoDelLimit
	}
	if c.Target == 0 {
		c.Target = DefaultCoDelTarget
	}
	if c.Interval == 0 {
		c.Interval = DefaultCoDelInterval
	}
	return c
}

// Validate rejects nonsensical AQM parameters; zero fields mean "use
// the default" and pass.
func (c *CoDelConfig) Validate() error {
	if c.Limit < 0 {
		return fmt.Errorf("limit must be >= 0, got %d", c.Limit)
	}
	if c.Target > SimTimeMax || c.Interval > SimTimeMax {
		return fmt.Errorf("target/interval out of range")
	}
	return nil
}

type codelEntry struct {
	pkt        *Packet
	enqueuedAt SimTime
}

// CoDelQueue is the controlled-delay ingress queue in front of a
// host's receive interface. It stores packets while their sojourn time
// stays near Target; once the sojourn has exceeded Target continuously
// for Interval it enters the drop state and sheds packets on dequeue
// at an increasing rate (interval/sqrt(count)) until sojourn recovers.
type CoDelQueue struct {
	cfg     CoDelConfig
	entries []codelEntry

	dropping       bool
	dropNext       SimTime
	count          uint32
	firstAboveTime SimTime
}

func NewCoDelQueue(cfg CoDelConfig) *CoDelQueue {
	return &CoDelQueue{cfg: cfg.withDefaults()}
}

func (q *CoDelQueue) Len() int { return len(q.entries) }

// Enqueue admits a packet at time now. Returns false when the queue is
// at its hard limit; the caller counts the drop.
func (q *CoDelQueue) Enqueue(pkt *Packet, now SimTime) bool {
	if len(q.entries) >= q.cfg.Limit {
		return false
	}
	q.entries = append(q.entries, codelEntry{pkt: pkt, enqueuedAt: now})
	return true
}

// Dequeue returns the next packet to deliver, or nil when the queue is
// empty or everything pending was shed. The second return value is the
// number of packets dropped by the control law during this dequeue;
// dropped packets have their Dropped flag set.
func (q *CoDelQueue) Dequeue(now SimTime) (*Packet, int) {
	dropped := 0
	pkt, okToDrop := q.doDequeue(now)
	if pkt == nil {
		q.dropping = false
		return nil, dropped
	}
	if q.dropping {
		if !okToDrop {
			q.dropping = false
		}
		for now >= q.dropNext && q.dropping {
			pkt.Dropped = true
			dropped++
			q.count++
			pkt, okToDrop = q.doDequeue(now)
			if !okToDrop {
				q.dropping = false
			} else {
				q.dropNext = q.controlLaw(q.dropNext)
			}
		}
	} else if okToDrop {
		pkt.Dropped = true
		dropped++
		pkt, _ = q.doDequeue(now)
		q.dropping = true
		// Reuse the drop frequency from the last cycle if we were
		// recently dropping; otherwise restart the sqrt schedule.
		if q.count > 2 && now < addSimTime(q.dropNext, 8*q.cfg.Interval) {
			q.count -= 2
		} else {
			q.count = 1
		}
		q.dropNext = q.controlLaw(now)
	}
	return pkt, dropped
}

// doDequeue pops the head and classifies it: the second return value
// says whether the packet's sojourn time has stayed above Target long
// enough that dropping is allowed.
func (q *CoDelQueue) doDequeue(now SimTime) (*Packet, bool) {
	if len(q.entries) == 0 {
		q.firstAboveTime = 0
		return nil, false
	}
	entry := q.entries[0]
	q.entries[0] = codelEntry{}
	q.entries = q.entries[1:]

	sojourn := now - entry.enqueuedAt
	if sojourn < q.cfg.Target {
		q.firstAboveTime = 0
		return entry.pkt, false
	}
	if q.firstAboveTime == 0 {
		q.firstAboveTime = addSimTime(now, q.cfg.Interval)
		return entry.pkt, false
	}
	return entry.pkt, now >= q.firstAboveTime
}

func (q *CoDelQueue) controlLaw(t SimTime) SimTime {
	return addSimTime(t, SimTime(float64(q.cfg.Interval)/math.Sqrt(float64(q.count))))
}
