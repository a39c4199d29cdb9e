package sim

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPair wires two hosts with one link under a single worker so
// tests can drive both sides of the pipeline deterministically.
func buildPair(t *testing.T, latency SimTime, reliability float64, codel CoDelConfig, endTime SimTime) (*Scheduler, *Host, *Host) {
	t.Helper()
	topo := NewTopology()
	s, err := New(Config{Policy: PolicyGlobalSingle, Workers: 1, Seed: 1, EndTime: endTime, CoDel: codel}, topo)
	require.NoError(t, err)
	a, err := s.AddHost("a")
	require.NoError(t, err)
	b, err := s.AddHost("b")
	require.NoError(t, err)
	require.NoError(t, topo.AddPath(a.ID(), b.ID(), latency, reliability))
	return s, a, b
}

func TestRouter_ReliabilityAndDeliveryTime(t *testing.T) {
	// GIVEN a 50µs path with reliability 0.9 and 10,000 sends at t=0
	const sends = 10000
	s, a, b := buildPair(t, 50*Microsecond, 0.9, CoDelConfig{Limit: 2 * sends}, Millisecond)

	var packets []*Packet
	burst := NewTask(func(w *Worker, _, _ any) {
		for i := 0; i < sends; i++ {
			pkt, err := a.Router().Send(w, b.ID(), nil)
			assert.NoError(t, err)
			packets = append(packets, pkt)
		}
	}, nil, nil, nil, nil)
	require.NoError(t, s.Schedule(NewEvent(0, a.ID(), a.ID(), burst)))

	require.NoError(t, s.Run())

	// THEN path drops track 1-p, and every survivor arrives at
	// exactly send_time + latency
	drops := s.Metrics().Snapshot().PathDrops
	assert.InDelta(t, float64(sends)*0.1, float64(drops), 150, "path drops far from 1-p")

	arrived := 0
	for _, pkt := range packets {
		if pkt.ArrivedAt != 0 {
			arrived++
			assert.Equal(t, 50*Microsecond, pkt.ArrivedAt)
			assert.Equal(t, SimTime(0), pkt.SentAt)
		}
	}
	assert.Equal(t, sends-int(drops), arrived)
}

func TestRouter_DeliveryDelayNeverBelowLookahead(t *testing.T) {
	// GIVEN a path faster than the configured lookahead floor
	topo := NewTopology()
	s, err := New(Config{Policy: PolicyGlobalSingle, Workers: 1, EndTime: Millisecond, MinLatency: 20 * Microsecond}, topo)
	require.NoError(t, err)
	a, err := s.AddHost("a")
	require.NoError(t, err)
	b, err := s.AddHost("b")
	require.NoError(t, err)
	require.NoError(t, topo.AddPath(a.ID(), b.ID(), 5*Microsecond, 1.0))

	var pkt *Packet
	send := NewTask(func(w *Worker, _, _ any) {
		var err error
		pkt, err = a.Router().Send(w, b.ID(), nil)
		assert.NoError(t, err)
	}, nil, nil, nil, nil)
	require.NoError(t, s.Schedule(NewEvent(0, a.ID(), a.ID(), send)))

	require.NoError(t, s.Run())

	// THEN the lookahead floor wins over the path latency
	require.NotNil(t, pkt)
	assert.Equal(t, 20*Microsecond, pkt.ArrivedAt)
}

func TestRouter_ReceiveSlotAndCallback(t *testing.T) {
	// GIVEN b announcing and receiving every delivered packet
	s, a, b := buildPair(t, 10*Microsecond, 1.0, CoDelConfig{}, Millisecond)

	var sent []*Packet
	var received []*Packet
	b.Router().SetPacketAvailable(func(w *Worker, p *Packet) {
		received = append(received, p)
		got := b.Router().Receive(w)
		assert.Same(t, p, got)
	})

	burst := NewTask(func(w *Worker, _, _ any) {
		for i := 0; i < 3; i++ {
			pkt, err := a.Router().Send(w, b.ID(), []byte(fmt.Sprintf("p%d", i)))
			assert.NoError(t, err)
			sent = append(sent, pkt)
		}
	}, nil, nil, nil, nil)
	require.NoError(t, s.Schedule(NewEvent(0, a.ID(), a.ID(), burst)))

	require.NoError(t, s.Run())

	// THEN packets are announced in send order and the pipeline drains
	require.Len(t, received, 3)
	assert.Equal(t, sent, received)
	assert.Equal(t, 0, b.Router().QueueLen())
	assert.Nil(t, b.Router().slot)
}

func TestRouter_SlotHoldsUntilReceive(t *testing.T) {
	// GIVEN no packet-available callback and no receives
	s, a, b := buildPair(t, 10*Microsecond, 1.0, CoDelConfig{}, Millisecond)

	burst := NewTask(func(w *Worker, _, _ any) {
		for i := 0; i < 3; i++ {
			_, err := a.Router().Send(w, b.ID(), nil)
			assert.NoError(t, err)
		}
	}, nil, nil, nil, nil)
	require.NoError(t, s.Schedule(NewEvent(0, a.ID(), a.ID(), burst)))

	require.NoError(t, s.Run())

	// THEN one packet sits in the slot and the rest stay queued
	assert.NotNil(t, b.Router().slot)
	assert.Equal(t, 2, b.Router().QueueLen())
}

func TestRouter_AQMHardLimitCountsDrops(t *testing.T) {
	// GIVEN an AQM limit of 10 and 15 same-tick deliveries
	s, a, b := buildPair(t, 10*Microsecond, 1.0, CoDelConfig{Limit: 10}, Millisecond)

	burst := NewTask(func(w *Worker, _, _ any) {
		for i := 0; i < 15; i++ {
			_, err := a.Router().Send(w, b.ID(), nil)
			assert.NoError(t, err)
		}
	}, nil, nil, nil, nil)
	require.NoError(t, s.Schedule(NewEvent(0, a.ID(), a.ID(), burst)))

	require.NoError(t, s.Run())

	// THEN the slot takes one, the queue holds 10, and 4 are dropped
	assert.Equal(t, uint64(4), s.Metrics().Snapshot().AQMDrops)
	assert.Equal(t, 10, b.Router().QueueLen())
	assert.NotNil(t, b.Router().slot)
}

func TestRouter_SendWithoutPathFails(t *testing.T) {
	s, err := New(Config{Policy: PolicyGlobalSingle, Workers: 1, EndTime: Millisecond}, nil)
	require.NoError(t, err)
	a, err := s.AddHost("a")
	require.NoError(t, err)
	b, err := s.AddHost("b")
	require.NoError(t, err)

	var sendErr error
	task := NewTask(func(w *Worker, _, _ any) {
		_, sendErr = a.Router().Send(w, b.ID(), nil)
	}, nil, nil, nil, nil)
	require.NoError(t, s.Schedule(NewEvent(0, a.ID(), a.ID(), task)))

	require.NoError(t, s.Run())
	assert.ErrorContains(t, sendErr, "no path")
}
