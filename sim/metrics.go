package sim

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics aggregates scheduler and router counters for final reporting
// and for polling by the logging collaborator. All counters are atomics;
// nothing here is ever updated while a queue mutex is held.
//
// Metrics also implements prometheus.Collector so the counters can be
// scraped when the CLI exposes a metrics endpoint.
type Metrics struct {
	eventsPushed  atomic.Uint64
	eventsPopped  atomic.Uint64
	eventsClamped atomic.Uint64
	pathDrops     atomic.Uint64
	aqmDrops      atomic.Uint64
	rounds        atomic.Uint64
	roundWallNs   atomic.Int64

	descEventsPushed  *prometheus.Desc
	descEventsPopped  *prometheus.Desc
	descEventsClamped *prometheus.Desc
	descPacketDrops   *prometheus.Desc
	descRounds        *prometheus.Desc
	descRoundWall     *prometheus.Desc
}

// MetricsSnapshot is a point-in-time copy of every counter.
type MetricsSnapshot struct {
	EventsPushed  uint64
	EventsPopped  uint64
	EventsClamped uint64
	PathDrops     uint64
	AQMDrops      uint64
	Rounds        uint64
	RoundWall     time.Duration
}

func NewMetrics() *Metrics {
	return &Metrics{
		descEventsPushed: prometheus.NewDesc(
			"hostsim_events_pushed_total", "Events accepted into scheduler queues.", nil, nil),
		descEventsPopped: prometheus.NewDesc(
			"hostsim_events_popped_total", "Events popped and executed by workers.", nil, nil),
		descEventsClamped: prometheus.NewDesc(
			"hostsim_events_clamped_total", "Inter-host events raised to the barrier for causality.", nil, nil),
		descPacketDrops: prometheus.NewDesc(
			"hostsim_packets_dropped_total", "Packets dropped, by cause.", []string{"cause"}, nil),
		descRounds: prometheus.NewDesc(
			"hostsim_rounds_total", "Parallel rounds executed.", nil, nil),
		descRoundWall: prometheus.NewDesc(
			"hostsim_round_wall_seconds_total", "Wall-clock time spent inside rounds.", nil, nil),
	}
}

func (m *Metrics) addPushed()  { m.eventsPushed.Add(1) }
func (m *Metrics) addPopped()  { m.eventsPopped.Add(1) }
func (m *Metrics) addClamped() { m.eventsClamped.Add(1) }

// AddPathDrop counts a packet lost to path reliability sampling.
func (m *Metrics) AddPathDrop() { m.pathDrops.Add(1) }

// AddAQMDrops counts packets dropped by a router's AQM queue.
func (m *Metrics) AddAQMDrops(n int) { m.aqmDrops.Add(uint64(n)) }

func (m *Metrics) observeRound(wall time.Duration) {
	m.rounds.Add(1)
	m.roundWallNs.Add(wall.Nanoseconds())
}

// Snapshot returns a consistent-enough copy for reporting; individual
// counters are read atomically.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		EventsPushed:  m.eventsPushed.Load(),
		EventsPopped:  m.eventsPopped.Load(),
		EventsClamped: m.eventsClamped.Load(),
		PathDrops:     m.pathDrops.Load(),
		AQMDrops:      m.aqmDrops.Load(),
		Rounds:        m.rounds.Load(),
		RoundWall:     time.Duration(m.roundWallNs.Load()),
	}
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	ch <- m.descEventsPushed
	ch <- m.descEventsPopped
	ch <- m.descEventsClamped
	ch <- m.descPacketDrops
	ch <- m.descRounds
	ch <- m.descRoundWall
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	s := m.Snapshot()
	ch <- prometheus.MustNewConstMetric(m.descEventsPushed, prometheus.CounterValue, float64(s.EventsPushed))
	ch <- prometheus.MustNewConstMetric(m.descEventsPopped, prometheus.CounterValue, float64(s.EventsPopped))
	ch <- prometheus.MustNewConstMetric(m.descEventsClamped, prometheus.CounterValue, float64(s.EventsClamped))
	ch <- prometheus.MustNewConstMetric(m.descPacketDrops, prometheus.CounterValue, float64(s.PathDrops), "path")
	ch <- prometheus.MustNewConstMetric(m.descPacketDrops, prometheus.CounterValue, float64(s.AQMDrops), "aqm")
	ch <- prometheus.MustNewConstMetric(m.descRounds, prometheus.CounterValue, float64(s.Rounds))
	ch <- prometheus.MustNewConstMetric(m.descRoundWall, prometheus.CounterValue, s.RoundWall.Seconds())
}
