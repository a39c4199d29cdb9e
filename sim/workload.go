package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// TrafficFlow describes Poisson packet traffic between two hosts.
type TrafficFlow struct {
	Src, Dst     string
	Rate         float64 // packets per simulated second
	PayloadBytes int
	Start        SimTime
	Stop         SimTime // zero means the configured end time
}

type flowSend struct {
	dst          HostID
	payloadBytes int
}

// GenerateTraffic pre-generates send events for each flow, with
// exponential inter-arrival gaps drawn from a per-flow RNG stream so
// that flows stay independent of each other and of the partitioning.
// Must run during the init phase, before Run.
func GenerateTraffic(s *Scheduler, flows []TrafficFlow) error {
	for i, f := range flows {
		src := s.HostByName(f.Src)
		if src == nil {
			return fmt.Errorf("flow %d: unknown source host %q", i, f.Src)
		}
		dst := s.HostByName(f.Dst)
		if dst == nil {
			return fmt.Errorf("flow %d: unknown destination host %q", i, f.Dst)
		}
		if src == dst {
			return fmt.Errorf("flow %d: source and destination are both %q", i, f.Src)
		}
		if f.Rate <= 0 {
			return fmt.Errorf("flow %d: rate must be > 0, got %g", i, f.Rate)
		}
		stop := f.Stop
		if stop == 0 {
			stop = s.EndTime()
		}
		rng := s.RNG().ForSubsystem(SubsystemFlow(i, f.Src, f.Dst))
		count := 0
		t := f.Start
		for {
			gap := SimTime(rng.ExpFloat64() / f.Rate * float64(Second))
			t = addSimTime(t, gap)
			if t >= stop {
				break
			}
			task := NewTask(sendFlowPacket, src.Router(), &flowSend{dst: dst.ID(), payloadBytes: f.PayloadBytes}, nil, nil)
			if err := s.Schedule(NewEvent(t, src.ID(), src.ID(), task)); err != nil {
				return fmt.Errorf("flow %d: %w", i, err)
			}
			count++
		}
		logrus.Infof("flow %s->%s: generated %d sends up to %s", f.Src, f.Dst, count, stop)
	}
	return nil
}

func sendFlowPacket(w *Worker, object, argument any) {
	r := object.(*Router)
	fs := argument.(*flowSend)
	if _, err := r.Send(w, fs.dst, make([]byte, fs.payloadBytes)); err != nil {
		logrus.Warnf("flow send failed: %v", err)
	}
}
