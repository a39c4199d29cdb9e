package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	sim "github.com/hostsim/hostsim/sim"
)

// SimulationConfig is the YAML shape of a simulation: scheduler
// tunables, the host/link topology, and the traffic scenario.
type SimulationConfig struct {
	Policy       string `yaml:"policy"`
	Workers      int    `yaml:"workers"`
	Seed         int64  `yaml:"seed"`
	EndTimeUs    uint64 `yaml:"end_time_us"`
	MinLatencyUs uint64 `yaml:"min_latency_us"`

	CoDel CoDelSpec `yaml:"codel"`

	Hosts []HostSpec `yaml:"hosts"`
	Links []LinkSpec `yaml:"links"`
	Flows []FlowSpec `yaml:"flows"`
}

type CoDelSpec struct {
	Limit      int     `yaml:"limit"`
	TargetMs   float64 `yaml:"target_ms"`
	IntervalMs float64 `yaml:"interval_ms"`
}

type HostSpec struct {
	Name string `yaml:"name"`
	// Worker pins the host to a worker; omitted means round-robin.
	Worker *int `yaml:"worker"`
}

type LinkSpec struct {
	A         string `yaml:"a"`
	B         string `yaml:"b"`
	LatencyUs uint64 `yaml:"latency_us"`
	// Reliability defaults to 1.0 when omitted.
	Reliability *float64 `yaml:"reliability"`
}

type FlowSpec struct {
	Src          string  `yaml:"src"`
	Dst          string  `yaml:"dst"`
	Rate         float64 `yaml:"rate"` // packets per simulated second
	PayloadBytes int     `yaml:"payload_bytes"`
	StartUs      uint64  `yaml:"start_us"`
	StopUs       uint64  `yaml:"stop_us"`
}

// LoadSimulationConfig reads and parses a simulation YAML file.
func LoadSimulationConfig(path string) (*SimulationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading simulation config: %w", err)
	}
	var cfg SimulationConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing simulation config: %w", err)
	}
	if cfg.Policy == "" {
		cfg.Policy = sim.PolicyHostSingle
	}
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	return &cfg, nil
}

// Build assembles a scheduler from the config: scheduler tunables,
// then hosts, then links, then the pre-generated traffic.
func (c *SimulationConfig) Build() (*sim.Scheduler, error) {
	cfg := sim.Config{
		Policy:     c.Policy,
		Workers:    c.Workers,
		Seed:       c.Seed,
		EndTime:    sim.SimTime(c.EndTimeUs) * sim.Microsecond,
		MinLatency: sim.SimTime(c.MinLatencyUs) * sim.Microsecond,
		CoDel: sim.CoDelConfig{
			Limit:    c.CoDel.Limit,
			Target:   sim.SimTime(c.CoDel.TargetMs * float64(sim.Millisecond)),
			Interval: sim.SimTime(c.CoDel.IntervalMs * float64(sim.Millisecond)),
		},
	}
	topo := sim.NewTopology()
	s, err := sim.New(cfg, topo)
	if err != nil {
		return nil, err
	}
	for _, h := range c.Hosts {
		if h.Worker != nil {
			_, err = s.AddHostOn(h.Name, sim.WorkerID(*h.Worker))
		} else {
			_, err = s.AddHost(h.Name)
		}
		if err != nil {
			return nil, err
		}
	}
	for _, l := range c.Links {
		a := s.HostByName(l.A)
		b := s.HostByName(l.B)
		if a == nil || b == nil {
			return nil, fmt.Errorf("link %s-%s references an unknown host", l.A, l.B)
		}
		reliability := 1.0
		if l.Reliability != nil {
			reliability = *l.Reliability
		}
		if err := topo.AddPath(a.ID(), b.ID(), sim.SimTime(l.LatencyUs)*sim.Microsecond, reliability); err != nil {
			return nil, err
		}
	}
	flows := make([]sim.TrafficFlow, 0, len(c.Flows))
	for _, f := range c.Flows {
		flows = append(flows, sim.TrafficFlow{
			Src:          f.Src,
			Dst:          f.Dst,
			Rate:         f.Rate,
			PayloadBytes: f.PayloadBytes,
			Start:        sim.SimTime(f.StartUs) * sim.Microsecond,
			Stop:         sim.SimTime(f.StopUs) * sim.Microsecond,
		})
	}
	if err := sim.GenerateTraffic(s, flows); err != nil {
		return nil, err
	}
	return s, nil
}
