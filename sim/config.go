package sim

import "fmt"

// Config groups the scheduler tunables. Structural zero values are
// rejected by Validate; CoDel fields fall back to their defaults via
// CoDelConfig.withDefaults.
type Config struct {
	Policy  string  // one of the Policy* names
	Workers int     // worker thread count (must be 1 for global-single)
	Seed    int64   // master RNG seed
	EndTime SimTime // global termination bound (exclusive)

	// MinLatency overrides the lookahead floor. Zero means derive it
	// from the topology's minimum-latency edge.
	MinLatency SimTime

	CoDel CoDelConfig
}

// Validate reports the first structural configuration error. Errors
// here are fatal at init; the scheduler refuses to start.
func (c *Config) Validate() error {
	if !IsValidPolicy(c.Policy) {
		return fmt.Errorf("unknown policy %q; valid options: %s, %s, %s",
			c.Policy, PolicyGlobalSingle, PolicyHostSingle, PolicyThreadSingle)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	}
	if c.Policy == PolicyGlobalSingle && c.Workers != 1 {
		return fmt.Errorf("policy %q requires exactly 1 worker, got %d", c.Policy, c.Workers)
	}
	if c.EndTime == 0 {
		return fmt.Errorf("end_time must be > 0")
	}
	if c.EndTime > SimTimeMax {
		return fmt.Errorf("end_time out of range")
	}
	if c.MinLatency == SimTimeInvalid {
		return fmt.Errorf("min_latency out of range")
	}
	if err := c.CoDel.Validate(); err != nil {
		return fmt.Errorf("codel: %w", err)
	}
	return nil
}
