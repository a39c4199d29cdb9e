package sim

import "fmt"

// SimTime counts simulated nanoseconds since the start of the run.
// It is the primary ordering key for events.
type SimTime uint64

const (
	// SimTimeInvalid marks an absent time value.
	SimTimeInvalid SimTime = ^SimTime(0)

	// SimTimeMax is the largest valid time; queue peeks return it
	// when no event is pending.
	SimTimeMax SimTime = SimTimeInvalid - 1
)

// Tick unit multipliers.
const (
	Nanosecond  SimTime = 1
	Microsecond SimTime = 1000 * Nanosecond
	Millisecond SimTime = 1000 * Microsecond
	Second      SimTime = 1000 * Millisecond
)

func (t SimTime) String() string {
	switch t {
	case SimTimeInvalid:
		return "invalid"
	case SimTimeMax:
		return "max"
	}
	return fmt.Sprintf("%dns", uint64(t))
}

func minSimTime(a, b SimTime) SimTime {
	if a < b {
		return a
	}
	return b
}

// addSimTime saturates at SimTimeMax instead of wrapping.
func addSimTime(a, b SimTime) SimTime {
	sum := a + b
	if sum < a || sum > SimTimeMax {
		return SimTimeMax
	}
	return sum
}
