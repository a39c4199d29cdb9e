package sim

import "testing"

func TestSimTime_AddSaturates(t *testing.T) {
	if got := addSimTime(SimTimeMax, 5); got != SimTimeMax {
		t.Errorf("addSimTime(max, 5) = %s, want max", got)
	}
	if got := addSimTime(SimTimeMax-10, 100); got != SimTimeMax {
		t.Errorf("addSimTime near max = %s, want max", got)
	}
	if got := addSimTime(5, 7); got != 12 {
		t.Errorf("addSimTime(5, 7) = %s, want 12ns", got)
	}
}

func TestSimTime_String(t *testing.T) {
	if got := SimTimeInvalid.String(); got != "invalid" {
		t.Errorf("SimTimeInvalid.String() = %q", got)
	}
	if got := SimTimeMax.String(); got != "max" {
		t.Errorf("SimTimeMax.String() = %q", got)
	}
	if got := (3 * Microsecond).String(); got != "3000ns" {
		t.Errorf("3µs String() = %q", got)
	}
}
