package hal

import (
	"testing"
	"time"
)

func TestMonoClock(t *testing.T) {
	base := time.Unix(100, 0)
	now := base
	c := &monoClock{start: base, now: func() time.Time { return now }}

	now = base.Add(1500*time.Millisecond + 250*time.Microsecond)
	if got := c.Millis(); got != 1500 {
		t.Fatalf("Millis() = %d, want 1500", got)
	}
	if got := c.Cycles(); got != 1_500_250 {
		t.Fatalf("Cycles() = %d, want 1500250", got)
	}
	if c.Cycles()/c.CyclesPerMilli() != c.Millis() {
		t.Fatal("Cycles and Millis disagree")
	}
}
