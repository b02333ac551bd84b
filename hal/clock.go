package hal

import "time"

// monoClock derives the millisecond tick and a 1 MHz cycle counter from the
// runtime's monotonic clock. Both wrap at 32 bits.
type monoClock struct {
	start time.Time
	now   func() time.Time
}

func newMonoClock() *monoClock {
	return &monoClock{start: time.Now(), now: time.Now}
}

func (c *monoClock) Millis() uint32 {
	return uint32(c.now().Sub(c.start) / time.Millisecond)
}

func (c *monoClock) Cycles() uint32 {
	return uint32(c.now().Sub(c.start) / time.Microsecond)
}

func (c *monoClock) CyclesPerMilli() uint32 { return 1000 }
