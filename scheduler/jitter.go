package scheduler

import "canclock/fault"

// checkJitter samples the counter right before t is dispatched and raises
// CodeTaskTiming when the interval since t's previous dispatch is outside
// period ± tolerance. The first dispatch after a (re)start only sets the
// baseline.
func (s *Scheduler) checkJitter(t *tcb) {
	if s.counter == nil {
		return
	}
	now := s.counter.Cycles()
	if t.stamped && !s.withinBand(now-t.stamp, t.period) {
		t.stamp = now
		fault.Raise(s.fatal, fault.CodeTaskTiming)
		return
	}
	t.stamp = now
	t.stamped = true
}

func (s *Scheduler) withinBand(delta, period uint32) bool {
	want := uint64(period) * uint64(s.cpm)
	band := want * uint64(s.tolerance) / 100
	got := uint64(delta)
	return got+band >= want && got <= want+band
}
