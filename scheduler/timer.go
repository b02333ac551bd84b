package scheduler

// TimerID is a 1-based timer handle. Zero is never a valid timer.
type TimerID uint8

// timer is a one-shot countdown in milliseconds. It stops when it fires; the
// callback may reload and restart it to make it periodic.
type timer struct {
	timeout  uint32
	count    uint32
	running  bool
	callback func()
}

// TimerCount returns the number of registered timers.
func (s *Scheduler) TimerCount() int { return len(s.timers) }

// RegisterTimer appends a stopped timer loaded with timeout and returns its
// id, or 0 when timeout is not a positive multiple of the tick, cb is nil or
// the bank is full.
func (s *Scheduler) RegisterTimer(timeout uint32, cb func()) TimerID {
	if cb == nil || !s.validPeriod(timeout) || len(s.timers) == cap(s.timers) {
		return 0
	}
	s.timers = append(s.timers, timer{
		timeout:  timeout,
		count:    timeout,
		callback: cb,
	})
	return TimerID(len(s.timers))
}

func (s *Scheduler) lookupTimer(id TimerID) *timer {
	if id == 0 || int(id) > len(s.timers) {
		return nil
	}
	return &s.timers[id-1]
}

// GetTimer returns the remaining count of a timer in milliseconds.
func (s *Scheduler) GetTimer(id TimerID) (uint32, error) {
	tm := s.lookupTimer(id)
	if tm == nil {
		return 0, ErrInvalidTimer
	}
	return tm.count, nil
}

// ReloadTimer sets both the reload value and the current count to timeout.
// The running state is unchanged.
func (s *Scheduler) ReloadTimer(id TimerID, timeout uint32) bool {
	tm := s.lookupTimer(id)
	if tm == nil || !s.validPeriod(timeout) {
		return false
	}
	tm.timeout = timeout
	tm.count = timeout
	return true
}

// StartTimer resumes the countdown from the current count. A timer that has
// already fired must be reloaded first.
func (s *Scheduler) StartTimer(id TimerID) bool {
	tm := s.lookupTimer(id)
	if tm == nil || tm.count == 0 {
		return false
	}
	tm.running = true
	return true
}

// StopTimer freezes the countdown without touching the count.
func (s *Scheduler) StopTimer(id TimerID) bool {
	tm := s.lookupTimer(id)
	if tm == nil {
		return false
	}
	tm.running = false
	return true
}

// RestartTimer reloads a timer from its current timeout and starts it.
func (s *Scheduler) RestartTimer(id TimerID) bool {
	tm := s.lookupTimer(id)
	if tm == nil {
		return false
	}
	tm.count = tm.timeout
	tm.running = true
	return true
}

// TimerRunning reports whether a timer is counting down.
func (s *Scheduler) TimerRunning(id TimerID) bool {
	tm := s.lookupTimer(id)
	return tm != nil && tm.running
}

func (s *Scheduler) tickTimers() {
	for i := range s.timers {
		tm := &s.timers[i]
		if !tm.running {
			continue
		}
		if tm.count > s.tick {
			tm.count -= s.tick
			continue
		}
		tm.count = 0
		tm.running = false
		tm.callback()
	}
}
