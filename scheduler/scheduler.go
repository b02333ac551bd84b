// Package scheduler is a cooperative, fixed-tick task scheduler.
//
// Tasks and software timers are registered up front against one Scheduler.
// Start runs every task's init once and then busy-polls the tick source
// forever, aging timers and tasks by one tick each time a tick has elapsed.
// Everything runs to completion on the caller's goroutine, in registration
// order.
package scheduler

import (
	"errors"

	"canclock/fault"
)

// TaskID is a 1-based task handle. Zero is never a valid task.
type TaskID uint8

// Clock is the monotonic millisecond counter the dispatch loop polls.
type Clock interface {
	Millis() uint32
}

// Counter is a free-running hardware counter used to measure dispatch jitter.
type Counter interface {
	Cycles() uint32
	CyclesPerMilli() uint32
}

// DefaultTolerance is the accepted jitter band, in percent of a task period.
const DefaultTolerance = 10

const maxIDs = 255

var (
	ErrConfig       = errors.New("scheduler: invalid configuration")
	ErrInvalidTimer = errors.New("scheduler: invalid timer id")
)

// Config describes a scheduler instance.
type Config struct {
	// Tick is the base period in milliseconds.
	Tick uint32
	// Tasks and Timers are the fixed capacities of the task and timer tables.
	Tasks  int
	Timers int

	Clock Clock
	// Counter enables the jitter monitor when set.
	Counter Counter
	// Tolerance is the jitter band in percent; 0 selects DefaultTolerance.
	Tolerance uint32

	// Fatal receives contract violations.
	Fatal fault.Handler
	// Idle, if set, is called by Poll when no tick is due.
	Idle func()
}

type slotState uint8

const (
	slotActive slotState = iota + 1
	slotPaused
)

// slot holds a task function that is either active or paused. A paused slot
// keeps its function so it can be resumed.
type slot struct {
	fn    func()
	state slotState
}

func (s *slot) active() bool { return s.state == slotActive }

type tcb struct {
	period  uint32
	elapsed uint32
	init    func()
	task    slot
	runs    uint32

	stamp   uint32
	stamped bool
}

// TaskInfo is a snapshot of one task's state.
type TaskInfo struct {
	Period  uint32
	Elapsed uint32
	Active  bool
	Runs    uint32
}

// Scheduler owns a task table and a timer bank.
type Scheduler struct {
	tick      uint32
	clock     Clock
	counter   Counter
	cpm       uint32
	tolerance uint32
	fatal     fault.Handler
	idle      func()

	tasks  []tcb
	timers []timer

	last        uint32
	booted      bool
	dispatching bool
}

// New validates cfg and allocates the task and timer tables. A zero tick, zero
// task capacity or missing clock is a contract violation: it is reported to
// cfg.Fatal (when set) and returned as ErrConfig.
func New(cfg Config) (*Scheduler, error) {
	if cfg.Tick == 0 || cfg.Tasks <= 0 || cfg.Tasks > maxIDs || cfg.Timers < 0 || cfg.Timers > maxIDs || cfg.Clock == nil {
		if cfg.Fatal != nil {
			fault.Raise(cfg.Fatal, fault.CodeSchedulerParam)
		}
		return nil, ErrConfig
	}

	s := &Scheduler{
		tick:      cfg.Tick,
		clock:     cfg.Clock,
		tolerance: cfg.Tolerance,
		fatal:     cfg.Fatal,
		idle:      cfg.Idle,
		tasks:     make([]tcb, 0, cfg.Tasks),
		timers:    make([]timer, 0, cfg.Timers),
	}
	if s.tolerance == 0 {
		s.tolerance = DefaultTolerance
	}
	if cfg.Counter != nil && cfg.Counter.CyclesPerMilli() > 0 {
		s.counter = cfg.Counter
		s.cpm = cfg.Counter.CyclesPerMilli()
	}
	return s, nil
}

// TickPeriod returns the base period in milliseconds.
func (s *Scheduler) TickPeriod() uint32 { return s.tick }

// TaskCount returns the number of registered tasks.
func (s *Scheduler) TaskCount() int { return len(s.tasks) }

// validPeriod reports whether period is a positive multiple of the tick.
func (s *Scheduler) validPeriod(period uint32) bool {
	return period >= s.tick && period%s.tick == 0
}

// RegisterTask appends a task and returns its id, or 0 when period is not a
// positive multiple of the tick, task is nil or the table is full. init may be
// nil.
func (s *Scheduler) RegisterTask(init, task func(), period uint32) TaskID {
	if task == nil || !s.validPeriod(period) || len(s.tasks) == cap(s.tasks) {
		return 0
	}
	s.tasks = append(s.tasks, tcb{
		period: period,
		init:   init,
		task:   slot{fn: task, state: slotActive},
	})
	return TaskID(len(s.tasks))
}

func (s *Scheduler) lookup(id TaskID) *tcb {
	if id == 0 || int(id) > len(s.tasks) {
		return nil
	}
	return &s.tasks[id-1]
}

// StopTask pauses a task. A paused task is not aged and never dispatched.
func (s *Scheduler) StopTask(id TaskID) bool {
	t := s.lookup(id)
	if t == nil {
		return false
	}
	t.task.state = slotPaused
	return true
}

// StartTask resumes a paused task. Its elapsed time restarts from zero.
func (s *Scheduler) StartTask(id TaskID) bool {
	t := s.lookup(id)
	if t == nil {
		return false
	}
	t.task.state = slotActive
	t.elapsed = 0
	t.stamped = false
	return true
}

// PeriodTask changes a task's period. period must be a positive multiple of
// the tick.
func (s *Scheduler) PeriodTask(id TaskID, period uint32) bool {
	t := s.lookup(id)
	if t == nil || !s.validPeriod(period) {
		return false
	}
	t.period = period
	t.stamped = false
	return true
}

// Task returns a snapshot of a registered task.
func (s *Scheduler) Task(id TaskID) (TaskInfo, bool) {
	t := s.lookup(id)
	if t == nil {
		return TaskInfo{}, false
	}
	return TaskInfo{
		Period:  t.period,
		Elapsed: t.elapsed,
		Active:  t.task.active(),
		Runs:    t.runs,
	}, true
}

// Boot runs every task's init once, in registration order, and latches the
// tick reference. Later calls do nothing. Booting with no task registered is a
// contract violation.
func (s *Scheduler) Boot() {
	if s.booted {
		return
	}
	if !fault.Assert(s.fatal, len(s.tasks) > 0, fault.CodeSchedulerParam) {
		return
	}
	s.booted = true
	s.last = s.clock.Millis()
	for i := range s.tasks {
		if s.tasks[i].init != nil {
			s.tasks[i].init()
		}
	}
}

// Poll runs one tick if at least one tick period has passed since the last one
// and reports whether it did. Otherwise it calls the Idle hook.
func (s *Scheduler) Poll() bool {
	now := s.clock.Millis()
	if now-s.last < s.tick {
		if s.idle != nil {
			s.idle()
		}
		return false
	}
	s.last = now
	s.Tick()
	return true
}

// Tick ages every running timer and every active task by one tick, firing
// timers and dispatching tasks that became due. It does nothing before Boot,
// so no task runs ahead of its init. Calling Tick from inside a task or timer
// callback is a contract violation.
func (s *Scheduler) Tick() {
	if !s.booted {
		return
	}
	if s.dispatching {
		fault.Raise(s.fatal, fault.CodeReentrant)
		return
	}
	s.dispatching = true
	defer func() { s.dispatching = false }()

	s.tickTimers()

	for i := range s.tasks {
		t := &s.tasks[i]
		if !t.task.active() {
			continue
		}
		t.elapsed += s.tick
		if t.elapsed < t.period {
			continue
		}
		t.elapsed = 0
		s.checkJitter(t)
		t.runs++
		t.task.fn()
	}
}

// Start boots the scheduler and polls forever. It never returns.
func (s *Scheduler) Start() {
	s.Boot()
	for {
		s.Poll()
	}
}
