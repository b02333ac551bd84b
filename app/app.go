// Package app is the CAN clock firmware: it receives time, date and alarm
// requests over CAN, keeps the RTC, renders a 2x16 character display and
// blinks the alarm indicator, all as tasks of one cooperative scheduler.
package app

import (
	"context"
	"errors"
	"fmt"

	"canclock/critical"
	"canclock/fault"
	"canclock/hal"
	"canclock/internal/buildinfo"
	"canclock/queue"
	"canclock/scheduler"
)

var (
	ErrConfig  = errors.New("app: invalid configuration")
	ErrStopped = errors.New("app: fail-stop")
)

// Periods are the task periods in milliseconds.
type Periods struct {
	Serial    uint32
	Clock     uint32
	Display   uint32
	Heartbeat uint32
}

// Queues are the queue capacities in elements.
type Queues struct {
	Rx       uint32
	Messages uint32
	Display  uint32
}

// AlarmConfig controls the alarm indicator.
type AlarmConfig struct {
	// BlinkPeriod is the on and off time of the alarm LED in milliseconds.
	BlinkPeriod uint32
	Blinks      uint8
}

// StartState seeds the RTC at boot.
type StartState struct {
	Date  hal.Date
	Time  hal.TimeOfDay
	Alarm hal.TimeOfDay
}

// Config is the firmware configuration.
type Config struct {
	// Tick is the scheduler base period in milliseconds.
	Tick      uint32
	Jitter    bool
	Tolerance uint32
	Periods   Periods
	Queues    Queues
	Alarm     AlarmConfig
	// Refresh forces a display update at least this often, in milliseconds.
	Refresh   uint32
	// Start, when set, is written to the RTC by the clock task's init.
	Start     *StartState
}

func DefaultConfig() Config {
	return Config{
		Tick:      10,
		Jitter:    true,
		Tolerance: scheduler.DefaultTolerance,
		Periods: Periods{
			Serial:    10,
			Clock:     50,
			Display:   100,
			Heartbeat: 500,
		},
		Queues: Queues{
			Rx:       8,
			Messages: 4,
			Display:  4,
		},
		Alarm: AlarmConfig{
			BlinkPeriod: 250,
			Blinks:      10,
		},
		Refresh: 1000,
	}
}

func (c Config) Validate() error {
	if c.Tick == 0 {
		return fmt.Errorf("%w: tick must be positive", ErrConfig)
	}
	periods := []struct {
		name string
		v    uint32
	}{
		{"serial period", c.Periods.Serial},
		{"clock period", c.Periods.Clock},
		{"display period", c.Periods.Display},
		{"heartbeat period", c.Periods.Heartbeat},
		{"alarm blink period", c.Alarm.BlinkPeriod},
	}
	for _, p := range periods {
		if p.v < c.Tick || p.v%c.Tick != 0 {
			return fmt.Errorf("%w: %s %d ms is not a multiple of the %d ms tick", ErrConfig, p.name, p.v, c.Tick)
		}
	}
	if c.Queues.Rx == 0 || c.Queues.Messages == 0 || c.Queues.Display == 0 {
		return fmt.Errorf("%w: queue capacities must be positive", ErrConfig)
	}
	if c.Alarm.Blinks == 0 {
		return fmt.Errorf("%w: alarm blinks must be positive", ErrConfig)
	}
	if c.Refresh == 0 {
		return fmt.Errorf("%w: refresh must be positive", ErrConfig)
	}
	if c.Tolerance > 100 {
		return fmt.Errorf("%w: jitter tolerance %d%% above 100%%", ErrConfig, c.Tolerance)
	}
	if s := c.Start; s != nil {
		if !ValidDate(s.Date.Year, s.Date.Month, s.Date.Day) {
			return fmt.Errorf("%w: start date %04d-%02d-%02d", ErrConfig, s.Date.Year, s.Date.Month, s.Date.Day)
		}
		if s.Time.Hour >= 24 || s.Time.Minute >= 60 || s.Time.Second >= 60 {
			return fmt.Errorf("%w: start time %s", ErrConfig, TimeString(s.Time))
		}
		if s.Alarm.Hour >= 24 || s.Alarm.Minute >= 60 {
			return fmt.Errorf("%w: start alarm %02d:%02d", ErrConfig, s.Alarm.Hour, s.Alarm.Minute)
		}
	}
	return nil
}

// App wires the firmware tasks onto one scheduler.
type App struct {
	h     hal.HAL
	cfg   Config
	log   hal.Logger
	irq   critical.Controller
	leds  []hal.LED
	fb    hal.Framebuffer
	sched *scheduler.Scheduler

	serial    *serial
	clock     *clockTask
	display   *display
	alarm     *alarm
	heartbeat *heartbeat

	// park holds the core after a fail-stop. It must not return on target.
	park    func(fault.Info)
	stopped *fault.Info
}

// New builds the firmware for h. Nothing runs until Run or Start.
func New(h hal.HAL, cfg Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &App{
		h:    h,
		cfg:  cfg,
		log:  h.Logger(),
		irq:  h.Interrupts(),
		leds: h.Indicators(),
	}
	if d := h.Display(); d != nil {
		a.fb = d.Framebuffer()
	}

	sc := scheduler.Config{
		Tick:      cfg.Tick,
		Tasks:     4,
		Timers:    1,
		Clock:     h.Clock(),
		Tolerance: cfg.Tolerance,
		Fatal:     a.FailStop,
		Idle:      h.Idle,
	}
	if cfg.Jitter {
		sc.Counter = h.Clock()
	}
	sched, err := scheduler.New(sc)
	if err != nil {
		return nil, fmt.Errorf("app: scheduler: %w", err)
	}
	a.sched = sched

	rx, err := newQueue(cfg.Queues.Rx, rxElemSize, a.irq)
	if err != nil {
		return nil, fmt.Errorf("app: rx queue: %w", err)
	}
	msgs, err := newQueue(cfg.Queues.Messages, messageSize, a.irq)
	if err != nil {
		return nil, fmt.Errorf("app: message queue: %w", err)
	}
	snaps, err := newQueue(cfg.Queues.Display, snapshotSize, a.irq)
	if err != nil {
		return nil, fmt.Errorf("app: display queue: %w", err)
	}

	a.alarm = newAlarm(sched, a.led(1), cfg.Alarm)
	if a.alarm == nil {
		return nil, fmt.Errorf("%w: alarm timer", ErrConfig)
	}
	a.serial = newSerial(h.CAN(), rx, msgs, a.irq, a.log, a.FailStop)
	a.clock = &clockTask{
		rtc:     h.RTC(),
		in:      msgs,
		out:     snaps,
		alarm:   a.alarm,
		start:   cfg.Start,
		period:  cfg.Periods.Clock,
		refresh: cfg.Refresh,
		log:     a.log,
		fatal:   a.FailStop,
	}
	a.display = &display{in: snaps, log: a.log, fatal: a.FailStop}
	if a.fb != nil {
		if l, err := newLCD(a.fb); err == nil {
			a.display.lcd = l
		} else {
			a.log.WriteLineString("display: " + err.Error())
		}
	}
	a.heartbeat = &heartbeat{led: a.led(0)}

	tasks := []struct {
		name   string
		init   func()
		run    func()
		period uint32
	}{
		{"serial", a.serial.init, a.serial.run, cfg.Periods.Serial},
		{"clock", a.clock.init, a.clock.run, cfg.Periods.Clock},
		{"display", a.display.init, a.display.run, cfg.Periods.Display},
		{"heartbeat", nil, a.heartbeat.run, cfg.Periods.Heartbeat},
	}
	for _, t := range tasks {
		if sched.RegisterTask(t.init, t.run, t.period) == 0 {
			return nil, fmt.Errorf("%w: register %s task", ErrConfig, t.name)
		}
	}
	return a, nil
}

func newQueue(capacity, size uint32, irq critical.Controller) (*queue.Queue, error) {
	return queue.New(make([]byte, capacity*size), capacity, size, irq)
}

func (a *App) led(i int) hal.LED {
	if i < len(a.leds) && a.leds[i] != nil {
		return a.leds[i]
	}
	return nopLED{}
}

// Scheduler exposes the task table for diagnostics.
func (a *App) Scheduler() *scheduler.Scheduler { return a.sched }

// Run boots the tasks and dispatches them until ctx is done or a fail-stop
// occurs. After a fail-stop the error screen stays up until ctx is done and
// Run returns an error wrapping ErrStopped.
func (a *App) Run(ctx context.Context) error {
	a.park = func(info fault.Info) {
		<-ctx.Done()
		panic(failStop{info: info})
	}
	return a.run(ctx)
}

func (a *App) run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fs, ok := r.(failStop)
			if !ok {
				panic(r)
			}
			err = fmt.Errorf("%w: %v", ErrStopped, fs.info)
		}
	}()

	a.log.WriteLineString(fmt.Sprintf("app: canclock %s, tick %d ms", buildinfo.Short(), a.cfg.Tick))
	a.sched.Boot()
	for ctx.Err() == nil {
		a.sched.Poll()
	}
	return ctx.Err()
}

// Start builds the firmware with the default configuration and runs it
// forever (TinyGo entrypoint).
func Start(h hal.HAL) {
	a, err := New(h, DefaultConfig())
	if err != nil {
		h.Logger().WriteLineString(err.Error())
		select {}
	}
	a.park = func(fault.Info) { select {} }
	a.sched.Start()
}

type nopLED struct{}

func (nopLED) High() {}
func (nopLED) Low()  {}

// heartbeat toggles the first indicator to show the dispatch loop is alive.
type heartbeat struct {
	led hal.LED
	on  bool
}

func (b *heartbeat) run() {
	b.on = !b.on
	if b.on {
		b.led.High()
	} else {
		b.led.Low()
	}
}
