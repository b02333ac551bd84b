package app

import (
	"canclock/hal"
	"canclock/scheduler"
)

// alarm blinks an indicator on a one-shot scheduler timer that restarts
// itself until the blink count is spent.
type alarm struct {
	sched  *scheduler.Scheduler
	id     scheduler.TimerID
	led    hal.LED
	period uint32
	blinks uint8

	left int
	on   bool
}

func newAlarm(sched *scheduler.Scheduler, led hal.LED, cfg AlarmConfig) *alarm {
	a := &alarm{sched: sched, led: led, period: cfg.BlinkPeriod, blinks: cfg.Blinks}
	a.id = sched.RegisterTimer(cfg.BlinkPeriod, a.toggle)
	if a.id == 0 {
		return nil
	}
	return a
}

// ring switches the indicator on and schedules the remaining toggles.
func (a *alarm) ring() {
	a.set(true)
	a.left = 2*int(a.blinks) - 1
	if a.left == 0 {
		return
	}
	a.sched.ReloadTimer(a.id, a.period)
	a.sched.StartTimer(a.id)
}

func (a *alarm) silence() {
	a.sched.StopTimer(a.id)
	a.left = 0
	a.set(false)
}

func (a *alarm) ringing() bool { return a.left > 0 || a.on }

func (a *alarm) toggle() {
	a.set(!a.on)
	a.left--
	if a.left > 0 {
		a.sched.RestartTimer(a.id)
	}
}

func (a *alarm) set(on bool) {
	a.on = on
	if on {
		a.led.High()
	} else {
		a.led.Low()
	}
}
