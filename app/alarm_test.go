package app

import (
	"testing"

	"canclock/scheduler"
)

func TestAlarmBlinkSequence(t *testing.T) {
	s, err := scheduler.New(scheduler.Config{Tick: 10, Tasks: 1, Timers: 1, Clock: &fakeClock{}})
	if err != nil {
		t.Fatalf("scheduler.New(): %v", err)
	}
	led := &fakeLED{}
	a := newAlarm(s, led, AlarmConfig{BlinkPeriod: 50, Blinks: 2})
	if a == nil {
		t.Fatal("newAlarm() = nil")
	}
	if newAlarm(s, led, AlarmConfig{BlinkPeriod: 50, Blinks: 1}) != nil {
		t.Fatal("newAlarm() registered past the timer bank capacity")
	}
	s.RegisterTask(nil, func() {}, 10)
	s.Boot()

	a.ring()
	want := []bool{true, false, true, false}
	for step, on := range want {
		if led.on != on {
			t.Fatalf("step %d: led = %v, want %v", step, led.on, on)
		}
		if step == len(want)-1 {
			break
		}
		for i := 0; i < 5; i++ {
			s.Tick()
		}
	}
	if a.ringing() || s.TimerRunning(a.id) {
		t.Fatalf("ringing %v, timer running %v after the last blink", a.ringing(), s.TimerRunning(a.id))
	}

	// A second ring reloads the spent timer.
	a.ring()
	if !s.TimerRunning(a.id) {
		t.Fatal("ring() did not restart the timer")
	}
	if left, err := s.GetTimer(a.id); err != nil || left != 50 {
		t.Fatalf("GetTimer() = %d, %v; want 50", left, err)
	}
	a.silence()
	if a.ringing() || led.on || s.TimerRunning(a.id) {
		t.Fatal("silence() left the alarm active")
	}
}
