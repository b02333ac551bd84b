package app

import (
	"fmt"

	"canclock/critical"
	"canclock/fault"
	"canclock/hal"
	"canclock/proto"
	"canclock/queue"
)

// clockTask applies accepted requests to the RTC, starts the alarm and feeds
// the display.
type clockTask struct {
	rtc     hal.RTC
	in      *queue.Queue
	out     *queue.Queue
	alarm   *alarm
	start   *StartState
	period  uint32
	refresh uint32
	log     hal.Logger
	fatal   fault.Handler

	buf  [messageSize]byte
	snap [snapshotSize]byte

	last    snapshot
	since   uint32
	dirty   bool
	overrun bool
}

func (c *clockTask) init() {
	if c.rtc == nil {
		fault.Raise(c.fatal, fault.CodeRTC)
		return
	}
	if s := c.start; s != nil {
		d := s.Date
		d.Weekday = Weekday(d.Year, d.Month, d.Day)
		c.rtc.SetDate(d)
		c.rtc.SetTime(s.Time)
		c.rtc.SetAlarm(s.Alarm)
	}
	c.dirty = true
}

func (c *clockTask) run() {
	for c.in.Read(c.buf[:]).Ok() {
		m, err := getMessage(c.buf[:])
		if err != nil {
			continue
		}
		c.apply(m)
	}

	if c.rtc.AlarmFired() {
		c.log.WriteLineString("clock: alarm " + TimeString(c.rtc.Alarm()))
		c.alarm.ring()
	}

	date, now := c.rtc.Now()
	s := snapshot{Date: date, Time: now, Alarm: c.rtc.Alarm(), Ringing: c.alarm.ringing()}
	c.since += c.period
	if s != c.last || c.dirty || c.since >= c.refresh {
		c.publish(s)
	}
}

func (c *clockTask) apply(m Message) {
	switch m.Kind {
	case proto.KindTime:
		c.rtc.SetTime(m.Time)
		c.log.WriteLineString("clock: time set " + TimeString(m.Time))
	case proto.KindDate:
		c.rtc.SetDate(m.Date)
		c.log.WriteLineString(fmt.Sprintf("clock: date set %s, day %d, dst %t", DateString(m.Date), m.YearDay, m.DST))
	case proto.KindAlarm:
		c.rtc.SetAlarm(m.Time)
		c.alarm.silence()
		c.log.WriteLineString(fmt.Sprintf("clock: alarm set %02d:%02d", m.Time.Hour, m.Time.Minute))
	}
	c.dirty = true
}

// publish hands s to the display task. When the display has fallen behind the
// snapshot is dropped; the next one supersedes it anyway.
func (c *clockTask) publish(s snapshot) {
	s.put(c.snap[:])
	if !c.out.WriteISR(critical.All, c.snap[:]).Ok() {
		if !c.overrun {
			c.overrun = true
			c.log.WriteLineString("clock: display queue full")
		}
		return
	}
	c.overrun = false
	c.last = s
	c.since = 0
	c.dirty = false
}
