package app

import (
	"errors"
	"fmt"

	"canclock/critical"
	"canclock/fault"
	"canclock/hal"
	"canclock/internal/buildinfo"
	"canclock/queue"
)

// snapshot is what the clock task hands to the display task.
type snapshot struct {
	Date    hal.Date
	Time    hal.TimeOfDay
	Alarm   hal.TimeOfDay
	Ringing bool
}

const snapshotSize = 11

func (s snapshot) put(b []byte) {
	_ = b[snapshotSize-1]
	b[0] = byte(s.Date.Year >> 8)
	b[1] = byte(s.Date.Year)
	b[2] = s.Date.Month
	b[3] = s.Date.Day
	b[4] = s.Date.Weekday
	b[5] = s.Time.Hour
	b[6] = s.Time.Minute
	b[7] = s.Time.Second
	b[8] = s.Alarm.Hour
	b[9] = s.Alarm.Minute
	b[10] = 0
	if s.Ringing {
		b[10] = 1
	}
}

func getSnapshot(b []byte) snapshot {
	return snapshot{
		Date: hal.Date{
			Year:    uint16(b[0])<<8 | uint16(b[1]),
			Month:   b[2],
			Day:     b[3],
			Weekday: b[4],
		},
		Time:    hal.TimeOfDay{Hour: b[5], Minute: b[6], Second: b[7]},
		Alarm:   hal.TimeOfDay{Hour: b[8], Minute: b[9]},
		Ringing: b[10] == 1,
	}
}

var (
	monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
	dayNames   = [7]string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}
)

// TimeString formats t as HH:MM:SS.
func TimeString(t hal.TimeOfDay) string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// DateString formats d as "Mon,DD YYYY Dw".
func DateString(d hal.Date) string {
	month := "???"
	if d.Month >= 1 && d.Month <= 12 {
		month = monthNames[d.Month-1]
	}
	day := "--"
	if d.Weekday >= 1 && d.Weekday <= 7 {
		day = dayNames[d.Weekday-1]
	}
	return fmt.Sprintf("%s,%02d %04d %s", month, d.Day, d.Year, day)
}

// display owns the LCD. It drains the snapshot queue with every interrupt
// masked and renders the most recent snapshot.
type display struct {
	lcd   *lcd
	in    *queue.Queue
	log   hal.Logger
	fatal fault.Handler

	buf        [snapshotSize]byte
	rendered   uint32
	presentErr bool
}

func (d *display) init() {
	if d.lcd == nil {
		fault.Raise(d.fatal, fault.CodeDisplay)
		return
	}
	d.lcd.Clear()
	_ = d.lcd.SetCursor(0, 4)
	d.lcd.WriteString("canclock")
	_ = d.lcd.SetCursor(1, (lcdCols-len(buildinfo.Short()))/2)
	d.lcd.WriteString(buildinfo.Short())
	d.flush()
}

func (d *display) run() {
	if empty, _ := d.in.IsEmptyISR(critical.All); empty {
		return
	}
	var latest snapshot
	got := false
	for d.in.ReadISR(critical.All, d.buf[:]).Ok() {
		latest = getSnapshot(d.buf[:])
		got = true
	}
	if got {
		d.render(latest)
	}
}

func (d *display) render(s snapshot) {
	if d.rendered == 0 {
		d.lcd.Clear()
	}
	_ = d.lcd.SetCursor(0, 1)
	d.lcd.WriteString(DateString(s.Date))
	_ = d.lcd.SetCursor(1, 3)
	d.lcd.WriteString(TimeString(s.Time))
	_ = d.lcd.SetCursor(1, 13)
	if s.Ringing {
		d.lcd.WriteString("AL")
	} else {
		d.lcd.WriteString("  ")
	}
	d.rendered++
	d.flush()
}

func (d *display) flush() {
	err := d.lcd.Flush()
	switch {
	case err == nil, errors.Is(err, hal.ErrNotImplemented):
	case !d.presentErr:
		d.presentErr = true
		d.log.WriteLineString("display: present failed: " + err.Error())
	}
}
