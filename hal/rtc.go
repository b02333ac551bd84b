package hal

// TimeOfDay is a 24-hour wall-clock time.
type TimeOfDay struct {
	Hour, Minute, Second uint8
}

// Date is a calendar date. Weekday runs from Monday = 1 to Sunday = 7.
type Date struct {
	Year       uint16
	Month, Day uint8
	Weekday    uint8
}

// RTC is a calendar clock with a single hour:minute alarm.
type RTC interface {
	Now() (Date, TimeOfDay)
	SetTime(t TimeOfDay)
	SetDate(d Date)
	Alarm() TimeOfDay
	SetAlarm(t TimeOfDay)
	// AlarmFired reports whether the alarm matched since the last call and
	// clears the flag.
	AlarmFired() bool
}

// DaysInMonth returns the length of month in year. Every year divisible by
// four is a leap year.
func DaysInMonth(year uint16, month uint8) uint8 {
	switch month {
	case 2:
		if year%4 == 0 {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	}
	return 0
}

// softRTC keeps calendar time in software from the millisecond clock.
type softRTC struct {
	millis func() uint32
	last   uint32
	sub    uint32

	date  Date
	tod   TimeOfDay
	alarm TimeOfDay
	fired bool
}

// NewSoftRTC returns a calendar kept in software from a millisecond counter.
// It starts at 12:00:00 on Saturday 16 January 1999 with the alarm set to
// 12:00.
func NewSoftRTC(millis func() uint32) RTC { return newSoftRTC(millis) }

func newSoftRTC(millis func() uint32) *softRTC {
	return &softRTC{
		millis: millis,
		last:   millis(),
		date:   Date{Year: 1999, Month: 1, Day: 16, Weekday: 6},
		tod:    TimeOfDay{Hour: 12},
		alarm:  TimeOfDay{Hour: 12},
	}
}

func (r *softRTC) advance() {
	now := r.millis()
	r.sub += now - r.last
	r.last = now
	for r.sub >= 1000 {
		r.sub -= 1000
		r.second()
	}
}

func (r *softRTC) second() {
	t := &r.tod
	if t.Second++; t.Second == 60 {
		t.Second = 0
		if t.Minute++; t.Minute == 60 {
			t.Minute = 0
			if t.Hour++; t.Hour == 24 {
				t.Hour = 0
				r.nextDay()
			}
		}
	}
	if t.Second == 0 && t.Hour == r.alarm.Hour && t.Minute == r.alarm.Minute {
		r.fired = true
	}
}

func (r *softRTC) nextDay() {
	d := &r.date
	if d.Weekday >= 1 && d.Weekday <= 7 {
		d.Weekday = d.Weekday%7 + 1
	}
	if d.Day++; d.Day > DaysInMonth(d.Year, d.Month) {
		d.Day = 1
		if d.Month++; d.Month > 12 {
			d.Month = 1
			d.Year++
		}
	}
}

func (r *softRTC) Now() (Date, TimeOfDay) {
	r.advance()
	return r.date, r.tod
}

func (r *softRTC) SetTime(t TimeOfDay) {
	r.advance()
	r.tod = t
	r.sub = 0
}

func (r *softRTC) SetDate(d Date) {
	r.advance()
	r.date = d
}

func (r *softRTC) Alarm() TimeOfDay { return r.alarm }

func (r *softRTC) SetAlarm(t TimeOfDay) {
	r.alarm = TimeOfDay{Hour: t.Hour, Minute: t.Minute}
	r.fired = false
}

func (r *softRTC) AlarmFired() bool {
	r.advance()
	f := r.fired
	r.fired = false
	return f
}
