package app

import (
	"errors"

	"canclock/hal"
	"canclock/proto"
)

var (
	ErrFrame       = errors.New("app: malformed single frame")
	ErrKind        = errors.New("app: unknown request type")
	ErrTime        = errors.New("app: time out of range")
	ErrDate        = errors.New("app: date out of range")
	ErrAlarm       = errors.New("app: alarm out of range")
	ErrMessageSize = errors.New("app: short message buffer")
)

// Message is a validated clock request.
type Message struct {
	Kind proto.Kind
	// Time holds the wall-clock time for KindTime and the alarm for
	// KindAlarm.
	Time    hal.TimeOfDay
	Date    hal.Date
	YearDay uint16
	DST     bool
}

// messageSize is the encoded size of a Message in the clock queue.
const messageSize = 12

func (m Message) put(b []byte) {
	_ = b[messageSize-1]
	b[0] = byte(m.Kind)
	b[1] = m.Time.Hour
	b[2] = m.Time.Minute
	b[3] = m.Time.Second
	b[4] = m.Date.Day
	b[5] = m.Date.Month
	b[6] = byte(m.Date.Year >> 8)
	b[7] = byte(m.Date.Year)
	b[8] = m.Date.Weekday
	b[9] = byte(m.YearDay >> 8)
	b[10] = byte(m.YearDay)
	b[11] = 0
	if m.DST {
		b[11] = 1
	}
}

func getMessage(b []byte) (Message, error) {
	if len(b) < messageSize {
		return Message{}, ErrMessageSize
	}
	return Message{
		Kind: proto.Kind(b[0]),
		Time: hal.TimeOfDay{Hour: b[1], Minute: b[2], Second: b[3]},
		Date: hal.Date{
			Day:     b[4],
			Month:   b[5],
			Year:    uint16(b[6])<<8 | uint16(b[7]),
			Weekday: b[8],
		},
		YearDay: uint16(b[9])<<8 | uint16(b[10]),
		DST:     b[11] == 1,
	}, nil
}

// DecodeRequest validates the data of a request frame and derives the
// calendar fields of a date.
func DecodeRequest(data []byte) (Message, error) {
	kind, payload, ok := proto.DecodeSingleFrame(data)
	if !ok {
		return Message{}, ErrFrame
	}
	switch kind {
	case proto.KindTime:
		h, m, s, ok := proto.DecodeTimePayload(payload)
		if !ok || h >= 24 || m >= 60 || s >= 60 {
			return Message{}, ErrTime
		}
		return Message{Kind: kind, Time: hal.TimeOfDay{Hour: h, Minute: m, Second: s}}, nil

	case proto.KindDate:
		year, month, day, ok := proto.DecodeDatePayload(payload)
		if !ok || !ValidDate(year, month, day) {
			return Message{}, ErrDate
		}
		yday := YearDay(year, month, day)
		return Message{
			Kind: kind,
			Date: hal.Date{
				Year:    year,
				Month:   month,
				Day:     day,
				Weekday: Weekday(year, month, day),
			},
			YearDay: yday,
			DST:     DaylightSaving(year, yday),
		}, nil

	case proto.KindAlarm:
		h, m, ok := proto.DecodeAlarmPayload(payload)
		if !ok || h >= 24 || m >= 60 {
			return Message{}, ErrAlarm
		}
		return Message{Kind: kind, Time: hal.TimeOfDay{Hour: h, Minute: m}}, nil
	}
	return Message{}, ErrKind
}

// ValidDate reports whether day/month/year is a date in the supported range,
// 1901 through 2099.
func ValidDate(year uint16, month, day uint8) bool {
	if year <= 1900 || year >= 2100 {
		return false
	}
	return day >= 1 && day <= hal.DaysInMonth(year, month)
}

// Weekday returns the ISO day of the week, Monday = 1 through Sunday = 7,
// using Zeller's congruence.
func Weekday(year uint16, month, day uint8) uint8 {
	y, m := int(year), int(month)
	if m < 3 {
		m += 12
		y--
	}
	k, j := y%100, y/100
	// h: 0 = Saturday, 1 = Sunday, 2 = Monday, ...
	h := (int(day) + 13*(m+1)/5 + k + k/4 + j/4 + 5*j) % 7
	return uint8((h+5)%7 + 1)
}

var daysBefore = [13]uint16{0, 0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334}

// YearDay returns the 1-based day of the year.
func YearDay(year uint16, month, day uint8) uint16 {
	if month < 1 || month > 12 {
		return 0
	}
	n := daysBefore[month] + uint16(day)
	if year%4 == 0 && month > 2 {
		n++
	}
	return n
}

// DaylightSaving reports whether yday falls between 12 March and 5 November.
func DaylightSaving(year, yday uint16) bool {
	start, end := uint16(71), uint16(309)
	if year%4 == 0 {
		start++
		end++
	}
	return yday >= start && yday <= end
}
