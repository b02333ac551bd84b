//go:build !tinygo

// Package config loads the YAML board file used by the host runner: firmware
// settings, the initial RTC value and a script of CAN frames to inject.
package config

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	yaml "go.yaml.in/yaml/v3"

	"canclock/app"
	"canclock/hal"
)

// File mirrors the YAML document. Durations are Go duration strings.
type File struct {
	Tick     string      `yaml:"tick"`
	Jitter   JitterFile  `yaml:"jitter"`
	Periods  PeriodsFile `yaml:"periods"`
	Queues   QueuesFile  `yaml:"queues"`
	Alarm    AlarmFile   `yaml:"alarm"`
	Refresh  string      `yaml:"refresh"`
	RTC      *RTCFile    `yaml:"rtc"`
	Host     HostFile    `yaml:"host"`
	Duration string      `yaml:"duration"`
	Script   []FrameFile `yaml:"script"`
}

type JitterFile struct {
	Enabled      *bool  `yaml:"enabled"`
	TolerancePct uint32 `yaml:"tolerance_pct"`
}

type PeriodsFile struct {
	Serial    string `yaml:"serial"`
	Clock     string `yaml:"clock"`
	Display   string `yaml:"display"`
	Heartbeat string `yaml:"heartbeat"`
}

type QueuesFile struct {
	Rx       uint32 `yaml:"rx"`
	Messages uint32 `yaml:"messages"`
	Display  uint32 `yaml:"display"`
}

type AlarmFile struct {
	Blink  string `yaml:"blink"`
	Blinks uint8  `yaml:"blinks"`
}

// RTCFile is the clock value written at boot: date as YYYY-MM-DD, time as
// HH:MM:SS and alarm as HH:MM.
type RTCFile struct {
	Date  string `yaml:"date"`
	Time  string `yaml:"time"`
	Alarm string `yaml:"alarm"`
}

type HostFile struct {
	LEDs     int    `yaml:"leds"`
	LogJSON  bool   `yaml:"log_json"`
	LogLevel string `yaml:"log_level"`
	Scale    int    `yaml:"scale"`
}

// FrameFile is one scripted CAN frame. Data is hex, spaces allowed.
type FrameFile struct {
	At   string `yaml:"at"`
	ID   uint32 `yaml:"id"`
	Data string `yaml:"data"`
}

// Config is a resolved board file.
type Config struct {
	App app.Config
	Run hal.RunConfig
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{App: app.DefaultConfig()}
}

// Load reads and resolves the board file at path.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := Parse(b)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a board file strictly: unknown keys and trailing documents
// are errors. Missing values keep their defaults.
func Parse(data []byte) (Config, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err == nil {
			return Config{}, fmt.Errorf("invalid config: trailing document")
		}
		return Config{}, err
	}
	return f.Resolve()
}

// Resolve applies defaults and converts f to firmware and runner settings.
func (f File) Resolve() (Config, error) {
	cfg := Default()
	a := &cfg.App

	var err error
	if a.Tick, err = millis("tick", f.Tick, a.Tick); err != nil {
		return Config{}, err
	}
	if f.Jitter.Enabled != nil {
		a.Jitter = *f.Jitter.Enabled
	}
	if f.Jitter.TolerancePct != 0 {
		a.Tolerance = f.Jitter.TolerancePct
	}

	periods := []struct {
		path string
		raw  string
		dst  *uint32
	}{
		{"periods.serial", f.Periods.Serial, &a.Periods.Serial},
		{"periods.clock", f.Periods.Clock, &a.Periods.Clock},
		{"periods.display", f.Periods.Display, &a.Periods.Display},
		{"periods.heartbeat", f.Periods.Heartbeat, &a.Periods.Heartbeat},
		{"alarm.blink", f.Alarm.Blink, &a.Alarm.BlinkPeriod},
		{"refresh", f.Refresh, &a.Refresh},
	}
	for _, p := range periods {
		if *p.dst, err = millis(p.path, p.raw, *p.dst); err != nil {
			return Config{}, err
		}
	}

	if f.Queues.Rx != 0 {
		a.Queues.Rx = f.Queues.Rx
	}
	if f.Queues.Messages != 0 {
		a.Queues.Messages = f.Queues.Messages
	}
	if f.Queues.Display != 0 {
		a.Queues.Display = f.Queues.Display
	}
	if f.Alarm.Blinks != 0 {
		a.Alarm.Blinks = f.Alarm.Blinks
	}

	if f.RTC != nil {
		start, err := f.RTC.resolve()
		if err != nil {
			return Config{}, err
		}
		a.Start = start
	}
	if err := a.Validate(); err != nil {
		return Config{}, err
	}

	cfg.Run.Host = hal.HostConfig{
		LEDs:     f.Host.LEDs,
		LogJSON:  f.Host.LogJSON,
		LogLevel: f.Host.LogLevel,
	}
	cfg.Run.Scale = f.Host.Scale
	if cfg.Run.Duration, err = ParseDurationField("duration", f.Duration); err != nil {
		return Config{}, err
	}
	for i, sf := range f.Script {
		frame, err := sf.resolve(fmt.Sprintf("script[%d]", i))
		if err != nil {
			return Config{}, err
		}
		cfg.Run.Script = append(cfg.Run.Script, frame)
	}
	return cfg, nil
}

func (r RTCFile) resolve() (*app.StartState, error) {
	s := &app.StartState{
		Date: hal.Date{Year: 1999, Month: 1, Day: 16},
		Time: hal.TimeOfDay{Hour: 12},
	}
	if strings.TrimSpace(r.Date) != "" {
		d, err := time.Parse("2006-01-02", strings.TrimSpace(r.Date))
		if err != nil {
			return nil, fmt.Errorf("rtc.date: invalid date %q: %w", r.Date, err)
		}
		s.Date = hal.Date{Year: uint16(d.Year()), Month: uint8(d.Month()), Day: uint8(d.Day())}
	}
	if strings.TrimSpace(r.Time) != "" {
		t, err := time.Parse("15:04:05", strings.TrimSpace(r.Time))
		if err != nil {
			return nil, fmt.Errorf("rtc.time: invalid time %q: %w", r.Time, err)
		}
		s.Time = hal.TimeOfDay{Hour: uint8(t.Hour()), Minute: uint8(t.Minute()), Second: uint8(t.Second())}
	}
	if strings.TrimSpace(r.Alarm) != "" {
		t, err := time.Parse("15:04", strings.TrimSpace(r.Alarm))
		if err != nil {
			return nil, fmt.Errorf("rtc.alarm: invalid alarm %q: %w", r.Alarm, err)
		}
		s.Alarm = hal.TimeOfDay{Hour: uint8(t.Hour()), Minute: uint8(t.Minute())}
	}
	return s, nil
}

func (sf FrameFile) resolve(path string) (hal.ScriptFrame, error) {
	at, err := ParseDurationField(path+".at", sf.At)
	if err != nil {
		return hal.ScriptFrame{}, err
	}
	if sf.ID > 0x7FF {
		return hal.ScriptFrame{}, fmt.Errorf("%s.id: %#x is not a standard identifier", path, sf.ID)
	}
	raw := strings.Join(strings.Fields(sf.Data), "")
	data, err := hex.DecodeString(raw)
	if err != nil {
		return hal.ScriptFrame{}, fmt.Errorf("%s.data: %w", path, err)
	}
	frame, err := hal.NewFrame(sf.ID, data)
	if err != nil {
		return hal.ScriptFrame{}, fmt.Errorf("%s.data: %w", path, err)
	}
	return hal.ScriptFrame{At: at, Frame: frame}, nil
}
