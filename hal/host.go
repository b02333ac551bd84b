//go:build !tinygo

package hal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"

	"canclock/critical"
)

const consoleTimeFormat = "15:04:05.000"

// HostConfig tunes the host HAL.
type HostConfig struct {
	LogJSON  bool
	LogLevel string
	// LogOut defaults to stdout.
	LogOut io.Writer
	// LEDs is the number of indicator LEDs, 4 by default.
	LEDs int
}

type hostHAL struct {
	logger *hostLogger
	leds   []*hostLED
	fb     *hostFramebuffer
	clock  *monoClock
	irq    *hostIRQ
	can    *hostCAN
	rtc    *softRTC
}

// New returns a host HAL implementation with default settings.
func New() HAL { return newHost(HostConfig{}) }

func newHost(cfg HostConfig) *hostHAL {
	if cfg.LogOut == nil {
		cfg.LogOut = os.Stdout
	}
	if cfg.LEDs <= 0 {
		cfg.LEDs = 4
	}
	logger := newHostLogger(cfg.LogOut, cfg.LogJSON, cfg.LogLevel)
	clock := newMonoClock()
	irq := newHostIRQ()

	leds := make([]*hostLED, cfg.LEDs)
	for i := range leds {
		leds[i] = &hostLED{name: fmt.Sprintf("LD%d", i), log: logger.log}
	}
	return &hostHAL{
		logger: logger,
		leds:   leds,
		fb:     newHostFramebuffer(208, 72),
		clock:  clock,
		irq:    irq,
		can:    newHostCAN(irq, logger),
		rtc:    newSoftRTC(clock.Millis),
	}
}

func (h *hostHAL) Logger() Logger                  { return h.logger }
func (h *hostHAL) Display() Display                { return hostDisplay{fb: h.fb} }
func (h *hostHAL) Clock() Clock                    { return h.clock }
func (h *hostHAL) Interrupts() critical.Controller { return h.irq }
func (h *hostHAL) CAN() CAN                        { return h.can }
func (h *hostHAL) RTC() RTC                        { return h.rtc }
func (h *hostHAL) Idle()                           { h.irq.Yield() }

func (h *hostHAL) Indicators() []LED {
	out := make([]LED, len(h.leds))
	for i, l := range h.leds {
		out[i] = l
	}
	return out
}

type hostDisplay struct {
	fb *hostFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

// hostLogger turns "component: message" lines into structured events.
type hostLogger struct {
	log zerolog.Logger
}

func newHostLogger(w io.Writer, json bool, level string) *hostLogger {
	w = zerolog.SyncWriter(w)
	if !json {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: consoleTimeFormat}
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return &hostLogger{log: zerolog.New(w).Level(lvl).With().Timestamp().Logger()}
}

func (l *hostLogger) WriteLineString(s string) {
	component, msg := splitComponent(s)
	ev := l.log.Info()
	if component == "failstop" {
		ev = l.log.Error()
	}
	if component != "" {
		ev = ev.Str("component", component)
	}
	ev.Msg(msg)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.WriteLineString(string(b))
}

// splitComponent splits a leading single-word "name: " prefix off s.
func splitComponent(s string) (component, msg string) {
	i := strings.Index(s, ": ")
	if i <= 0 || strings.ContainsAny(s[:i], " \t") {
		return "", s
	}
	return s[:i], s[i+2:]
}

type hostLED struct {
	name string
	on   atomic.Bool
	log  zerolog.Logger
}

func (l *hostLED) High() { l.set(true) }
func (l *hostLED) Low()  { l.set(false) }

func (l *hostLED) set(on bool) {
	if l.on.Swap(on) != on {
		l.log.Debug().Str("led", l.name).Bool("on", on).Msg("indicator")
	}
}
