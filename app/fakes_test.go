package app

import (
	"strings"
	"testing"

	"canclock/critical"
	"canclock/critical/criticaltest"
	"canclock/hal"
)

type fakeClock struct{ ms uint32 }

func (c *fakeClock) Millis() uint32         { return c.ms }
func (c *fakeClock) Cycles() uint32         { return c.ms * 1000 }
func (c *fakeClock) CyclesPerMilli() uint32 { return 1000 }

type fakeLog struct{ lines []string }

func (l *fakeLog) WriteLineString(s string) { l.lines = append(l.lines, s) }
func (l *fakeLog) WriteLineBytes(b []byte)  { l.lines = append(l.lines, string(b)) }

func (l *fakeLog) contains(sub string) bool {
	for _, line := range l.lines {
		if strings.Contains(line, sub) {
			return true
		}
	}
	return false
}

type fakeLED struct {
	on      bool
	changes int
}

func (l *fakeLED) High() {
	if !l.on {
		l.changes++
	}
	l.on = true
}

func (l *fakeLED) Low() {
	if l.on {
		l.changes++
	}
	l.on = false
}

// fakeCAN delivers frames by calling the rx handler directly, as the
// interrupt would between two dispatches.
type fakeCAN struct {
	irq  *criticaltest.Recorder
	rx   func(hal.Frame)
	sent []hal.Frame
	err  error

	// txMasked records, per Transmit call, whether the rx line was masked.
	txMasked []bool
}

func (c *fakeCAN) Transmit(f hal.Frame) error {
	c.txMasked = append(c.txMasked, c.irq != nil && c.irq.Masked[hal.CANLine])
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, f)
	return nil
}

func (c *fakeCAN) SetRxHandler(fn func(hal.Frame)) { c.rx = fn }
func (c *fakeCAN) RxLine() critical.Line           { return hal.CANLine }

func (c *fakeCAN) deliver(t *testing.T, f hal.Frame) {
	t.Helper()
	if c.rx == nil {
		t.Fatal("no rx handler installed")
	}
	c.rx(f)
}

type memFB struct {
	w, h     int
	buf      []byte
	presents int
}

func newMemFB(w, h int) *memFB {
	return &memFB{w: w, h: h, buf: make([]byte, w*h*2)}
}

func (f *memFB) Width() int                   { return f.w }
func (f *memFB) Height() int                  { return f.h }
func (f *memFB) Format() hal.PixelFormat      { return hal.PixelFormatRGB565 }
func (f *memFB) StrideBytes() int             { return f.w * 2 }
func (f *memFB) Buffer() []byte               { return f.buf }
func (f *memFB) ClearRGB(r, g, b uint8)       {}
func (f *memFB) Present() error               { f.presents++; return nil }
func (f *memFB) Framebuffer() hal.Framebuffer { return f }

func (f *memFB) pixel(x, y int) uint16 {
	off := y*f.w*2 + x*2
	return uint16(f.buf[off]) | uint16(f.buf[off+1])<<8
}

// fakeHAL is a deterministic board: every idle call advances the clock by
// one millisecond.
type fakeHAL struct {
	clock *fakeClock
	log   *fakeLog
	leds  []*fakeLED
	fb    *memFB
	irq   *criticaltest.Recorder
	can   *fakeCAN
	rtc   hal.RTC

	// stall jumps the clock forward when it reaches stallAt.
	stallAt, stall uint32
}

func newFakeHAL() *fakeHAL {
	irq := &criticaltest.Recorder{}
	f := &fakeHAL{
		clock: &fakeClock{},
		log:   &fakeLog{},
		leds:  []*fakeLED{{}, {}, {}, {}},
		fb:    newMemFB(208, 72),
		irq:   irq,
		can:   &fakeCAN{irq: irq},
	}
	f.rtc = hal.NewSoftRTC(f.clock.Millis)
	return f
}

func (f *fakeHAL) Logger() hal.Logger { return f.log }

func (f *fakeHAL) Indicators() []hal.LED {
	out := make([]hal.LED, len(f.leds))
	for i, l := range f.leds {
		out[i] = l
	}
	return out
}

func (f *fakeHAL) Display() hal.Display            { return f.fb }
func (f *fakeHAL) Clock() hal.Clock                { return f.clock }
func (f *fakeHAL) Interrupts() critical.Controller { return f.irq }
func (f *fakeHAL) CAN() hal.CAN                    { return f.can }
func (f *fakeHAL) RTC() hal.RTC                    { return f.rtc }

func (f *fakeHAL) Idle() {
	f.clock.ms++
	if f.stallAt != 0 && f.clock.ms == f.stallAt {
		f.clock.ms += f.stall
	}
}

func newTestApp(t *testing.T, cfg Config) (*App, *fakeHAL) {
	t.Helper()
	f := newFakeHAL()
	a, err := New(f, cfg)
	if err != nil {
		t.Fatalf("New(): %v", err)
	}
	return a, f
}

// advance polls the scheduler until the tick at ms has been dispatched.
func advance(a *App, f *fakeHAL, ms uint32) {
	for f.clock.ms <= ms {
		a.sched.Poll()
	}
}
