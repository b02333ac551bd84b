package hal

import (
	"errors"

	"canclock/critical"
)

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// LED is a minimal output pin abstraction.
type LED interface {
	High()
	Low()
}

var (
	ErrNotImplemented = errors.New("not implemented")
	ErrFrameLength    = errors.New("hal: CAN frame longer than 8 bytes")
	ErrBusOff         = errors.New("hal: CAN controller not running")
)

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// Display provides access to the framebuffer (if available).
type Display interface {
	Framebuffer() Framebuffer
}

// Clock is the board's time base: a wrapping millisecond tick plus a
// free-running cycle counter.
type Clock interface {
	Millis() uint32
	Cycles() uint32
	CyclesPerMilli() uint32
}

// Frame is a classic CAN data frame with a standard identifier.
type Frame struct {
	ID   uint32
	Len  uint8
	Data [8]byte
}

// NewFrame builds a frame from id and payload.
func NewFrame(id uint32, payload []byte) (Frame, error) {
	if len(payload) > 8 {
		return Frame{}, ErrFrameLength
	}
	f := Frame{ID: id, Len: uint8(len(payload))}
	copy(f.Data[:], payload)
	return f, nil
}

// Payload returns the valid data bytes of f.
func (f Frame) Payload() []byte {
	n := f.Len
	if n > 8 {
		n = 8
	}
	return f.Data[:n]
}

// CANLine is the interrupt line of the CAN receive path. On the RP2350 it is
// IO_IRQ_BANK0, where the controller's INT pin lands.
const CANLine critical.Line = 21

// CAN is a CAN controller. The rx handler runs in interrupt context on RxLine.
// Transmit is called with RxLine masked.
type CAN interface {
	Transmit(f Frame) error
	SetRxHandler(fn func(Frame))
	RxLine() critical.Line
}

// HAL provides the only contact point between the firmware and the outside
// world.
type HAL interface {
	Logger() Logger
	Indicators() []LED
	Display() Display
	Clock() Clock
	Interrupts() critical.Controller
	CAN() CAN
	RTC() RTC
	// Idle is called by the dispatch loop while no tick is due.
	Idle()
}
