//go:build !tinygo

package hal

import (
	"fmt"
	"sync"

	"canclock/critical"
)

const canFIFODepth = 3

// hostCAN is a loopback-free CAN controller. Frames enter through Inject,
// which plays the bus side: it fills the receive FIFO and raises the rx
// interrupt. Transmitted frames are logged and kept for inspection.
type hostCAN struct {
	irq  *hostIRQ
	line critical.Line
	log  Logger

	// Guarded by irq.cpu.
	rx      func(Frame)
	fifo    [canFIFODepth]Frame
	n       int
	overrun uint32

	mu   sync.Mutex
	sent []Frame
}

func newHostCAN(irq *hostIRQ, log Logger) *hostCAN {
	return &hostCAN{irq: irq, line: CANLine, log: log}
}

func (c *hostCAN) RxLine() critical.Line { return c.line }

func (c *hostCAN) SetRxHandler(fn func(Frame)) {
	c.rx = fn
	c.irq.Attach(c.line, c.service)
	if c.n > 0 {
		c.irq.raise(c.line)
	}
}

func (c *hostCAN) Transmit(f Frame) error {
	if f.Len > 8 {
		return ErrFrameLength
	}
	c.mu.Lock()
	c.sent = append(c.sent, f)
	c.mu.Unlock()
	if c.log != nil {
		c.log.WriteLineString(fmt.Sprintf("can: tx id=%#03x data=% x", f.ID, f.Payload()))
	}
	return nil
}

// Inject places f on the bus. It reports false when the receive FIFO was full
// and the frame was lost.
func (c *hostCAN) Inject(f Frame) bool {
	c.irq.cpu.Lock()
	defer c.irq.cpu.Unlock()
	if c.n == canFIFODepth {
		c.overrun++
		return false
	}
	c.fifo[c.n] = f
	c.n++
	c.irq.raise(c.line)
	return true
}

// service is the rx interrupt handler: it empties the FIFO into the rx hook.
func (c *hostCAN) service() {
	for i := 0; i < c.n; i++ {
		if c.rx != nil {
			c.rx(c.fifo[i])
		}
	}
	c.n = 0
}

// Sent returns a copy of every frame transmitted so far.
func (c *hostCAN) Sent() []Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Frame(nil), c.sent...)
}
