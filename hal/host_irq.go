//go:build !tinygo

package hal

import (
	"runtime"
	"sync"

	"canclock/critical"
)

// hostIRQ emulates a single-core interrupt controller.
//
// The firmware goroutine owns the core and lets go of it only in Yield.
// Peripheral goroutines deliver an interrupt by taking the core and running
// the handler on it. An interrupt raised while its line (or the whole core) is
// masked stays pending and runs as soon as the mask is lifted. Masking is
// plain bookkeeping done by the core's owner, so a handler may open critical
// sections of its own.
type hostIRQ struct {
	cpu sync.Mutex

	// Guarded by cpu.
	global  bool
	masked  uint32
	pending uint32
	active  uint32
	isr     [critical.MaxLine + 1]func()
}

func newHostIRQ() *hostIRQ { return &hostIRQ{} }

// Attach installs the handler for line. Call it while holding the core.
func (c *hostIRQ) Attach(line critical.Line, isr func()) {
	if line <= critical.MaxLine {
		c.isr[line] = isr
	}
}

// Acquire takes the core for the calling goroutine.
func (c *hostIRQ) Acquire() { c.cpu.Lock() }

// Release gives the core up.
func (c *hostIRQ) Release() { c.cpu.Unlock() }

// Yield lets pending peripheral goroutines take the core once.
func (c *hostIRQ) Yield() {
	c.cpu.Unlock()
	runtime.Gosched()
	c.cpu.Lock()
}

// Raise signals line from a goroutine that does not hold the core.
func (c *hostIRQ) Raise(line critical.Line) {
	c.cpu.Lock()
	defer c.cpu.Unlock()
	c.raise(line)
}

func (c *hostIRQ) raise(line critical.Line) {
	if line > critical.MaxLine {
		return
	}
	c.pending |= 1 << line
	c.drain()
}

func (c *hostIRQ) drain() {
	for !c.global {
		ready := c.pending &^ c.masked &^ c.active
		if ready == 0 {
			return
		}
		var line critical.Line
		for ready&(1<<line) == 0 {
			line++
		}
		bit := uint32(1) << line
		c.pending &^= bit
		if fn := c.isr[line]; fn != nil {
			c.active |= bit
			fn()
			c.active &^= bit
		}
	}
}

func (c *hostIRQ) DisableAll() critical.State {
	was := c.global
	c.global = true
	if was {
		return 1
	}
	return 0
}

func (c *hostIRQ) RestoreAll(s critical.State) {
	c.global = s != 0
	c.drain()
}

func (c *hostIRQ) DisableLine(line critical.Line) bool {
	if line > critical.MaxLine {
		return false
	}
	bit := uint32(1) << line
	was := c.masked&bit == 0
	c.masked |= bit
	return was
}

func (c *hostIRQ) EnableLine(line critical.Line) {
	if line > critical.MaxLine {
		return
	}
	c.masked &^= 1 << line
	c.drain()
}
