//go:build tinygo && baremetal

package hal

import (
	"device/arm"
	"runtime/interrupt"

	"canclock/critical"
)

// tinyGoIRQ masks the core with PRIMASK and single lines through the NVIC.
type tinyGoIRQ struct{}

func (tinyGoIRQ) DisableAll() critical.State {
	return critical.State(interrupt.Disable())
}

func (tinyGoIRQ) RestoreAll(s critical.State) {
	interrupt.Restore(interrupt.State(s))
}

func (tinyGoIRQ) DisableLine(line critical.Line) bool {
	if line > critical.MaxLine {
		return false
	}
	irq := uint32(line)
	was := arm.NVIC.ISER[irq>>5].Get()&(1<<(irq&31)) != 0
	arm.DisableIRQ(irq)
	return was
}

func (tinyGoIRQ) EnableLine(line critical.Line) {
	if line > critical.MaxLine {
		return
	}
	arm.EnableIRQ(uint32(line))
}
