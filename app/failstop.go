package app

import (
	"fmt"
	"image/color"

	"canclock/fault"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freemono"
)

var (
	faultBG = color.RGBA{R: 0xb0, G: 0x10, B: 0x10, A: 0xff}
	faultFG = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// failStop unwinds the dispatch loop on the host once the core is released.
type failStop struct {
	info fault.Info
}

// FailStop is the scheduler's fatal handler. It masks every interrupt, shows
// the fault code in binary on the indicators and on the display, then parks
// the core.
func (a *App) FailStop(info fault.Info) {
	if a.stopped == nil {
		a.stopped = &info
		a.log.WriteLineString("failstop: " + info.Error())
		a.irq.DisableAll()
		a.showCode(info.Code)
		a.drawFault(info)
	}
	if a.park != nil {
		a.park(info)
	}
}

// Stopped returns the fault that stopped the firmware, if any.
func (a *App) Stopped() (fault.Info, bool) {
	if a.stopped == nil {
		return fault.Info{}, false
	}
	return *a.stopped, true
}

func (a *App) showCode(code fault.Code) {
	for i, led := range a.leds {
		if led == nil {
			continue
		}
		if code&(1<<uint(i)) != 0 {
			led.High()
		} else {
			led.Low()
		}
	}
}

func (a *App) drawFault(info fault.Info) {
	if a.fb == nil {
		return
	}
	d := newFBDisplay(a.fb)
	if err := d.Fill(faultBG); err != nil {
		return
	}
	font := &freemono.Regular9pt7b
	tinyfont.WriteLine(d, font, 4, 16, "FATAL", faultFG)
	tinyfont.WriteLine(d, font, 4, 38, fmt.Sprintf("%d %s", uint8(info.Code), info.Code), faultFG)
	tinyfont.WriteLine(d, font, 4, 60, fmt.Sprintf("%s:%d", info.File, info.Line), faultFG)
	_ = d.Display()
}
