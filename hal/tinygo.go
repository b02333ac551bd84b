//go:build tinygo && baremetal

package hal

import (
	"machine"
	"runtime"

	"canclock/critical"
)

type tinyGoHAL struct {
	logger *uartLogger
	leds   []LED
	fb     Framebuffer
	clock  *monoClock
	irq    tinyGoIRQ
	can    CAN
	rtc    *softRTC
}

// New returns a Pico 2 (RP2350) HAL implementation.
//
// UART: UART0 on GP0 (TX) / GP1 (RX), 115200 8N1.
// CAN: MCP2515 on SPI0 (GP18 SCK, GP19 SDO, GP16 SDI, GP17 CS), INT on GP20.
// Indicators: on-board LED, then GP10..GP12.
func New() HAL {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})
	logger := &uartLogger{uart: uart}

	var leds []LED
	for _, pin := range []machine.Pin{machine.LED, machine.GP10, machine.GP11, machine.GP12} {
		pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		pin.Low()
		leds = append(leds, &pinLED{pin: pin})
	}

	clock := newMonoClock()
	can, err := newMCPCAN(machine.SPI0, machine.GP17, machine.GP20)
	if err != nil {
		logger.WriteLineString("can: " + err.Error())
	}
	return &tinyGoHAL{
		logger: logger,
		leds:   leds,
		fb:     &stubFramebuffer{w: 208, h: 72, format: PixelFormatRGB565},
		clock:  clock,
		can:    can,
		rtc:    newSoftRTC(clock.Millis),
	}
}

func (h *tinyGoHAL) Logger() Logger                  { return h.logger }
func (h *tinyGoHAL) Indicators() []LED               { return h.leds }
func (h *tinyGoHAL) Display() Display                { return tinyGoDisplay{fb: h.fb} }
func (h *tinyGoHAL) Clock() Clock                    { return h.clock }
func (h *tinyGoHAL) Interrupts() critical.Controller { return h.irq }
func (h *tinyGoHAL) CAN() CAN                        { return h.can }
func (h *tinyGoHAL) RTC() RTC                        { return h.rtc }
func (h *tinyGoHAL) Idle()                           { runtime.Gosched() }
