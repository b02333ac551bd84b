//go:build tinygo && baremetal

package hal

import (
	"machine"

	"canclock/critical"

	"tinygo.org/x/drivers/mcp2515"
)

// mcpCAN drives an MCP2515 controller on SPI. Its INT pin raises a GPIO edge
// interrupt that drains the receive buffers into the rx hook.
type mcpCAN struct {
	dev  *mcp2515.Device
	intr machine.Pin
	rx   func(Frame)
	up   bool
}

func newMCPCAN(spi *machine.SPI, cs, intr machine.Pin) (*mcpCAN, error) {
	c := &mcpCAN{intr: intr}
	err := spi.Configure(machine.SPIConfig{
		Frequency: 4_000_000,
		SCK:       machine.GP18,
		SDO:       machine.GP19,
		SDI:       machine.GP16,
		Mode:      0,
	})
	if err != nil {
		return c, err
	}
	c.dev = mcp2515.New(spi, cs)
	c.dev.Configure()
	if err := c.dev.Begin(mcp2515.CAN500kBps, mcp2515.Clock8MHz); err != nil {
		return c, err
	}
	c.up = true
	return c, nil
}

func (c *mcpCAN) RxLine() critical.Line { return CANLine }

func (c *mcpCAN) SetRxHandler(fn func(Frame)) {
	c.rx = fn
	if !c.up {
		return
	}
	c.intr.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	c.intr.SetInterrupt(machine.PinFalling, func(machine.Pin) { c.service() })
}

func (c *mcpCAN) service() {
	for c.dev.Received() {
		msg, err := c.dev.Rx()
		if err != nil {
			return
		}
		f := Frame{ID: msg.ID, Len: msg.Dlc}
		copy(f.Data[:], msg.Data)
		if c.rx != nil {
			c.rx(f)
		}
	}
}

func (c *mcpCAN) Transmit(f Frame) error {
	if f.Len > 8 {
		return ErrFrameLength
	}
	if !c.up {
		return ErrBusOff
	}
	return c.dev.Tx(f.ID, f.Len, f.Payload())
}
