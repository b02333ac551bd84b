package app

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"canclock/critical"
	"canclock/fault"
	"canclock/hal"
	"canclock/proto"
	"canclock/queue"
)

// ErrBusy is reported when the clock task has not drained earlier requests.
var ErrBusy = errors.New("app: message queue full")

// rxElemSize is one received frame in the rx queue: the data length followed
// by the eight data bytes.
const rxElemSize = 9

// serial receives request frames in interrupt context, validates them in task
// context and answers every request with an ack or a nak.
type serial struct {
	can   hal.CAN
	line  critical.Line
	rx    *queue.Queue
	out   *queue.Queue
	irq   critical.Controller
	log   hal.Logger
	fatal fault.Handler
	limit *rate.Limiter

	// drops is written by the rx handler and read under the rx line mask.
	drops uint32

	isrBuf [rxElemSize]byte
	buf    [rxElemSize]byte
	msg    [messageSize]byte

	accepted, rejected uint32
}

func newSerial(can hal.CAN, rx, out *queue.Queue, irq critical.Controller, log hal.Logger, fatal fault.Handler) *serial {
	s := &serial{
		can:   can,
		rx:    rx,
		out:   out,
		irq:   irq,
		log:   log,
		fatal: fatal,
		limit: rate.NewLimiter(rate.Every(time.Second), 4),
	}
	if can != nil {
		s.line = can.RxLine()
	}
	return s
}

func (s *serial) init() {
	if s.can == nil {
		fault.Raise(s.fatal, fault.CodeCAN)
		return
	}
	s.rx.Init()
	s.can.SetRxHandler(s.isr)
}

// isr runs in interrupt context on the CAN rx line.
func (s *serial) isr(f hal.Frame) {
	if f.ID != proto.RequestID {
		return
	}
	n := f.Len
	if n > 8 {
		n = 8
	}
	s.isrBuf = [rxElemSize]byte{}
	s.isrBuf[0] = n
	copy(s.isrBuf[1:], f.Data[:n])
	if !s.rx.Write(s.isrBuf[:]).Ok() {
		s.drops++
	}
}

func (s *serial) run() {
	s.reportDrops()
	for {
		if empty, res := s.rx.IsEmptyISR(s.line); empty || !res.Ok() {
			return
		}
		if !s.rx.ReadISR(s.line, s.buf[:]).Ok() {
			return
		}
		s.handle(s.buf[1 : 1+s.buf[0]])
	}
}

func (s *serial) handle(data []byte) {
	m, err := DecodeRequest(data)
	if err == nil {
		m.put(s.msg[:])
		if !s.out.Write(s.msg[:]).Ok() {
			err = ErrBusy
		}
	}

	code := proto.Ack
	if err != nil {
		code = proto.Nak
		s.rejected++
		s.notice(fmt.Sprintf("serial: rejected % x: %v", data, err))
	} else {
		s.accepted++
	}
	s.reply(code)
}

// reply transmits with the rx line masked: the controller's rx interrupt and
// Transmit share one bus to the chip.
func (s *serial) reply(code byte) {
	f := hal.Frame{ID: proto.ReplyID, Len: 8, Data: proto.ReplyFrame(code)}
	var err error
	if merr := critical.Do(s.irq, s.line, func() { err = s.can.Transmit(f) }); merr != nil {
		err = merr
	}
	if err != nil {
		s.notice("serial: reply: " + err.Error())
	}
}

func (s *serial) reportDrops() {
	var n uint32
	_ = critical.Do(s.irq, s.line, func() {
		n = s.drops
		s.drops = 0
	})
	if n > 0 {
		s.notice(fmt.Sprintf("serial: rx queue full, dropped %d frames", n))
	}
}

func (s *serial) notice(msg string) {
	if s.limit.Allow() {
		s.log.WriteLineString(msg)
	}
}
