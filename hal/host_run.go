//go:build !tinygo

package hal

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Program is the firmware body run by the host runners. It owns the emulated
// core while it runs and must return once ctx is done.
type Program func(ctx context.Context, h HAL) error

// ScriptFrame is a CAN frame put on the bus At after start.
type ScriptFrame struct {
	At    time.Duration
	Frame Frame
}

// RunConfig controls the host runners.
type RunConfig struct {
	Host   HostConfig
	Script []ScriptFrame
	// Duration stops a headless run after the given time; 0 runs until
	// the context is cancelled.
	Duration time.Duration
	// Scale is the window zoom factor, 3 by default.
	Scale int
}

// start builds the host board, runs prog on the core and plays the CAN script
// against it.
func start(ctx context.Context, prog Program, cfg RunConfig) (*hostHAL, <-chan error) {
	h := newHost(cfg.Host)
	errc := make(chan error, 1)
	go func() {
		h.irq.Acquire()
		defer h.irq.Release()
		errc <- prog(ctx, h)
	}()
	if len(cfg.Script) > 0 {
		go playScript(ctx, h, cfg.Script)
	}
	return h, errc
}

func playScript(ctx context.Context, h *hostHAL, script []ScriptFrame) {
	frames := append([]ScriptFrame(nil), script...)
	sort.SliceStable(frames, func(i, j int) bool { return frames[i].At < frames[j].At })

	begin := time.Now()
	for _, sf := range frames {
		wait := time.Until(begin.Add(sf.At))
		if wait > 0 {
			t := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				t.Stop()
				return
			case <-t.C:
			}
		}
		if !h.can.Inject(sf.Frame) {
			h.logger.WriteLineString(fmt.Sprintf("can: rx fifo overrun, dropped id=%#03x", sf.Frame.ID))
		}
	}
}
