//go:build !tinygo

package hal

import (
	"context"
	"errors"
)

// RunHeadless runs the firmware without opening a window. It returns nil when
// cfg.Duration elapses.
func RunHeadless(ctx context.Context, prog Program, cfg RunConfig) error {
	if cfg.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Duration)
		defer cancel()
	}

	_, errc := start(ctx, prog, cfg)
	err := <-errc
	if cfg.Duration > 0 && errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
