//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"canclock/app"
	"canclock/config"
	"canclock/hal"
)

func main() {
	var (
		headless bool
		path     string
		logJSON  bool
		logLevel string
		jitter   string
		duration time.Duration
	)
	flag.BoolVar(&headless, "headless", false, "Run without a window.")
	flag.StringVar(&path, "config", "", "YAML board file.")
	flag.BoolVar(&logJSON, "log-json", false, "Log JSON lines instead of console output.")
	flag.StringVar(&logLevel, "log-level", "", "Minimum log level (debug, info, warn, error).")
	flag.StringVar(&jitter, "jitter", "", "Override the jitter monitor (on|off).")
	flag.DurationVar(&duration, "duration", 0, "Stop after this long (0 = run until interrupted).")
	flag.Parse()

	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			fatal(err)
		}
	}
	if logJSON {
		cfg.Run.Host.LogJSON = true
	}
	if logLevel != "" {
		cfg.Run.Host.LogLevel = logLevel
	}
	if duration > 0 {
		cfg.Run.Duration = duration
	}
	switch jitter {
	case "":
	case "on":
		cfg.App.Jitter = true
	case "off":
		cfg.App.Jitter = false
	default:
		fatal(fmt.Errorf("-jitter: want on or off, got %q", jitter))
	}

	prog := func(ctx context.Context, h hal.HAL) error {
		a, err := app.New(h, cfg.App)
		if err != nil {
			return err
		}
		return a.Run(ctx)
	}

	if headless {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := hal.RunHeadless(ctx, prog, cfg.Run); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			fatal(err)
		}
		return
	}

	if err := hal.RunWindow(prog, cfg.Run); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
