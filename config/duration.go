//go:build !tinygo

package config

import (
	"fmt"
	"strings"
	"time"
)

func ParseDurationField(path, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must be >= 0", path)
	}
	return d, nil
}

// millis parses raw as a whole number of milliseconds, returning def when raw
// is empty.
func millis(path, raw string, def uint32) (uint32, error) {
	d, err := ParseDurationField(path, raw)
	if err != nil {
		return 0, err
	}
	if d == 0 {
		return def, nil
	}
	if d%time.Millisecond != 0 {
		return 0, fmt.Errorf("%s: %s is not a whole number of milliseconds", path, d)
	}
	ms := d / time.Millisecond
	if ms > 1<<31 {
		return 0, fmt.Errorf("%s: %s is too long", path, d)
	}
	return uint32(ms), nil
}
