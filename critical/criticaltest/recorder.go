// Package criticaltest provides a Controller that records masking calls.
package criticaltest

import (
	"fmt"

	"canclock/critical"
)

// Recorder is a single-threaded critical.Controller for tests.
type Recorder struct {
	Global bool // true while globally masked
	Masked [critical.MaxLine + 1]bool
	Calls  []string
}

func (r *Recorder) DisableAll() critical.State {
	prev := critical.State(0)
	if r.Global {
		prev = 1
	}
	r.Global = true
	r.Calls = append(r.Calls, "disable-all")
	return prev
}

func (r *Recorder) RestoreAll(s critical.State) {
	r.Global = s != 0
	r.Calls = append(r.Calls, fmt.Sprintf("restore-all(%d)", s))
}

func (r *Recorder) DisableLine(l critical.Line) bool {
	was := !r.Masked[l]
	r.Masked[l] = true
	r.Calls = append(r.Calls, fmt.Sprintf("disable(%d)", l))
	return was
}

func (r *Recorder) EnableLine(l critical.Line) {
	r.Masked[l] = false
	r.Calls = append(r.Calls, fmt.Sprintf("enable(%d)", l))
}

// Quiet reports whether nothing is masked.
func (r *Recorder) Quiet() bool {
	if r.Global {
		return false
	}
	for _, m := range r.Masked {
		if m {
			return false
		}
	}
	return true
}
