// Package critical provides scoped interrupt masking for data shared between
// interrupt handlers and the main loop.
//
// On a single core there is no lock to take: masking the interrupt that
// produces the data is the only way to make a read-modify-write atomic. A
// Section masks on Enter and restores exactly the previous state on Exit.
package critical

import "errors"

// Line identifies an interrupt source.
type Line uint8

const (
	// MaxLine is the highest external interrupt line a Controller accepts.
	MaxLine Line = 30

	// All selects every maskable interrupt.
	All Line = 0xFF
)

// Valid reports whether l is All or an external interrupt line.
func (l Line) Valid() bool {
	return l == All || l <= MaxLine
}

// State is an opaque saved global interrupt state.
type State uintptr

// Controller masks and unmasks interrupts.
//
// DisableLine reports whether the line was enabled before the call so the
// caller can restore it without enabling something it did not disable.
type Controller interface {
	DisableAll() State
	RestoreAll(State)
	DisableLine(Line) (wasEnabled bool)
	EnableLine(Line)
}

// ErrInvalidLine is returned by Enter and Do for a nil controller or an
// out-of-range line.
var ErrInvalidLine = errors.New("critical: invalid interrupt line")

// Section is an active critical section. The zero value is a no-op.
type Section struct {
	c       Controller
	line    Line
	state   State
	reenter bool
}

// Enter masks line (or every interrupt for All) and returns the section that
// undoes it. Nothing is masked when an error is returned.
func Enter(c Controller, line Line) (Section, error) {
	if c == nil || !line.Valid() {
		return Section{}, ErrInvalidLine
	}
	if line == All {
		return Section{c: c, line: All, state: c.DisableAll()}, nil
	}
	return Section{c: c, line: line, reenter: c.DisableLine(line)}, nil
}

// Exit restores the interrupt state saved by Enter.
func (s Section) Exit() {
	if s.c == nil {
		return
	}
	if s.line == All {
		s.c.RestoreAll(s.state)
		return
	}
	if s.reenter {
		s.c.EnableLine(s.line)
	}
}

// Do runs fn with line masked.
func Do(c Controller, line Line, fn func()) error {
	s, err := Enter(c, line)
	if err != nil {
		return err
	}
	defer s.Exit()
	fn()
	return nil
}
