// Package fault defines the fatal-error path used for contract violations.
//
// A contract violation is a programming error or a missed real-time deadline.
// It is reported once to a Handler, which is expected to stop the system.
package fault

import (
	"fmt"
	"path/filepath"
	"runtime"
)

// Code identifies the violated contract.
type Code uint8

const (
	CodeNone Code = iota
	CodeSchedulerParam
	CodeTaskTiming
	CodeReentrant
	CodeQueueParam
	CodeDisplay
	CodeCAN
	CodeRTC
)

func (c Code) String() string {
	switch c {
	case CodeNone:
		return "none"
	case CodeSchedulerParam:
		return "scheduler parameter"
	case CodeTaskTiming:
		return "task timing"
	case CodeReentrant:
		return "scheduler re-entered"
	case CodeQueueParam:
		return "queue parameter"
	case CodeDisplay:
		return "display"
	case CodeCAN:
		return "can"
	case CodeRTC:
		return "rtc"
	default:
		return "unknown"
	}
}

// Info is a contract violation and where it was detected.
type Info struct {
	Code Code
	File string
	Line int
}

func (i Info) Error() string {
	return fmt.Sprintf("fatal %s (code %d) at %s:%d", i.Code, uint8(i.Code), i.File, i.Line)
}

// Handler receives a contract violation. On target it must not return.
type Handler func(Info)

// Raise reports code, located at the caller of Raise, to h. A nil handler panics
// with the Info.
func Raise(h Handler, code Code) {
	raise(h, code, 2)
}

// Assert raises code when cond is false. It reports whether cond held.
func Assert(h Handler, cond bool, code Code) bool {
	if cond {
		return true
	}
	raise(h, code, 2)
	return false
}

// raise locates the frame skip levels above it and reports code to h.
func raise(h Handler, code Code, skip int) {
	info := Info{Code: code}
	if _, file, line, ok := runtime.Caller(skip); ok {
		info.File = filepath.Base(file)
		info.Line = line
	}
	if h == nil {
		panic(info)
	}
	h(info)
}
