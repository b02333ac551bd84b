// Package queue implements a fixed-capacity circular queue of fixed-size
// elements over caller-owned storage.
//
// The plain operations are not safe against concurrent interrupt handlers; the
// ISR variants wrap each of them in a critical section.
package queue

import (
	"errors"

	"canclock/critical"
)

// Result describes the outcome of a queue operation.
type Result uint8

const (
	OK Result = iota
	Full
	Empty
	BadSize
	BadLine
)

func (r Result) String() string {
	switch r {
	case OK:
		return "ok"
	case Full:
		return "queue full"
	case Empty:
		return "queue empty"
	case BadSize:
		return "element size mismatch"
	case BadLine:
		return "invalid interrupt line"
	default:
		return "unknown"
	}
}

// Ok reports whether the operation succeeded.
func (r Result) Ok() bool { return r == OK }

var (
	ErrCapacity    = errors.New("queue: capacity must be > 0")
	ErrElementSize = errors.New("queue: element size must be > 0")
	ErrShortBuffer = errors.New("queue: buffer smaller than capacity * element size")
)

// Queue is a ring buffer of capacity elements, each elementSize bytes.
type Queue struct {
	_ [0]func() // prevent accidental copying.

	buf      []byte
	capacity uint32
	size     uint32

	head  uint32 // next slot to read
	tail  uint32 // next slot to write
	saved uint32

	irq critical.Controller
}

// New binds buf as backing storage. irq is used by the ISR variants and may be
// nil if they are never called.
func New(buf []byte, capacity, elementSize uint32, irq critical.Controller) (*Queue, error) {
	if capacity == 0 {
		return nil, ErrCapacity
	}
	if elementSize == 0 {
		return nil, ErrElementSize
	}
	if uint64(len(buf)) < uint64(capacity)*uint64(elementSize) {
		return nil, ErrShortBuffer
	}
	q := &Queue{
		buf:      buf[:capacity*elementSize],
		capacity: capacity,
		size:     elementSize,
		irq:      irq,
	}
	q.Init()
	return q, nil
}

// Init resets the indices and count. It may be called any number of times.
func (q *Queue) Init() {
	q.head = 0
	q.tail = 0
	q.saved = 0
}

// Flush discards every buffered element.
func (q *Queue) Flush() { q.Init() }

func (q *Queue) Cap() uint32         { return q.capacity }
func (q *Queue) ElementSize() uint32 { return q.size }
func (q *Queue) Len() uint32         { return q.saved }
func (q *Queue) IsEmpty() bool       { return q.saved == 0 }
func (q *Queue) IsFull() bool        { return q.saved == q.capacity }

// Write copies elem into the next free slot. It never overwrites: a full queue
// is left unchanged.
func (q *Queue) Write(elem []byte) Result {
	if uint32(len(elem)) != q.size {
		return BadSize
	}
	if q.IsFull() {
		return Full
	}
	copy(q.slot(q.tail), elem)
	q.tail = q.next(q.tail)
	q.saved++
	return OK
}

// Read copies the oldest element into out. out must hold at least one element.
func (q *Queue) Read(out []byte) Result {
	if uint32(len(out)) < q.size {
		return BadSize
	}
	if q.IsEmpty() {
		return Empty
	}
	copy(out, q.slot(q.head))
	q.head = q.next(q.head)
	q.saved--
	return OK
}

// Peek copies the oldest element into out without consuming it.
func (q *Queue) Peek(out []byte) Result {
	if uint32(len(out)) < q.size {
		return BadSize
	}
	if q.IsEmpty() {
		return Empty
	}
	copy(out, q.slot(q.head))
	return OK
}

func (q *Queue) slot(i uint32) []byte {
	off := i * q.size
	return q.buf[off : off+q.size]
}

// next is the single wraparound rule for both indices.
func (q *Queue) next(i uint32) uint32 {
	return (i + 1) % q.capacity
}
