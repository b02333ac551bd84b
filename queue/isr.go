package queue

import "canclock/critical"

// WriteISR is Write with line (or every interrupt, for critical.All) masked.
func (q *Queue) WriteISR(line critical.Line, elem []byte) Result {
	res := BadLine
	if err := critical.Do(q.irq, line, func() { res = q.Write(elem) }); err != nil {
		return BadLine
	}
	return res
}

// ReadISR is Read with line masked.
func (q *Queue) ReadISR(line critical.Line, out []byte) Result {
	res := BadLine
	if err := critical.Do(q.irq, line, func() { res = q.Read(out) }); err != nil {
		return BadLine
	}
	return res
}

// IsEmptyISR reports emptiness with line masked. An invalid line reports
// empty so a consumer never reads under a failed mask.
func (q *Queue) IsEmptyISR(line critical.Line) (bool, Result) {
	empty := true
	if err := critical.Do(q.irq, line, func() { empty = q.IsEmpty() }); err != nil {
		return true, BadLine
	}
	return empty, OK
}

// IsFullISR reports fullness with line masked. An invalid line reports full.
func (q *Queue) IsFullISR(line critical.Line) (bool, Result) {
	full := true
	if err := critical.Do(q.irq, line, func() { full = q.IsFull() }); err != nil {
		return true, BadLine
	}
	return full, OK
}

// FlushISR is Flush with line masked.
func (q *Queue) FlushISR(line critical.Line) Result {
	if err := critical.Do(q.irq, line, q.Flush); err != nil {
		return BadLine
	}
	return OK
}
