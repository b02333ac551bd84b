package queue

import (
	"errors"
	"testing"

	"canclock/critical"
	"canclock/critical/criticaltest"

	"github.com/google/go-cmp/cmp"
)

func newByteQueue(t *testing.T, capacity uint32) (*Queue, *criticaltest.Recorder) {
	t.Helper()
	rec := &criticaltest.Recorder{}
	q, err := New(make([]byte, capacity), capacity, 1, rec)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return q, rec
}

func TestNewRejectsBadGeometry(t *testing.T) {
	tests := []struct {
		name     string
		buf      int
		capacity uint32
		size     uint32
		want     error
	}{
		{"zero capacity", 8, 0, 1, ErrCapacity},
		{"zero size", 8, 8, 0, ErrElementSize},
		{"short buffer", 8, 3, 3, ErrShortBuffer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(make([]byte, tt.buf), tt.capacity, tt.size, nil); !errors.Is(err, tt.want) {
				t.Fatalf("New() err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCapacityThreeScenario(t *testing.T) {
	q, _ := newByteQueue(t, 3)

	for _, b := range []byte{0x01, 0x02, 0x03} {
		if res := q.Write([]byte{b}); res != OK {
			t.Fatalf("Write(%#x) = %s, want ok", b, res)
		}
	}
	if res := q.Write([]byte{0x04}); res != Full {
		t.Fatalf("Write(0x04) on full queue = %s, want queue full", res)
	}
	if q.Len() != 3 {
		t.Fatalf("Len() after rejected write = %d, want 3", q.Len())
	}

	var out [1]byte
	if res := q.Read(out[:]); res != OK || out[0] != 0x01 {
		t.Fatalf("Read() = %s %#x, want ok 0x01", res, out[0])
	}
	if q.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", q.Len())
	}
	if res := q.Write([]byte{0x04}); res != OK {
		t.Fatalf("Write(0x04) after read = %s, want ok", res)
	}

	var got []byte
	for !q.IsEmpty() {
		q.Read(out[:])
		got = append(got, out[0])
	}
	if diff := cmp.Diff([]byte{0x02, 0x03, 0x04}, got); diff != "" {
		t.Fatalf("drain order mismatch (-want +got):\n%s", diff)
	}
}

func TestReadEmpty(t *testing.T) {
	q, _ := newByteQueue(t, 2)
	out := []byte{0xEE}
	if res := q.Read(out); res != Empty {
		t.Fatalf("Read() on empty = %s, want queue empty", res)
	}
	if out[0] != 0xEE {
		t.Fatal("Read() on empty modified out")
	}
}

func TestCountTracksWritesMinusReads(t *testing.T) {
	const capacity = 5
	q, _ := newByteQueue(t, capacity)

	writes, reads := 0, 0
	var out [1]byte
	// Deterministic interleaving that hits both boundaries several times.
	pattern := "wwwwwwrrwwwrrrrrrrwwrwrwwwwwwrrrrrrr"
	for i, op := range pattern {
		switch op {
		case 'w':
			res := q.Write([]byte{byte(i)})
			if writes-reads == capacity {
				if res != Full {
					t.Fatalf("op %d: Write on full = %s", i, res)
				}
				continue
			}
			writes++
		case 'r':
			res := q.Read(out[:])
			if writes == reads {
				if res != Empty {
					t.Fatalf("op %d: Read on empty = %s", i, res)
				}
				continue
			}
			reads++
		}
		if got := int(q.Len()); got != writes-reads {
			t.Fatalf("op %d: Len() = %d, want %d", i, got, writes-reads)
		}
		if q.head >= capacity || q.tail >= capacity {
			t.Fatalf("op %d: head=%d tail=%d out of range", i, q.head, q.tail)
		}
		if q.IsEmpty() != (q.Len() == 0) || q.IsFull() != (q.Len() == capacity) {
			t.Fatalf("op %d: predicates disagree with count %d", i, q.Len())
		}
	}
}

func TestMultiByteRoundTripAcrossWrap(t *testing.T) {
	const size = 4
	q, err := New(make([]byte, 3*size), 3, size, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	next := byte(0)
	expect := byte(0)
	out := make([]byte, size)
	for round := 0; round < 10; round++ {
		for q.Write([]byte{next, next + 1, next + 2, next + 3}) == OK {
			next += 4
		}
		if q.Read(out) != OK {
			t.Fatalf("round %d: Read failed", round)
		}
		want := []byte{expect, expect + 1, expect + 2, expect + 3}
		if diff := cmp.Diff(want, out); diff != "" {
			t.Fatalf("round %d: element mismatch (-want +got):\n%s", round, diff)
		}
		expect += 4
	}
}

func TestWriteSizeMismatch(t *testing.T) {
	q, err := New(make([]byte, 8), 4, 2, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if res := q.Write([]byte{1}); res != BadSize {
		t.Fatalf("Write(short) = %s, want element size mismatch", res)
	}
	if res := q.Read(make([]byte, 1)); res != BadSize {
		t.Fatalf("Read(short out) = %s, want element size mismatch", res)
	}
	if !q.IsEmpty() {
		t.Fatal("rejected write changed the queue")
	}
}

func TestFlushAlwaysEmpties(t *testing.T) {
	q, _ := newByteQueue(t, 4)
	for fill := 0; fill <= 4; fill++ {
		for i := 0; i < fill; i++ {
			q.Write([]byte{byte(i)})
		}
		q.Flush()
		if !q.IsEmpty() || q.Len() != 0 || q.head != 0 || q.tail != 0 {
			t.Fatalf("fill %d: Flush left len=%d head=%d tail=%d", fill, q.Len(), q.head, q.tail)
		}
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	q, _ := newByteQueue(t, 2)
	q.Write([]byte{7})
	var out [1]byte
	if res := q.Peek(out[:]); res != OK || out[0] != 7 {
		t.Fatalf("Peek() = %s %d, want ok 7", res, out[0])
	}
	if q.Len() != 1 {
		t.Fatalf("Len() after Peek = %d, want 1", q.Len())
	}
}

func TestISRVariantsMaskAndRestore(t *testing.T) {
	q, rec := newByteQueue(t, 2)
	const can critical.Line = 21

	if res := q.WriteISR(can, []byte{9}); res != OK {
		t.Fatalf("WriteISR() = %s", res)
	}
	if empty, res := q.IsEmptyISR(critical.All); empty || res != OK {
		t.Fatalf("IsEmptyISR() = %v %s, want false ok", empty, res)
	}
	if full, res := q.IsFullISR(can); full || res != OK {
		t.Fatalf("IsFullISR() = %v %s, want false ok", full, res)
	}
	var out [1]byte
	if res := q.ReadISR(can, out[:]); res != OK || out[0] != 9 {
		t.Fatalf("ReadISR() = %s %d", res, out[0])
	}
	if res := q.FlushISR(critical.All); res != OK {
		t.Fatalf("FlushISR() = %s", res)
	}

	want := []string{
		"disable(21)", "enable(21)",
		"disable-all", "restore-all(0)",
		"disable(21)", "enable(21)",
		"disable(21)", "enable(21)",
		"disable-all", "restore-all(0)",
	}
	if diff := cmp.Diff(want, rec.Calls); diff != "" {
		t.Fatalf("masking calls mismatch (-want +got):\n%s", diff)
	}
	if !rec.Quiet() {
		t.Fatal("interrupts left masked")
	}
}

func TestISRVariantsRejectInvalidLine(t *testing.T) {
	q, rec := newByteQueue(t, 2)
	const bad critical.Line = 31

	if res := q.WriteISR(bad, []byte{1}); res != BadLine {
		t.Fatalf("WriteISR(bad) = %s, want invalid interrupt line", res)
	}
	if !q.IsEmpty() {
		t.Fatal("WriteISR(bad) wrote")
	}
	q.Write([]byte{1})
	if res := q.ReadISR(bad, make([]byte, 1)); res != BadLine {
		t.Fatalf("ReadISR(bad) = %s", res)
	}
	if empty, res := q.IsEmptyISR(bad); !empty || res != BadLine {
		t.Fatalf("IsEmptyISR(bad) = %v %s, want true invalid", empty, res)
	}
	if res := q.FlushISR(bad); res != BadLine || q.Len() != 1 {
		t.Fatalf("FlushISR(bad) = %s len=%d", res, q.Len())
	}
	if len(rec.Calls) != 0 {
		t.Fatalf("invalid line touched the controller: %v", rec.Calls)
	}
}

func TestResultString(t *testing.T) {
	if OK.String() != "ok" || !OK.Ok() || Full.Ok() {
		t.Fatal("unexpected OK semantics")
	}
	if Result(99).String() != "unknown" {
		t.Fatalf("Result(99).String() = %q", Result(99).String())
	}
}
