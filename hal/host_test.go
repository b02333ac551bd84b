//go:build !tinygo

package hal

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestSplitComponent(t *testing.T) {
	tests := []struct {
		in, component, msg string
	}{
		{"serial: rejected frame", "serial", "rejected frame"},
		{"no prefix here", "", "no prefix here"},
		{"two words: x", "", "two words: x"},
		{": empty", "", ": empty"},
	}
	for _, tt := range tests {
		c, m := splitComponent(tt.in)
		if c != tt.component || m != tt.msg {
			t.Errorf("splitComponent(%q) = %q, %q; want %q, %q", tt.in, c, m, tt.component, tt.msg)
		}
	}
}

func TestHostLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	l := newHostLogger(&buf, true, "")
	l.WriteLineString("clock: time set")
	l.WriteLineBytes([]byte("failstop: task timing"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), buf.String())
	}
	var got []map[string]any
	for _, line := range lines {
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("unmarshal %q: %v", line, err)
		}
		delete(m, "time")
		got = append(got, m)
	}
	want := []map[string]any{
		{"level": "info", "component": "clock", "message": "time set"},
		{"level": "error", "component": "failstop", "message": "task timing"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("log mismatch (-want +got):\n%s", diff)
	}
}

func TestHostCANTransmitRecordsFrames(t *testing.T) {
	c := newHostCAN(newHostIRQ(), nil)
	f, err := NewFrame(0x122, []byte{0x55})
	if err != nil {
		t.Fatalf("NewFrame: %v", err)
	}
	if err := c.Transmit(f); err != nil {
		t.Fatalf("Transmit: %v", err)
	}
	if err := c.Transmit(Frame{ID: 1, Len: 9}); err != ErrFrameLength {
		t.Fatalf("Transmit(len 9) = %v, want ErrFrameLength", err)
	}
	if diff := cmp.Diff([]Frame{f}, c.Sent()); diff != "" {
		t.Fatalf("sent mismatch (-want +got):\n%s", diff)
	}
}

func TestHostCANFIFOOverrun(t *testing.T) {
	irq := newHostIRQ()
	c := newHostCAN(irq, nil)
	var got []uint32

	irq.Acquire()
	c.SetRxHandler(func(f Frame) { got = append(got, f.ID) })
	s := irq.DisableAll()
	irq.Release()

	for id := uint32(1); id <= canFIFODepth; id++ {
		if !c.Inject(Frame{ID: id}) {
			t.Fatalf("Inject(%d) overran", id)
		}
	}
	if c.Inject(Frame{ID: 99}) {
		t.Fatal("Inject into a full FIFO succeeded")
	}

	irq.Acquire()
	irq.RestoreAll(s)
	irq.Release()
	if diff := cmp.Diff([]uint32{1, 2, 3}, got); diff != "" {
		t.Fatalf("received ids mismatch (-want +got):\n%s", diff)
	}
}

func TestRunHeadlessDeliversScript(t *testing.T) {
	f1, _ := NewFrame(0x111, []byte{1, 2, 3})
	f2, _ := NewFrame(0x111, []byte{4})
	cfg := RunConfig{
		Host: HostConfig{LogOut: &bytes.Buffer{}},
		Script: []ScriptFrame{
			{At: 20 * time.Millisecond, Frame: f2},
			{At: 0, Frame: f1},
		},
	}

	var got []Frame
	prog := func(ctx context.Context, h HAL) error {
		h.CAN().SetRxHandler(func(f Frame) { got = append(got, f) })
		deadline := time.Now().Add(5 * time.Second)
		for len(got) < 2 && time.Now().Before(deadline) {
			h.Idle()
		}
		return nil
	}
	if err := RunHeadless(context.Background(), prog, cfg); err != nil {
		t.Fatalf("RunHeadless: %v", err)
	}
	if diff := cmp.Diff([]Frame{f1, f2}, got); diff != "" {
		t.Fatalf("frames mismatch (-want +got):\n%s", diff)
	}
}

func TestRunHeadlessStopsAfterDuration(t *testing.T) {
	cfg := RunConfig{Host: HostConfig{LogOut: &bytes.Buffer{}}, Duration: 30 * time.Millisecond}
	prog := func(ctx context.Context, h HAL) error {
		for ctx.Err() == nil {
			h.Idle()
		}
		return ctx.Err()
	}
	if err := RunHeadless(context.Background(), prog, cfg); err != nil {
		t.Fatalf("RunHeadless = %v, want nil", err)
	}
}
