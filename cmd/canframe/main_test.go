package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRunEncodes(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"time", "12:30:05"}, "04 01 12 30 05 00 00 00\n"},
		{[]string{"date", "2024-02-29"}, "05 02 29 02 20 24 00 00\n"},
		{[]string{"alarm", "07:15"}, "03 03 07 15 00 00 00 00\n"},
		{[]string{"-yaml", "-at", "1500ms", "alarm", "07:15"}, "- at: 1.5s\n  id: 0x111\n  data: \"03 03 07 15 00 00 00 00\"\n"},
		{[]string{"reply", "01 55 00 00 00 00 00 00"}, "ack\n"},
		{[]string{"reply", "01aa"}, "nak\n"},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		if err := run(tt.args, &out); err != nil {
			t.Fatalf("run(%q): %v", tt.args, err)
		}
		if out.String() != tt.want {
			t.Fatalf("run(%q) = %q, want %q", tt.args, out.String(), tt.want)
		}
	}
}

func TestRunRejects(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{nil, "usage:"},
		{[]string{"time", "25:00:00"}, "time:"},
		{[]string{"date", "2024-13-01"}, "date:"},
		{[]string{"snooze", "5"}, "unknown request"},
		{[]string{"reply", "02 55"}, "not a reply frame"},
		{[]string{"-bogus", "time", "12:00:00"}, "usage:"},
	}
	for _, tt := range tests {
		err := run(tt.args, &bytes.Buffer{})
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("run(%q) = %v, want error containing %q", tt.args, err, tt.want)
		}
	}
}
