package proto

import (
	"bytes"
	"testing"
)

func TestSingleFrame(t *testing.T) {
	f, ok := SingleFrame(KindTime, TimePayload(12, 30, 5))
	if !ok {
		t.Fatal("SingleFrame() ok = false")
	}
	want := [8]byte{4, 1, 0x12, 0x30, 0x05, 0, 0, 0}
	if f != want {
		t.Fatalf("SingleFrame() = % x, want % x", f, want)
	}

	kind, payload, ok := DecodeSingleFrame(f[:])
	if !ok || kind != KindTime || !bytes.Equal(payload, []byte{0x12, 0x30, 0x05}) {
		t.Fatalf("DecodeSingleFrame() = %v, % x, %v", kind, payload, ok)
	}

	if _, ok := SingleFrame(KindDate, make([]byte, 7)); ok {
		t.Fatal("SingleFrame() accepted an 8-byte body")
	}
}

func TestDecodeSingleFrameRejects(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"one byte", []byte{1}},
		{"zero length", []byte{0, 1, 2, 3, 0, 0, 0, 0}},
		{"length 8", []byte{8, 1, 2, 3, 4, 5, 6, 7}},
		{"length past data", []byte{5, 1, 2}},
		{"all zero", []byte{3, 0, 0, 0, 0, 0, 0, 0}},
	}
	for _, tt := range tests {
		if _, _, ok := DecodeSingleFrame(tt.data); ok {
			t.Errorf("%s: DecodeSingleFrame(% x) ok = true", tt.name, tt.data)
		}
	}
}

func TestDatePayload(t *testing.T) {
	p := DatePayload(2024, 2, 29)
	if !bytes.Equal(p, []byte{0x29, 0x02, 0x20, 0x24}) {
		t.Fatalf("DatePayload() = % x", p)
	}
	y, m, d, ok := DecodeDatePayload(p)
	if !ok || y != 2024 || m != 2 || d != 29 {
		t.Fatalf("DecodeDatePayload() = %d-%d-%d, %v", y, m, d, ok)
	}
	if _, _, _, ok := DecodeDatePayload([]byte{0x1A, 0x02, 0x20, 0x24}); ok {
		t.Fatal("DecodeDatePayload accepted a non-BCD digit")
	}
	if _, _, _, ok := DecodeDatePayload(p[:3]); ok {
		t.Fatal("DecodeDatePayload accepted a short payload")
	}
}

func TestTimeAndAlarmPayload(t *testing.T) {
	h, m, s, ok := DecodeTimePayload(TimePayload(23, 59, 58))
	if !ok || h != 23 || m != 59 || s != 58 {
		t.Fatalf("time round trip = %d:%d:%d, %v", h, m, s, ok)
	}
	h, m, ok = DecodeAlarmPayload(AlarmPayload(7, 15))
	if !ok || h != 7 || m != 15 {
		t.Fatalf("alarm round trip = %d:%d, %v", h, m, ok)
	}
	if _, _, ok := DecodeAlarmPayload([]byte{0x07}); ok {
		t.Fatal("DecodeAlarmPayload accepted one byte")
	}
}

func TestReplyFrame(t *testing.T) {
	f := ReplyFrame(Nak)
	code, ok := DecodeReplyFrame(f[:])
	if !ok || code != Nak {
		t.Fatalf("DecodeReplyFrame() = %#x, %v", code, ok)
	}
	if _, ok := DecodeReplyFrame([]byte{2, Ack}); ok {
		t.Fatal("DecodeReplyFrame accepted length 2")
	}
}

func TestKindString(t *testing.T) {
	if KindAlarm.String() != "alarm" || Kind(9).String() != "unknown" {
		t.Fatalf("Kind strings: %s %s", KindAlarm, Kind(9))
	}
}
