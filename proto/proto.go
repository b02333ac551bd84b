// Package proto defines the CAN wire format of the clock: ISO-TP single
// frames carrying BCD time, date and alarm requests, and one-byte replies.
package proto

// Standard identifiers used by the clock.
const (
	RequestID uint32 = 0x111
	ReplyID   uint32 = 0x122
)

// Reply codes.
const (
	Ack byte = 0x55
	Nak byte = 0xAA
)

// Kind identifies the request carried in the first data byte of a single
// frame.
type Kind uint8

const (
	KindNone Kind = iota
	KindTime
	KindDate
	KindAlarm
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindTime:
		return "time"
	case KindDate:
		return "date"
	case KindAlarm:
		return "alarm"
	default:
		return "unknown"
	}
}

// MaxSingleFrame is the largest data length of a classic CAN single frame.
const MaxSingleFrame = 7

// SingleFrame encodes kind and payload as a padded 8-byte single frame.
//
// Layout:
//   - u8: data length n (1..7), counting the kind byte
//   - u8: kind
//   - bytes: payload
func SingleFrame(kind Kind, payload []byte) (out [8]byte, ok bool) {
	if len(payload) > MaxSingleFrame-1 {
		return out, false
	}
	out[0] = byte(1 + len(payload))
	out[1] = byte(kind)
	copy(out[2:], payload)
	return out, true
}

// DecodeSingleFrame decodes a SingleFrame. Frames whose length is out of range
// or whose data bytes are all zero are rejected.
func DecodeSingleFrame(data []byte) (kind Kind, payload []byte, ok bool) {
	if len(data) < 2 {
		return 0, nil, false
	}
	n := int(data[0])
	if n < 1 || n > MaxSingleFrame || n > len(data)-1 {
		return 0, nil, false
	}
	body := data[1 : 1+n]
	zero := true
	for _, b := range body {
		if b != 0 {
			zero = false
			break
		}
	}
	if zero {
		return 0, nil, false
	}
	return Kind(body[0]), body[1:], true
}

// ReplyFrame encodes a one-byte reply as a padded single frame.
func ReplyFrame(code byte) [8]byte {
	return [8]byte{1, code}
}

// DecodeReplyFrame decodes a ReplyFrame.
func DecodeReplyFrame(data []byte) (code byte, ok bool) {
	if len(data) < 2 || data[0] != 1 {
		return 0, false
	}
	return data[1], true
}
