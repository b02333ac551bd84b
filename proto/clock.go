package proto

// TimePayload encodes a KindTime request.
//
// Layout (BCD):
//   - u8: hours
//   - u8: minutes
//   - u8: seconds
func TimePayload(hour, minute, second uint8) []byte {
	return []byte{ToBCD(hour), ToBCD(minute), ToBCD(second)}
}

// DecodeTimePayload decodes a TimePayload. Range checks are left to the
// caller.
func DecodeTimePayload(b []byte) (hour, minute, second uint8, ok bool) {
	if len(b) < 3 {
		return 0, 0, 0, false
	}
	var v [3]uint8
	if !decodeBCD(b[:3], v[:]) {
		return 0, 0, 0, false
	}
	return v[0], v[1], v[2], true
}

// DatePayload encodes a KindDate request.
//
// Layout (BCD):
//   - u8: day of month
//   - u8: month
//   - u8: century
//   - u8: year of century
func DatePayload(year uint16, month, day uint8) []byte {
	return []byte{ToBCD(day), ToBCD(month), ToBCD(uint8(year / 100)), ToBCD(uint8(year % 100))}
}

// DecodeDatePayload decodes a DatePayload.
func DecodeDatePayload(b []byte) (year uint16, month, day uint8, ok bool) {
	if len(b) < 4 {
		return 0, 0, 0, false
	}
	var v [4]uint8
	if !decodeBCD(b[:4], v[:]) {
		return 0, 0, 0, false
	}
	return uint16(v[2])*100 + uint16(v[3]), v[1], v[0], true
}

// AlarmPayload encodes a KindAlarm request.
//
// Layout (BCD):
//   - u8: hours
//   - u8: minutes
func AlarmPayload(hour, minute uint8) []byte {
	return []byte{ToBCD(hour), ToBCD(minute)}
}

// DecodeAlarmPayload decodes an AlarmPayload.
func DecodeAlarmPayload(b []byte) (hour, minute uint8, ok bool) {
	if len(b) < 2 {
		return 0, 0, false
	}
	var v [2]uint8
	if !decodeBCD(b[:2], v[:]) {
		return 0, 0, false
	}
	return v[0], v[1], true
}

// ToBCD packs v (0..99) into two BCD digits.
func ToBCD(v uint8) byte {
	return (v/10)<<4 | v%10
}

// FromBCD unpacks two BCD digits.
func FromBCD(b byte) (uint8, bool) {
	hi, lo := b>>4, b&0x0F
	if hi > 9 || lo > 9 {
		return 0, false
	}
	return hi*10 + lo, true
}

func decodeBCD(src []byte, dst []uint8) bool {
	for i, b := range src {
		v, ok := FromBCD(b)
		if !ok {
			return false
		}
		dst[i] = v
	}
	return true
}
