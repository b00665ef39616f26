package codec

import "github.com/s0600204/network-audio-controller/internal/ncerr"

// Packets carry a fixed header followed by a trailing string table. String
// fields inside the header are 2-byte offsets, absolute from packet start,
// into that table; a zero pointer means "absent". Table entries are 7-bit
// ASCII terminated by a single null byte and are never interior-null.

// DecodeString follows the 2-byte pointer at offset within src, returning
// the ASCII string up to (not including) its terminating null byte. A zero
// pointer, or a pointer pointing at a null byte, decodes to "".
func DecodeString(src []byte, offset int) (string, error) {
	ptr, err := DecodeInt16(src, offset)
	if err != nil {
		return "", err
	}
	return DecodeStringAt(src, int(ptr))
}

// DecodeStringAt reads the null-terminated ASCII string starting at the
// absolute offset ptr. ptr == 0 yields ""; a negative ptr or one at or past
// len(src) is a DecodeError.
func DecodeStringAt(src []byte, ptr int) (string, error) {
	if ptr == 0 {
		return "", nil
	}
	if ptr < 0 || ptr >= len(src) {
		return "", &ncerr.DecodeError{Offset: ptr, Length: 0, Reason: "string pointer out of range"}
	}

	end := ptr
	for end < len(src) && src[end] != 0 {
		end++
	}
	return string(src[ptr:end]), nil
}

// EncodeString appends s and a single null terminator to table, returning
// the extended table and the absolute offset (base + original length of
// table) at which s now begins — to be written back as a 2-byte pointer by
// the caller.
func EncodeString(table []byte, base int, s string) (newTable []byte, ptr int) {
	ptr = base + len(table)
	table = append(table, []byte(s)...)
	table = append(table, 0)
	return table, ptr
}
