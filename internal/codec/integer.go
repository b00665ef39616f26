// Package codec implements the byte-level primitives shared by every Dante
// service's wire format: big-endian integers, null-terminated ASCII strings
// resolved through in-packet pointers, the protocol-version encoding, and
// MAC/interface lookups.
package codec

import "github.com/s0600204/network-audio-controller/internal/ncerr"

// DecodeInt reads a big-endian unsigned integer of length bytes (1, 2, or 4)
// starting at offset in src. length defaults to 2 when 0 is passed.
func DecodeInt(src []byte, offset, length int) (uint32, error) {
	if length == 0 {
		length = 2
	}
	if offset < 0 || length < 0 || offset+length > len(src) {
		return 0, &ncerr.DecodeError{Offset: offset, Length: length, Reason: "integer field out of range"}
	}

	var v uint32
	for i := 0; i < length; i++ {
		v = v<<8 | uint32(src[offset+i])
	}
	return v, nil
}

// EncodeInt appends n as a big-endian integer of the given length (1, 2, or
// 4 bytes) to dst and returns the extended slice.
func EncodeInt(dst []byte, n uint32, length int) []byte {
	if length == 0 {
		length = 2
	}
	for i := length - 1; i >= 0; i-- {
		dst = append(dst, byte(n>>(8*uint(i))))
	}
	return dst
}

// DecodeInt16 is a convenience wrapper for the common 2-byte case.
func DecodeInt16(src []byte, offset int) (uint16, error) {
	v, err := DecodeInt(src, offset, 2)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}

// DecodeInt32 is a convenience wrapper for the common 4-byte case.
func DecodeInt32(src []byte, offset int) (uint32, error) {
	return DecodeInt(src, offset, 4)
}

// EncodeInt16 appends n as a 2-byte big-endian integer.
func EncodeInt16(dst []byte, n uint16) []byte {
	return EncodeInt(dst, uint32(n), 2)
}

// EncodeInt32 appends n as a 4-byte big-endian integer.
func EncodeInt32(dst []byte, n uint32) []byte {
	return EncodeInt(dst, n, 4)
}
