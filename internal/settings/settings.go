// Package settings implements the Settings service: magic-framed,
// fire-and-forget device configuration commands (identify, model queries,
// sample rate, encoding, gain, AES67).
package settings

import (
	"net"
	"strconv"

	"github.com/s0600204/network-audio-controller/internal/codec"
	"github.com/s0600204/network-audio-controller/internal/ncerr"
)

// PeerPort is the UDP port every Dante device listens for Settings
// requests on.
const PeerPort = 8700

// LocalPort is this client's receive port, following the peer_port + 40000
// local-binding convention.
const LocalPort = PeerPort + 40000

// Magic is the fixed 2-byte marker every Settings frame opens with.
const Magic uint16 = 0xFFFF

// Literal is the fixed ASCII marker (no null terminator) every Settings
// frame carries after the MAC/hextet fields.
const Literal = "Audinate"

// HeaderLength is the size of the fixed Settings preamble used for pointer
// math into any trailing string table: magic(2) length(2) index(2) tag(2)
// mac(6) hextet(2) "Audinate"(8) = 24.
const HeaderLength = 24

// AES67Tag is the extra 2-byte tag appended when enabling/disabling AES67.
const AES67Tag uint16 = 0x22DC

// There is no separate command-code field in a Settings frame: a command's
// identity is entirely carried by the leading bytes of its own payload (the
// two hextets below), immediately following the 24-byte preamble.
const (
	prefixIdentify      uint16 = 0x0731
	payloadIdentify     uint16 = 0x0063
	prefixGetModel      uint16 = 0x0731
	payloadGetModel     uint16 = 0x0061
	prefixGetMakeModel  uint16 = 0x0731
	payloadGetMakeModel uint16 = 0x00c1
	prefixSampleRate    uint16 = 0x0727
	payloadSampleRate   uint16 = 0x0081
	prefixEncoding      uint16 = 0x0727
	payloadEncoding     uint16 = 0x0083
	prefixGain          uint16 = 0x0727
	payloadGain         uint16 = 0x100a
	prefixAES67         uint16 = 0x0734
	payloadAES67        uint16 = 0x1006
)

// ZeroMAC is the all-null address the identify command's header carries;
// the real protocol never substitutes a real interface address here.
var ZeroMAC = net.HardwareAddr{0x00, 0x00, 0x00, 0x00, 0x00, 0x00}

// AES67PseudoMAC is the placeholder MAC used in the AES67-enable/disable
// frame's header, per observed wire traces.
var AES67PseudoMAC = net.HardwareAddr{0x52, 0x54, 0x00, 0x38, 0x5e, 0xba}

// GainPseudoMAC is the placeholder MAC used in set-gain and
// set-sample-rate frames, per observed wire traces.
var GainPseudoMAC = net.HardwareAddr{0x52, 0x54, 0x00, 0x00, 0x00, 0x00}

// ChannelTypeRX and ChannelTypeTX select which side of a subscription
// BuildSetGain's channel-type field addresses.
const (
	ChannelTypeRX byte = 0
	ChannelTypeTX byte = 1
)

// AllowedSampleRates is the closed set of sample rates (Hz) a device may be
// configured to.
var AllowedSampleRates = map[int]bool{
	44100: true, 48000: true, 88200: true, 96000: true, 176400: true, 192000: true,
}

// AllowedEncodings is the closed set of bit depths a device may be
// configured to.
var AllowedEncodings = map[int]bool{16: true, 24: true, 32: true}

// ValidateSampleRate rejects any rate outside AllowedSampleRates before a
// packet is ever built.
func ValidateSampleRate(rate int) error {
	if !AllowedSampleRates[rate] {
		return &ncerr.InvalidInputError{Field: "sample_rate", Value: strconv.Itoa(rate), Reason: "not one of 44100/48000/88200/96000/176400/192000"}
	}
	return nil
}

// ValidateEncoding rejects any bit depth outside AllowedEncodings.
func ValidateEncoding(bits int) error {
	if !AllowedEncodings[bits] {
		return &ncerr.InvalidInputError{Field: "encoding", Value: strconv.Itoa(bits), Reason: "not one of 16/24/32"}
	}
	return nil
}

// ValidateGainLevel rejects any level outside 1..5.
func ValidateGainLevel(level int) error {
	if level < 1 || level > 5 {
		return &ncerr.InvalidInputError{Field: "gain_level", Value: strconv.Itoa(level), Reason: "must be between 1 and 5"}
	}
	return nil
}

// buildHeader assembles the fixed 24-byte Settings preamble, with length
// patched in by the caller once the frame is complete. The hextet between
// the MAC and "Audinate" is a reserved field, always zero.
func buildHeader(idx uint16, tag uint16, mac net.HardwareAddr) []byte {
	h := codec.EncodeInt16(nil, Magic)
	h = codec.EncodeInt16(h, 0) // length placeholder
	h = codec.EncodeInt16(h, idx)
	h = codec.EncodeInt16(h, tag)
	h = codec.EncodeMAC(h, mac)
	h = codec.EncodeInt16(h, 0) // reserved
	h = append(h, []byte(Literal)...)
	return h
}

// NewFrame assembles a complete Settings frame: the magic-framed preamble
// directly followed by payload, with the length field patched in. payload
// carries its own command identity as its leading bytes.
func NewFrame(idx uint16, mac net.HardwareAddr, tag uint16, payload []byte) []byte {
	f := buildHeader(idx, tag, mac)
	f = append(f, payload...)
	total := codec.EncodeInt16(nil, uint16(len(f)))
	f[2], f[3] = total[0], total[1]
	return f
}

// BuildIdentify builds the trigger-identify payload.
func BuildIdentify() []byte {
	p := codec.EncodeInt16(nil, prefixIdentify)
	p = codec.EncodeInt16(p, payloadIdentify)
	p = codec.EncodeInt16(p, 0x0000)
	p = codec.EncodeInt16(p, 0x0064)
	return p
}

// BuildGetModel builds the get-dante-model payload.
func BuildGetModel() []byte {
	p := codec.EncodeInt16(nil, prefixGetModel)
	p = codec.EncodeInt16(p, payloadGetModel)
	p = codec.EncodeInt16(p, 0x0000)
	p = codec.EncodeInt16(p, 0x0000)
	return p
}

// BuildGetMakeModel builds the get-make-model payload.
func BuildGetMakeModel() []byte {
	p := codec.EncodeInt16(nil, prefixGetMakeModel)
	p = codec.EncodeInt16(p, payloadGetMakeModel)
	p = codec.EncodeInt16(p, 0x0000)
	p = codec.EncodeInt16(p, 0x0000)
	return p
}

// BuildSetSampleRate builds the set-sample-rate payload: the fixed prefix
// followed by the rate as a 4-byte integer.
func BuildSetSampleRate(rate int) []byte {
	p := codec.EncodeInt16(nil, prefixSampleRate)
	p = codec.EncodeInt16(p, payloadSampleRate)
	p = codec.EncodeInt16(p, 0x0000)
	p = codec.EncodeInt16(p, 0x0064)
	p = codec.EncodeInt16(p, 0x0000)
	p = codec.EncodeInt16(p, 0x0001)
	p = codec.EncodeInt32(p, uint32(rate))
	return p
}

// BuildSetEncoding builds the set-encoding payload: the fixed prefix
// followed by the bit depth itself (16/24/32), carried as a raw 2-byte
// integer rather than an index.
func BuildSetEncoding(bits int) []byte {
	p := codec.EncodeInt16(nil, prefixEncoding)
	p = codec.EncodeInt16(p, payloadEncoding)
	p = codec.EncodeInt16(p, 0x0000)
	p = codec.EncodeInt16(p, 0x0064)
	p = codec.EncodeInt16(p, 0x0000)
	p = codec.EncodeInt16(p, 0x0001)
	p = codec.EncodeInt16(p, 0x0000)
	p = codec.EncodeInt16(p, uint16(bits))
	return p
}

// gainChannelType is the 2-byte channel-type selector set_gain_level
// expects: 0x0102 for RX, 0x0201 for TX.
func gainChannelType(channelType byte) uint16 {
	if channelType == ChannelTypeTX {
		return 0x0201
	}
	return 0x0102
}

// BuildSetGain builds the set-gain-level payload: the fixed prefix, the
// channel-type selector, channel number, and level.
func BuildSetGain(channelType byte, channelNumber, level int) []byte {
	p := codec.EncodeInt16(nil, prefixGain)
	p = codec.EncodeInt16(p, payloadGain)
	p = codec.EncodeInt16(p, 0x0000)
	p = codec.EncodeInt16(p, 0x0000)
	p = codec.EncodeInt16(p, 0x0001)
	p = codec.EncodeInt16(p, 0x0001)
	p = codec.EncodeInt16(p, 0x000c)
	p = codec.EncodeInt16(p, 0x0010)
	p = codec.EncodeInt16(p, gainChannelType(channelType))
	p = codec.EncodeInt16(p, 0x0000)
	p = codec.EncodeInt16(p, 0x0000)
	p = codec.EncodeInt16(p, uint16(channelNumber))
	p = codec.EncodeInt16(p, 0x0000)
	p = codec.EncodeInt16(p, uint16(level))
	return p
}

// BuildSetAES67 builds the AES67 enable/disable payload. Callers must pass
// AES67Tag as the frame tag and AES67PseudoMAC as the frame MAC.
func BuildSetAES67(enable bool) []byte {
	p := codec.EncodeInt16(nil, prefixAES67)
	p = codec.EncodeInt16(p, payloadAES67)
	p = codec.EncodeInt16(p, 0x0000)
	p = codec.EncodeInt16(p, 0x0064)
	p = codec.EncodeInt16(p, 0x0001)
	var v uint16
	if enable {
		v = 1
	}
	p = codec.EncodeInt16(p, v)
	return p
}
