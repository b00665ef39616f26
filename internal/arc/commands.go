package arc

import (
	"github.com/s0600204/network-audio-controller/internal/codec"
)

// ChannelCounts is the parsed response to CmdChannelCounts.
type ChannelCounts struct {
	RX int
	TX int
}

// ParseChannelCounts reads the RX/TX channel counts out of a
// CmdChannelCounts response body: tx at [12:14], rx at [14:16].
func ParseChannelCounts(frame []byte) (ChannelCounts, error) {
	tx, err := codec.DecodeInt16(frame, 12)
	if err != nil {
		return ChannelCounts{}, err
	}
	rx, err := codec.DecodeInt16(frame, 14)
	if err != nil {
		return ChannelCounts{}, err
	}
	return ChannelCounts{RX: int(rx), TX: int(tx)}, nil
}

// BuildSetDeviceName builds a CmdSetDeviceName body. An empty name resets
// the device to its factory name.
func BuildSetDeviceName(name string) []byte {
	if name == "" {
		return nil
	}
	var table []byte
	table, ptr := codec.EncodeString(table, HeaderLength+2, name)
	body := codec.EncodeInt16(nil, uint16(ptr))
	return append(body, table...)
}

// ParseDeviceName extracts the device name from a CmdGetDeviceName
// response. Some firmware places it at offset 10 via pointer resolution;
// older firmware writes the ASCII tail directly. Both are probed, in that
// order, and the first non-empty result wins.
func ParseDeviceName(frame []byte) (string, error) {
	if name, err := codec.DecodeString(frame, HeaderLength); err == nil && name != "" {
		return name, nil
	}
	if len(frame) > HeaderLength {
		end := len(frame)
		for end > HeaderLength && frame[end-1] == 0 {
			end--
		}
		if end > HeaderLength {
			return string(frame[HeaderLength:end]), nil
		}
	}
	return "", nil
}

// DeviceInfo is the parsed response to CmdDeviceInfo.
type DeviceInfo struct {
	Name         string
	Model        string
	Manufacturer string
	Debug        string
}

// ParseDeviceInfo reads the four pointer-resolved strings a CmdDeviceInfo
// response carries, each at a fixed header offset.
func ParseDeviceInfo(frame []byte) (DeviceInfo, error) {
	name, err := codec.DecodeString(frame, 10)
	if err != nil {
		return DeviceInfo{}, err
	}
	model, err := codec.DecodeString(frame, 12)
	if err != nil {
		return DeviceInfo{}, err
	}
	mfr, err := codec.DecodeString(frame, 14)
	if err != nil {
		return DeviceInfo{}, err
	}
	debug, err := codec.DecodeString(frame, 16)
	if err != nil {
		return DeviceInfo{}, err
	}
	return DeviceInfo{Name: name, Model: model, Manufacturer: mfr, Debug: debug}, nil
}

// BuildSetLatency builds a CmdSetLatency body. Latency is given in
// milliseconds and converted to nanoseconds, which is then written twice
// into the body (at offsets 22 and 26) — the two leading hextets at offsets
// 4 and 12 are forward pointers giving the frame-absolute location of each
// copy, surrounded by opaque hextets observed in wire traces and otherwise
// unexplained.
func BuildSetLatency(ms int) []byte {
	ns := uint32(ms) * 1_000_000
	body := codec.EncodeInt16(nil, 0x0503)
	body = codec.EncodeInt16(body, 0x8205)
	body = codec.EncodeInt16(body, uint16(HeaderLength+22)) // location of first latency copy below
	body = codec.EncodeInt16(body, 0x0211)
	body = codec.EncodeInt16(body, 0x0010)
	body = codec.EncodeInt16(body, 0x8301)
	body = codec.EncodeInt16(body, uint16(HeaderLength+26)) // location of second latency copy below
	body = codec.EncodeInt16(body, 0x8219)
	body = codec.EncodeInt16(body, 0x8301)
	body = codec.EncodeInt16(body, 0x8302)
	body = codec.EncodeInt16(body, 0x8306)
	body = codec.EncodeInt32(body, ns)
	body = codec.EncodeInt32(body, ns)
	return body
}

// BuildRXPageRequest builds the pagination body for an RX channel page
// request. The legacy dialect encodes "00 01 | (page<<4 | 1) | 0000"; the
// new dialect uses a longer fixed skeleton with the page number in the same
// (page<<4 | 1) hextet.
func BuildRXPageRequest(page int, d Dialect) []byte {
	if d == DialectLegacy {
		body := codec.EncodeInt16(nil, 0x0001)
		body = codec.EncodeInt16(body, uint16(page<<4|1))
		body = codec.EncodeInt16(body, 0x0000)
		return body
	}
	body := codec.EncodeInt16(nil, 0x0001)
	body = codec.EncodeInt16(body, uint16(page<<4|1))
	body = codec.EncodeInt16(body, 0x0000)
	body = codec.EncodeInt16(body, 0x0000)
	body = codec.EncodeInt16(body, 0x0000)
	return body
}

// BuildTXPageRequest builds the pagination body for a TX channel page
// request; layout mirrors BuildRXPageRequest.
func BuildTXPageRequest(page int, d Dialect) []byte {
	return BuildRXPageRequest(page, d)
}

// BuildSetChannelName builds a set-name body (shared shape for RX and TX):
// a 2-byte channel number, the name pointer, zero-valued trailing padding,
// then the pointer-resolved name string at frame offset 24.
func BuildSetChannelName(channelNumber int, name string) []byte {
	const padding = 10
	const fixedLen = 4 + padding // channel number (2) + name pointer (2) + padding
	var table []byte
	table, ptr := codec.EncodeString(table, HeaderLength+fixedLen, name)
	body := codec.EncodeInt16(nil, uint16(channelNumber))
	body = codec.EncodeInt16(body, uint16(ptr))
	body = append(body, make([]byte, padding)...)
	return append(body, table...)
}

// BuildSubscribe builds a subscribe body: the RX channel number, then two
// offsets pointing forward into the body at the appended TX channel name
// and TX device name strings, plus dialect-dependent fixed padding.
func BuildSubscribe(rxChannelNumber int, txChannelName, txDeviceName string, d Dialect) []byte {
	padding := 4
	if d == DialectNew {
		padding = 8
	}
	fixedLen := 2 + 2 + 2 + padding // rx number + two string pointers + padding
	var table []byte
	table, chanPtr := codec.EncodeString(table, HeaderLength+fixedLen, txChannelName)
	table, devPtr := codec.EncodeString(table, HeaderLength+fixedLen, txDeviceName)

	body := codec.EncodeInt16(nil, uint16(rxChannelNumber))
	body = codec.EncodeInt16(body, uint16(chanPtr))
	body = codec.EncodeInt16(body, uint16(devPtr))
	for i := 0; i < padding; i++ {
		body = append(body, 0)
	}
	return append(body, table...)
}

// BuildUnsubscribe builds an unsubscribe body: just the RX channel number,
// with no TX target.
func BuildUnsubscribe(rxChannelNumber int) []byte {
	return codec.EncodeInt16(nil, uint16(rxChannelNumber))
}
