package arc

import (
	"github.com/s0600204/network-audio-controller/internal/codec"
	"github.com/s0600204/network-audio-controller/internal/ncerr"
)

// Header is the 10-byte fixed preamble of every ARC frame:
// VV VV LL LL II II CC CC DD DD.
type Header struct {
	Version      codec.Version
	Length       uint16
	MessageIndex uint16
	Command      uint16
	Direction    Direction
}

// DecodeHeader parses the fixed header at the start of src.
func DecodeHeader(src []byte) (Header, error) {
	if len(src) < HeaderLength {
		return Header{}, &ncerr.DecodeError{Offset: 0, Length: HeaderLength, Reason: "frame shorter than ARC header"}
	}
	v, err := codec.DecodePacketVersion(src, 0)
	if err != nil {
		return Header{}, err
	}
	length, err := codec.DecodeInt16(src, 2)
	if err != nil {
		return Header{}, err
	}
	idx, err := codec.DecodeInt16(src, 4)
	if err != nil {
		return Header{}, err
	}
	cmd, err := codec.DecodeInt16(src, 6)
	if err != nil {
		return Header{}, err
	}
	dir, err := codec.DecodeInt16(src, 8)
	if err != nil {
		return Header{}, err
	}
	return Header{
		Version:      v,
		Length:       length,
		MessageIndex: idx,
		Command:      cmd,
		Direction:    Direction(dir),
	}, nil
}

// NewFrame assembles a complete ARC frame: header followed by body, with the
// length field filled in once the total size is known.
func NewFrame(version codec.Version, msgIdx, command uint16, direction Direction, body []byte) []byte {
	frame := make([]byte, 0, HeaderLength+len(body))
	frame = codec.EncodePacketVersion(frame, version)
	frame = codec.EncodeInt16(frame, 0) // length placeholder, patched below
	frame = codec.EncodeInt16(frame, msgIdx)
	frame = codec.EncodeInt16(frame, command)
	frame = codec.EncodeInt16(frame, uint16(direction))
	frame = append(frame, body...)

	total := uint16(len(frame))
	lenBytes := codec.EncodeInt16(nil, total)
	frame[2], frame[3] = lenBytes[0], lenBytes[1]
	return frame
}
