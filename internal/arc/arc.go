// Package arc implements the Audio Routing Channel service: the Dante
// control protocol's device-to-device channel and subscription commands.
package arc

import "github.com/s0600204/network-audio-controller/internal/codec"

// PeerPort is the UDP port every Dante device listens for ARC requests on.
const PeerPort = 4440

// LocalPort is this client's receive port, following the service's
// peer_port + 40000 local-binding convention.
const LocalPort = PeerPort + 40000

// HeaderLength is the size of the fixed ARC frame header, before any body.
const HeaderLength = 10

// Dialect selects which of the two observed ARC packet layouts to build and
// parse: devices at protocol version 2.8.2 and above use the "new" layout;
// 2.7.x and 2.8.1 use the "legacy" one.
type Dialect int

const (
	DialectLegacy Dialect = iota
	DialectNew
)

// minNewDialectVersion is the first protocol version known to use the new
// ARC packet layout.
var minNewDialectVersion = codec.Version{Major: 2, Minor: 8, Patch: 2}

// DialectFor selects the packet dialect for a device's advertised ARC
// protocol version.
func DialectFor(v codec.Version) Dialect {
	if v.AtLeast(minNewDialectVersion) {
		return DialectNew
	}
	return DialectLegacy
}

// Direction is the DD DD field: whether a frame is a request or a reply.
type Direction uint16

const (
	DirectionSend Direction = 0x0000
	DirectionReply Direction = 0x0001
)
