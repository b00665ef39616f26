// Package cmc implements the Control & Monitoring Channel service's volume
// subscribe/unsubscribe framing. It has no device-health probes.
package cmc

import (
	"net"

	"github.com/s0600204/network-audio-controller/internal/codec"
)

// PeerPort is the UDP port every Dante device listens for CMC requests on.
const PeerPort = 8800

// LocalPort is this client's receive port, following the peer_port + 40000
// local-binding convention.
const LocalPort = PeerPort + 40000

// HeaderLength mirrors the ARC frame header: VV VV LL LL II II CC CC DD DD.
const HeaderLength = 10

// CmdVolumeSubscribe and CmdVolumeUnsubscribe share the same command code —
// the device tells them apart by body shape, not by code (subscribe carries
// MAC+IP+port+name, unsubscribe carries only a name pointer).
const (
	CmdVolumeSubscribe   uint16 = 0x3010
	CmdVolumeUnsubscribe uint16 = 0x3010
)

// UnsupportedSentinel is the byte-15 value a volume-subscribe response uses
// to indicate the device does not support volume push notifications.
const UnsupportedSentinel = 0xFF

// BuildVolumeSubscribe builds a subscribe body carrying the caller's local
// MAC, local IPv4, and the port the Volume service listens for pushes on.
// Length is derived from the device name with a parity-dependent formula:
// 12 - (L + L%2) + 2L, where L = len(deviceName).
func BuildVolumeSubscribe(localMAC net.HardwareAddr, localIP net.IP, volumePort uint16, deviceName string) []byte {
	body := codec.EncodeMAC(nil, localMAC)
	ip4 := localIP.To4()
	if ip4 == nil {
		ip4 = net.IPv4zero.To4()
	}
	body = append(body, ip4...)
	body = codec.EncodeInt16(body, volumePort)

	l := len(deviceName)
	padLen := 12 - (l + l%2) + 2*l
	if padLen < 0 {
		padLen = 0
	}
	var table []byte
	table, ptr := codec.EncodeString(table, HeaderLength+len(body)+2+padLen, deviceName)
	body = codec.EncodeInt16(body, uint16(ptr))
	for i := 0; i < padLen; i++ {
		body = append(body, 0)
	}
	return append(body, table...)
}

// BuildVolumeUnsubscribe builds an unsubscribe body: just the device name
// pointer, no MAC/IP/port payload.
func BuildVolumeUnsubscribe(deviceName string) []byte {
	var table []byte
	table, ptr := codec.EncodeString(table, HeaderLength+2, deviceName)
	body := codec.EncodeInt16(nil, uint16(ptr))
	return append(body, table...)
}

// IsUnsupported reports whether a volume-subscribe response indicates the
// device declined the request (byte 15 == 0xFF).
func IsUnsupported(frame []byte) bool {
	return len(frame) > 15 && frame[15] == UnsupportedSentinel
}
