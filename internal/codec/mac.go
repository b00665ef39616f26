package codec

import (
	"net"

	"github.com/s0600204/network-audio-controller/internal/ncerr"
)

// DecodeMAC reads the 6-byte hardware address at offset in src.
func DecodeMAC(src []byte, offset int) (net.HardwareAddr, error) {
	if offset < 0 || offset+6 > len(src) {
		return nil, &ncerr.DecodeError{Offset: offset, Length: 6, Reason: "MAC address field out of range"}
	}
	mac := make(net.HardwareAddr, 6)
	copy(mac, src[offset:offset+6])
	return mac, nil
}

// EncodeMAC appends the 6 bytes of mac to dst. A mac shorter than 6 bytes is
// zero-padded; a longer one is truncated.
func EncodeMAC(dst []byte, mac net.HardwareAddr) []byte {
	var buf [6]byte
	copy(buf[:], mac)
	return append(dst, buf[:]...)
}

// LocalInterfaceFor scans the host's network interfaces for the adapter
// whose IPv4 subnet contains peer, returning that adapter's own IPv4 address
// and hardware address. This is how a CMC volume-subscribe or a Settings
// AES67 frame reports "the interface I'll be heard on" back to a device on
// the same LAN. When no adapter's subnet contains peer (peer is routed, or
// sits behind NAT relative to this host), the first up, non-loopback
// adapter with an IPv4 address is returned instead.
func LocalInterfaceFor(peer net.IP) (net.IP, net.HardwareAddr, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, nil, err
	}

	var fallbackIP net.IP
	var fallbackMAC net.HardwareAddr

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			ip4 := ipNet.IP.To4()
			if ip4 == nil {
				continue
			}
			if fallbackIP == nil {
				fallbackIP = ip4
				fallbackMAC = iface.HardwareAddr
			}
			if ipNet.Contains(peer) {
				return ip4, iface.HardwareAddr, nil
			}
		}
	}

	if fallbackIP == nil {
		return nil, nil, &ncerr.NotFoundError{Kind: "network interface", Key: peer.String()}
	}
	return fallbackIP, fallbackMAC, nil
}
