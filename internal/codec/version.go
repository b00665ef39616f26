package codec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/s0600204/network-audio-controller/internal/ncerr"
)

// Version is a Dante protocol version triple, as exposed in each service's
// mDNS TXT record and packed into two bytes inside ARC/CMC packets.
type Version struct {
	Major int
	Minor int
	Patch int
}

// String renders the dotted form used in mDNS TXT records ("2.8.2").
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// AtLeast reports whether v >= other, compared lexicographically by
// (major, minor, patch).
func (v Version) AtLeast(other Version) bool {
	if v.Major != other.Major {
		return v.Major > other.Major
	}
	if v.Minor != other.Minor {
		return v.Minor > other.Minor
	}
	return v.Patch >= other.Patch
}

// DecodePacketVersion decodes the on-wire two-byte form used inside ARC/CMC
// packet headers: byte 0 is "MN" (major in the high nibble, minor in the
// low nibble), byte 1 is the patch level.
func DecodePacketVersion(src []byte, offset int) (Version, error) {
	if offset < 0 || offset+2 > len(src) {
		return Version{}, &ncerr.DecodeError{Offset: offset, Length: 2, Reason: "protocol version field out of range"}
	}
	mn := src[offset]
	return Version{
		Major: int(mn >> 4),
		Minor: int(mn & 0x0F),
		Patch: int(src[offset+1]),
	}, nil
}

// EncodePacketVersion appends the two-byte on-wire form of v to dst.
func EncodePacketVersion(dst []byte, v Version) []byte {
	mn := byte(v.Major&0x0F)<<4 | byte(v.Minor&0x0F)
	return append(dst, mn, byte(v.Patch))
}

// ParseTXTVersion parses the dotted-ASCII form found in mDNS TXT records
// ("arcp_vers" / "cmcp_vers" values, e.g. "2.8.2").
func ParseTXTVersion(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Version{}, &ncerr.DecodeError{Reason: fmt.Sprintf("malformed protocol version %q", s)}
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Version{}, &ncerr.DecodeError{Reason: fmt.Sprintf("malformed protocol version %q: %v", s, err)}
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}
