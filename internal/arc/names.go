package arc

import (
	"strconv"
	"strings"

	"github.com/s0600204/network-audio-controller/internal/ncerr"
)

// MaxNameLength is the maximum length, in bytes, of any channel or device
// name accepted by an ARC command.
const MaxNameLength = 31

// disallowedNameRunes are forbidden anywhere in a channel name.
const disallowedNameRunes = "=@."

// ValidateChannelName checks a candidate RX/TX channel name against the
// length and character rules in spec.md §4.3. It does not check for
// collisions; callers needing collision suffixing use Dedupe.
func ValidateChannelName(name string) error {
	if name == "" {
		return &ncerr.InvalidInputError{Field: "channel name", Value: name, Reason: "must not be empty"}
	}
	if len(name) > MaxNameLength {
		return &ncerr.InvalidInputError{Field: "channel name", Value: name, Reason: "exceeds 31 characters"}
	}
	if strings.ContainsAny(name, disallowedNameRunes) {
		return &ncerr.InvalidInputError{Field: "channel name", Value: name, Reason: "contains a disallowed character (= @ .)"}
	}
	if !isASCIIPrintable(name) {
		return &ncerr.InvalidInputError{Field: "channel name", Value: name, Reason: "must be printable ASCII"}
	}
	return nil
}

// ValidateDeviceName additionally restricts device names to
// [A-Za-z0-9-], disallowing a leading or trailing hyphen.
func ValidateDeviceName(name string) error {
	if err := ValidateChannelName(name); err != nil {
		return err
	}
	for _, r := range name {
		if !isDeviceNameRune(r) {
			return &ncerr.InvalidInputError{Field: "device name", Value: name, Reason: "must be [A-Za-z0-9-]"}
		}
	}
	if strings.HasPrefix(name, "-") || strings.HasSuffix(name, "-") {
		return &ncerr.InvalidInputError{Field: "device name", Value: name, Reason: "must not start or end with '-'"}
	}
	return nil
}

func isDeviceNameRune(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
		return true
	default:
		return false
	}
}

func isASCIIPrintable(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7E {
			return false
		}
	}
	return true
}

// Dedupe returns candidate unchanged if it does not collide (case-
// insensitively) with any name in existing; otherwise it appends "~2", "~3",
// … — truncating the base name as needed to keep the total at or under
// MaxNameLength — until it finds a name not already present.
func Dedupe(candidate string, existing []string) string {
	taken := make(map[string]bool, len(existing))
	for _, n := range existing {
		taken[strings.ToLower(n)] = true
	}
	if !taken[strings.ToLower(candidate)] {
		return candidate
	}
	for suffixN := 2; ; suffixN++ {
		suffix := suffixFor(suffixN)
		base := candidate
		if over := len(base) + len(suffix) - MaxNameLength; over > 0 {
			base = base[:len(base)-over]
		}
		attempt := base + suffix
		if !taken[strings.ToLower(attempt)] {
			return attempt
		}
	}
}

func suffixFor(n int) string {
	return "~" + strconv.Itoa(n)
}
