package settings

import (
	"net"
	"testing"

	"github.com/s0600204/network-audio-controller/internal/codec"
)

func TestFrameCarriesMagicAndLiteral(t *testing.T) {
	mac := net.HardwareAddr{1, 2, 3, 4, 5, 6}
	f := NewFrame(7, mac, 0, BuildIdentify())

	magic, err := codec.DecodeInt16(f, 0)
	if err != nil {
		t.Fatal(err)
	}
	if magic != Magic {
		t.Errorf("magic = %#x, want %#x", magic, Magic)
	}

	gotMAC, err := codec.DecodeMAC(f, 8)
	if err != nil {
		t.Fatal(err)
	}
	if gotMAC.String() != mac.String() {
		t.Errorf("mac = %v, want %v", gotMAC, mac)
	}

	literal := string(f[16:24])
	if literal != Literal {
		t.Errorf("literal = %q, want %q", literal, Literal)
	}
}

func TestValidateSampleRateAllowedSet(t *testing.T) {
	for rate := range AllowedSampleRates {
		if err := ValidateSampleRate(rate); err != nil {
			t.Errorf("rate %d should be valid: %v", rate, err)
		}
	}
	if err := ValidateSampleRate(22050); err == nil {
		t.Error("expected error for unsupported rate")
	}
}

func TestValidateEncodingAllowedSet(t *testing.T) {
	for bits := range AllowedEncodings {
		if err := ValidateEncoding(bits); err != nil {
			t.Errorf("encoding %d should be valid: %v", bits, err)
		}
	}
	if err := ValidateEncoding(8); err == nil {
		t.Error("expected error for unsupported encoding")
	}
}

func TestValidateGainLevelRange(t *testing.T) {
	for level := 1; level <= 5; level++ {
		if err := ValidateGainLevel(level); err != nil {
			t.Errorf("level %d should be valid: %v", level, err)
		}
	}
	if err := ValidateGainLevel(0); err == nil {
		t.Error("expected error for level 0")
	}
	if err := ValidateGainLevel(6); err == nil {
		t.Error("expected error for level 6")
	}
}

func TestSetAES67UsesPseudoMACAndTag(t *testing.T) {
	f := NewFrame(1, AES67PseudoMAC, AES67Tag, BuildSetAES67(true))
	tag, err := codec.DecodeInt16(f, 6)
	if err != nil {
		t.Fatal(err)
	}
	if tag != AES67Tag {
		t.Errorf("tag = %#x, want %#x", tag, AES67Tag)
	}

	gotMAC, err := codec.DecodeMAC(f, 8)
	if err != nil {
		t.Fatal(err)
	}
	if gotMAC.String() != AES67PseudoMAC.String() {
		t.Errorf("mac = %v, want %v", gotMAC, AES67PseudoMAC)
	}
}

func TestBuildIdentifyCarriesPayloadPrefix(t *testing.T) {
	p := BuildIdentify()
	prefix, err := codec.DecodeInt16(p, 0)
	if err != nil {
		t.Fatal(err)
	}
	command, err := codec.DecodeInt16(p, 2)
	if err != nil {
		t.Fatal(err)
	}
	if prefix != 0x0731 || command != 0x0063 {
		t.Errorf("identify prefix = %#x/%#x, want 0x0731/0x0063", prefix, command)
	}
}

func TestBuildSetGainEncodesChannelTypeSelector(t *testing.T) {
	rx := BuildSetGain(ChannelTypeRX, 3, 4)
	selector, err := codec.DecodeInt16(rx, 16)
	if err != nil {
		t.Fatal(err)
	}
	if selector != 0x0102 {
		t.Errorf("rx selector = %#x, want 0x0102", selector)
	}

	tx := BuildSetGain(ChannelTypeTX, 3, 4)
	selector, err = codec.DecodeInt16(tx, 16)
	if err != nil {
		t.Fatal(err)
	}
	if selector != 0x0201 {
		t.Errorf("tx selector = %#x, want 0x0201", selector)
	}
}

func TestBuildSetEncodingCarriesRawBitDepth(t *testing.T) {
	p := BuildSetEncoding(24)
	bits, err := codec.DecodeInt16(p, 14)
	if err != nil {
		t.Fatal(err)
	}
	if bits != 24 {
		t.Errorf("encoding field = %d, want 24", bits)
	}
}
