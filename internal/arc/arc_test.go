package arc

import (
	"testing"

	"github.com/s0600204/network-audio-controller/internal/codec"
)

func TestDialectForSelectsByVersion(t *testing.T) {
	if DialectFor(codec.Version{Major: 2, Minor: 8, Patch: 2}) != DialectNew {
		t.Error("2.8.2 should select the new dialect")
	}
	if DialectFor(codec.Version{Major: 2, Minor: 8, Patch: 1}) != DialectLegacy {
		t.Error("2.8.1 should select the legacy dialect")
	}
	if DialectFor(codec.Version{Major: 2, Minor: 7, Patch: 9}) != DialectLegacy {
		t.Error("2.7.x should select the legacy dialect")
	}
	if DialectFor(codec.Version{Major: 3, Minor: 0, Patch: 0}) != DialectNew {
		t.Error("3.0.0 should select the new dialect")
	}
}

func TestFrameHeaderRoundTrip(t *testing.T) {
	v := codec.Version{Major: 2, Minor: 8, Patch: 2}
	frame := NewFrame(v, 0x1234, CmdChannelCounts, DirectionSend, []byte{0xAA, 0xBB})

	hdr, err := DecodeHeader(frame)
	if err != nil {
		t.Fatal(err)
	}
	if hdr.Version != v {
		t.Errorf("version: got %v, want %v", hdr.Version, v)
	}
	if hdr.MessageIndex != 0x1234 {
		t.Errorf("message index: got %#x, want 0x1234", hdr.MessageIndex)
	}
	if hdr.Command != CmdChannelCounts {
		t.Errorf("command: got %#x, want %#x", hdr.Command, CmdChannelCounts)
	}
	if hdr.Direction != DirectionSend {
		t.Errorf("direction: got %v, want send", hdr.Direction)
	}
	if int(hdr.Length) != len(frame) {
		t.Errorf("length field %d does not match actual frame length %d", hdr.Length, len(frame))
	}
}

func TestSetLatency10ms(t *testing.T) {
	// Scenario 3: set_latency(10) -> payload contains 0x00989680 twice, at
	// the offsets its own forward pointers claim.
	body := BuildSetLatency(10)
	if len(body) != 30 {
		t.Fatalf("expected 30-byte body, got %d", len(body))
	}
	first, err := codec.DecodeInt32(body, 22)
	if err != nil {
		t.Fatal(err)
	}
	second, err := codec.DecodeInt32(body, 26)
	if err != nil {
		t.Fatal(err)
	}
	if first != 0x00989680 || second != 0x00989680 {
		t.Errorf("got %#08x, %#08x; want 0x00989680 twice", first, second)
	}

	ptr1, err := codec.DecodeInt16(body, 4)
	if err != nil {
		t.Fatal(err)
	}
	ptr2, err := codec.DecodeInt16(body, 12)
	if err != nil {
		t.Fatal(err)
	}
	if int(ptr1) != HeaderLength+22 || int(ptr2) != HeaderLength+26 {
		t.Errorf("pointers = %d, %d; want %d, %d", ptr1, ptr2, HeaderLength+22, HeaderLength+26)
	}
}

func TestPageCountBoundaries(t *testing.T) {
	cases := map[int]int{
		0: 1, 1: 1, 15: 1, 16: 1, 17: 2, 31: 2, 32: 2, 33: 3, 64: 4,
	}
	for total, want := range cases {
		if got := PageCount(total); got != want {
			t.Errorf("PageCount(%d) = %d, want %d", total, got, want)
		}
	}
}

func TestChannelsOnPageSumsToTotal(t *testing.T) {
	for _, total := range []int{0, 1, 15, 16, 17, 31, 32, 33, 64} {
		pages := PageCount(total)
		sum := 0
		for p := 0; p < pages; p++ {
			sum += ChannelsOnPage(p, total)
		}
		if sum != total {
			t.Errorf("total=%d: pages summed to %d, want %d", total, sum, total)
		}
	}
}

func TestNameValidatorIdempotent(t *testing.T) {
	names := []string{"Stage-Left", "in3", "mixer-01", "a-very-long-channel-name-indeed"}
	for _, n := range names {
		existing := []string{"in3"}
		once := Dedupe(n, existing)
		twice := Dedupe(once, append(existing, once))
		if len(once) > MaxNameLength {
			t.Errorf("Dedupe(%q) exceeded max length: %q", n, once)
		}
		if again := Dedupe(once, existing); again != once {
			t.Errorf("Dedupe not idempotent for %q: %q then %q", n, once, again)
		}
		if twice == once {
			t.Errorf("Dedupe(%q) against a set containing it should yield a distinct variant", once)
		}
	}
}

func TestDedupeAppendsSuffix(t *testing.T) {
	got := Dedupe("in3", []string{"in3"})
	if got != "in3~2" {
		t.Errorf("got %q, want in3~2", got)
	}
	got2 := Dedupe("in3", []string{"in3", "in3~2"})
	if got2 != "in3~3" {
		t.Errorf("got %q, want in3~3", got2)
	}
}

func TestDedupeTruncatesToFit(t *testing.T) {
	base := "123456789012345678901234567890a" // 31 chars, exactly the max
	got := Dedupe(base[:31], []string{base[:31]})
	if len(got) > MaxNameLength {
		t.Errorf("deduped name exceeds max length: %q (%d bytes)", got, len(got))
	}
}

func TestValidateDeviceNameRejectsLeadingHyphen(t *testing.T) {
	if err := ValidateDeviceName("-mixer"); err == nil {
		t.Error("expected error for leading hyphen")
	}
	if err := ValidateDeviceName("mixer-"); err == nil {
		t.Error("expected error for trailing hyphen")
	}
	if err := ValidateDeviceName("mixer.local"); err == nil {
		t.Error("expected error for '.' in device name")
	}
	if err := ValidateDeviceName("mixer-01"); err != nil {
		t.Errorf("expected mixer-01 to be valid, got %v", err)
	}
}

func TestValidateChannelNameRejectsDisallowedChars(t *testing.T) {
	for _, n := range []string{"a=b", "a@b", "a.b"} {
		if err := ValidateChannelName(n); err == nil {
			t.Errorf("expected error for %q", n)
		}
	}
}

func TestSetRXChannelNamePointerOffset(t *testing.T) {
	// Scenario 1: rename RX channel 3 to "Stage-Left". The body's name
	// pointer must resolve to "Stage-Left\x00" at the documented offset 24.
	body := BuildSetChannelName(3, "Stage-Left")
	frame := make([]byte, HeaderLength)
	frame = append(frame, body...)

	name, err := codec.DecodeString(frame, HeaderLength+2)
	if err != nil {
		t.Fatal(err)
	}
	if name != "Stage-Left" {
		t.Errorf("got %q, want Stage-Left", name)
	}

	ptr, err := codec.DecodeInt16(frame, HeaderLength+2)
	if err != nil {
		t.Fatal(err)
	}
	if int(ptr) != 24 {
		t.Errorf("name pointer = %d, want offset 24", ptr)
	}
}

func TestSubscribeBodyResolvesTargetStrings(t *testing.T) {
	// Scenario 2: subscribe RX 1 to TX "out2" on device "mic".
	body := BuildSubscribe(1, "out2", "mic", DialectLegacy)
	frame := make([]byte, HeaderLength)
	frame = append(frame, body...)

	chanName, err := codec.DecodeString(frame, HeaderLength+2)
	if err != nil {
		t.Fatal(err)
	}
	devName, err := codec.DecodeString(frame, HeaderLength+4)
	if err != nil {
		t.Fatal(err)
	}
	if chanName != "out2" || devName != "mic" {
		t.Errorf("got chan=%q dev=%q, want out2/mic", chanName, devName)
	}
}

func TestChannelCountsOffsets(t *testing.T) {
	frame := make([]byte, 16)
	frame = codec.EncodeInt16(frame[:12], 7)  // tx at [12:14]
	frame = codec.EncodeInt16(frame, 17)      // rx at [14:16]

	counts, err := ParseChannelCounts(frame)
	if err != nil {
		t.Fatal(err)
	}
	if counts.TX != 7 || counts.RX != 17 {
		t.Errorf("got %+v, want {RX:17 TX:7}", counts)
	}
}
