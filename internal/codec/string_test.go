package codec

import "testing"

func TestStringRoundTrip(t *testing.T) {
	names := []string{"", "Mixer-01", "a", "Studio A Output 17"}

	var table []byte
	base := 16 // pretend the fixed header is 16 bytes
	ptrs := make([]int, len(names))
	for i, n := range names {
		var ptr int
		table, ptr = EncodeString(table, base, n)
		ptrs[i] = ptr
	}

	packet := make([]byte, base)
	packet = append(packet, table...)

	for i, n := range names {
		got, err := DecodeStringAt(packet, ptrs[i])
		if err != nil {
			t.Fatalf("name %q: decode error: %v", n, err)
		}
		if got != n {
			t.Errorf("name %d: got %q, want %q", i, got, n)
		}
	}
}

func TestDecodeStringZeroPointer(t *testing.T) {
	got, err := DecodeStringAt([]byte{0, 'x', 0}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Errorf("zero pointer should decode to empty string, got %q", got)
	}
}

func TestDecodeStringViaOffset(t *testing.T) {
	var table []byte
	table, ptr := EncodeString(table, 4, "rx-3")

	packet := make([]byte, 4)
	packet = append(packet, table...)
	header := make([]byte, 2)
	header = EncodeInt16(header[:0], uint16(ptr))
	packet[0], packet[1] = header[0], header[1]

	got, err := DecodeString(packet, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got != "rx-3" {
		t.Errorf("got %q, want rx-3", got)
	}
}

func TestDecodeStringOutOfRangePointer(t *testing.T) {
	packet := []byte{0x00, 0x10}
	if _, err := DecodeStringAt(packet, 0x10); err == nil {
		t.Fatal("expected error for out-of-range pointer")
	}
}
