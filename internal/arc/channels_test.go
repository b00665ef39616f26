package arc

import (
	"testing"

	"github.com/s0600204/network-audio-controller/internal/codec"
)

type rxDefFixture struct {
	number     int
	name       string
	txChan     string
	txDevice   string
	subStatus  int
	sampleRate uint32
}

// putInt16 writes v as a 2-byte big-endian integer at offset within buf,
// for filling in a fixed-size definition at its real, non-contiguous field
// offsets (rather than appending sequentially).
func putInt16(buf []byte, offset int, v uint16) {
	b := codec.EncodeInt16(nil, v)
	copy(buf[offset:], b)
}

// buildRXPageResponseNew constructs a synthetic new-dialect (>= 2.8.2) RX
// page response: a pointer table at offset 18, each entry a definition in
// the real 56-byte layout (number@2, name-ptr@20, common-block-ptr@22,
// tx-chan-ptr@44, tx-dev-ptr@46, sub-status@48, rx-status@50).
func buildRXPageResponseNew(t *testing.T, defs []rxDefFixture) []byte {
	t.Helper()

	const tableBase18 = 18
	const defLen = 56

	base := tableBase18 + len(defs)*2
	stringTableBase := base + len(defs)*defLen

	offsetTable := make([]byte, 0, len(defs)*2)
	defsBuf := make([]byte, len(defs)*defLen)
	var table []byte

	for i, d := range defs {
		defStart := base + i*defLen
		offsetTable = codec.EncodeInt16(offsetTable, uint16(defStart))

		stringBase := stringTableBase + len(table)
		nameTable, namePtr := codec.EncodeString(nil, stringBase, d.name)
		chanTable, chanPtr := codec.EncodeString(nil, stringBase+len(nameTable), d.txChan)
		devTable, devPtr := codec.EncodeString(nil, stringBase+len(nameTable)+len(chanTable), d.txDevice)

		table = append(table, nameTable...)
		table = append(table, chanTable...)
		table = append(table, devTable...)

		def := defsBuf[i*defLen : (i+1)*defLen]
		putInt16(def, 2, uint16(d.number))
		putInt16(def, 20, uint16(namePtr))
		putInt16(def, 44, uint16(chanPtr))
		putInt16(def, 46, uint16(devPtr))
		putInt16(def, 48, uint16(d.subStatus))
	}

	commonBlockPtr := stringTableBase + len(table)
	table = codec.EncodeInt32(table, defs[0].sampleRate)
	table = append(table, make([]byte, 12)...) // pad common block to 16 bytes
	for i := range defs {
		def := defsBuf[i*defLen : (i+1)*defLen]
		putInt16(def, 22, uint16(commonBlockPtr))
	}

	frame := make([]byte, tableBase18)
	frame = append(frame, offsetTable...)
	frame = append(frame, defsBuf...)
	frame = append(frame, table...)
	return frame
}

// buildRXPageResponseLegacy constructs a synthetic pre-2.8.2 RX page
// response: a fixed 20-byte stride starting at offset 12, each definition
// occupying the real 16-byte legacy layout (number@0, common-block-ptr@4,
// tx-chan-ptr@6, tx-dev-ptr@8, name-ptr@10, rx-status@12, sub-status@14).
func buildRXPageResponseLegacy(t *testing.T, defs []rxDefFixture) []byte {
	t.Helper()

	const base = 12
	const stride = 20
	const defLen = 16

	stringTableBase := base + len(defs)*stride

	defsBuf := make([]byte, len(defs)*stride)
	var table []byte

	for i, d := range defs {
		stringBase := stringTableBase + len(table)
		var nameTable, chanTable, devTable []byte
		nameTable, namePtr := codec.EncodeString(nameTable, stringBase, d.name)
		chanTable, chanPtr := codec.EncodeString(chanTable, stringBase+len(nameTable), d.txChan)
		devTable, devPtr := codec.EncodeString(devTable, stringBase+len(nameTable)+len(chanTable), d.txDevice)

		table = append(table, nameTable...)
		table = append(table, chanTable...)
		table = append(table, devTable...)

		def := defsBuf[i*stride : i*stride+defLen]
		putInt16(def, 0, uint16(d.number))
		putInt16(def, 6, uint16(chanPtr))
		putInt16(def, 8, uint16(devPtr))
		putInt16(def, 10, uint16(namePtr))
		putInt16(def, 14, uint16(d.subStatus))
	}

	commonBlockPtr := stringTableBase + len(table)
	table = codec.EncodeInt32(table, defs[0].sampleRate)
	table = append(table, make([]byte, 12)...)
	for i := range defs {
		def := defsBuf[i*stride : i*stride+defLen]
		putInt16(def, 4, uint16(commonBlockPtr))
	}

	frame := make([]byte, base)
	frame = append(frame, defsBuf...)
	frame = append(frame, table...)
	return frame
}

func testRXDefFixtures() []rxDefFixture {
	return []rxDefFixture{
		{1, "in1", "out2", "mic.local", 9, 48000},
		{2, "in2", "", "", 0, 48000},
	}
}

func checkParsedRXDefs(t *testing.T, got []ChannelDef, defs []rxDefFixture) {
	t.Helper()
	if len(got) != len(defs) {
		t.Fatalf("got %d defs, want %d", len(got), len(defs))
	}
	for i, want := range defs {
		if got[i].Number != want.number {
			t.Errorf("def %d: number = %d, want %d", i, got[i].Number, want.number)
		}
		if got[i].Name != want.name {
			t.Errorf("def %d: name = %q, want %q", i, got[i].Name, want.name)
		}
		if got[i].TXChannelName != want.txChan {
			t.Errorf("def %d: tx channel = %q, want %q", i, got[i].TXChannelName, want.txChan)
		}
		if got[i].TXDeviceName != want.txDevice {
			t.Errorf("def %d: tx device = %q, want %q", i, got[i].TXDeviceName, want.txDevice)
		}
		if got[i].SubscriptionStatus != want.subStatus {
			t.Errorf("def %d: sub status = %d, want %d", i, got[i].SubscriptionStatus, want.subStatus)
		}
	}
	if got[0].SampleRate != defs[0].sampleRate {
		t.Errorf("first definition should carry sample rate: got %d", got[0].SampleRate)
	}
}

func TestParseRXPageRoundTripNewDialect(t *testing.T) {
	defs := testRXDefFixtures()
	frame := buildRXPageResponseNew(t, defs)

	got, err := ParseRXPage(frame, len(defs), DialectNew)
	if err != nil {
		t.Fatal(err)
	}
	checkParsedRXDefs(t, got, defs)
}

func TestParseRXPageRoundTripLegacyDialect(t *testing.T) {
	defs := testRXDefFixtures()
	frame := buildRXPageResponseLegacy(t, defs)

	got, err := ParseRXPage(frame, len(defs), DialectLegacy)
	if err != nil {
		t.Fatal(err)
	}
	checkParsedRXDefs(t, got, defs)
}

func TestPagingBoundary17Channels(t *testing.T) {
	// Scenario 4: rx_count=17 -> 2 pages, 16 + 1.
	const total = 17
	pages := PageCount(total)
	if pages != 2 {
		t.Fatalf("expected 2 pages for 17 channels, got %d", pages)
	}
	if n := ChannelsOnPage(0, total); n != 16 {
		t.Errorf("page 0 expected 16 channels, got %d", n)
	}
	if n := ChannelsOnPage(1, total); n != 1 {
		t.Errorf("page 1 expected 1 channel, got %d", n)
	}
}
