package arc

import "github.com/s0600204/network-audio-controller/internal/codec"

// ChannelsPerPage is how many channel definitions the new dialect packs
// into one RX page response (the legacy TX dialect observes up to 32 per
// request; RX paging is 16 in both dialects per spec.md §4.3).
const ChannelsPerPage = 16

// PageCount returns the number of pages needed to cover total channels,
// max(1, ceil(total/16)) — page 0 is always issued even when total is 0, so
// an empty device still completes its initial paged query.
func PageCount(total int) int {
	if total <= 0 {
		return 1
	}
	pages := total / ChannelsPerPage
	if total%ChannelsPerPage != 0 {
		pages++
	}
	return pages
}

// ChannelsOnPage returns how many channel definitions page (0-based) is
// expected to carry, given total channels overall.
func ChannelsOnPage(page, total int) int {
	start := page * ChannelsPerPage
	if start >= total {
		return 0
	}
	remaining := total - start
	if remaining > ChannelsPerPage {
		return ChannelsPerPage
	}
	return remaining
}

// ChannelDef is one channel definition as extracted from an RX or TX page
// response, before reconciliation against the domain model.
type ChannelDef struct {
	Number             int
	Name               string
	FriendlyName       string // TX new dialect only (legacy carries it via a separate command)
	StatusCode         int
	TXChannelName      string // RX definitions only
	TXDeviceName       string // RX definitions only
	SubscriptionStatus int    // RX definitions only
	SampleRate         uint32 // only present on the first definition of a response
}

// rxDefinitionOffsets locates, for dialect d, the list of per-channel
// definition start offsets within an RX page response: a pointer table at
// offset 18 in the new dialect (one absolute 2-byte pointer per definition),
// or a regular 20-byte stride starting at offset 12 in the legacy one.
func rxDefinitionOffsets(body []byte, count int, d Dialect) []int {
	if d == DialectNew {
		return pointerTableOffsets(body, count, 18)
	}
	const stride = 20
	base := 12
	offsets := make([]int, 0, count)
	for i := 0; i < count; i++ {
		offsets = append(offsets, base+i*stride)
	}
	return offsets
}

// txDefinitionOffsets is rxDefinitionOffsets' TX counterpart: the new
// dialect shares the same 18-based pointer table mechanism, while the
// legacy dialect uses an 8-byte stride (definition length == stride, so
// definitions sit back to back with no padding).
func txDefinitionOffsets(body []byte, count int, d Dialect) []int {
	if d == DialectNew {
		return pointerTableOffsets(body, count, 18)
	}
	const stride = 8
	base := 12
	offsets := make([]int, 0, count)
	for i := 0; i < count; i++ {
		offsets = append(offsets, base+i*stride)
	}
	return offsets
}

// pointerTableOffsets reads count absolute 2-byte pointers starting at
// tableBase, stopping early (without error) if the table runs past the end
// of body — callers treat a short read as "no more definitions on this
// page" rather than a hard failure.
func pointerTableOffsets(body []byte, count, tableBase int) []int {
	offsets := make([]int, 0, count)
	for i := 0; i < count; i++ {
		ptr, err := codec.DecodeInt16(body, tableBase+i*2)
		if err != nil {
			break
		}
		offsets = append(offsets, int(ptr))
	}
	return offsets
}

// ParseRXPage decodes an RX channel page response (the whole frame,
// header included, since every offset and pointer is absolute from packet
// start) into up to `expected` ChannelDef entries. Field
// offsets within each definition are version-sensitive: the new dialect
// (protocol >= 2.8.2) and the legacy one lay out the same information at
// different byte positions and in a different definition length.
func ParseRXPage(frame []byte, expected int, d Dialect) ([]ChannelDef, error) {
	offsets := rxDefinitionOffsets(frame, expected, d)
	defs := make([]ChannelDef, 0, len(offsets))
	for i, off := range offsets {
		var def ChannelDef
		var err error
		if d == DialectNew {
			def, err = parseRXDefinitionNew(frame, off)
		} else {
			def, err = parseRXDefinitionLegacy(frame, off)
		}
		if err != nil {
			return defs, err
		}
		if i == 0 {
			sr, err := parseCommonBlockSampleRate(frame, off, d, rxCommonBlockPtrOffset(d))
			if err == nil {
				def.SampleRate = sr
			}
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// rxCommonBlockPtrOffset is the local, within-definition offset of the
// pointer to the per-response common block (carrying the sample rate): 22
// in the new dialect's 56-byte definition, 4 in the legacy 16-byte one.
func rxCommonBlockPtrOffset(d Dialect) int {
	if d == DialectNew {
		return 22
	}
	return 4
}

// parseRXDefinitionNew reads one RX channel definition in the new (>= 2.8.2)
// 56-byte layout: channel number @2, rx name pointer @20, tx channel name
// pointer @44, tx device name pointer @46, subscription status @48, rx
// status @50.
func parseRXDefinitionNew(frame []byte, off int) (ChannelDef, error) {
	num, err := codec.DecodeInt16(frame, off+2)
	if err != nil {
		return ChannelDef{}, err
	}
	name, err := codec.DecodeString(frame, off+20)
	if err != nil {
		return ChannelDef{}, err
	}
	txChanName, err := codec.DecodeString(frame, off+44)
	if err != nil {
		return ChannelDef{}, err
	}
	txDevName, err := codec.DecodeString(frame, off+46)
	if err != nil {
		return ChannelDef{}, err
	}
	subStatus, err := codec.DecodeInt16(frame, off+48)
	if err != nil {
		return ChannelDef{}, err
	}
	status, err := codec.DecodeInt16(frame, off+50)
	if err != nil {
		return ChannelDef{}, err
	}
	return ChannelDef{
		Number:             int(num),
		StatusCode:         int(status),
		Name:               name,
		TXChannelName:      txChanName,
		TXDeviceName:       txDevName,
		SubscriptionStatus: int(subStatus),
	}, nil
}

// parseRXDefinitionLegacy reads one RX channel definition in the pre-2.8.2
// 16-byte layout: channel number @0, tx channel name pointer @6, tx device
// name pointer @8, rx name pointer @10, rx status @12, subscription status
// @14.
func parseRXDefinitionLegacy(frame []byte, off int) (ChannelDef, error) {
	num, err := codec.DecodeInt16(frame, off)
	if err != nil {
		return ChannelDef{}, err
	}
	txChanName, err := codec.DecodeString(frame, off+6)
	if err != nil {
		return ChannelDef{}, err
	}
	txDevName, err := codec.DecodeString(frame, off+8)
	if err != nil {
		return ChannelDef{}, err
	}
	name, err := codec.DecodeString(frame, off+10)
	if err != nil {
		return ChannelDef{}, err
	}
	status, err := codec.DecodeInt16(frame, off+12)
	if err != nil {
		return ChannelDef{}, err
	}
	subStatus, err := codec.DecodeInt16(frame, off+14)
	if err != nil {
		return ChannelDef{}, err
	}
	return ChannelDef{
		Number:             int(num),
		StatusCode:         int(status),
		Name:               name,
		TXChannelName:      txChanName,
		TXDeviceName:       txDevName,
		SubscriptionStatus: int(subStatus),
	}, nil
}

// parseCommonBlockSampleRate follows the common-block pointer at local
// offset ptrOffset within the definition at off and reads the 4-byte sample
// rate at offset 0 of that 16-byte block. d is accepted for symmetry with
// the rest of the dialect-aware parsing; the block's internal layout (a
// leading 4-byte sample rate) is the same in both dialects.
func parseCommonBlockSampleRate(frame []byte, off int, d Dialect, ptrOffset int) (uint32, error) {
	_ = d
	blockPtr, err := codec.DecodeInt16(frame, off+ptrOffset)
	if err != nil {
		return 0, err
	}
	return codec.DecodeInt32(frame, int(blockPtr))
}

// ParseTXPage decodes a TX channel page response body into up to `expected`
// ChannelDef entries. The new dialect carries both a default and a
// friendly name per definition (Name is set to the friendly name when
// present, falling back to the default); the legacy dialect carries only
// the default name, with friendly names arriving separately via
// CmdTXFriendlyNameLegacy.
func ParseTXPage(frame []byte, expected int, d Dialect) ([]ChannelDef, error) {
	offsets := txDefinitionOffsets(frame, expected, d)
	defs := make([]ChannelDef, 0, len(offsets))
	for i, off := range offsets {
		var def ChannelDef
		var err error
		if d == DialectNew {
			def, err = parseTXDefinitionNew(frame, off)
		} else {
			def, err = parseTXDefinitionLegacy(frame, off)
		}
		if err != nil {
			return defs, err
		}
		if i == 0 {
			sr, err := parseCommonBlockSampleRate(frame, off, d, txCommonBlockPtrOffset(d))
			if err == nil {
				def.SampleRate = sr
			}
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// txCommonBlockPtrOffset is the local offset of the common-block pointer
// within a TX definition: 22 in the new 40-byte layout, 4 in the legacy
// 8-byte one.
func txCommonBlockPtrOffset(d Dialect) int {
	if d == DialectNew {
		return 22
	}
	return 4
}

// parseTXDefinitionNew reads one TX channel definition in the new 40-byte
// layout: channel number @2, friendly name pointer @20, default name
// pointer @30. Name resolves to the friendly name when the device supplies
// one, otherwise the default.
func parseTXDefinitionNew(frame []byte, off int) (ChannelDef, error) {
	num, err := codec.DecodeInt16(frame, off+2)
	if err != nil {
		return ChannelDef{}, err
	}
	friendly, err := codec.DecodeString(frame, off+20)
	if err != nil {
		return ChannelDef{}, err
	}
	def, err := codec.DecodeString(frame, off+30)
	if err != nil {
		return ChannelDef{}, err
	}
	name := friendly
	if name == "" {
		name = def
	}
	return ChannelDef{Number: int(num), Name: name, FriendlyName: friendly}, nil
}

// parseTXDefinitionLegacy reads one TX channel definition in the legacy
// 8-byte layout: channel number @0, name pointer @6. The legacy dialect has
// no friendly name inside this definition.
func parseTXDefinitionLegacy(frame []byte, off int) (ChannelDef, error) {
	num, err := codec.DecodeInt16(frame, off)
	if err != nil {
		return ChannelDef{}, err
	}
	name, err := codec.DecodeString(frame, off+6)
	if err != nil {
		return ChannelDef{}, err
	}
	return ChannelDef{Number: int(num), Name: name}, nil
}
