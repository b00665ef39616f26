package model

// Subscription status codes, per spec.md §6.
const (
	StatusNone             = 0
	StatusUnresolved       = 1
	StatusResolved         = 2
	StatusResolveFail      = 3
	StatusSubscribeSelf    = 4
	StatusResolvedNone     = 5
	StatusIdle             = 7
	StatusInProgress       = 8
	StatusDynamic          = 9
	StatusStatic           = 10
	StatusManual           = 14
	StatusNoConnection     = 15
	StatusChannelFormat    = 16
	StatusBundleFormat     = 17
	StatusNoRX             = 18
	StatusRXFail           = 19
	StatusNoTX             = 20
	StatusTXFail           = 21
	StatusQoSFailRX        = 22
	StatusQoSFailTX        = 23
	StatusTXRejectedAddr   = 24
	StatusInvalidMsg       = 25
	StatusChannelLatency   = 26
	StatusClockDomain      = 27
	StatusUnsupported      = 28
	StatusRXLinkDown       = 29
	StatusTXLinkDown       = 30
	StatusDynamicProtocol  = 31
	StatusSystemFail       = 255
	StatusFlagNoAdvert     = 256
	StatusFlagNoDBCP       = 512
	StatusNoData           = 65536
)

// statusText maps each status code to one or more human-readable strings,
// per spec.md §6 ("each maps to one or more human strings for display").
var statusText = map[int][]string{
	StatusNone:            {"none"},
	StatusUnresolved:      {"unresolved"},
	StatusResolved:        {"resolved"},
	StatusResolveFail:     {"resolve failed"},
	StatusSubscribeSelf:   {"subscribed to self"},
	StatusResolvedNone:    {"resolved", "none"},
	StatusIdle:            {"idle"},
	StatusInProgress:      {"in progress"},
	StatusDynamic:         {"dynamic", "unicast connected"},
	StatusStatic:          {"static", "multicast connected"},
	StatusManual:          {"manual"},
	StatusNoConnection:    {"no connection"},
	StatusChannelFormat:   {"channel format mismatch"},
	StatusBundleFormat:    {"bundle format mismatch"},
	StatusNoRX:            {"no rx flows"},
	StatusRXFail:          {"rx failed"},
	StatusNoTX:            {"no tx flows"},
	StatusTXFail:          {"tx failed"},
	StatusQoSFailRX:       {"qos failed (rx)"},
	StatusQoSFailTX:       {"qos failed (tx)"},
	StatusTXRejectedAddr:  {"tx rejected address"},
	StatusInvalidMsg:      {"invalid message"},
	StatusChannelLatency:  {"channel latency"},
	StatusClockDomain:     {"clock domain mismatch"},
	StatusUnsupported:     {"unsupported"},
	StatusRXLinkDown:      {"rx link down"},
	StatusTXLinkDown:      {"tx link down"},
	StatusDynamicProtocol: {"dynamic protocol"},
	StatusSystemFail:      {"system failure"},
	StatusFlagNoAdvert:    {"no advertisement flag"},
	StatusFlagNoDBCP:      {"no dbcp flag"},
	StatusNoData:          {"no data"},
}

// StatusText returns the human-readable strings for a status code, or
// {"unknown"} for a code not in the documented table (spec.md §4.6 step 3
// treats an unrecognized status as a reason to log, not to fail).
func StatusText(code int) []string {
	if s, ok := statusText[code]; ok {
		return s
	}
	return []string{"unknown"}
}
