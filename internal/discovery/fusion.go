// Package discovery implements mDNS-driven device discovery: a Browser that
// watches the network for Dante service announcements, and a Fusion state
// machine that merges per-service records keyed by mDNS server name into a
// single device-registration event.
package discovery

import (
	"strings"
	"sync"

	"github.com/s0600204/network-audio-controller/internal/codec"
)

// Required service names this client fuses records for. "chan" is observed
// on the wire but explicitly ignored per spec.md §4.5/§6.
const (
	ServiceARC  = "arc"
	ServiceCMC  = "cmc"
	ServiceDBC  = "dbc"
	ServiceChan = "chan"
)

var requiredServices = []string{ServiceARC, ServiceCMC, ServiceDBC}

// State is a fusion record's lifecycle stage, per spec.md §4.5's table.
type State int

const (
	StateAbsent State = iota
	StateInProgress
	StateComplete
	StateDisconnected
)

// ServiceDescriptor is one service's immutable-after-creation port/version
// pair, as carried in spec.md §3.
type ServiceDescriptor struct {
	Port    int
	Version codec.Version
}

// Record is the fused, per-server-name discovery state.
type Record struct {
	ServerName string
	PeerIPv4   string
	Services   map[string]ServiceDescriptor
	State      State
}

func newRecord(serverName string) *Record {
	return &Record{ServerName: serverName, Services: make(map[string]ServiceDescriptor), State: StateAbsent}
}

func (r *Record) hasAllRequired() bool {
	for _, s := range requiredServices {
		if _, ok := r.Services[s]; !ok {
			return false
		}
	}
	return true
}

// Event is what a service add/remove announcement carries for one
// server name.
type Event struct {
	ServerName string
	Service    string // "arc", "cmc", "dbc", "chan" (ignored)
	Removed    bool
	PeerIPv4   string
	Descriptor ServiceDescriptor
}

// RegisterFunc is invoked exactly once per server name, the moment its
// record transitions into StateComplete.
type RegisterFunc func(*Record)

// DisconnectFunc is invoked when a previously complete record loses a
// required service.
type DisconnectFunc func(*Record)

// Fusion is the per-server-name state machine described in spec.md §4.5,
// adapted from the teacher's per-MAC Collector (internal/services/discovery)
// to per-mDNS-server-name instead of per-MAC, and to a closed 3-service
// required set instead of open-ended device profiling.
type Fusion struct {
	mu        sync.Mutex
	records   map[string]*Record
	onRegister   RegisterFunc
	onDisconnect DisconnectFunc
}

// NewFusion constructs an empty Fusion state machine.
func NewFusion(onRegister RegisterFunc, onDisconnect DisconnectFunc) *Fusion {
	return &Fusion{
		records:      make(map[string]*Record),
		onRegister:   onRegister,
		onDisconnect: onDisconnect,
	}
}

// Apply feeds one service add/remove event into the fusion state machine,
// per the transition table in spec.md §4.5.
func (f *Fusion) Apply(ev Event) {
	if ev.Service == ServiceChan {
		return // explicitly ignored per spec.md §6
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	key := strings.ToLower(ev.ServerName)
	rec, ok := f.records[key]
	if !ok {
		rec = newRecord(ev.ServerName)
		f.records[key] = rec
	}

	if ev.Removed {
		delete(rec.Services, ev.Service)
		if rec.State == StateComplete {
			rec.State = StateDisconnected
			if f.onDisconnect != nil {
				f.onDisconnect(rec)
			}
		}
		return
	}

	wasComplete := rec.State == StateComplete
	if rec.State == StateAbsent {
		rec.State = StateInProgress
	}
	if rec.State == StateDisconnected {
		rec.State = StateInProgress
		rec.Services = make(map[string]ServiceDescriptor)
	}
	if rec.PeerIPv4 == "" && ev.PeerIPv4 != "" {
		rec.PeerIPv4 = ev.PeerIPv4
	}
	rec.Services[ev.Service] = ev.Descriptor

	if !wasComplete && rec.hasAllRequired() {
		rec.State = StateComplete
		if f.onRegister != nil {
			f.onRegister(rec)
		}
	}
}

// Snapshot returns a copy of the current record for serverName, or nil if
// unknown.
func (f *Fusion) Snapshot(serverName string) *Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[strings.ToLower(serverName)]
	if !ok {
		return nil
	}
	cp := *rec
	cp.Services = make(map[string]ServiceDescriptor, len(rec.Services))
	for k, v := range rec.Services {
		cp.Services[k] = v
	}
	return &cp
}
