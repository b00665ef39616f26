package model

import "github.com/s0600204/network-audio-controller/internal/codec"

// ServiceDescriptor is the immutable-after-creation port/version pair for
// one of a device's ARC/CMC/DBC services.
type ServiceDescriptor struct {
	Port    int
	Version codec.Version
}

// Device is identified by mDNS server name (case-insensitive unique on the
// network). Created on discovery completion; never destroyed during a
// session — disconnection marks descriptors stale but preserves identity.
type Device struct {
	ID         DeviceID
	ServerName string
	IPv4       string
	ARC        ServiceDescriptor
	CMC        ServiceDescriptor
	DBC        ServiceDescriptor
	Name       string
	SampleRate uint32
	RXCount    int
	TXCount    int
	RX         []RxID
	TX         []TxID
	Stale      bool
}

// RxChannel is a receiver channel on a Device.
type RxChannel struct {
	ID           RxID
	Device       DeviceID
	Number       int // 1-based
	Name         string
	FriendlyName string
	StatusCode   int
	Subscription SubID
}

// TxDeviceRef is a tagged reference to a TX channel's owning device: either
// a concrete, discovered Device, or a placeholder name string for a device
// not yet discovered (spec.md §9's orphan design).
type TxDeviceRef struct {
	Known       bool
	Device      DeviceID
	PendingName string
}

// TxChannel is a transmitter channel, owned by a known Device or pending
// resolution against an orphan-table entry.
type TxChannel struct {
	ID            TxID
	Owner         TxDeviceRef
	Number        int // -1 until resolved, for orphaned placeholders
	Name          string
	FriendlyName  string
	Volume        int // 0-255; 254 = unknown/muted-display sentinel
	Subscriptions map[SubID]bool
}

// VolumeUnknown is the sentinel value meaning "unknown/muted-display".
const VolumeUnknown = 254

// Subscription represents the routing state of one RX channel: a pointer
// to that RX channel, an optional pointer to a TX channel, and a status
// code. Every RX channel has exactly one Subscription.
type Subscription struct {
	ID         SubID
	RX         RxID
	TX         TxID // zero value means "no TX target"
	HasTX      bool
	StatusCode int
}
