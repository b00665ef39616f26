package model

import (
	"strings"
	"sync"

	"github.com/s0600204/network-audio-controller/internal/arc"
	"github.com/s0600204/network-audio-controller/internal/ncerr"
)

// Registry owns the four entity arenas plus the orphan TX table and
// serializes every mutation behind a single mutex — the "per-device mutex
// or single event loop" the concurrency model in spec.md §5 requires.
// Grounded on the teacher's internal/device.Manager: an in-memory,
// mutex-guarded, map-keyed registry.
type Registry struct {
	mu sync.RWMutex

	devices       map[DeviceID]*Device
	rx            map[RxID]*RxChannel
	tx            map[TxID]*TxChannel
	subscriptions map[SubID]*Subscription

	byServerName map[string]DeviceID // lowercased server name -> device

	orphans map[string][]TxID // TX device name -> placeholder TX channels

	nextDevice DeviceID
	nextRx     RxID
	nextTx     TxID
	nextSub    SubID
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		devices:       make(map[DeviceID]*Device),
		rx:            make(map[RxID]*RxChannel),
		tx:            make(map[TxID]*TxChannel),
		subscriptions: make(map[SubID]*Subscription),
		byServerName:  make(map[string]DeviceID),
		orphans:       make(map[string][]TxID),
	}
}

// RegisterDevice creates a new Device for serverName, or returns the
// existing one if already registered (idempotent re-registration after a
// DISCONNECTED -> IN_PROGRESS -> COMPLETE cycle).
func (r *Registry) RegisterDevice(serverName, ipv4 string, arcSvc, cmcSvc, dbcSvc ServiceDescriptor) *Device {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(serverName)
	if id, ok := r.byServerName[key]; ok {
		dev := r.devices[id]
		dev.IPv4 = ipv4
		dev.ARC, dev.CMC, dev.DBC = arcSvc, cmcSvc, dbcSvc
		dev.Stale = false
		return dev
	}

	r.nextDevice++
	dev := &Device{
		ID:         r.nextDevice,
		ServerName: serverName,
		IPv4:       ipv4,
		ARC:        arcSvc,
		CMC:        cmcSvc,
		DBC:        dbcSvc,
	}
	r.devices[dev.ID] = dev
	r.byServerName[key] = dev.ID
	r.claimOrphansLocked(dev)
	return dev
}

// MarkStale flags a device's descriptors as stale on disconnection,
// preserving its identity per spec.md §3.
func (r *Registry) MarkStale(serverName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byServerName[strings.ToLower(serverName)]; ok {
		r.devices[id].Stale = true
	}
}

// DeviceByServerName looks up a device by its mDNS server name.
func (r *Registry) DeviceByServerName(serverName string) (*Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byServerName[strings.ToLower(serverName)]
	if !ok {
		return nil, &ncerr.NotFoundError{Kind: "device", Key: serverName}
	}
	cp := *r.devices[id]
	return &cp, nil
}

// Devices returns a snapshot of every registered device.
func (r *Registry) Devices() []*Device {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Device, 0, len(r.devices))
	for _, d := range r.devices {
		cp := *d
		out = append(out, &cp)
	}
	return out
}

// RxChannels returns a snapshot of every RX channel on a device.
func (r *Registry) RxChannels(id DeviceID) []*RxChannel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	dev, ok := r.devices[id]
	if !ok {
		return nil
	}
	out := make([]*RxChannel, 0, len(dev.RX))
	for _, rxID := range dev.RX {
		cp := *r.rx[rxID]
		out = append(out, &cp)
	}
	return out
}

// Subscription returns a snapshot of the Subscription for an RX channel.
func (r *Registry) Subscription(id SubID) (*Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sub, ok := r.subscriptions[id]
	if !ok {
		return nil, &ncerr.NotFoundError{Kind: "subscription", Key: ""}
	}
	cp := *sub
	return &cp, nil
}

// TxChannel returns a snapshot of a TX channel by ID.
func (r *Registry) TxChannel(id TxID) (*TxChannel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tx[id]
	if !ok {
		return nil, &ncerr.NotFoundError{Kind: "tx channel", Key: ""}
	}
	cp := *t
	cp.Subscriptions = make(map[SubID]bool, len(t.Subscriptions))
	for k, v := range t.Subscriptions {
		cp.Subscriptions[k] = v
	}
	return &cp, nil
}

// claimOrphansLocked migrates any orphan TX placeholders waiting on
// dev.ServerName into dev's TX table. Caller holds r.mu.
func (r *Registry) claimOrphansLocked(dev *Device) {
	key := strings.ToLower(dev.ServerName)
	waiting, ok := r.orphans[key]
	if !ok {
		return
	}
	delete(r.orphans, key)
	for _, txID := range waiting {
		t := r.tx[txID]
		t.Owner = TxDeviceRef{Known: true, Device: dev.ID}
		dev.TX = append(dev.TX, txID)
	}
}

// ReconcileRXPage applies the RX page callback algorithm from spec.md §4.6
// for one page of channel definitions arriving on device deviceID.
func (r *Registry) ReconcileRXPage(deviceID DeviceID, defs []arc.ChannelDef, isFirstPageOfResponse bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	dev, ok := r.devices[deviceID]
	if !ok {
		return &ncerr.NotFoundError{Kind: "device", Key: ""}
	}

	for i, def := range defs {
		rxChan := r.findOrCreateRXLocked(dev, def.Number)
		rxChan.Name = def.Name
		rxChan.StatusCode = def.StatusCode

		var txID TxID
		hasTX := false
		if def.TXDeviceName != "" {
			txID = r.resolveTXLocked(dev, def.TXDeviceName, def.TXChannelName)
			hasTX = true
		}

		r.attachSubscriptionLocked(rxChan, txID, hasTX, def.SubscriptionStatus)

		if isFirstPageOfResponse && i == 0 && def.SampleRate != 0 {
			dev.SampleRate = def.SampleRate
		}
	}
	return nil
}

func (r *Registry) findOrCreateRXLocked(dev *Device, number int) *RxChannel {
	for _, id := range dev.RX {
		if r.rx[id].Number == number {
			return r.rx[id]
		}
	}
	r.nextRx++
	rxChan := &RxChannel{ID: r.nextRx, Device: dev.ID, Number: number}
	r.rx[rxChan.ID] = rxChan
	dev.RX = append(dev.RX, rxChan.ID)

	r.nextSub++
	sub := &Subscription{ID: r.nextSub, RX: rxChan.ID}
	r.subscriptions[sub.ID] = sub
	rxChan.Subscription = sub.ID

	return rxChan
}

// resolveTXLocked implements spec.md §4.6 step 2: "." means loopback to the
// owning device; otherwise look up a known device, then the orphan table,
// then create a new orphan placeholder.
func (r *Registry) resolveTXLocked(dev *Device, txDeviceName, txChannelName string) TxID {
	if txDeviceName == "." {
		return r.findOrCreateTXOnDeviceLocked(dev, txChannelName)
	}

	if targetID, ok := r.byServerName[strings.ToLower(txDeviceName)]; ok {
		target := r.devices[targetID]
		return r.findOrCreateTXOnDeviceLocked(target, txChannelName)
	}

	key := strings.ToLower(txDeviceName)
	for _, id := range r.orphans[key] {
		if r.tx[id].Name == txChannelName {
			return id
		}
	}

	r.nextTx++
	placeholder := &TxChannel{
		ID:            r.nextTx,
		Owner:         TxDeviceRef{Known: false, PendingName: txDeviceName},
		Number:        -1,
		Name:          txChannelName,
		Subscriptions: make(map[SubID]bool),
	}
	r.tx[placeholder.ID] = placeholder
	r.orphans[key] = append(r.orphans[key], placeholder.ID)
	return placeholder.ID
}

func (r *Registry) findOrCreateTXOnDeviceLocked(dev *Device, channelName string) TxID {
	for _, id := range dev.TX {
		if r.tx[id].Name == channelName {
			return id
		}
	}
	r.nextTx++
	t := &TxChannel{
		ID:            r.nextTx,
		Owner:         TxDeviceRef{Known: true, Device: dev.ID},
		Name:          channelName,
		Subscriptions: make(map[SubID]bool),
	}
	r.tx[t.ID] = t
	dev.TX = append(dev.TX, t.ID)
	return t.ID
}

// attachSubscriptionLocked implements spec.md §4.6 step 3: create or
// refresh rxChan's Subscription, maintaining back-references atomically
// with the TX target change.
func (r *Registry) attachSubscriptionLocked(rxChan *RxChannel, newTX TxID, hasTX bool, status int) {
	sub := r.subscriptions[rxChan.Subscription]

	if sub.HasTX && sub.TX != 0 {
		if old := r.tx[sub.TX]; old != nil {
			delete(old.Subscriptions, sub.ID)
		}
	}

	sub.HasTX = hasTX
	sub.TX = newTX
	sub.StatusCode = status

	if hasTX {
		if t := r.tx[newTX]; t != nil {
			t.Subscriptions[sub.ID] = true
		}
	}
}

// ReconcileTXPage implements the TX page callback algorithm: upsert TX
// channels by canonical name on deviceID, and claim matching orphans.
func (r *Registry) ReconcileTXPage(deviceID DeviceID, defs []arc.ChannelDef) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	dev, ok := r.devices[deviceID]
	if !ok {
		return &ncerr.NotFoundError{Kind: "device", Key: ""}
	}

	for _, def := range defs {
		key := strings.ToLower(dev.ServerName)
		claimed := false
		for _, id := range r.orphans[key] {
			t := r.tx[id]
			if t.Name == def.Name {
				t.Owner = TxDeviceRef{Known: true, Device: dev.ID}
				t.Number = def.Number
				dev.TX = append(dev.TX, id)
				claimed = true
				break
			}
		}
		if claimed {
			r.removeOrphanLocked(key, def.Name)
			continue
		}

		existing := r.findOrCreateTXOnDeviceLocked(dev, def.Name)
		r.tx[existing].Number = def.Number
	}
	return nil
}

func (r *Registry) removeOrphanLocked(key, channelName string) {
	list := r.orphans[key]
	filtered := list[:0]
	for _, id := range list {
		if r.tx[id].Name != channelName {
			filtered = append(filtered, id)
		}
	}
	if len(filtered) == 0 {
		delete(r.orphans, key)
	} else {
		r.orphans[key] = filtered
	}
}

// SetChannelCounts records the device's advertised RX/TX totals, used by
// the reconciler to compute how many pages to expect.
func (r *Registry) SetChannelCounts(deviceID DeviceID, rx, tx int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if dev, ok := r.devices[deviceID]; ok {
		dev.RXCount, dev.TXCount = rx, tx
	}
}
