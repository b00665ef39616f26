package model

import (
	"testing"

	"github.com/s0600204/network-audio-controller/internal/arc"
)

func TestReconcileRXPageCreatesChannelAndSubscription(t *testing.T) {
	r := NewRegistry()
	dev := r.RegisterDevice("mixer.local.", "10.0.0.5", ServiceDescriptor{}, ServiceDescriptor{}, ServiceDescriptor{})

	defs := []arc.ChannelDef{
		{Number: 1, Name: "Rx 1", StatusCode: 0, TXDeviceName: "", SampleRate: 48000},
	}
	if err := r.ReconcileRXPage(dev.ID, defs, true); err != nil {
		t.Fatalf("ReconcileRXPage: %v", err)
	}

	rx := r.RxChannels(dev.ID)
	if len(rx) != 1 {
		t.Fatalf("expected 1 rx channel, got %d", len(rx))
	}
	if rx[0].Name != "Rx 1" {
		t.Errorf("name = %q, want %q", rx[0].Name, "Rx 1")
	}

	sub, err := r.Subscription(rx[0].Subscription)
	if err != nil {
		t.Fatalf("Subscription: %v", err)
	}
	if sub.HasTX {
		t.Errorf("expected no tx target for unsubscribed channel")
	}

	got, err := r.DeviceByServerName("mixer.local.")
	if err != nil {
		t.Fatalf("DeviceByServerName: %v", err)
	}
	if got.SampleRate != 48000 {
		t.Errorf("sample rate = %d, want 48000", got.SampleRate)
	}
}

// TestSubscriptionBackReferenceInvariant is the property from spec.md §8:
// a TX channel's subscriber set always matches the set of RX subscriptions
// pointing at it, even after repeated re-subscription to different targets.
func TestSubscriptionBackReferenceInvariant(t *testing.T) {
	r := NewRegistry()
	dev := r.RegisterDevice("mixer.local.", "10.0.0.5", ServiceDescriptor{}, ServiceDescriptor{}, ServiceDescriptor{})

	if err := r.ReconcileRXPage(dev.ID, []arc.ChannelDef{
		{Number: 1, Name: "Rx 1", TXDeviceName: ".", TXChannelName: "Tx A"},
	}, true); err != nil {
		t.Fatalf("ReconcileRXPage 1: %v", err)
	}
	rx := r.RxChannels(dev.ID)[0]
	sub, _ := r.Subscription(rx.Subscription)
	if !sub.HasTX {
		t.Fatal("expected subscription to have a tx target")
	}
	firstTX := sub.TX

	txBefore, err := r.TxChannel(firstTX)
	if err != nil {
		t.Fatalf("TxChannel: %v", err)
	}
	if !txBefore.Subscriptions[sub.ID] {
		t.Fatal("tx channel should list this subscription as a subscriber")
	}

	// Re-point the same RX channel at a different TX target ("Tx B").
	if err := r.ReconcileRXPage(dev.ID, []arc.ChannelDef{
		{Number: 1, Name: "Rx 1", TXDeviceName: ".", TXChannelName: "Tx B"},
	}, true); err != nil {
		t.Fatalf("ReconcileRXPage 2: %v", err)
	}
	sub2, _ := r.Subscription(rx.Subscription)
	if sub2.TX == firstTX {
		t.Fatal("expected subscription to move to a new tx channel")
	}

	txOld, err := r.TxChannel(firstTX)
	if err != nil {
		t.Fatalf("TxChannel(old): %v", err)
	}
	if txOld.Subscriptions[sub.ID] {
		t.Error("old tx channel must drop the stale back-reference")
	}

	txNew, err := r.TxChannel(sub2.TX)
	if err != nil {
		t.Fatalf("TxChannel(new): %v", err)
	}
	if !txNew.Subscriptions[sub.ID] {
		t.Error("new tx channel must carry the back-reference")
	}
}

// TestOrphanTXResolvedOnLateDeviceDiscovery covers scenario 5 from
// spec.md §8: an RX channel subscribes to a TX channel on a device not yet
// discovered; the TX channel is created as an orphan placeholder and later
// claimed when that device registers.
func TestOrphanTXResolvedOnLateDeviceDiscovery(t *testing.T) {
	r := NewRegistry()
	mixer := r.RegisterDevice("mixer.local.", "10.0.0.5", ServiceDescriptor{}, ServiceDescriptor{}, ServiceDescriptor{})

	if err := r.ReconcileRXPage(mixer.ID, []arc.ChannelDef{
		{Number: 1, Name: "Rx 1", TXDeviceName: "stagebox.local.", TXChannelName: "Tx 1"},
	}, true); err != nil {
		t.Fatalf("ReconcileRXPage: %v", err)
	}

	rx := r.RxChannels(mixer.ID)[0]
	sub, _ := r.Subscription(rx.Subscription)
	orphanTX, err := r.TxChannel(sub.TX)
	if err != nil {
		t.Fatalf("TxChannel: %v", err)
	}
	if orphanTX.Owner.Known {
		t.Fatal("tx channel should be an unresolved orphan before stagebox registers")
	}
	if orphanTX.Owner.PendingName != "stagebox.local." {
		t.Errorf("pending name = %q, want %q", orphanTX.Owner.PendingName, "stagebox.local.")
	}

	stagebox := r.RegisterDevice("stagebox.local.", "10.0.0.6", ServiceDescriptor{}, ServiceDescriptor{}, ServiceDescriptor{})

	claimedTX, err := r.TxChannel(sub.TX)
	if err != nil {
		t.Fatalf("TxChannel after claim: %v", err)
	}
	if !claimedTX.Owner.Known || claimedTX.Owner.Device != stagebox.ID {
		t.Errorf("expected tx channel claimed by stagebox device, got %+v", claimedTX.Owner)
	}

	found := false
	for _, id := range r.Devices() {
		if id.ID == stagebox.ID {
			for _, txID := range id.TX {
				if txID == sub.TX {
					found = true
				}
			}
		}
	}
	if !found {
		t.Error("stagebox device should list the claimed tx channel in its TX table")
	}
}

// TestReconcileTXPageReusesClaimedOrphanByName covers the TX-side arrival
// order: the orphan placeholder is claimed when its device registers, and
// that device's own later TX page response reuses it by matching channel
// name rather than creating a duplicate.
func TestReconcileTXPageReusesClaimedOrphanByName(t *testing.T) {
	r := NewRegistry()
	mixer := r.RegisterDevice("mixer.local.", "10.0.0.5", ServiceDescriptor{}, ServiceDescriptor{}, ServiceDescriptor{})
	stagebox := r.RegisterDevice("stagebox.local.", "10.0.0.6", ServiceDescriptor{}, ServiceDescriptor{}, ServiceDescriptor{})

	if err := r.ReconcileRXPage(mixer.ID, []arc.ChannelDef{
		{Number: 1, Name: "Rx 1", TXDeviceName: "ghost.local.", TXChannelName: "Tx 1"},
	}, true); err != nil {
		t.Fatalf("ReconcileRXPage: %v", err)
	}
	rx := r.RxChannels(mixer.ID)[0]
	sub, _ := r.Subscription(rx.Subscription)
	orphanID := sub.TX

	ghost := r.RegisterDevice("ghost.local.", "10.0.0.7", ServiceDescriptor{}, ServiceDescriptor{}, ServiceDescriptor{})
	_ = stagebox

	claimed, err := r.TxChannel(orphanID)
	if err != nil {
		t.Fatalf("TxChannel: %v", err)
	}
	if !claimed.Owner.Known || claimed.Owner.Device != ghost.ID {
		t.Fatalf("expected orphan claimed by ghost device on registration, got %+v", claimed.Owner)
	}

	// ghost's own TX page arrives afterward; it must reuse the same TxID
	// rather than minting a second channel for "Tx 1".
	if err := r.ReconcileTXPage(ghost.ID, []arc.ChannelDef{
		{Number: 1, Name: "Tx 1"},
	}); err != nil {
		t.Fatalf("ReconcileTXPage: %v", err)
	}

	ghostSnapshot := r.Devices()
	var txCount int
	for _, d := range ghostSnapshot {
		if d.ID == ghost.ID {
			txCount = len(d.TX)
		}
	}
	if txCount != 1 {
		t.Errorf("expected exactly 1 tx channel on ghost after late page, got %d", txCount)
	}
}

// TestReconcileRXPageAcrossMultiplePagesIsBoundarySafe covers the 17-channel
// paging boundary (scenario 4) at the model level: two pages of defs (16 +
// 1) must produce 17 distinct RX channels.
func TestReconcileRXPageAcrossMultiplePagesIsBoundarySafe(t *testing.T) {
	r := NewRegistry()
	dev := r.RegisterDevice("mixer.local.", "10.0.0.5", ServiceDescriptor{}, ServiceDescriptor{}, ServiceDescriptor{})

	page0 := make([]arc.ChannelDef, 0, 16)
	for i := 1; i <= 16; i++ {
		page0 = append(page0, arc.ChannelDef{Number: i, Name: "Rx"})
	}
	if err := r.ReconcileRXPage(dev.ID, page0, true); err != nil {
		t.Fatalf("page 0: %v", err)
	}
	page1 := []arc.ChannelDef{{Number: 17, Name: "Rx 17"}}
	if err := r.ReconcileRXPage(dev.ID, page1, false); err != nil {
		t.Fatalf("page 1: %v", err)
	}

	if got := len(r.RxChannels(dev.ID)); got != 17 {
		t.Fatalf("expected 17 rx channels across both pages, got %d", got)
	}
}

// TestReRegistrationPreservesDeviceIdentity checks that registering a device
// preserves identity across repeated registration (re-announcement), and
// MarkStale/re-register round-trips without creating a duplicate Device.
func TestReRegistrationPreservesDeviceIdentity(t *testing.T) {
	r := NewRegistry()
	dev := r.RegisterDevice("mixer.local.", "10.0.0.5", ServiceDescriptor{}, ServiceDescriptor{}, ServiceDescriptor{})
	r.MarkStale("mixer.local.")

	again := r.RegisterDevice("mixer.local.", "10.0.0.5", ServiceDescriptor{}, ServiceDescriptor{}, ServiceDescriptor{})
	if again.ID != dev.ID {
		t.Fatalf("re-registration must preserve DeviceID, got %d want %d", again.ID, dev.ID)
	}
	if again.Stale {
		t.Error("re-registration should clear the stale flag")
	}

	if got := len(r.Devices()); got != 1 {
		t.Fatalf("expected exactly 1 device after reconnect, got %d", got)
	}
}
