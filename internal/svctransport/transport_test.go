package svctransport

import (
	"testing"
	"time"
)

func TestNextIndexMonotonicAndWraps(t *testing.T) {
	tr := New("test", 0, nil, nil, nil)
	first := tr.NextIndex()
	second := tr.NextIndex()
	if second != first+1 {
		t.Fatalf("expected monotonic increase, got %d then %d", first, second)
	}

	tr.nextIdx = 0xFFFF
	wrapped := tr.NextIndex()
	if wrapped != 0x0000 {
		t.Fatalf("expected wrap to 0, got %#x", wrapped)
	}
}

func TestSweepTimeoutsPurgesExpiredEntries(t *testing.T) {
	tr := New("test", 0, nil, nil, nil, WithDeadline(10*time.Millisecond))

	var gotErr error
	tr.mu.Lock()
	tr.pendingT[7] = &pending{
		destination: "1.2.3.4:4440",
		commandCode: 0x1000,
		enqueued:    time.Now().Add(-time.Second),
		callback:    func(resp []byte, err error) { gotErr = err },
	}
	tr.mu.Unlock()

	tr.sweepTimeouts()

	if gotErr == nil {
		t.Fatal("expected timeout callback to fire")
	}
	tr.mu.Lock()
	_, stillPending := tr.pendingT[7]
	tr.mu.Unlock()
	if stillPending {
		t.Fatal("expected entry to be purged after sweep")
	}
}

func TestSweepTimeoutsLeavesFreshEntries(t *testing.T) {
	tr := New("test", 0, nil, nil, nil, WithDeadline(time.Minute))

	tr.mu.Lock()
	tr.pendingT[3] = &pending{enqueued: time.Now()}
	tr.mu.Unlock()

	tr.sweepTimeouts()

	tr.mu.Lock()
	_, stillPending := tr.pendingT[3]
	tr.mu.Unlock()
	if !stillPending {
		t.Fatal("fresh entry should not be purged")
	}
}
