package research

import (
	"testing"
	"time"
)

func TestTrackerLifecycle(t *testing.T) {
	tr := NewTracker()
	tr.retention = 20 * time.Millisecond

	if _, ok := tr.Snapshot(1); ok {
		t.Fatal("Expected no snapshot before any update")
	}

	tr.Update(1, "search", 40, "Searching: attempt 1")
	snap, ok := tr.Snapshot(1)
	if !ok {
		t.Fatal("Expected a snapshot after update")
	}
	if snap.Percent != 40 || snap.Status != "processing" {
		t.Errorf("Unexpected snapshot: %+v", snap)
	}
	if snap.Done() {
		t.Error("A 40%% processing snapshot must not be done")
	}

	tr.Complete(1, "Research complete!")
	snap, ok = tr.Snapshot(1)
	if !ok {
		t.Fatal("Completed snapshot should remain queryable inside the retention window")
	}
	if !snap.Done() || snap.Percent != 100 || snap.Status != "complete" {
		t.Errorf("Unexpected terminal snapshot: %+v", snap)
	}

	// After the retention window the snapshot is discarded.
	time.Sleep(50 * time.Millisecond)
	if _, ok := tr.Snapshot(1); ok {
		t.Error("Expected snapshot to be forgotten after retention")
	}
}

func TestTrackerClampsPercent(t *testing.T) {
	tr := NewTracker()
	tr.Update(7, "analyze", 150, "overshoot")
	snap, _ := tr.Snapshot(7)
	if snap.Percent != 100 {
		t.Errorf("Expected percent clamped to 100, got %d", snap.Percent)
	}
}

func TestTrackerIgnoresZeroCaseID(t *testing.T) {
	tr := NewTracker()
	tr.Update(0, "search", 10, "no case")
	if _, ok := tr.Snapshot(0); ok {
		t.Error("Tracker should not track case id 0")
	}
}
