package stats

import "testing"

func TestTrackerCounts(t *testing.T) {
	tr := NewTracker()
	tr.Received("fn")
	tr.Received("fn")
	tr.ColdStart("fn")
	tr.WarmStart("fn")
	tr.Queued("fn")

	snap := tr.Snapshot()
	if snap.Global.RequestsReceived != 2 {
		t.Errorf("RequestsReceived = %d, want 2", snap.Global.RequestsReceived)
	}
	if snap.Global.ColdStarts != 1 || snap.Global.WarmStarts != 1 {
		t.Errorf("cold/warm = %d/%d, want 1/1", snap.Global.ColdStarts, snap.Global.WarmStarts)
	}
	if snap.Global.RequestsExecuted != 2 {
		t.Errorf("RequestsExecuted = %d, want 2", snap.Global.RequestsExecuted)
	}
	fn := snap.Functions["fn"]
	if fn.RequestsReceived != 2 {
		t.Errorf("per-function RequestsReceived = %d, want 2", fn.RequestsReceived)
	}
}

func TestTrackerReset(t *testing.T) {
	tr := NewTracker()
	tr.Received("fn")
	tr.Reset()
	snap := tr.Snapshot()
	if snap.Global.RequestsReceived != 0 || len(snap.Functions) != 0 {
		t.Errorf("Reset left state: %+v", snap)
	}
}
