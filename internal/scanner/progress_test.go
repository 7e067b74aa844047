package scanner

import (
	"sync"
	"testing"

	"reelcheck/internal/store"
)

func TestTrackerCountersMonotonic(t *testing.T) {
	tracker := newTracker("scan-1", "/library")
	tracker.setRunning(100)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				tracker.fileProcessed()
				tracker.fileFailed()
			}
		}()
	}
	wg.Wait()

	snap := tracker.Snapshot()
	if snap.ProcessedFiles != 50 || snap.FailedFiles != 50 {
		t.Errorf("counters = %d/%d, want 50/50", snap.ProcessedFiles, snap.FailedFiles)
	}
	if snap.Percent() != 100 {
		t.Errorf("percent = %v, want 100", snap.Percent())
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	tracker := newTracker("scan-1", "/library")
	tracker.setRunning(10)
	tracker.fileStarted("/library/a.mkv")

	snap := tracker.Snapshot()
	tracker.fileStarted("/library/b.mkv")
	tracker.fileProcessed()

	if snap.CurrentFile != "/library/a.mkv" || snap.ProcessedFiles != 0 {
		t.Errorf("snapshot mutated after the fact: %+v", snap)
	}
}

func TestRegistryCancelAndRemove(t *testing.T) {
	registry := NewRegistry()
	tracker := newTracker("scan-1", "/library")

	cancelled := false
	registry.add("scan-1", tracker, func() { cancelled = true })

	if !registry.Cancel("scan-1") {
		t.Error("Cancel should find the live scan")
	}
	if !cancelled {
		t.Error("cancel func did not fire")
	}

	registry.remove("scan-1")
	if registry.Cancel("scan-1") {
		t.Error("Cancel should miss after removal")
	}
	if _, ok := registry.Snapshot("scan-1"); ok {
		t.Error("Snapshot should miss after removal")
	}
}

func TestRegistryActive(t *testing.T) {
	registry := NewRegistry()
	registry.add("a", newTracker("a", "/x"), func() {})
	registry.add("b", newTracker("b", "/y"), func() {})

	if got := len(registry.Active()); got != 2 {
		t.Errorf("active = %d, want 2", got)
	}
}

func TestZeroTotalPercent(t *testing.T) {
	snap := Snapshot{Status: store.ScanRunning}
	if snap.Percent() != 0 {
		t.Errorf("percent = %v, want 0", snap.Percent())
	}
}
