package scanner

import (
	"context"
	"sync"
	"time"

	"reelcheck/internal/store"
)

// Snapshot is a copy of a scan's live progress, safe to hand across
// goroutines.
type Snapshot struct {
	ScanID         string           `json:"scan_id"`
	RootPath       string           `json:"root_path"`
	Status         store.ScanStatus `json:"status"`
	TotalFiles     int              `json:"total_files"`
	ProcessedFiles int              `json:"processed_files"`
	FailedFiles    int              `json:"failed_files"`
	CurrentFile    string           `json:"current_file,omitempty"`
	StartedAt      time.Time        `json:"started_at"`
}

// Percent returns completion as 0-100. Zero totals report zero.
func (s Snapshot) Percent() float64 {
	if s.TotalFiles <= 0 {
		return 0
	}
	return float64(s.ProcessedFiles+s.FailedFiles) / float64(s.TotalFiles) * 100
}

// Tracker holds the mutable counters for one running scan. All workers
// of the scan share it under its lock.
type Tracker struct {
	mu sync.Mutex

	scanID      string
	rootPath    string
	status      store.ScanStatus
	total       int
	processed   int
	failed      int
	currentFile string
	startedAt   time.Time
}

func newTracker(scanID, rootPath string) *Tracker {
	return &Tracker{
		scanID:    scanID,
		rootPath:  rootPath,
		status:    store.ScanPending,
		startedAt: time.Now(),
	}
}

func (t *Tracker) setRunning(total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = store.ScanRunning
	t.total = total
}

func (t *Tracker) setStatus(status store.ScanStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = status
	t.currentFile = ""
}

func (t *Tracker) fileStarted(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.currentFile = path
}

// fileProcessed increments the processed counter and returns the number
// of files accounted for so far.
func (t *Tracker) fileProcessed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.processed++
	return t.processed + t.failed
}

// fileFailed increments the failed counter and returns the number of
// files accounted for so far.
func (t *Tracker) fileFailed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failed++
	return t.processed + t.failed
}

// Snapshot returns a copy of the current counters.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{
		ScanID:         t.scanID,
		RootPath:       t.rootPath,
		Status:         t.status,
		TotalFiles:     t.total,
		ProcessedFiles: t.processed,
		FailedFiles:    t.failed,
		CurrentFile:    t.currentFile,
		StartedAt:      t.startedAt,
	}
}

// Registry tracks live scans: their progress trackers and cancellation
// signals. Entries are removed when a scan reaches a terminal state.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*registryEntry
}

type registryEntry struct {
	tracker *Tracker
	cancel  context.CancelFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*registryEntry)}
}

func (r *Registry) add(scanID string, tracker *Tracker, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[scanID] = &registryEntry{tracker: tracker, cancel: cancel}
}

func (r *Registry) remove(scanID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, scanID)
}

// Cancel fires the scan's cancellation signal. It reports whether the
// scan was live in this registry.
func (r *Registry) Cancel(scanID string) bool {
	r.mu.RLock()
	entry, ok := r.entries[scanID]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	entry.cancel()
	return true
}

// Snapshot returns the live progress of one scan.
func (r *Registry) Snapshot(scanID string) (Snapshot, bool) {
	r.mu.RLock()
	entry, ok := r.entries[scanID]
	r.mu.RUnlock()
	if !ok {
		return Snapshot{}, false
	}
	return entry.tracker.Snapshot(), true
}

// Active returns snapshots for every live scan.
func (r *Registry) Active() []Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snapshots := make([]Snapshot, 0, len(r.entries))
	for _, entry := range r.entries {
		snapshots = append(snapshots, entry.tracker.Snapshot())
	}
	return snapshots
}

// CancelAll fires every live scan's cancellation signal.
func (r *Registry) CancelAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, entry := range r.entries {
		entry.cancel()
	}
}
