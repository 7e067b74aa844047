package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"reelcheck/internal/config"
	"reelcheck/internal/logging"
	"reelcheck/internal/mediainfo"
	"reelcheck/internal/rating"
	"reelcheck/internal/store"
	"reelcheck/internal/subtitles"
)

// Prober extracts media properties from one file.
type Prober interface {
	Probe(ctx context.Context, path string) (mediainfo.Properties, error)
}

// Evaluator rates extracted properties.
type Evaluator interface {
	Evaluate(props mediainfo.Properties) rating.Result
}

// Notifier receives scan lifecycle events. Implementations must be safe
// for concurrent use.
type Notifier interface {
	ScanCompleted(ctx context.Context, snap Snapshot)
	ScanFailed(ctx context.Context, snap Snapshot, err error)
}

type noopNotifier struct{}

func (noopNotifier) ScanCompleted(context.Context, Snapshot)     {}
func (noopNotifier) ScanFailed(context.Context, Snapshot, error) {}

// Orchestrator runs scans. Start returns immediately; the scan itself
// runs on a supervised goroutine. Multiple scans may run concurrently,
// each with its own worker pool and counters.
type Orchestrator struct {
	store    *store.Store
	prober   Prober
	engine   Evaluator
	registry *Registry
	notifier Notifier
	logger   *slog.Logger

	workers        int
	saveEvery      int
	resultTimeout  time.Duration
	videoExts      map[string]struct{}
	findCompanions func(videoPath string) []string

	mu      sync.Mutex
	waiters map[string]chan struct{}
	wg      sync.WaitGroup

	// testHookBeforeDispatch runs after enumeration and before any file
	// is handed to a worker. Nil outside tests.
	testHookBeforeDispatch func(scanID string)
}

// New builds an Orchestrator from its collaborators. A nil notifier is
// replaced with a no-op.
func New(st *store.Store, prober Prober, engine Evaluator, registry *Registry, notifier Notifier, cfg *config.Config, logger *slog.Logger) *Orchestrator {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	workers := cfg.Scanner.Workers
	if workers <= 0 {
		workers = defaultWorkers()
	}
	saveEvery := cfg.Scanner.SaveEvery
	if saveEvery <= 0 {
		saveEvery = 25
	}
	return &Orchestrator{
		store:          st,
		prober:         prober,
		engine:         engine,
		registry:       registry,
		notifier:       notifier,
		logger:         logging.NewComponentLogger(logger, "scanner"),
		workers:        workers,
		saveEvery:      saveEvery,
		resultTimeout:  cfg.ResultTimeout(),
		videoExts:      cfg.VideoExtensionSet(),
		findCompanions: subtitles.FindCompanions,
		waiters:        make(map[string]chan struct{}),
	}
}

// defaultWorkers caps the per-scan pool at eight: probing is bound by
// the external tool, not the CPU, so wider pools just thrash disk.
func defaultWorkers() int {
	n := runtime.GOMAXPROCS(0)
	if n > 8 {
		return 8
	}
	if n < 1 {
		return 1
	}
	return n
}

// Start creates a scan record for rootPath and launches it. The
// returned scan is in Pending status; processing happens asynchronously.
// With force set, existing analyses under the root are cleared first so
// every file is re-probed.
func (o *Orchestrator) Start(ctx context.Context, rootPath string, force bool) (*store.Scan, error) {
	rootPath = filepath.Clean(rootPath)
	info, err := os.Stat(rootPath)
	if err != nil {
		return nil, fmt.Errorf("stat scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %q is not a directory", rootPath)
	}

	if force {
		cleared, err := o.store.DeleteAnalysesUnderRoot(ctx, rootPath)
		if err != nil {
			return nil, fmt.Errorf("clear analyses for rescan: %w", err)
		}
		o.logger.Info("cleared analyses for forced rescan",
			logging.String(logging.FieldPath, rootPath),
			logging.Int64("cleared", cleared),
		)
	}

	scan, err := o.store.NewScan(ctx, rootPath)
	if err != nil {
		return nil, err
	}

	// The scan outlives the request that started it.
	scanCtx, cancel := context.WithCancel(context.Background())
	tracker := newTracker(scan.ID, rootPath)
	o.registry.add(scan.ID, tracker, cancel)

	o.mu.Lock()
	done := make(chan struct{})
	o.waiters[scan.ID] = done
	o.mu.Unlock()

	o.wg.Add(1)
	go o.run(scanCtx, scan, tracker, done)

	o.logger.Info("scan started",
		logging.String(logging.FieldScanID, scan.ID),
		logging.String(logging.FieldPath, rootPath),
	)
	return scan, nil
}

// Cancel signals a scan to stop. Live scans observe the signal at their
// check points; a pending scan known only to the store is moved straight
// to Cancelled.
func (o *Orchestrator) Cancel(ctx context.Context, scanID string) error {
	if o.registry.Cancel(scanID) {
		return nil
	}
	scan, err := o.store.GetScan(ctx, scanID)
	if err != nil {
		return err
	}
	if scan.Status.IsTerminal() {
		return fmt.Errorf("scan %s already %s", scanID, scan.Status)
	}
	return o.store.MarkScanTerminal(ctx, scanID, store.ScanCancelled, "")
}

// Progress returns a point-in-time snapshot for the scan, preferring
// live counters over the persisted record.
func (o *Orchestrator) Progress(ctx context.Context, scanID string) (Snapshot, error) {
	if snap, ok := o.registry.Snapshot(scanID); ok {
		return snap, nil
	}
	scan, err := o.store.GetScan(ctx, scanID)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{
		ScanID:         scan.ID,
		RootPath:       scan.RootPath,
		Status:         scan.Status,
		TotalFiles:     scan.TotalFiles,
		ProcessedFiles: scan.ProcessedFiles,
		FailedFiles:    scan.FailedFiles,
		CurrentFile:    scan.CurrentFile,
	}
	if scan.StartedAt != nil {
		snap.StartedAt = *scan.StartedAt
	}
	return snap, nil
}

// Wait blocks until the scan's goroutine finishes. Used by tests and
// the CLI's foreground mode.
func (o *Orchestrator) Wait(scanID string) {
	o.mu.Lock()
	done, ok := o.waiters[scanID]
	o.mu.Unlock()
	if ok {
		<-done
	}
}

// Shutdown cancels every live scan and waits for their goroutines.
func (o *Orchestrator) Shutdown() {
	o.registry.CancelAll()
	o.wg.Wait()
}

// run supervises one scan from enumeration to a terminal status. Any
// escaping panic is captured and recorded as a Failed transition rather
// than lost.
func (o *Orchestrator) run(ctx context.Context, scan *store.Scan, tracker *Tracker, done chan struct{}) {
	defer o.wg.Done()
	defer close(done)
	defer func() {
		o.registry.remove(scan.ID)
		o.mu.Lock()
		delete(o.waiters, scan.ID)
		o.mu.Unlock()
	}()
	defer func() {
		if r := recover(); r != nil {
			o.fail(scan.ID, tracker, fmt.Errorf("scan panicked: %v", r))
		}
	}()

	files, err := o.enumerate(scan.RootPath)
	if err != nil {
		o.fail(scan.ID, tracker, fmt.Errorf("enumerate %s: %w", scan.RootPath, err))
		return
	}

	completed, err := o.store.CompletedPaths(context.Background())
	if err != nil {
		o.fail(scan.ID, tracker, fmt.Errorf("load analyzed paths: %w", err))
		return
	}
	pending := files[:0]
	for _, path := range files {
		if _, ok := completed[path]; !ok {
			pending = append(pending, path)
		}
	}

	// Total is fixed before any progress is reported.
	total := len(pending)
	tracker.setRunning(total)
	if err := o.store.MarkScanRunning(context.Background(), scan.ID, total); err != nil {
		o.fail(scan.ID, tracker, fmt.Errorf("mark scan running: %w", err))
		return
	}

	if o.testHookBeforeDispatch != nil {
		o.testHookBeforeDispatch(scan.ID)
	}

	jobs := make(chan string)
	var workers sync.WaitGroup
	for i := 0; i < o.workers; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for path := range jobs {
				if ctx.Err() != nil {
					continue
				}
				o.processFile(ctx, scan.ID, tracker, path)
			}
		}()
	}

dispatch:
	for _, path := range pending {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- path:
		}
	}
	close(jobs)
	workers.Wait()

	finalStatus := store.ScanCompleted
	if ctx.Err() != nil {
		finalStatus = store.ScanCancelled
	}
	o.finish(scan.ID, tracker, finalStatus)
}

// enumerate walks the root collecting video files in deterministic
// lexical order.
func (o *Orchestrator) enumerate(rootPath string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if _, ok := o.videoExts[ext]; ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func (o *Orchestrator) finish(scanID string, tracker *Tracker, status store.ScanStatus) {
	snap := tracker.Snapshot()
	tracker.setStatus(status)

	ctx := context.Background()
	if err := o.store.UpdateScanProgress(ctx, scanID, snap.ProcessedFiles, snap.FailedFiles, ""); err != nil {
		o.logger.Error("persist final progress",
			logging.String(logging.FieldScanID, scanID),
			logging.Error(err),
		)
	}
	if err := o.store.MarkScanTerminal(ctx, scanID, status, ""); err != nil {
		o.logger.Error("persist terminal status",
			logging.String(logging.FieldScanID, scanID),
			logging.Error(err),
		)
	}

	snap.Status = status
	o.logger.Info("scan finished",
		logging.String(logging.FieldScanID, scanID),
		logging.String("status", string(status)),
		logging.Int("processed", snap.ProcessedFiles),
		logging.Int("failed", snap.FailedFiles),
	)
	if status == store.ScanCompleted {
		o.notifier.ScanCompleted(ctx, snap)
	}
}

func (o *Orchestrator) fail(scanID string, tracker *Tracker, cause error) {
	snap := tracker.Snapshot()
	tracker.setStatus(store.ScanFailed)

	ctx := context.Background()
	if err := o.store.MarkScanTerminal(ctx, scanID, store.ScanFailed, cause.Error()); err != nil {
		o.logger.Error("persist failed status",
			logging.String(logging.FieldScanID, scanID),
			logging.Error(err),
		)
	}

	snap.Status = store.ScanFailed
	o.logger.Error("scan failed",
		logging.String(logging.FieldScanID, scanID),
		logging.Error(cause),
	)
	o.notifier.ScanFailed(ctx, snap, cause)
}
