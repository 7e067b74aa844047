package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"log/slog"

	"github.com/gofrs/flock"

	"reelcheck/internal/config"
	"reelcheck/internal/logging"
	"reelcheck/internal/mediainfo"
	"reelcheck/internal/notifications"
	"reelcheck/internal/rating"
	"reelcheck/internal/scanner"
	"reelcheck/internal/scheduler"
	"reelcheck/internal/store"
	"reelcheck/internal/watch"
)

// Daemon coordinates the background services and enforces
// single-instance execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *store.Store

	registry     *scanner.Registry
	orchestrator *scanner.Orchestrator
	watcher      *watch.Watcher
	scheduler    *scheduler.Scheduler
	api          *apiServer

	logPath  string
	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	DatabasePath string
	LockFilePath string
	ActiveScans  []scanner.Snapshot
	Library      *store.Stats
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || st == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, and logger")
	}

	prober := mediainfo.NewProber(cfg.Probe.Binary, cfg.ProbeTimeout(), logger)
	engine := rating.NewEngine(nil, cfg.Rating)
	registry := scanner.NewRegistry()
	notifier := notifications.NewScanNotifier(notifications.NewService(cfg), cfg, logger)
	orchestrator := scanner.New(st, prober, engine, registry, notifier, cfg, logger)

	watcher, err := watch.New(cfg, orchestrator, logger)
	if err != nil {
		return nil, fmt.Errorf("build watcher: %w", err)
	}

	lockPath := filepath.Join(cfg.Paths.DataDir, "reelcheckd.lock")
	d := &Daemon{
		cfg:          cfg,
		logger:       logger,
		store:        st,
		registry:     registry,
		orchestrator: orchestrator,
		watcher:      watcher,
		scheduler:    scheduler.New(cfg, st, logger),
		logPath:      filepath.Join(cfg.Paths.LogDir, logging.LogFileName),
		lockPath:     lockPath,
		lock:         flock.New(lockPath),
	}

	api, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, fmt.Errorf("build api server: %w", err)
	}
	d.api = api
	return d, nil
}

// Start acquires the daemon lock and launches the background services.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another reelcheck daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)

	if err := d.watcher.Start(d.ctx); err != nil {
		d.unwind()
		return fmt.Errorf("start watcher: %w", err)
	}
	if err := d.scheduler.Start(); err != nil {
		d.watcher.Stop()
		d.unwind()
		return fmt.Errorf("start scheduler: %w", err)
	}
	if err := d.api.start(d.ctx); err != nil {
		d.scheduler.Stop()
		d.watcher.Stop()
		d.unwind()
		return fmt.Errorf("start api server: %w", err)
	}

	d.running.Store(true)
	d.logger.Info("reelcheck daemon started", logging.String("lock", d.lockPath))
	return nil
}

func (d *Daemon) unwind() {
	_ = d.lock.Unlock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.ctx = nil
}

// Stop halts background processing and releases the daemon lock.
// Running scans are cancelled and waited for.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	d.scheduler.Stop()
	d.watcher.Stop()
	d.orchestrator.Shutdown()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("reelcheck daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Orchestrator exposes scan control for in-process callers.
func (d *Daemon) Orchestrator() *scanner.Orchestrator {
	return d.orchestrator
}

// TestNotification triggers a test notification using the current
// configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if d.cfg == nil {
		return false, "configuration unavailable", errors.New("configuration unavailable")
	}
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	notifier := notifications.NewService(d.cfg)
	if err := notifier.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// APIAddress returns the bound API listener address, empty when the
// server is not running.
func (d *Daemon) APIAddress() string {
	return d.api.address()
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		DatabasePath: d.store.Path(),
		LockFilePath: d.lockPath,
		ActiveScans:  d.registry.Active(),
	}
	stats, err := d.store.LibraryStats(ctx)
	if err != nil {
		d.logger.Warn("library stats unavailable", logging.Error(err))
	} else {
		status.Library = stats
	}
	return status
}
