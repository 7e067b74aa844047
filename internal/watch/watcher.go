package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"reelcheck/internal/config"
	"reelcheck/internal/logging"
	"reelcheck/internal/store"
)

// ScanStarter launches an incremental scan for one library root.
type ScanStarter interface {
	Start(ctx context.Context, rootPath string, force bool) (*store.Scan, error)
}

// Watcher tails the library directories and starts a scan for each root
// once its change burst has been quiet for the debounce window.
type Watcher struct {
	roots     []string
	videoExts map[string]struct{}
	debounce  time.Duration
	starter   ScanStarter
	logger    *slog.Logger

	mu      sync.Mutex
	running bool
	pending map[string]*time.Timer
	fs      *fsnotify.Watcher

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a watcher over the configured library roots. It returns
// (nil, nil) when watching is disabled or no roots are configured.
func New(cfg *config.Config, starter ScanStarter, logger *slog.Logger) (*Watcher, error) {
	if cfg == nil || starter == nil {
		return nil, nil
	}
	if !cfg.Watch.Enabled || len(cfg.Paths.LibraryDirs) == 0 {
		return nil, nil
	}

	debounce := time.Duration(cfg.Watch.DebounceSeconds) * time.Second
	if debounce <= 0 {
		debounce = 30 * time.Second
	}

	roots := make([]string, 0, len(cfg.Paths.LibraryDirs))
	for _, dir := range cfg.Paths.LibraryDirs {
		dir = filepath.Clean(strings.TrimSpace(dir))
		if dir != "" && dir != "." {
			roots = append(roots, dir)
		}
	}
	if len(roots) == 0 {
		return nil, nil
	}

	return &Watcher{
		roots:     roots,
		videoExts: cfg.VideoExtensionSet(),
		debounce:  debounce,
		starter:   starter,
		logger:    logging.NewComponentLogger(logger, "watcher"),
		pending:   make(map[string]*time.Timer),
	}, nil
}

// Start registers the library trees with fsnotify and launches the
// event loop.
func (w *Watcher) Start(ctx context.Context) error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return errors.New("watcher already running")
	}

	notifier, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	for _, root := range w.roots {
		if err := addTree(notifier, root); err != nil {
			_ = notifier.Close()
			return err
		}
	}

	w.fs = notifier
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.running = true

	w.wg.Add(1)
	go w.loop(w.ctx, notifier)

	w.logger.Info("library watcher started",
		logging.Int("roots", len(w.roots)),
		logging.Duration("debounce", w.debounce),
	)
	return nil
}

// Stop halts the event loop, discards pending triggers, and releases
// the fsnotify handles.
func (w *Watcher) Stop() {
	if w == nil {
		return
	}
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	cancel := w.cancel
	notifier := w.fs
	for root, timer := range w.pending {
		timer.Stop()
		delete(w.pending, root)
	}
	w.running = false
	w.cancel = nil
	w.fs = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if notifier != nil {
		_ = notifier.Close()
	}
	w.wg.Wait()
}

func (w *Watcher) loop(ctx context.Context, notifier *fsnotify.Watcher) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-notifier.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-notifier.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error; continuing", logging.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// New directories need their own watch before files land in them.
	if event.Op.Has(fsnotify.Create) {
		w.mu.Lock()
		notifier := w.fs
		w.mu.Unlock()
		if notifier != nil {
			if err := addTree(notifier, event.Name); err == nil {
				w.logger.Debug("watching new directory", logging.String(logging.FieldPath, event.Name))
			}
		}
	}

	if !event.Op.Has(fsnotify.Create | fsnotify.Write | fsnotify.Rename | fsnotify.Remove) {
		return
	}
	ext := strings.ToLower(filepath.Ext(event.Name))
	if _, ok := w.videoExts[ext]; !ok {
		return
	}
	root, ok := w.rootFor(event.Name)
	if !ok {
		return
	}
	w.schedule(root)
}

// rootFor maps an event path to the configured library root that
// contains it. The longest matching root wins so nested library
// configurations resolve to the most specific one.
func (w *Watcher) rootFor(path string) (string, bool) {
	path = filepath.Clean(path)
	best := ""
	for _, root := range w.roots {
		if path != root && !strings.HasPrefix(path, root+string(filepath.Separator)) {
			continue
		}
		if len(root) > len(best) {
			best = root
		}
	}
	return best, best != ""
}

// schedule arms (or re-arms) the debounce timer for one root. Each
// further event within the window pushes the trigger out again.
func (w *Watcher) schedule(root string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	if timer, ok := w.pending[root]; ok {
		timer.Reset(w.debounce)
		return
	}
	w.pending[root] = time.AfterFunc(w.debounce, func() {
		w.trigger(root)
	})
}

func (w *Watcher) trigger(root string) {
	w.mu.Lock()
	delete(w.pending, root)
	ctx := w.ctx
	running := w.running
	w.mu.Unlock()
	if !running || ctx == nil || ctx.Err() != nil {
		return
	}

	scan, err := w.starter.Start(ctx, root, false)
	if err != nil {
		w.logger.Warn("watch-triggered scan failed to start",
			logging.String(logging.FieldPath, root),
			logging.Error(err),
		)
		return
	}
	w.logger.Info("watch-triggered scan started",
		logging.String(logging.FieldScanID, scan.ID),
		logging.String(logging.FieldPath, root),
	)
}

// addTree registers path and every directory beneath it. Non-directory
// paths are ignored.
func addTree(notifier *fsnotify.Watcher, path string) error {
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == path {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		return notifier.Add(p)
	})
}
