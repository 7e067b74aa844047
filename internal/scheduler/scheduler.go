// Package scheduler runs the daemon's periodic maintenance: the sweep
// that requeues analyses stuck in the processing state, and log
// retention pruning. Jobs are cron-scheduled; an empty spec disables
// the job.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"reelcheck/internal/config"
	"reelcheck/internal/logging"
	"reelcheck/internal/store"
)

// Scheduler owns the cron runner and its maintenance jobs.
type Scheduler struct {
	cfg    *config.Config
	store  *store.Store
	logger *slog.Logger
	cron   *cron.Cron
}

// New builds a scheduler. It returns nil when neither job has a spec
// configured.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger) *Scheduler {
	if cfg == nil || st == nil {
		return nil
	}
	if strings.TrimSpace(cfg.Scheduler.ReconcileSpec) == "" && strings.TrimSpace(cfg.Scheduler.RetentionSpec) == "" {
		return nil
	}
	return &Scheduler{
		cfg:    cfg,
		store:  st,
		logger: logging.NewComponentLogger(logger, "scheduler"),
	}
}

// Start registers the configured jobs and launches the cron runner.
func (s *Scheduler) Start() error {
	if s == nil {
		return nil
	}
	runner := cron.New()

	if spec := strings.TrimSpace(s.cfg.Scheduler.ReconcileSpec); spec != "" {
		if _, err := runner.AddFunc(spec, s.runReconcile); err != nil {
			return fmt.Errorf("schedule reconcile job: %w", err)
		}
	}
	if spec := strings.TrimSpace(s.cfg.Scheduler.RetentionSpec); spec != "" {
		if _, err := runner.AddFunc(spec, s.runRetention); err != nil {
			return fmt.Errorf("schedule retention job: %w", err)
		}
	}

	s.cron = runner
	runner.Start()
	s.logger.Info("scheduler started",
		logging.String("reconcile_spec", s.cfg.Scheduler.ReconcileSpec),
		logging.String("retention_spec", s.cfg.Scheduler.RetentionSpec),
	)
	return nil
}

// Stop halts the cron runner and waits for in-flight jobs.
func (s *Scheduler) Stop() {
	if s == nil || s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.cron = nil
}

// runReconcile clears analyses that have sat in the processing state
// longer than the configured reprocess window. A probe that died
// mid-flight leaves such a row behind; removing it lets the next scan
// pick the file up again.
func (s *Scheduler) runReconcile() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-s.cfg.ReprocessAfter())
	removed, err := s.store.ResetStuckAnalyses(ctx, cutoff)
	if err != nil {
		s.logger.Error("stuck-analysis sweep failed", logging.Error(err))
		return
	}
	if removed > 0 {
		s.logger.Info("requeued stuck analyses",
			logging.Int64("removed", removed),
			logging.String(logging.FieldEventType, "analyses_reconciled"),
		)
	}
}

// runRetention prunes rotated log files past the retention window.
func (s *Scheduler) runRetention() {
	logging.CleanupOldLogs(s.logger, s.cfg.Paths.LogDir, "*.log*", s.cfg.Logging.RetentionDays)
}
