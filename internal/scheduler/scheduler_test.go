package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"reelcheck/internal/logging"
	"reelcheck/internal/testsupport"
)

func TestReconcileSweepClearsStuckAnalyses(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Scheduler.ReconcileSpec = "@hourly"
	cfg.Scheduler.ReprocessAfter = "1ns"
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	scan, err := st.NewScan(ctx, testsupport.LibraryDir(t, cfg))
	if err != nil {
		t.Fatalf("NewScan: %v", err)
	}
	if err := st.BeginAnalysis(ctx, scan.ID, "/library/stuck.mkv", 1024); err != nil {
		t.Fatalf("BeginAnalysis: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	sched := New(cfg, st, logging.NewNop())
	if sched == nil {
		t.Fatal("expected a scheduler")
	}
	sched.runReconcile()

	removed, err := st.ResetStuckAnalyses(ctx, time.Now())
	if err != nil {
		t.Fatalf("ResetStuckAnalyses: %v", err)
	}
	if removed != 0 {
		t.Errorf("sweep left %d stuck rows behind", removed)
	}
}

func TestReconcileSweepKeepsFreshRows(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Scheduler.ReconcileSpec = "@hourly"
	cfg.Scheduler.ReprocessAfter = "24h"
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	scan, err := st.NewScan(ctx, testsupport.LibraryDir(t, cfg))
	if err != nil {
		t.Fatalf("NewScan: %v", err)
	}
	if err := st.BeginAnalysis(ctx, scan.ID, "/library/live.mkv", 1024); err != nil {
		t.Fatalf("BeginAnalysis: %v", err)
	}

	sched := New(cfg, st, logging.NewNop())
	sched.runReconcile()

	removed, err := st.ResetStuckAnalyses(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("ResetStuckAnalyses: %v", err)
	}
	if removed != 1 {
		t.Errorf("fresh processing row should have survived the sweep, removed=%d", removed)
	}
}

func TestRetentionJobPrunesOldLogs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Scheduler.RetentionSpec = "@daily"
	cfg.Logging.RetentionDays = 7
	st := testsupport.MustOpenStore(t, cfg)

	old := filepath.Join(cfg.Paths.LogDir, "reelcheck.log.1")
	if err := os.WriteFile(old, []byte("old"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	stale := time.Now().AddDate(0, 0, -30)
	if err := os.Chtimes(old, stale, stale); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	current := filepath.Join(cfg.Paths.LogDir, logging.LogFileName)
	if err := os.WriteFile(current, []byte("live"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	sched := New(cfg, st, logging.NewNop())
	sched.runRetention()

	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("stale rotated log should have been pruned")
	}
	if _, err := os.Stat(current); err != nil {
		t.Errorf("current log should survive: %v", err)
	}
}

func TestNewReturnsNilWithoutSpecs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Scheduler.ReconcileSpec = ""
	cfg.Scheduler.RetentionSpec = ""
	st := testsupport.MustOpenStore(t, cfg)

	if sched := New(cfg, st, logging.NewNop()); sched != nil {
		t.Error("expected nil scheduler when no jobs are configured")
	}
}

func TestStartRejectsBadSpec(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Scheduler.ReconcileSpec = "not a cron spec"
	st := testsupport.MustOpenStore(t, cfg)

	sched := New(cfg, st, logging.NewNop())
	if err := sched.Start(); err == nil {
		t.Error("expected an error for a malformed cron spec")
	}
}

func TestStartStopLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Scheduler.ReconcileSpec = "@hourly"
	cfg.Scheduler.RetentionSpec = "@daily"
	st := testsupport.MustOpenStore(t, cfg)

	sched := New(cfg, st, logging.NewNop())
	if err := sched.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	sched.Stop()
	sched.Stop()
}
