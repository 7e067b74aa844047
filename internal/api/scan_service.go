package api

import (
	"context"
	"strings"

	"reelcheck/internal/scanner"
	"reelcheck/internal/store"
)

// ScanController abstracts the orchestrator operations the API needs.
type ScanController interface {
	Start(ctx context.Context, rootPath string, force bool) (*store.Scan, error)
	Cancel(ctx context.Context, scanID string) error
	Progress(ctx context.Context, scanID string) (scanner.Snapshot, error)
}

// ScanService exposes scan control and read operations returning API
// DTOs.
type ScanService struct {
	store      *store.Store
	controller ScanController
}

// NewScanService constructs a ScanService around the store and
// orchestrator.
func NewScanService(st *store.Store, controller ScanController) *ScanService {
	if st == nil || controller == nil {
		return nil
	}
	return &ScanService{store: st, controller: controller}
}

// Start launches a scan and returns its summary.
func (s *ScanService) Start(ctx context.Context, req StartScanRequest) (ScanSummary, error) {
	scan, err := s.controller.Start(ctx, strings.TrimSpace(req.Path), req.Force)
	if err != nil {
		return ScanSummary{}, err
	}
	return FromScan(scan), nil
}

// Cancel signals a scan to stop.
func (s *ScanService) Cancel(ctx context.Context, scanID string) error {
	return s.controller.Cancel(ctx, scanID)
}

// List returns scans newest first, optionally filtered by status names.
func (s *ScanService) List(ctx context.Context, statuses ...string) ([]ScanSummary, error) {
	filter := make([]store.ScanStatus, 0, len(statuses))
	for _, status := range statuses {
		status = strings.TrimSpace(status)
		if status != "" {
			filter = append(filter, store.ScanStatus(status))
		}
	}
	scans, err := s.store.ListScans(ctx, filter...)
	if err != nil {
		return nil, err
	}

	summaries := FromScans(scans)
	for i := range summaries {
		if snap, err := s.controller.Progress(ctx, summaries[i].ID); err == nil && snap.Status == store.ScanRunning {
			summaries[i] = MergeSnapshot(summaries[i], snap)
		}
	}
	return summaries, nil
}

// Describe returns one scan with live progress overlaid when the scan
// is still running.
func (s *ScanService) Describe(ctx context.Context, scanID string) (ScanSummary, error) {
	scan, err := s.store.GetScan(ctx, scanID)
	if err != nil {
		return ScanSummary{}, err
	}
	summary := FromScan(scan)
	if !scan.Status.IsTerminal() {
		if snap, err := s.controller.Progress(ctx, scanID); err == nil {
			summary = MergeSnapshot(summary, snap)
		}
	}
	return summary, nil
}

// Failures lists the failure records of one scan.
func (s *ScanService) Failures(ctx context.Context, scanID string) ([]FailureRecord, error) {
	if _, err := s.store.GetScan(ctx, scanID); err != nil {
		return nil, err
	}
	failures, err := s.store.FailuresForScan(ctx, scanID)
	if err != nil {
		return nil, err
	}
	return FromFailures(failures), nil
}

// Results lists analyzed files, honoring the filter.
func (s *ScanService) Results(ctx context.Context, filter store.AnalysisFilter) ([]AnalysisSummary, error) {
	analyses, err := s.store.ListAnalyses(ctx, filter)
	if err != nil {
		return nil, err
	}
	return FromAnalyses(analyses), nil
}

// Result fetches one analysis with its full reports.
func (s *ScanService) Result(ctx context.Context, id int64) (AnalysisDetail, error) {
	analysis, err := s.store.AnalysisByID(ctx, id)
	if err != nil {
		return AnalysisDetail{}, err
	}
	return FromAnalysisDetail(analysis), nil
}

// Stats returns aggregate library statistics.
func (s *ScanService) Stats(ctx context.Context) (LibraryStats, error) {
	stats, err := s.store.LibraryStats(ctx)
	if err != nil {
		return LibraryStats{}, err
	}
	return FromStats(stats), nil
}
