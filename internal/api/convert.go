package api

import (
	"encoding/json"
	"time"

	"reelcheck/internal/scanner"
	"reelcheck/internal/store"
)

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

// FromScan converts a persisted scan record.
func FromScan(scan *store.Scan) ScanSummary {
	summary := ScanSummary{
		ID:             scan.ID,
		RootPath:       scan.RootPath,
		Status:         string(scan.Status),
		TotalFiles:     scan.TotalFiles,
		ProcessedFiles: scan.ProcessedFiles,
		FailedFiles:    scan.FailedFiles,
		CurrentFile:    scan.CurrentFile,
		ErrorMessage:   scan.ErrorMessage,
		CreatedAt:      formatTime(scan.CreatedAt),
		StartedAt:      formatTimePtr(scan.StartedAt),
		CompletedAt:    formatTimePtr(scan.CompletedAt),
	}
	if scan.TotalFiles > 0 {
		summary.Percent = float64(scan.ProcessedFiles+scan.FailedFiles) / float64(scan.TotalFiles) * 100
	}
	return summary
}

// FromSnapshot converts live progress into a scan summary.
func FromSnapshot(snap scanner.Snapshot) ScanSummary {
	return ScanSummary{
		ID:             snap.ScanID,
		RootPath:       snap.RootPath,
		Status:         string(snap.Status),
		TotalFiles:     snap.TotalFiles,
		ProcessedFiles: snap.ProcessedFiles,
		FailedFiles:    snap.FailedFiles,
		Percent:        snap.Percent(),
		CurrentFile:    snap.CurrentFile,
		StartedAt:      formatTime(snap.StartedAt),
	}
}

// MergeSnapshot overlays live progress counters onto a scan summary.
func MergeSnapshot(summary ScanSummary, snap scanner.Snapshot) ScanSummary {
	summary.Status = string(snap.Status)
	summary.TotalFiles = snap.TotalFiles
	summary.ProcessedFiles = snap.ProcessedFiles
	summary.FailedFiles = snap.FailedFiles
	summary.CurrentFile = snap.CurrentFile
	summary.Percent = snap.Percent()
	return summary
}

// FromScans converts a list of scan records.
func FromScans(scans []*store.Scan) []ScanSummary {
	if len(scans) == 0 {
		return nil
	}
	out := make([]ScanSummary, 0, len(scans))
	for _, scan := range scans {
		out = append(out, FromScan(scan))
	}
	return out
}

// FromFailure converts a persisted failure record.
func FromFailure(f *store.Failure) FailureRecord {
	return FailureRecord{
		FilePath:     f.FilePath,
		FileName:     f.FileName,
		FileSize:     f.FileSize,
		ErrorKind:    f.ErrorKind,
		ErrorMessage: f.ErrorMessage,
		CreatedAt:    formatTime(f.CreatedAt),
	}
}

// FromFailures converts a list of failure records.
func FromFailures(failures []*store.Failure) []FailureRecord {
	if len(failures) == 0 {
		return nil
	}
	out := make([]FailureRecord, 0, len(failures))
	for _, f := range failures {
		out = append(out, FromFailure(f))
	}
	return out
}

// FromAnalysis converts a persisted analysis to its summary form.
func FromAnalysis(a *store.Analysis) AnalysisSummary {
	return AnalysisSummary{
		ID:           a.ID,
		FilePath:     a.FilePath,
		FileName:     a.FileName,
		FileSize:     a.FileSize,
		Rating:       a.Rating,
		Score:        a.Score,
		Label:        a.Label,
		Broken:       a.Broken,
		BrokenReason: a.BrokenReason,
		UpdatedAt:    formatTime(a.UpdatedAt),
	}
}

// FromAnalyses converts a list of analyses.
func FromAnalyses(analyses []*store.Analysis) []AnalysisSummary {
	if len(analyses) == 0 {
		return nil
	}
	out := make([]AnalysisSummary, 0, len(analyses))
	for _, a := range analyses {
		out = append(out, FromAnalysis(a))
	}
	return out
}

// FromAnalysisDetail converts an analysis with its embedded reports.
func FromAnalysisDetail(a *store.Analysis) AnalysisDetail {
	detail := AnalysisDetail{AnalysisSummary: FromAnalysis(a)}
	if a.PropertiesJSON != "" {
		detail.Properties = json.RawMessage(a.PropertiesJSON)
	}
	if a.RatingJSON != "" {
		detail.RatingReport = json.RawMessage(a.RatingJSON)
	}
	return detail
}

// FromStats converts aggregate library statistics.
func FromStats(stats *store.Stats) LibraryStats {
	return LibraryStats{
		TotalAnalyses:  stats.TotalAnalyses,
		BrokenFiles:    stats.BrokenFiles,
		LabelCounts:    stats.LabelCounts,
		ActiveScans:    stats.ActiveScans,
		CompletedScans: stats.CompletedScans,
	}
}
