package api

import (
	"testing"
	"time"

	"reelcheck/internal/scanner"
	"reelcheck/internal/store"
)

func TestFromScanPercent(t *testing.T) {
	started := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	scan := &store.Scan{
		ID:             "scan-1",
		RootPath:       "/library",
		Status:         store.ScanRunning,
		TotalFiles:     10,
		ProcessedFiles: 4,
		FailedFiles:    1,
		CreatedAt:      started,
		StartedAt:      &started,
	}

	summary := FromScan(scan)
	if summary.Percent != 50 {
		t.Errorf("percent = %v, want 50", summary.Percent)
	}
	if summary.StartedAt != "2025-06-01T12:00:00Z" {
		t.Errorf("started_at = %q", summary.StartedAt)
	}
	if summary.CompletedAt != "" {
		t.Errorf("completed_at = %q, want empty", summary.CompletedAt)
	}
}

func TestFromScanZeroTotal(t *testing.T) {
	summary := FromScan(&store.Scan{ID: "x", Status: store.ScanPending})
	if summary.Percent != 0 {
		t.Errorf("percent = %v, want 0", summary.Percent)
	}
}

func TestMergeSnapshotOverridesCounters(t *testing.T) {
	summary := FromScan(&store.Scan{
		ID:         "scan-1",
		Status:     store.ScanRunning,
		TotalFiles: 10,
	})
	snap := scanner.Snapshot{
		ScanID:         "scan-1",
		Status:         store.ScanRunning,
		TotalFiles:     10,
		ProcessedFiles: 7,
		FailedFiles:    1,
		CurrentFile:    "/library/movie.mkv",
	}

	merged := MergeSnapshot(summary, snap)
	if merged.ProcessedFiles != 7 || merged.FailedFiles != 1 {
		t.Errorf("merged = %+v", merged)
	}
	if merged.Percent != 80 {
		t.Errorf("percent = %v, want 80", merged.Percent)
	}
	if merged.CurrentFile != "/library/movie.mkv" {
		t.Errorf("current file = %q", merged.CurrentFile)
	}
}

func TestFromAnalysisDetailEmbedsReports(t *testing.T) {
	detail := FromAnalysisDetail(&store.Analysis{
		ID:             7,
		FilePath:       "/library/movie.mkv",
		FileName:       "movie.mkv",
		Rating:         5,
		Label:          "Good",
		PropertiesJSON: `{"container":"MKV"}`,
		RatingJSON:     `{"rating":5}`,
	})

	if detail.Rating != 5 || detail.Label != "Good" {
		t.Errorf("detail = %+v", detail)
	}
	if string(detail.Properties) != `{"container":"MKV"}` {
		t.Errorf("properties = %s", detail.Properties)
	}
	if string(detail.RatingReport) != `{"rating":5}` {
		t.Errorf("rating report = %s", detail.RatingReport)
	}
}

func TestFromFailures(t *testing.T) {
	records := FromFailures([]*store.Failure{
		{FilePath: "/a.mkv", FileName: "a.mkv", ErrorKind: "timeout"},
	})
	if len(records) != 1 || records[0].ErrorKind != "timeout" {
		t.Errorf("records = %+v", records)
	}
	if FromFailures(nil) != nil {
		t.Error("empty input should convert to nil")
	}
}
