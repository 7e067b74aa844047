package api

import "encoding/json"

// StartScanRequest is the body of POST /api/scans.
type StartScanRequest struct {
	Path  string `json:"path"`
	Force bool   `json:"force,omitempty"`
}

// ScanSummary is the wire form of one scan.
type ScanSummary struct {
	ID             string  `json:"id"`
	RootPath       string  `json:"root_path"`
	Status         string  `json:"status"`
	TotalFiles     int     `json:"total_files"`
	ProcessedFiles int     `json:"processed_files"`
	FailedFiles    int     `json:"failed_files"`
	Percent        float64 `json:"percent"`
	CurrentFile    string  `json:"current_file,omitempty"`
	ErrorMessage   string  `json:"error_message,omitempty"`
	CreatedAt      string  `json:"created_at,omitempty"`
	StartedAt      string  `json:"started_at,omitempty"`
	CompletedAt    string  `json:"completed_at,omitempty"`
}

// ScanListResponse wraps GET /api/scans.
type ScanListResponse struct {
	Scans []ScanSummary `json:"scans"`
}

// ScanResponse wraps a single scan.
type ScanResponse struct {
	Scan ScanSummary `json:"scan"`
}

// FailureRecord is the wire form of a per-file failure.
type FailureRecord struct {
	FilePath     string `json:"file_path"`
	FileName     string `json:"file_name"`
	FileSize     int64  `json:"file_size"`
	ErrorKind    string `json:"error_kind"`
	ErrorMessage string `json:"error_message,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
}

// FailureListResponse wraps GET /api/scans/{id}/failures.
type FailureListResponse struct {
	Failures []FailureRecord `json:"failures"`
}

// AnalysisSummary is the wire form of one analyzed file.
type AnalysisSummary struct {
	ID           int64  `json:"id"`
	FilePath     string `json:"file_path"`
	FileName     string `json:"file_name"`
	FileSize     int64  `json:"file_size"`
	Rating       int    `json:"rating"`
	Score        int    `json:"score"`
	Label        string `json:"label,omitempty"`
	Broken       bool   `json:"broken"`
	BrokenReason string `json:"broken_reason,omitempty"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

// AnalysisDetail adds the full property and rating reports.
type AnalysisDetail struct {
	AnalysisSummary
	Properties   json.RawMessage `json:"properties,omitempty"`
	RatingReport json.RawMessage `json:"rating_report,omitempty"`
}

// AnalysisListResponse wraps GET /api/results.
type AnalysisListResponse struct {
	Results []AnalysisSummary `json:"results"`
}

// AnalysisResponse wraps GET /api/results/{id}.
type AnalysisResponse struct {
	Result AnalysisDetail `json:"result"`
}

// LibraryStats summarizes analyzed files for the status surface.
type LibraryStats struct {
	TotalAnalyses  int            `json:"total_analyses"`
	BrokenFiles    int            `json:"broken_files"`
	LabelCounts    map[string]int `json:"label_counts,omitempty"`
	ActiveScans    int            `json:"active_scans"`
	CompletedScans int            `json:"completed_scans"`
}

// DaemonStatus is the payload of GET /api/status.
type DaemonStatus struct {
	Running      bool          `json:"running"`
	PID          int           `json:"pid"`
	DatabasePath string        `json:"database_path,omitempty"`
	LockFilePath string        `json:"lock_file_path,omitempty"`
	ActiveScans  []ScanSummary `json:"active_scans,omitempty"`
	Library      LibraryStats  `json:"library"`
}
