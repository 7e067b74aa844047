package store

import "time"

// ScanStatus tracks a scan through its lifecycle. Terminal statuses are
// final; no transition leaves them.
type ScanStatus string

const (
	ScanPending   ScanStatus = "pending"
	ScanRunning   ScanStatus = "running"
	ScanCompleted ScanStatus = "completed"
	ScanFailed    ScanStatus = "failed"
	ScanCancelled ScanStatus = "cancelled"
)

// TerminalScanStatuses lists the statuses a scan can never leave.
var TerminalScanStatuses = []ScanStatus{ScanCompleted, ScanFailed, ScanCancelled}

// IsTerminal reports whether the status is final.
func (s ScanStatus) IsTerminal() bool {
	switch s {
	case ScanCompleted, ScanFailed, ScanCancelled:
		return true
	}
	return false
}

// Scan is the persisted state of one library scan.
type Scan struct {
	ID             string     `json:"id"`
	RootPath       string     `json:"root_path"`
	Status         ScanStatus `json:"status"`
	TotalFiles     int        `json:"total_files"`
	ProcessedFiles int        `json:"processed_files"`
	FailedFiles    int        `json:"failed_files"`
	CurrentFile    string     `json:"current_file,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// AnalysisStatus marks whether a file's analysis finished. Files stuck
// in processing are re-attempted by the reconciliation sweep.
type AnalysisStatus string

const (
	AnalysisProcessing AnalysisStatus = "processing"
	AnalysisComplete   AnalysisStatus = "complete"
)

// Analysis is the persisted per-file result. A broken file is stored as
// a first-class analysis with Broken set, not as a failure: the probe
// succeeded, the media itself is invalid.
type Analysis struct {
	ID             int64          `json:"id"`
	ScanID         string         `json:"scan_id"`
	FilePath       string         `json:"file_path"`
	FileName       string         `json:"file_name"`
	FileSize       int64          `json:"file_size"`
	Status         AnalysisStatus `json:"status"`
	PropertiesJSON string         `json:"-"`
	RatingJSON     string         `json:"-"`
	Rating         int            `json:"rating"`
	Score          int            `json:"score"`
	Label          string         `json:"label,omitempty"`
	Broken         bool           `json:"broken"`
	BrokenReason   string         `json:"broken_reason,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// Failure records a file that could not be analyzed at all.
type Failure struct {
	ID           int64     `json:"id"`
	ScanID       string    `json:"scan_id"`
	FilePath     string    `json:"file_path"`
	FileName     string    `json:"file_name"`
	FileSize     int64     `json:"file_size"`
	ErrorKind    string    `json:"error_kind"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Stats summarizes the whole library for the status surface.
type Stats struct {
	TotalAnalyses  int            `json:"total_analyses"`
	BrokenFiles    int            `json:"broken_files"`
	LabelCounts    map[string]int `json:"label_counts"`
	ActiveScans    int            `json:"active_scans"`
	CompletedScans int            `json:"completed_scans"`
}
