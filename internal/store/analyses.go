package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

// ErrAnalysisNotFound is returned when a lookup matches no analysis.
var ErrAnalysisNotFound = errors.New("analysis not found")

const analysisColumns = "id, scan_id, file_path, file_name, file_size, status, properties_json, rating_json, rating, score, label, broken, broken_reason, created_at, updated_at"

// BeginAnalysis upserts a processing placeholder for the file so a crash
// mid-probe leaves a visible stuck record instead of nothing.
func (s *Store) BeginAnalysis(ctx context.Context, scanID, filePath string, fileSize int64) error {
	timestamp := formatTime(time.Now())
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO analyses (scan_id, file_path, file_name, file_size, status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(file_path) DO UPDATE SET
            scan_id = excluded.scan_id,
            file_size = excluded.file_size,
            status = excluded.status,
            updated_at = excluded.updated_at`,
		scanID, filePath, filepath.Base(filePath), fileSize, AnalysisProcessing, timestamp, timestamp,
	)
	if err != nil {
		return fmt.Errorf("begin analysis: %w", err)
	}
	return nil
}

// SaveAnalysis upserts the completed result for a file.
func (s *Store) SaveAnalysis(ctx context.Context, a *Analysis) error {
	timestamp := formatTime(time.Now())
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO analyses (
            scan_id, file_path, file_name, file_size, status,
            properties_json, rating_json, rating, score, label,
            broken, broken_reason, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(file_path) DO UPDATE SET
            scan_id = excluded.scan_id,
            file_size = excluded.file_size,
            status = excluded.status,
            properties_json = excluded.properties_json,
            rating_json = excluded.rating_json,
            rating = excluded.rating,
            score = excluded.score,
            label = excluded.label,
            broken = excluded.broken,
            broken_reason = excluded.broken_reason,
            updated_at = excluded.updated_at`,
		a.ScanID,
		a.FilePath,
		filepath.Base(a.FilePath),
		a.FileSize,
		AnalysisComplete,
		nullableString(a.PropertiesJSON),
		nullableString(a.RatingJSON),
		a.Rating,
		a.Score,
		nullableString(a.Label),
		a.Broken,
		nullableString(a.BrokenReason),
		timestamp,
		timestamp,
	)
	if err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}
	return nil
}

// AnalysisByPath loads one analysis by file path.
func (s *Store) AnalysisByPath(ctx context.Context, filePath string) (*Analysis, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+analysisColumns+` FROM analyses WHERE file_path = ?`, filePath)
	analysis, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAnalysisNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("analysis by path: %w", err)
	}
	return analysis, nil
}

// AnalysisByID loads one analysis by row id.
func (s *Store) AnalysisByID(ctx context.Context, id int64) (*Analysis, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+analysisColumns+` FROM analyses WHERE id = ?`, id)
	analysis, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAnalysisNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("analysis by id: %w", err)
	}
	return analysis, nil
}

// CompletedPaths returns the set of file paths that already have a
// complete analysis, used to skip re-probing on incremental scans.
func (s *Store) CompletedPaths(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT file_path FROM analyses WHERE status = ?`, AnalysisComplete)
	if err != nil {
		return nil, fmt.Errorf("completed paths: %w", err)
	}
	defer rows.Close()

	paths := make(map[string]struct{})
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("scan path: %w", err)
		}
		paths[path] = struct{}{}
	}
	return paths, rows.Err()
}

// AnalysisFilter narrows ListAnalyses results.
type AnalysisFilter struct {
	ScanID     string
	Label      string
	BrokenOnly bool
	Limit      int
}

// ListAnalyses returns analyses newest first, honoring the filter.
func (s *Store) ListAnalyses(ctx context.Context, filter AnalysisFilter) ([]*Analysis, error) {
	query := `SELECT ` + analysisColumns + ` FROM analyses WHERE 1=1`
	var args []any
	if filter.ScanID != "" {
		query += ` AND scan_id = ?`
		args = append(args, filter.ScanID)
	}
	if filter.Label != "" {
		query += ` AND label = ?`
		args = append(args, filter.Label)
	}
	if filter.BrokenOnly {
		query += ` AND broken = 1`
	}
	query += ` ORDER BY updated_at DESC, id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	var analyses []*Analysis
	for rows.Next() {
		analysis, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("scan analysis row: %w", err)
		}
		analyses = append(analyses, analysis)
	}
	return analyses, rows.Err()
}

// ResetStuckAnalyses deletes processing records older than cutoff so the
// next scan re-attempts those files. Returns the number cleared.
func (s *Store) ResetStuckAnalyses(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(
		ctx,
		`DELETE FROM analyses WHERE status = ? AND updated_at < ?`,
		AnalysisProcessing, formatTime(cutoff),
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck analyses: %w", err)
	}
	return res.RowsAffected()
}

// DeleteAnalysesUnderRoot removes analyses for files under rootPath,
// used by forced rescans.
func (s *Store) DeleteAnalysesUnderRoot(ctx context.Context, rootPath string) (int64, error) {
	res, err := s.db.ExecContext(
		ctx,
		`DELETE FROM analyses WHERE file_path = ? OR file_path LIKE ?`,
		rootPath, filepath.Clean(rootPath)+string(filepath.Separator)+"%",
	)
	if err != nil {
		return 0, fmt.Errorf("delete analyses under root: %w", err)
	}
	return res.RowsAffected()
}

// RecordFailure stores a per-file failure record.
func (s *Store) RecordFailure(ctx context.Context, f *Failure) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO failures (scan_id, file_path, file_name, file_size, error_kind, error_message, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.ScanID,
		f.FilePath,
		filepath.Base(f.FilePath),
		f.FileSize,
		f.ErrorKind,
		nullableString(f.ErrorMessage),
		formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("record failure: %w", err)
	}
	return nil
}

// FailuresForScan returns failure records for one scan, oldest first.
func (s *Store) FailuresForScan(ctx context.Context, scanID string) ([]*Failure, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, scan_id, file_path, file_name, file_size, error_kind, error_message, created_at
         FROM failures WHERE scan_id = ? ORDER BY id`,
		scanID,
	)
	if err != nil {
		return nil, fmt.Errorf("failures for scan: %w", err)
	}
	defer rows.Close()

	var failures []*Failure
	for rows.Next() {
		var (
			f            Failure
			errorMessage sql.NullString
			createdRaw   sql.NullString
		)
		if err := rows.Scan(&f.ID, &f.ScanID, &f.FilePath, &f.FileName, &f.FileSize, &f.ErrorKind, &errorMessage, &createdRaw); err != nil {
			return nil, fmt.Errorf("scan failure row: %w", err)
		}
		f.ErrorMessage = errorMessage.String
		f.CreatedAt = parseTime(createdRaw)
		failures = append(failures, &f)
	}
	return failures, rows.Err()
}

// LibraryStats aggregates analysis and scan counts for the status
// surface.
func (s *Store) LibraryStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{LabelCounts: make(map[string]int)}

	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1), COALESCE(SUM(broken), 0) FROM analyses WHERE status = ?`, AnalysisComplete)
	if err := row.Scan(&stats.TotalAnalyses, &stats.BrokenFiles); err != nil {
		return nil, fmt.Errorf("analysis counts: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT label, COUNT(1) FROM analyses WHERE status = ? AND label IS NOT NULL GROUP BY label`, AnalysisComplete)
	if err != nil {
		return nil, fmt.Errorf("label counts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var label string
		var count int
		if err := rows.Scan(&label, &count); err != nil {
			return nil, fmt.Errorf("scan label count: %w", err)
		}
		stats.LabelCounts[label] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	row = s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM scans WHERE status IN (?, ?)`, ScanPending, ScanRunning)
	if err := row.Scan(&stats.ActiveScans); err != nil {
		return nil, fmt.Errorf("active scans: %w", err)
	}
	row = s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM scans WHERE status = ?`, ScanCompleted)
	if err := row.Scan(&stats.CompletedScans); err != nil {
		return nil, fmt.Errorf("completed scans: %w", err)
	}

	return stats, nil
}

func scanAnalysis(scanner interface{ Scan(dest ...any) error }) (*Analysis, error) {
	var (
		a            Analysis
		statusStr    string
		properties   sql.NullString
		ratingJSON   sql.NullString
		label        sql.NullString
		broken       sql.NullInt64
		brokenReason sql.NullString
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
	)

	if err := scanner.Scan(
		&a.ID,
		&a.ScanID,
		&a.FilePath,
		&a.FileName,
		&a.FileSize,
		&statusStr,
		&properties,
		&ratingJSON,
		&a.Rating,
		&a.Score,
		&label,
		&broken,
		&brokenReason,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	a.Status = AnalysisStatus(statusStr)
	a.PropertiesJSON = properties.String
	a.RatingJSON = ratingJSON.String
	a.Label = label.String
	a.Broken = broken.Int64 != 0
	a.BrokenReason = brokenReason.String
	a.CreatedAt = parseTime(createdRaw)
	a.UpdatedAt = parseTime(updatedRaw)
	return &a, nil
}
