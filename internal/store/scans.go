package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrScanNotFound is returned when a scan id has no record.
var ErrScanNotFound = errors.New("scan not found")

const scanColumns = "id, root_path, status, total_files, processed_files, failed_files, current_file, error_message, created_at, updated_at, started_at, completed_at"

// NewScan inserts a pending scan for rootPath and returns it.
func (s *Store) NewScan(ctx context.Context, rootPath string) (*Scan, error) {
	id := uuid.NewString()
	timestamp := formatTime(time.Now())

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO scans (
            id, root_path, status, total_files, processed_files, failed_files,
            created_at, updated_at
        ) VALUES (?, ?, ?, 0, 0, 0, ?, ?)`,
		id,
		rootPath,
		ScanPending,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert scan: %w", err)
	}

	return s.GetScan(ctx, id)
}

// GetScan loads one scan by id.
func (s *Store) GetScan(ctx context.Context, id string) (*Scan, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+scanColumns+` FROM scans WHERE id = ?`, id)
	scan, err := scanScan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrScanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get scan: %w", err)
	}
	return scan, nil
}

// ListScans returns scans newest first, optionally filtered by status.
func (s *Store) ListScans(ctx context.Context, statuses ...ScanStatus) ([]*Scan, error) {
	query := `SELECT ` + scanColumns + ` FROM scans`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		query += ` WHERE status IN (` + strings.Join(placeholders, ", ") + `)`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}
	defer rows.Close()

	var scans []*Scan
	for rows.Next() {
		scan, err := scanScan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		scans = append(scans, scan)
	}
	return scans, rows.Err()
}

// MarkScanRunning transitions a pending scan to running with its fixed
// file total.
func (s *Store) MarkScanRunning(ctx context.Context, id string, totalFiles int) error {
	timestamp := formatTime(time.Now())
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE scans SET status = ?, total_files = ?, started_at = ?, updated_at = ?
         WHERE id = ? AND status = ?`,
		ScanRunning, totalFiles, timestamp, timestamp, id, ScanPending,
	)
	if err != nil {
		return fmt.Errorf("mark scan running: %w", err)
	}
	return requireRow(res, id)
}

// UpdateScanProgress checkpoints the in-memory counters.
func (s *Store) UpdateScanProgress(ctx context.Context, id string, processed, failed int, currentFile string) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE scans SET processed_files = ?, failed_files = ?, current_file = ?, updated_at = ?
         WHERE id = ?`,
		processed, failed, nullableString(currentFile), formatTime(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("update scan progress: %w", err)
	}
	return nil
}

// MarkScanTerminal moves a scan into a terminal status. The guard on the
// current status makes terminal states final: a completed scan can never
// become cancelled, and vice versa.
func (s *Store) MarkScanTerminal(ctx context.Context, id string, status ScanStatus, errorMessage string) error {
	if !status.IsTerminal() {
		return fmt.Errorf("status %q is not terminal", status)
	}
	timestamp := formatTime(time.Now())
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE scans SET status = ?, error_message = ?, current_file = NULL, completed_at = ?, updated_at = ?
         WHERE id = ? AND status IN (?, ?)`,
		status, nullableString(errorMessage), timestamp, timestamp,
		id, ScanPending, ScanRunning,
	)
	if err != nil {
		return fmt.Errorf("mark scan %s: %w", status, err)
	}
	return requireRow(res, id)
}

func requireRow(res sql.Result, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w or already terminal: %s", ErrScanNotFound, id)
	}
	return nil
}

func scanScan(scanner interface{ Scan(dest ...any) error }) (*Scan, error) {
	var (
		id           string
		rootPath     string
		statusStr    string
		totalFiles   int
		processed    int
		failed       int
		currentFile  sql.NullString
		errorMessage sql.NullString
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
		startedRaw   sql.NullString
		completedRaw sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&rootPath,
		&statusStr,
		&totalFiles,
		&processed,
		&failed,
		&currentFile,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
		&startedRaw,
		&completedRaw,
	); err != nil {
		return nil, err
	}

	return &Scan{
		ID:             id,
		RootPath:       rootPath,
		Status:         ScanStatus(statusStr),
		TotalFiles:     totalFiles,
		ProcessedFiles: processed,
		FailedFiles:    failed,
		CurrentFile:    currentFile.String,
		ErrorMessage:   errorMessage.String,
		CreatedAt:      parseTime(createdRaw),
		UpdatedAt:      parseTime(updatedRaw),
		StartedAt:      parseTimePtr(startedRaw),
		CompletedAt:    parseTimePtr(completedRaw),
	}, nil
}
