package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrJobNotFound indicates the job id has no history row.
var ErrJobNotFound = errors.New("job not found")

// RecordJob inserts or refreshes a job history row. The kind names the
// operation that started the job ("upload-context", "video", ...).
func (s *Store) RecordJob(ctx context.Context, record JobRecord) error {
	if record.JobID == "" {
		return errors.New("job id required")
	}
	now := timestamp()
	if record.CreatedAt == "" {
		record.CreatedAt = now
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO job_history (job_id, kind, asset_id, status, progress, message, error, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(job_id) DO UPDATE SET
            kind = excluded.kind,
            asset_id = excluded.asset_id,
            status = excluded.status,
            progress = excluded.progress,
            message = excluded.message,
            error = excluded.error,
            updated_at = excluded.updated_at`,
		record.JobID, record.Kind, record.AssetID, record.Status,
		record.Progress, record.Message, record.Error, record.CreatedAt, now)
	if err != nil {
		return fmt.Errorf("record job %s: %w", record.JobID, err)
	}
	return nil
}

// UpdateJobStatus patches the lifecycle fields of a known job.
func (s *Store) UpdateJobStatus(ctx context.Context, jobID, status string, progress int, message, jobErr string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE job_history SET status = ?, progress = ?, message = ?, error = ?, updated_at = ?
         WHERE job_id = ?`,
		status, progress, message, jobErr, timestamp(), jobID)
	if err != nil {
		return fmt.Errorf("update job %s: %w", jobID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update job %s: %w", jobID, err)
	}
	if affected == 0 {
		return fmt.Errorf("update job %s: %w", jobID, ErrJobNotFound)
	}
	return nil
}

// Job returns one history row by id.
func (s *Store) Job(ctx context.Context, jobID string) (*JobRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT job_id, kind, asset_id, status, progress, message, error, created_at, updated_at
         FROM job_history WHERE job_id = ?`, jobID)
	record, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("job %s: %w", jobID, ErrJobNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read job %s: %w", jobID, err)
	}
	return record, nil
}

// RecentJobs lists history rows newest first, capped at limit.
func (s *Store) RecentJobs(ctx context.Context, limit int) ([]JobRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT job_id, kind, asset_id, status, progress, message, error, created_at, updated_at
         FROM job_history ORDER BY updated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var records []JobRecord
	for rows.Next() {
		record, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*JobRecord, error) {
	var record JobRecord
	err := row.Scan(&record.JobID, &record.Kind, &record.AssetID, &record.Status,
		&record.Progress, &record.Message, &record.Error, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &record, nil
}
