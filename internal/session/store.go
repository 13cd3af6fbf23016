package session

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"maestro/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the
// schema changes; stale databases are reported, never auto-migrated.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by a different
// release and must be removed before use.
var ErrSchemaMismatch = errors.New("session schema version mismatch")

// Store persists session state backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the session database under the
// configured state directory.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.SessionDBPath())
}

// OpenPath opens the session database at an explicit path.
func OpenPath(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s and sign in again)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO session (id, updated_at) VALUES (1, ?)", timestamp()); err != nil {
		return fmt.Errorf("seed session row: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Current returns the stored session. A fresh database yields an empty,
// logged-out session rather than an error.
func (s *Store) Current(ctx context.Context) (*Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT token, user_id, email, full_name, current_asset_id, current_job_id, updated_at
         FROM session WHERE id = 1`)
	var sess Session
	err := row.Scan(&sess.Token, &sess.UserID, &sess.Email, &sess.FullName,
		&sess.CurrentAssetID, &sess.CurrentJobID, &sess.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	return &sess, nil
}

// SaveLogin records a successful sign-in. The active asset and job
// pointers survive re-login for the same user and reset otherwise.
func (s *Store) SaveLogin(ctx context.Context, token, userID, email, fullName string) error {
	current, err := s.Current(ctx)
	if err != nil {
		return err
	}
	assetID := current.CurrentAssetID
	jobID := current.CurrentJobID
	if current.UserID != "" && current.UserID != userID {
		assetID = ""
		jobID = ""
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE session SET token = ?, user_id = ?, email = ?, full_name = ?,
            current_asset_id = ?, current_job_id = ?, updated_at = ?
         WHERE id = 1`,
		token, userID, email, fullName, assetID, jobID, timestamp())
	if err != nil {
		return fmt.Errorf("save login: %w", err)
	}
	return nil
}

// Clear signs the user out and drops all session pointers. Job history
// is kept for inspection.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE session SET token = '', user_id = '', email = '', full_name = '',
            current_asset_id = '', current_job_id = '', updated_at = ?
         WHERE id = 1`, timestamp())
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// SetCurrentAsset records the asset the mentor is producing.
func (s *Store) SetCurrentAsset(ctx context.Context, assetID string) error {
	return s.setPointer(ctx, "current_asset_id", assetID)
}

// SetCurrentJob records the job the watchers should follow. An empty id
// clears the pointer once the job reaches a terminal state.
func (s *Store) SetCurrentJob(ctx context.Context, jobID string) error {
	return s.setPointer(ctx, "current_job_id", jobID)
}

func (s *Store) setPointer(ctx context.Context, column, value string) error {
	_, err := s.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE session SET %s = ?, updated_at = ? WHERE id = 1", column),
		value, timestamp())
	if err != nil {
		return fmt.Errorf("update %s: %w", column, err)
	}
	return nil
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
