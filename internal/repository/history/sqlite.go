package history

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

	domain "github.com/oshokin/med-reminder/internal/domain/reminder"
)

// DefaultLimit is the number of rows Recent returns when no limit is given.
const DefaultLimit = 20

//go:embed schema.sql
var schema string

var (
	// errEmptyPath is returned by Open without a database path.
	errEmptyPath = errors.New("history database path is required")
	// errClosed is returned after Close.
	errClosed = errors.New("history database is closed")
)

// SQLiteRepository stores fired alarms in a SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies the schema.
func Open(ctx context.Context, path string) (*SQLiteRepository, error) {
	if path == "" {
		return nil, errEmptyPath
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err = db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()

			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	if _, err = db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Record appends a fired alarm.
func (r *SQLiteRepository) Record(ctx context.Context, fired domain.FiredAlarm) error {
	if r == nil || r.db == nil {
		return errClosed
	}

	if fired.FiredAt.IsZero() {
		fired.FiredAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO fired_alarms (owner_id, label, hour, minute, test_mode, delivered, fired_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		fired.OwnerID, fired.Label, fired.Spec.Hour, fired.Spec.Minute,
		fired.Spec.TestMode, fired.Delivered, fired.FiredAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert fired alarm: %w", err)
	}

	return nil
}

// Recent returns the latest fired alarms, newest first. An empty ownerID
// returns alarms of every owner. A non-positive limit means DefaultLimit.
func (r *SQLiteRepository) Recent(ctx context.Context, ownerID string, limit int) ([]domain.FiredAlarm, error) {
	if r == nil || r.db == nil {
		return nil, errClosed
	}

	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT owner_id, label, hour, minute, test_mode, delivered, fired_at
		 FROM fired_alarms
		 WHERE ? = '' OR owner_id = ?
		 ORDER BY fired_at DESC, id DESC
		 LIMIT ?`,
		ownerID, ownerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query fired alarms: %w", err)
	}

	defer rows.Close()

	var result []domain.FiredAlarm

	for rows.Next() {
		var (
			fired   domain.FiredAlarm
			firedAt string
		)

		err = rows.Scan(&fired.OwnerID, &fired.Label, &fired.Spec.Hour, &fired.Spec.Minute,
			&fired.Spec.TestMode, &fired.Delivered, &firedAt)
		if err != nil {
			return nil, fmt.Errorf("scan fired alarm: %w", err)
		}

		if fired.FiredAt, err = time.Parse(time.RFC3339Nano, firedAt); err != nil {
			return nil, fmt.Errorf("parse fired_at %q: %w", firedAt, err)
		}

		result = append(result, fired)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fired alarms: %w", err)
	}

	return result, nil
}

// Close closes the database.
func (r *SQLiteRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}

	if err := r.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}

	return nil
}
