// Package ledger keeps an append-only SQLite audit of check runs.
package ledger

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Ledger records runs and their per-record check outcomes. Failures
// while writing the ledger are counted by the caller and never abort
// a batch.
type Ledger struct {
	db *sql.DB
}

// Open creates or opens the ledger database at path. WAL mode, a
// busy timeout and foreign keys are applied; the call is idempotent.
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect ledger: %w", err)
	}

	// SQLite allows one writer; keep a single connection to avoid
	// SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply ledger schema: %w", err)
	}

	return &Ledger{db: db}, nil
}

// Close closes the database.
func (l *Ledger) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

// BeginRun inserts a new run row and returns its id.
func (l *Ledger) BeginRun(ctx context.Context, started time.Time) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("run id: %w", err)
	}
	_, err = l.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at) VALUES (?, ?)`,
		id.String(), started.UTC().Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}
	return id.String(), nil
}

// RecordCheck appends one per-record outcome to the run.
func (l *Ledger) RecordCheck(ctx context.Context, runID, path, status, method, detail string, at time.Time) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO checks (run_id, path, status, method, detail, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		runID, path, status, method, detail, at.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("record check: %w", err)
	}
	return nil
}

// RunTotals is the aggregate row written when a run finishes.
type RunTotals struct {
	Total      int
	Active     int
	Banned     int
	Deleted    int
	IDMismatch int
	Unknown    int
	Error      int
	Skipped    int
	Ignored    int
	Fatal      string
}

// FinishRun stamps the run's end time and aggregate counters. Partial
// runs (fatal session failure) are finished too, with Fatal set.
func (l *Ledger) FinishRun(ctx context.Context, runID string, finished time.Time, t RunTotals) error {
	_, err := l.db.ExecContext(ctx, `
		UPDATE runs SET
			finished_at = ?, fatal = ?,
			total = ?, active = ?, banned = ?, deleted = ?,
			id_mismatch = ?, unknown = ?, error = ?,
			skipped = ?, ignored = ?
		WHERE id = ?`,
		finished.UTC().Format(time.RFC3339), nullable(t.Fatal),
		t.Total, t.Active, t.Banned, t.Deleted,
		t.IDMismatch, t.Unknown, t.Error,
		t.Skipped, t.Ignored,
		runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// CheckRow is one per-record audit entry read back from the ledger.
type CheckRow struct {
	RunID  string
	Path   string
	Status string
	Method string
	Detail string
}

// Checks returns the audit entries of a run in insertion order.
func (l *Ledger) Checks(ctx context.Context, runID string) ([]CheckRow, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT run_id, path, status, method, detail
		 FROM checks WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("read checks: %w", err)
	}
	defer rows.Close()

	var out []CheckRow
	for rows.Next() {
		var r CheckRow
		if err := rows.Scan(&r.RunID, &r.Path, &r.Status, &r.Method, &r.Detail); err != nil {
			return nil, fmt.Errorf("scan check: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
