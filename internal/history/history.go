// Package history keeps a per-project log of tool runs in SQLite so
// authors can see what the assistant did to their story bible and when.
// The log is advisory: a failure to open or write it never fails the
// operation being recorded.
package history

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DataDir is the per-project directory holding the run log database.
const DataDir = ".chapter-master"

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// Entry is one recorded tool run.
type Entry struct {
	ID         int64  `json:"id"`
	Operation  string `json:"operation"`
	Summary    string `json:"summary"`
	IssueCount int    `json:"issueCount,omitempty"`
	FixedCount int    `json:"fixedCount,omitempty"`
	CreatedAt  string `json:"createdAt"`
}

// Log is the SQLite-backed run log. A nil *Log is valid and records
// nothing — callers hold a nil log when opening the database failed.
type Log struct {
	db *sql.DB
}

// Open creates or opens the run log under projectRoot.
func Open(projectRoot string) (*Log, error) {
	dir := filepath.Join(projectRoot, DataDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("history: create data dir: %w", err)
	}

	db, err := openDB("sqlite", filepath.Join(dir, "history.db"))
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("history: pragma %q: %w", p, err)
		}
	}

	l := &Log{db: db}
	if err := l.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: migration: %w", err)
	}
	return l, nil
}

// OpenBestEffort opens the run log, logging a warning and returning nil
// when it cannot. The returned nil Log is safe to use.
func OpenBestEffort(projectRoot string) *Log {
	l, err := Open(projectRoot)
	if err != nil {
		log.Printf("WARNING: run history disabled: %v", err)
		return nil
	}
	return l
}

func (l *Log) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			operation   TEXT NOT NULL,
			summary     TEXT NOT NULL,
			issue_count INTEGER NOT NULL DEFAULT 0,
			fixed_count INTEGER NOT NULL DEFAULT 0,
			created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		);
		CREATE INDEX IF NOT EXISTS idx_runs_operation ON runs(operation);
	`
	_, err := l.db.Exec(schema)
	return err
}

// Close closes the underlying database connection.
func (l *Log) Close() error {
	if l == nil {
		return nil
	}
	return l.db.Close()
}

// Record appends one run entry. Best effort: errors are logged, never
// returned, and a nil Log is a no-op.
func (l *Log) Record(operation, summary string, issueCount, fixedCount int) {
	if l == nil {
		return
	}
	_, err := l.db.Exec(
		`INSERT INTO runs (operation, summary, issue_count, fixed_count) VALUES (?, ?, ?, ?)`,
		operation, summary, issueCount, fixedCount,
	)
	if err != nil {
		log.Printf("WARNING: recording run history: %v", err)
	}
}

// Recent returns the newest entries, most recent first. limit <= 0
// defaults to 20.
func (l *Log) Recent(limit int) ([]Entry, error) {
	if l == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := l.db.Query(
		`SELECT id, operation, summary, issue_count, fixed_count, created_at
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Operation, &e.Summary, &e.IssueCount, &e.FixedCount, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("history: scan run: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
