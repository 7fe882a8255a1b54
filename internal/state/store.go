// Package state persists pipeline state in a SQLite database inside the
// data directory: the commit each repository's gource log was generated
// from, and a history of render runs. The store is an optimization, not a
// correctness dependency; callers degrade to full regeneration when it
// cannot be opened.
package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/gourcers/internal/gource"
)

// Store implements gource.HeadStore and records run history. All methods
// are safe for concurrent use.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ gource.HeadStore = (*Store)(nil)

// Open opens the state database at path, creating the schema on first use.
// Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize state schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS repo_heads (
		full_name TEXT PRIMARY KEY,
		head TEXT NOT NULL,
		generated_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		finished_at INTEGER,
		repos_total INTEGER NOT NULL,
		repos_included INTEGER NOT NULL,
		output TEXT NOT NULL,
		ok INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RepoHead returns the recorded head for a repository, or empty when the
// repository has not been recorded.
func (s *Store) RepoHead(ctx context.Context, fullName string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var head string
	err := s.db.QueryRowContext(ctx,
		"SELECT head FROM repo_heads WHERE full_name = ?", fullName,
	).Scan(&head)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query repo head %s: %w", fullName, err)
	}
	return head, nil
}

// SetRepoHead records the head a repository's log was generated from,
// replacing any previous record.
func (s *Store) SetRepoHead(ctx context.Context, fullName, head string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO repo_heads (full_name, head, generated_at) VALUES (?, ?, ?)
		 ON CONFLICT(full_name) DO UPDATE SET head = excluded.head, generated_at = excluded.generated_at`,
		fullName, head, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("record repo head %s: %w", fullName, err)
	}
	return nil
}

// Run is one recorded invocation of the render pipeline.
type Run struct {
	ID            string
	StartedAt     time.Time
	FinishedAt    time.Time // zero until FinishRun
	ReposTotal    int
	ReposIncluded int
	Output        string
	OK            bool
}

// NewRunID mints a run identifier.
func NewRunID() string { return uuid.NewString() }

// StartRun inserts a run record. FinishedAt and OK are set later by
// FinishRun.
func (s *Store) StartRun(ctx context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	startedAt := run.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (id, started_at, repos_total, repos_included, output, ok) VALUES (?, ?, ?, ?, ?, 0)",
		run.ID, startedAt.Unix(), run.ReposTotal, run.ReposIncluded, run.Output,
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", run.ID, err)
	}
	return nil
}

// FinishRun marks a run as finished with its outcome.
func (s *Store) FinishRun(ctx context.Context, id string, ok bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	okInt := 0
	if ok {
		okInt = 1
	}
	result, err := s.db.ExecContext(ctx,
		"UPDATE runs SET finished_at = ?, ok = ? WHERE id = ?",
		time.Now().Unix(), okInt, id,
	)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run %s: %w", id, err)
	}
	if rows == 0 {
		return fmt.Errorf("finish run %s: run was never started", id)
	}
	return nil
}

// LastRuns returns the most recent runs, newest first.
func (s *Store) LastRuns(ctx context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, repos_total, repos_included, output, ok
		 FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var startedAt int64
		var finishedAt sql.NullInt64
		var ok int
		if err := rows.Scan(&run.ID, &startedAt, &finishedAt, &run.ReposTotal, &run.ReposIncluded, &run.Output, &ok); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = time.Unix(startedAt, 0)
		if finishedAt.Valid {
			run.FinishedAt = time.Unix(finishedAt.Int64, 0)
		}
		run.OK = ok == 1
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
