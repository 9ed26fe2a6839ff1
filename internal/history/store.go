// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps a local SQLite ledger of boundary searches so past
// results can be listed and compared with new runs.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/arxiv-horizon/pkg/types"
)

const (
	dbFile           = "history.db"
	defaultDir       = ".arxiv-horizon"
	defaultListLimit = 20
)

// Outcome classifies how a run ended.
type Outcome string

const (
	OutcomeFound    Outcome = "found"
	OutcomeNotFound Outcome = "not_found"
	OutcomeFailed   Outcome = "failed"
)

// Run is one recorded boundary search.
type Run struct {
	ID         int64         `json:"id" yaml:"id"`
	Name       string        `json:"name,omitempty" yaml:"name,omitempty"`
	Query      string        `json:"query" yaml:"query"`
	SortBy     string        `json:"sort_by" yaml:"sort_by"`
	SortOrder  string        `json:"sort_order" yaml:"sort_order"`
	Cutoff     time.Time     `json:"cutoff" yaml:"cutoff"`
	Outcome    Outcome       `json:"outcome" yaml:"outcome"`
	Offset     int           `json:"offset" yaml:"offset"`
	Count      int           `json:"count" yaml:"count"`
	TotalCount int           `json:"total_count" yaml:"total_count"`
	Probes     int           `json:"probes" yaml:"probes"`
	Fetches    int           `json:"fetches" yaml:"fetches"`
	Retries    int           `json:"retries" yaml:"retries"`
	Drift      int           `json:"drift" yaml:"drift"`
	LastProbe  int           `json:"last_probe" yaml:"last_probe"`
	ErrorKind  string        `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	Error      string        `json:"error,omitempty" yaml:"error,omitempty"`
	StartedAt  time.Time     `json:"started_at" yaml:"started_at"`
	Duration   time.Duration `json:"duration" yaml:"duration"`
}

// Store manages the history database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the history database at cfg.Dir/history.db.
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = defaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT,
			query TEXT NOT NULL,
			sort_by TEXT,
			sort_order TEXT,
			cutoff TEXT NOT NULL,
			outcome TEXT NOT NULL,
			boundary_offset INTEGER,
			record_count INTEGER,
			total_count INTEGER,
			probes INTEGER,
			fetches INTEGER,
			retries INTEGER,
			drift INTEGER,
			last_probe INTEGER,
			error_kind TEXT,
			error TEXT,
			started_at TEXT NOT NULL,
			duration_ms INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_query_cutoff ON runs(query, cutoff)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts run and returns its ID.
func (s *Store) Record(ctx context.Context, run Run) (int64, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO runs
		(name, query, sort_by, sort_order, cutoff, outcome, boundary_offset, record_count, total_count,
		 probes, fetches, retries, drift, last_probe, error_kind, error, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Name, run.Query, run.SortBy, run.SortOrder,
		run.Cutoff.UTC().Format(time.RFC3339), string(run.Outcome),
		run.Offset, run.Count, run.TotalCount,
		run.Probes, run.Fetches, run.Retries, run.Drift, run.LastProbe,
		run.ErrorKind, run.Error,
		run.StartedAt.UTC().Format(time.RFC3339Nano), run.Duration.Milliseconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	return res.LastInsertId()
}

// List returns the most recent runs, newest first. limit <= 0 uses 20.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryContext(ctx, selectRuns+` ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Previous returns the latest successful run for the same query, sort and
// cutoff. ok is false when there is none.
func (s *Store) Previous(ctx context.Context, query, sortBy, sortOrder string, cutoff time.Time) (run Run, ok bool, err error) {
	row := s.db.QueryRowContext(ctx, selectRuns+`
		WHERE query = ? AND sort_by = ? AND sort_order = ? AND cutoff = ? AND outcome = ?
		ORDER BY id DESC LIMIT 1`,
		query, sortBy, sortOrder, cutoff.UTC().Format(time.RFC3339), string(OutcomeFound))
	run, err = scanRun(row)
	if err == sql.ErrNoRows {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, err
	}
	return run, true, nil
}

const selectRuns = `SELECT id, name, query, sort_by, sort_order, cutoff, outcome, boundary_offset, record_count,
	total_count, probes, fetches, retries, drift, last_probe, error_kind, error,
	started_at, duration_ms FROM runs`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		run                      Run
		name, sortBy, sortOrder  sql.NullString
		errorKind, errText       sql.NullString
		cutoff, outcome, started string
		durationMS               int64
	)
	err := sc.Scan(&run.ID, &name, &run.Query, &sortBy, &sortOrder, &cutoff, &outcome,
		&run.Offset, &run.Count, &run.TotalCount, &run.Probes, &run.Fetches, &run.Retries,
		&run.Drift, &run.LastProbe, &errorKind, &errText, &started, &durationMS)
	if err == sql.ErrNoRows {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("scanning run: %w", err)
	}

	run.Name = name.String
	run.SortBy = sortBy.String
	run.SortOrder = sortOrder.String
	run.ErrorKind = errorKind.String
	run.Error = errText.String
	run.Outcome = Outcome(outcome)
	run.Duration = time.Duration(durationMS) * time.Millisecond
	if run.Cutoff, err = time.Parse(time.RFC3339, cutoff); err != nil {
		return Run{}, fmt.Errorf("parsing cutoff %q: %w", cutoff, err)
	}
	if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return Run{}, fmt.Errorf("parsing start time %q: %w", started, err)
	}
	return run, nil
}
