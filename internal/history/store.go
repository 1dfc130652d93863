// Package history persists scan runs so past results can be listed
// and compared. Persistence is optional; hosts run without it when no
// database is configured.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/mvvmshift/mvvmshift/pkg/model"
)

// Store records and queries scan runs over a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to the database and returns a store ready for use.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	cfg.MaxConns = 25
	cfg.MinConns = 5

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Str("host", cfg.ConnConfig.Host).Msg("Connected to database")
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Ping verifies database connectivity
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate creates the scan_runs table if it does not exist
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS scan_runs (
			id UUID PRIMARY KEY,
			source TEXT NOT NULL,
			target TEXT NOT NULL,
			commit_sha TEXT,
			files_scanned INT NOT NULL,
			files_flagged INT NOT NULL,
			findings INT NOT NULL,
			fixable INT NOT NULL,
			summary JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// ScanRun represents one persisted scan
type ScanRun struct {
	ID           uuid.UUID       `json:"id"`
	Source       string          `json:"source"` // inline, dir or repo
	Target       string          `json:"target"` // file path, directory or clone URL
	CommitSHA    *string         `json:"commit_sha,omitempty"`
	FilesScanned int             `json:"files_scanned"`
	FilesFlagged int             `json:"files_flagged"`
	Findings     int             `json:"findings"`
	Fixable      int             `json:"fixable"`
	Summary      json.RawMessage `json:"summary"`
	CreatedAt    time.Time       `json:"created_at"`
}

// RecordSummary stores the outcome of one scan
func (s *Store) RecordSummary(ctx context.Context, source, target, commitSHA string, summary *model.ScanSummary) (*ScanRun, error) {
	data, err := json.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary: %w", err)
	}

	run := &ScanRun{
		ID:           uuid.New(),
		Source:       source,
		Target:       target,
		FilesScanned: summary.FilesScanned,
		FilesFlagged: summary.FilesFlagged,
		Findings:     summary.Total,
		Fixable:      summary.Fixable,
		Summary:      data,
		CreatedAt:    time.Now(),
	}
	if commitSHA != "" {
		run.CommitSHA = &commitSHA
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO scan_runs (id, source, target, commit_sha, files_scanned, files_flagged, findings, fixable, summary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, run.ID, run.Source, run.Target, run.CommitSHA, run.FilesScanned, run.FilesFlagged, run.Findings, run.Fixable, run.Summary, run.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to record scan run: %w", err)
	}

	return run, nil
}

// GetScanRun gets a scan run by ID
func (s *Store) GetScanRun(ctx context.Context, id uuid.UUID) (*ScanRun, error) {
	run := &ScanRun{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, source, target, commit_sha, files_scanned, files_flagged, findings, fixable, summary, created_at
		FROM scan_runs WHERE id = $1
	`, id).Scan(&run.ID, &run.Source, &run.Target, &run.CommitSHA, &run.FilesScanned,
		&run.FilesFlagged, &run.Findings, &run.Fixable, &run.Summary, &run.CreatedAt)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan run: %w", err)
	}

	return run, nil
}

// ListScanRuns lists scan runs, newest first
func (s *Store) ListScanRuns(ctx context.Context, limit, offset int) ([]ScanRun, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, source, target, commit_sha, files_scanned, files_flagged, findings, fixable, summary, created_at
		FROM scan_runs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list scan runs: %w", err)
	}
	defer rows.Close()

	var runs []ScanRun
	for rows.Next() {
		var run ScanRun
		if err := rows.Scan(&run.ID, &run.Source, &run.Target, &run.CommitSHA, &run.FilesScanned,
			&run.FilesFlagged, &run.Findings, &run.Fixable, &run.Summary, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}
