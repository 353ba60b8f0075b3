// Package store persists run history in PostgreSQL. The store is optional:
// a nil *Store is a no-op, and the pipeline treats every store failure as a
// warning rather than a run failure.
package store

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mwalther/cvgen/internal/validation"
)

// Run status values.
const (
	StatusRunning          = "running"
	StatusSucceeded        = "succeeded"
	StatusFailed           = "failed"
	StatusValidationFailed = "validation_failed"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS cv_runs (
	id UUID PRIMARY KEY,
	source TEXT NOT NULL,
	anonymous BOOLEAN NOT NULL DEFAULT FALSE,
	status TEXT NOT NULL,
	error_count INTEGER NOT NULL DEFAULT 0,
	warning_count INTEGER NOT NULL DEFAULT 0,
	pdf_path TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	completed_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS cv_reports (
	run_id UUID PRIMARY KEY REFERENCES cv_runs(id) ON DELETE CASCADE,
	report JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// Store wraps a PostgreSQL connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// Open establishes a connection pool and makes sure the run-history tables
// exist.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to prepare run-history tables: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// CreateRun records the start of a pipeline run. The caller owns the run ID
// so that runs keep an identity even when no store is configured.
func (s *Store) CreateRun(ctx context.Context, id uuid.UUID, source string, anonymous bool) error {
	if s == nil {
		return nil
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO cv_runs (id, source, anonymous, status)
		 VALUES ($1, $2, $3, $4)`,
		id, source, anonymous, StatusRunning,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// CompleteRun marks a run finished with its final status and counters.
func (s *Store) CompleteRun(ctx context.Context, id uuid.UUID, status string, errorCount, warningCount int, pdfPath string) error {
	if s == nil {
		return nil
	}
	_, err := s.pool.Exec(ctx,
		`UPDATE cv_runs
		 SET status = $1, error_count = $2, warning_count = $3,
		     pdf_path = NULLIF($4, ''), completed_at = NOW()
		 WHERE id = $5`,
		status, errorCount, warningCount, pdfPath, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// SaveReport stores the validation report of a run as JSONB.
func (s *Store) SaveReport(ctx context.Context, id uuid.UUID, report *validation.Report) error {
	if s == nil || report == nil {
		return nil
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO cv_reports (run_id, report)
		 VALUES ($1, $2)
		 ON CONFLICT (run_id) DO UPDATE SET report = $2, created_at = NOW()`,
		id, payload,
	)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// Run is one recorded pipeline run.
type Run struct {
	ID           uuid.UUID  `json:"id"`
	Source       string     `json:"source"`
	Anonymous    bool       `json:"anonymous"`
	Status       string     `json:"status"`
	ErrorCount   int        `json:"error_count"`
	WarningCount int        `json:"warning_count"`
	PDFPath      string     `json:"pdf_path,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// GetRun retrieves one run by ID, or nil when no such run exists.
func (s *Store) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	if s == nil {
		return nil, nil
	}
	var run Run
	var pdfPath *string
	err := s.pool.QueryRow(ctx,
		`SELECT id, source, anonymous, status, error_count, warning_count, pdf_path, created_at, completed_at
		 FROM cv_runs WHERE id = $1`,
		id,
	).Scan(&run.ID, &run.Source, &run.Anonymous, &run.Status, &run.ErrorCount, &run.WarningCount, &pdfPath, &run.CreatedAt, &run.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	if pdfPath != nil {
		run.PDFPath = *pdfPath
	}
	return &run, nil
}

// ListRuns retrieves the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if s == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, source, anonymous, status, error_count, warning_count, pdf_path, created_at, completed_at
		 FROM cv_runs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var pdfPath *string
		if err := rows.Scan(&run.ID, &run.Source, &run.Anonymous, &run.Status, &run.ErrorCount, &run.WarningCount, &pdfPath, &run.CreatedAt, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if pdfPath != nil {
			run.PDFPath = *pdfPath
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// GetReport retrieves the stored validation report of a run, or nil when
// none was saved.
func (s *Store) GetReport(ctx context.Context, id uuid.UUID) (*validation.Report, error) {
	if s == nil {
		return nil, nil
	}
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT report FROM cv_reports WHERE run_id = $1`,
		id,
	).Scan(&payload)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	var report validation.Report
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, fmt.Errorf("failed to decode stored report: %w", err)
	}
	return &report, nil
}
