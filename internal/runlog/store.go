package runlog

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Entry is one pipeline run as recorded in the run_logs table.
type Entry struct {
	RunID          string
	Status         string
	FailedStage    string
	FailureMessage string
	StorageKey     string
	RawRows        int64
	StartedAt      time.Time
	CompletedAt    *time.Time
	UpdatedAt      time.Time
}

// Store is a Postgres-backed store of pipeline run history.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a new Store and verifies the connection.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Migrate runs the schema DDL to create the run_logs table and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("postgres migrate: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// UpsertRun records a run outcome, replacing any earlier record for the
// same run ID. Called once when a run starts and again when it finishes.
func (s *Store) UpsertRun(ctx context.Context, entry Entry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO run_logs (run_id, status, failed_stage, failure_message,
			storage_key, raw_rows, started_at, completed_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (run_id) DO UPDATE SET
			status          = EXCLUDED.status,
			failed_stage    = EXCLUDED.failed_stage,
			failure_message = EXCLUDED.failure_message,
			storage_key     = EXCLUDED.storage_key,
			raw_rows        = EXCLUDED.raw_rows,
			completed_at    = EXCLUDED.completed_at,
			updated_at      = NOW()
	`, entry.RunID, entry.Status, entry.FailedStage, entry.FailureMessage,
		entry.StorageKey, entry.RawRows, entry.StartedAt, entry.CompletedAt)
	return err
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx, `
		SELECT run_id, status, COALESCE(failed_stage, ''), COALESCE(failure_message, ''),
			COALESCE(storage_key, ''), raw_rows, started_at, completed_at, updated_at
		FROM run_logs
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.RunID, &e.Status, &e.FailedStage, &e.FailureMessage,
			&e.StorageKey, &e.RawRows, &e.StartedAt, &e.CompletedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// FailedRunsSince returns runs that failed on or after the given time.
func (s *Store) FailedRunsSince(ctx context.Context, since time.Time) ([]Entry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT run_id, status, COALESCE(failed_stage, ''), COALESCE(failure_message, ''),
			COALESCE(storage_key, ''), raw_rows, started_at, completed_at, updated_at
		FROM run_logs
		WHERE status = 'FAILED' AND started_at >= $1
		ORDER BY started_at DESC
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.RunID, &e.Status, &e.FailedStage, &e.FailureMessage,
			&e.StorageKey, &e.RawRows, &e.StartedAt, &e.CompletedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
