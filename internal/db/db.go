// Package db provides the optional PostgreSQL mirror for run artifacts.
// File-backed workflow state is authoritative; the database exists so past
// runs can be queried and compared across machines. All mirror writes are
// best-effort and must not fail a run.
package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/job-tailor/internal/types"
)

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes and verifies a connection pool.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// CreateRun registers a run under the ID the state store assigned it.
func (db *DB) CreateRun(ctx context.Context, runID uuid.UUID, company, roleTitle string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO tailor_runs (id, company, role_title, status)
		 VALUES ($1, $2, $3, 'running')
		 ON CONFLICT (id) DO UPDATE SET status = 'running'`,
		runID, company, roleTitle,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// CompleteRun records the run's terminal state.
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, state types.RunState) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE tailor_runs SET status = $1, completed_at = NOW() WHERE id = $2`,
		string(state), runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// SaveArtifact mirrors one artifact. Re-saving the same key overwrites the
// previous copy; unlike the state file, the mirror keeps only the latest.
func (db *DB) SaveArtifact(ctx context.Context, runID uuid.UUID, key string, content json.RawMessage) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO tailor_artifacts (run_id, key, content)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (run_id, key) DO UPDATE SET content = $3, created_at = NOW()`,
		runID, key, []byte(content),
	)
	if err != nil {
		return fmt.Errorf("failed to save artifact %s: %w", key, err)
	}
	return nil
}

// SaveStageResult mirrors one stage result row. Results are append-only
// here too; each attempt series gets its own row.
func (db *DB) SaveStageResult(ctx context.Context, runID uuid.UUID, result types.StageResult) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO tailor_stage_results
		   (run_id, stage, status, attempts, duration_ms, error, started_at, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		runID, result.Stage, string(result.Status), result.Attempts,
		result.DurationMS, result.Error, result.StartedAt, result.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save stage result for %s: %w", result.Stage, err)
	}
	return nil
}

// GetArtifact retrieves a mirrored artifact, or nil when absent.
func (db *DB) GetArtifact(ctx context.Context, runID uuid.UUID, key string) (json.RawMessage, error) {
	var content []byte
	err := db.pool.QueryRow(ctx,
		`SELECT content FROM tailor_artifacts WHERE run_id = $1 AND key = $2`,
		runID, key,
	).Scan(&content)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get artifact %s: %w", key, err)
	}
	return content, nil
}

// MirrorState mirrors a full workflow snapshot: artifacts plus any stage
// results not yet written. Errors from individual writes are collected into
// one; callers typically log and move on.
func (db *DB) MirrorState(ctx context.Context, ws types.WorkflowState) error {
	runID, err := uuid.Parse(ws.RunID)
	if err != nil {
		return fmt.Errorf("run ID %q is not a UUID: %w", ws.RunID, err)
	}

	var firstErr error
	for key, content := range ws.Artifacts {
		if err := db.SaveArtifact(ctx, runID, key, content); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
