package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"RevBridge/internal/bridge"
)

// Store persists bridge runs to Postgres. Persistence is optional; a nil
// *Store is a valid "disabled" store.
type Store struct {
	pool   *pgxpool.Pool
	schema string
}

func New(pool *pgxpool.Pool, schema string) *Store {
	return &Store{pool: pool, schema: schema}
}

// EnsureSchema creates the schema and tables if missing. Runs over the
// plain database/sql connection opened in main, before any service starts.
func EnsureSchema(db *sql.DB, schema string) error {
	stmts := []string{
		fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, schema),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.bridge_runs (
			run_id UUID PRIMARY KEY,
			started_at TIMESTAMPTZ NOT NULL,
			window_label TEXT NOT NULL,
			input_rows INT NOT NULL,
			flat_rows INT NOT NULL,
			waterfall_rows INT NOT NULL,
			warning_count INT NOT NULL,
			elapsed_ms BIGINT NOT NULL
		)`, schema),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.bridge_waterfall (
			run_id UUID NOT NULL REFERENCES %s.bridge_runs(run_id) ON DELETE CASCADE,
			primary_key TEXT NOT NULL,
			customer_id TEXT NOT NULL,
			product_id TEXT NOT NULL,
			month DATE NOT NULL,
			value_type TEXT NOT NULL,
			value NUMERIC NOT NULL
		)`, schema, schema),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_bridge_waterfall_run ON %s.bridge_waterfall(run_id)`, schema),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.bridge_checks (
			run_id UUID NOT NULL REFERENCES %s.bridge_runs(run_id) ON DELETE CASCADE,
			kind TEXT NOT NULL,
			detail TEXT NOT NULL
		)`, schema, schema),
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// SaveRun writes one completed run and its waterfall inside a single
// transaction and returns the run id.
func (s *Store) SaveRun(ctx context.Context, windowLabel string, inputRows int, res *bridge.Result) (uuid.UUID, error) {
	if s == nil || s.pool == nil {
		return uuid.Nil, nil
	}
	runID := uuid.New()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		fmt.Sprintf(`INSERT INTO %s.bridge_runs
			(run_id, started_at, window_label, input_rows, flat_rows, waterfall_rows, warning_count, elapsed_ms)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`, s.schema),
		runID, time.Now().UTC(), windowLabel, inputRows,
		len(res.Flat), len(res.Waterfall), len(res.Warnings), res.Elapsed.Milliseconds(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert run: %w", err)
	}

	batch := &pgx.Batch{}
	insertWF := fmt.Sprintf(`INSERT INTO %s.bridge_waterfall
		(run_id, primary_key, customer_id, product_id, month, value_type, value)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`, s.schema)
	for _, w := range res.Waterfall {
		batch.Queue(insertWF, runID, w.Key, w.CustomerID, w.ProductID, w.Month, w.ValueType, w.Value)
	}
	insertCheck := fmt.Sprintf(`INSERT INTO %s.bridge_checks (run_id, kind, detail) VALUES ($1, $2, $3)`, s.schema)
	for _, w := range res.Warnings {
		batch.Queue(insertCheck, runID, w.Kind, w.Detail)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return uuid.Nil, fmt.Errorf("insert waterfall: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("commit: %w", err)
	}
	log.Printf("[Store] run %s saved: %d waterfall rows, %d warnings", runID, len(res.Waterfall), len(res.Warnings))
	return runID, nil
}
