package database

import (
	"context"
	"fmt"
)

// schema holds the DDL for the engine's two tables. Outcomes are
// append-only; reports are written once per refit attempt.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS realized_outcomes (
		id          BIGSERIAL PRIMARY KEY,
		match_id    UUID NOT NULL,
		raw_home    DOUBLE PRECISION NOT NULL,
		raw_draw    DOUBLE PRECISION NOT NULL,
		raw_away    DOUBLE PRECISION NOT NULL,
		result      SMALLINT NOT NULL CHECK (result IN (0, 1, 2)),
		recorded_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_realized_outcomes_recorded_at
		ON realized_outcomes (recorded_at DESC)`,
	`CREATE TABLE IF NOT EXISTS refit_reports (
		id                BIGSERIAL PRIMARY KEY,
		version           BIGINT NOT NULL,
		fitted_at         TIMESTAMPTZ NOT NULL,
		sample_size       INTEGER NOT NULL,
		committed         BOOLEAN NOT NULL,
		calibration_error DOUBLE PRECISION NOT NULL,
		failure_reason    TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_refit_reports_fitted_at
		ON refit_reports (fitted_at DESC)`,
}

// RunMigrations applies the schema. Statements are idempotent so this
// is safe to run on every startup.
func (db *DB) RunMigrations(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
