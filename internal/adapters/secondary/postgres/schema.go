package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
	CREATE TABLE IF NOT EXISTS category (
		position INTEGER NOT NULL,
		name     TEXT PRIMARY KEY
	);
	CREATE TABLE IF NOT EXISTS sample (
		uid         TEXT PRIMARY KEY,
		category    TEXT NOT NULL REFERENCES category(name) ON DELETE CASCADE,
		position    INTEGER NOT NULL,
		part_labels JSONB NOT NULL DEFAULT '[]'
	);
	CREATE TABLE IF NOT EXISTS colorize_record (
		uid         TEXT PRIMARY KEY,
		category    TEXT NOT NULL,
		status      TEXT NOT NULL,
		face_count  INTEGER NOT NULL DEFAULT 0,
		part_count  INTEGER NOT NULL DEFAULT 0,
		error       TEXT NOT NULL DEFAULT '',
		duration_ms BIGINT NOT NULL DEFAULT 0,
		run_id      UUID NOT NULL,
		published   BOOLEAN NOT NULL DEFAULT FALSE,
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_colorize_record_status ON colorize_record(status);
`

// Migrate creates the catalog tables if they do not exist
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply catalog schema: %w", err)
	}
	return nil
}
