package db

import (
	"context"
	"database/sql"
	"fmt"
)

// The statements use only types and syntax shared by postgres and sqlite.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		product_key TEXT PRIMARY KEY,
		created_at  BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS product_images (
		product_key TEXT NOT NULL,
		position    INTEGER NOT NULL,
		image_url   TEXT NOT NULL,
		category    TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (product_key, position)
	)`,
	`CREATE TABLE IF NOT EXISTS transfer_log (
		id             TEXT PRIMARY KEY,
		source_product TEXT NOT NULL DEFAULT '',
		target_product TEXT NOT NULL,
		mode           TEXT NOT NULL,
		category       TEXT NOT NULL DEFAULT '',
		position       INTEGER NOT NULL DEFAULT 0,
		selected_count INTEGER NOT NULL,
		result_count   INTEGER NOT NULL,
		created_at     BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transfer_log_target ON transfer_log (target_product, created_at)`,
}

// Migrate creates the studio tables when they do not exist.
func Migrate(ctx context.Context, conn *sql.DB) error {
	for _, stmt := range schema {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
