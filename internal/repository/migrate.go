package repository

import (
	"context"
	"fmt"
)

// DDL kept to the SQL subset both sqlite and postgres accept. The ent
// schemas under db/ent/schema are the canonical model; regenerate and
// diff them when altering these statements.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS document_files (
		id           TEXT PRIMARY KEY,
		source_path  TEXT NOT NULL,
		content_hash TEXT NOT NULL UNIQUE,
		filename     TEXT NOT NULL,
		file_ext     TEXT NOT NULL,
		file_size    INTEGER NOT NULL,
		uploaded_at  TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS processing_jobs (
		id             TEXT PRIMARY KEY,
		file_id        TEXT NOT NULL REFERENCES document_files(id),
		format         TEXT NOT NULL,
		status         TEXT NOT NULL,
		progress       INTEGER NOT NULL DEFAULT 0,
		document_type  TEXT,
		confidence     DOUBLE PRECISION,
		low_confidence BOOLEAN NOT NULL DEFAULT FALSE,
		extracted_json TEXT,
		error_message  TEXT,
		started_at     TIMESTAMP NOT NULL,
		finished_at    TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_processing_jobs_status ON processing_jobs (status)`,
	`CREATE INDEX IF NOT EXISTS idx_processing_jobs_file_id ON processing_jobs (file_id)`,
}

// Migrate applies the schema idempotently.
func (d *DB) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := d.SQL.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	d.logger.Debug("database schema ensured")
	return nil
}
