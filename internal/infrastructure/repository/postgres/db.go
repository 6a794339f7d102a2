package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the engine's tables if they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082601)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS document_patterns (
	id TEXT PRIMARY KEY,
	document_type TEXT NOT NULL,
	source TEXT NOT NULL,
	frequency TEXT NOT NULL,
	stability TEXT NOT NULL,
	confidence TEXT NOT NULL,
	uploads_analyzed INT NOT NULL,
	avg_interval_days DOUBLE PRECISION NOT NULL,
	stddev_interval_days DOUBLE PRECISION NOT NULL,
	coefficient_of_variation DOUBLE PRECISION NOT NULL,
	last_upload_date TIMESTAMPTZ NOT NULL,
	next_expected_date TIMESTAMPTZ,
	pattern_changes JSONB NOT NULL DEFAULT '[]'::jsonb,
	updated_at TIMESTAMPTZ NOT NULL,
	UNIQUE (document_type, source)
);

CREATE TABLE IF NOT EXISTS missing_documents (
	id TEXT PRIMARY KEY,
	pattern_id TEXT NOT NULL,
	document_type TEXT NOT NULL,
	source TEXT NOT NULL,
	expected_date TIMESTAMPTZ NOT NULL,
	grace_period_end TIMESTAMPTZ NOT NULL,
	days_overdue INT NOT NULL,
	is_missing BOOLEAN NOT NULL,
	confidence TEXT NOT NULL,
	historical_uploads INT NOT NULL,
	last_upload_date TIMESTAMPTZ NOT NULL,
	status TEXT NOT NULL,
	detected_at TIMESTAMPTZ NOT NULL,
	UNIQUE (pattern_id, expected_date)
);

CREATE INDEX IF NOT EXISTS idx_missing_documents_status ON missing_documents(status);

CREATE TABLE IF NOT EXISTS reminder_settings (
	document_type TEXT PRIMARY KEY,
	enabled BOOLEAN NOT NULL,
	reminder_days_before INT NOT NULL,
	reminder_days_after INT NOT NULL,
	email_notifications BOOLEAN NOT NULL,
	push_notifications BOOLEAN NOT NULL,
	max_reminders INT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS reminder_log (
	id BIGSERIAL PRIMARY KEY,
	missing_document_id TEXT NOT NULL,
	reminder_type TEXT NOT NULL,
	sent_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reminder_log_missing ON reminder_log(missing_document_id);

CREATE TABLE IF NOT EXISTS analysis_runs (
	id TEXT PRIMARY KEY,
	started_at TIMESTAMPTZ NOT NULL,
	total_sources INT NOT NULL,
	patterns_detected INT NOT NULL,
	missing_detected INT NOT NULL,
	duration_ms BIGINT NOT NULL,
	errors JSONB NOT NULL DEFAULT '[]'::jsonb
);

CREATE TABLE IF NOT EXISTS tax_deadlines (
	id TEXT PRIMARY KEY,
	deadline_type TEXT NOT NULL,
	title TEXT NOT NULL,
	due_date TIMESTAMPTZ NOT NULL,
	metadata JSONB NOT NULL DEFAULT '{}'::jsonb
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_tax_deadlines_missing
	ON tax_deadlines ((metadata->>'missing_document_id'));

CREATE TABLE IF NOT EXISTS document_uploads (
	id BIGSERIAL PRIMARY KEY,
	document_type TEXT NOT NULL,
	source TEXT NOT NULL,
	upload_date TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_document_uploads_key ON document_uploads(document_type, source);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}
