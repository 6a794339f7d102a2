package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tallyhq/docwatch/internal/core/domain"
)

// AnalysisRunRepository persists run metadata and the per-missing-document
// reminder counters.
type AnalysisRunRepository struct {
	db *sql.DB
}

func NewAnalysisRunRepository(db *sql.DB) *AnalysisRunRepository {
	return &AnalysisRunRepository{db: db}
}

func (r *AnalysisRunRepository) RecordAnalysisRun(ctx context.Context, run domain.AnalysisRun) error {
	errorsJSON, err := json.Marshal(run.Errors)
	if err != nil {
		return fmt.Errorf("marshal run errors: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO analysis_runs (
	id, started_at, total_sources, patterns_detected, missing_detected, duration_ms, errors
) VALUES ($1,$2,$3,$4,$5,$6,$7)
`,
		run.ID, run.StartedAt, run.TotalSources, run.PatternsDetected,
		run.MissingDetected, run.DurationMs, errorsJSON,
	)
	if err != nil {
		return fmt.Errorf("record analysis run: %w", err)
	}
	return nil
}

func (r *AnalysisRunRepository) ReminderCount(ctx context.Context, missingDocumentID string) (int, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM reminder_log WHERE missing_document_id = $1
`, missingDocumentID)

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count reminders: %w", err)
	}
	return count, nil
}

func (r *AnalysisRunRepository) RecordReminderSent(ctx context.Context, missingDocumentID string, reminderType domain.ReminderType, sentAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO reminder_log (missing_document_id, reminder_type, sent_at)
VALUES ($1,$2,$3)
`, missingDocumentID, string(reminderType), sentAt)
	if err != nil {
		return fmt.Errorf("record reminder sent: %w", err)
	}
	return nil
}
