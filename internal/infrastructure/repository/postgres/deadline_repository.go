package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/tallyhq/docwatch/internal/core/domain"
)

// TaxDeadlineRepository stores the synthetic calendar entries. One deadline
// per missing document: a repeated registration refreshes the existing row.
type TaxDeadlineRepository struct {
	db *sql.DB
}

func NewTaxDeadlineRepository(db *sql.DB) *TaxDeadlineRepository {
	return &TaxDeadlineRepository{db: db}
}

func (r *TaxDeadlineRepository) AddDeadline(ctx context.Context, deadline domain.TaxDeadline) error {
	metadataJSON, err := json.Marshal(deadline.Metadata)
	if err != nil {
		return fmt.Errorf("marshal deadline metadata: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO tax_deadlines (id, deadline_type, title, due_date, metadata)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT ((metadata->>'missing_document_id')) DO UPDATE SET
	title = EXCLUDED.title,
	due_date = EXCLUDED.due_date,
	metadata = EXCLUDED.metadata
`, deadline.ID, string(deadline.Type), deadline.Title, deadline.DueDate, metadataJSON)
	if err != nil {
		return fmt.Errorf("add deadline: %w", err)
	}
	return nil
}

func (r *TaxDeadlineRepository) ListUploadDeadlines(ctx context.Context) ([]domain.TaxDeadline, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, deadline_type, title, due_date, metadata
FROM tax_deadlines
WHERE metadata->>'is_upload_reminder' = 'true'
ORDER BY due_date
`)
	if err != nil {
		return nil, fmt.Errorf("list deadlines: %w", err)
	}
	defer rows.Close()

	out := make([]domain.TaxDeadline, 0)
	for rows.Next() {
		var deadline domain.TaxDeadline
		var deadlineType string
		var metadataRaw []byte
		if err := rows.Scan(&deadline.ID, &deadlineType, &deadline.Title, &deadline.DueDate, &metadataRaw); err != nil {
			return nil, fmt.Errorf("scan deadline: %w", err)
		}
		deadline.Type = domain.DeadlineType(deadlineType)
		if err := json.Unmarshal(metadataRaw, &deadline.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal deadline metadata: %w", err)
		}
		out = append(out, deadline)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deadlines: %w", err)
	}
	return out, nil
}
