package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tallyhq/docwatch/internal/core/domain"
)

// UploadHistoryRepository is the engine's view of the app's upload history.
// The ingestion side appends rows; the analysis pipeline only reads them.
type UploadHistoryRepository struct {
	db *sql.DB
}

func NewUploadHistoryRepository(db *sql.DB) *UploadHistoryRepository {
	return &UploadHistoryRepository{db: db}
}

func (r *UploadHistoryRepository) ListUploadEvents(ctx context.Context) ([]domain.UploadEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT document_type, source, upload_date
FROM document_uploads
ORDER BY document_type, source, upload_date
`)
	if err != nil {
		return nil, fmt.Errorf("list upload events: %w", err)
	}
	defer rows.Close()

	out := make([]domain.UploadEvent, 0)
	for rows.Next() {
		var event domain.UploadEvent
		var docType string
		if err := rows.Scan(&docType, &event.Source, &event.UploadDate); err != nil {
			return nil, fmt.Errorf("scan upload event: %w", err)
		}
		event.DocumentType = domain.DocumentType(docType)
		out = append(out, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate upload events: %w", err)
	}
	return out, nil
}

// RecordUpload appends one upload event to the history.
func (r *UploadHistoryRepository) RecordUpload(ctx context.Context, event domain.UploadEvent) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO document_uploads (document_type, source, upload_date)
VALUES ($1,$2,$3)
`, string(event.DocumentType), event.Source, event.UploadDate)
	if err != nil {
		return fmt.Errorf("record upload: %w", err)
	}
	return nil
}
