package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tallyhq/docwatch/internal/core/domain"
)

type MissingDocumentRepository struct {
	db *sql.DB
}

func NewMissingDocumentRepository(db *sql.DB) *MissingDocumentRepository {
	return &MissingDocumentRepository{db: db}
}

// SaveMissingDocument upserts on (pattern_id, expected_date) so a re-run never
// duplicates a record for the same predicted slot. Resolved rows keep their
// terminal status; only open rows are refreshed.
func (r *MissingDocumentRepository) SaveMissingDocument(ctx context.Context, missing *domain.MissingDocument) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO missing_documents (
	id, pattern_id, document_type, source, expected_date, grace_period_end,
	days_overdue, is_missing, confidence, historical_uploads, last_upload_date,
	status, detected_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
ON CONFLICT (pattern_id, expected_date) DO UPDATE SET
	days_overdue = EXCLUDED.days_overdue,
	is_missing = EXCLUDED.is_missing,
	confidence = EXCLUDED.confidence,
	historical_uploads = EXCLUDED.historical_uploads,
	last_upload_date = EXCLUDED.last_upload_date,
	grace_period_end = EXCLUDED.grace_period_end,
	detected_at = EXCLUDED.detected_at
WHERE missing_documents.status NOT IN ('uploaded', 'dismissed')
`,
		missing.ID, missing.PatternID, string(missing.DocumentType), missing.Source,
		missing.ExpectedDate, missing.GracePeriodEnd, missing.DaysOverdue, missing.IsMissing,
		string(missing.Confidence), missing.HistoricalUploads, missing.LastUploadDate,
		string(missing.Status), missing.DetectedAt,
	)
	if err != nil {
		return fmt.Errorf("save missing document: %w", err)
	}
	return nil
}

func (r *MissingDocumentRepository) ListMissingDocuments(ctx context.Context, includeResolved bool) ([]domain.MissingDocument, error) {
	query := `
SELECT id, pattern_id, document_type, source, expected_date, grace_period_end,
	days_overdue, is_missing, confidence, historical_uploads, last_upload_date,
	status, detected_at
FROM missing_documents
`
	if !includeResolved {
		query += "WHERE status NOT IN ('uploaded', 'dismissed')\n"
	}
	query += "ORDER BY expected_date"

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list missing documents: %w", err)
	}
	defer rows.Close()

	out := make([]domain.MissingDocument, 0)
	for rows.Next() {
		missing, err := scanMissingDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, missing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate missing documents: %w", err)
	}
	return out, nil
}

func (r *MissingDocumentRepository) UpdateMissingDocumentStatus(ctx context.Context, id string, status domain.MissingDocumentStatus) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE missing_documents
SET status = $2
WHERE id = $1
`, id, string(status))
	if err != nil {
		return fmt.Errorf("update missing document status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update status rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrMissingNotFound
	}
	return nil
}

func scanMissingDocument(row rowScanner) (domain.MissingDocument, error) {
	var missing domain.MissingDocument
	var docType, confidence, status string

	err := row.Scan(
		&missing.ID,
		&missing.PatternID,
		&docType,
		&missing.Source,
		&missing.ExpectedDate,
		&missing.GracePeriodEnd,
		&missing.DaysOverdue,
		&missing.IsMissing,
		&confidence,
		&missing.HistoricalUploads,
		&missing.LastUploadDate,
		&status,
		&missing.DetectedAt,
	)
	if err != nil {
		return domain.MissingDocument{}, err
	}

	missing.DocumentType = domain.DocumentType(docType)
	missing.Confidence = domain.Confidence(confidence)
	missing.Status = domain.MissingDocumentStatus(status)
	return missing, nil
}
