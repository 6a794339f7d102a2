package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tallyhq/docwatch/internal/core/domain"
)

type PatternRepository struct {
	db *sql.DB
}

func NewPatternRepository(db *sql.DB) *PatternRepository {
	return &PatternRepository{db: db}
}

const patternColumns = `id, document_type, source, frequency, stability, confidence,
uploads_analyzed, avg_interval_days, stddev_interval_days, coefficient_of_variation,
last_upload_date, next_expected_date, pattern_changes, updated_at`

func (r *PatternRepository) LoadPatterns(ctx context.Context) ([]domain.DocumentPattern, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+patternColumns+`
FROM document_patterns
ORDER BY document_type, source
`)
	if err != nil {
		return nil, fmt.Errorf("load patterns: %w", err)
	}
	defer rows.Close()

	out := make([]domain.DocumentPattern, 0)
	for rows.Next() {
		pattern, err := scanPattern(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, pattern)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate patterns: %w", err)
	}
	return out, nil
}

func (r *PatternRepository) GetPattern(ctx context.Context, documentType domain.DocumentType, source string) (*domain.DocumentPattern, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+patternColumns+`
FROM document_patterns
WHERE document_type = $1 AND source = $2
`, string(documentType), source)

	pattern, err := scanPattern(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPatternNotFound
		}
		return nil, fmt.Errorf("get pattern: %w", err)
	}
	return &pattern, nil
}

func (r *PatternRepository) SavePattern(ctx context.Context, pattern *domain.DocumentPattern) error {
	changesJSON, err := json.Marshal(pattern.PatternChanges)
	if err != nil {
		return fmt.Errorf("marshal pattern changes: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO document_patterns (
	id, document_type, source, frequency, stability, confidence,
	uploads_analyzed, avg_interval_days, stddev_interval_days, coefficient_of_variation,
	last_upload_date, next_expected_date, pattern_changes, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
ON CONFLICT (document_type, source) DO UPDATE SET
	frequency = EXCLUDED.frequency,
	stability = EXCLUDED.stability,
	confidence = EXCLUDED.confidence,
	uploads_analyzed = EXCLUDED.uploads_analyzed,
	avg_interval_days = EXCLUDED.avg_interval_days,
	stddev_interval_days = EXCLUDED.stddev_interval_days,
	coefficient_of_variation = EXCLUDED.coefficient_of_variation,
	last_upload_date = EXCLUDED.last_upload_date,
	next_expected_date = EXCLUDED.next_expected_date,
	pattern_changes = EXCLUDED.pattern_changes,
	updated_at = EXCLUDED.updated_at
`,
		pattern.ID, string(pattern.DocumentType), pattern.Source,
		string(pattern.Frequency), string(pattern.Stability), string(pattern.Confidence),
		pattern.UploadsAnalyzed, pattern.Statistics.AverageIntervalDays,
		pattern.Statistics.StdDevIntervalDays, pattern.Statistics.CoefficientOfVariation,
		pattern.LastUploadDate, pattern.NextExpectedDate, changesJSON, pattern.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save pattern: %w", err)
	}
	return nil
}

func (r *PatternRepository) DeletePattern(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM document_patterns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete pattern: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete pattern rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrPatternNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPattern(row rowScanner) (domain.DocumentPattern, error) {
	var pattern domain.DocumentPattern
	var docType, frequency, stability, confidence string
	var nextExpected sql.NullTime
	var changesRaw []byte

	err := row.Scan(
		&pattern.ID,
		&docType,
		&pattern.Source,
		&frequency,
		&stability,
		&confidence,
		&pattern.UploadsAnalyzed,
		&pattern.Statistics.AverageIntervalDays,
		&pattern.Statistics.StdDevIntervalDays,
		&pattern.Statistics.CoefficientOfVariation,
		&pattern.LastUploadDate,
		&nextExpected,
		&changesRaw,
		&pattern.UpdatedAt,
	)
	if err != nil {
		return domain.DocumentPattern{}, err
	}

	pattern.DocumentType = domain.DocumentType(docType)
	pattern.Frequency = domain.Frequency(frequency)
	pattern.Stability = domain.Stability(stability)
	pattern.Confidence = domain.Confidence(confidence)
	pattern.Statistics.Count = pattern.UploadsAnalyzed
	if nextExpected.Valid {
		t := nextExpected.Time
		pattern.NextExpectedDate = &t
	}
	if len(changesRaw) > 0 {
		if err := json.Unmarshal(changesRaw, &pattern.PatternChanges); err != nil {
			return domain.DocumentPattern{}, fmt.Errorf("unmarshal pattern changes: %w", err)
		}
	}
	return pattern, nil
}
