package usecase

import (
	"time"

	"github.com/google/uuid"

	"github.com/tallyhq/docwatch/internal/core/domain"
)

// DetectorConfig holds the grace and look-ahead windows of the missing
// document detector.
type DetectorConfig struct {
	// DefaultGraceDays buffers the predicted date before a document counts
	// as missing; YearlyGraceDays applies to yearly-frequency patterns.
	DefaultGraceDays int
	YearlyGraceDays  int
	GraceOverrides   map[domain.DocumentType]int

	// LookAheadDays bounds how far before the expected date an "upcoming"
	// record is emitted.
	LookAheadDays int
}

func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		DefaultGraceDays: 5,
		YearlyGraceDays:  14,
		LookAheadDays:    7,
	}
}

func (c DetectorConfig) normalize() DetectorConfig {
	def := DefaultDetectorConfig()
	if c.DefaultGraceDays <= 0 {
		c.DefaultGraceDays = def.DefaultGraceDays
	}
	if c.YearlyGraceDays <= 0 {
		c.YearlyGraceDays = def.YearlyGraceDays
	}
	if c.LookAheadDays <= 0 {
		c.LookAheadDays = def.LookAheadDays
	}
	return c
}

// MissingDocumentDetector emits MissingDocument records for patterns whose
// predicted date (plus grace) has passed without a matching upload. It is
// stateless and idempotent per run; persisting the records and their status
// transitions is the caller's job.
type MissingDocumentDetector struct {
	cfg DetectorConfig
	now func() time.Time
}

func NewMissingDocumentDetector(cfg DetectorConfig) *MissingDocumentDetector {
	return &MissingDocumentDetector{
		cfg: cfg.normalize(),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the wall clock, for tests.
func (d *MissingDocumentDetector) WithClock(now func() time.Time) *MissingDocumentDetector {
	d.now = now
	return d
}

// DetectMissing inspects each pattern with a non-nil prediction. uploads are
// the events observed since the last prediction; a pattern matched by an
// upload dated at or after its expected date is skipped.
func (d *MissingDocumentDetector) DetectMissing(patterns []domain.DocumentPattern, uploads []domain.UploadEvent) []domain.MissingDocument {
	today := truncateToDay(d.now())

	out := make([]domain.MissingDocument, 0)
	for _, pattern := range patterns {
		if pattern.NextExpectedDate == nil {
			continue
		}
		expected := truncateToDay(*pattern.NextExpectedDate)
		if hasMatchingUpload(uploads, pattern, expected) {
			continue
		}

		graceEnd := expected.AddDate(0, 0, d.gracePeriodDays(pattern))

		var record domain.MissingDocument
		switch {
		case today.Before(expected):
			if daysBetween(today, expected) > d.cfg.LookAheadDays {
				continue
			}
			record = d.newRecord(pattern, expected, graceEnd, false, 0, today)
		case !today.After(graceEnd):
			// Inside the grace window: stay silent.
			continue
		default:
			record = d.newRecord(pattern, expected, graceEnd, true, daysBetween(graceEnd, today), today)
		}
		out = append(out, record)
	}
	return out
}

func (d *MissingDocumentDetector) newRecord(
	pattern domain.DocumentPattern,
	expected, graceEnd time.Time,
	isMissing bool,
	daysOverdue int,
	today time.Time,
) domain.MissingDocument {
	return domain.MissingDocument{
		ID:                uuid.NewString(),
		PatternID:         pattern.ID,
		DocumentType:      pattern.DocumentType,
		Source:            pattern.Source,
		ExpectedDate:      expected,
		GracePeriodEnd:    graceEnd,
		DaysOverdue:       daysOverdue,
		IsMissing:         isMissing,
		Confidence:        pattern.Confidence,
		HistoricalUploads: pattern.UploadsAnalyzed,
		LastUploadDate:    pattern.LastUploadDate,
		Status:            domain.MissingStatusPending,
		DetectedAt:        today,
	}
}

func (d *MissingDocumentDetector) gracePeriodDays(pattern domain.DocumentPattern) int {
	if override, ok := d.cfg.GraceOverrides[pattern.DocumentType]; ok && override > 0 {
		return override
	}
	if pattern.Frequency == domain.FrequencyYearly {
		return d.cfg.YearlyGraceDays
	}
	return d.cfg.DefaultGraceDays
}

func hasMatchingUpload(uploads []domain.UploadEvent, pattern domain.DocumentPattern, expected time.Time) bool {
	for _, u := range uploads {
		if u.DocumentType != pattern.DocumentType || u.Source != pattern.Source {
			continue
		}
		if !truncateToDay(u.UploadDate).Before(expected) {
			return true
		}
	}
	return false
}
