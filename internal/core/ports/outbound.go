package ports

import (
	"context"
	"time"

	"github.com/tallyhq/docwatch/internal/core/domain"
)

// PatternRepository persists inferred upload patterns keyed by
// (documentType, source). SavePattern replaces any stored pattern for the
// same key.
type PatternRepository interface {
	LoadPatterns(ctx context.Context) ([]domain.DocumentPattern, error)
	GetPattern(ctx context.Context, documentType domain.DocumentType, source string) (*domain.DocumentPattern, error)
	SavePattern(ctx context.Context, pattern *domain.DocumentPattern) error
	DeletePattern(ctx context.Context, id string) error
}

// MissingDocumentRepository persists missing-document records and their
// status transitions.
type MissingDocumentRepository interface {
	SaveMissingDocument(ctx context.Context, missing *domain.MissingDocument) error
	ListMissingDocuments(ctx context.Context, includeResolved bool) ([]domain.MissingDocument, error)
	UpdateMissingDocumentStatus(ctx context.Context, id string, status domain.MissingDocumentStatus) error
}

// ReminderSettingsRepository reads and partially updates per-type reminder
// settings. LoadSettings returns domain.ErrSettingsNotFound when no row
// exists for the type.
type ReminderSettingsRepository interface {
	LoadSettings(ctx context.Context, documentType domain.DocumentType) (*domain.ReminderSettings, error)
	UpdateSettings(ctx context.Context, documentType domain.DocumentType, patch domain.ReminderSettingsPatch) (*domain.ReminderSettings, error)
}

// ReminderLog tracks how many reminders have been sent per missing document.
// These counters are the unit of mutual exclusion for concurrent runs.
type ReminderLog interface {
	ReminderCount(ctx context.Context, missingDocumentID string) (int, error)
	RecordReminderSent(ctx context.Context, missingDocumentID string, reminderType domain.ReminderType, sentAt time.Time) error
}

// AnalysisRunRecorder persists metadata about completed analysis passes.
type AnalysisRunRecorder interface {
	RecordAnalysisRun(ctx context.Context, run domain.AnalysisRun) error
}

// UploadHistorySource supplies the historical upload events feeding an
// analysis run. The ingestion side (OCR, capture UI) populates it.
type UploadHistorySource interface {
	ListUploadEvents(ctx context.Context) ([]domain.UploadEvent, error)
}

// ReminderDispatcher hands a finished reminder to the delivery layer for one
// channel.
type ReminderDispatcher interface {
	Dispatch(ctx context.Context, reminder domain.DocumentReminder, channel domain.Channel) error
}

// TaxCalendar registers synthetic deadlines derived from missing documents.
type TaxCalendar interface {
	AddDeadline(ctx context.Context, deadline domain.TaxDeadline) error
}
