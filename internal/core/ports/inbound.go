package ports

import (
	"context"

	"github.com/tallyhq/docwatch/internal/core/domain"
)

// GenerateOptions controls one reminder-generation batch.
type GenerateOptions struct {
	// RespectSettings skips document types whose ReminderSettings are
	// disabled.
	RespectSettings bool
}

// PatternAnalyzer is the inbound contract for recomputing upload patterns.
type PatternAnalyzer interface {
	RunAnalysis(ctx context.Context, uploads []domain.UploadEvent) (*domain.AnalysisResult, error)
}

// MissingDetector flags patterns whose predicted date has passed without a
// matching upload. Stateless and idempotent per call.
type MissingDetector interface {
	DetectMissing(patterns []domain.DocumentPattern, uploads []domain.UploadEvent) []domain.MissingDocument
}

// ReminderGenerator turns missing-document records into deliverable
// reminders.
type ReminderGenerator interface {
	GenerateReminders(ctx context.Context, missing []domain.MissingDocument, opts GenerateOptions) (*domain.ReminderGenerationResult, error)
}

// ReminderProcessor pushes generated reminders through the delivery layer and
// tracks counts.
type ReminderProcessor interface {
	ProcessDueReminders(ctx context.Context, reminders []domain.DocumentReminder) (*domain.DispatchResult, error)
}
