package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tallyhq/docwatch/internal/core/domain"
	"github.com/tallyhq/docwatch/internal/core/ports"
)

// DeadlineFromMissing converts a missing document into a calendar deadline.
// It returns nil for low and uncertain confidence; weak patterns must not
// pollute the user's tax calendar.
func DeadlineFromMissing(missing domain.MissingDocument) *domain.TaxDeadline {
	if missing.Confidence != domain.ConfidenceHigh && missing.Confidence != domain.ConfidenceMedium {
		return nil
	}
	return &domain.TaxDeadline{
		ID:      uuid.NewString(),
		Type:    domain.DeadlineTypeCustom,
		Title:   fmt.Sprintf("Upload %s from %s", missing.DocumentType.Label(), missing.Source),
		DueDate: missing.GracePeriodEnd,
		Metadata: domain.DeadlineMetadata{
			IsUploadReminder:  true,
			MissingDocumentID: missing.ID,
			Source:            missing.Source,
			DocumentType:      missing.DocumentType,
			PatternID:         missing.PatternID,
		},
	}
}

// CalendarBridge registers deadlines for sufficiently confident missing
// documents with the tax calendar collaborator.
type CalendarBridge struct {
	calendar ports.TaxCalendar
}

func NewCalendarBridge(calendar ports.TaxCalendar) *CalendarBridge {
	return &CalendarBridge{calendar: calendar}
}

// RegisterDeadlines adds one deadline per eligible record and returns how
// many were created.
func (b *CalendarBridge) RegisterDeadlines(ctx context.Context, missing []domain.MissingDocument) (int, error) {
	created := 0
	for _, item := range missing {
		deadline := DeadlineFromMissing(item)
		if deadline == nil {
			continue
		}
		if err := b.calendar.AddDeadline(ctx, *deadline); err != nil {
			return created, fmt.Errorf("add deadline for %s/%s: %w", item.DocumentType, item.Source, err)
		}
		created++
	}
	return created, nil
}
