package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/tallyhq/docwatch/internal/core/domain"
)

type calendarFake struct {
	deadlines []domain.TaxDeadline
	err       error
}

func (f *calendarFake) AddDeadline(_ context.Context, deadline domain.TaxDeadline) error {
	if f.err != nil {
		return f.err
	}
	f.deadlines = append(f.deadlines, deadline)
	return nil
}

func missingWithConfidence(confidence domain.Confidence) domain.MissingDocument {
	return domain.MissingDocument{
		ID:             "miss-1",
		PatternID:      "pat-1",
		DocumentType:   domain.DocTypePAYGSummary,
		Source:         "Acme Pty Ltd",
		ExpectedDate:   day(2025, time.July, 14),
		GracePeriodEnd: day(2025, time.July, 28),
		Confidence:     confidence,
	}
}

func TestDeadlineFromMissingConfidenceGate(t *testing.T) {
	for _, confidence := range []domain.Confidence{domain.ConfidenceLow, domain.ConfidenceUncertain} {
		if got := DeadlineFromMissing(missingWithConfidence(confidence)); got != nil {
			t.Fatalf("confidence %s must not create a deadline", confidence)
		}
	}
	for _, confidence := range []domain.Confidence{domain.ConfidenceHigh, domain.ConfidenceMedium} {
		if got := DeadlineFromMissing(missingWithConfidence(confidence)); got == nil {
			t.Fatalf("confidence %s must create a deadline", confidence)
		}
	}
}

func TestDeadlineFromMissingShape(t *testing.T) {
	deadline := DeadlineFromMissing(missingWithConfidence(domain.ConfidenceHigh))
	if deadline == nil {
		t.Fatalf("expected a deadline")
	}
	if deadline.Type != domain.DeadlineTypeCustom {
		t.Fatalf("expected CUSTOM type, got %s", deadline.Type)
	}
	if deadline.Title == "" || deadline.Metadata.MissingDocumentID != "miss-1" {
		t.Fatalf("unexpected deadline: %+v", deadline)
	}
	if !deadline.Metadata.IsUploadReminder || deadline.Metadata.PatternID != "pat-1" {
		t.Fatalf("metadata must trace back to the originating record: %+v", deadline.Metadata)
	}
	if deadline.DueDate != day(2025, time.July, 28) {
		t.Fatalf("expected due date at grace end, got %s", deadline.DueDate.Format("2006-01-02"))
	}
}

func TestRegisterDeadlinesSkipsWeakPatterns(t *testing.T) {
	calendar := &calendarFake{}
	bridge := NewCalendarBridge(calendar)

	created, err := bridge.RegisterDeadlines(context.Background(), []domain.MissingDocument{
		missingWithConfidence(domain.ConfidenceHigh),
		missingWithConfidence(domain.ConfidenceLow),
		missingWithConfidence(domain.ConfidenceMedium),
		missingWithConfidence(domain.ConfidenceUncertain),
	})
	if err != nil {
		t.Fatalf("RegisterDeadlines() error = %v", err)
	}
	if created != 2 || len(calendar.deadlines) != 2 {
		t.Fatalf("expected 2 deadlines, got created=%d stored=%d", created, len(calendar.deadlines))
	}
}
