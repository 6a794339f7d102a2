package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tallyhq/docwatch/internal/core/domain"
	"github.com/tallyhq/docwatch/internal/core/ports"
)

type settingsFake struct {
	byType  map[domain.DocumentType]domain.ReminderSettings
	loadErr error
}

func (f *settingsFake) LoadSettings(_ context.Context, documentType domain.DocumentType) (*domain.ReminderSettings, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	settings, ok := f.byType[documentType]
	if !ok {
		return nil, domain.ErrSettingsNotFound
	}
	return &settings, nil
}

func (f *settingsFake) UpdateSettings(_ context.Context, documentType domain.DocumentType, patch domain.ReminderSettingsPatch) (*domain.ReminderSettings, error) {
	current, ok := f.byType[documentType]
	if !ok {
		current = domain.DefaultReminderSettings(documentType)
	}
	updated := patch.Apply(current)
	f.byType[documentType] = updated
	return &updated, nil
}

type reminderLogFake struct {
	counts   map[string]int
	recorded []string
	countErr error
}

func (f *reminderLogFake) ReminderCount(_ context.Context, missingDocumentID string) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.counts[missingDocumentID], nil
}

func (f *reminderLogFake) RecordReminderSent(_ context.Context, missingDocumentID string, _ domain.ReminderType, _ time.Time) error {
	f.recorded = append(f.recorded, missingDocumentID)
	return nil
}

func enabledSettings(documentType domain.DocumentType, maxReminders int) domain.ReminderSettings {
	s := domain.DefaultReminderSettings(documentType)
	s.MaxReminders = maxReminders
	return s
}

func overdueMissing(id string, daysOverdue int) domain.MissingDocument {
	return domain.MissingDocument{
		ID:             id,
		PatternID:      "pat-" + id,
		DocumentType:   domain.DocTypeBankStatement,
		Source:         "Bank A",
		ExpectedDate:   day(2025, time.July, 1),
		GracePeriodEnd: day(2025, time.July, 6),
		DaysOverdue:    daysOverdue,
		IsMissing:      daysOverdue > 0,
		Confidence:     domain.ConfidenceHigh,
		Status:         domain.MissingStatusPending,
	}
}

func newGenerator(settings *settingsFake, log *reminderLogFake) *GenerateRemindersUseCase {
	return NewGenerateRemindersUseCase(settings, log, DefaultScheduleTable(), ReminderConfig{})
}

func TestGenerateRemindersClassifiesOverdueTiers(t *testing.T) {
	settings := &settingsFake{byType: map[domain.DocumentType]domain.ReminderSettings{
		domain.DocTypeBankStatement: enabledSettings(domain.DocTypeBankStatement, 4),
	}}
	log := &reminderLogFake{counts: map[string]int{}}
	uc := newGenerator(settings, log)

	result, err := uc.GenerateReminders(context.Background(),
		[]domain.MissingDocument{
			overdueMissing("m-5", 5),
			overdueMissing("m-10", 10),
			overdueMissing("m-20", 20),
		},
		ports.GenerateOptions{RespectSettings: true},
	)
	if err != nil {
		t.Fatalf("GenerateReminders() error = %v", err)
	}
	if result.TotalReminders != 3 {
		t.Fatalf("expected 3 reminders, got %d", result.TotalReminders)
	}

	byID := make(map[string]domain.DocumentReminder)
	for _, r := range result.Reminders {
		byID[r.MissingDocumentID] = r
	}

	if r := byID["m-5"]; r.Type != domain.ReminderOverdue || r.Urgency != domain.UrgencyHigh {
		t.Fatalf("daysOverdue=5: expected overdue/high, got %s/%s", r.Type, r.Urgency)
	}
	if r := byID["m-10"]; r.Type != domain.ReminderFollowUp || r.Urgency != domain.UrgencyHigh {
		t.Fatalf("daysOverdue=10: expected follow_up/high, got %s/%s", r.Type, r.Urgency)
	}
	final := byID["m-20"]
	if final.Type != domain.ReminderFinalNotice || final.Urgency != domain.UrgencyCritical {
		t.Fatalf("daysOverdue=20: expected final_notice/critical, got %s/%s", final.Type, final.Urgency)
	}
	if !strings.Contains(final.Message.Title, "Final Notice") {
		t.Fatalf("final notice title must read as a last warning, got %q", final.Message.Title)
	}
	if !strings.Contains(final.Message.Body, "significantly overdue") {
		t.Fatalf("final notice body must flag the document as significantly overdue, got %q", final.Message.Body)
	}
	if result.ByType[domain.ReminderFinalNotice] != 1 || result.ByUrgency[domain.UrgencyCritical] != 1 {
		t.Fatalf("unexpected tallies: %+v %+v", result.ByType, result.ByUrgency)
	}
}

func TestGenerateRemindersUpcomingIsLowUrgency(t *testing.T) {
	settings := &settingsFake{byType: map[domain.DocumentType]domain.ReminderSettings{
		domain.DocTypeBankStatement: enabledSettings(domain.DocTypeBankStatement, 4),
	}}
	log := &reminderLogFake{counts: map[string]int{}}
	uc := newGenerator(settings, log)

	upcoming := overdueMissing("m-up", 0)
	upcoming.IsMissing = false

	result, err := uc.GenerateReminders(context.Background(),
		[]domain.MissingDocument{upcoming}, ports.GenerateOptions{})
	if err != nil {
		t.Fatalf("GenerateReminders() error = %v", err)
	}
	if len(result.Reminders) != 1 {
		t.Fatalf("expected 1 reminder, got %d", len(result.Reminders))
	}
	r := result.Reminders[0]
	if r.Type != domain.ReminderUpcoming || r.Urgency != domain.UrgencyLow {
		t.Fatalf("expected upcoming/low, got %s/%s", r.Type, r.Urgency)
	}
	if !r.ScheduledFor.Before(upcoming.ExpectedDate) {
		t.Fatalf("upcoming reminder must be scheduled before the expected date")
	}
	if len(r.Actions) != 2 {
		t.Fatalf("upcoming reminders carry upload+dismiss only, got %v", r.Actions)
	}
}

func TestGenerateRemindersRespectsDisabledSettings(t *testing.T) {
	disabled := enabledSettings(domain.DocTypeBankStatement, 4)
	disabled.Enabled = false
	settings := &settingsFake{byType: map[domain.DocumentType]domain.ReminderSettings{
		domain.DocTypeBankStatement: disabled,
	}}
	log := &reminderLogFake{counts: map[string]int{}}
	uc := newGenerator(settings, log)

	result, err := uc.GenerateReminders(context.Background(),
		[]domain.MissingDocument{overdueMissing("m-1", 5)},
		ports.GenerateOptions{RespectSettings: true},
	)
	if err != nil {
		t.Fatalf("GenerateReminders() error = %v", err)
	}
	if len(result.Reminders) != 0 {
		t.Fatalf("expected zero reminders for disabled type, got %d", len(result.Reminders))
	}

	// Without RespectSettings the same item generates.
	result, err = uc.GenerateReminders(context.Background(),
		[]domain.MissingDocument{overdueMissing("m-1", 5)}, ports.GenerateOptions{})
	if err != nil {
		t.Fatalf("GenerateReminders() error = %v", err)
	}
	if len(result.Reminders) != 1 {
		t.Fatalf("expected 1 reminder when settings are ignored, got %d", len(result.Reminders))
	}
}

func TestGenerateRemindersExcludesItemsAtCap(t *testing.T) {
	settings := &settingsFake{byType: map[domain.DocumentType]domain.ReminderSettings{
		domain.DocTypeBankStatement: enabledSettings(domain.DocTypeBankStatement, 2),
	}}
	log := &reminderLogFake{counts: map[string]int{"m-capped": 2}}
	uc := newGenerator(settings, log)

	result, err := uc.GenerateReminders(context.Background(),
		[]domain.MissingDocument{overdueMissing("m-capped", 5), overdueMissing("m-fresh", 5)},
		ports.GenerateOptions{RespectSettings: true},
	)
	if err != nil {
		t.Fatalf("GenerateReminders() error = %v", err)
	}
	if len(result.Reminders) != 1 || result.Reminders[0].MissingDocumentID != "m-fresh" {
		t.Fatalf("expected only the uncapped item, got %+v", result.Reminders)
	}
}

func TestGenerateRemindersSkipsTerminalRecords(t *testing.T) {
	settings := &settingsFake{byType: map[domain.DocumentType]domain.ReminderSettings{
		domain.DocTypeBankStatement: enabledSettings(domain.DocTypeBankStatement, 4),
	}}
	log := &reminderLogFake{counts: map[string]int{}}
	uc := newGenerator(settings, log)

	uploaded := overdueMissing("m-done", 5)
	uploaded.Status = domain.MissingStatusUploaded
	dismissed := overdueMissing("m-gone", 5)
	dismissed.Status = domain.MissingStatusDismissed

	result, err := uc.GenerateReminders(context.Background(),
		[]domain.MissingDocument{uploaded, dismissed}, ports.GenerateOptions{})
	if err != nil {
		t.Fatalf("GenerateReminders() error = %v", err)
	}
	if len(result.Reminders) != 0 || result.TotalPending != 0 {
		t.Fatalf("terminal records must be excluded, got %+v", result)
	}
}

func TestGenerateRemindersFallsBackOnMissingSettings(t *testing.T) {
	settings := &settingsFake{byType: map[domain.DocumentType]domain.ReminderSettings{}}
	log := &reminderLogFake{counts: map[string]int{}}
	uc := newGenerator(settings, log)

	result, err := uc.GenerateReminders(context.Background(),
		[]domain.MissingDocument{overdueMissing("m-1", 5)},
		ports.GenerateOptions{RespectSettings: true},
	)
	if err != nil {
		t.Fatalf("GenerateReminders() error = %v", err)
	}
	if len(result.Reminders) != 1 {
		t.Fatalf("missing settings must fall back to enabled defaults, got %d reminders", len(result.Reminders))
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "defaults") {
		t.Fatalf("expected a settings warning, got %v", result.Errors)
	}
}

func TestGenerateRemindersIsolatesCountFailures(t *testing.T) {
	settings := &settingsFake{byType: map[domain.DocumentType]domain.ReminderSettings{
		domain.DocTypeBankStatement: enabledSettings(domain.DocTypeBankStatement, 4),
	}}
	log := &reminderLogFake{countErr: errors.New("db down")}
	uc := newGenerator(settings, log)

	result, err := uc.GenerateReminders(context.Background(),
		[]domain.MissingDocument{overdueMissing("m-1", 5)}, ports.GenerateOptions{})
	if err != nil {
		t.Fatalf("GenerateReminders() error = %v", err)
	}
	if len(result.Reminders) != 0 || len(result.Errors) != 1 {
		t.Fatalf("expected the item skipped with an error entry, got %+v", result)
	}
}

func TestGroupRemindersRoundTrips(t *testing.T) {
	settings := &settingsFake{byType: map[domain.DocumentType]domain.ReminderSettings{
		domain.DocTypeBankStatement: enabledSettings(domain.DocTypeBankStatement, 4),
	}}
	log := &reminderLogFake{counts: map[string]int{}}
	uc := newGenerator(settings, log)

	upcoming := overdueMissing("m-up", 0)
	upcoming.IsMissing = false

	result, err := uc.GenerateReminders(context.Background(),
		[]domain.MissingDocument{upcoming, overdueMissing("m-5", 5), overdueMissing("m-20", 20)},
		ports.GenerateOptions{},
	)
	if err != nil {
		t.Fatalf("GenerateReminders() error = %v", err)
	}

	grouped := GroupRemindersByUrgency(result.Reminders)
	seen := make(map[string]bool)
	total := 0
	for _, bucket := range grouped {
		for _, r := range bucket {
			seen[r.ID] = true
			total++
		}
	}
	if total != len(result.Reminders) {
		t.Fatalf("flattened buckets have %d reminders, want %d", total, len(result.Reminders))
	}
	for _, r := range result.Reminders {
		if !seen[r.ID] {
			t.Fatalf("reminder %s lost in grouping", r.ID)
		}
	}

	byType := GroupRemindersByType(result.Reminders)
	if len(byType[domain.ReminderUpcoming]) != 1 || len(byType[domain.ReminderFinalNotice]) != 1 {
		t.Fatalf("unexpected type buckets: %+v", byType)
	}
}
