package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tallyhq/docwatch/internal/core/domain"
	"github.com/tallyhq/docwatch/internal/core/ports"
)

// ReminderConfig holds the day thresholds separating reminder tiers. The
// values are tunable defaults, not invariants.
type ReminderConfig struct {
	// Overdue by at most OverdueThresholdDays days past grace is "overdue",
	// at most FollowUpThresholdDays is "follow_up", beyond that
	// "final_notice".
	OverdueThresholdDays  int
	FollowUpThresholdDays int
}

func DefaultReminderConfig() ReminderConfig {
	return ReminderConfig{
		OverdueThresholdDays:  7,
		FollowUpThresholdDays: 14,
	}
}

func (c ReminderConfig) normalize() ReminderConfig {
	def := DefaultReminderConfig()
	if c.OverdueThresholdDays <= 0 {
		c.OverdueThresholdDays = def.OverdueThresholdDays
	}
	if c.FollowUpThresholdDays <= c.OverdueThresholdDays {
		c.FollowUpThresholdDays = def.FollowUpThresholdDays
		if c.FollowUpThresholdDays <= c.OverdueThresholdDays {
			c.FollowUpThresholdDays = c.OverdueThresholdDays + 7
		}
	}
	return c
}

// GenerateRemindersUseCase classifies missing documents into reminders,
// composes their messages and schedules the next send time.
type GenerateRemindersUseCase struct {
	settings ports.ReminderSettingsRepository
	log      ports.ReminderLog
	table    *ScheduleTable
	cfg      ReminderConfig
}

func NewGenerateRemindersUseCase(
	settings ports.ReminderSettingsRepository,
	log ports.ReminderLog,
	table *ScheduleTable,
	cfg ReminderConfig,
) *GenerateRemindersUseCase {
	return &GenerateRemindersUseCase{
		settings: settings,
		log:      log,
		table:    table,
		cfg:      cfg.normalize(),
	}
}

// GenerateReminders processes the batch item by item; each item only reads
// its own record plus the shared read-only settings and schedule tables, so
// a failing item degrades to an Errors entry instead of aborting the batch.
func (uc *GenerateRemindersUseCase) GenerateReminders(
	ctx context.Context,
	missing []domain.MissingDocument,
	opts ports.GenerateOptions,
) (*domain.ReminderGenerationResult, error) {
	result := &domain.ReminderGenerationResult{
		ByType:    make(map[domain.ReminderType]int),
		ByUrgency: make(map[domain.Urgency]int),
	}

	for _, item := range missing {
		if item.Status.Terminal() {
			continue
		}
		result.TotalPending++

		settings, warn := uc.loadSettings(ctx, item.DocumentType)
		if warn != "" {
			result.Errors = append(result.Errors, warn)
		}
		if opts.RespectSettings && !settings.Enabled {
			continue
		}

		sent, err := uc.log.ReminderCount(ctx, item.ID)
		if err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s/%s: reminder count: %v", item.DocumentType, item.Source, err))
			continue
		}
		if sent >= settings.MaxReminders {
			continue
		}

		scheduledFor := uc.table.NextReminderDate(item, sent)
		if scheduledFor == nil {
			// Schedule cap reached: terminal, silently excluded.
			continue
		}

		reminderType, urgency := uc.classifyReminder(item)
		reminder := domain.DocumentReminder{
			ID:                uuid.NewString(),
			MissingDocumentID: item.ID,
			DocumentType:      item.DocumentType,
			Source:            item.Source,
			Type:              reminderType,
			Urgency:           urgency,
			Message:           composeMessage(reminderType, item),
			Actions:           actionsFor(reminderType),
			ScheduledFor:      *scheduledFor,
		}

		result.Reminders = append(result.Reminders, reminder)
		result.ByType[reminderType]++
		result.ByUrgency[urgency]++
	}

	result.TotalReminders = len(result.Reminders)
	return result, nil
}

// loadSettings falls back to safe defaults rather than failing; the warning
// is surfaced through the result's Errors field.
func (uc *GenerateRemindersUseCase) loadSettings(ctx context.Context, documentType domain.DocumentType) (domain.ReminderSettings, string) {
	settings, err := uc.settings.LoadSettings(ctx, documentType)
	if err == nil {
		return *settings, ""
	}
	fallback := domain.DefaultReminderSettings(documentType)
	if domain.IsKind(err, domain.ErrSettingsNotFound) {
		return fallback, fmt.Sprintf("%s: no reminder settings, using defaults", documentType)
	}
	return fallback, fmt.Sprintf("%s: load reminder settings: %v", documentType, err)
}

func (uc *GenerateRemindersUseCase) classifyReminder(item domain.MissingDocument) (domain.ReminderType, domain.Urgency) {
	switch {
	case !item.IsMissing:
		return domain.ReminderUpcoming, domain.UrgencyLow
	case item.DaysOverdue <= uc.cfg.OverdueThresholdDays:
		return domain.ReminderOverdue, domain.UrgencyHigh
	case item.DaysOverdue <= uc.cfg.FollowUpThresholdDays:
		return domain.ReminderFollowUp, domain.UrgencyHigh
	default:
		return domain.ReminderFinalNotice, domain.UrgencyCritical
	}
}

func composeMessage(reminderType domain.ReminderType, item domain.MissingDocument) domain.ReminderMessage {
	label := item.DocumentType.Label()
	expected := item.ExpectedDate.Format("2 Jan 2006")

	switch reminderType {
	case domain.ReminderUpcoming:
		return domain.ReminderMessage{
			Title: fmt.Sprintf("Upcoming: %s from %s", label, item.Source),
			Body:  fmt.Sprintf("Your %s from %s is expected around %s. Upload it once it arrives to keep your records complete.", label, item.Source, expected),
		}
	case domain.ReminderOverdue:
		return domain.ReminderMessage{
			Title:   fmt.Sprintf("Overdue: %s from %s", label, item.Source),
			Body:    fmt.Sprintf("Your %s from %s was expected on %s and is now %d days overdue.", label, item.Source, expected, item.DaysOverdue),
			Details: fmt.Sprintf("Based on %d previous uploads.", item.HistoricalUploads),
		}
	case domain.ReminderFollowUp:
		return domain.ReminderMessage{
			Title:   fmt.Sprintf("Still missing: %s from %s", label, item.Source),
			Body:    fmt.Sprintf("We reminded you about the %s from %s, but it is still missing %d days past its grace period.", label, item.Source, item.DaysOverdue),
			Details: fmt.Sprintf("Expected on %s.", expected),
		}
	default:
		return domain.ReminderMessage{
			Title:   fmt.Sprintf("Final Notice: %s from %s", label, item.Source),
			Body:    fmt.Sprintf("Your %s from %s is significantly overdue: %d days past its grace period. This is the final reminder for this document.", label, item.Source, item.DaysOverdue),
			Details: fmt.Sprintf("Expected on %s. Contact support if the document is unavailable.", expected),
		}
	}
}

func actionsFor(reminderType domain.ReminderType) []domain.ReminderAction {
	actions := []domain.ReminderAction{domain.ActionUpload, domain.ActionDismiss}
	switch reminderType {
	case domain.ReminderOverdue, domain.ReminderFollowUp:
		actions = append(actions, domain.ActionSnooze)
	case domain.ReminderFinalNotice:
		actions = append(actions, domain.ActionSnooze, domain.ActionContactSupport)
	}
	return actions
}

// GroupRemindersByUrgency partitions a generated list without recomputation.
func GroupRemindersByUrgency(reminders []domain.DocumentReminder) map[domain.Urgency][]domain.DocumentReminder {
	out := make(map[domain.Urgency][]domain.DocumentReminder)
	for _, r := range reminders {
		out[r.Urgency] = append(out[r.Urgency], r)
	}
	return out
}

// GroupRemindersByType partitions a generated list without recomputation.
func GroupRemindersByType(reminders []domain.DocumentReminder) map[domain.ReminderType][]domain.DocumentReminder {
	out := make(map[domain.ReminderType][]domain.DocumentReminder)
	for _, r := range reminders {
		out[r.Type] = append(out[r.Type], r)
	}
	return out
}
