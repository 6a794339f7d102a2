package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"github.com/tallyhq/docwatch/internal/core/domain"
	"github.com/tallyhq/docwatch/internal/core/ports"
)

// ProcessRemindersUseCase pushes generated reminders through the delivery
// layer as a prioritized, rate-limited stream and records what was sent.
type ProcessRemindersUseCase struct {
	dispatcher ports.ReminderDispatcher
	settings   ports.ReminderSettingsRepository
	log        ports.ReminderLog
	missing    ports.MissingDocumentRepository
	limiter    *rate.Limiter
	now        func() time.Time
}

func NewProcessRemindersUseCase(
	dispatcher ports.ReminderDispatcher,
	settings ports.ReminderSettingsRepository,
	log ports.ReminderLog,
	missing ports.MissingDocumentRepository,
	perSecond float64,
	burst int,
) *ProcessRemindersUseCase {
	if perSecond <= 0 {
		perSecond = 5
	}
	if burst <= 0 {
		burst = 1
	}
	return &ProcessRemindersUseCase{
		dispatcher: dispatcher,
		settings:   settings,
		log:        log,
		missing:    missing,
		limiter:    rate.NewLimiter(rate.Limit(perSecond), burst),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the wall clock, for tests.
func (uc *ProcessRemindersUseCase) WithClock(now func() time.Time) *ProcessRemindersUseCase {
	uc.now = now
	return uc
}

// ProcessDueReminders delivers each reminder on its enabled channels, most
// urgent first. Items are independent: a failed delivery increments Failed
// and the batch continues. Returns early only when the context is cancelled.
func (uc *ProcessRemindersUseCase) ProcessDueReminders(ctx context.Context, reminders []domain.DocumentReminder) (*domain.DispatchResult, error) {
	ordered := make([]domain.DocumentReminder, len(reminders))
	copy(ordered, reminders)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Urgency.Rank() > ordered[j].Urgency.Rank()
	})

	result := &domain.DispatchResult{}
	for _, reminder := range ordered {
		if err := uc.limiter.Wait(ctx); err != nil {
			return result, err
		}
		result.Processed++

		if err := uc.deliver(ctx, reminder); err != nil {
			result.Failed++
			slog.Warn("reminder_delivery_failed",
				"reminder_id", reminder.ID,
				"missing_document_id", reminder.MissingDocumentID,
				"urgency", reminder.Urgency,
				"error", err,
			)
			continue
		}
		result.Sent++

		if err := uc.recordSent(ctx, reminder); err != nil {
			slog.Warn("reminder_bookkeeping_failed",
				"reminder_id", reminder.ID,
				"missing_document_id", reminder.MissingDocumentID,
				"error", err,
			)
		}
	}
	return result, nil
}

func (uc *ProcessRemindersUseCase) deliver(ctx context.Context, reminder domain.DocumentReminder) error {
	for _, channel := range uc.channelsFor(ctx, reminder.DocumentType) {
		if err := uc.dispatcher.Dispatch(ctx, reminder, channel); err != nil {
			return fmt.Errorf("dispatch %s: %w", channel, err)
		}
	}
	return nil
}

// channelsFor resolves delivery channels from the type's settings, defaulting
// to push when settings are absent or disable everything.
func (uc *ProcessRemindersUseCase) channelsFor(ctx context.Context, documentType domain.DocumentType) []domain.Channel {
	settings, err := uc.settings.LoadSettings(ctx, documentType)
	if err != nil {
		return []domain.Channel{domain.ChannelPush}
	}
	channels := make([]domain.Channel, 0, 2)
	if settings.PushNotifications {
		channels = append(channels, domain.ChannelPush)
	}
	if settings.EmailNotifications {
		channels = append(channels, domain.ChannelEmail)
	}
	if len(channels) == 0 {
		channels = append(channels, domain.ChannelPush)
	}
	return channels
}

func (uc *ProcessRemindersUseCase) recordSent(ctx context.Context, reminder domain.DocumentReminder) error {
	if err := uc.log.RecordReminderSent(ctx, reminder.MissingDocumentID, reminder.Type, uc.now()); err != nil {
		return fmt.Errorf("record reminder sent: %w", err)
	}
	if err := uc.missing.UpdateMissingDocumentStatus(ctx, reminder.MissingDocumentID, domain.MissingStatusReminded); err != nil {
		return fmt.Errorf("mark reminded: %w", err)
	}
	return nil
}
