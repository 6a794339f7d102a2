package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tallyhq/docwatch/internal/core/domain"
)

type ReminderSettingsRepository struct {
	db *sql.DB
}

func NewReminderSettingsRepository(db *sql.DB) *ReminderSettingsRepository {
	return &ReminderSettingsRepository{db: db}
}

func (r *ReminderSettingsRepository) LoadSettings(ctx context.Context, documentType domain.DocumentType) (*domain.ReminderSettings, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT document_type, enabled, reminder_days_before, reminder_days_after,
	email_notifications, push_notifications, max_reminders
FROM reminder_settings
WHERE document_type = $1
`, string(documentType))

	settings, err := scanSettings(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSettingsNotFound
		}
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return &settings, nil
}

// UpdateSettings applies a partial patch on top of the stored row, or on top
// of the defaults when no row exists yet, and persists the result.
func (r *ReminderSettingsRepository) UpdateSettings(ctx context.Context, documentType domain.DocumentType, patch domain.ReminderSettingsPatch) (*domain.ReminderSettings, error) {
	current, err := r.LoadSettings(ctx, documentType)
	if err != nil {
		if !errors.Is(err, domain.ErrSettingsNotFound) {
			return nil, err
		}
		defaults := domain.DefaultReminderSettings(documentType)
		current = &defaults
	}

	updated := patch.Apply(*current)
	updated.DocumentType = documentType

	_, err = r.db.ExecContext(ctx, `
INSERT INTO reminder_settings (
	document_type, enabled, reminder_days_before, reminder_days_after,
	email_notifications, push_notifications, max_reminders, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (document_type) DO UPDATE SET
	enabled = EXCLUDED.enabled,
	reminder_days_before = EXCLUDED.reminder_days_before,
	reminder_days_after = EXCLUDED.reminder_days_after,
	email_notifications = EXCLUDED.email_notifications,
	push_notifications = EXCLUDED.push_notifications,
	max_reminders = EXCLUDED.max_reminders,
	updated_at = EXCLUDED.updated_at
`,
		string(documentType), updated.Enabled, updated.ReminderDaysBefore, updated.ReminderDaysAfter,
		updated.EmailNotifications, updated.PushNotifications, updated.MaxReminders,
		time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("update settings: %w", err)
	}
	return &updated, nil
}

func scanSettings(row rowScanner) (domain.ReminderSettings, error) {
	var settings domain.ReminderSettings
	var docType string

	err := row.Scan(
		&docType,
		&settings.Enabled,
		&settings.ReminderDaysBefore,
		&settings.ReminderDaysAfter,
		&settings.EmailNotifications,
		&settings.PushNotifications,
		&settings.MaxReminders,
	)
	if err != nil {
		return domain.ReminderSettings{}, err
	}
	settings.DocumentType = domain.DocumentType(docType)
	return settings, nil
}
