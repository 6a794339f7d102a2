package usecase

import (
	"time"

	"github.com/tallyhq/docwatch/internal/core/domain"
)

// ScheduleTable maps document types to their static reminder send plan.
// Unknown types fall back to a non-empty default schedule.
type ScheduleTable struct {
	schedules map[domain.DocumentType]domain.ReminderSchedule
	fallback  domain.ReminderSchedule
}

// DefaultScheduleTable returns the built-in plans: short cycle for bank
// statements, long cycle for annual documents like PAYG summaries.
func DefaultScheduleTable() *ScheduleTable {
	return &ScheduleTable{
		schedules: map[domain.DocumentType]domain.ReminderSchedule{
			domain.DocTypeBankStatement: {
				BeforeDue:    []int{3, 1},
				AfterDue:     []int{3, 7, 14},
				MaxReminders: 4,
			},
			domain.DocTypeDividendStatement: {
				BeforeDue:    []int{5, 2},
				AfterDue:     []int{5, 10, 21},
				MaxReminders: 5,
			},
			domain.DocTypePAYGSummary: {
				BeforeDue:    []int{14, 7, 3},
				AfterDue:     []int{21, 35, 56},
				MaxReminders: 6,
			},
			domain.DocTypeHealthStatement: {
				BeforeDue:    []int{14, 7},
				AfterDue:     []int{14, 28, 42},
				MaxReminders: 5,
			},
		},
		fallback: domain.ReminderSchedule{
			BeforeDue:    []int{7, 3},
			AfterDue:     []int{7, 14, 30},
			MaxReminders: 5,
		},
	}
}

// WithOverrides returns a table where the given per-type schedules replace
// the built-in ones. Overrides with an empty send plan are ignored.
func (t *ScheduleTable) WithOverrides(overrides map[domain.DocumentType]domain.ReminderSchedule) *ScheduleTable {
	if len(overrides) == 0 {
		return t
	}
	merged := make(map[domain.DocumentType]domain.ReminderSchedule, len(t.schedules)+len(overrides))
	for dt, s := range t.schedules {
		merged[dt] = s
	}
	for dt, s := range overrides {
		if len(s.BeforeDue) == 0 && len(s.AfterDue) == 0 {
			continue
		}
		if s.MaxReminders <= 0 {
			s.MaxReminders = t.fallback.MaxReminders
		}
		merged[dt] = s
	}
	return &ScheduleTable{schedules: merged, fallback: t.fallback}
}

// Schedule returns the send plan for a document type.
func (t *ScheduleTable) Schedule(documentType domain.DocumentType) domain.ReminderSchedule {
	if s, ok := t.schedules[documentType]; ok {
		return s
	}
	return t.fallback
}

// NextReminderDate computes the next eligible send time for a missing
// document given how many reminders were already sent. It returns nil once
// the type's cap is reached; that is a terminal state, not an error. The
// result is monotonic in remindersSent: successive calls return
// later-or-equal dates until nil.
func (t *ScheduleTable) NextReminderDate(missing domain.MissingDocument, remindersSent int) *time.Time {
	schedule := t.Schedule(missing.DocumentType)
	if remindersSent >= schedule.MaxReminders {
		return nil
	}

	var next time.Time
	if missing.IsMissing {
		offset := scheduleEntry(schedule.AfterDue, remindersSent)
		next = missing.ExpectedDate.AddDate(0, 0, offset)
	} else {
		offset := scheduleEntry(schedule.BeforeDue, remindersSent)
		next = missing.ExpectedDate.AddDate(0, 0, -offset)
	}
	return &next
}

// scheduleEntry indexes the plan by reminders already sent, clamping to the
// last entry when the count outruns the plan but is still under the cap.
func scheduleEntry(entries []int, sent int) int {
	if len(entries) == 0 {
		return 1
	}
	if sent >= len(entries) {
		sent = len(entries) - 1
	}
	offset := entries[sent]
	if offset < 1 {
		offset = 1
	}
	return offset
}
