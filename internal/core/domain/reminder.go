package domain

import "time"

type ReminderType string

const (
	ReminderUpcoming    ReminderType = "upcoming"
	ReminderOverdue     ReminderType = "overdue"
	ReminderFollowUp    ReminderType = "follow_up"
	ReminderFinalNotice ReminderType = "final_notice"
)

type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// Rank orders urgencies for the prioritized dispatch stream; higher is more
// urgent.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyCritical:
		return 3
	case UrgencyHigh:
		return 2
	case UrgencyMedium:
		return 1
	default:
		return 0
	}
}

type ReminderAction string

const (
	ActionUpload         ReminderAction = "upload"
	ActionDismiss        ReminderAction = "dismiss"
	ActionSnooze         ReminderAction = "snooze"
	ActionContactSupport ReminderAction = "contact_support"
)

type Channel string

const (
	ChannelPush  Channel = "push"
	ChannelEmail Channel = "email"
)

// ReminderSettings is the per-document-type reminder policy.
type ReminderSettings struct {
	DocumentType       DocumentType `json:"document_type"`
	Enabled            bool         `json:"enabled"`
	ReminderDaysBefore int          `json:"reminder_days_before"`
	ReminderDaysAfter  int          `json:"reminder_days_after"`
	EmailNotifications bool         `json:"email_notifications"`
	PushNotifications  bool         `json:"push_notifications"`
	MaxReminders       int          `json:"max_reminders"`
}

// DefaultReminderSettings is the safe fallback when no settings row exists
// for a document type: enabled, push only, conservative cap.
func DefaultReminderSettings(documentType DocumentType) ReminderSettings {
	return ReminderSettings{
		DocumentType:       documentType,
		Enabled:            true,
		ReminderDaysBefore: 3,
		ReminderDaysAfter:  3,
		EmailNotifications: false,
		PushNotifications:  true,
		MaxReminders:       3,
	}
}

// ReminderSettingsPatch is a partial update; nil fields keep the stored value.
type ReminderSettingsPatch struct {
	Enabled            *bool `json:"enabled,omitempty"`
	ReminderDaysBefore *int  `json:"reminder_days_before,omitempty"`
	ReminderDaysAfter  *int  `json:"reminder_days_after,omitempty"`
	EmailNotifications *bool `json:"email_notifications,omitempty"`
	PushNotifications  *bool `json:"push_notifications,omitempty"`
	MaxReminders       *int  `json:"max_reminders,omitempty"`
}

// Apply returns a copy of s with the non-nil patch fields applied.
func (p ReminderSettingsPatch) Apply(s ReminderSettings) ReminderSettings {
	if p.Enabled != nil {
		s.Enabled = *p.Enabled
	}
	if p.ReminderDaysBefore != nil {
		s.ReminderDaysBefore = *p.ReminderDaysBefore
	}
	if p.ReminderDaysAfter != nil {
		s.ReminderDaysAfter = *p.ReminderDaysAfter
	}
	if p.EmailNotifications != nil {
		s.EmailNotifications = *p.EmailNotifications
	}
	if p.PushNotifications != nil {
		s.PushNotifications = *p.PushNotifications
	}
	if p.MaxReminders != nil {
		s.MaxReminders = *p.MaxReminders
	}
	return s
}

// ReminderSchedule is the static per-type send plan. BeforeDue entries count
// days before the expected date (decreasing), AfterDue days past it
// (increasing); both are indexed by the number of reminders already sent.
type ReminderSchedule struct {
	BeforeDue    []int `json:"before_due" yaml:"before_due"`
	AfterDue     []int `json:"after_due" yaml:"after_due"`
	MaxReminders int   `json:"max_reminders" yaml:"max_reminders"`
}

type ReminderMessage struct {
	Title   string `json:"title"`
	Body    string `json:"body"`
	Details string `json:"details,omitempty"`
}

// DocumentReminder is the ephemeral output of reminder generation; it is
// handed to the delivery layer, never persisted by the engine.
type DocumentReminder struct {
	ID                string           `json:"id"`
	MissingDocumentID string           `json:"missing_document_id"`
	DocumentType      DocumentType     `json:"document_type"`
	Source            string           `json:"source"`
	Type              ReminderType     `json:"reminder_type"`
	Urgency           Urgency          `json:"urgency"`
	Message           ReminderMessage  `json:"message"`
	Actions           []ReminderAction `json:"actions"`
	ScheduledFor      time.Time        `json:"scheduled_for"`
}

// ReminderGenerationResult aggregates one GenerateReminders batch.
type ReminderGenerationResult struct {
	Reminders      []DocumentReminder   `json:"reminders"`
	TotalPending   int                  `json:"total_pending"`
	TotalReminders int                  `json:"total_reminders"`
	ByType         map[ReminderType]int `json:"by_type"`
	ByUrgency      map[Urgency]int      `json:"by_urgency"`
	Errors         []string             `json:"errors,omitempty"`
}

// DispatchResult counts the outcome of one ProcessDueReminders batch.
type DispatchResult struct {
	Processed int `json:"processed"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
}
