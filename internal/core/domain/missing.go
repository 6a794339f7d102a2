package domain

import "time"

type MissingDocumentStatus string

const (
	MissingStatusPending   MissingDocumentStatus = "pending"
	MissingStatusReminded  MissingDocumentStatus = "reminded"
	MissingStatusUploaded  MissingDocumentStatus = "uploaded"
	MissingStatusDismissed MissingDocumentStatus = "dismissed"
)

// Terminal reports whether the status ends the record's lifecycle. Terminal
// records are excluded from reminder generation.
func (s MissingDocumentStatus) Terminal() bool {
	return s == MissingStatusUploaded || s == MissingStatusDismissed
}

// MissingDocument is one pattern currently believed overdue (IsMissing true)
// or imminently due (IsMissing false). Invariants:
// IsMissing == today after GracePeriodEnd, DaysOverdue == max(0, today - GracePeriodEnd).
type MissingDocument struct {
	ID                string                `json:"id"`
	PatternID         string                `json:"pattern_id"`
	DocumentType      DocumentType          `json:"document_type"`
	Source            string                `json:"source"`
	ExpectedDate      time.Time             `json:"expected_date"`
	GracePeriodEnd    time.Time             `json:"grace_period_end"`
	DaysOverdue       int                   `json:"days_overdue"`
	IsMissing         bool                  `json:"is_missing"`
	Confidence        Confidence            `json:"confidence"`
	HistoricalUploads int                   `json:"historical_uploads"`
	LastUploadDate    time.Time             `json:"last_upload_date"`
	Status            MissingDocumentStatus `json:"status"`
	DetectedAt        time.Time             `json:"detected_at"`
}
