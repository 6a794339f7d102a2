package domain

import "time"

type DeadlineType string

const DeadlineTypeCustom DeadlineType = "CUSTOM"

// DeadlineMetadata links a calendar entry back to the missing-document record
// that produced it.
type DeadlineMetadata struct {
	IsUploadReminder  bool         `json:"is_upload_reminder"`
	MissingDocumentID string       `json:"missing_document_id"`
	Source            string       `json:"source"`
	DocumentType      DocumentType `json:"document_type"`
	PatternID         string       `json:"pattern_id"`
}

// TaxDeadline is a synthetic calendar entry created for a sufficiently
// confident missing document.
type TaxDeadline struct {
	ID       string           `json:"id"`
	Type     DeadlineType     `json:"type"`
	Title    string           `json:"title"`
	DueDate  time.Time        `json:"due_date"`
	Metadata DeadlineMetadata `json:"metadata"`
}
