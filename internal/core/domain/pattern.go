package domain

import "time"

type DocumentType string

const (
	DocTypeBankStatement     DocumentType = "bank_statement"
	DocTypeDividendStatement DocumentType = "dividend_statement"
	DocTypePAYGSummary       DocumentType = "payg_summary"
	DocTypeHealthStatement   DocumentType = "health_statement"
	DocTypeDonationReceipt   DocumentType = "donation_receipt"
	DocTypeOther             DocumentType = "other"
)

// Label returns the human-readable name used in reminder messages and
// calendar titles.
func (t DocumentType) Label() string {
	switch t {
	case DocTypeBankStatement:
		return "Bank Statement"
	case DocTypeDividendStatement:
		return "Dividend Statement"
	case DocTypePAYGSummary:
		return "PAYG Payment Summary"
	case DocTypeHealthStatement:
		return "Private Health Statement"
	case DocTypeDonationReceipt:
		return "Donation Receipt"
	default:
		return "Document"
	}
}

type Frequency string

const (
	FrequencyMonthly    Frequency = "monthly"
	FrequencyQuarterly  Frequency = "quarterly"
	FrequencyHalfYearly Frequency = "half_yearly"
	FrequencyYearly     Frequency = "yearly"
	FrequencyIrregular  Frequency = "irregular"
	FrequencyUnknown    Frequency = "unknown"
)

type Stability string

const (
	StabilityStable   Stability = "stable"
	StabilityChanging Stability = "changing"
	StabilityVolatile Stability = "volatile"
)

type Confidence string

const (
	ConfidenceHigh      Confidence = "high"
	ConfidenceMedium    Confidence = "medium"
	ConfidenceLow       Confidence = "low"
	ConfidenceUncertain Confidence = "uncertain"
)

// UploadEvent is the raw input: one historical upload of a document from a
// given source. The engine never stores these beyond the analysis window.
type UploadEvent struct {
	DocumentType DocumentType `json:"document_type"`
	Source       string       `json:"source"`
	UploadDate   time.Time    `json:"upload_date"`
}

// IntervalStatistics summarizes the day gaps between consecutive uploads.
// Count is the number of uploads, not intervals; with fewer than two uploads
// the interval fields are zero and callers must treat frequency as unknown.
type IntervalStatistics struct {
	Count                  int     `json:"count"`
	AverageIntervalDays    float64 `json:"average_interval_days"`
	StdDevIntervalDays     float64 `json:"stddev_interval_days"`
	CoefficientOfVariation float64 `json:"coefficient_of_variation"`
}

// PatternChange records a detected shift in a stored pattern, e.g. frequency
// moving from monthly to quarterly.
type PatternChange struct {
	DetectedAt time.Time `json:"detected_at"`
	Field      string    `json:"field"`
	From       string    `json:"from"`
	To         string    `json:"to"`
}

// DocumentPattern is the inferred temporal pattern for one
// (documentType, source) pair. Patterns are recomputed wholesale on each
// analysis run; a new pattern replaces the stored one, it is never merged.
type DocumentPattern struct {
	ID               string             `json:"id"`
	DocumentType     DocumentType       `json:"document_type"`
	Source           string             `json:"source"`
	Frequency        Frequency          `json:"frequency"`
	Stability        Stability          `json:"pattern_stability"`
	Confidence       Confidence         `json:"confidence"`
	Statistics       IntervalStatistics `json:"statistics"`
	UploadsAnalyzed  int                `json:"uploads_analyzed"`
	LastUploadDate   time.Time          `json:"last_upload_date"`
	NextExpectedDate *time.Time         `json:"next_expected_date,omitempty"`
	PatternChanges   []PatternChange    `json:"pattern_changes,omitempty"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// AnalysisResult is the outcome of one RunAnalysis call. A failing source
// contributes an entry to Errors and never aborts the batch.
type AnalysisResult struct {
	Patterns         []DocumentPattern `json:"patterns"`
	TotalSources     int               `json:"total_sources"`
	PatternsDetected int               `json:"patterns_detected"`
	Errors           []string          `json:"errors,omitempty"`
}

// AnalysisRun is the persisted metadata of one scheduled analysis pass.
type AnalysisRun struct {
	ID               string    `json:"id"`
	StartedAt        time.Time `json:"started_at"`
	TotalSources     int       `json:"total_sources"`
	PatternsDetected int       `json:"patterns_detected"`
	MissingDetected  int       `json:"missing_detected"`
	DurationMs       int64     `json:"duration_ms"`
	Errors           []string  `json:"errors,omitempty"`
}
