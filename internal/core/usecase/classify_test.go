package usecase

import (
	"testing"
	"time"

	"github.com/tallyhq/docwatch/internal/core/domain"
)

func monthlyUploads(count int) []time.Time {
	dates := make([]time.Time, 0, count)
	for i := 0; i < count; i++ {
		dates = append(dates, day(2025, time.Month(1+i), 15))
	}
	return dates
}

func TestClassifySixMonthlyUploads(t *testing.T) {
	classifier := NewPatternClassifier(ClassifierConfig{})
	now := day(2025, time.June, 20)

	pattern := classifier.Classify(domain.DocTypeBankStatement, "Commonwealth Bank", monthlyUploads(6), nil, now)

	if pattern.Frequency != domain.FrequencyMonthly {
		t.Fatalf("expected monthly, got %s", pattern.Frequency)
	}
	if pattern.Stability != domain.StabilityStable {
		t.Fatalf("expected stable, got %s", pattern.Stability)
	}
	if pattern.Confidence != domain.ConfidenceHigh {
		t.Fatalf("expected high confidence, got %s", pattern.Confidence)
	}
	if pattern.UploadsAnalyzed != 6 {
		t.Fatalf("expected 6 uploads analyzed, got %d", pattern.UploadsAnalyzed)
	}
	if pattern.NextExpectedDate == nil {
		t.Fatalf("expected a predicted date")
	}
	next := *pattern.NextExpectedDate
	if next.Month() != time.July || next.Day() < 14 || next.Day() > 16 {
		t.Fatalf("expected prediction near July 15th, got %s", next.Format("2006-01-02"))
	}
}

func TestClassifySingleUploadIsUnknownWithoutPrediction(t *testing.T) {
	classifier := NewPatternClassifier(ClassifierConfig{})

	pattern := classifier.Classify(domain.DocTypeDonationReceipt, "Red Cross",
		[]time.Time{day(2025, time.May, 2)}, nil, day(2025, time.June, 1))

	if pattern.Frequency != domain.FrequencyUnknown {
		t.Fatalf("expected unknown frequency, got %s", pattern.Frequency)
	}
	if pattern.Confidence != domain.ConfidenceUncertain {
		t.Fatalf("expected uncertain confidence, got %s", pattern.Confidence)
	}
	if pattern.NextExpectedDate != nil {
		t.Fatalf("expected no prediction for a single upload")
	}
}

func TestClassifyIrregularIntervalsOutsideAllBands(t *testing.T) {
	classifier := NewPatternClassifier(ClassifierConfig{})
	dates := []time.Time{
		day(2025, time.January, 1),
		day(2025, time.February, 20), // 50
		day(2025, time.April, 15),    // 54
	}

	pattern := classifier.Classify(domain.DocTypeOther, "Misc", dates, nil, day(2025, time.May, 1))
	if pattern.Frequency != domain.FrequencyIrregular {
		t.Fatalf("expected irregular, got %s", pattern.Frequency)
	}
	if pattern.NextExpectedDate == nil {
		t.Fatalf("irregular patterns still predict from the average interval")
	}
}

func TestConfidencePrecedenceChain(t *testing.T) {
	cases := []struct {
		uploads   int
		stability domain.Stability
		want      domain.Confidence
	}{
		{4, domain.StabilityStable, domain.ConfidenceHigh},
		{6, domain.StabilityStable, domain.ConfidenceHigh},
		{4, domain.StabilityChanging, domain.ConfidenceMedium},
		{3, domain.StabilityStable, domain.ConfidenceMedium},
		{3, domain.StabilityVolatile, domain.ConfidenceLow},
		{2, domain.StabilityStable, domain.ConfidenceLow},
		{1, domain.StabilityStable, domain.ConfidenceUncertain},
		{0, domain.StabilityVolatile, domain.ConfidenceUncertain},
	}
	for _, tc := range cases {
		got := classifyConfidence(tc.uploads, tc.stability)
		if got != tc.want {
			t.Fatalf("uploads=%d stability=%s: expected %s, got %s", tc.uploads, tc.stability, tc.want, got)
		}
		if got == domain.ConfidenceHigh && (tc.uploads < 4 || tc.stability != domain.StabilityStable) {
			t.Fatalf("high confidence requires >=4 stable uploads")
		}
	}
}

func TestClassifyAppendsPatternChangeOnFrequencyShift(t *testing.T) {
	classifier := NewPatternClassifier(ClassifierConfig{})
	now := day(2025, time.December, 1)

	previous := &domain.DocumentPattern{
		ID:           "pat-1",
		DocumentType: domain.DocTypeDividendStatement,
		Source:       "VAS",
		Frequency:    domain.FrequencyMonthly,
		Stability:    domain.StabilityStable,
	}

	quarterly := []time.Time{
		day(2025, time.January, 10),
		day(2025, time.April, 10),
		day(2025, time.July, 10),
		day(2025, time.October, 10),
	}

	pattern := classifier.Classify(domain.DocTypeDividendStatement, "VAS", quarterly, previous, now)
	if pattern.ID != "pat-1" {
		t.Fatalf("expected pattern id carried over, got %q", pattern.ID)
	}
	if pattern.Frequency != domain.FrequencyQuarterly {
		t.Fatalf("expected quarterly, got %s", pattern.Frequency)
	}
	if len(pattern.PatternChanges) != 1 {
		t.Fatalf("expected 1 pattern change, got %d", len(pattern.PatternChanges))
	}
	change := pattern.PatternChanges[0]
	if change.Field != "frequency" || change.From != "monthly" || change.To != "quarterly" {
		t.Fatalf("unexpected change: %+v", change)
	}
}
