package usecase

import (
	"math"
	"time"

	"github.com/tallyhq/docwatch/internal/core/domain"
)

// ClassifierConfig holds the tunable bands of the pattern classifier. Zero
// fields fall back to the defaults.
type ClassifierConfig struct {
	MonthlyToleranceDays    float64
	QuarterlyToleranceDays  float64
	HalfYearlyToleranceDays float64
	YearlyToleranceDays     float64

	// CV below StableCVBelow is stable, at or above VolatileCVFrom is
	// volatile, anything between is changing.
	StableCVBelow  float64
	VolatileCVFrom float64
}

func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		MonthlyToleranceDays:    7,
		QuarterlyToleranceDays:  14,
		HalfYearlyToleranceDays: 21,
		YearlyToleranceDays:     30,
		StableCVBelow:           0.15,
		VolatileCVFrom:          0.40,
	}
}

func (c ClassifierConfig) normalize() ClassifierConfig {
	def := DefaultClassifierConfig()
	if c.MonthlyToleranceDays <= 0 {
		c.MonthlyToleranceDays = def.MonthlyToleranceDays
	}
	if c.QuarterlyToleranceDays <= 0 {
		c.QuarterlyToleranceDays = def.QuarterlyToleranceDays
	}
	if c.HalfYearlyToleranceDays <= 0 {
		c.HalfYearlyToleranceDays = def.HalfYearlyToleranceDays
	}
	if c.YearlyToleranceDays <= 0 {
		c.YearlyToleranceDays = def.YearlyToleranceDays
	}
	if c.StableCVBelow <= 0 {
		c.StableCVBelow = def.StableCVBelow
	}
	if c.VolatileCVFrom <= c.StableCVBelow {
		c.VolatileCVFrom = def.VolatileCVFrom
	}
	return c
}

type canonicalPeriod struct {
	frequency domain.Frequency
	days      float64
	tolerance float64
}

// PatternClassifier maps interval statistics to a DocumentPattern.
type PatternClassifier struct {
	cfg ClassifierConfig
}

func NewPatternClassifier(cfg ClassifierConfig) *PatternClassifier {
	return &PatternClassifier{cfg: cfg.normalize()}
}

// Classify builds the pattern for one source from its ascending upload dates.
// previous is the currently stored pattern for the same key, nil for a new
// source; detected frequency/stability shifts relative to it are appended to
// PatternChanges.
func (c *PatternClassifier) Classify(
	documentType domain.DocumentType,
	source string,
	dates []time.Time,
	previous *domain.DocumentPattern,
	now time.Time,
) domain.DocumentPattern {
	stats := ComputeIntervalStatistics(dates)

	pattern := domain.DocumentPattern{
		DocumentType:    documentType,
		Source:          source,
		Statistics:      stats,
		UploadsAnalyzed: stats.Count,
		UpdatedAt:       now,
	}
	if len(dates) > 0 {
		pattern.LastUploadDate = truncateToDay(dates[len(dates)-1])
	}

	pattern.Frequency = c.classifyFrequency(stats)
	pattern.Stability = c.classifyStability(stats.CoefficientOfVariation)
	pattern.Confidence = classifyConfidence(stats.Count, pattern.Stability)

	if pattern.Frequency != domain.FrequencyUnknown {
		next := pattern.LastUploadDate.AddDate(0, 0, int(math.Round(stats.AverageIntervalDays)))
		pattern.NextExpectedDate = &next
	}

	if previous != nil {
		pattern.ID = previous.ID
		pattern.PatternChanges = append(pattern.PatternChanges, previous.PatternChanges...)
		if previous.Frequency != pattern.Frequency {
			pattern.PatternChanges = append(pattern.PatternChanges, domain.PatternChange{
				DetectedAt: now,
				Field:      "frequency",
				From:       string(previous.Frequency),
				To:         string(pattern.Frequency),
			})
		}
		if previous.Stability != pattern.Stability {
			pattern.PatternChanges = append(pattern.PatternChanges, domain.PatternChange{
				DetectedAt: now,
				Field:      "stability",
				From:       string(previous.Stability),
				To:         string(pattern.Stability),
			})
		}
	}

	return pattern
}

func (c *PatternClassifier) classifyFrequency(stats domain.IntervalStatistics) domain.Frequency {
	if stats.Count < 2 {
		return domain.FrequencyUnknown
	}

	periods := []canonicalPeriod{
		{domain.FrequencyMonthly, 30, c.cfg.MonthlyToleranceDays},
		{domain.FrequencyQuarterly, 90, c.cfg.QuarterlyToleranceDays},
		{domain.FrequencyHalfYearly, 182, c.cfg.HalfYearlyToleranceDays},
		{domain.FrequencyYearly, 365, c.cfg.YearlyToleranceDays},
	}

	best := domain.FrequencyIrregular
	bestDistance := math.MaxFloat64
	for _, p := range periods {
		distance := math.Abs(stats.AverageIntervalDays - p.days)
		if distance <= p.tolerance && distance < bestDistance {
			best = p.frequency
			bestDistance = distance
		}
	}
	return best
}

func (c *PatternClassifier) classifyStability(cv float64) domain.Stability {
	switch {
	case cv < c.cfg.StableCVBelow:
		return domain.StabilityStable
	case cv < c.cfg.VolatileCVFrom:
		return domain.StabilityChanging
	default:
		return domain.StabilityVolatile
	}
}

// classifyConfidence is a strict precedence chain, first match wins.
func classifyConfidence(uploads int, stability domain.Stability) domain.Confidence {
	switch {
	case uploads >= 4 && stability == domain.StabilityStable:
		return domain.ConfidenceHigh
	case uploads >= 3 && stability != domain.StabilityVolatile:
		return domain.ConfidenceMedium
	case uploads >= 2:
		return domain.ConfidenceLow
	default:
		return domain.ConfidenceUncertain
	}
}
