package usecase

import (
	"math"
	"time"

	"github.com/tallyhq/docwatch/internal/core/domain"
)

const hoursPerDay = 24.0

// ComputeIntervalStatistics turns an ascending list of upload dates for one
// (documentType, source) pair into interval statistics. With fewer than two
// dates the interval fields stay zero and the caller must classify the
// frequency as unknown.
func ComputeIntervalStatistics(dates []time.Time) domain.IntervalStatistics {
	stats := domain.IntervalStatistics{Count: len(dates)}
	if len(dates) < 2 {
		return stats
	}

	deltas := make([]float64, 0, len(dates)-1)
	for i := 1; i < len(dates); i++ {
		deltas = append(deltas, dates[i].Sub(dates[i-1]).Hours()/hoursPerDay)
	}

	var sum float64
	for _, d := range deltas {
		sum += d
	}
	mean := sum / float64(len(deltas))

	var sqSum float64
	for _, d := range deltas {
		diff := d - mean
		sqSum += diff * diff
	}
	stddev := math.Sqrt(sqSum / float64(len(deltas)))

	stats.AverageIntervalDays = mean
	stats.StdDevIntervalDays = stddev
	if mean > 0 {
		stats.CoefficientOfVariation = stddev / mean
	}
	return stats
}

// truncateToDay drops the time-of-day component; all window comparisons in
// the engine operate on UTC calendar days.
func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the whole calendar days from a to b, negative when b
// precedes a.
func daysBetween(a, b time.Time) int {
	return int(truncateToDay(b).Sub(truncateToDay(a)).Hours() / hoursPerDay)
}
