package usecase

import (
	"math"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeIntervalStatisticsMonthly(t *testing.T) {
	dates := []time.Time{
		day(2025, time.January, 15),
		day(2025, time.February, 15),
		day(2025, time.March, 15),
		day(2025, time.April, 15),
	}

	stats := ComputeIntervalStatistics(dates)
	if stats.Count != 4 {
		t.Fatalf("expected count 4, got %d", stats.Count)
	}
	if stats.AverageIntervalDays < 28 || stats.AverageIntervalDays > 31 {
		t.Fatalf("expected roughly monthly average, got %f", stats.AverageIntervalDays)
	}
	if stats.CoefficientOfVariation > 0.05 {
		t.Fatalf("expected low CV for regular uploads, got %f", stats.CoefficientOfVariation)
	}
}

func TestComputeIntervalStatisticsPopulationStdDev(t *testing.T) {
	dates := []time.Time{
		day(2025, time.January, 1),
		day(2025, time.January, 11), // 10 days
		day(2025, time.January, 31), // 20 days
	}

	stats := ComputeIntervalStatistics(dates)
	if stats.AverageIntervalDays != 15 {
		t.Fatalf("expected mean 15, got %f", stats.AverageIntervalDays)
	}
	// Population stddev of {10, 20} is 5.
	if math.Abs(stats.StdDevIntervalDays-5) > 1e-9 {
		t.Fatalf("expected stddev 5, got %f", stats.StdDevIntervalDays)
	}
	if math.Abs(stats.CoefficientOfVariation-5.0/15.0) > 1e-9 {
		t.Fatalf("expected CV 1/3, got %f", stats.CoefficientOfVariation)
	}
}

func TestComputeIntervalStatisticsSingleUpload(t *testing.T) {
	stats := ComputeIntervalStatistics([]time.Time{day(2025, time.June, 1)})
	if stats.Count != 1 {
		t.Fatalf("expected count 1, got %d", stats.Count)
	}
	if stats.AverageIntervalDays != 0 || stats.StdDevIntervalDays != 0 || stats.CoefficientOfVariation != 0 {
		t.Fatalf("expected zero interval fields for single upload, got %+v", stats)
	}
}

func TestDaysBetweenIgnoresTimeOfDay(t *testing.T) {
	a := time.Date(2025, time.March, 1, 23, 50, 0, 0, time.UTC)
	b := time.Date(2025, time.March, 3, 0, 10, 0, 0, time.UTC)
	if got := daysBetween(a, b); got != 2 {
		t.Fatalf("expected 2 days, got %d", got)
	}
	if got := daysBetween(b, a); got != -2 {
		t.Fatalf("expected -2 days, got %d", got)
	}
}
