package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tallyhq/docwatch/internal/core/domain"
)

// EngineMetrics covers the worker side: scheduled analysis passes, detected
// patterns and missing documents, and published reminders.
type EngineMetrics struct {
	registry *prometheus.Registry

	runsTotal          *prometheus.CounterVec
	runDuration        *prometheus.HistogramVec
	patternsDetected   *prometheus.GaugeVec
	missingDetected    *prometheus.GaugeVec
	remindersPublished *prometheus.CounterVec
}

func NewEngineMetrics(service string) *EngineMetrics {
	registry := prometheus.NewRegistry()

	runsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docwatch",
			Subsystem: "engine",
			Name:      "analysis_runs_total",
			Help:      "Total completed analysis passes by status.",
		},
		[]string{"service", "status"},
	)
	runDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docwatch",
			Subsystem: "engine",
			Name:      "analysis_run_duration_seconds",
			Help:      "Analysis pass duration in seconds.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"service"},
	)
	patternsDetected := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "docwatch",
			Subsystem: "engine",
			Name:      "patterns_detected",
			Help:      "Patterns detected in the latest pass, by confidence.",
		},
		[]string{"service", "confidence"},
	)
	missingDetected := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "docwatch",
			Subsystem: "engine",
			Name:      "missing_documents_open",
			Help:      "Open missing-document records after the latest pass, by state.",
		},
		[]string{"service", "state"},
	)
	remindersPublished := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docwatch",
			Subsystem: "engine",
			Name:      "reminders_published_total",
			Help:      "Total reminders handed to the delivery broker, by channel and status.",
		},
		[]string{"service", "channel", "status"},
	)

	registry.MustRegister(runsTotal, runDuration, patternsDetected, missingDetected, remindersPublished)

	return &EngineMetrics{
		registry:           registry,
		runsTotal:          runsTotal,
		runDuration:        runDuration,
		patternsDetected:   patternsDetected,
		missingDetected:    missingDetected,
		remindersPublished: remindersPublished,
	}
}

func (m *EngineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRun records one finished analysis pass.
func (m *EngineMetrics) ObserveRun(service string, run *domain.AnalysisRun, err error) {
	status := "success"
	switch {
	case err != nil:
		status = "error"
	case run != nil && len(run.Errors) > 0:
		status = "partial"
	}
	m.runsTotal.WithLabelValues(service, status).Inc()
	if run != nil {
		m.runDuration.WithLabelValues(service).Observe(float64(run.DurationMs) / 1000.0)
	}
}

// ObservePatterns snapshots the confidence distribution of one pass.
func (m *EngineMetrics) ObservePatterns(service string, patterns []domain.DocumentPattern) {
	counts := map[domain.Confidence]int{
		domain.ConfidenceHigh:      0,
		domain.ConfidenceMedium:    0,
		domain.ConfidenceLow:       0,
		domain.ConfidenceUncertain: 0,
	}
	for _, p := range patterns {
		counts[p.Confidence]++
	}
	for confidence, count := range counts {
		m.patternsDetected.WithLabelValues(service, string(confidence)).Set(float64(count))
	}
}

// ObserveMissing snapshots the open records by state.
func (m *EngineMetrics) ObserveMissing(service string, missing []domain.MissingDocument) {
	overdue, upcoming := 0, 0
	for _, item := range missing {
		if item.IsMissing {
			overdue++
		} else {
			upcoming++
		}
	}
	m.missingDetected.WithLabelValues(service, "overdue").Set(float64(overdue))
	m.missingDetected.WithLabelValues(service, "upcoming").Set(float64(upcoming))
}

func (m *EngineMetrics) ObserveReminderPublished(service string, channel domain.Channel, err error) {
	status := "sent"
	if err != nil {
		status = "failed"
	}
	m.remindersPublished.WithLabelValues(service, string(channel), status).Inc()
}
