package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tallyhq/docwatch/internal/bootstrap"
	"github.com/tallyhq/docwatch/internal/config"
	natsqueue "github.com/tallyhq/docwatch/internal/infrastructure/queue/nats"
	"github.com/tallyhq/docwatch/internal/observability/logging"
	"github.com/tallyhq/docwatch/internal/observability/metrics"
)

const service = "docwatch-worker"

func main() {
	cfg := config.Load()
	logger := logging.Setup(service, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	engineMetrics := metrics.NewEngineMetrics(service)

	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: engineMetrics.Handler(),
	}
	go func() {
		logger.Info("worker_metrics_listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("worker_metrics_server_error", "error", err)
		}
	}()

	runPass := func() {
		passCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
		defer cancel()

		run, err := app.Pipeline.Run(passCtx)
		engineMetrics.ObserveRun(service, run, err)
		if err != nil {
			logger.Error("analysis_pass_failed", "error", err)
			return
		}
		logger.Info("analysis_pass_completed",
			"run_id", run.ID,
			"total_sources", run.TotalSources,
			"patterns_detected", run.PatternsDetected,
			"missing_detected", run.MissingDetected,
			"duration_ms", run.DurationMs,
			"errors", len(run.Errors),
		)

		if patterns, err := app.Patterns.LoadPatterns(passCtx); err == nil {
			engineMetrics.ObservePatterns(service, patterns)
		}
		if open, err := app.Missing.ListMissingDocuments(passCtx, false); err == nil {
			engineMetrics.ObserveMissing(service, open)
		}
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.AnalysisCronSpec, runPass); err != nil {
		log.Fatalf("invalid analysis cron spec %q: %v", cfg.AnalysisCronSpec, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// One pass at startup so a freshly deployed worker does not wait a full
	// cron period for its first results.
	go runPass()

	logger.Info("worker_subscribed", "subject_prefix", cfg.NATSSubjectPrefix)
	err = app.Dispatcher.SubscribeReminders(ctx, func(handlerCtx context.Context, envelope natsqueue.ReminderEnvelope) error {
		engineMetrics.ObserveReminderPublished(service, envelope.Channel, nil)
		logger.Info("reminder_received",
			"reminder_id", envelope.Reminder.ID,
			"missing_document_id", envelope.Reminder.MissingDocumentID,
			"channel", envelope.Channel,
			"urgency", envelope.Reminder.Urgency,
			"title", envelope.Reminder.Message.Title,
		)
		return nil
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
