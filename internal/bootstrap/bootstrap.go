package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tallyhq/docwatch/internal/config"
	"github.com/tallyhq/docwatch/internal/core/ports"
	"github.com/tallyhq/docwatch/internal/core/usecase"
	"github.com/tallyhq/docwatch/internal/infrastructure/queue/nats"
	"github.com/tallyhq/docwatch/internal/infrastructure/repository/postgres"
	"github.com/tallyhq/docwatch/internal/infrastructure/resilience"
)

type App struct {
	Config config.Config

	DB         *sql.DB
	Dispatcher *nats.Dispatcher

	Patterns  ports.PatternRepository
	Missing   ports.MissingDocumentRepository
	Settings  ports.ReminderSettingsRepository
	Uploads   *postgres.UploadHistoryRepository
	Deadlines *postgres.TaxDeadlineRepository

	Generator *usecase.GenerateRemindersUseCase
	Pipeline  *usecase.AnalysisPipeline

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	patterns := postgres.NewPatternRepository(db)
	missing := postgres.NewMissingDocumentRepository(db)
	settings := postgres.NewReminderSettingsRepository(db)
	runs := postgres.NewAnalysisRunRepository(db)
	uploads := postgres.NewUploadHistoryRepository(db)
	deadlines := postgres.NewTaxDeadlineRepository(db)

	overrides, err := config.LoadScheduleOverrides(cfg.SchedulesFile)
	if err != nil {
		return nil, fmt.Errorf("load schedule overrides: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultPolicy())
	dispatcher, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubjectPrefix, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init reminder dispatcher: %w", err)
	}

	classifier := usecase.NewPatternClassifier(usecase.ClassifierConfig{
		MonthlyToleranceDays:    cfg.MonthlyToleranceDays,
		QuarterlyToleranceDays:  cfg.QuarterlyToleranceDays,
		HalfYearlyToleranceDays: cfg.HalfYearlyToleranceDays,
		YearlyToleranceDays:     cfg.YearlyToleranceDays,
		StableCVBelow:           cfg.StableCVBelow,
		VolatileCVFrom:          cfg.VolatileCVFrom,
	})
	analyzer := usecase.NewAnalyzePatternsUseCase(patterns, classifier)
	detector := usecase.NewMissingDocumentDetector(usecase.DetectorConfig{
		DefaultGraceDays: cfg.DefaultGraceDays,
		YearlyGraceDays:  cfg.YearlyGraceDays,
		GraceOverrides:   overrides.GracePeriods,
		LookAheadDays:    cfg.LookAheadDays,
	})

	table := usecase.DefaultScheduleTable().WithOverrides(overrides.Schedules)
	generator := usecase.NewGenerateRemindersUseCase(settings, runs, table, usecase.ReminderConfig{
		OverdueThresholdDays:  cfg.OverdueThresholdDays,
		FollowUpThresholdDays: cfg.FollowUpThresholdDays,
	})
	processor := usecase.NewProcessRemindersUseCase(dispatcher, settings, runs, missing,
		cfg.DispatchPerSecond, cfg.DispatchBurst)

	pipeline := usecase.NewAnalysisPipeline(uploads, analyzer, detector, missing, generator, processor,
		usecase.NewCalendarBridge(deadlines), runs)

	return &App{
		Config: cfg,

		DB:         db,
		Dispatcher: dispatcher,

		Patterns:  patterns,
		Missing:   missing,
		Settings:  settings,
		Uploads:   uploads,
		Deadlines: deadlines,

		Generator: generator,
		Pipeline:  pipeline,

		closeFn: func() {
			dispatcher.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
