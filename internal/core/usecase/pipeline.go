package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tallyhq/docwatch/internal/core/domain"
	"github.com/tallyhq/docwatch/internal/core/ports"
)

// AnalysisPipeline runs the full pass the periodic scheduler invokes:
// uploads -> pattern analysis -> missing detection -> reminder generation ->
// dispatch, plus calendar registration and run bookkeeping. Runs for the
// same key must not overlap; the worker serializes whole passes.
type AnalysisPipeline struct {
	uploads   ports.UploadHistorySource
	analyzer  ports.PatternAnalyzer
	detector  ports.MissingDetector
	missing   ports.MissingDocumentRepository
	generator ports.ReminderGenerator
	processor ports.ReminderProcessor
	calendar  *CalendarBridge
	runs      ports.AnalysisRunRecorder
	now       func() time.Time
}

func NewAnalysisPipeline(
	uploads ports.UploadHistorySource,
	analyzer ports.PatternAnalyzer,
	detector ports.MissingDetector,
	missing ports.MissingDocumentRepository,
	generator ports.ReminderGenerator,
	processor ports.ReminderProcessor,
	calendar *CalendarBridge,
	runs ports.AnalysisRunRecorder,
) *AnalysisPipeline {
	return &AnalysisPipeline{
		uploads:   uploads,
		analyzer:  analyzer,
		detector:  detector,
		missing:   missing,
		generator: generator,
		processor: processor,
		calendar:  calendar,
		runs:      runs,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the wall clock, for tests.
func (p *AnalysisPipeline) WithClock(now func() time.Time) *AnalysisPipeline {
	p.now = now
	return p
}

// Run executes one full analysis pass and records its metadata. Partial
// failures accumulate in the run's Errors; only upload-history or
// run-recording failures abort.
func (p *AnalysisPipeline) Run(ctx context.Context) (*domain.AnalysisRun, error) {
	started := p.now()
	run := domain.AnalysisRun{
		ID:        uuid.NewString(),
		StartedAt: started,
	}

	uploads, err := p.uploads.ListUploadEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list upload events: %w", err)
	}

	analysis, err := p.analyzer.RunAnalysis(ctx, uploads)
	if err != nil {
		return nil, fmt.Errorf("run analysis: %w", err)
	}
	run.TotalSources = analysis.TotalSources
	run.PatternsDetected = analysis.PatternsDetected
	run.Errors = append(run.Errors, analysis.Errors...)

	p.resolveUploaded(ctx, uploads, &run)

	detected := p.detector.DetectMissing(analysis.Patterns, uploads)
	run.MissingDetected = len(detected)
	for i := range detected {
		if err := p.missing.SaveMissingDocument(ctx, &detected[i]); err != nil {
			run.Errors = append(run.Errors,
				fmt.Sprintf("%s/%s: save missing document: %v", detected[i].DocumentType, detected[i].Source, err))
		}
	}

	if p.calendar != nil {
		if _, err := p.calendar.RegisterDeadlines(ctx, detected); err != nil {
			run.Errors = append(run.Errors, fmt.Sprintf("register deadlines: %v", err))
		}
	}

	open, err := p.missing.ListMissingDocuments(ctx, false)
	if err != nil {
		run.Errors = append(run.Errors, fmt.Sprintf("list missing documents: %v", err))
	}

	generation, err := p.generator.GenerateReminders(ctx, open, ports.GenerateOptions{RespectSettings: true})
	if err != nil {
		run.Errors = append(run.Errors, fmt.Sprintf("generate reminders: %v", err))
	} else {
		run.Errors = append(run.Errors, generation.Errors...)
		due := dueReminders(generation.Reminders, p.now())
		dispatch, err := p.processor.ProcessDueReminders(ctx, due)
		if err != nil {
			run.Errors = append(run.Errors, fmt.Sprintf("process reminders: %v", err))
		} else if dispatch.Failed > 0 {
			slog.Warn("reminder_dispatch_partial",
				"processed", dispatch.Processed,
				"sent", dispatch.Sent,
				"failed", dispatch.Failed,
			)
		}
	}

	run.DurationMs = p.now().Sub(started).Milliseconds()
	if err := p.runs.RecordAnalysisRun(ctx, run); err != nil {
		return &run, fmt.Errorf("record analysis run: %w", err)
	}
	return &run, nil
}

// resolveUploaded marks open missing documents whose matching upload has
// arrived. The detector itself is stateless; this is the status-transition
// side of the contract.
func (p *AnalysisPipeline) resolveUploaded(ctx context.Context, uploads []domain.UploadEvent, run *domain.AnalysisRun) {
	open, err := p.missing.ListMissingDocuments(ctx, false)
	if err != nil {
		run.Errors = append(run.Errors, fmt.Sprintf("list missing documents: %v", err))
		return
	}
	for _, item := range open {
		if !uploadArrived(uploads, item) {
			continue
		}
		if err := p.missing.UpdateMissingDocumentStatus(ctx, item.ID, domain.MissingStatusUploaded); err != nil {
			run.Errors = append(run.Errors,
				fmt.Sprintf("%s/%s: mark uploaded: %v", item.DocumentType, item.Source, err))
		}
	}
}

func uploadArrived(uploads []domain.UploadEvent, item domain.MissingDocument) bool {
	for _, u := range uploads {
		if u.DocumentType != item.DocumentType || u.Source != item.Source {
			continue
		}
		if !truncateToDay(u.UploadDate).Before(truncateToDay(item.ExpectedDate)) {
			return true
		}
	}
	return false
}

// dueReminders keeps the reminders whose scheduled time has arrived.
func dueReminders(reminders []domain.DocumentReminder, now time.Time) []domain.DocumentReminder {
	out := make([]domain.DocumentReminder, 0, len(reminders))
	for _, r := range reminders {
		if !r.ScheduledFor.After(now) {
			out = append(out, r)
		}
	}
	return out
}
