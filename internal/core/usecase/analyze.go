package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/tallyhq/docwatch/internal/core/domain"
	"github.com/tallyhq/docwatch/internal/core/ports"
)

// AnalyzePatternsUseCase recomputes the pattern of every (documentType,
// source) pair present in the upload batch and replaces the stored patterns.
type AnalyzePatternsUseCase struct {
	patterns   ports.PatternRepository
	classifier *PatternClassifier
	now        func() time.Time
}

func NewAnalyzePatternsUseCase(patterns ports.PatternRepository, classifier *PatternClassifier) *AnalyzePatternsUseCase {
	return &AnalyzePatternsUseCase{
		patterns:   patterns,
		classifier: classifier,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the wall clock, for tests.
func (uc *AnalyzePatternsUseCase) WithClock(now func() time.Time) *AnalyzePatternsUseCase {
	uc.now = now
	return uc
}

type sourceKey struct {
	documentType domain.DocumentType
	source       string
}

// RunAnalysis classifies each source independently; a failing source adds an
// entry to Errors and never aborts the batch.
func (uc *AnalyzePatternsUseCase) RunAnalysis(ctx context.Context, uploads []domain.UploadEvent) (*domain.AnalysisResult, error) {
	grouped := groupUploadsBySource(uploads)
	keys := sortedSourceKeys(grouped)

	stored, err := uc.loadStoredPatterns(ctx)
	if err != nil {
		return nil, fmt.Errorf("load stored patterns: %w", err)
	}

	now := uc.now()
	result := &domain.AnalysisResult{TotalSources: len(keys)}
	for _, key := range keys {
		pattern := uc.classifier.Classify(key.documentType, key.source, grouped[key], stored[key], now)
		if pattern.ID == "" {
			pattern.ID = uuid.NewString()
		}

		if err := uc.patterns.SavePattern(ctx, &pattern); err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s/%s: save pattern: %v", key.documentType, key.source, err))
			continue
		}

		result.Patterns = append(result.Patterns, pattern)
		if pattern.Frequency != domain.FrequencyUnknown {
			result.PatternsDetected++
		}
	}

	return result, nil
}

func (uc *AnalyzePatternsUseCase) loadStoredPatterns(ctx context.Context) (map[sourceKey]*domain.DocumentPattern, error) {
	patterns, err := uc.patterns.LoadPatterns(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[sourceKey]*domain.DocumentPattern, len(patterns))
	for i := range patterns {
		p := patterns[i]
		out[sourceKey{p.DocumentType, p.Source}] = &p
	}
	return out, nil
}

func groupUploadsBySource(uploads []domain.UploadEvent) map[sourceKey][]time.Time {
	grouped := make(map[sourceKey][]time.Time)
	for _, u := range uploads {
		if u.Source == "" {
			continue
		}
		key := sourceKey{u.DocumentType, u.Source}
		grouped[key] = append(grouped[key], u.UploadDate)
	}
	for key := range grouped {
		dates := grouped[key]
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
		grouped[key] = dates
	}
	return grouped
}

func sortedSourceKeys(grouped map[sourceKey][]time.Time) []sourceKey {
	keys := make([]sourceKey, 0, len(grouped))
	for key := range grouped {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].documentType != keys[j].documentType {
			return keys[i].documentType < keys[j].documentType
		}
		return keys[i].source < keys[j].source
	})
	return keys
}
