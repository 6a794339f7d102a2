package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tallyhq/docwatch/internal/core/domain"
)

// ScheduleOverrides is the parsed form of the optional schedules YAML file.
// Both maps are keyed by document type; unknown types are kept as-is so new
// types can be tuned without a code change.
type ScheduleOverrides struct {
	GracePeriods map[domain.DocumentType]int                     `yaml:"grace_periods"`
	Schedules    map[domain.DocumentType]domain.ReminderSchedule `yaml:"schedules"`
}

// LoadScheduleOverrides reads the overrides file at path. An empty path is
// not an error: it returns empty overrides.
func LoadScheduleOverrides(path string) (ScheduleOverrides, error) {
	var overrides ScheduleOverrides
	if path == "" {
		return overrides, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return overrides, fmt.Errorf("read schedules file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return overrides, fmt.Errorf("parse schedules file: %w", err)
	}

	for docType, days := range overrides.GracePeriods {
		if days <= 0 {
			return overrides, fmt.Errorf("schedules file: grace period for %s must be positive, got %d", docType, days)
		}
	}
	for docType, schedule := range overrides.Schedules {
		if schedule.MaxReminders < 0 {
			return overrides, fmt.Errorf("schedules file: max_reminders for %s must not be negative", docType)
		}
	}
	return overrides, nil
}
