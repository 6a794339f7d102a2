package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tallyhq/docwatch/internal/core/domain"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.APIPort != "8080" {
		t.Fatalf("expected default API port 8080, got %s", cfg.APIPort)
	}
	if cfg.NATSSubjectPrefix != "reminders" {
		t.Fatalf("expected default subject prefix, got %s", cfg.NATSSubjectPrefix)
	}
	if cfg.DefaultGraceDays != 5 || cfg.YearlyGraceDays != 14 || cfg.LookAheadDays != 7 {
		t.Fatalf("unexpected default windows: %+v", cfg)
	}
	if cfg.StableCVBelow != 0.15 || cfg.VolatileCVFrom != 0.40 {
		t.Fatalf("unexpected default CV bands: %+v", cfg)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DEFAULT_GRACE_DAYS", "9")
	t.Setenv("DISPATCH_PER_SECOND", "2.5")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()
	if cfg.DefaultGraceDays != 9 {
		t.Fatalf("expected grace override, got %d", cfg.DefaultGraceDays)
	}
	if cfg.DispatchPerSecond != 2.5 {
		t.Fatalf("expected dispatch rate override, got %f", cfg.DispatchPerSecond)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected log level override, got %s", cfg.LogLevel)
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("LOOK_AHEAD_DAYS", "not-a-number")

	cfg := Load()
	if cfg.LookAheadDays != 7 {
		t.Fatalf("malformed value must fall back to the default, got %d", cfg.LookAheadDays)
	}
}

func TestLoadScheduleOverridesEmptyPath(t *testing.T) {
	overrides, err := LoadScheduleOverrides("")
	if err != nil {
		t.Fatalf("empty path must not fail: %v", err)
	}
	if len(overrides.Schedules) != 0 || len(overrides.GracePeriods) != 0 {
		t.Fatalf("expected empty overrides, got %+v", overrides)
	}
}

func TestLoadScheduleOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedules.yaml")
	content := `
grace_periods:
  payg_summary: 21
schedules:
  bank_statement:
    before_due: [5, 2]
    after_due: [4, 9]
    max_reminders: 3
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	overrides, err := LoadScheduleOverrides(path)
	if err != nil {
		t.Fatalf("LoadScheduleOverrides() error = %v", err)
	}
	if overrides.GracePeriods[domain.DocTypePAYGSummary] != 21 {
		t.Fatalf("expected PAYG grace override, got %+v", overrides.GracePeriods)
	}
	schedule := overrides.Schedules[domain.DocTypeBankStatement]
	if schedule.MaxReminders != 3 || len(schedule.BeforeDue) != 2 || schedule.AfterDue[1] != 9 {
		t.Fatalf("unexpected schedule override: %+v", schedule)
	}
}

func TestLoadScheduleOverridesRejectsBadGrace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedules.yaml")
	if err := os.WriteFile(path, []byte("grace_periods:\n  other: -3\n"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if _, err := LoadScheduleOverrides(path); err == nil {
		t.Fatalf("expected an error for a negative grace period")
	}
}
