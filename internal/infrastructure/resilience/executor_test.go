package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testPolicy() Policy {
	return Policy{
		MaxAttempts:       3,
		InitialBackoff:    1 * time.Millisecond,
		MaxBackoff:        2 * time.Millisecond,
		BackoffMultiplier: 2,
		BreakerEnabled:    false,
	}
}

func TestRunRetriesTransientFailure(t *testing.T) {
	exec := NewExecutor(testPolicy())

	attempts := 0
	errTransient := errors.New("broker unavailable")
	err := exec.Run(context.Background(), "dispatch", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errTransient
		}
		return nil
	}, func(err error) ErrorClass {
		return ErrorClass{Retryable: errors.Is(err, errTransient), RecordFailure: true}
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestRunDoesNotRetryPermanentFailure(t *testing.T) {
	exec := NewExecutor(testPolicy())

	attempts := 0
	errPermanent := errors.New("bad payload")
	err := exec.Run(context.Background(), "dispatch", func(context.Context) error {
		attempts++
		return errPermanent
	}, func(error) ErrorClass {
		return ErrorClass{Retryable: false, RecordFailure: false}
	})
	if !errors.Is(err, errPermanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestRunOpensBreakerAfterFailures(t *testing.T) {
	policy := testPolicy()
	policy.MaxAttempts = 1
	policy.BreakerEnabled = true
	policy.BreakerMinRequests = 2
	policy.BreakerFailureRatio = 0.5
	policy.BreakerOpenTimeout = 50 * time.Millisecond
	policy.BreakerHalfOpenMaxCalls = 1
	exec := NewExecutor(policy)

	errDown := errors.New("down")
	classify := func(error) ErrorClass {
		return ErrorClass{Retryable: false, RecordFailure: true}
	}
	for i := 0; i < 2; i++ {
		_ = exec.Run(context.Background(), "dispatch", func(context.Context) error {
			return errDown
		}, classify)
	}

	err := exec.Run(context.Background(), "dispatch", func(context.Context) error {
		return nil
	}, classify)
	if !IsCircuitOpen(err) {
		t.Fatalf("expected open circuit, got %v", err)
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	exec := NewExecutor(testPolicy())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := exec.Run(ctx, "dispatch", func(context.Context) error {
		t.Fatalf("callback must not run on a cancelled context")
		return nil
	}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
