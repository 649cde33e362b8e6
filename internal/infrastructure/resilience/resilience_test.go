package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig() Config {
	return Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2.0,

		BreakerEnabled:          true,
		BreakerMinRequests:      2,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      time.Minute,
		BreakerHalfOpenMaxCalls: 1,
	}
}

func alwaysRetryable(error) ErrorClassification {
	return ErrorClassification{Retryable: true, RecordFailure: true}
}

func neverRetryable(error) ErrorClassification {
	return ErrorClassification{Retryable: false, RecordFailure: false}
}

func TestExecuteRetriesRetryableErrors(t *testing.T) {
	executor := NewExecutor(fastConfig())

	calls := 0
	err := executor.Execute(context.Background(), "op", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, alwaysRetryable)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestExecuteDoesNotRetryPermanentErrors(t *testing.T) {
	executor := NewExecutor(fastConfig())

	calls := 0
	permanent := errors.New("bad request")
	err := executor.Execute(context.Background(), "op", func(context.Context) error {
		calls++
		return permanent
	}, neverRetryable)
	if !errors.Is(err, permanent) {
		t.Fatalf("expected permanent error back, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected single attempt, got %d", calls)
	}
}

func TestExecuteStopsAtMaxAttempts(t *testing.T) {
	executor := NewExecutor(fastConfig())

	calls := 0
	err := executor.Execute(context.Background(), "op", func(context.Context) error {
		calls++
		return errors.New("still failing")
	}, alwaysRetryable)
	if err == nil {
		t.Fatalf("expected error")
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestExecuteOpensBreakerAfterRepeatedFailures(t *testing.T) {
	executor := NewExecutor(fastConfig())

	boom := errors.New("boom")
	fail := func(context.Context) error { return boom }
	for n := 0; n < 2; n++ {
		_ = executor.Execute(context.Background(), "op", fail, alwaysRetryable)
	}

	calls := 0
	err := executor.Execute(context.Background(), "op", func(context.Context) error {
		calls++
		return nil
	}, alwaysRetryable)
	if !IsCircuitOpen(err) {
		t.Fatalf("expected open circuit, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("open breaker must not invoke the operation, got %d calls", calls)
	}
}

func TestExecuteBreakersAreScopedPerOperation(t *testing.T) {
	executor := NewExecutor(fastConfig())

	boom := errors.New("boom")
	for n := 0; n < 2; n++ {
		_ = executor.Execute(context.Background(), "failing-op", func(context.Context) error {
			return boom
		}, alwaysRetryable)
	}

	err := executor.Execute(context.Background(), "healthy-op", func(context.Context) error {
		return nil
	}, alwaysRetryable)
	if err != nil {
		t.Fatalf("unrelated operation affected by open breaker: %v", err)
	}
}

func TestExecuteCanceledContextStopsRetries(t *testing.T) {
	executor := NewExecutor(fastConfig())
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := executor.Execute(ctx, "op", func(context.Context) error {
		calls++
		cancel()
		return errors.New("transient")
	}, alwaysRetryable)
	if err == nil {
		t.Fatalf("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected retries to stop on cancellation, got %d calls", calls)
	}
}

func TestExecuteIgnoredFailuresDoNotTripBreaker(t *testing.T) {
	executor := NewExecutor(fastConfig())

	ignored := func(error) ErrorClassification {
		return ErrorClassification{Retryable: false, RecordFailure: false}
	}
	for n := 0; n < 5; n++ {
		_ = executor.Execute(context.Background(), "op", func(context.Context) error {
			return errors.New("caller error")
		}, ignored)
	}

	err := executor.Execute(context.Background(), "op", func(context.Context) error {
		return nil
	}, ignored)
	if err != nil {
		t.Fatalf("breaker tripped on non-recorded failures: %v", err)
	}
}
