package utils

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func newTestRetry(attempts int) *RetryConfig {
	return &RetryConfig{
		MaxAttempts: attempts,
		BaseDelay:   time.Millisecond,
		Logger:      NewLogger(false),
	}
}

func TestDoRetriesTransientErrors(t *testing.T) {
	r := newTestRetry(3)

	calls := 0
	err := r.Do("flaky", func() error {
		calls++
		if calls < 3 {
			return errors.New("search status 503")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do returned %v; want success on third attempt", err)
	}
	if calls != 3 {
		t.Errorf("fn called %d times; want 3", calls)
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	r := newTestRetry(2)

	calls := 0
	sentinel := errors.New("search status 500")
	err := r.Do("down", func() error {
		calls++
		return sentinel
	})
	if calls != 2 {
		t.Errorf("fn called %d times; want 2", calls)
	}
	if !errors.Is(err, sentinel) {
		t.Errorf("err = %v; want it to wrap the last failure", err)
	}
}

func TestDoStopsOnPermanentError(t *testing.T) {
	r := newTestRetry(5)

	calls := 0
	cause := errors.New("search status 404")
	err := r.Do("missing", func() error {
		calls++
		return Permanent(cause)
	})
	if calls != 1 {
		t.Errorf("fn called %d times; want 1 — permanent failures must not be retried", calls)
	}
	if !errors.Is(err, cause) {
		t.Errorf("err = %v; want it to wrap the permanent cause", err)
	}
}

func TestPermanentUnwrapsThroughWrapping(t *testing.T) {
	r := newTestRetry(4)

	calls := 0
	err := r.Do("wrapped", func() error {
		calls++
		return fmt.Errorf("page 2: %w", Permanent(errors.New("search status 410")))
	})
	if calls != 1 {
		t.Errorf("fn called %d times; want 1", calls)
	}
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestPermanentNil(t *testing.T) {
	if Permanent(nil) != nil {
		t.Error("Permanent(nil) should stay nil")
	}
}
