package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastPolicy(attempts int) RetryPolicy {
	return RetryPolicy{BaseDelay: time.Millisecond, Factor: 2, MaxAttempts: attempts}
}

func TestRetryReadRecoversFromTransientFailure(t *testing.T) {
	calls := 0
	got, err := retryRead(context.Background(), fastPolicy(3), func() (string, error) {
		calls++
		if calls < 3 {
			return "", ErrStoreUnavailable
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("retryRead: %v", err)
	}
	if got != "ok" || calls != 3 {
		t.Fatalf("got %q after %d calls", got, calls)
	}
}

func TestRetryReadGivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	_, err := retryRead(context.Background(), fastPolicy(3), func() (string, error) {
		calls++
		return "", ErrStoreUnavailable
	})
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("err = %v, want ErrStoreUnavailable", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestRetryReadDoesNotRetryPermanentErrors(t *testing.T) {
	calls := 0
	_, err := retryRead(context.Background(), fastPolicy(3), func() (string, error) {
		calls++
		return "", ErrNotFound
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1; absence is not a transient failure", calls)
	}
}

func TestRetryReadHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := retryRead(ctx, RetryPolicy{BaseDelay: time.Hour, Factor: 2, MaxAttempts: 3}, func() (string, error) {
		calls++
		return "", ErrStoreUnavailable
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1 with a dead context", calls)
	}
}
