package session

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds record store read retries. Only reads are retried:
// a retried write after an ambiguous failure can double-issue tokens, so
// write retry decisions stay with the caller.
type RetryPolicy struct {
	BaseDelay   time.Duration
	Factor      float64
	MaxAttempts int
}

// retryPolicy extracts the read-retry policy from config.
func (c Config) retryPolicy() RetryPolicy {
	return RetryPolicy{
		BaseDelay:   c.RetryBaseDelay,
		Factor:      c.RetryFactor,
		MaxAttempts: c.RetryMaxAttempts,
	}
}

// retryRead runs op under the policy, retrying only ErrStoreUnavailable.
// ErrNotFound, ErrInvalidArgument, and context errors are permanent.
func retryRead[T any](ctx context.Context, p RetryPolicy, op func() (T, error)) (T, error) {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.Multiplier = p.Factor
	b.RandomizationFactor = 0
	b.MaxInterval = p.BaseDelay * time.Duration(1<<uint(p.MaxAttempts))

	wrapped := func() (T, error) {
		v, err := op()
		if err != nil && !errors.Is(err, ErrStoreUnavailable) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}

	return backoff.RetryWithData(
		wrapped,
		backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.MaxAttempts-1)), ctx),
	)
}
