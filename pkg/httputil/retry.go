// Package httputil provides retry primitives shared by the registry clients.
package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError wraps an error to indicate it should trigger a retry.
// Wrap transient failures (network timeouts, 5xx responses, registry
// throttling) with this type so that [Policy.Do] knows to attempt the
// operation again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err as a RetryableError. Returns nil for a nil err.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err is wrapped with [RetryableError].
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// Policy describes how failed operations are retried. MaxRetries counts
// attempts after the first one, so MaxRetries of 0 means a single attempt.
// The delay doubles after each failed attempt.
type Policy struct {
	MaxRetries int
	Delay      time.Duration
}

// DefaultPolicy is a sensible policy for registry lookups: 2 retries with
// 1 second initial delay (doubling each retry).
var DefaultPolicy = Policy{MaxRetries: 2, Delay: time.Second}

// Do executes fn up to MaxRetries+1 times with exponential backoff.
// It only retries errors wrapped with [RetryableError]; other errors are
// returned immediately. Returns the last error if all attempts fail, or
// ctx.Err() if the context is cancelled while backing off.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := max(p.MaxRetries, 0) + 1
	delay := p.Delay
	if delay <= 0 {
		delay = time.Second
	}

	var lastErr error
	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

// RetryWithBackoff is a convenience wrapper around [Policy.Do] using
// [DefaultPolicy].
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return DefaultPolicy.Do(ctx, fn)
}
