// Package backoff retries throttled calls with doubling delays.
package backoff

import (
	"context"
	"time"
)

const (
	DefaultAttempts = 3
	DefaultInitial  = time.Second
)

// Retryable reports whether an error is worth retrying. Errors that do not
// satisfy it abort the loop immediately.
type Retryable interface {
	Retryable() bool
}

// Retry runs fn up to attempts times, sleeping initial, 2*initial, ... between
// tries. Only errors implementing Retryable (and reporting true) are retried;
// the last error is returned once attempts are exhausted.
func Retry(ctx context.Context, attempts int, initial time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	delay := initial

	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		r, ok := err.(Retryable)
		if !ok || !r.Retryable() {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}
