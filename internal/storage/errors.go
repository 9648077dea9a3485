package storage

import (
	"fmt"
	"strings"
)

// RateLimitError marks a store call that was throttled by the backend. It is
// retryable; callers back off and retry before surfacing it.
type RateLimitError struct {
	Op  string
	Err error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: rate limited: %v", e.Op, e.Err)
}

func (e *RateLimitError) Unwrap() error   { return e.Err }
func (e *RateLimitError) Retryable() bool { return true }

// wrapErr converts SQLite busy/locked failures into RateLimitError so the
// engine's backoff loop can retry them; everything else is wrapped as-is.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked") {
		return &RateLimitError{Op: op, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}
