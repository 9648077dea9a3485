// Package notify delivers fire-and-forget webhook events. Delivery failures
// are logged, never surfaced to the caller.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/lariod12/meosjourney-sub000/internal/backoff"
)

// Sink is the outbound notification collaborator.
type Sink interface {
	Notify(ctx context.Context, event string, payload any)
}

type WebhookSink struct {
	url      string
	client   *http.Client
	logger   *zap.Logger
	attempts int
	initial  time.Duration
}

func NewWebhookSink(url string, logger *zap.Logger) *WebhookSink {
	return &WebhookSink{
		url:      url,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
		attempts: backoff.DefaultAttempts,
		initial:  backoff.DefaultInitial,
	}
}

type envelope struct {
	Event   string    `json:"event"`
	SentAt  time.Time `json:"sent_at"`
	Payload any       `json:"payload"`
}

// Notify posts the event as JSON. HTTP 429 is retried with doubling delays
// before giving up; every failure path ends in a log line, not an error.
func (s *WebhookSink) Notify(ctx context.Context, event string, payload any) {
	body, err := json.Marshal(envelope{Event: event, SentAt: time.Now().UTC(), Payload: payload})
	if err != nil {
		s.logger.Warn("webhook marshal failed", zap.String("event", event), zap.Error(err))
		return
	}

	err = backoff.Retry(ctx, s.attempts, s.initial, func() error {
		return s.post(ctx, body)
	})
	if err != nil {
		s.logger.Warn("webhook delivery failed", zap.String("event", event), zap.Error(err))
	}
}

type throttledError struct{ status string }

func (e *throttledError) Error() string   { return "webhook throttled: " + e.status }
func (e *throttledError) Retryable() bool { return true }

func (s *WebhookSink) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return &throttledError{status: resp.Status}
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook status %s", resp.Status)
	}
	return nil
}

// NopSink is used when no webhook URL is configured, and in tests.
type NopSink struct{}

func (NopSink) Notify(context.Context, string, any) {}
