package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNotifyPostsEnvelope(t *testing.T) {
	var got envelope
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewWebhookSink(srv.URL, zap.NewNop())
	sink.Notify(context.Background(), "task.completed", map[string]any{"task_id": float64(7)})

	assert.Equal(t, "task.completed", got.Event)
	payload, ok := got.Payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(7), payload["task_id"])
}

func TestNotifyRetriesOn429(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := NewWebhookSink(srv.URL, zap.NewNop())
	sink.initial = time.Millisecond
	sink.Notify(context.Background(), "profile.levelup", nil)

	assert.Equal(t, int32(2), calls.Load())
}

func TestNotifySwallowsHardFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sink := NewWebhookSink(srv.URL, zap.NewNop())
	sink.Notify(context.Background(), "task.failed", nil) // must not panic or block

	assert.Equal(t, int32(1), calls.Load(), "a 500 is not retried")
}
