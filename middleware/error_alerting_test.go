package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type webhookRecorder struct {
	mutex    sync.Mutex
	messages []map[string]any
}

func (r *webhookRecorder) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var payload map[string]any
		assert.NoError(t, json.NewDecoder(req.Body).Decode(&payload))
		r.mutex.Lock()
		r.messages = append(r.messages, payload)
		r.mutex.Unlock()
		w.WriteHeader(http.StatusOK)
	}
}

func (r *webhookRecorder) count() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.messages)
}

func setupMiddlewareTest(t *testing.T) (*ErrorAlertMiddleware, *webhookRecorder) {
	recorder := &webhookRecorder{}
	server := httptest.NewServer(recorder.handler(t))
	t.Cleanup(server.Close)

	return NewErrorAlertMiddleware(SlackAlertConfig{
		WebhookURL:  server.URL,
		Environment: "test",
		AppName:     "ecessbot",
	}), recorder
}

func TestErrorAlertMiddleware_WrapBackgroundTask_DedupesAlerts(t *testing.T) {
	m, recorder := setupMiddlewareTest(t)
	task := m.WrapBackgroundTask("reconcile", func(ctx context.Context) error {
		return errors.New("gateway unavailable")
	})

	for range 3 {
		assert.Error(t, task(context.Background()))
	}
	m.Wait()

	assert.Equal(t, 1, recorder.count())
	assert.Contains(t, recorder.messages[0]["text"], "gateway unavailable")
}

func TestErrorAlertMiddleware_WrapEventHandler_RecoversPanic(t *testing.T) {
	m, recorder := setupMiddlewareTest(t)
	handler := m.WrapEventHandler("reaction_add", func() error {
		panic("boom")
	})

	assert.NotPanics(t, handler)
	m.Wait()
	assert.Equal(t, 1, recorder.count())
}

func TestErrorAlertMiddleware_RunCommand(t *testing.T) {
	expectedErr := errors.New("expected")
	isExpected := func(err error) bool { return errors.Is(err, expectedErr) }

	t.Run("expected errors are not alerted", func(t *testing.T) {
		m, recorder := setupMiddlewareTest(t)
		err := m.RunCommand("ping", isExpected, func() error { return expectedErr })
		m.Wait()

		assert.ErrorIs(t, err, expectedErr)
		assert.Equal(t, 0, recorder.count())
	})

	t.Run("unexpected errors are alerted", func(t *testing.T) {
		m, recorder := setupMiddlewareTest(t)
		err := m.RunCommand("ping", isExpected, func() error { return errors.New("disk full") })
		m.Wait()

		assert.Error(t, err)
		assert.Equal(t, 1, recorder.count())
	})

	t.Run("panics become errors", func(t *testing.T) {
		m, recorder := setupMiddlewareTest(t)
		err := m.RunCommand("ping", isExpected, func() error { panic("nil map") })
		m.Wait()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "panicked")
		assert.Equal(t, 1, recorder.count())
	})
}

func TestErrorAlertMiddleware_DisabledWithoutWebhook(t *testing.T) {
	m := NewErrorAlertMiddleware(SlackAlertConfig{AppName: "ecessbot"})
	task := m.WrapBackgroundTask("reconcile", func(ctx context.Context) error {
		return errors.New("boom")
	})

	assert.Error(t, task(context.Background()))
	m.Wait()
}

func TestErrorAlertMiddleware_HTTPMiddleware(t *testing.T) {
	m, recorder := setupMiddlewareTest(t)
	handler := m.HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("handler bug")
	}))

	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	})
	m.Wait()
	assert.Equal(t, 1, recorder.count())
}
