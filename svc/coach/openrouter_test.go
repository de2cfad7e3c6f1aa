package coach_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/focusflow/svc/coach"
)

func TestOpenRouterComplete(t *testing.T) {
	t.Parallel()

	messages := []coach.Message{
		{Role: coach.RoleSystem, Content: "be nice"},
		{Role: coach.RoleUser, Content: "hello"},
	}

	t.Run("sends the chat completion request", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/v1/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

			var body struct {
				Model       string          `json:"model"`
				Messages    []coach.Message `json:"messages"`
				MaxTokens   int             `json:"max_tokens"`
				Temperature float64         `json:"temperature"`
			}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "test-model", body.Model)
			assert.Equal(t, 300, body.MaxTokens)
			assert.InDelta(t, 0.8, body.Temperature, 0.0001)
			assert.Equal(t, messages, body.Messages)

			_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Take a short break.  "}}]}`))
		}))
		t.Cleanup(srv.Close)

		c, err := coach.NewOpenRouter(coach.Config{
			APIKey:      "secret",
			BaseURL:     srv.URL + "/api/v1/",
			Model:       "test-model",
			MaxTokens:   300,
			Temperature: 0.8,
		}, srv.Client())
		require.NoError(t, err)

		text, err := c.Complete(context.Background(), messages)
		require.NoError(t, err)
		assert.Equal(t, "Take a short break.", text)
	})

	t.Run("api errors are wrapped", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"error":{"message":"upstream down"}}`))
		}))
		t.Cleanup(srv.Close)

		c, err := coach.NewOpenRouter(coach.Config{APIKey: "secret", BaseURL: srv.URL}, srv.Client())
		require.NoError(t, err)

		_, err = c.Complete(context.Background(), messages)
		assert.ErrorIs(t, err, coach.ErrRequestFailed)
		assert.Contains(t, err.Error(), "upstream down")
	})

	t.Run("rate limit has its own error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		t.Cleanup(srv.Close)

		c, err := coach.NewOpenRouter(coach.Config{APIKey: "secret", BaseURL: srv.URL}, srv.Client())
		require.NoError(t, err)

		_, err = c.Complete(context.Background(), messages)
		assert.ErrorIs(t, err, coach.ErrRateLimitReached)
	})

	t.Run("empty choice is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"   "}}]}`))
		}))
		t.Cleanup(srv.Close)

		c, err := coach.NewOpenRouter(coach.Config{APIKey: "secret", BaseURL: srv.URL}, srv.Client())
		require.NoError(t, err)

		_, err = c.Complete(context.Background(), messages)
		assert.ErrorIs(t, err, coach.ErrEmptyCompletion)
	})

	t.Run("api key is required", func(t *testing.T) {
		_, err := coach.NewOpenRouter(coach.Config{}, nil)
		assert.ErrorIs(t, err, coach.ErrAPIKeyRequired)
	})
}
