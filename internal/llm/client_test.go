package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"football-buddy/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, url string, retries int) *Client {
	t.Helper()
	return NewClient(&Config{
		BaseURL:    url,
		APIKey:     "gm-key",
		Model:      "gemini-2.0-flash",
		Timeout:    2 * time.Second,
		MaxRetries: retries,
		MaxTokens:  256,
	}, logger.NewTestLogger(t))
}

func TestClient_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/openai/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gm-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gemini-2.0-flash", req.Model)
		assert.Equal(t, 256, req.MaxTokens)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)

		_, _ = w.Write([]byte(`{"choices":[{"finish_reason":"stop","message":{"role":"assistant","content":"Chelsea are fourth."}}],"usage":{"prompt_tokens":10,"completion_tokens":4}}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL+"/v1beta/openai/", 0)
	out, err := c.Complete(context.Background(), []Message{
		{Role: "system", Content: "You are a reporter."},
		{Role: "user", Content: "Where are Chelsea?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Chelsea are fourth.", out)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer server.Close()

	out, err := newTestClient(t, server.URL, 2).Complete(context.Background(), []Message{{Role: "user", Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_Failures(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		retries   int
		wantCalls int32
	}{
		{name: "bad request is not retried", status: http.StatusBadRequest, body: `{"error":"bad"}`, retries: 3, wantCalls: 1},
		{name: "server error exhausts retries", status: http.StatusInternalServerError, retries: 1, wantCalls: 2},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, retries: 0, wantCalls: 1},
		{name: "not json", status: http.StatusOK, body: `<html>`, retries: 0, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient(t, server.URL, tt.retries).Complete(context.Background(), []Message{{Role: "user", Content: "hi"}})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrLLMRequestFailed))
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&calls))
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := newTestClient(t, server.URL, 0).Complete(ctx, []Message{{Role: "user", Content: "hi"}})
	assert.True(t, errors.Is(err, ErrLLMTimeout))
}
