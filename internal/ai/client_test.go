package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chatBody = `{"id":"gen-1","choices":[{"index":0,"message":{"role":"assistant","content":"hello"}}],"model":"test/model"}`

func newTestClient(baseURL string) *Client {
	c := NewClient(ClientConfig{
		BaseURL: baseURL,
		APIKey:  "test-key",
		Referer: "https://example.test",
		Title:   "Test Suite",
	}, zerolog.Nop())
	c.sleep = func(time.Duration) {}
	return c
}

func TestClientChat(t *testing.T) {
	var gotAuth, gotReferer, gotTitle string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotReferer = r.Header.Get("HTTP-Referer")
		gotTitle = r.Header.Get("X-Title")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatBody))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	resp, err := client.Chat(context.Background(), ChatRequest{Model: "test/model"})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Content())
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "https://example.test", gotReferer)
	assert.Equal(t, "Test Suite", gotTitle)
}

func TestClientChatHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.Chat(context.Background(), ChatRequest{})
	require.Error(t, err)

	httpErr, ok := err.(*HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusTooManyRequests, httpErr.Status)
	assert.Contains(t, httpErr.Body, "quota exceeded")
	assert.True(t, httpErr.Retryable())
}

func TestHTTPErrorRetryable(t *testing.T) {
	assert.True(t, (&HTTPError{Status: 429}).Retryable())
	assert.True(t, (&HTTPError{Status: 500}).Retryable())
	assert.True(t, (&HTTPError{Status: 503}).Retryable())
	assert.False(t, (&HTTPError{Status: 400}).Retryable())
	assert.False(t, (&HTTPError{Status: 404}).Retryable())
}

func TestChatWithRetryRecoversFromTransientFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) <= 2 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatBody))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	var retries []int
	resp, err := client.ChatWithRetry(context.Background(), ChatRequest{}, func(attempt, total int) {
		retries = append(retries, attempt)
		assert.Equal(t, 3, total)
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Content())
	assert.Equal(t, int32(3), hits.Load())
	assert.Equal(t, []int{2, 3}, retries)
}

func TestChatWithRetryGivesUpAfterBudget(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "still broken", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.ChatWithRetry(context.Background(), ChatRequest{}, nil)
	require.Error(t, err)
	assert.Equal(t, int32(3), hits.Load())
}

func TestChatWithRetryStopsOnNonRetryable(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.ChatWithRetry(context.Background(), ChatRequest{}, nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFence(`{"a":1}`))
}
