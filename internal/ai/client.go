package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ChatMessage is one role-tagged message in a completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the chat-completion request shape.
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

// ChatChoice carries one assistant message.
type ChatChoice struct {
	Index   int `json:"index"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
}

// ChatResponse is the chat-completion response shape.
type ChatResponse struct {
	ID      string       `json:"id"`
	Choices []ChatChoice `json:"choices"`
	Model   string       `json:"model,omitempty"`
}

// Content returns the first assistant message, or "".
func (r *ChatResponse) Content() string {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

// HTTPError surfaces a non-2xx backend response with its body text.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("chat backend error %d: %s", e.Status, e.Body)
}

// Retryable reports whether the status warrants another attempt (429/5xx).
func (e *HTTPError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || (e.Status >= 500 && e.Status <= 599)
}

// ChatBackend is the single contract the engine has with the generative
// text API.
type ChatBackend interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// ClientConfig holds connection details for the OpenRouter-compatible
// chat endpoint.
type ClientConfig struct {
	BaseURL string
	APIKey  string
	Referer string
	Title   string
	Timeout time.Duration
}

const defaultBaseURL = "https://openrouter.ai/api/v1"

// Client calls an OpenRouter-compatible chat-completions endpoint.
type Client struct {
	httpClient *http.Client
	cfg        ClientConfig
	logger     zerolog.Logger
	url        string
	sleep      func(time.Duration)
}

var _ ChatBackend = (*Client)(nil)

func NewClient(cfg ClientConfig, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		cfg:        cfg,
		logger:     logger.With().Str("component", "chat_client").Logger(),
		url:        base + "/chat/completions",
		sleep:      time.Sleep,
	}
}

// Chat performs a single completion call with no internal retries.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	if c.cfg.Referer != "" {
		httpReq.Header.Set("HTTP-Referer", c.cfg.Referer)
	}
	if c.cfg.Title != "" {
		httpReq.Header.Set("X-Title", c.cfg.Title)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &HTTPError{Status: resp.StatusCode, Body: strings.TrimSpace(string(text))}
	}

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	return &chatResp, nil
}

const (
	retryAttempts  = 3
	retryBaseDelay = 500 * time.Millisecond
)

// ChatWithRetry retries transport failures and retryable HTTP statuses
// with exponential backoff and up to +25% jitter. onRetry fires before
// each re-attempt, starting at attempt 2.
func (c *Client) ChatWithRetry(ctx context.Context, req ChatRequest, onRetry func(attempt, total int)) (*ChatResponse, error) {
	var lastErr error
	for i := 0; i < retryAttempts; i++ {
		resp, err := c.Chat(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if httpErr, ok := err.(*HTTPError); ok && !httpErr.Retryable() {
			return nil, err
		}
		if i == retryAttempts-1 {
			break
		}

		exp := retryBaseDelay << i
		jitter := time.Duration(rand.Int63n(int64(exp)/4 + 1))
		if onRetry != nil {
			onRetry(i+2, retryAttempts)
		}
		c.logger.Debug().Err(err).Int("attempt", i+2).Msg("chat retry")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timeAfter(c.sleep, exp+jitter):
		}
	}
	return nil, lastErr
}

// timeAfter adapts the injectable sleep into a channel so retries stay
// cancellable.
func timeAfter(sleep func(time.Duration), d time.Duration) <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		sleep(d)
		close(ch)
	}()
	return ch
}
