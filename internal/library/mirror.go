package library

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dustinbroussard/trivia-sass-attack/internal/trivia"
)

// Mirror pushes and pulls library entries against a shared backend with
// the same stemHash uniqueness contract. Every failure degrades to a
// no-op: local persistence has already succeeded by the time the mirror
// is called, so nothing here is allowed to be fatal.
type Mirror struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     zerolog.Logger
}

// MirrorConfig holds connection details for the shared backend.
type MirrorConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

func NewMirror(cfg MirrorConfig, logger zerolog.Logger) *Mirror {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Mirror{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		logger:     logger.With().Str("component", "library_mirror").Logger(),
	}
}

// Enabled reports whether the mirror has a backend configured.
func (m *Mirror) Enabled() bool {
	return m.baseURL != ""
}

// UpsertMany pushes docs with upsert-on-conflict-ignore semantics keyed by
// stemHash. On any failure all items are reported as duplicates, meaning
// "not confirmed inserted".
func (m *Mirror) UpsertMany(ctx context.Context, docs []QuestionDoc) PutResult {
	if len(docs) == 0 || !m.Enabled() {
		return PutResult{Duplicates: len(docs)}
	}

	body, err := json.Marshal(map[string]any{"items": docs})
	if err != nil {
		m.logger.Warn().Err(err).Msg("mirror upsert marshal failed")
		return PutResult{Duplicates: len(docs)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/questions/upsert", bytes.NewReader(body))
	if err != nil {
		m.logger.Warn().Err(err).Msg("mirror upsert request failed")
		return PutResult{Duplicates: len(docs)}
	}
	m.decorate(req)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		m.logger.Warn().Err(err).Msg("mirror upsert transport failed")
		return PutResult{Duplicates: len(docs)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		m.logger.Warn().Int("status", resp.StatusCode).Msg("mirror upsert rejected")
		return PutResult{Duplicates: len(docs)}
	}

	var payload struct {
		Inserted int `json:"inserted"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		m.logger.Warn().Err(err).Msg("mirror upsert decode failed")
		return PutResult{Duplicates: len(docs)}
	}
	if payload.Inserted > len(docs) {
		payload.Inserted = len(docs)
	}
	return PutResult{Inserted: payload.Inserted, Duplicates: len(docs) - payload.Inserted}
}

// FetchBatch pulls docs by category/difficulty, excluding known hashes.
// Failures return an empty slice.
func (m *Mirror) FetchBatch(ctx context.Context, category trivia.Category, difficulty trivia.Difficulty, limit int, excludeHashes []string) []QuestionDoc {
	if !m.Enabled() {
		return nil
	}
	if limit <= 0 {
		limit = 50
	}

	values := url.Values{}
	values.Set("category", string(category))
	values.Set("difficulty", string(difficulty))
	values.Set("limit", fmt.Sprint(limit))
	if len(excludeHashes) > 0 {
		values.Set("exclude", strings.Join(excludeHashes, ","))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/questions?"+values.Encode(), nil)
	if err != nil {
		m.logger.Warn().Err(err).Msg("mirror fetch request failed")
		return nil
	}
	m.decorate(req)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		m.logger.Warn().Err(err).Msg("mirror fetch transport failed")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		m.logger.Warn().Int("status", resp.StatusCode).Msg("mirror fetch rejected")
		return nil
	}

	var payload struct {
		Items []QuestionDoc `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		m.logger.Warn().Err(err).Msg("mirror fetch decode failed")
		return nil
	}

	// Server-side exclusion is advisory; filter again locally.
	exclude := make(map[string]struct{}, len(excludeHashes))
	for _, h := range excludeHashes {
		exclude[h] = struct{}{}
	}
	out := payload.Items[:0]
	for _, item := range payload.Items {
		if _, skip := exclude[item.StemHash]; !skip {
			out = append(out, item)
		}
	}
	return out
}

func (m *Mirror) decorate(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if m.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+m.apiKey)
	}
}
