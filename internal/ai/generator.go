package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dustinbroussard/trivia-sass-attack/internal/trivia"
)

// Sentinel errors for the generation taxonomy.
var (
	// ErrRateLimited means the caller retried a category too soon. It is
	// surfaced immediately and never retried internally.
	ErrRateLimited = errors.New("rate limited: try again in a moment")
	// ErrSeedEcho means the model ignored the determinism contract.
	ErrSeedEcho = errors.New("seed echo mismatch")
	// ErrContentPolicy means generated content failed safety filtering
	// even after a stricter regeneration attempt.
	ErrContentPolicy = errors.New("content filter rejection")
)

// Role discriminates the two halves of a paired round.
type Role string

const (
	RoleA Role = "A"
	RoleB Role = "B"
)

// GenerateParams requests one generated question. Zero values resolve to
// defaults: a fresh seed, RoleA, diffToken=seed, snark tone, and the
// default personality flags.
type GenerateParams struct {
	Category   trivia.Category
	Difficulty trivia.Difficulty
	Seed       string
	Tone       trivia.Tone
	Flags      *trivia.PersonalityFlags
	Role       Role
	DiffToken  string
}

type resolvedParams struct {
	Category   trivia.Category
	Difficulty trivia.Difficulty
	Seed       string
	Tone       trivia.Tone
	Flags      trivia.PersonalityFlags
	Role       Role
	DiffToken  string
}

func resolve(p GenerateParams) resolvedParams {
	seed := p.Seed
	if seed == "" {
		seed = uuid.NewString()
	}
	diffToken := p.DiffToken
	if diffToken == "" {
		diffToken = seed
	}
	role := p.Role
	if role == "" {
		role = RoleA
	}
	tone := p.Tone
	if tone == "" {
		tone = trivia.ToneSnark
	}
	flags := trivia.DefaultFlags()
	if p.Flags != nil {
		flags = *p.Flags
	}
	return resolvedParams{
		Category:   p.Category,
		Difficulty: p.Difficulty,
		Seed:       seed,
		Tone:       tone,
		Flags:      flags,
		Role:       role,
		DiffToken:  diffToken,
	}
}

func (p resolvedParams) cacheKey() string {
	return fmt.Sprintf("%s|%s|%s|%s|%s", p.Category, p.Difficulty, p.Seed, p.Role, p.DiffToken)
}

// QuestionCache stores validated generations keyed by resolved request
// parameters. Misses return (nil, nil).
type QuestionCache interface {
	Get(ctx context.Context, key string) (*trivia.Question, error)
	Set(ctx context.Context, key string, q trivia.Question) error
}

// GeneratorConfig tunes the generative question provider.
type GeneratorConfig struct {
	Model       string
	Temperature float64
	MinInterval time.Duration // per-category rate limit
}

const (
	defaultModel       = "google/gemini-2.0-flash-001"
	defaultMinInterval = time.Second
	maxAttempts        = 3
	maxContentRetries  = 2
)

// Generator wraps the chat backend with prompt construction, schema
// validation, seed-echo verification, content filtering, and bounded
// retries.
type Generator struct {
	backend ChatBackend
	cache   QuestionCache
	filter  ContentFilter
	cfg     GeneratorConfig
	logger  zerolog.Logger

	mu       sync.Mutex
	lastCall map[trivia.Category]time.Time
	now      func() time.Time
}

func NewGenerator(backend ChatBackend, cache QuestionCache, cfg GeneratorConfig, logger zerolog.Logger) *Generator {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = defaultMinInterval
	}
	return &Generator{
		backend:  backend,
		cache:    cache,
		filter:   DefaultContentFilter,
		cfg:      cfg,
		logger:   logger.With().Str("component", "ai_generator").Logger(),
		lastCall: map[trivia.Category]time.Time{},
		now:      time.Now,
	}
}

// SetFilter replaces the content-safety predicate.
func (g *Generator) SetFilter(filter ContentFilter) {
	if filter != nil {
		g.filter = filter
	}
}

func (g *Generator) enforceRateLimit(category trivia.Category) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if last, ok := g.lastCall[category]; ok && now.Sub(last) < g.cfg.MinInterval {
		return ErrRateLimited
	}
	g.lastCall[category] = now
	return nil
}

// GenerateQuestion produces one validated trivia question, retrying
// schema and seed-echo failures up to three attempts total and content
// failures with one stricter regeneration. Transport errors from the
// backend surface immediately.
func (g *Generator) GenerateQuestion(ctx context.Context, params GenerateParams) (*trivia.Question, error) {
	p := resolve(params)

	if err := g.enforceRateLimit(p.Category); err != nil {
		return nil, err
	}

	if g.cache != nil {
		if cached, err := g.cache.Get(ctx, p.cacheKey()); err == nil && cached != nil {
			return cached, nil
		}
	}

	sys := SystemPrompt(p.Flags, p.Tone)
	example := SchemaExample()

	var lastErr error
	contentRetries := 0

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := g.backend.Chat(ctx, ChatRequest{
			Model: g.cfg.Model,
			Messages: []ChatMessage{
				{Role: "system", Content: sys},
				{Role: "user", Content: UserPrompt(p, example, attempt > 1)},
			},
			Temperature: g.cfg.Temperature,
		})
		if err != nil {
			return nil, fmt.Errorf("chat call: %w", err)
		}

		question, err := parseQuestion(resp.Content())
		if err != nil {
			lastErr = err
			continue
		}

		if question.SeedEcho != p.Seed {
			if attempt < maxAttempts {
				lastErr = ErrSeedEcho
				continue
			}
			return nil, ErrSeedEcho
		}

		if !g.filter(*question, p.Flags) {
			if contentRetries >= maxContentRetries {
				return nil, ErrContentPolicy
			}
			contentRetries++
			regenerated, err := g.regenerateStricter(ctx, p, sys, example)
			if err != nil {
				return nil, err
			}
			g.logger.Info().Str("category", string(p.Category)).Msg("regeneration due to content filter")
			g.store(ctx, p, *regenerated)
			return regenerated, nil
		}

		g.store(ctx, p, *question)
		return question, nil
	}

	return nil, fmt.Errorf("question generation failed: %w", lastErr)
}

// regenerateStricter reruns the prompt with an explicit content reminder.
// Still-unsafe output is a terminal content-policy error.
func (g *Generator) regenerateStricter(ctx context.Context, p resolvedParams, sys, example string) (*trivia.Question, error) {
	stricterSys := sys + " Reminder: You violated content constraints; rewrite within PG-13 and kindness rules."
	resp, err := g.backend.Chat(ctx, ChatRequest{
		Model: g.cfg.Model,
		Messages: []ChatMessage{
			{Role: "system", Content: stricterSys},
			{Role: "user", Content: UserPrompt(p, example, true)},
		},
		Temperature: 0.5,
	})
	if err != nil {
		return nil, fmt.Errorf("chat call: %w", err)
	}

	question, err := parseQuestion(resp.Content())
	if err != nil {
		return nil, fmt.Errorf("content retry: %w", err)
	}
	if !g.filter(*question, p.Flags) {
		return nil, ErrContentPolicy
	}
	return question, nil
}

func (g *Generator) store(ctx context.Context, p resolvedParams, q trivia.Question) {
	if g.cache == nil {
		return
	}
	if err := g.cache.Set(ctx, p.cacheKey(), q); err != nil {
		g.logger.Debug().Err(err).Msg("cache save skipped")
	}
}

func parseQuestion(content string) (*trivia.Question, error) {
	text := StripCodeFence(content)
	var question trivia.Question
	if err := json.Unmarshal([]byte(text), &question); err != nil {
		return nil, fmt.Errorf("parse generated JSON: %w", err)
	}
	if err := question.Validate(); err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}
	return &question, nil
}
