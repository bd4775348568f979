package bank

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/dustinbroussard/trivia-sass-attack/internal/ai"
)

// Category identifies a gameplay category. These are the six board
// categories players complete, distinct from the generation taxonomy.
type Category string

const (
	CategoryHistory    Category = "History"
	CategoryScience    Category = "Science"
	CategoryPopCulture Category = "Pop Culture"
	CategoryArtMusic   Category = "Art & Music"
	CategorySports     Category = "Sports"
	CategoryRandom     Category = "Random"
)

// Categories lists every gameplay category in board order.
var Categories = []Category{
	CategoryHistory,
	CategoryScience,
	CategoryPopCulture,
	CategoryArtMusic,
	CategorySports,
	CategoryRandom,
}

// Question is the session-pool form of a trivia question. Used flips true
// exactly once, when drawn; it resets only on bank reset or refill.
type Question struct {
	ID          string            `json:"id"`
	Category    Category          `json:"category"`
	Question    string            `json:"question"`
	Choices     []string          `json:"choices"`
	AnswerIndex int               `json:"answer_index"`
	CorrectQuip string            `json:"correct_quip"`
	WrongQuips  map[string]string `json:"wrong_answer_quips"`
	Used        bool              `json:"used"`
}

// chatRetrier is the slice of the chat client the bank needs: a
// completion call with backoff already attached.
type chatRetrier interface {
	ChatWithRetry(ctx context.Context, req ai.ChatRequest, onRetry func(attempt, total int)) (*ai.ChatResponse, error)
}

// Config tunes refill behavior.
type Config struct {
	Models        []string
	BatchSize     int
	FailThreshold int
	Cooldown      time.Duration
}

const (
	defaultBatchSize     = 6
	defaultFailThreshold = 3
	defaultCooldown      = time.Minute
)

type failureState struct {
	fails         int
	cooldownUntil time.Time
}

// Bank keeps a per-category pool of ready-to-serve questions, seeded from
// the static fixture and refilled from the generative backend. Refills
// for a category are single-flight; failures open a cooldown window
// during which the bank recycles its local stock instead of calling out.
type Bank struct {
	backend chatRetrier // nil means no API credential is configured
	cfg     Config
	logger  zerolog.Logger
	now     func() time.Time

	mu       sync.Mutex
	pools    map[Category][]*Question
	failures map[Category]failureState
	rng      *rand.Rand

	flight singleflight.Group

	obsMu     sync.Mutex
	observers []func(Event)
}

// New builds a bank seeded with the static fixture. Pass a nil backend
// when no API credential is configured; the bank then always recycles
// locally.
func New(backend chatRetrier, cfg Config, logger zerolog.Logger) *Bank {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.FailThreshold <= 0 {
		cfg.FailThreshold = defaultFailThreshold
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = defaultCooldown
	}
	if len(cfg.Models) == 0 {
		cfg.Models = defaultRefillModels()
	}
	b := &Bank{
		backend:  backend,
		cfg:      cfg,
		logger:   logger.With().Str("component", "question_bank").Logger(),
		now:      time.Now,
		failures: map[Category]failureState{},
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	b.pools = fixturePools()
	return b
}

// Subscribe registers an observer for refill lifecycle events. Events are
// delivered synchronously from the goroutine performing the refill.
func (b *Bank) Subscribe(fn func(Event)) {
	b.obsMu.Lock()
	defer b.obsMu.Unlock()
	b.observers = append(b.observers, fn)
}

func (b *Bank) emit(evt Event) {
	b.obsMu.Lock()
	observers := make([]func(Event), len(b.observers))
	copy(observers, b.observers)
	b.obsMu.Unlock()
	for _, fn := range observers {
		fn(evt)
	}
}

// GetNextQuestion draws an unused question from the category's pool,
// marking it used. An empty pool triggers a refill (awaiting any refill
// already in flight for the category) and one retry; nil means the pool
// is empty even after refill.
func (b *Bank) GetNextQuestion(ctx context.Context, category Category) (*Question, error) {
	if q := b.drawUnused(category); q != nil {
		return q, nil
	}

	_, err, _ := b.flight.Do(string(category), func() (any, error) {
		b.refill(ctx, category)
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	return b.drawUnused(category), nil
}

// drawUnused picks uniformly among the category's unused questions and
// flips its used flag. Returns a copy so callers can't mutate pool state.
func (b *Bank) drawUnused(category Category) *Question {
	b.mu.Lock()
	defer b.mu.Unlock()

	var available []*Question
	for _, q := range b.pools[category] {
		if !q.Used {
			available = append(available, q)
		}
	}
	if len(available) == 0 {
		return nil
	}
	chosen := available[b.rng.Intn(len(available))]
	chosen.Used = true
	out := *chosen
	return &out
}

func (b *Bank) refill(ctx context.Context, category Category) {
	b.mu.Lock()
	state := b.failures[category]
	inCooldown := b.now().Before(state.cooldownUntil)
	b.mu.Unlock()

	b.logger.Info().Str("category", string(category)).Bool("cooldown", inCooldown).Msg("refilling category")
	b.emit(Event{Category: category, Phase: PhaseStart, Cooldown: inCooldown})

	if b.backend == nil || inCooldown {
		b.recycle(category)
		source := SourceLocal
		if inCooldown {
			source = SourceLocalCooldown
		}
		refillsTotal.WithLabelValues(string(category), source).Inc()
		b.emit(Event{Category: category, Phase: PhaseEnd, Source: source, Cooldown: inCooldown})
		return
	}

	fresh, model, err := b.fetchBatch(ctx, category, b.cfg.BatchSize)
	if err == nil && len(fresh) > 0 {
		b.mu.Lock()
		pool := make([]*Question, len(fresh))
		for i := range fresh {
			q := fresh[i]
			q.Used = false
			pool[i] = &q
		}
		b.pools[category] = pool
		b.failures[category] = failureState{}
		b.mu.Unlock()

		b.logger.Info().Str("category", string(category)).Int("count", len(fresh)).Str("model", model).Msg("fetched fresh questions")
		refillsTotal.WithLabelValues(string(category), SourceGenerated).Inc()
		b.emit(Event{Category: category, Phase: PhaseEnd, Source: SourceGenerated, Model: model})
		return
	}

	if err != nil {
		b.logger.Warn().Err(err).Str("category", string(category)).Msg("question fetch failed, falling back to local reset")
		b.emit(Event{Category: category, Phase: PhaseError, Err: err.Error()})
		b.recordFailure(category)
	}

	b.recycle(category)
	refillsTotal.WithLabelValues(string(category), SourceLocalFallback).Inc()
	b.emit(Event{Category: category, Phase: PhaseEnd, Source: SourceLocalFallback})
}

// recycle resets the used flags on the category's existing pool. This is
// what guarantees the bank never goes dry for a category it has ever held
// stock for, at the cost of repeats.
func (b *Bank) recycle(category Category) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, q := range b.pools[category] {
		q.Used = false
	}
}

func (b *Bank) recordFailure(category Category) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state := b.failures[category]
	state.fails++
	if state.fails >= b.cfg.FailThreshold {
		state = failureState{cooldownUntil: b.now().Add(b.cfg.Cooldown)}
	}
	b.failures[category] = state
}

// Stats reports pool occupancy across all categories.
type Stats struct {
	Total     int `json:"total"`
	Used      int `json:"used"`
	Available int `json:"available"`
}

func (b *Bank) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	var stats Stats
	for _, pool := range b.pools {
		for _, q := range pool {
			stats.Total++
			if q.Used {
				stats.Used++
			}
		}
	}
	stats.Available = stats.Total - stats.Used
	return stats
}

// Reset restores the static fixture and clears failure state.
func (b *Bank) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pools = fixturePools()
	b.failures = map[Category]failureState{}
}
