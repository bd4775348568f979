package library

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/dustinbroussard/trivia-sass-attack/internal/ai"
	"github.com/dustinbroussard/trivia-sass-attack/internal/trivia"
)

type questionGenerator interface {
	GenerateQuestion(ctx context.Context, params ai.GenerateParams) (*trivia.Question, error)
}

// FillOptions configure one fill run.
type FillOptions struct {
	Category    trivia.Category
	Difficulty  trivia.Difficulty
	Tone        trivia.Tone
	Amount      int
	Delay       time.Duration
	SyncToCloud bool
}

// FillSummary reports what a fill run accomplished.
type FillSummary struct {
	Requested  int
	Processed  int
	Inserted   int
	Duplicates int
	Errors     int
	Cancelled  bool
}

// Filler generates questions one at a time, persists them through the
// unique-by-hash path, and optionally mirrors confirmed inserts to the
// shared backend. Generation errors count against the summary but never
// stop the run; cancellation comes from the context.
type Filler struct {
	gen    questionGenerator
	store  Store
	mirror *Mirror
	logger zerolog.Logger
	sleep  func(time.Duration)
}

func NewFiller(gen questionGenerator, store Store, mirror *Mirror, logger zerolog.Logger) *Filler {
	return &Filler{
		gen:    gen,
		store:  store,
		mirror: mirror,
		logger: logger.With().Str("component", "filler").Logger(),
		sleep:  time.Sleep,
	}
}

const defaultFillDelay = 1200 * time.Millisecond

// Run executes a fill to completion or cancellation.
func (f *Filler) Run(ctx context.Context, opts FillOptions) FillSummary {
	summary := FillSummary{Requested: opts.Amount}
	delay := opts.Delay
	if delay <= 0 {
		delay = defaultFillDelay
	}

	for i := 0; i < opts.Amount; i++ {
		if ctx.Err() != nil {
			summary.Cancelled = true
			break
		}

		question, err := f.gen.GenerateQuestion(ctx, ai.GenerateParams{
			Category:   opts.Category,
			Difficulty: opts.Difficulty,
			Tone:       opts.Tone,
		})
		if err != nil {
			f.logger.Error().Err(err).Str("category", string(opts.Category)).Msg("generation error")
			summary.Errors++
			summary.Processed++
			continue
		}

		// Enrich before the store sees the doc so the mirrored copy carries
		// the same id and stem hash the library persists.
		doc := enrich(QuestionDoc{Question: *question, Tone: opts.Tone, Source: SourceGenerated}, time.Now())
		result, err := f.store.PutMany(ctx, []QuestionDoc{doc})
		if err != nil {
			f.logger.Error().Err(err).Msg("library insert failed")
			summary.Errors++
			summary.Processed++
			continue
		}
		summary.Inserted += result.Inserted
		summary.Duplicates += result.Duplicates
		summary.Processed++

		if opts.SyncToCloud && f.mirror != nil && result.Inserted > 0 {
			f.mirror.UpsertMany(ctx, []QuestionDoc{doc})
		}

		if i < opts.Amount-1 {
			select {
			case <-ctx.Done():
				summary.Cancelled = true
				return summary
			default:
				f.sleep(delay)
			}
		}
	}
	return summary
}
