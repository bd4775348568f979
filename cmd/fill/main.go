package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dustinbroussard/trivia-sass-attack/internal/ai"
	"github.com/dustinbroussard/trivia-sass-attack/internal/config"
	"github.com/dustinbroussard/trivia-sass-attack/internal/library"
	"github.com/dustinbroussard/trivia-sass-attack/internal/trivia"
)

func main() {
	var (
		category   = flag.String("category", string(trivia.CategoryHistory), "Generation category")
		difficulty = flag.String("difficulty", string(trivia.DifficultyMedium), "Difficulty: easy, medium, or hard")
		tone       = flag.String("tone", string(trivia.ToneSnark), "Quip tone")
		amount     = flag.Int("amount", 10, "How many questions to generate")
		delay      = flag.Duration("delay", 0, "Pause between generations (default 1.2s)")
		sync       = flag.Bool("sync", false, "Mirror confirmed inserts to the cloud backend")
		exportTo   = flag.String("export", "", "Write the library to a pack file and exit")
		importFrom = flag.String("import", "", "Load a pack file into the library and exit")
	)
	flag.Parse()

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load("configs/.env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store library.Store = library.NewMemoryStore()
	if cfg.Postgres.Enabled() {
		pool, err := pgxpool.New(ctx, cfg.Postgres.DSN())
		if err != nil {
			log.Fatal().Err(err).Msg("connect postgres")
		}
		defer pool.Close()
		store = library.NewPostgresStore(pool)
	} else {
		log.Warn().Msg("postgres not configured; results will not outlive this run")
	}

	if *importFrom != "" {
		raw, err := os.ReadFile(*importFrom)
		if err != nil {
			log.Fatal().Err(err).Str("path", *importFrom).Msg("read pack file")
		}
		result, err := library.ImportPack(ctx, store, raw)
		if err != nil {
			log.Fatal().Err(err).Msg("import pack")
		}
		log.Info().Int("inserted", result.Inserted).Int("duplicates", result.Duplicates).Int("total", result.Total).Msg("pack imported")
		return
	}

	if *exportTo != "" {
		docs, err := store.List(ctx, library.Filter{}, 100000, 0)
		if err != nil {
			log.Fatal().Err(err).Msg("list library")
		}
		data, err := library.ExportPack(docs)
		if err != nil {
			log.Fatal().Err(err).Msg("serialize pack")
		}
		if err := os.WriteFile(*exportTo, data, 0o644); err != nil {
			log.Fatal().Err(err).Str("path", *exportTo).Msg("write pack file")
		}
		log.Info().Int("items", len(docs)).Str("path", *exportTo).Msg("pack exported")
		return
	}

	cat := trivia.Category(*category)
	diff := trivia.Difficulty(*difficulty)
	if !trivia.ValidCategory(cat) {
		log.Fatal().Str("category", *category).Msg("unknown category")
	}
	if !trivia.ValidDifficulty(diff) {
		log.Fatal().Str("difficulty", *difficulty).Msg("unknown difficulty")
	}
	if cfg.OpenRouter.APIKey == "" {
		log.Fatal().Msg("OPENROUTER_API_KEY must be configured to generate questions")
	}

	client := ai.NewClient(ai.ClientConfig{
		BaseURL: cfg.OpenRouter.BaseURL,
		APIKey:  cfg.OpenRouter.APIKey,
		Referer: cfg.OpenRouter.Referer,
		Title:   cfg.OpenRouter.Title,
		Timeout: cfg.OpenRouter.HTTPTimeout,
	}, log.Logger)
	generator := ai.NewGenerator(client, nil, ai.GeneratorConfig{
		Model:       cfg.Generator.Model,
		Temperature: cfg.Generator.Temperature,
		MinInterval: cfg.Generator.MinInterval,
	}, log.Logger)

	var mirror *library.Mirror
	if cfg.Mirror.Enabled() {
		mirror = library.NewMirror(library.MirrorConfig{
			BaseURL: cfg.Mirror.BaseURL,
			APIKey:  cfg.Mirror.APIKey,
			Timeout: cfg.Mirror.HTTPTimeout,
		}, log.Logger)
	}

	filler := library.NewFiller(generator, store, mirror, log.Logger)
	summary := filler.Run(ctx, library.FillOptions{
		Category:    cat,
		Difficulty:  diff,
		Tone:        trivia.Tone(*tone),
		Amount:      *amount,
		Delay:       *delay,
		SyncToCloud: *sync,
	})

	evt := log.Info()
	if summary.Cancelled {
		evt = log.Warn().Bool("cancelled", true)
	}
	evt.
		Int("requested", summary.Requested).
		Int("processed", summary.Processed).
		Int("inserted", summary.Inserted).
		Int("duplicates", summary.Duplicates).
		Int("errors", summary.Errors).
		Msg("fill run complete")
}
