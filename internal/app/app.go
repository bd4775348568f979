package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/dustinbroussard/trivia-sass-attack/internal/ai"
	"github.com/dustinbroussard/trivia-sass-attack/internal/bank"
	"github.com/dustinbroussard/trivia-sass-attack/internal/config"
	"github.com/dustinbroussard/trivia-sass-attack/internal/game"
	"github.com/dustinbroussard/trivia-sass-attack/internal/library"
	"github.com/dustinbroussard/trivia-sass-attack/internal/logging"
	"github.com/dustinbroussard/trivia-sass-attack/internal/server"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server
}

// New bootstraps config, logger, optional Postgres and Redis, the
// question services, and the HTTP server. Postgres and Redis are both
// optional: without them the app runs on in-process stand-ins, and
// without an OpenRouter key it runs entirely on local question stock.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	app := &Application{cfg: cfg, logger: logger}

	var store library.Store = library.NewMemoryStore()
	if cfg.Postgres.Enabled() {
		pool, err := pgxpool.New(ctx, cfg.Postgres.DSN()+"&pool_max_conns=10")
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		app.pool = pool
		store = library.NewPostgresStore(pool)
	} else {
		logger.Warn().Msg("postgres not configured; question library is in-memory only")
	}

	var cache ai.QuestionCache
	var snapshots game.SnapshotStore = game.NewMemorySnapshots()
	if cfg.Redis.Enabled() {
		app.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		cache = ai.NewRedisCache(app.redis, cfg.Generator.CacheTTL)
		snapshots = game.NewRedisSnapshots(app.redis, 0)
	} else {
		logger.Warn().Msg("redis not configured; cache and snapshots are in-process")
	}

	var generator *ai.Generator
	var questionBank *bank.Bank
	if cfg.OpenRouter.APIKey != "" {
		client := ai.NewClient(ai.ClientConfig{
			BaseURL: cfg.OpenRouter.BaseURL,
			APIKey:  cfg.OpenRouter.APIKey,
			Referer: cfg.OpenRouter.Referer,
			Title:   cfg.OpenRouter.Title,
			Timeout: cfg.OpenRouter.HTTPTimeout,
		}, logger)
		generator = ai.NewGenerator(client, cache, ai.GeneratorConfig{
			Model:       cfg.Generator.Model,
			Temperature: cfg.Generator.Temperature,
			MinInterval: cfg.Generator.MinInterval,
		}, logger)
		questionBank = bank.New(client, bank.Config{
			Models:        cfg.Bank.Models,
			BatchSize:     cfg.Bank.BatchSize,
			FailThreshold: cfg.Bank.FailThreshold,
			Cooldown:      cfg.Bank.Cooldown,
		}, logger)
	} else {
		logger.Warn().Msg("no OpenRouter key; generation disabled, bank recycles local stock")
		questionBank = bank.New(nil, bank.Config{}, logger)
	}

	bankLogger := logger.With().Str("component", "bank_events").Logger()
	questionBank.Subscribe(func(evt bank.Event) {
		bankLogger.Debug().
			Str("category", string(evt.Category)).
			Str("phase", string(evt.Phase)).
			Str("source", evt.Source).
			Str("model", evt.Model).
			Msg("bank refill event")
	})

	gameSvc := game.NewService(ctx, questionBank, snapshots, logger)

	app.http = server.NewHTTPServer(cfg, logger, server.Deps{
		Game:      gameSvc,
		Bank:      questionBank,
		Library:   store,
		Generator: generator,
	})
	return app, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	if a.pool != nil {
		a.pool.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error().Err(err).Msg("redis shutdown error")
		}
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}
