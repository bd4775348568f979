package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"trivia-sass-attack"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Postgres   Postgres
	Redis      Redis
	OpenRouter OpenRouter
	Generator  Generator
	Bank       Bank
	Mirror     Mirror
}

// Postgres captures connection info for the question library database.
// An empty host means run without durable storage (in-memory library).
type Postgres struct {
	Host     string `env:"PG_HOST"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER"`
	Password string `env:"PG_PASSWORD"`
	Database string `env:"PG_DATABASE"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
}

// Enabled reports whether a database was configured at all.
func (p Postgres) Enabled() bool { return p.Host != "" }

// DSN renders the pgx connection string.
func (p Postgres) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

// Redis holds cache + snapshot configuration. An empty addr means run
// with in-process stand-ins.
type Redis struct {
	Addr     string `env:"REDIS_ADDR"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// Enabled reports whether Redis was configured at all.
func (r Redis) Enabled() bool { return r.Addr != "" }

// OpenRouter configures the upstream chat-completions endpoint. Without
// an API key the app stays fully playable on local question stock.
type OpenRouter struct {
	APIKey      string        `env:"OPENROUTER_API_KEY"`
	BaseURL     string        `env:"OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	Referer     string        `env:"OPENROUTER_REFERER" envDefault:"https://trivia-sass-attack.app"`
	Title       string        `env:"OPENROUTER_TITLE" envDefault:"Trivia Sass Attack"`
	HTTPTimeout time.Duration `env:"OPENROUTER_HTTP_TIMEOUT" envDefault:"30s"`
}

// Generator governs single-question generation behavior.
type Generator struct {
	Model       string        `env:"GENERATOR_MODEL" envDefault:"google/gemini-2.0-flash-001"`
	Temperature float64       `env:"GENERATOR_TEMPERATURE" envDefault:"0.7"`
	MinInterval time.Duration `env:"GENERATOR_MIN_INTERVAL" envDefault:"1s"`
	CacheTTL    time.Duration `env:"GENERATOR_CACHE_TTL" envDefault:"24h"`
}

// Bank governs batch refills of the in-play question pools.
type Bank struct {
	Models        []string      `env:"BANK_MODELS" envSeparator:","`
	BatchSize     int           `env:"BANK_BATCH_SIZE" envDefault:"6"`
	FailThreshold int           `env:"BANK_FAIL_THRESHOLD" envDefault:"3"`
	Cooldown      time.Duration `env:"BANK_COOLDOWN" envDefault:"1m"`
}

// Mirror configures the optional cloud question mirror.
type Mirror struct {
	BaseURL     string        `env:"MIRROR_BASE_URL"`
	APIKey      string        `env:"MIRROR_API_KEY"`
	HTTPTimeout time.Duration `env:"MIRROR_HTTP_TIMEOUT" envDefault:"10s"`
}

// Enabled reports whether a mirror endpoint was configured.
func (m Mirror) Enabled() bool { return m.BaseURL != "" }

// Load parses environment variables into App config.
func Load() (*App, error) {
	cfg := &App{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
