package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"local"`

	// LLM provider
	LLMAPIKey         string        `env:"LLM_API_KEY"`
	LLMModel          string        `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	LLMBaseURL        string        `env:"LLM_BASE_URL"`
	RateLimitRPS      float64       `env:"RATE_LIMIT_RPS" envDefault:"1"`
	SingleCallTimeout time.Duration `env:"SINGLE_CALL_TIMEOUT" envDefault:"30s"`
	BatchCallTimeout  time.Duration `env:"BATCH_CALL_TIMEOUT" envDefault:"300s"`

	// Batch processing
	MaxBatchSize     int `env:"MAX_BATCH_SIZE" envDefault:"20"`
	MaxContentLength int `env:"MAX_CONTENT_LENGTH" envDefault:"48000"`
	MaxConcurrency   int `env:"MAX_CONCURRENCY" envDefault:"5"`

	// Cache
	CacheTTL     time.Duration `env:"CACHE_TTL" envDefault:"24h"`
	CacheMaxSize int           `env:"CACHE_MAX_SIZE" envDefault:"10000"`

	// Output
	SummaryStyle string `env:"SUMMARY_STYLE" envDefault:"short_paragraph"`

	// Collector
	Feeds            []string      `env:"FEEDS" envSeparator:","`
	FeedFetchLimit   int           `env:"FEED_FETCH_LIMIT" envDefault:"20"`
	FetchFullContent bool          `env:"FETCH_FULL_CONTENT" envDefault:"false"`
	WebFetchTimeout  time.Duration `env:"WEB_FETCH_TIMEOUT" envDefault:"30s"`

	// Storage
	SQLitePath string `env:"SQLITE_PATH" envDefault:"./contentpipe.db"`

	// Observability
	MetricsPort int `env:"METRICS_PORT" envDefault:"0"`
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	return cfg, nil
}
