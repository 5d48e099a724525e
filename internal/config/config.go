// Package config provides application configuration with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (LIBRARIAN_* and DATABASE_URL)
//  2. Config file (~/.librarian/config.yaml or ./config.yaml)
//  3. Default values
//
// The retrieval thresholds (short_query_max_tokens, far_distance_cutoff) are
// deliberately configuration values rather than constants: they are empirically
// tuned and expected to drift as the catalog changes.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrMissingAPIKey indicates a required API key is missing.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidModelName indicates the model name is empty.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidEmbedderModel indicates the embedder model is empty.
	ErrInvalidEmbedderModel = errors.New("invalid embedder model")

	// ErrInvalidTopK indicates top_k is out of range.
	ErrInvalidTopK = errors.New("invalid top_k")

	// ErrInvalidMaxCandidates indicates max_candidates is out of range.
	ErrInvalidMaxCandidates = errors.New("invalid max_candidates")

	// ErrInvalidShortQueryMaxTokens indicates short_query_max_tokens is out of range.
	ErrInvalidShortQueryMaxTokens = errors.New("invalid short_query_max_tokens")

	// ErrInvalidFarDistanceCutoff indicates far_distance_cutoff is out of range.
	ErrInvalidFarDistanceCutoff = errors.New("invalid far_distance_cutoff")

	// ErrInvalidTimeout indicates a stage timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout")

	// ErrInvalidRateLimit indicates the rate limit settings are out of range.
	ErrInvalidRateLimit = errors.New("invalid rate limit")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is empty.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the PostgreSQL database name is empty.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")
)

// Default embedder model. text-embedding-004 outputs 768 dimensions, matching
// the vector(768) column in db/migrations.
const DefaultEmbedderModel = "text-embedding-004"

// DefaultJudgeModel is the default model for the title-selection judge.
const DefaultJudgeModel = "gemini-2.5-flash"

// Config stores application configuration.
type Config struct {
	// AI provider configuration
	JudgeModel    string `mapstructure:"judge_model"`
	EmbedderModel string `mapstructure:"embedder_model"`

	// Retrieval configuration
	TopK          int `mapstructure:"top_k"`          // nearest neighbors fetched per query
	MaxCandidates int `mapstructure:"max_candidates"` // candidates shown to the judge

	// Confidence gate thresholds. A query is refused with NO_CLOSE_MATCH only
	// when it has fewer than ShortQueryMaxTokens tokens AND its best match
	// distance exceeds FarDistanceCutoff.
	ShortQueryMaxTokens int     `mapstructure:"short_query_max_tokens"`
	FarDistanceCutoff   float64 `mapstructure:"far_distance_cutoff"`

	// Per-stage timeouts
	EmbedTimeout  time.Duration `mapstructure:"embed_timeout"`
	SearchTimeout time.Duration `mapstructure:"search_timeout"`
	JudgeTimeout  time.Duration `mapstructure:"judge_timeout"`

	// Storage configuration (see storage.go)
	PostgresHost     string `mapstructure:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password"` // SENSITIVE: never logged
	PostgresDBName   string `mapstructure:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode"`

	// HTTP server
	ListenAddr string `mapstructure:"listen_addr"`

	// Per-IP rate limit on the recommend endpoint. Every admitted request
	// costs an embedding call and a judge call, so abuse is paid-provider
	// spend, not just load.
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`   // tokens refilled per second
	RateLimitBurst int     `mapstructure:"rate_limit_burst"` // maximum (and initial) tokens
	TrustProxy     bool    `mapstructure:"trust_proxy"`      // trust X-Real-IP/X-Forwarded-For

	// Catalog source for the indexing job
	CatalogPath string `mapstructure:"catalog_path"`

	// Logging
	LogJSON  bool   `mapstructure:"log_json"`
	LogLevel string `mapstructure:"log_level"` // "debug", "info", "warn", "error"
}

// Load loads configuration.
// Priority: environment variables > configuration file > defaults.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".librarian")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	setDefaults(v)

	v.SetEnvPrefix("LIBRARIAN")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using defaults",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// DATABASE_URL, if set, overrides individual postgres_* settings.
	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("judge_model", DefaultJudgeModel)
	v.SetDefault("embedder_model", DefaultEmbedderModel)

	v.SetDefault("top_k", 6)
	v.SetDefault("max_candidates", 6)
	v.SetDefault("short_query_max_tokens", 3)
	v.SetDefault("far_distance_cutoff", 0.75)

	v.SetDefault("embed_timeout", "10s")
	v.SetDefault("search_timeout", "10s")
	v.SetDefault("judge_timeout", "30s")

	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "librarian")
	v.SetDefault("postgres_password", "")
	v.SetDefault("postgres_db_name", "librarian")
	v.SetDefault("postgres_ssl_mode", "disable")

	v.SetDefault("listen_addr", "127.0.0.1:8000")
	v.SetDefault("rate_limit_rps", 1.0)
	v.SetDefault("rate_limit_burst", 60)
	v.SetDefault("trust_proxy", false)
	v.SetDefault("catalog_path", "data/book_summaries.json")

	v.SetDefault("log_json", false)
	v.SetDefault("log_level", "info")
}

// Validate checks the configuration for the recommendation core and server.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}
	if c.JudgeModel == "" {
		return fmt.Errorf("%w: judge_model is empty", ErrInvalidModelName)
	}
	if c.EmbedderModel == "" {
		return fmt.Errorf("%w: embedder_model is empty", ErrInvalidEmbedderModel)
	}
	if c.TopK < 1 || c.TopK > 50 {
		return fmt.Errorf("%w: must be 1-50, got %d", ErrInvalidTopK, c.TopK)
	}
	if c.MaxCandidates < 1 || c.MaxCandidates > c.TopK {
		return fmt.Errorf("%w: must be 1-%d, got %d", ErrInvalidMaxCandidates, c.TopK, c.MaxCandidates)
	}
	if c.ShortQueryMaxTokens < 1 {
		return fmt.Errorf("%w: must be >= 1, got %d", ErrInvalidShortQueryMaxTokens, c.ShortQueryMaxTokens)
	}
	// Cosine distance ranges over [0, 2].
	if c.FarDistanceCutoff <= 0 || c.FarDistanceCutoff > 2 {
		return fmt.Errorf("%w: must be in (0, 2], got %g", ErrInvalidFarDistanceCutoff, c.FarDistanceCutoff)
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("%w: rate_limit_rps must be positive, got %g", ErrInvalidRateLimit, c.RateLimitRPS)
	}
	if c.RateLimitBurst < 1 {
		return fmt.Errorf("%w: rate_limit_burst must be >= 1, got %d", ErrInvalidRateLimit, c.RateLimitBurst)
	}
	for name, d := range map[string]time.Duration{
		"embed_timeout":  c.EmbedTimeout,
		"search_timeout": c.SearchTimeout,
		"judge_timeout":  c.JudgeTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidTimeout, name, d)
		}
	}
	return c.validateStorage()
}

// LogConfig converts the logging settings to a log.Config-compatible level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
