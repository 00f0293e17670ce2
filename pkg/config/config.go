// Package config resolves runtime configuration from the environment,
// after loading any .env files found on the search path.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/malbeclabs/nlquery/pkg/reasoning"
	"github.com/malbeclabs/nlquery/pkg/store"
)

const (
	DefaultDuckDBPath   = "construction_project.duckdb"
	DefaultInfoCacheTTL = 30 * time.Second
)

type Config struct {
	DBDriver store.Driver
	DBDSN    string

	ReasoningProvider string
	AnthropicAPIKey   string
	OpenAIAPIKey      string
	ReasoningModel    string
	ReasoningBaseURL  string
	ReasoningTimeout  time.Duration

	AllowWrites    bool
	VocabularyFile string
	InfoCacheTTL   time.Duration
}

// EnvFiles returns the .env search path: the explicit file first, then the
// working directory, then the home directory.
func EnvFiles(explicit string) []string {
	var files []string
	if explicit != "" {
		files = append(files, explicit)
	}
	files = append(files, ".env")
	if home, err := os.UserHomeDir(); err == nil {
		files = append(files, filepath.Join(home, ".env"))
	}
	return files
}

// LoadEnvFiles loads every existing file from EnvFiles into the process
// environment. Variables that are already set are never overridden, so
// earlier files take precedence over later ones.
func LoadEnvFiles(explicit string) ([]string, error) {
	var loaded []string
	for _, path := range EnvFiles(explicit) {
		if _, err := os.Stat(path); err != nil {
			if path == explicit {
				return loaded, fmt.Errorf("env file %s: %w", path, err)
			}
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return loaded, fmt.Errorf("failed to load env file %s: %w", path, err)
		}
		loaded = append(loaded, path)
	}
	return loaded, nil
}

// LoadFromEnv reads NLQUERY_* and provider credential variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		DBDriver:          store.Driver(getenv("NLQUERY_DB_DRIVER", string(store.DriverDuckDB))),
		DBDSN:             os.Getenv("NLQUERY_DB_DSN"),
		ReasoningProvider: os.Getenv("NLQUERY_REASONING_PROVIDER"),
		AnthropicAPIKey:   os.Getenv("ANTHROPIC_API_KEY"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		ReasoningModel:    os.Getenv("NLQUERY_REASONING_MODEL"),
		ReasoningBaseURL:  os.Getenv("NLQUERY_REASONING_BASE_URL"),
		VocabularyFile:    os.Getenv("NLQUERY_VOCABULARY_FILE"),
		InfoCacheTTL:      DefaultInfoCacheTTL,
	}

	if _, err := store.DialectFor(cfg.DBDriver); err != nil {
		return nil, fmt.Errorf("NLQUERY_DB_DRIVER: %w", err)
	}
	if cfg.DBDSN == "" {
		if cfg.DBDriver != store.DriverDuckDB {
			return nil, fmt.Errorf("NLQUERY_DB_DSN is required for driver %s", cfg.DBDriver)
		}
		cfg.DBDSN = DefaultDuckDBPath
	}

	if v := os.Getenv("NLQUERY_REASONING_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("NLQUERY_REASONING_TIMEOUT: %w", err)
		}
		cfg.ReasoningTimeout = d
	}
	if v := os.Getenv("NLQUERY_INFO_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("NLQUERY_INFO_CACHE_TTL: %w", err)
		}
		cfg.InfoCacheTTL = d
	}
	if v := os.Getenv("NLQUERY_ALLOW_WRITES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("NLQUERY_ALLOW_WRITES: %w", err)
		}
		cfg.AllowWrites = b
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	if cfg.ReasoningTimeout < 0 {
		return errors.New("reasoning timeout must be non-negative")
	}
	if cfg.InfoCacheTTL < 0 {
		return errors.New("info cache ttl must be non-negative")
	}
	return nil
}

func (cfg *Config) Store(log *slog.Logger) store.Config {
	return store.Config{
		Logger: log,
		Driver: cfg.DBDriver,
		DSN:    cfg.DBDSN,
	}
}

func (cfg *Config) Reasoning(log *slog.Logger) reasoning.Config {
	return reasoning.Config{
		Logger:          log,
		Provider:        cfg.ReasoningProvider,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		Model:           cfg.ReasoningModel,
		BaseURL:         cfg.ReasoningBaseURL,
		Timeout:         cfg.ReasoningTimeout,
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
