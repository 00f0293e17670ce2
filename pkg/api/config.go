package api

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/malbeclabs/nlquery/pkg/catalog"
	"github.com/malbeclabs/nlquery/pkg/pipeline"
	"github.com/malbeclabs/nlquery/pkg/psql"
	"github.com/malbeclabs/nlquery/pkg/reasoning"
)

const (
	DefaultInfoCacheTTL      = 30 * time.Second
	DefaultReadHeaderTimeout = 30 * time.Second
	DefaultShutdownTimeout   = 10 * time.Second
)

// Pipeline is the question pipeline the API serves.
type Pipeline interface {
	Run(ctx context.Context, question string) pipeline.Outcome
	Reasoning() reasoning.Service
}

// Pinger reports store connectivity for /health and /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	Logger   *slog.Logger
	Pipeline Pipeline
	Catalog  *catalog.Catalog
	DB       Pinger

	HTTPListener net.Listener

	// PostgresListener and Psql enable the wire frontend when both are set.
	PostgresListener net.Listener
	Psql             *psql.Server

	// MCP is mounted at /mcp when set.
	MCP http.Handler

	AllowedOrigins    []string
	InfoCacheTTL      time.Duration
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

func (cfg *Config) Validate() error {
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if cfg.Pipeline == nil {
		return errors.New("pipeline is required")
	}
	if cfg.Catalog == nil {
		return errors.New("catalog is required")
	}
	if cfg.DB == nil {
		return errors.New("database is required")
	}
	if cfg.PostgresListener != nil && cfg.Psql == nil {
		return errors.New("psql server is required when a postgres listener is set")
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	if cfg.InfoCacheTTL <= 0 {
		cfg.InfoCacheTTL = DefaultInfoCacheTTL
	}
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	return nil
}
