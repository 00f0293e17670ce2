// Package mcpserver exposes the question pipeline as Model Context Protocol
// tools.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/malbeclabs/nlquery/pkg/catalog"
	"github.com/malbeclabs/nlquery/pkg/pipeline"
	"github.com/malbeclabs/nlquery/pkg/schema"
)

type Pipeline interface {
	Run(ctx context.Context, question string) pipeline.Outcome
	Schema() schema.Description
}

type Config struct {
	Logger   *slog.Logger
	Pipeline Pipeline
	Catalog  *catalog.Catalog
	Version  string
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
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	return nil
}

type Server struct {
	log       *slog.Logger
	cfg       Config
	mcpServer *mcp.Server
}

func New(cfg Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate mcp config: %w", err)
	}

	s := &Server{
		log: cfg.Logger,
		cfg: cfg,
		mcpServer: mcp.NewServer(&mcp.Implementation{
			Name:    "nlquery",
			Version: cfg.Version,
		}, nil),
	}

	for _, register := range []func() error{s.registerAsk, s.registerSchema, s.registerInfo} {
		if err := register(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcpServer
}

// Handler serves the tools over streamable HTTP without session state.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, &mcp.StreamableHTTPOptions{
		Stateless: true,
	})
}

// RunStdio serves the tools on stdin/stdout until ctx is done or the client
// disconnects.
func (s *Server) RunStdio(ctx context.Context) error {
	s.log.Info("mcp: serving on stdio")
	if err := s.mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to run mcp server: %w", err)
	}
	return nil
}
