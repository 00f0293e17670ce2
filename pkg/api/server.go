// Package api exposes the question pipeline and the catalog reads over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jellydator/ttlcache/v3"

	"github.com/malbeclabs/nlquery/pkg/catalog"
	"github.com/malbeclabs/nlquery/pkg/metrics"
)

const infoCacheKey = "info"

type Server struct {
	log       *slog.Logger
	cfg       Config
	router    chi.Router
	infoCache *ttlcache.Cache[string, catalog.Info]
	httpSrv   *http.Server
}

func New(cfg Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate api config: %w", err)
	}

	s := &Server{
		log: cfg.Logger,
		cfg: cfg,
		infoCache: ttlcache.New(
			ttlcache.WithTTL[string, catalog.Info](cfg.InfoCacheTTL),
			ttlcache.WithDisableTouchOnHit[string, catalog.Info](),
		),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(cfg.Logger.Handler(), slog.LevelDebug),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(metrics.Middleware)

	r.Get("/healthz", s.healthzHandler)
	r.Get("/readyz", s.readyzHandler)

	routes := func(r chi.Router) {
		r.Post("/query", s.queryHandler)
		r.Get("/health", s.healthHandler)
		r.Get("/info", s.infoHandler)

		r.Get("/stories", s.storiesHandler)
		r.Get("/stories/summary", s.storySummaryHandler)
		r.Get("/stories/{code}", s.storyHandler)
		r.Get("/elements", s.elementsHandler)
		r.Get("/elements/totals", s.elementTotalsHandler)
		r.Get("/elements/{code}", s.elementHandler)
		r.Get("/categories", s.categoriesHandler)
	}
	r.Group(routes)
	r.Route("/api", routes)

	if cfg.MCP != nil {
		r.Handle("/mcp", cfg.MCP)
		r.Handle("/mcp/*", cfg.MCP)
	}

	s.router = r
	s.httpSrv = &http.Server{
		Handler:           r,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		// Reasoning calls dominate request time.
		ReadTimeout:    60 * time.Second,
		WriteTimeout:   150 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	return s, nil
}

// Handler returns the router, for tests and for embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run(ctx context.Context) error {
	if s.cfg.HTTPListener == nil {
		return errors.New("http listener is required")
	}

	go s.infoCache.Start()
	defer s.infoCache.Stop()

	serveErrCh := make(chan error, 2)

	go func() {
		if err := s.httpSrv.Serve(s.cfg.HTTPListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("server: http server error", "error", err)
			serveErrCh <- fmt.Errorf("failed to serve HTTP: %w", err)
		}
	}()
	s.log.Info("server: http listening", "address", s.cfg.HTTPListener.Addr())

	if s.cfg.Psql != nil && s.cfg.PostgresListener != nil {
		go func() {
			if err := s.cfg.Psql.Serve(s.cfg.PostgresListener); err != nil {
				s.log.Error("server: postgres wire server error", "error", err)
				serveErrCh <- fmt.Errorf("failed to serve PostgreSQL: %w", err)
			}
		}()
		s.log.Info("server: postgres wire protocol listening", "address", s.cfg.PostgresListener.Addr())
	}

	select {
	case <-ctx.Done():
		s.log.Info("server: stopping", "reason", ctx.Err())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
		s.log.Info("server: http server shutdown complete")

		if s.cfg.Psql != nil && s.cfg.PostgresListener != nil {
			if err := s.cfg.Psql.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("failed to shutdown PostgreSQL wire server: %w", err)
			}
			s.log.Info("server: postgres wire server shutdown complete")
		}
		return nil
	case err := <-serveErrCh:
		s.log.Error("server: server error causing shutdown", "error", err)
		return err
	}
}
