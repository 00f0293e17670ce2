package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jellydator/ttlcache/v3"

	"github.com/malbeclabs/nlquery/pkg/catalog"
	"github.com/malbeclabs/nlquery/pkg/reasoning"
)

const (
	healthMessage  = "Construction Project API Server is running"
	pingTimeout    = 5 * time.Second
	catalogTimeout = 10 * time.Second
)

type QueryRequest struct {
	Query *string `json:"query"`
}

type errorResponse struct {
	Success         bool   `json:"success"`
	Error           string `json:"error"`
	NaturalResponse string `json:"natural_response,omitempty"`
}

type HealthResponse struct {
	Status              string `json:"status"`
	DatabaseConnected   bool   `json:"database_connected"`
	ReasoningConfigured bool   `json:"reasoning_configured"`
	Message             string `json:"message"`
}

func (s *Server) queryHandler(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:           "No query provided",
			NaturalResponse: "Please provide a query in your request.",
		})
		return
	}

	question := strings.TrimSpace(*req.Query)
	if question == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:           "Empty query",
			NaturalResponse: "Please provide a non-empty query.",
		})
		return
	}

	s.log.Info("server: received query", "query", question)
	out := s.cfg.Pipeline.Run(r.Context(), question)
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:              "healthy",
		DatabaseConnected:   s.cfg.DB.Ping(ctx) == nil,
		ReasoningConfigured: reasoning.Configured(s.cfg.Pipeline.Reasoning()),
		Message:             healthMessage,
	})
}

func (s *Server) healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok\n")); err != nil {
		s.log.Error("server: failed to write healthz response", "error", err)
	}
}

func (s *Server) readyzHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := s.cfg.DB.Ping(ctx); err != nil {
		s.log.Debug("server: readyz: database not ready", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		if _, err := w.Write([]byte("database not ready\n")); err != nil {
			s.log.Error("server: failed to write readyz response", "error", err)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok\n")); err != nil {
		s.log.Error("server: failed to write readyz response", "error", err)
	}
}

func (s *Server) infoHandler(w http.ResponseWriter, r *http.Request) {
	if item := s.infoCache.Get(infoCacheKey); item != nil {
		s.writeJSON(w, http.StatusOK, item.Value())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), catalogTimeout)
	defer cancel()

	info, err := s.cfg.Catalog.Info(ctx)
	if err != nil {
		s.writeCatalogError(w, err)
		return
	}
	s.infoCache.Set(infoCacheKey, info, ttlcache.DefaultTTL)
	s.writeJSON(w, http.StatusOK, info)
}

func (s *Server) storiesHandler(w http.ResponseWriter, r *http.Request) {
	serveCatalog(s, w, r, s.cfg.Catalog.Stories)
}

func (s *Server) storySummaryHandler(w http.ResponseWriter, r *http.Request) {
	serveCatalog(s, w, r, s.cfg.Catalog.StorySummary)
}

func (s *Server) storyHandler(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	serveCatalog(s, w, r, func(ctx context.Context) (catalog.Story, error) {
		return s.cfg.Catalog.Story(ctx, code)
	})
}

func (s *Server) elementsHandler(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	serveCatalog(s, w, r, func(ctx context.Context) ([]catalog.Element, error) {
		return s.cfg.Catalog.Elements(ctx, category)
	})
}

func (s *Server) elementTotalsHandler(w http.ResponseWriter, r *http.Request) {
	serveCatalog(s, w, r, s.cfg.Catalog.ElementTotals)
}

func (s *Server) elementHandler(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	serveCatalog(s, w, r, func(ctx context.Context) (catalog.Element, error) {
		return s.cfg.Catalog.Element(ctx, code)
	})
}

func (s *Server) categoriesHandler(w http.ResponseWriter, r *http.Request) {
	serveCatalog(s, w, r, s.cfg.Catalog.Categories)
}

func serveCatalog[T any](s *Server, w http.ResponseWriter, r *http.Request, read func(context.Context) (T, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), catalogTimeout)
	defer cancel()

	v, err := read(ctx)
	if err != nil {
		s.writeCatalogError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, v)
}

func (s *Server) writeCatalogError(w http.ResponseWriter, err error) {
	if errors.Is(err, catalog.ErrNotFound) {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	s.log.Error("server: catalog read failed", "error", err)
	s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("server: failed to encode response", "error", err)
	}
}
