package reasoning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/malbeclabs/nlquery/pkg/metrics"
)

// CompleteOptions tune a single completion.
type CompleteOptions struct {
	Temperature       float64
	MaxTokens         int64
	CacheSystemPrompt bool
}

type CompleteOption func(*CompleteOptions)

func WithTemperature(t float64) CompleteOption {
	return func(o *CompleteOptions) { o.Temperature = t }
}

func WithMaxTokens(n int64) CompleteOption {
	return func(o *CompleteOptions) { o.MaxTokens = n }
}

// WithCacheControl marks the system prompt as cacheable where the provider
// supports it. The translation instructions embed the full schema and repeat
// verbatim across calls.
func WithCacheControl() CompleteOption {
	return func(o *CompleteOptions) { o.CacheSystemPrompt = true }
}

// LLMClient is a chat-style completion endpoint.
type LLMClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, opts ...CompleteOption) (string, error)
}

const (
	translateTemperature = 0.1
	summarizeTemperature = 0.3
	defaultMaxTokens     = 800
	defaultTimeout       = 60 * time.Second
)

type LLMServiceConfig struct {
	Logger   *slog.Logger
	Client   LLMClient
	Provider string

	// Timeout bounds each call. Zero means 60s.
	Timeout   time.Duration
	MaxTokens int64
}

func (cfg *LLMServiceConfig) Validate() error {
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if cfg.Client == nil {
		return errors.New("llm client is required")
	}
	if cfg.Provider == "" {
		return errors.New("provider is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	return nil
}

// LLMService implements Service on top of a completion client.
type LLMService struct {
	log *slog.Logger
	cfg LLMServiceConfig
}

func NewLLMService(cfg LLMServiceConfig) (*LLMService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate llm service config: %w", err)
	}
	return &LLMService{log: cfg.Logger, cfg: cfg}, nil
}

func (s *LLMService) Translate(ctx context.Context, req Request) (string, error) {
	return s.call(ctx, "translate", req,
		WithTemperature(translateTemperature),
		WithMaxTokens(s.cfg.MaxTokens),
		WithCacheControl(),
	)
}

func (s *LLMService) Summarize(ctx context.Context, req Request) (string, error) {
	return s.call(ctx, "summarize", req,
		WithTemperature(summarizeTemperature),
		WithMaxTokens(s.cfg.MaxTokens),
	)
}

func (s *LLMService) call(ctx context.Context, operation string, req Request, opts ...CompleteOption) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	out, err := s.cfg.Client.Complete(ctx, req.Instructions, req.TaskInput, opts...)
	duration := time.Since(start)
	metrics.ReasoningCallDuration.WithLabelValues(s.cfg.Provider, operation).Observe(duration.Seconds())

	if err != nil {
		metrics.ReasoningCallsTotal.WithLabelValues(s.cfg.Provider, operation, "error").Inc()
		s.log.Warn("reasoning: call failed", "provider", s.cfg.Provider, "operation", operation, "duration", duration, "error", err)
		return "", fmt.Errorf("%s call to %s failed: %w", operation, s.cfg.Provider, err)
	}
	metrics.ReasoningCallsTotal.WithLabelValues(s.cfg.Provider, operation, "ok").Inc()
	s.log.Debug("reasoning: call completed", "provider", s.cfg.Provider, "operation", operation, "duration", duration, "responseLen", len(out))
	return strings.TrimSpace(out), nil
}
