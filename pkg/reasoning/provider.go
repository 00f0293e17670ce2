package reasoning

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const (
	ProviderAuto      = ""
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderNone      = "none"
)

type Config struct {
	Logger *slog.Logger

	// Provider selects the backend. Empty picks anthropic when its key is
	// set, then openai.
	Provider        string
	AnthropicAPIKey string
	OpenAIAPIKey    string
	Model           string
	BaseURL         string
	Timeout         time.Duration
}

func (cfg *Config) Validate() error {
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	switch cfg.Provider {
	case ProviderAuto, ProviderAnthropic, ProviderOpenAI, ProviderNone:
	default:
		return fmt.Errorf("unknown reasoning provider %q (want anthropic, openai or none)", cfg.Provider)
	}
	if cfg.Timeout < 0 {
		return errors.New("timeout must be non-negative")
	}
	return nil
}

// New builds the configured Service. A missing credential is not an error:
// it yields Unconfigured, so every call reports ErrNotConfigured.
func New(cfg Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate reasoning config: %w", err)
	}

	provider := cfg.Provider
	if provider == ProviderAuto {
		switch {
		case cfg.AnthropicAPIKey != "":
			provider = ProviderAnthropic
		case cfg.OpenAIAPIKey != "":
			provider = ProviderOpenAI
		default:
			return unconfigured(cfg.Logger, "no ANTHROPIC_API_KEY or OPENAI_API_KEY found"), nil
		}
	}

	var client LLMClient
	switch provider {
	case ProviderNone:
		return unconfigured(cfg.Logger, "reasoning provider disabled"), nil
	case ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return unconfigured(cfg.Logger, "ANTHROPIC_API_KEY is not set"), nil
		}
		client = NewAnthropicClient(cfg.Logger, cfg.AnthropicAPIKey, cfg.Model)
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return unconfigured(cfg.Logger, "OPENAI_API_KEY is not set"), nil
		}
		c, err := NewOpenAIClient(OpenAIConfig{
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create openai client: %w", err)
		}
		client = c
	}

	svc, err := NewLLMService(LLMServiceConfig{
		Logger:   cfg.Logger,
		Client:   client,
		Provider: provider,
		Timeout:  cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}
	cfg.Logger.Info("reasoning: provider configured", "provider", provider, "model", cfg.Model)
	return svc, nil
}

func unconfigured(log *slog.Logger, reason string) Unconfigured {
	log.Warn("reasoning: service not configured, translation and summarization are unavailable", "reason", reason)
	return Unconfigured{Reason: reason}
}
