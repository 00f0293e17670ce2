package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/malbeclabs/nlquery/pkg/querier"
	"github.com/malbeclabs/nlquery/pkg/reasoning"
	"github.com/malbeclabs/nlquery/pkg/schema"
	"github.com/malbeclabs/nlquery/pkg/store"
)

type SetupConfig struct {
	Logger         *slog.Logger
	DB             store.DB
	Reasoning      reasoning.Service
	AllowWrites    bool
	VocabularyFile string
	Clock          clockwork.Clock
}

func (cfg *SetupConfig) Validate() error {
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if cfg.DB == nil {
		return errors.New("database is required")
	}
	if cfg.Reasoning == nil {
		cfg.Reasoning = reasoning.Unconfigured{}
	}
	return nil
}

// Setup describes the store once and wires a pipeline over it.
func Setup(ctx context.Context, cfg SetupConfig) (*Pipeline, *querier.Querier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("failed to validate setup config: %w", err)
	}

	desc, err := schema.Describe(ctx, cfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to describe schema: %w", err)
	}

	q, err := querier.New(querier.Config{
		Logger:      cfg.Logger,
		DB:          cfg.DB,
		AllowWrites: cfg.AllowWrites,
	})
	if err != nil {
		return nil, nil, err
	}

	vocab, err := LoadVocabulary(cfg.VocabularyFile)
	if err != nil {
		return nil, nil, err
	}

	p, err := New(Config{
		Logger:     cfg.Logger,
		Reasoning:  cfg.Reasoning,
		Querier:    q,
		Schema:     desc,
		Dialect:    cfg.DB.Dialect().Name(),
		Vocabulary: vocab,
		Clock:      cfg.Clock,
	})
	if err != nil {
		return nil, nil, err
	}
	return p, q, nil
}
