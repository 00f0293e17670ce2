// Package app wires the store, reasoning service, pipeline and catalog from
// a resolved config. Both binaries start from here.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/malbeclabs/nlquery/pkg/catalog"
	"github.com/malbeclabs/nlquery/pkg/config"
	"github.com/malbeclabs/nlquery/pkg/pipeline"
	"github.com/malbeclabs/nlquery/pkg/querier"
	"github.com/malbeclabs/nlquery/pkg/reasoning"
	"github.com/malbeclabs/nlquery/pkg/store"
	"github.com/malbeclabs/nlquery/pkg/store/seed"
)

type Options struct {
	// Provision seeds the construction dataset when the store has no
	// stories table yet.
	Provision bool
}

type App struct {
	log *slog.Logger

	DB        *store.SQLDB
	Reasoning reasoning.Service
	Pipeline  *pipeline.Pipeline
	Querier   *querier.Querier
	Catalog   *catalog.Catalog
}

func New(ctx context.Context, log *slog.Logger, cfg *config.Config, opts Options) (*App, error) {
	if log == nil {
		return nil, errors.New("logger is required")
	}
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	db, err := store.Open(ctx, cfg.Store(log))
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	a := &App{log: log, DB: db}
	log.Info("app: using store", "driver", cfg.DBDriver, "dsn", store.RedactDSN(cfg.DBDSN))

	if opts.Provision {
		if err := a.provision(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}

	a.Reasoning, err = reasoning.New(cfg.Reasoning(log))
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Pipeline, a.Querier, err = pipeline.Setup(ctx, pipeline.SetupConfig{
		Logger:         log,
		DB:             db,
		Reasoning:      a.Reasoning,
		AllowWrites:    cfg.AllowWrites,
		VocabularyFile: cfg.VocabularyFile,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to set up pipeline: %w", err)
	}

	a.Catalog, err = catalog.New(catalog.Config{Logger: log, DB: db})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create catalog: %w", err)
	}
	return a, nil
}

func (a *App) provision(ctx context.Context) error {
	ok, err := seed.Provisioned(ctx, a.DB)
	if err != nil {
		return fmt.Errorf("failed to inspect store: %w", err)
	}
	if ok {
		a.log.Debug("app: store already provisioned")
		return nil
	}
	if err := seed.Provision(ctx, seed.Config{Logger: a.log, DB: a.DB}); err != nil {
		return fmt.Errorf("failed to provision store: %w", err)
	}
	return nil
}

func (a *App) Close() {
	if err := a.DB.Close(); err != nil {
		a.log.Error("app: failed to close store", "error", err)
	}
}
