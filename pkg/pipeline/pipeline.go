package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/jonboulle/clockwork"

	"github.com/malbeclabs/nlquery/pkg/metrics"
	"github.com/malbeclabs/nlquery/pkg/querier"
	"github.com/malbeclabs/nlquery/pkg/reasoning"
	"github.com/malbeclabs/nlquery/pkg/schema"
)

const defaultBatchConcurrency = 4

// Querier executes a generated query against the store.
type Querier interface {
	Query(ctx context.Context, query string, args ...any) (querier.Result, error)
}

// State is a step of a single pipeline run.
type State int

const (
	StateStart State = iota
	StateTranslated
	StateExecuted
	StateDone
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateTranslated:
		return "translated"
	case StateExecuted:
		return "executed"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Outcome is the result of one question. Success is true exactly when Error
// is nil; on failure NaturalResponse holds a user-safe apology.
type Outcome struct {
	NaturalQuery      string        `json:"natural_query"`
	SQLQuery          *string       `json:"sql_query"`
	AdditionalContext *string       `json:"additional_context"`
	Columns           []string      `json:"columns"`
	Results           []querier.Row `json:"results"`
	RowCount          int           `json:"row_count"`
	NaturalResponse   string        `json:"natural_response"`
	Success           bool          `json:"success"`
	Error             *string       `json:"error"`
	ElapsedMS         int64         `json:"elapsed_ms"`

	err error
}

// Err returns the stage error of a failed run, suitable for errors.Is.
func (o Outcome) Err() error {
	return o.err
}

type Config struct {
	Logger     *slog.Logger
	Reasoning  reasoning.Service
	Querier    Querier
	Schema     schema.Description
	Dialect    string
	Vocabulary *Vocabulary
	Clock      clockwork.Clock
}

func (cfg *Config) Validate() error {
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if cfg.Reasoning == nil {
		return errors.New("reasoning service is required")
	}
	if cfg.Querier == nil {
		return errors.New("querier is required")
	}
	if cfg.Dialect == "" {
		return errors.New("dialect is required")
	}
	if cfg.Vocabulary == nil {
		vocab, err := DefaultVocabulary()
		if err != nil {
			return err
		}
		cfg.Vocabulary = vocab
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	return nil
}

// Pipeline runs translate, execute and summarize for a question.
type Pipeline struct {
	log        *slog.Logger
	cfg        Config
	translator *Translator
	summarizer *Summarizer
}

func New(cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate pipeline config: %w", err)
	}
	translator, err := NewTranslator(TranslatorConfig{
		Logger:     cfg.Logger,
		Reasoning:  cfg.Reasoning,
		Schema:     cfg.Schema,
		Dialect:    cfg.Dialect,
		Vocabulary: cfg.Vocabulary,
	})
	if err != nil {
		return nil, err
	}
	summarizer, err := NewSummarizer(SummarizerConfig{
		Logger:     cfg.Logger,
		Reasoning:  cfg.Reasoning,
		Vocabulary: cfg.Vocabulary,
	})
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		log:        cfg.Logger,
		cfg:        cfg,
		translator: translator,
		summarizer: summarizer,
	}, nil
}

func (p *Pipeline) Translator() *Translator { return p.translator }

// Reasoning returns the reasoning service the pipeline was built with.
func (p *Pipeline) Reasoning() reasoning.Service { return p.cfg.Reasoning }

func (p *Pipeline) Schema() schema.Description { return p.cfg.Schema }

func (p *Pipeline) Vocabulary() *Vocabulary { return p.cfg.Vocabulary }

// Run answers a single question. It never returns an error; failures are
// encoded in the Outcome.
func (p *Pipeline) Run(ctx context.Context, question string) Outcome {
	start := p.cfg.Clock.Now()
	out := Outcome{NaturalQuery: question}

	var (
		tr     Translation
		result querier.Result
		err    error
	)

	state := StateStart
	for state != StateDone {
		stageStart := p.cfg.Clock.Now()
		switch state {
		case StateStart:
			tr, err = p.translator.Translate(ctx, question)
			p.observe("translate", stageStart)
			if err != nil {
				state = StateDone
				break
			}
			out.SQLQuery = &tr.Query
			out.AdditionalContext = &tr.SupplementaryContext
			state = StateTranslated

		case StateTranslated:
			result, err = p.cfg.Querier.Query(ctx, tr.Query)
			p.observe("execute", stageStart)
			if err != nil {
				err = fmt.Errorf("%w: %w", ErrExecution, err)
				state = StateDone
				break
			}
			out.Columns = result.Columns
			out.Results = result.Rows
			out.RowCount = len(result.Rows)
			state = StateExecuted

		case StateExecuted:
			out.NaturalResponse = p.summarizer.Summarize(ctx, question, tr.Query, result, tr.SupplementaryContext)
			p.observe("summarize", stageStart)
			state = StateDone
		}
		p.log.Debug("pipeline: transition", "state", state.String(), "error", err)
	}

	if err != nil {
		msg := err.Error()
		out.Error = &msg
		out.NaturalResponse = apology(err)
		out.err = err
	}
	out.Success = err == nil
	out.ElapsedMS = p.cfg.Clock.Since(start).Milliseconds()

	metrics.PipelineRunsTotal.WithLabelValues(resultLabel(err)).Inc()
	p.log.Info("pipeline: run finished", "success", out.Success, "rows", out.RowCount, "elapsed_ms", out.ElapsedMS)
	return out
}

// RunBatch answers independent questions concurrently and returns the
// outcomes in input order.
func (p *Pipeline) RunBatch(ctx context.Context, questions []string, concurrency int) []Outcome {
	if len(questions) == 0 {
		return []Outcome{}
	}
	if concurrency <= 0 {
		concurrency = defaultBatchConcurrency
	}

	pool := pond.NewResultPool[Outcome](concurrency)
	defer pool.StopAndWait()

	group := pool.NewGroupContext(ctx)
	for _, q := range questions {
		group.Submit(func() Outcome {
			return p.Run(ctx, q)
		})
	}

	outcomes, err := group.Wait()
	if err != nil {
		// Only a cancelled context ends the group early; fill the gaps so the
		// result stays aligned with the input.
		p.log.Warn("pipeline: batch interrupted", "error", err)
		filled := make([]Outcome, len(questions))
		for i, q := range questions {
			if i < len(outcomes) && (outcomes[i].Success || outcomes[i].Error != nil) {
				filled[i] = outcomes[i]
				continue
			}
			filled[i] = p.cancelled(q, err)
		}
		return filled
	}
	return outcomes
}

func (p *Pipeline) cancelled(question string, cause error) Outcome {
	err := fmt.Errorf("%w: %w", ErrReasoningUnavailable, cause)
	msg := err.Error()
	metrics.PipelineRunsTotal.WithLabelValues(resultLabel(err)).Inc()
	return Outcome{
		NaturalQuery:    question,
		NaturalResponse: apology(err),
		Error:           &msg,
		err:             err,
	}
}

func (p *Pipeline) observe(stage string, start time.Time) {
	metrics.PipelineStageDuration.WithLabelValues(stage).Observe(p.cfg.Clock.Since(start).Seconds())
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrReasoningUnavailable):
		return "reasoning_unavailable"
	case errors.Is(err, ErrTranslationMalformed):
		return "translation_malformed"
	case errors.Is(err, ErrExecution):
		return "execution_error"
	default:
		return "error"
	}
}
