package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/malbeclabs/nlquery/pkg/metrics"
	"github.com/malbeclabs/nlquery/pkg/pipeline/prompts"
	"github.com/malbeclabs/nlquery/pkg/querier"
	"github.com/malbeclabs/nlquery/pkg/reasoning"
)

const (
	// SampleLimit bounds the rows handed to the reasoning service.
	SampleLimit = 10

	DegradedNotConfigured = "Cannot generate natural language response: reasoning service not configured."
	DegradedNoAnswer      = "Cannot generate natural language response: the reasoning service did not return an answer."
)

type SummarizerConfig struct {
	Logger     *slog.Logger
	Reasoning  reasoning.Service
	Vocabulary *Vocabulary
}

func (cfg *SummarizerConfig) Validate() error {
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if cfg.Reasoning == nil {
		return errors.New("reasoning service is required")
	}
	if cfg.Vocabulary == nil {
		return errors.New("vocabulary is required")
	}
	return nil
}

// Summarizer turns query results into a prose answer. It never fails; a
// reasoning failure degrades to a fixed explanatory string.
type Summarizer struct {
	log          *slog.Logger
	svc          reasoning.Service
	instructions string
}

func NewSummarizer(cfg SummarizerConfig) (*Summarizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate summarizer config: %w", err)
	}
	tmpl, err := prompts.PromptsFS.ReadFile("SUMMARIZE.md")
	if err != nil {
		return nil, fmt.Errorf("failed to read summarize prompt: %w", err)
	}
	instructions := strings.ReplaceAll(string(tmpl), "{{DOMAIN_CONTEXT}}", strings.TrimSpace(cfg.Vocabulary.Context))
	return &Summarizer{
		log:          cfg.Logger,
		svc:          cfg.Reasoning,
		instructions: instructions,
	}, nil
}

type resultsSummary struct {
	RowCount   int           `json:"row_count"`
	Columns    []string      `json:"columns"`
	SampleData []querier.Row `json:"sample_data"`
}

func (s *Summarizer) Summarize(ctx context.Context, question, query string, result querier.Result, supplementary string) string {
	input, err := summaryInput(question, query, result, supplementary)
	if err != nil {
		s.log.Warn("pipeline: failed to build summary input", "error", err)
		metrics.SummariesDegradedTotal.Inc()
		return DegradedNoAnswer
	}

	answer, err := s.svc.Summarize(ctx, reasoning.Request{
		Instructions: s.instructions,
		TaskInput:    input,
	})
	if err != nil {
		metrics.SummariesDegradedTotal.Inc()
		if errors.Is(err, reasoning.ErrNotConfigured) {
			return DegradedNotConfigured
		}
		s.log.Warn("pipeline: summarization failed", "error", err)
		return DegradedNoAnswer
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		metrics.SummariesDegradedTotal.Inc()
		return DegradedNoAnswer
	}
	return answer
}

func summaryInput(question, query string, result querier.Result, supplementary string) (string, error) {
	sample := result.Rows
	if len(sample) > SampleLimit {
		sample = sample[:SampleLimit]
	}
	if sample == nil {
		sample = []querier.Row{}
	}
	columns := result.Columns
	if columns == nil {
		columns = []string{}
	}

	summary, err := json.MarshalIndent(resultsSummary{
		RowCount:   len(result.Rows),
		Columns:    columns,
		SampleData: sample,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal results summary: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Original question: %q\n", question)
	fmt.Fprintf(&sb, "SQL query used: %s\n", query)
	fmt.Fprintf(&sb, "Additional context: %s\n", supplementary)
	fmt.Fprintf(&sb, "Results summary: %s\n\n", summary)
	sb.WriteString("Please provide a comprehensive natural language answer using both the SQL results and additional context. Perform any necessary calculations using the provided information.")
	return sb.String(), nil
}
