package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/malbeclabs/nlquery/pkg/pipeline"
	"github.com/malbeclabs/nlquery/pkg/querier"
	"github.com/malbeclabs/nlquery/pkg/reasoning"
	"github.com/malbeclabs/nlquery/pkg/schema"
	"github.com/malbeclabs/nlquery/pkg/store/storetest"
)

type stubReasoning struct {
	mu        sync.Mutex
	translate func(req reasoning.Request) (string, error)
	summarize func(req reasoning.Request) (string, error)

	translateRequests []reasoning.Request
	summarizeRequests []reasoning.Request
}

func (s *stubReasoning) Translate(_ context.Context, req reasoning.Request) (string, error) {
	s.mu.Lock()
	s.translateRequests = append(s.translateRequests, req)
	s.mu.Unlock()
	return s.translate(req)
}

func (s *stubReasoning) Summarize(_ context.Context, req reasoning.Request) (string, error) {
	s.mu.Lock()
	s.summarizeRequests = append(s.summarizeRequests, req)
	s.mu.Unlock()
	if s.summarize == nil {
		return "summary", nil
	}
	return s.summarize(req)
}

func fixedTranslation(sql, additional string) func(reasoning.Request) (string, error) {
	return func(reasoning.Request) (string, error) {
		b, err := json.Marshal(map[string]string{"SQL": sql, "additional": additional})
		return string(b), err
	}
}

type pipelineOpt func(*pipeline.Config)

func withClock(c clockwork.Clock) pipelineOpt {
	return func(cfg *pipeline.Config) { cfg.Clock = c }
}

func newPipeline(t *testing.T, svc reasoning.Service, opts ...pipelineOpt) *pipeline.Pipeline {
	t.Helper()

	db := storetest.NewDuckDB(t)
	desc, err := schema.Describe(t.Context(), db)
	require.NoError(t, err)
	q, err := querier.New(querier.Config{Logger: storetest.Logger(), DB: db})
	require.NoError(t, err)

	cfg := pipeline.Config{
		Logger:    storetest.Logger(),
		Reasoning: svc,
		Querier:   q,
		Schema:    desc,
		Dialect:   db.Dialect().Name(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	p, err := pipeline.New(cfg)
	require.NoError(t, err)
	return p
}

func requireConsistent(t *testing.T, out pipeline.Outcome) {
	t.Helper()
	require.Equal(t, out.Error == nil, out.Success, "success must hold exactly when error is nil")
	if !out.Success {
		require.True(t, strings.HasPrefix(out.NaturalResponse, "I apologize, but I encountered an error while processing your question: "))
		require.Error(t, out.Err())
	}
}

func TestPipeline_Config_Validate(t *testing.T) {
	t.Parallel()

	_, err := pipeline.New(pipeline.Config{})
	require.ErrorContains(t, err, "logger is required")

	_, err = pipeline.New(pipeline.Config{Logger: storetest.Logger()})
	require.ErrorContains(t, err, "reasoning service is required")

	_, err = pipeline.New(pipeline.Config{Logger: storetest.Logger(), Reasoning: reasoning.Unconfigured{}})
	require.ErrorContains(t, err, "querier is required")

	_, _, err = pipeline.Setup(t.Context(), pipeline.SetupConfig{Logger: storetest.Logger()})
	require.ErrorContains(t, err, "database is required")
}

func TestPipeline_Setup(t *testing.T) {
	t.Parallel()

	p, q, err := pipeline.Setup(t.Context(), pipeline.SetupConfig{
		Logger: storetest.Logger(),
		DB:     storetest.NewDuckDB(t),
	})
	require.NoError(t, err)
	require.NotNil(t, q)
	require.False(t, reasoning.Configured(p.Reasoning()))
	require.Contains(t, p.Schema().String(), "--- VIEWS ---")
	require.Contains(t, p.Translator().Instructions(), p.Schema().String())
}

func TestPipeline_Run_Unconfigured(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, reasoning.Unconfigured{Reason: "ANTHROPIC_API_KEY is not set"})

	for _, q := range []string{"", "How many stories are there?", "   ", "Wie viele Brandmelder gibt es?"} {
		out := p.Run(t.Context(), q)
		requireConsistent(t, out)
		require.False(t, out.Success)
		require.ErrorIs(t, out.Err(), pipeline.ErrReasoningUnavailable)
		require.ErrorIs(t, out.Err(), reasoning.ErrNotConfigured)
		require.Equal(t, q, out.NaturalQuery)
		require.Nil(t, out.SQLQuery)
		require.Nil(t, out.Results)
		require.Equal(t,
			"I apologize, but I encountered an error while processing your question: the reasoning service is not available",
			out.NaturalResponse)
	}
}

func TestPipeline_Run_ProviderErrorIsUnavailable(t *testing.T) {
	t.Parallel()

	svc := &stubReasoning{translate: func(reasoning.Request) (string, error) {
		return "", fmt.Errorf("anthropic call failed: %w", context.DeadlineExceeded)
	}}
	p := newPipeline(t, svc)

	out := p.Run(t.Context(), "List all stories")
	requireConsistent(t, out)
	require.ErrorIs(t, out.Err(), pipeline.ErrReasoningUnavailable)
	require.Contains(t, *out.Error, "deadline exceeded")
	require.NotContains(t, out.NaturalResponse, "deadline")
}

func TestPipeline_Run_MalformedTranslation(t *testing.T) {
	t.Parallel()

	svc := &stubReasoning{translate: func(reasoning.Request) (string, error) {
		return `{"SQL": "SELECT story_code FROM stories"}`, nil
	}}
	p := newPipeline(t, svc)

	out := p.Run(t.Context(), "List all stories")
	requireConsistent(t, out)
	require.ErrorIs(t, out.Err(), pipeline.ErrTranslationMalformed)
	require.Nil(t, out.Results)
	require.Nil(t, out.SQLQuery)
	require.Empty(t, svc.summarizeRequests)
	require.Equal(t,
		"I apologize, but I encountered an error while processing your question: the generated query could not be understood",
		out.NaturalResponse)
}

func TestPipeline_Run_Success(t *testing.T) {
	t.Parallel()

	svc := &stubReasoning{
		translate: fixedTranslation("SELECT story_code FROM stories ORDER BY story_id;", ""),
		summarize: func(reasoning.Request) (string, error) {
			return "  There are **4** stories.  ", nil
		},
	}
	p := newPipeline(t, svc)

	out := p.Run(t.Context(), "Which stories exist?")
	requireConsistent(t, out)
	require.True(t, out.Success)
	require.Equal(t, "SELECT story_code FROM stories ORDER BY story_id", *out.SQLQuery)
	require.Equal(t, "", *out.AdditionalContext)
	require.Equal(t, []string{"story_code"}, out.Columns)
	require.Equal(t, 4, out.RowCount)

	codes := make([]any, 0, len(out.Results))
	for _, row := range out.Results {
		v, ok := row.Get("story_code")
		require.True(t, ok)
		codes = append(codes, v)
	}
	require.Equal(t, []any{"2OG", "1OG", "EG", "1UG"}, codes)
	require.Equal(t, "There are **4** stories.", out.NaturalResponse)

	require.Len(t, svc.translateRequests, 1)
	req := svc.translateRequests[0]
	require.Equal(t, "Which stories exist?", req.TaskInput)
	require.NotContains(t, req.Instructions, "Which stories exist?")
	require.Contains(t, req.Instructions, "--- TABLE: stories ---")
	require.Contains(t, req.Instructions, "DuckDB")
	require.Contains(t, req.Instructions, "2OG=2nd floor")
	require.Contains(t, req.Instructions, `"additional"`)
	require.NotContains(t, req.Instructions, "{{")
}

func TestPipeline_Run_StoryCodes(t *testing.T) {
	t.Parallel()

	svc := &stubReasoning{translate: fixedTranslation("SELECT story_code FROM stories", "")}
	p := newPipeline(t, svc)

	out := p.Run(t.Context(), "Which stories exist?")
	requireConsistent(t, out)
	require.True(t, out.Success)

	codes := make([]any, 0, len(out.Results))
	for _, row := range out.Results {
		v, _ := row.Get("story_code")
		codes = append(codes, v)
	}
	require.ElementsMatch(t, []any{"2OG", "1OG", "EG", "1UG"}, codes)
}

func TestPipeline_Run_ExecutionError(t *testing.T) {
	t.Parallel()

	svc := &stubReasoning{translate: fixedTranslation("SELECT no_such_column FROM stories", "assumed nothing")}
	p := newPipeline(t, svc)

	out := p.Run(t.Context(), "Show me the thing")
	requireConsistent(t, out)
	require.ErrorIs(t, out.Err(), pipeline.ErrExecution)
	require.Nil(t, out.Results)
	require.NotNil(t, out.SQLQuery)
	require.Equal(t, "SELECT no_such_column FROM stories", *out.SQLQuery)
	require.Equal(t, "assumed nothing", *out.AdditionalContext)
	require.Contains(t, *out.Error, "no_such_column")
	require.True(t, strings.HasPrefix(out.NaturalResponse,
		"I apologize, but I encountered an error while processing your question: the generated query could not be executed: "))
	require.Empty(t, svc.summarizeRequests)
}

func TestPipeline_Run_WriteRejected(t *testing.T) {
	t.Parallel()

	svc := &stubReasoning{translate: fixedTranslation("DELETE FROM stories", "")}
	p := newPipeline(t, svc)

	out := p.Run(t.Context(), "Remove all stories")
	requireConsistent(t, out)
	require.ErrorIs(t, out.Err(), pipeline.ErrExecution)
	require.ErrorIs(t, out.Err(), querier.ErrNotReadOnly)
}

func TestPipeline_Run_SummarySample(t *testing.T) {
	t.Parallel()

	svc := &stubReasoning{translate: fixedTranslation("SELECT * FROM range(1000)", "")}
	p := newPipeline(t, svc)

	out := p.Run(t.Context(), "Count to a thousand")
	requireConsistent(t, out)
	require.True(t, out.Success)
	require.Equal(t, 1000, out.RowCount)
	require.Len(t, out.Results, 1000)

	require.Len(t, svc.summarizeRequests, 1)
	input := svc.summarizeRequests[0].TaskInput
	require.Contains(t, input, `Original question: "Count to a thousand"`)
	require.Contains(t, input, "SQL query used: SELECT * FROM range(1000)")

	const marker = "Results summary: "
	idx := strings.Index(input, marker)
	require.GreaterOrEqual(t, idx, 0)

	var summary struct {
		RowCount   int              `json:"row_count"`
		Columns    []string         `json:"columns"`
		SampleData []map[string]any `json:"sample_data"`
	}
	require.NoError(t, json.NewDecoder(strings.NewReader(input[idx+len(marker):])).Decode(&summary))
	require.Equal(t, 1000, summary.RowCount)
	require.Equal(t, []string{"range"}, summary.Columns)
	require.LessOrEqual(t, len(summary.SampleData), pipeline.SampleLimit)
	require.Len(t, summary.SampleData, pipeline.SampleLimit)
}

func TestPipeline_Run_SummaryDegraded(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		summarize func(reasoning.Request) (string, error)
		want      string
	}{
		{
			name:      "not configured",
			summarize: func(reasoning.Request) (string, error) { return "", reasoning.ErrNotConfigured },
			want:      pipeline.DegradedNotConfigured,
		},
		{
			name:      "call failure",
			summarize: func(reasoning.Request) (string, error) { return "", errors.New("503 overloaded") },
			want:      pipeline.DegradedNoAnswer,
		},
		{
			name:      "empty reply",
			summarize: func(reasoning.Request) (string, error) { return " \n", nil },
			want:      pipeline.DegradedNoAnswer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := &stubReasoning{
				translate: fixedTranslation("SELECT count(*) AS n FROM elements", ""),
				summarize: tt.summarize,
			}
			p := newPipeline(t, svc)

			out := p.Run(t.Context(), "How many elements are there?")
			requireConsistent(t, out)
			require.True(t, out.Success)
			require.Nil(t, out.Error)
			require.Equal(t, tt.want, out.NaturalResponse)
			require.Equal(t, 1, out.RowCount)
		})
	}
}

func TestPipeline_Run_ElapsedUsesClock(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	svc := &stubReasoning{translate: func(req reasoning.Request) (string, error) {
		clock.Advance(1500 * time.Millisecond)
		return fixedTranslation("SELECT 1 AS one", "")(req)
	}}
	p := newPipeline(t, svc, withClock(clock))

	out := p.Run(t.Context(), "one")
	requireConsistent(t, out)
	require.True(t, out.Success)
	require.Equal(t, int64(1500), out.ElapsedMS)
}

func TestPipeline_Outcome_JSON(t *testing.T) {
	t.Parallel()

	svc := &stubReasoning{translate: fixedTranslation("SELECT no_such_column FROM stories", "")}
	p := newPipeline(t, svc)

	b, err := json.Marshal(p.Run(t.Context(), "broken"))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	for _, key := range []string{
		"natural_query", "sql_query", "additional_context", "columns", "results",
		"row_count", "natural_response", "success", "error", "elapsed_ms",
	} {
		require.Contains(t, got, key)
	}
	require.Nil(t, got["results"])
	require.Equal(t, false, got["success"])
	require.NotEmpty(t, got["error"])
}

func TestPipeline_RunBatch(t *testing.T) {
	t.Parallel()

	svc := &stubReasoning{translate: func(req reasoning.Request) (string, error) {
		if req.TaskInput == "broken" {
			return "not json", nil
		}
		return fixedTranslation(fmt.Sprintf("SELECT '%s' AS q", req.TaskInput), "")(req)
	}}
	p := newPipeline(t, svc)

	questions := []string{"alpha", "bravo", "broken", "delta", "echo", "foxtrot", "golf"}
	outcomes := p.RunBatch(t.Context(), questions, 3)
	require.Len(t, outcomes, len(questions))

	for i, out := range outcomes {
		requireConsistent(t, out)
		require.Equal(t, questions[i], out.NaturalQuery)
		if questions[i] == "broken" {
			require.ErrorIs(t, out.Err(), pipeline.ErrTranslationMalformed)
			continue
		}
		require.True(t, out.Success)
		v, ok := out.Results[0].Get("q")
		require.True(t, ok)
		require.Equal(t, questions[i], v)
	}

	require.Empty(t, p.RunBatch(t.Context(), nil, 0))
}

func TestPipeline_RunBatch_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	svc := &stubReasoning{translate: func(req reasoning.Request) (string, error) {
		if req.TaskInput == "charlie" {
			cancel()
		}
		return fixedTranslation(fmt.Sprintf("SELECT '%s' AS q", req.TaskInput), "")(req)
	}}
	p := newPipeline(t, svc)

	questions := []string{"alpha", "bravo", "charlie", "delta", "echo"}
	outcomes := p.RunBatch(ctx, questions, 1)
	require.Len(t, outcomes, len(questions))

	for i, out := range outcomes {
		requireConsistent(t, out)
		require.Equal(t, questions[i], out.NaturalQuery)
		if i < 2 {
			require.True(t, out.Success, "question %q finished before the cancel", questions[i])
			v, _ := out.Results[0].Get("q")
			require.Equal(t, questions[i], v)
			continue
		}
		require.False(t, out.Success)
		require.ErrorIs(t, out.Err(), pipeline.ErrReasoningUnavailable)
		require.ErrorIs(t, out.Err(), context.Canceled)
	}
}

func TestPipeline_Vocabulary(t *testing.T) {
	t.Parallel()

	vocab, err := pipeline.LoadVocabulary("")
	require.NoError(t, err)
	require.Len(t, vocab.Stories, 4)
	require.Len(t, vocab.Categories, 11)
	require.Len(t, vocab.Examples, 3)
	require.Contains(t, vocab.Grounding(), "Brandmelder=smoke detector")
	require.Contains(t, vocab.FewShots(), `Question: "Show all elements in the ground floor"`)

	path := t.TempDir() + "/vocab.yaml"
	require.NoError(t, os.WriteFile(path, []byte("domain: warehouse inventory\ncontext: Shelves and bins.\nterms:\n  - term: Regal\n    meaning: shelf\n"), 0o600))
	custom, err := pipeline.LoadVocabulary(path)
	require.NoError(t, err)
	require.Equal(t, "warehouse inventory", custom.Domain)
	require.Equal(t, "- Shelves and bins.\n- German terms: Regal=shelf", custom.Grounding())

	_, err = pipeline.LoadVocabulary(t.TempDir() + "/missing.yaml")
	require.Error(t, err)
}
