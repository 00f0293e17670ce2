package reasoning

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type fakeClient struct {
	system, user string
	options      CompleteOptions
	reply        string
	err          error
	block        bool
}

func (f *fakeClient) Complete(ctx context.Context, systemPrompt, userPrompt string, opts ...CompleteOption) (string, error) {
	f.system, f.user = systemPrompt, userPrompt
	for _, opt := range opts {
		opt(&f.options)
	}
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.reply, f.err
}

func TestReasoning_Unconfigured(t *testing.T) {
	t.Parallel()

	svc := Unconfigured{Reason: "no key"}
	_, err := svc.Translate(t.Context(), Request{TaskInput: "x"})
	require.ErrorIs(t, err, ErrNotConfigured)
	require.ErrorContains(t, err, "no key")

	_, err = Unconfigured{}.Summarize(t.Context(), Request{})
	require.ErrorIs(t, err, ErrNotConfigured)

	require.False(t, Configured(svc))
	require.False(t, Configured(nil))
	require.True(t, Configured(&LLMService{}))
}

func TestReasoning_New_ProviderSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		cfg            Config
		wantConfigured bool
		wantErr        string
	}{
		{name: "no keys", cfg: Config{}},
		{name: "anthropic key", cfg: Config{AnthropicAPIKey: "sk-ant"}, wantConfigured: true},
		{name: "openai key", cfg: Config{OpenAIAPIKey: "sk-oa"}, wantConfigured: true},
		{name: "explicit provider without its key", cfg: Config{Provider: ProviderOpenAI, AnthropicAPIKey: "sk-ant"}},
		{name: "disabled", cfg: Config{Provider: ProviderNone, AnthropicAPIKey: "sk-ant"}},
		{name: "unknown provider", cfg: Config{Provider: "gemini"}, wantErr: "unknown reasoning provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tt.cfg.Logger = testLogger()
			svc, err := New(tt.cfg)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantConfigured, Configured(svc))
		})
	}
}

func TestReasoning_LLMService(t *testing.T) {
	t.Parallel()

	t.Run("translate passes instructions as system prompt", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{reply: "  {\"SQL\": \"SELECT 1\", \"additional\": \"\"}\n"}
		svc, err := NewLLMService(LLMServiceConfig{Logger: testLogger(), Client: client, Provider: "fake"})
		require.NoError(t, err)

		out, err := svc.Translate(t.Context(), Request{Instructions: "schema", TaskInput: "how many doors?"})
		require.NoError(t, err)
		require.Equal(t, `{"SQL": "SELECT 1", "additional": ""}`, out)
		require.Equal(t, "schema", client.system)
		require.Equal(t, "how many doors?", client.user)
		require.InDelta(t, 0.1, client.options.Temperature, 1e-9)
		require.EqualValues(t, 800, client.options.MaxTokens)
		require.True(t, client.options.CacheSystemPrompt)
	})

	t.Run("summarize uses a warmer temperature", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{reply: "Es gibt **28** Brandmelder."}
		svc, err := NewLLMService(LLMServiceConfig{Logger: testLogger(), Client: client, Provider: "fake"})
		require.NoError(t, err)

		out, err := svc.Summarize(t.Context(), Request{Instructions: "i", TaskInput: "t"})
		require.NoError(t, err)
		require.Equal(t, "Es gibt **28** Brandmelder.", out)
		require.InDelta(t, 0.3, client.options.Temperature, 1e-9)
		require.False(t, client.options.CacheSystemPrompt)
	})

	t.Run("client errors are wrapped", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("connection reset")
		svc, err := NewLLMService(LLMServiceConfig{Logger: testLogger(), Client: &fakeClient{err: boom}, Provider: "fake"})
		require.NoError(t, err)

		_, err = svc.Translate(t.Context(), Request{})
		require.ErrorIs(t, err, boom)
	})

	t.Run("timeout surfaces as deadline exceeded", func(t *testing.T) {
		t.Parallel()

		svc, err := NewLLMService(LLMServiceConfig{
			Logger:   testLogger(),
			Client:   &fakeClient{block: true},
			Provider: "fake",
			Timeout:  20 * time.Millisecond,
		})
		require.NoError(t, err)

		_, err = svc.Summarize(t.Context(), Request{})
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestReasoning_OpenAIClient(t *testing.T) {
	t.Parallel()

	var (
		got        chatRequest
		path, auth string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path, auth = r.URL.Path, r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"SELECT 1"}}]}`))
	}))
	t.Cleanup(srv.Close)

	client, err := NewOpenAIClient(OpenAIConfig{BaseURL: srv.URL + "/", APIKey: "sk-test"})
	require.NoError(t, err)

	out, err := client.Complete(t.Context(), "sys", "user", WithTemperature(0.1))
	require.NoError(t, err)
	require.Equal(t, "SELECT 1", out)
	require.Equal(t, "/v1/chat/completions", path)
	require.Equal(t, "Bearer sk-test", auth)
	require.Equal(t, DefaultOpenAIModel, got.Model)
	require.Len(t, got.Messages, 2)
	require.Equal(t, "system", got.Messages[0].Role)
	require.Equal(t, "user", got.Messages[1].Content)
	require.EqualValues(t, 800, got.MaxTokens)
}

func TestReasoning_OpenAIClient_ErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid key"}`))
	}))
	t.Cleanup(srv.Close)

	client, err := NewOpenAIClient(OpenAIConfig{BaseURL: srv.URL, APIKey: "sk-bad"})
	require.NoError(t, err)

	_, err = client.Complete(t.Context(), "sys", "user")
	require.ErrorContains(t, err, "status=401")

	_, err = NewOpenAIClient(OpenAIConfig{})
	require.ErrorContains(t, err, "api key is required")
}

func TestReasoning_AnthropicClient(t *testing.T) {
	t.Parallel()

	var (
		got          map[string]any
		path, apiKey string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path, apiKey = r.URL.Path, r.Header.Get("X-Api-Key")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_01",
			"type": "message",
			"role": "assistant",
			"model": "claude-sonnet-4-5",
			"content": [{"type": "text", "text": "Im EG sind "}, {"type": "text", "text": "10 Brandmelder."}],
			"stop_reason": "end_turn",
			"stop_sequence": null,
			"usage": {"input_tokens": 12, "output_tokens": 6}
		}`))
	}))
	t.Cleanup(srv.Close)

	client := NewAnthropicClient(testLogger(), "sk-ant-test", "", option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	out, err := client.Complete(t.Context(), "schema", "Wie viele Brandmelder im EG?", WithCacheControl(), WithTemperature(0.1))
	require.NoError(t, err)
	require.Equal(t, "Im EG sind 10 Brandmelder.", out)
	require.Equal(t, "/v1/messages", path)
	require.Equal(t, "sk-ant-test", apiKey)

	require.Equal(t, DefaultAnthropicModel, got["model"])
	system, ok := got["system"].([]any)
	require.True(t, ok)
	require.Len(t, system, 1)
	block := system[0].(map[string]any)
	require.Equal(t, "schema", block["text"])
	require.NotNil(t, block["cache_control"])
}
