package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/malbeclabs/nlquery/pkg/pipeline/prompts"
	"github.com/malbeclabs/nlquery/pkg/reasoning"
	"github.com/malbeclabs/nlquery/pkg/schema"
)

const (
	keySQL        = "SQL"
	keyAdditional = "additional"
)

// Translation is the validated reply of the translation stage.
type Translation struct {
	Query                string `json:"sql_query"`
	SupplementaryContext string `json:"additional_context"`
}

// translationContract documents the reply shape for the reasoning service.
type translationContract struct {
	SQL        string `json:"SQL" jsonschema:"the SQL query to execute"`
	Additional string `json:"additional" jsonschema:"assumptions, prices or calculation notes needed for the final answer; empty string when none"`
}

type TranslatorConfig struct {
	Logger     *slog.Logger
	Reasoning  reasoning.Service
	Schema     schema.Description
	Dialect    string
	Vocabulary *Vocabulary
}

func (cfg *TranslatorConfig) Validate() error {
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if cfg.Reasoning == nil {
		return errors.New("reasoning service is required")
	}
	if cfg.Dialect == "" {
		return errors.New("dialect is required")
	}
	if cfg.Vocabulary == nil {
		return errors.New("vocabulary is required")
	}
	return nil
}

// Translator turns a question into a query plus supplementary context.
type Translator struct {
	log          *slog.Logger
	svc          reasoning.Service
	instructions string
}

func NewTranslator(cfg TranslatorConfig) (*Translator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate translator config: %w", err)
	}
	instructions, err := translateInstructions(cfg)
	if err != nil {
		return nil, err
	}
	return &Translator{
		log:          cfg.Logger,
		svc:          cfg.Reasoning,
		instructions: instructions,
	}, nil
}

// Instructions returns the rendered grounding sent with every translation.
func (t *Translator) Instructions() string {
	return t.instructions
}

func (t *Translator) Translate(ctx context.Context, question string) (Translation, error) {
	reply, err := t.svc.Translate(ctx, reasoning.Request{
		Instructions: t.instructions,
		TaskInput:    question,
	})
	if err != nil {
		return Translation{}, fmt.Errorf("%w: %w", ErrReasoningUnavailable, err)
	}

	tr, err := parseTranslation(reply)
	if err != nil {
		t.log.Debug("pipeline: malformed translation", "reply", reply, "error", err)
		return Translation{}, err
	}
	return tr, nil
}

func translateInstructions(cfg TranslatorConfig) (string, error) {
	tmpl, err := prompts.PromptsFS.ReadFile("TRANSLATE.md")
	if err != nil {
		return "", fmt.Errorf("failed to read translate prompt: %w", err)
	}

	contract, err := jsonschema.For[translationContract](nil)
	if err != nil {
		return "", fmt.Errorf("failed to build contract schema: %w", err)
	}
	contractJSON, err := json.MarshalIndent(contract, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal contract schema: %w", err)
	}

	r := strings.NewReplacer(
		"{{DOMAIN}}", cfg.Vocabulary.Domain,
		"{{DIALECT}}", cfg.Dialect,
		"{{SCHEMA}}", cfg.Schema.String(),
		"{{VOCABULARY}}", cfg.Vocabulary.Grounding(),
		"{{CONTRACT_SCHEMA}}", string(contractJSON),
		"{{EXAMPLES}}", cfg.Vocabulary.FewShots(),
	)
	return r.Replace(string(tmpl)), nil
}

// parseTranslation validates a reply against the two-key contract. A single
// surrounding markdown code fence is tolerated.
func parseTranslation(reply string) (Translation, error) {
	body := stripCodeFence(reply)

	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	var fields map[string]json.RawMessage
	if err := dec.Decode(&fields); err != nil {
		return Translation{}, fmt.Errorf("%w: invalid JSON: %w", ErrTranslationMalformed, err)
	}
	if dec.More() {
		return Translation{}, fmt.Errorf("%w: trailing data after JSON object", ErrTranslationMalformed)
	}
	if fields == nil {
		return Translation{}, fmt.Errorf("%w: reply is not a JSON object", ErrTranslationMalformed)
	}
	for k := range fields {
		if k != keySQL && k != keyAdditional {
			return Translation{}, fmt.Errorf("%w: unexpected field %q", ErrTranslationMalformed, k)
		}
	}

	query, err := stringField(fields, keySQL)
	if err != nil {
		return Translation{}, err
	}
	additional, err := stringField(fields, keyAdditional)
	if err != nil {
		return Translation{}, err
	}

	query = cleanSQL(query)
	if query == "" {
		return Translation{}, fmt.Errorf("%w: empty %s", ErrTranslationMalformed, keySQL)
	}
	return Translation{Query: query, SupplementaryContext: strings.TrimSpace(additional)}, nil
}

func stringField(fields map[string]json.RawMessage, key string) (string, error) {
	raw, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("%w: missing field %q", ErrTranslationMalformed, key)
	}
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil || s == nil {
		return "", fmt.Errorf("%w: field %q must be a string", ErrTranslationMalformed, key)
	}
	return *s, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
			s = s[4:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

func cleanSQL(q string) string {
	q = strings.TrimSpace(q)
	q = strings.TrimSuffix(q, ";")
	return strings.TrimSpace(q)
}
