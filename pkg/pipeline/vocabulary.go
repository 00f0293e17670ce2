package pipeline

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/malbeclabs/nlquery/pkg/pipeline/prompts"
)

// Vocabulary is the domain grounding handed to the reasoning service next to
// the schema description.
type Vocabulary struct {
	Domain     string    `yaml:"domain"`
	Context    string    `yaml:"context"`
	Stories    []Term    `yaml:"stories"`
	Categories []Term    `yaml:"categories"`
	Terms      []Term    `yaml:"terms"`
	Views      []string  `yaml:"views"`
	Examples   []FewShot `yaml:"examples"`
}

// Term maps a code or German word to its meaning. Code, name and term are
// accepted as the key so the YAML reads naturally per section.
type Term struct {
	Code    string `yaml:"code"`
	Name    string `yaml:"name"`
	Term    string `yaml:"term"`
	Meaning string `yaml:"meaning"`
}

func (t Term) key() string {
	switch {
	case t.Code != "":
		return t.Code
	case t.Name != "":
		return t.Name
	default:
		return t.Term
	}
}

// FewShot is one worked translation example.
type FewShot struct {
	Question   string `yaml:"question"`
	SQL        string `yaml:"sql"`
	Additional string `yaml:"additional"`
}

// DefaultVocabulary returns the embedded construction-project vocabulary.
func DefaultVocabulary() (*Vocabulary, error) {
	data, err := prompts.PromptsFS.ReadFile("vocabulary.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded vocabulary: %w", err)
	}
	return ParseVocabulary(data)
}

// LoadVocabulary reads a vocabulary file, or the embedded default when path
// is empty.
func LoadVocabulary(path string) (*Vocabulary, error) {
	if path == "" {
		return DefaultVocabulary()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary file: %w", err)
	}
	return ParseVocabulary(data)
}

func ParseVocabulary(data []byte) (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary: %w", err)
	}
	if v.Domain == "" {
		v.Domain = "relational database"
	}
	return &v, nil
}

// Grounding renders the vocabulary as the bullet list embedded in the
// translation instructions.
func (v *Vocabulary) Grounding() string {
	var sb strings.Builder
	if v.Context != "" {
		fmt.Fprintf(&sb, "- %s\n", strings.TrimSpace(v.Context))
	}
	writeTerms(&sb, "Story codes", v.Stories)
	writeTerms(&sb, "Categories", v.Categories)
	writeTerms(&sb, "German terms", v.Terms)
	if len(v.Views) > 0 {
		fmt.Fprintf(&sb, "- Use views for complex queries: %s\n", strings.Join(v.Views, ", "))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FewShots renders the worked examples in the response format.
func (v *Vocabulary) FewShots() string {
	var sb strings.Builder
	for i, ex := range v.Examples {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "Question: %q\n", ex.Question)
		fmt.Fprintf(&sb, "Response: {\"SQL\": %q, \"additional\": %q}\n", ex.SQL, ex.Additional)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func writeTerms(sb *strings.Builder, label string, terms []Term) {
	if len(terms) == 0 {
		return
	}
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		parts = append(parts, fmt.Sprintf("%s=%s", t.key(), t.Meaning))
	}
	fmt.Fprintf(sb, "- %s: %s\n", label, strings.Join(parts, ", "))
}
