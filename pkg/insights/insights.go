package insights

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

var ErrNotConfigured = errors.New("insights service is not configured")

type TranslationMode string

const (
	ModeOpenAI TranslationMode = "openai"
	ModeGoogle TranslationMode = "google"
	ModeMock   TranslationMode = "mock"
)

// GlossaryTerm is a meeting specific term with an optional explanation.
type GlossaryTerm struct {
	Term    string `json:"term"`
	Meaning string `json:"meaning,omitempty"`
}

type TranslationRequest struct {
	Text       string
	SourceLang string
	TargetLang string
	Glossary   []GlossaryTerm
}

type Translator interface {
	Mode() TranslationMode
	Translate(ctx context.Context, req *TranslationRequest) (string, error)
}

// SummaryResult holds the summary of one meeting in one language.
type SummaryResult struct {
	Summary     string `json:"summary"`
	Decisions   string `json:"decisions"`
	ActionItems string `json:"action_items"`
}

type Summarizer interface {
	Mode() TranslationMode
	// Summarize summarizes transcript, written as "Speaker: text" lines, in
	// the given language.
	Summarize(ctx context.Context, transcript, lang string) (*SummaryResult, error)
}

// ParseSummary reads the JSON object a model was asked to produce. Models
// like to wrap it in a markdown fence, which is stripped first.
func ParseSummary(text string) (*SummaryResult, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	var raw struct {
		Summary     string          `json:"summary"`
		Decisions   json.RawMessage `json:"decisions"`
		ActionItems json.RawMessage `json:"action_items"`
	}
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, fmt.Errorf("invalid summary json: %w", err)
	}

	return &SummaryResult{
		Summary:     raw.Summary,
		Decisions:   bulletList(raw.Decisions),
		ActionItems: bulletList(raw.ActionItems),
	}, nil
}

// bulletList accepts either a string or a list of strings.
func bulletList(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		return string(raw)
	}
	lines := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			lines = append(lines, "• "+it)
		}
	}
	return strings.Join(lines, "\n")
}

// GlossaryPrompt renders the glossary as extra model instructions.
func GlossaryPrompt(terms []GlossaryTerm) string {
	if len(terms) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Use the following glossary for domain specific terms:\n")
	for _, t := range terms {
		if t.Term == "" {
			continue
		}
		b.WriteString("- ")
		b.WriteString(t.Term)
		if t.Meaning != "" {
			b.WriteString(": ")
			b.WriteString(t.Meaning)
		}
		b.WriteString("\n")
	}
	return b.String()
}
