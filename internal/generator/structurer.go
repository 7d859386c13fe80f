package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/policy-play/backend/internal/models"
)

// looseStringList decodes a field that should be a list of strings but
// may come back as null, a scalar, or a mixed-type list. Anything that
// is not a list decodes to empty; non-string list entries are dropped.
type looseStringList []string

func (l *looseStringList) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		*l = looseStringList{}
		return nil
	}
	out := make([]string, 0, len(items))
	for _, raw := range items {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	*l = out
	return nil
}

type structuredResponse struct {
	Title       *string         `json:"title"`
	Summary     *string         `json:"summary"`
	Rules       looseStringList `json:"rules"`
	Roles       looseStringList `json:"roles"`
	Clauses     looseStringList `json:"clauses"`
	Definitions looseStringList `json:"definitions"`
	Exceptions  looseStringList `json:"exceptions"`
	Risks       looseStringList `json:"risks"`
	Sections    looseStringList `json:"policy_sections"`
}

// StructurePolicy runs the structuring call and normalizes the result.
// List fields in the returned policy are never nil, and RawText is
// always the input text.
func (g *Generator) StructurePolicy(ctx context.Context, rawText string) (*models.StructuredPolicy, error) {
	rawText = strings.TrimSpace(rawText)
	if rawText == "" {
		return nil, fmt.Errorf("structure policy: %w", models.ErrInvalidInput)
	}

	resp, err := g.llm.Generate(ctx, GenerateRequest{
		System:      StructurerSystemPrompt(),
		Prompt:      BuildStructurerPrompt(rawText),
		Temperature: 0.3,
		MaxTokens:   4096,
	})
	if err != nil {
		return nil, fmt.Errorf("structure policy: %w", err)
	}

	var sr structuredResponse
	if err := decodeJSON(resp.Content, &sr); err != nil {
		return nil, fmt.Errorf("structure policy: %w", err)
	}

	p := &models.StructuredPolicy{
		Title:       cleanOptional(sr.Title),
		Summary:     cleanOptional(sr.Summary),
		Rules:       orEmpty(sr.Rules),
		Roles:       orEmpty(sr.Roles),
		Clauses:     orEmpty(sr.Clauses),
		Definitions: orEmpty(sr.Definitions),
		Exceptions:  orEmpty(sr.Exceptions),
		Risks:       orEmpty(sr.Risks),
		Sections:    orEmpty(sr.Sections),
		RawText:     rawText,
	}

	if len(p.Rules) == 0 {
		log.Printf("[generator] WARN: structured policy %q has no rules", p.TitleOrDefault())
	}

	return p, nil
}

// orEmpty keeps list fields non-nil even when the response omitted them.
func orEmpty(l looseStringList) []string {
	if l == nil {
		return []string{}
	}
	return []string(l)
}

func cleanOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
