package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/policy-play/backend/internal/models"
)

// DraftAnalysis is the LLM's quality review of a draft policy.
type DraftAnalysis struct {
	Contradictions []string `json:"contradictions"`
	Ambiguities    []string `json:"ambiguities"`
	Overlaps       []string `json:"overlaps"`
	Suggestions    []string `json:"suggestions"`
}

// AnalyzeDraft reviews a draft policy for contradictions, ambiguities,
// and overlapping sections.
func (g *Generator) AnalyzeDraft(ctx context.Context, draftText string) (*DraftAnalysis, error) {
	if strings.TrimSpace(draftText) == "" {
		return nil, fmt.Errorf("analyze draft: %w", models.ErrInvalidInput)
	}

	resp, err := g.llm.Generate(ctx, GenerateRequest{
		System:      AnalysisSystemPrompt(),
		Prompt:      BuildAnalysisPrompt(draftText),
		Temperature: 0.3,
		MaxTokens:   2048,
	})
	if err != nil {
		return nil, fmt.Errorf("analyze draft: %w", err)
	}

	var analysis DraftAnalysis
	if err := decodeJSON(resp.Content, &analysis); err != nil {
		return nil, fmt.Errorf("analyze draft: %w", err)
	}

	for _, list := range []*[]string{&analysis.Contradictions, &analysis.Ambiguities, &analysis.Overlaps, &analysis.Suggestions} {
		if *list == nil {
			*list = []string{}
		}
	}

	return &analysis, nil
}
