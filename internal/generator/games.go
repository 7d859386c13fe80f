package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/policy-play/backend/internal/models"
)

// ruleAt picks the rule for a game, wrapping the index around the rule
// list so batch generation can cycle.
func ruleAt(p *models.StructuredPolicy, ruleIndex int) (string, error) {
	if len(p.Rules) == 0 {
		return "", models.ErrNoRules
	}
	idx := ruleIndex % len(p.Rules)
	if idx < 0 {
		idx += len(p.Rules)
	}
	return p.Rules[idx], nil
}

const minExplanationChars = 20

// GenerateScenarioGame creates one 4-option compliant-action scenario
// for the rule at ruleIndex (modulo the rule count).
func (g *Generator) GenerateScenarioGame(ctx context.Context, p *models.StructuredPolicy, ruleIndex int) (*models.GameScenario, error) {
	rule, err := ruleAt(p, ruleIndex)
	if err != nil {
		return nil, fmt.Errorf("generate scenario: %w", err)
	}

	resp, err := g.llm.Generate(ctx, GenerateRequest{
		System:      PuzzleSystemPrompt(),
		Prompt:      BuildScenarioPrompt(p, rule),
		Temperature: 0.5,
		MaxTokens:   2048,
	})
	if err != nil {
		return nil, fmt.Errorf("generate scenario: %w", err)
	}

	var sc models.GameScenario
	if err := decodeJSON(resp.Content, &sc); err != nil {
		return nil, fmt.Errorf("generate scenario: %w", err)
	}

	var errs []string
	if len(sc.Options) != 4 {
		errs = append(errs, fmt.Sprintf("expected 4 options, got %d", len(sc.Options)))
	}
	if sc.Correct < 0 || sc.Correct > 3 {
		errs = append(errs, fmt.Sprintf("correct index %d out of range [0,3]", sc.Correct))
	}
	if len(sc.Explanation) < minExplanationChars {
		errs = append(errs, fmt.Sprintf("explanation too short (%d chars)", len(sc.Explanation)))
	}
	if sc.Scenario == "" {
		errs = append(errs, "empty scenario")
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	// The generator sometimes paraphrases the rule it was given; the
	// stored rule is always the one requested.
	sc.PolicyRuleUsed = rule

	return &sc, nil
}

// GenerateViolationGame creates one spot-the-violation narrative for the
// rule at ruleIndex. The violation span offsets are recomputed from the
// narrative; offsets reported by the model are discarded.
func (g *Generator) GenerateViolationGame(ctx context.Context, p *models.StructuredPolicy, ruleIndex int) (*models.ViolationScenario, error) {
	rule, err := ruleAt(p, ruleIndex)
	if err != nil {
		return nil, fmt.Errorf("generate violation game: %w", err)
	}

	resp, err := g.llm.Generate(ctx, GenerateRequest{
		System:      PuzzleSystemPrompt(),
		Prompt:      BuildViolationScenarioPrompt(p, rule),
		Temperature: 0.5,
		MaxTokens:   2048,
	})
	if err != nil {
		return nil, fmt.Errorf("generate violation game: %w", err)
	}

	var vs models.ViolationScenario
	if err := decodeJSON(resp.Content, &vs); err != nil {
		return nil, fmt.Errorf("generate violation game: %w", err)
	}

	var errs []string
	if vs.Narrative == "" {
		errs = append(errs, "empty narrative")
	}
	if vs.ViolationText == "" {
		errs = append(errs, "empty violation_text")
	}
	if len(vs.Explanation) < minExplanationChars {
		errs = append(errs, fmt.Sprintf("explanation too short (%d chars)", len(vs.Explanation)))
	}

	start := strings.Index(vs.Narrative, vs.ViolationText)
	if vs.ViolationText != "" && start == -1 {
		errs = append(errs, "violation_text is not a substring of the narrative")
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	vs.ViolationStart = start
	vs.ViolationEnd = start + len(vs.ViolationText)
	vs.PolicyRuleUsed = rule

	return &vs, nil
}
