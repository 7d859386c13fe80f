package generator

import (
	"context"
	"errors"
	"testing"

	"github.com/policy-play/backend/internal/models"
)

func twoRulePolicy() *models.StructuredPolicy {
	return &models.StructuredPolicy{
		Rules:       []string{"rule zero", "rule one"},
		Roles:       []string{},
		Clauses:     []string{},
		Definitions: []string{},
		Exceptions:  []string{},
		Risks:       []string{},
		Sections:    []string{},
		RawText:     "text",
	}
}

const validScenario = `{
	"scenario": "You find a visitor wandering the office unescorted.",
	"options": ["Escort them to reception", "Ignore them", "Give them a badge", "Ask them to hurry"],
	"correct": 0,
	"explanation": "Visitors must be escorted at all times per the policy.",
	"policy_rule_used": "something the model made up"
}`

func TestGenerateScenarioGame(t *testing.T) {
	g, _ := testGenerator(validScenario)
	sc, err := g.GenerateScenarioGame(context.Background(), twoRulePolicy(), 0)
	if err != nil {
		t.Fatalf("GenerateScenarioGame() error = %v", err)
	}
	if len(sc.Options) != 4 {
		t.Errorf("got %d options, want 4", len(sc.Options))
	}
	if sc.PolicyRuleUsed != "rule zero" {
		t.Errorf("rule echo not overwritten: %q", sc.PolicyRuleUsed)
	}
}

func TestGenerateScenarioGameRuleCycling(t *testing.T) {
	tests := []struct {
		ruleIndex int
		wantRule  string
	}{
		{0, "rule zero"},
		{1, "rule one"},
		{2, "rule zero"},
		{5, "rule one"},
	}

	for _, tt := range tests {
		g, _ := testGenerator(validScenario)
		sc, err := g.GenerateScenarioGame(context.Background(), twoRulePolicy(), tt.ruleIndex)
		if err != nil {
			t.Fatalf("ruleIndex %d: error = %v", tt.ruleIndex, err)
		}
		if sc.PolicyRuleUsed != tt.wantRule {
			t.Errorf("ruleIndex %d: got rule %q, want %q", tt.ruleIndex, sc.PolicyRuleUsed, tt.wantRule)
		}
	}
}

func TestGenerateScenarioGameNoRules(t *testing.T) {
	g, _ := testGenerator(validScenario)
	p := twoRulePolicy()
	p.Rules = []string{}
	_, err := g.GenerateScenarioGame(context.Background(), p, 0)
	if !errors.Is(err, models.ErrNoRules) {
		t.Fatalf("expected ErrNoRules, got %v", err)
	}
}

func TestGenerateScenarioGameValidation(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{
			"three options",
			`{"scenario":"s s s","options":["a","b","c"],"correct":0,"explanation":"a long enough explanation here"}`,
		},
		{
			"correct index out of range",
			`{"scenario":"s s s","options":["a","b","c","d"],"correct":4,"explanation":"a long enough explanation here"}`,
		},
		{
			"short explanation",
			`{"scenario":"s s s","options":["a","b","c","d"],"correct":1,"explanation":"too short"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := testGenerator(tt.response)
			_, err := g.GenerateScenarioGame(context.Background(), twoRulePolicy(), 0)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestGenerateViolationGameSpanRepair(t *testing.T) {
	response := `{
		"narrative": "Sam left the laptop unlocked at the cafe table and went to order.",
		"violation_text": "left the laptop unlocked",
		"violation_start": 999,
		"violation_end": 3,
		"explanation": "Devices must be locked whenever they are unattended."
	}`
	g, _ := testGenerator(response)
	vs, err := g.GenerateViolationGame(context.Background(), twoRulePolicy(), 1)
	if err != nil {
		t.Fatalf("GenerateViolationGame() error = %v", err)
	}
	if vs.ViolationStart != 4 {
		t.Errorf("start = %d, want 4", vs.ViolationStart)
	}
	if vs.ViolationEnd != 4+len("left the laptop unlocked") {
		t.Errorf("end = %d, want %d", vs.ViolationEnd, 4+len("left the laptop unlocked"))
	}
	if vs.Narrative[vs.ViolationStart:vs.ViolationEnd] != vs.ViolationText {
		t.Error("recomputed span does not cover the violation text")
	}
	if vs.PolicyRuleUsed != "rule one" {
		t.Errorf("rule echo not overwritten: %q", vs.PolicyRuleUsed)
	}
}

func TestGenerateViolationGameNotSubstring(t *testing.T) {
	response := `{
		"narrative": "Sam locked the laptop carefully before leaving.",
		"violation_text": "left the laptop unlocked",
		"explanation": "Devices must be locked whenever they are unattended."
	}`
	g, _ := testGenerator(response)
	_, err := g.GenerateViolationGame(context.Background(), twoRulePolicy(), 0)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
