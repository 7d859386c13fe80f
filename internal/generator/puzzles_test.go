package generator

import (
	"context"
	"errors"
	"testing"

	"github.com/policy-play/backend/internal/models"
)

func TestGenerateEscapeRoomsFallbacks(t *testing.T) {
	// Every generation call fails; every room still gets one fallback
	// puzzle built from policy metadata.
	stub := &stubClient{err: errors.New("api down")}
	g := NewGeneratorWithClient(stub, "stub")

	p := twoRulePolicy()
	p.Definitions = []string{"Remote work: working away from the office"}
	p.Exceptions = []string{"Travel with IT sign-off"}

	rooms, err := g.GenerateEscapeRooms(context.Background(), p, models.LevelBeginner)
	if err != nil {
		t.Fatalf("GenerateEscapeRooms() error = %v", err)
	}

	if len(rooms.Room1) != 1 || len(rooms.Room2) != 1 || len(rooms.Room3) != 1 || len(rooms.Room4) != 1 {
		t.Fatalf("expected one fallback puzzle per room, got %d/%d/%d/%d",
			len(rooms.Room1), len(rooms.Room2), len(rooms.Room3), len(rooms.Room4))
	}

	if rooms.Room1[0].Term != "Remote work" {
		t.Errorf("fallback definition term = %q", rooms.Room1[0].Term)
	}
	if len(rooms.Room1[0].WrongDefinitions) != 3 {
		t.Errorf("fallback wrong definitions = %d, want 3", len(rooms.Room1[0].WrongDefinitions))
	}
	if rooms.Room2[0].Exception != "Travel with IT sign-off" {
		t.Errorf("fallback exception = %q", rooms.Room2[0].Exception)
	}
	if rooms.Room3[0].Rule != "rule zero" {
		t.Errorf("fallback rule = %q", rooms.Room3[0].Rule)
	}
	if rooms.Room5.DefinitionQuestion.Definition != "working away from the office" {
		t.Errorf("fallback master definition = %q", rooms.Room5.DefinitionQuestion.Definition)
	}
	if len(rooms.Room5.RuleQuestion.WrongRules) != 3 {
		t.Errorf("fallback master wrong rules = %d, want 3", len(rooms.Room5.RuleQuestion.WrongRules))
	}
	if rooms.Room5.ViolationQuestion.Fix == "" || rooms.Room5.ViolationQuestion.Explanation == "" {
		t.Error("fallback master violation part is missing its fix or explanation")
	}
}

func TestGenerateEscapeRoomsInvalidLevel(t *testing.T) {
	g, _ := testGenerator(`{}`)
	_, err := g.GenerateEscapeRooms(context.Background(), twoRulePolicy(), models.Level("nightmare"))
	if !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestGenerateDefinitionPuzzlesPadding(t *testing.T) {
	response := `{"puzzles":[
		{"term":"VPN","definition":"an encrypted tunnel","wrong_definitions":["a hotspot"]},
		{"term":"","definition":"dropped for empty term","wrong_definitions":[]},
		{"term":"Badge","definition":"site access token","wrong_definitions":["a","b","c","d","e"]}
	]}`
	g, _ := testGenerator(response)
	p := twoRulePolicy()
	p.Definitions = []string{"VPN: an encrypted tunnel", "Badge: site access token"}
	puzzles := g.GenerateDefinitionPuzzles(context.Background(), p, 5)

	if len(puzzles) != 2 {
		t.Fatalf("got %d puzzles, want 2 (empty-term entry dropped)", len(puzzles))
	}
	for i, pz := range puzzles {
		if len(pz.WrongDefinitions) != 3 {
			t.Errorf("puzzle %d: %d wrong definitions, want exactly 3", i, len(pz.WrongDefinitions))
		}
	}
}

func TestGeneratePuzzlesTruncatesToCount(t *testing.T) {
	response := `{"puzzles":[
		{"situation":"s1","rule":"r1","wrong_rules":["a","b","c"]},
		{"situation":"s2","rule":"r2","wrong_rules":["a","b","c"]},
		{"situation":"s3","rule":"r3","wrong_rules":["a","b","c"]},
		{"situation":"s4","rule":"r4","wrong_rules":["a","b","c"]}
	]}`
	g, _ := testGenerator(response)
	puzzles := g.GenerateRulePuzzles(context.Background(), twoRulePolicy(), 3)
	if len(puzzles) != 3 {
		t.Fatalf("got %d puzzles, want 3", len(puzzles))
	}
}

func TestDefinitionPuzzlesSynthesizedFromRules(t *testing.T) {
	// With too few definitions, the generator derives puzzles from long
	// rules instead of calling the model at all.
	g, stub := testGenerator(`{"puzzles":[{"term":"should not","definition":"be used","wrong_definitions":[]}]}`)
	p := twoRulePolicy()
	longRule := "Employees must encrypt every laptop and external drive that leaves a company office, without exception, including short trips between buildings on the same campus"
	p.Rules = []string{"short", longRule}

	puzzles := g.GenerateDefinitionPuzzles(context.Background(), p, 3)

	if stub.lastReq.Prompt != "" {
		t.Fatal("expected no model call when synthesizing from rules")
	}
	if len(puzzles) != 1 {
		t.Fatalf("got %d puzzles, want 1 (short rule skipped)", len(puzzles))
	}
	if puzzles[0].Term != "Employees must" {
		t.Errorf("term = %q, want the rule's leading words", puzzles[0].Term)
	}
	if len(puzzles[0].Definition) != 103 {
		t.Errorf("definition length = %d, want 100 chars plus ellipsis", len(puzzles[0].Definition))
	}
	if len(puzzles[0].WrongDefinitions) != 3 {
		t.Errorf("wrong definitions = %d, want 3", len(puzzles[0].WrongDefinitions))
	}
}

func TestPuzzleGeneratorsRequireSourceFields(t *testing.T) {
	g, stub := testGenerator(`{"puzzles":[]}`)
	p := twoRulePolicy() // no exceptions

	if got := g.GenerateExceptionPuzzles(context.Background(), p, 2); got != nil {
		t.Errorf("exception puzzles without source exceptions = %v, want nil", got)
	}

	p.Rules = []string{}
	if got := g.GenerateRulePuzzles(context.Background(), p, 3); got != nil {
		t.Errorf("rule puzzles without rules = %v, want nil", got)
	}
	if got := g.GenerateViolationPuzzles(context.Background(), p, 2); got != nil {
		t.Errorf("violation puzzles without rules = %v, want nil", got)
	}
	if stub.lastReq.Prompt != "" {
		t.Fatal("expected no model calls for insufficient source fields")
	}
}

func TestGenerateMasterPuzzlePadsChoices(t *testing.T) {
	response := `{
		"scenario": "a combined scenario",
		"definition_question": {"term": "VPN", "definition": "an encrypted tunnel", "wrong_definitions": ["a hotspot"]},
		"rule_question": {"situation": "remote access", "rule": "use the VPN", "wrong_rules": []},
		"exception_question": {"scenario": "travel", "exception": "hotel networks with sign-off", "wrong_exceptions": ["a", "b", "c", "d"]},
		"violation_question": {"scenario": "printing", "violation": "printed at home", "fix": "use an office printer", "explanation": "confidential material stays on site"}
	}`
	g, _ := testGenerator(response)

	mp, ok := g.GenerateMasterPuzzle(context.Background(), twoRulePolicy())
	if !ok {
		t.Fatal("expected a usable master puzzle")
	}
	if n := len(mp.DefinitionQuestion.WrongDefinitions); n != 3 {
		t.Errorf("wrong definitions = %d, want 3", n)
	}
	if n := len(mp.RuleQuestion.WrongRules); n != 3 {
		t.Errorf("wrong rules = %d, want 3", n)
	}
	if n := len(mp.ExceptionQuestion.WrongExceptions); n != 3 {
		t.Errorf("wrong exceptions = %d, want 3", n)
	}
}

func TestGenerateMasterPuzzleRejectsIncomplete(t *testing.T) {
	g, _ := testGenerator(`{"scenario": "x", "definition_question": {"term": "VPN"}}`)
	if _, ok := g.GenerateMasterPuzzle(context.Background(), twoRulePolicy()); ok {
		t.Fatal("expected an incomplete master puzzle to be rejected")
	}
}

func TestLevelCounts(t *testing.T) {
	tests := []struct {
		level                              models.Level
		defs, exceptions, rules, violations int
	}{
		{models.LevelBeginner, 3, 2, 3, 2},
		{models.LevelIntermediate, 5, 3, 4, 3},
		{models.LevelExpert, 7, 4, 5, 4},
	}

	for _, tt := range tests {
		c := levelCounts[tt.level]
		if c.Definitions != tt.defs || c.Exceptions != tt.exceptions || c.Rules != tt.rules || c.Violations != tt.violations {
			t.Errorf("%s: counts %+v, want %d/%d/%d/%d", tt.level, c, tt.defs, tt.exceptions, tt.rules, tt.violations)
		}
	}
}
