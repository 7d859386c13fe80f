package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/policy-play/backend/internal/models"
)

// Per-level puzzle counts for each room.
var levelCounts = map[models.Level]struct {
	Definitions int
	Exceptions  int
	Rules       int
	Violations  int
}{
	models.LevelBeginner:     {Definitions: 3, Exceptions: 2, Rules: 3, Violations: 2},
	models.LevelIntermediate: {Definitions: 5, Exceptions: 3, Rules: 4, Violations: 3},
	models.LevelExpert:       {Definitions: 7, Exceptions: 4, Rules: 5, Violations: 4},
}

const wrongOptionsPerPuzzle = 3

// decodeList decodes a model response whose payload is a list. The list
// may sit under "puzzles", "questions", or "items", or be the top-level
// value; models are not consistent about the wrapper key.
func decodeList(body string, v any) error {
	var container struct {
		Puzzles   json.RawMessage `json:"puzzles"`
		Questions json.RawMessage `json:"questions"`
		Items     json.RawMessage `json:"items"`
	}
	if err := decodeJSON(body, &container); err == nil {
		for _, raw := range []json.RawMessage{container.Puzzles, container.Questions, container.Items} {
			if len(raw) > 0 && string(raw) != "null" {
				if err := json.Unmarshal(raw, v); err != nil {
					return &FormatError{Detail: "list payload did not parse", Err: err}
				}
				return nil
			}
		}
	}
	return decodeJSON(body, v)
}

// generatePuzzleList runs one puzzle call and decodes the list. Errors
// are logged and swallowed: room generation degrades to an empty list so
// the orchestrator can substitute a fallback.
func generatePuzzleList[T any](ctx context.Context, llm LLMClient, room, prompt string) []T {
	resp, err := llm.Generate(ctx, GenerateRequest{
		System:      PuzzleSystemPrompt(),
		Prompt:      prompt,
		Temperature: 0.7,
		MaxTokens:   4096,
	})
	if err != nil {
		log.Printf("[generator] WARN: %s generation failed: %v", room, err)
		return nil
	}

	var items []T
	if err := decodeList(resp.Content, &items); err != nil {
		log.Printf("[generator] WARN: %s response unusable: %v", room, err)
		return nil
	}
	return items
}

// padWrongOptions brings a wrong-answer list to exactly want entries,
// truncating extras and filling gaps with generic distractors.
func padWrongOptions(opts []string, want int) []string {
	out := make([]string, 0, want)
	for _, o := range opts {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
		if len(out) == want {
			return out
		}
	}
	fillers := []string{
		"This is not addressed by the policy",
		"The policy leaves this to manager discretion",
		"This only applies to contractors",
		"This was removed in the latest revision",
	}
	for i := 0; len(out) < want; i++ {
		out = append(out, fillers[i%len(fillers)])
	}
	return out
}

// minSourceDefinitions is the smallest definition list worth sending to
// the model; below it, puzzles are synthesized from rules instead.
const minSourceDefinitions = 2

// definitionPuzzlesFromRules derives degraded definition puzzles from
// long rule strings when the policy defines too few terms. No model call
// is made. Returns nil when the rules are too thin to use.
func definitionPuzzlesFromRules(rules []string) []models.DefinitionPuzzle {
	var puzzles []models.DefinitionPuzzle
	for _, rule := range rules {
		if len(puzzles) == 3 {
			break
		}
		rule = strings.TrimSpace(rule)
		if len(rule) <= 20 {
			continue
		}
		words := strings.Fields(rule)
		if len(words) < 4 {
			continue
		}
		def := rule
		if len(def) > 100 {
			def = def[:100] + "..."
		}
		puzzles = append(puzzles, models.DefinitionPuzzle{
			Term:             words[0] + " " + words[1],
			Definition:       def,
			WrongDefinitions: padWrongOptions(nil, wrongOptionsPerPuzzle),
		})
	}
	return puzzles
}

func (g *Generator) GenerateDefinitionPuzzles(ctx context.Context, p *models.StructuredPolicy, count int) []models.DefinitionPuzzle {
	if len(p.Definitions) < minSourceDefinitions {
		return definitionPuzzlesFromRules(p.Rules)
	}
	puzzles := generatePuzzleList[models.DefinitionPuzzle](ctx, g.llm, "definition puzzles", BuildDefinitionPuzzlesPrompt(p, count))
	kept := puzzles[:0]
	for _, pz := range puzzles {
		if pz.Term == "" || pz.Definition == "" {
			continue
		}
		pz.WrongDefinitions = padWrongOptions(pz.WrongDefinitions, wrongOptionsPerPuzzle)
		kept = append(kept, pz)
	}
	if len(kept) > count {
		kept = kept[:count]
	}
	return kept
}

func (g *Generator) GenerateExceptionPuzzles(ctx context.Context, p *models.StructuredPolicy, count int) []models.ExceptionPuzzle {
	if len(p.Exceptions) == 0 || len(p.Rules) == 0 {
		return nil
	}
	puzzles := generatePuzzleList[models.ExceptionPuzzle](ctx, g.llm, "exception puzzles", BuildExceptionPuzzlesPrompt(p, count))
	kept := puzzles[:0]
	for _, pz := range puzzles {
		if pz.Scenario == "" || pz.Exception == "" {
			continue
		}
		pz.WrongExceptions = padWrongOptions(pz.WrongExceptions, wrongOptionsPerPuzzle)
		kept = append(kept, pz)
	}
	if len(kept) > count {
		kept = kept[:count]
	}
	return kept
}

func (g *Generator) GenerateRulePuzzles(ctx context.Context, p *models.StructuredPolicy, count int) []models.RuleVaultPuzzle {
	if len(p.Rules) == 0 {
		return nil
	}
	puzzles := generatePuzzleList[models.RuleVaultPuzzle](ctx, g.llm, "rule vault puzzles", BuildRulePuzzlesPrompt(p, count))
	kept := puzzles[:0]
	for _, pz := range puzzles {
		if pz.Situation == "" || pz.Rule == "" {
			continue
		}
		pz.WrongRules = padWrongOptions(pz.WrongRules, wrongOptionsPerPuzzle)
		kept = append(kept, pz)
	}
	if len(kept) > count {
		kept = kept[:count]
	}
	return kept
}

func (g *Generator) GenerateViolationPuzzles(ctx context.Context, p *models.StructuredPolicy, count int) []models.ViolationRepairPuzzle {
	if len(p.Rules) == 0 {
		return nil
	}
	puzzles := generatePuzzleList[models.ViolationRepairPuzzle](ctx, g.llm, "violation repair puzzles", BuildViolationPuzzlesPrompt(p, count))
	kept := puzzles[:0]
	for _, pz := range puzzles {
		if pz.Violation == "" || pz.Fix == "" {
			continue
		}
		kept = append(kept, pz)
	}
	if len(kept) > count {
		kept = kept[:count]
	}
	return kept
}

func (g *Generator) GenerateMasterPuzzle(ctx context.Context, p *models.StructuredPolicy) (models.MasterPuzzle, bool) {
	resp, err := g.llm.Generate(ctx, GenerateRequest{
		System:      PuzzleSystemPrompt(),
		Prompt:      BuildMasterPuzzlePrompt(p),
		Temperature: 0.7,
		MaxTokens:   2048,
	})
	if err != nil {
		log.Printf("[generator] WARN: master puzzle generation failed: %v", err)
		return models.MasterPuzzle{}, false
	}

	var mp models.MasterPuzzle
	if err := decodeJSON(resp.Content, &mp); err != nil {
		log.Printf("[generator] WARN: master puzzle response unusable: %v", err)
		return models.MasterPuzzle{}, false
	}
	if mp.DefinitionQuestion.Definition == "" || mp.RuleQuestion.Rule == "" ||
		mp.ExceptionQuestion.Exception == "" || mp.ViolationQuestion.Fix == "" {
		log.Printf("[generator] WARN: master puzzle missing sub-questions, using fallback")
		return models.MasterPuzzle{}, false
	}
	mp.DefinitionQuestion.WrongDefinitions = padWrongOptions(mp.DefinitionQuestion.WrongDefinitions, wrongOptionsPerPuzzle)
	mp.RuleQuestion.WrongRules = padWrongOptions(mp.RuleQuestion.WrongRules, wrongOptionsPerPuzzle)
	mp.ExceptionQuestion.WrongExceptions = padWrongOptions(mp.ExceptionQuestion.WrongExceptions, wrongOptionsPerPuzzle)
	return mp, true
}

// withFallback returns the generated list, or one fallback item when the
// generator came back empty.
func withFallback[T any](items []T, fallback func() T) []T {
	if len(items) > 0 {
		return items
	}
	return []T{fallback()}
}

// GenerateEscapeRooms builds all five rooms for a policy at a level.
// Individual room failures never fail the set: each empty room gets one
// fallback puzzle derived from the policy metadata.
func (g *Generator) GenerateEscapeRooms(ctx context.Context, p *models.StructuredPolicy, level models.Level) (*models.EscapeRooms, error) {
	if !models.ValidLevels[level] {
		return nil, fmt.Errorf("generate escape rooms: level %q: %w", level, models.ErrInvalidInput)
	}
	counts := levelCounts[level]

	rooms := &models.EscapeRooms{
		Room1: withFallback(g.GenerateDefinitionPuzzles(ctx, p, counts.Definitions), func() models.DefinitionPuzzle {
			return fallbackDefinitionPuzzle(p)
		}),
		Room2: withFallback(g.GenerateExceptionPuzzles(ctx, p, counts.Exceptions), func() models.ExceptionPuzzle {
			return fallbackExceptionPuzzle(p)
		}),
		Room3: withFallback(g.GenerateRulePuzzles(ctx, p, counts.Rules), func() models.RuleVaultPuzzle {
			return fallbackRulePuzzle(p)
		}),
		Room4: withFallback(g.GenerateViolationPuzzles(ctx, p, counts.Violations), func() models.ViolationRepairPuzzle {
			return fallbackViolationPuzzle(p)
		}),
	}

	if mp, ok := g.GenerateMasterPuzzle(ctx, p); ok {
		rooms.Room5 = mp
	} else {
		rooms.Room5 = fallbackMasterPuzzle(p)
	}

	return rooms, nil
}
