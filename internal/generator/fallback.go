package generator

import (
	"fmt"
	"strings"

	"github.com/policy-play/backend/internal/models"
)

// Fallback puzzles are built from policy metadata alone, so a room is
// playable even when every generation attempt came back unusable.

func firstOr(items []string, def string) string {
	if len(items) > 0 {
		return items[0]
	}
	return def
}

// splitDefinition breaks a "Term: definition" entry into its parts.
func splitDefinition(entry string) (term, def string) {
	if i := strings.Index(entry, ":"); i > 0 {
		return strings.TrimSpace(entry[:i]), strings.TrimSpace(entry[i+1:])
	}
	return entry, entry
}

func fallbackDefinitionPuzzle(p *models.StructuredPolicy) models.DefinitionPuzzle {
	entry := firstOr(p.Definitions, p.TitleOrDefault()+": the policy governing this material")
	term, def := splitDefinition(entry)
	return models.DefinitionPuzzle{
		Term:       term,
		Definition: def,
		WrongDefinitions: padWrongOptions([]string{
			"A term defined in a different policy",
			"An informal practice with no written definition",
		}, wrongOptionsPerPuzzle),
	}
}

func fallbackExceptionPuzzle(p *models.StructuredPolicy) models.ExceptionPuzzle {
	exc := firstOr(p.Exceptions, "No exceptions apply; the rule holds in all cases")
	return models.ExceptionPuzzle{
		Scenario:  fmt.Sprintf("A situation arises under %q where the standard rule may not apply.", p.TitleOrDefault()),
		Exception: exc,
		WrongExceptions: padWrongOptions([]string{
			"Senior staff are always exempt",
			"The rule is waived outside business hours",
		}, wrongOptionsPerPuzzle),
	}
}

func fallbackRulePuzzle(p *models.StructuredPolicy) models.RuleVaultPuzzle {
	rule := firstOr(p.Rules, "Follow the policy as written")
	wrong := make([]string, 0, wrongOptionsPerPuzzle)
	for _, r := range p.Rules[min(1, len(p.Rules)):] {
		wrong = append(wrong, r)
		if len(wrong) == wrongOptionsPerPuzzle {
			break
		}
	}
	return models.RuleVaultPuzzle{
		Situation:  fmt.Sprintf("An employee must decide how to act under %q.", p.TitleOrDefault()),
		Rule:       rule,
		WrongRules: padWrongOptions(wrong, wrongOptionsPerPuzzle),
	}
}

func fallbackViolationPuzzle(p *models.StructuredPolicy) models.ViolationRepairPuzzle {
	rule := firstOr(p.Rules, "Follow the policy as written")
	return models.ViolationRepairPuzzle{
		Scenario:    fmt.Sprintf("An employee is working under %q.", p.TitleOrDefault()),
		Violation:   fmt.Sprintf("They act against the requirement: %s", rule),
		Fix:         fmt.Sprintf("Follow the requirement instead: %s", rule),
		Explanation: fmt.Sprintf("The policy requires: %s", rule),
	}
}

func fallbackMasterPuzzle(p *models.StructuredPolicy) models.MasterPuzzle {
	return models.MasterPuzzle{
		Scenario:           fmt.Sprintf("A final scenario drawing on every part of %q.", p.TitleOrDefault()),
		DefinitionQuestion: fallbackDefinitionPuzzle(p),
		RuleQuestion:       fallbackRulePuzzle(p),
		ExceptionQuestion:  fallbackExceptionPuzzle(p),
		ViolationQuestion:  fallbackViolationPuzzle(p),
	}
}
