package generator

import (
	"fmt"
	"strings"

	"github.com/policy-play/backend/internal/models"
)

// System prompts establish the JSON-only contract; user prompts carry the
// policy material and counts. Raw policy text is truncated so a long
// document cannot blow out the context window.

const maxPromptChars = 8000

func StructurerSystemPrompt() string {
	return `You are a compliance analyst. You convert workplace policy documents into structured JSON.
Respond with ONLY a JSON object, no markdown fences, no commentary.`
}

func BuildStructurerPrompt(rawText string) string {
	return fmt.Sprintf(`Analyze this policy document and extract its structure.

Return a JSON object with exactly these keys:
- "title": short document title (string or null)
- "summary": 2-3 sentence summary (string or null)
- "rules": list of concrete rules employees must follow
- "roles": list of roles or parties the policy mentions
- "clauses": list of notable clauses with their section references
- "definitions": list of defined terms, each as "Term: definition"
- "exceptions": list of exceptions to the rules
- "risks": list of risks the policy guards against
- "policy_sections": list of section headings

Document:
%s`, truncate(rawText, maxPromptChars))
}

func PuzzleSystemPrompt() string {
	return `You create educational puzzle content from workplace policies.
Respond with ONLY valid JSON, no markdown fences, no commentary.`
}

func BuildDefinitionPuzzlesPrompt(p *models.StructuredPolicy, count int) string {
	return fmt.Sprintf(`Create %d definition puzzle items from this policy.

Each item: {"term": ..., "definition": correct definition, "wrong_definitions": [3 plausible but wrong definitions]}.
Return {"puzzles": [...]}.

Definitions from the policy:
%s

Policy summary: %s`, count, bulletList(p.Definitions), p.SummaryOrDefault("(no summary)"))
}

func BuildExceptionPuzzlesPrompt(p *models.StructuredPolicy, count int) string {
	return fmt.Sprintf(`Create %d exception puzzle items from this policy.

Each item describes a scenario covered by a policy exception:
{"scenario": ..., "exception": the exception that applies, "wrong_exceptions": [3 plausible but wrong exceptions]}.
Return {"puzzles": [...]}.

Exceptions:
%s

Rules for context:
%s`, count, bulletList(p.Exceptions), bulletList(p.Rules))
}

func BuildRulePuzzlesPrompt(p *models.StructuredPolicy, count int) string {
	return fmt.Sprintf(`Create %d rule vault puzzle items from this policy.

Each item: {"situation": a concrete workplace situation, "rule": the rule that governs it (verbatim from the list), "wrong_rules": [3 other rules that do not apply]}.
Return {"puzzles": [...]}.

Rules:
%s`, count, bulletList(p.Rules))
}

func BuildViolationPuzzlesPrompt(p *models.StructuredPolicy, count int) string {
	return fmt.Sprintf(`Create %d violation repair puzzle items from this policy.

Each item: {"scenario": the context in which the action happens, "violation": an action that breaks a rule, "fix": how to do it compliantly, "explanation": why the fix complies}.
Return {"puzzles": [...]}.

Rules:
%s

Risks for context:
%s`, count, bulletList(p.Rules), bulletList(p.Risks))
}

func BuildMasterPuzzlePrompt(p *models.StructuredPolicy) string {
	return fmt.Sprintf(`Create one master puzzle: a single scenario with one sub-question per category, each sub-question a 4-way choice except the violation fix.

Return a JSON object:
{"scenario": one scenario tying all four parts together,
 "definition_question": {"term": ..., "definition": correct definition, "wrong_definitions": [3 wrong]},
 "rule_question": {"situation": ..., "rule": the governing rule, "wrong_rules": [3 wrong]},
 "exception_question": {"scenario": ..., "exception": the exception that applies, "wrong_exceptions": [3 wrong]},
 "violation_question": {"scenario": ..., "violation": the violating action, "fix": the compliant fix, "explanation": why the fix complies}}

Rules:
%s

Definitions:
%s

Exceptions:
%s`, bulletList(p.Rules), bulletList(p.Definitions), bulletList(p.Exceptions))
}

func BuildFallingBallPrompt(p *models.StructuredPolicy, count, wrongCount int) string {
	return fmt.Sprintf(`Create %d quick-fire falling ball quiz questions from this policy.

Each question: {"question": short question, "correct": the correct option, "wrong_options": [%d wrong options]}.
Options must be short phrases a player can read in under two seconds.
Return {"questions": [...]}.

Rules:
%s

Definitions:
%s`, count, wrongCount, bulletList(p.Rules), bulletList(p.Definitions))
}

func BuildScenarioPrompt(p *models.StructuredPolicy, rule string) string {
	return fmt.Sprintf(`Create one workplace scenario where the player must pick the compliant action under this rule:

Rule: %s

Return a JSON object:
{"scenario": 2-4 sentence situation, "options": [4 possible actions], "correct": index 0-3 of the compliant action, "explanation": why it is compliant (at least 20 characters), "policy_rule_used": the rule}.

Policy summary: %s`, rule, p.SummaryOrDefault("(no summary)"))
}

func BuildViolationScenarioPrompt(p *models.StructuredPolicy, rule string) string {
	return fmt.Sprintf(`Write one short workplace narrative (3-5 sentences) containing exactly one violation of the rule below. The violation must be a contiguous literal span of the narrative.

Rule: %s

Return a JSON object:
{"narrative": ..., "violation_text": the exact substring that is the violation, "violation_start": 0, "violation_end": 0, "explanation": why it violates the rule (at least 20 characters), "policy_rule_used": the rule}.

Policy summary: %s`, rule, p.SummaryOrDefault("(no summary)"))
}

func AnalysisSystemPrompt() string {
	return `You review draft workplace policies for quality problems.
Respond with ONLY valid JSON, no markdown fences, no commentary.`
}

func BuildAnalysisPrompt(rawText string) string {
	return fmt.Sprintf(`Review this draft policy for contradictions, ambiguities, and overlapping sections.

Return a JSON object:
{"contradictions": [...], "ambiguities": [...], "overlaps": [...], "suggestions": [...]}.
Each entry is one sentence naming the problem and where it occurs.

Draft:
%s`, truncate(rawText, maxPromptChars))
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return "(none listed)"
	}
	var b strings.Builder
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(item)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
