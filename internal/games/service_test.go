package games

import (
	"errors"
	"testing"

	"github.com/policy-play/backend/internal/models"
)

func TestSpansOverlap(t *testing.T) {
	// The correct span is [10, 30].
	tests := []struct {
		name                 string
		userStart, userEnd   int
		want                 bool
	}{
		{"identical span", 10, 30, true},
		{"fully inside", 15, 20, true},
		{"fully covering", 0, 50, true},
		{"overlaps start", 0, 12, true},
		{"overlaps end", 28, 40, true},
		{"touches start boundary", 0, 10, true},
		{"touches end boundary", 30, 45, true},
		{"entirely before", 0, 9, false},
		{"entirely after", 31, 40, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := spansOverlap(tt.userStart, tt.userEnd, 10, 30); got != tt.want {
				t.Errorf("spansOverlap(%d, %d, 10, 30) = %v, want %v", tt.userStart, tt.userEnd, got, tt.want)
			}
		})
	}
}

func intp(v int) *int { return &v }

func scenarioSession() *models.GameSession {
	return &models.GameSession{
		ID:       1,
		GameType: models.GameTypeScenario,
		Scenario: &models.GameScenario{
			Scenario:       "a visitor wanders unescorted",
			Options:        []string{"escort them", "ignore them", "give them a badge", "ask them to hurry"},
			Correct:        0,
			Explanation:    "visitors must be escorted at all times",
			PolicyRuleUsed: "visitors must be escorted",
		},
	}
}

func violationSession() *models.GameSession {
	return &models.GameSession{
		ID:       2,
		GameType: models.GameTypeViolation,
		Violation: &models.ViolationScenario{
			Narrative:      "Sam left the laptop unlocked at the cafe table.",
			ViolationText:  "left the laptop unlocked",
			ViolationStart: 4,
			ViolationEnd:   28,
			Explanation:    "devices must be locked when unattended",
			PolicyRuleUsed: "lock unattended devices",
		},
	}
}

func TestGradeSession(t *testing.T) {
	tests := []struct {
		name              string
		session           *models.GameSession
		req               models.SubmitGameRequest
		wantCorrect       bool
		wantScore         int
		wantPolicyRule    string
		wantCorrectAnswer string
	}{
		{
			name:           "scenario correct hides the answer",
			session:        scenarioSession(),
			req:            models.SubmitGameRequest{SelectedOption: intp(0)},
			wantCorrect:    true,
			wantScore:      100,
			wantPolicyRule: "visitors must be escorted",
		},
		{
			name:              "scenario wrong reveals the option text",
			session:           scenarioSession(),
			req:               models.SubmitGameRequest{SelectedOption: intp(2)},
			wantCorrect:       false,
			wantScore:         0,
			wantPolicyRule:    "visitors must be escorted",
			wantCorrectAnswer: "escort them",
		},
		{
			name:           "violation overlap scores",
			session:        violationSession(),
			req:            models.SubmitGameRequest{SelectedStart: intp(20), SelectedEnd: intp(40)},
			wantCorrect:    true,
			wantScore:      100,
			wantPolicyRule: "lock unattended devices",
		},
		{
			name:              "violation miss reveals the violating text",
			session:           violationSession(),
			req:               models.SubmitGameRequest{SelectedStart: intp(30), SelectedEnd: intp(46)},
			wantCorrect:       false,
			wantScore:         0,
			wantPolicyRule:    "lock unattended devices",
			wantCorrectAnswer: "left the laptop unlocked",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := gradeSession(tt.session, tt.req)
			if err != nil {
				t.Fatalf("gradeSession() error = %v", err)
			}
			if result.Correct != tt.wantCorrect || result.Score != tt.wantScore {
				t.Errorf("correct/score = %v/%d, want %v/%d", result.Correct, result.Score, tt.wantCorrect, tt.wantScore)
			}
			if result.PolicyRule != tt.wantPolicyRule {
				t.Errorf("policy rule = %q, want %q", result.PolicyRule, tt.wantPolicyRule)
			}
			if result.CorrectAnswer != tt.wantCorrectAnswer {
				t.Errorf("correct answer = %q, want %q", result.CorrectAnswer, tt.wantCorrectAnswer)
			}
			if result.Explanation == "" {
				t.Error("expected an explanation on every result")
			}
		})
	}
}

func TestGradeSessionMissingFields(t *testing.T) {
	if _, err := gradeSession(scenarioSession(), models.SubmitGameRequest{}); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("scenario without an option: err = %v, want ErrInvalidInput", err)
	}
	if _, err := gradeSession(violationSession(), models.SubmitGameRequest{SelectedStart: intp(1)}); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("violation without a full span: err = %v, want ErrInvalidInput", err)
	}
}
