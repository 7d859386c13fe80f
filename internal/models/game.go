package models

import "time"

// Game type identifiers for one-shot sessions.
const (
	GameTypeScenario  = "scenario"
	GameTypeViolation = "violation"
)

// GameScenario is a 4-option workplace scenario question: pick the
// compliant action.
type GameScenario struct {
	Scenario       string   `json:"scenario"`
	Options        []string `json:"options"`
	Correct        int      `json:"correct"`
	Explanation    string   `json:"explanation"`
	PolicyRuleUsed string   `json:"policy_rule_used"`
}

// ViolationScenario embeds a policy violation inside a narrative; the
// player marks the span of text that violates the rule.
type ViolationScenario struct {
	Narrative      string `json:"narrative"`
	ViolationText  string `json:"violation_text"`
	ViolationStart int    `json:"violation_start"`
	ViolationEnd   int    `json:"violation_end"`
	Explanation    string `json:"explanation"`
	PolicyRuleUsed string `json:"policy_rule_used"`
}

// GameSession is a persisted one-shot game: exactly one scenario or one
// violation round, answered at most once.
type GameSession struct {
	ID         int64              `json:"session_id"`
	PolicyID   int64              `json:"policy_id"`
	UserID     int64              `json:"user_id"`
	GameType   string             `json:"game_type"`
	Scenario   *GameScenario      `json:"scenario,omitempty"`
	Violation  *ViolationScenario `json:"violation,omitempty"`
	Completed  bool               `json:"completed"`
	Correct    bool               `json:"correct"`
	Score      int                `json:"score"`
	CreatedAt  time.Time          `json:"created_at"`
	AnsweredAt *time.Time         `json:"answered_at,omitempty"`
}

// GenerateBatchRequest asks for several sessions at once, cycling
// through the policy's rules.
type GenerateBatchRequest struct {
	GameType string `json:"game_type"`
	Count    int    `json:"count"`
}

// SubmitGameRequest answers a session. SelectedOption is used for
// scenario sessions; the span fields for violation sessions.
type SubmitGameRequest struct {
	SessionID      int64 `json:"session_id"`
	SelectedOption *int  `json:"selected_option,omitempty"`
	SelectedStart  *int  `json:"selected_start,omitempty"`
	SelectedEnd    *int  `json:"selected_end,omitempty"`
}

// GameResult is the outcome of answering a one-shot session.
// CorrectAnswer is revealed only when the submission was wrong.
type GameResult struct {
	SessionID     int64  `json:"session_id"`
	Correct       bool   `json:"correct"`
	Score         int    `json:"score"`
	Explanation   string `json:"explanation"`
	PolicyRule    string `json:"policy_rule"`
	CorrectAnswer string `json:"correct_answer,omitempty"`
}

// UserScores aggregates a user's results across all game modes.
type UserScores struct {
	UserID           int64 `json:"user_id"`
	GameScore        int   `json:"game_score"`
	GamesPlayed      int   `json:"games_played"`
	GamesCorrect     int   `json:"games_correct"`
	EscapeScore      int   `json:"escape_score"`
	EscapeRuns       int   `json:"escape_runs"`
	FallingBallScore int   `json:"falling_ball_score"`
	FallingBallRuns  int   `json:"falling_ball_runs"`
	TotalScore       int   `json:"total_score"`
}

// LeaderboardEntry is one row of a leaderboard.
type LeaderboardEntry struct {
	Rank       int    `json:"rank"`
	UserID     int64  `json:"user_id"`
	Name       string `json:"name"`
	TotalScore int    `json:"total_score"`
}
