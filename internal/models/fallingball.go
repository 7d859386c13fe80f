package models

import "time"

// FallingBallQuestion is a timed tap question: one correct option falls
// among a level-dependent number of wrong ones.
type FallingBallQuestion struct {
	Question     string   `json:"question"`
	Correct      string   `json:"correct"`
	WrongOptions []string `json:"wrong_options"`
}

// FallingBallSet is the persisted question set for one (policy, level).
type FallingBallSet struct {
	ID        int64                 `json:"set_id"`
	PolicyID  int64                 `json:"policy_id"`
	Level     Level                 `json:"level"`
	Questions []FallingBallQuestion `json:"questions"`
	CreatedAt time.Time             `json:"created_at"`
}

// FallingBallAttempt tracks one playthrough of a set.
type FallingBallAttempt struct {
	ID            int64      `json:"attempt_id"`
	UserID        int64      `json:"user_id"`
	PolicyID      int64      `json:"policy_id"`
	Level         Level      `json:"level"`
	SetID         int64      `json:"game_set_id"`
	Score         int        `json:"score"`
	CorrectCount  int        `json:"correct_answers"`
	WrongCount    int        `json:"wrong_answers"`
	MissedCount   int        `json:"missed_answers"`
	TimeTakenSecs float64    `json:"time_taken"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// FallingBallAnswer is one recorded answer within an attempt.
type FallingBallAnswer struct {
	AttemptID      int64   `json:"attempt_id"`
	QuestionIndex  int     `json:"question_index"`
	SelectedOption string  `json:"selected_option"`
	IsCorrect      bool    `json:"is_correct"`
	TimeTakenSecs  float64 `json:"time_taken"`
	WasMissed      bool    `json:"was_missed"`
	Points         int     `json:"points"`
}

// StartFallingBallRequest begins an attempt against a generated set.
type StartFallingBallRequest struct {
	PolicyID int64 `json:"policy_id"`
	Level    Level `json:"level"`
}

// StartFallingBallResponse returns the attempt and its questions.
type StartFallingBallResponse struct {
	AttemptID int64                 `json:"attempt_id"`
	SetID     int64                 `json:"game_set_id"`
	Level     Level                 `json:"level"`
	Questions []FallingBallQuestion `json:"questions"`
}

// SubmitFallingBallRequest records one tapped (or missed) ball.
type SubmitFallingBallRequest struct {
	AttemptID      int64   `json:"attempt_id"`
	QuestionIndex  int     `json:"question_index"`
	SelectedOption string  `json:"selected_option"`
	WasMissed      bool    `json:"was_missed"`
	TimeTakenSecs  float64 `json:"time_taken"`
}

// SubmitFallingBallResponse reports the points for one answer. Duplicate
// submissions for the same question return the stored result with zero
// points awarded.
type SubmitFallingBallResponse struct {
	Correct       bool   `json:"correct"`
	Points        int    `json:"points"`
	NewScore      int    `json:"new_score"`
	CorrectAnswer string `json:"correct_answer"`
	Duplicate     bool   `json:"duplicate,omitempty"`
}

// FinishFallingBallRequest closes an attempt.
type FinishFallingBallRequest struct {
	AttemptID     int64   `json:"attempt_id"`
	TimeTakenSecs float64 `json:"time_taken"`
}

// FinishFallingBallResponse carries the final attempt state.
type FinishFallingBallResponse struct {
	FinalScore   int `json:"final_score"`
	CorrectCount int `json:"correct_answers"`
	WrongCount   int `json:"wrong_answers"`
	MissedCount  int `json:"missed_answers"`
}
