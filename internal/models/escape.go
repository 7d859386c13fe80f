package models

import "time"

// Room status values tracked per attempt.
const (
	RoomPending = "pending"
	RoomDone    = "done"
	RoomFailed  = "failed"
)

// RoomCount is the number of puzzle rooms in an escape set.
const RoomCount = 5

// DefinitionPuzzle asks the player to match a term to its definition.
type DefinitionPuzzle struct {
	Term             string   `json:"term"`
	Definition       string   `json:"definition"`
	WrongDefinitions []string `json:"wrong_definitions"`
}

// ExceptionPuzzle asks whether a scenario falls under a policy exception.
type ExceptionPuzzle struct {
	Scenario        string   `json:"scenario"`
	Exception       string   `json:"exception"`
	WrongExceptions []string `json:"wrong_exceptions"`
}

// RuleVaultPuzzle asks the player to pick the rule that governs a situation.
type RuleVaultPuzzle struct {
	Situation  string   `json:"situation"`
	Rule       string   `json:"rule"`
	WrongRules []string `json:"wrong_rules"`
}

// ViolationRepairPuzzle shows a violating action inside a scenario and
// asks for the fix.
type ViolationRepairPuzzle struct {
	Scenario    string `json:"scenario"`
	Violation   string `json:"violation"`
	Fix         string `json:"fix"`
	Explanation string `json:"explanation"`
}

// MasterPuzzle is the final room: one scenario with a sub-question from
// each earlier room's category, all answered in a single submission.
// The definition, rule, and exception parts are 4-way choices; the
// violation part is repaired free-form.
type MasterPuzzle struct {
	Scenario           string                `json:"scenario"`
	DefinitionQuestion DefinitionPuzzle      `json:"definition_question"`
	RuleQuestion       RuleVaultPuzzle       `json:"rule_question"`
	ExceptionQuestion  ExceptionPuzzle       `json:"exception_question"`
	ViolationQuestion  ViolationRepairPuzzle `json:"violation_question"`
}

// EscapeRooms holds the generated puzzle content for all five rooms.
type EscapeRooms struct {
	Room1 []DefinitionPuzzle      `json:"room1"`
	Room2 []ExceptionPuzzle       `json:"room2"`
	Room3 []RuleVaultPuzzle       `json:"room3"`
	Room4 []ViolationRepairPuzzle `json:"room4"`
	Room5 MasterPuzzle            `json:"room5"`
}

// EscapeRoomSet is a persisted escape room for one (policy, level) pair.
type EscapeRoomSet struct {
	ID        int64       `json:"id"`
	PolicyID  int64       `json:"policy_id"`
	Level     Level       `json:"level"`
	Rooms     EscapeRooms `json:"rooms"`
	CreatedAt time.Time   `json:"created_at"`
}

// EscapeAttempt tracks one player's run through an escape room set.
type EscapeAttempt struct {
	ID             int64      `json:"attempt_id"`
	UserID         int64      `json:"user_id"`
	PolicyID       int64      `json:"policy_id"`
	Level          Level      `json:"level"`
	EscapeRoomID   int64      `json:"escape_room_id"`
	Score          int        `json:"score"`
	TimeTakenSecs  float64    `json:"time_taken"`
	RoomStatus     []string   `json:"room_status"`
	RoomsCompleted []int      `json:"rooms_completed"`
	CreatedAt      time.Time  `json:"created_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// StartEscapeRequest begins an attempt against a policy at a level.
type StartEscapeRequest struct {
	PolicyID int64 `json:"policy_id"`
	Level    Level `json:"level"`
}

// StartEscapeResponse returns the attempt plus the puzzle content.
type StartEscapeResponse struct {
	AttemptID    int64       `json:"attempt_id"`
	EscapeRoomID int64       `json:"escape_room_id"`
	Level        Level       `json:"level"`
	Rooms        EscapeRooms `json:"rooms"`
}

// SubmitRoomRequest carries a room answer. Which answer fields are
// consulted depends on Room.
type SubmitRoomRequest struct {
	Room          int        `json:"room"`
	TimeTakenSecs float64    `json:"time_taken"`
	Answer        RoomAnswer `json:"answer"`
}

// RoomAnswer is the union of per-room answer shapes. Which fields are
// meaningful depends on the room number.
type RoomAnswer struct {
	PuzzleIndex        int    `json:"puzzle_index"`
	SelectedDefinition string `json:"selected_definition,omitempty"`
	SelectedException  string `json:"selected_exception,omitempty"`
	SelectedRule       string `json:"selected_rule,omitempty"`
	Fix                string `json:"fix,omitempty"`
	DefinitionAnswer   string `json:"definition_answer,omitempty"`
	RuleAnswer         string `json:"rule_answer,omitempty"`
	ExceptionAnswer    string `json:"exception_answer,omitempty"`
	ViolationFix       string `json:"violation_fix,omitempty"`
}

// SubmitRoomResponse reports the outcome of one room submission.
// Explanation is filled for the rooms whose puzzles carry one.
type SubmitRoomResponse struct {
	Correct     bool   `json:"correct"`
	Points      int    `json:"points"`
	TotalScore  int    `json:"total_score"`
	RoomStatus  string `json:"room_status"`
	Explanation string `json:"explanation"`
}

// FinishEscapeRequest completes an attempt.
type FinishEscapeRequest struct {
	TimeTakenSecs float64 `json:"time_taken"`
}

// FinishEscapeResponse reports the final score including the time bonus.
type FinishEscapeResponse struct {
	FinalScore     int     `json:"final_score"`
	TimeTaken      float64 `json:"time_taken"`
	TimeBonus      int     `json:"time_bonus"`
	RoomsCompleted []int   `json:"rooms_completed"`
}
