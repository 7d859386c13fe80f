package escape

import (
	"errors"
	"testing"

	"github.com/policy-play/backend/internal/models"
)

func TestMatchLenient(t *testing.T) {
	tests := []struct {
		name    string
		answer  string
		correct string
		want    bool
	}{
		{"exact", "lock the device", "lock the device", true},
		{"case folded", "Lock The Device", "lock the device", true},
		{"whitespace trimmed", "  lock the device  ", "lock the device", true},
		{"answer contains correct", "you should lock the device first", "lock the device", true},
		{"correct contains answer", "lock it", "you must lock it before leaving", true},
		{"unrelated", "turn it off", "lock the device", false},
		{"empty answer", "", "lock the device", false},
		{"too short to contain", "lo", "lock the device", false},
		{"empty correct", "anything here", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchLenient(tt.answer, tt.correct); got != tt.want {
				t.Errorf("matchLenient(%q, %q) = %v, want %v", tt.answer, tt.correct, got, tt.want)
			}
		})
	}
}

func testRooms() *models.EscapeRooms {
	return &models.EscapeRooms{
		Room1: []models.DefinitionPuzzle{
			{Term: "VPN", Definition: "an encrypted tunnel", WrongDefinitions: []string{"a", "b", "c"}},
		},
		Room2: []models.ExceptionPuzzle{
			{Scenario: "travel", Exception: "hotel networks with sign-off", WrongExceptions: []string{"a", "b", "c"}},
		},
		Room3: []models.RuleVaultPuzzle{
			{Situation: "remote access", Rule: "use the VPN", WrongRules: []string{"a", "b", "c"}},
		},
		Room4: []models.ViolationRepairPuzzle{
			{
				Scenario:    "finishing a report on a train",
				Violation:   "emailed a file to personal account",
				Fix:         "use the VPN on a work device",
				Explanation: "internal data stays on work devices over the VPN",
			},
		},
		Room5: models.MasterPuzzle{
			Scenario: "first remote week",
			DefinitionQuestion: models.DefinitionPuzzle{
				Term: "VPN", Definition: "an encrypted tunnel", WrongDefinitions: []string{"a", "b", "c"},
			},
			RuleQuestion: models.RuleVaultPuzzle{
				Situation: "remote access", Rule: "use the VPN", WrongRules: []string{"a", "b", "c"},
			},
			ExceptionQuestion: models.ExceptionPuzzle{
				Scenario: "travel", Exception: "hotel networks with sign-off", WrongExceptions: []string{"a", "b", "c"},
			},
			ViolationQuestion: models.ViolationRepairPuzzle{
				Scenario:    "printing a contract",
				Violation:   "printed it at home",
				Fix:         "use the VPN on a work device",
				Explanation: "confidential material stays inside the office",
			},
		},
	}
}

func TestEvaluateRooms(t *testing.T) {
	rooms := testRooms()

	tests := []struct {
		name    string
		room    int
		answer  models.RoomAnswer
		want    bool
		wantErr bool
	}{
		{"room1 correct", 1, models.RoomAnswer{SelectedDefinition: "an encrypted tunnel"}, true, false},
		{"room1 wrong", 1, models.RoomAnswer{SelectedDefinition: "a hotspot"}, false, false},
		{"room1 exact match is case sensitive", 1, models.RoomAnswer{SelectedDefinition: "An Encrypted Tunnel"}, false, false},
		{"room2 correct", 2, models.RoomAnswer{SelectedException: "hotel networks with sign-off"}, true, false},
		{"room3 correct", 3, models.RoomAnswer{SelectedRule: "use the VPN"}, true, false},
		{"room4 lenient fix", 4, models.RoomAnswer{Fix: "You should use the VPN on a work device instead."}, true, false},
		{"room4 short answer rejected", 4, models.RoomAnswer{Fix: "ok"}, false, false},
		{
			"room5 all four correct", 5,
			models.RoomAnswer{
				DefinitionAnswer: "an encrypted tunnel",
				RuleAnswer:       "use the VPN",
				ExceptionAnswer:  "hotel networks with sign-off",
				ViolationFix:     "use the vpn on a work device",
			},
			true, false,
		},
		{
			// Partial answers for the choice parts must not pass: they
			// come verbatim from the offered options.
			"room5 substrings fail the choice parts", 5,
			models.RoomAnswer{
				DefinitionAnswer: "encrypted",
				RuleAnswer:       "vpn",
				ExceptionAnswer:  "hotel",
				ViolationFix:     "use the vpn on a work device",
			},
			false, false,
		},
		{
			"room5 choice parts are case sensitive", 5,
			models.RoomAnswer{
				DefinitionAnswer: "An Encrypted Tunnel",
				RuleAnswer:       "use the VPN",
				ExceptionAnswer:  "hotel networks with sign-off",
				ViolationFix:     "use the vpn on a work device",
			},
			false, false,
		},
		{
			"room5 fix is still lenient", 5,
			models.RoomAnswer{
				DefinitionAnswer: "an encrypted tunnel",
				RuleAnswer:       "use the VPN",
				ExceptionAnswer:  "hotel networks with sign-off",
				ViolationFix:     "Please use the VPN on a work device from now on.",
			},
			true, false,
		},
		{
			"room5 one wrong fails all", 5,
			models.RoomAnswer{
				DefinitionAnswer: "an encrypted tunnel",
				RuleAnswer:       "use the VPN",
				ExceptionAnswer:  "never allowed",
				ViolationFix:     "use the vpn on a work device",
			},
			false, false,
		},
		{"puzzle index out of range", 1, models.RoomAnswer{PuzzleIndex: 5}, false, true},
		{"negative puzzle index", 2, models.RoomAnswer{PuzzleIndex: -1}, false, true},
		{"room zero", 0, models.RoomAnswer{}, false, true},
		{"room six", 6, models.RoomAnswer{}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := evaluate(rooms, tt.room, tt.answer)
			if tt.wantErr {
				if !errors.Is(err, models.ErrInvalidInput) {
					t.Fatalf("expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("evaluate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateExplanations(t *testing.T) {
	rooms := testRooms()

	tests := []struct {
		name   string
		room   int
		answer models.RoomAnswer
		want   string
	}{
		{"room1 has none", 1, models.RoomAnswer{SelectedDefinition: "a hotspot"}, ""},
		{"room4 from the puzzle", 4, models.RoomAnswer{Fix: "anything"}, "internal data stays on work devices over the VPN"},
		{"room5 from the violation part", 5, models.RoomAnswer{}, "confidential material stays inside the office"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, explanation, err := evaluate(rooms, tt.room, tt.answer)
			if err != nil {
				t.Fatalf("evaluate() error = %v", err)
			}
			if explanation != tt.want {
				t.Errorf("explanation = %q, want %q", explanation, tt.want)
			}
		})
	}
}

func TestRoomPoints(t *testing.T) {
	tests := []struct {
		name      string
		room      int
		correct   bool
		timeTaken float64
		want      int
	}{
		{"wrong answer", 1, false, 10, -5},
		{"correct, no time reported", 1, true, 0, 10},
		{"correct and fast", 1, true, 30, 15},
		{"correct at the window boundary", 1, true, 60, 10},
		{"correct but slow", 4, true, 120, 10},
		{"master room never gets the bonus", 5, true, 30, 10},
		{"master room wrong", 5, false, 30, -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := roomPoints(tt.room, tt.correct, tt.timeTaken); got != tt.want {
				t.Errorf("roomPoints(%d, %v, %v) = %d, want %d", tt.room, tt.correct, tt.timeTaken, got, tt.want)
			}
		})
	}
}

func TestTimeBonus(t *testing.T) {
	tests := []struct {
		timeTaken float64
		want      int
	}{
		{0, 100},
		{50, 95},
		{305, 70},
		{1000, 0},
		{999.9, 1},
		{5000, 0},
	}

	for _, tt := range tests {
		if got := timeBonus(tt.timeTaken); got != tt.want {
			t.Errorf("timeBonus(%v) = %d, want %d", tt.timeTaken, got, tt.want)
		}
	}
}
