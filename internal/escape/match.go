package escape

import (
	"fmt"
	"strings"

	"github.com/policy-play/backend/internal/models"
)

// minLenientChars guards the containment check: Very short answers would
// otherwise match almost anything.
const minLenientChars = 3

// matchExact compares answers after trimming whitespace. Used for the
// multiple-choice rooms, where the answer is one of the offered options.
func matchExact(selected, correct string) bool {
	return strings.TrimSpace(selected) == strings.TrimSpace(correct)
}

// matchLenient compares free-form answers: case-folded equality, or
// containment in either direction once the answer is long enough to be
// meaningful.
func matchLenient(answer, correct string) bool {
	a := strings.ToLower(strings.TrimSpace(answer))
	c := strings.ToLower(strings.TrimSpace(correct))
	if len(a) < minLenientChars || c == "" {
		return false
	}
	if a == c {
		return true
	}
	return strings.Contains(a, c) || strings.Contains(c, a)
}

// evaluate grades one room answer against the generated content and
// returns the puzzle's explanation where one exists. Each room kind has
// its own decoder; an out-of-range room or puzzle index is invalid
// input.
func evaluate(rooms *models.EscapeRooms, room int, ans models.RoomAnswer) (bool, string, error) {
	switch room {
	case 1:
		if ans.PuzzleIndex < 0 || ans.PuzzleIndex >= len(rooms.Room1) {
			return false, "", fmt.Errorf("room 1 puzzle index %d: %w", ans.PuzzleIndex, models.ErrInvalidInput)
		}
		return matchExact(ans.SelectedDefinition, rooms.Room1[ans.PuzzleIndex].Definition), "", nil
	case 2:
		if ans.PuzzleIndex < 0 || ans.PuzzleIndex >= len(rooms.Room2) {
			return false, "", fmt.Errorf("room 2 puzzle index %d: %w", ans.PuzzleIndex, models.ErrInvalidInput)
		}
		return matchExact(ans.SelectedException, rooms.Room2[ans.PuzzleIndex].Exception), "", nil
	case 3:
		if ans.PuzzleIndex < 0 || ans.PuzzleIndex >= len(rooms.Room3) {
			return false, "", fmt.Errorf("room 3 puzzle index %d: %w", ans.PuzzleIndex, models.ErrInvalidInput)
		}
		return matchExact(ans.SelectedRule, rooms.Room3[ans.PuzzleIndex].Rule), "", nil
	case 4:
		if ans.PuzzleIndex < 0 || ans.PuzzleIndex >= len(rooms.Room4) {
			return false, "", fmt.Errorf("room 4 puzzle index %d: %w", ans.PuzzleIndex, models.ErrInvalidInput)
		}
		pz := rooms.Room4[ans.PuzzleIndex]
		return matchLenient(ans.Fix, pz.Fix), pz.Explanation, nil
	case 5:
		// The first three parts are choices from the offered options;
		// only the typed violation fix is matched leniently.
		mp := rooms.Room5
		ok := matchExact(ans.DefinitionAnswer, mp.DefinitionQuestion.Definition) &&
			matchExact(ans.RuleAnswer, mp.RuleQuestion.Rule) &&
			matchExact(ans.ExceptionAnswer, mp.ExceptionQuestion.Exception) &&
			matchLenient(ans.ViolationFix, mp.ViolationQuestion.Fix)
		return ok, mp.ViolationQuestion.Explanation, nil
	default:
		return false, "", fmt.Errorf("room %d out of range [1,%d]: %w", room, models.RoomCount, models.ErrInvalidInput)
	}
}
