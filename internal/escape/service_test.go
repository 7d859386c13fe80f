package escape

import (
	"context"
	"testing"

	"github.com/policy-play/backend/internal/models"
)

// fakeStore keeps one attempt and one room set in memory.
type fakeStore struct {
	attempt     models.EscapeAttempt
	rooms       *models.EscapeRooms
	lastPoints  int
	lastStatus  string
	lastRoomIdx int
}

func (f *fakeStore) GetRoomSet(policyID int64, level models.Level) (*models.EscapeRoomSet, error) {
	return &models.EscapeRoomSet{ID: 1, PolicyID: policyID, Level: level, Rooms: *f.rooms}, nil
}

func (f *fakeStore) UpsertRoomSet(policyID int64, level models.Level, rooms *models.EscapeRooms) (*models.EscapeRoomSet, error) {
	return &models.EscapeRoomSet{ID: 1, PolicyID: policyID, Level: level, Rooms: *rooms}, nil
}

func (f *fakeStore) CreateAttempt(userID, policyID int64, level models.Level, roomSetID int64) (*models.EscapeAttempt, error) {
	return &f.attempt, nil
}

func (f *fakeStore) GetAttempt(id int64) (*models.EscapeAttempt, error) {
	if id != f.attempt.ID {
		return nil, models.ErrNotFound
	}
	a := f.attempt
	return &a, nil
}

func (f *fakeStore) ApplyRoomResult(attemptID int64, roomIdx int, status string, points int) (int, error) {
	f.lastRoomIdx = roomIdx
	f.lastStatus = status
	f.lastPoints = points
	f.attempt.Score += points
	return f.attempt.Score, nil
}

func (f *fakeStore) FinishAttempt(attemptID int64, bonus int, timeTaken float64) (int, error) {
	f.attempt.Score += bonus
	return f.attempt.Score, nil
}

func (f *fakeStore) Leaderboard(level models.Level, limit int) ([]models.LeaderboardEntry, error) {
	return nil, nil
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		attempt: models.EscapeAttempt{
			ID:             7,
			UserID:         42,
			PolicyID:       1,
			Level:          models.LevelBeginner,
			RoomStatus:     pendingStatuses(),
			RoomsCompleted: []int{1, 3},
		},
		rooms: testRooms(),
	}
}

func TestSubmitRoomSpeedBonusSkipsMasterRoom(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil, nil)

	// A fast, fully correct master-room answer scores the flat +10.
	resp, err := svc.SubmitRoom(context.Background(), 7, 42, models.SubmitRoomRequest{
		Room:          5,
		TimeTakenSecs: 12,
		Answer: models.RoomAnswer{
			DefinitionAnswer: "an encrypted tunnel",
			RuleAnswer:       "use the VPN",
			ExceptionAnswer:  "hotel networks with sign-off",
			ViolationFix:     "use the vpn on a work device",
		},
	})
	if err != nil {
		t.Fatalf("SubmitRoom() error = %v", err)
	}
	if !resp.Correct {
		t.Fatal("expected a correct master-room answer")
	}
	if resp.Points != 10 {
		t.Errorf("master room points = %d, want 10 (no speed bonus)", resp.Points)
	}
	if resp.Explanation == "" {
		t.Error("expected the violation part's explanation on the response")
	}

	// The same speed on an ordinary room does earn the bonus.
	store = newFakeStore()
	svc = NewService(store, nil, nil)
	resp, err = svc.SubmitRoom(context.Background(), 7, 42, models.SubmitRoomRequest{
		Room:          1,
		TimeTakenSecs: 12,
		Answer:        models.RoomAnswer{SelectedDefinition: "an encrypted tunnel"},
	})
	if err != nil {
		t.Fatalf("SubmitRoom() error = %v", err)
	}
	if resp.Points != 15 {
		t.Errorf("room 1 points = %d, want 15", resp.Points)
	}
}

func TestFinishAttemptResponse(t *testing.T) {
	store := newFakeStore()
	store.attempt.Score = 40
	svc := NewService(store, nil, nil)

	resp, err := svc.FinishAttempt(context.Background(), 7, 42, models.FinishEscapeRequest{TimeTakenSecs: 305})
	if err != nil {
		t.Fatalf("FinishAttempt() error = %v", err)
	}
	if resp.TimeBonus != 70 {
		t.Errorf("time bonus = %d, want 70", resp.TimeBonus)
	}
	if resp.FinalScore != 110 {
		t.Errorf("final score = %d, want 110", resp.FinalScore)
	}
	if resp.TimeTaken != 305 {
		t.Errorf("time taken = %v, want 305", resp.TimeTaken)
	}
	if len(resp.RoomsCompleted) != 2 {
		t.Errorf("rooms completed = %v, want the attempt's two rooms", resp.RoomsCompleted)
	}
}
