package fallingball

import (
	"context"
	"testing"

	"github.com/policy-play/backend/internal/models"
)

func TestScoreAnswer(t *testing.T) {
	tests := []struct {
		name        string
		isCorrect   bool
		wasMissed   bool
		timeTaken   float64
		wantPoints  int
		wantCorrect bool
	}{
		{"correct", true, false, 3.0, 10, true},
		{"correct and fast", true, false, 1.5, 12, true},
		{"correct at exactly 2s gets no bonus", true, false, 2.0, 10, true},
		{"wrong", false, false, 1.0, -5, false},
		{"missed", false, true, 0, -5, false},
		{"missed overrides correct selection", true, true, 1.0, -5, false},
		{"zero time gets no bonus", true, false, 0, 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points, correct := scoreAnswer(tt.isCorrect, tt.wasMissed, tt.timeTaken)
			if points != tt.wantPoints {
				t.Errorf("points = %d, want %d", points, tt.wantPoints)
			}
			if correct != tt.wantCorrect {
				t.Errorf("correct = %v, want %v", correct, tt.wantCorrect)
			}
		})
	}
}

// fakeStore holds one attempt and its set; RecordAnswer honors the
// same at-most-once semantics as the SQL unique constraint.
type fakeStore struct {
	attempt models.FallingBallAttempt
	set     models.FallingBallSet
	answers map[int]models.FallingBallAnswer
	applied int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		attempt: models.FallingBallAttempt{ID: 3, UserID: 42, PolicyID: 1, Level: models.LevelBeginner, SetID: 9},
		set: models.FallingBallSet{
			ID:       9,
			PolicyID: 1,
			Level:    models.LevelBeginner,
			Questions: []models.FallingBallQuestion{
				{Question: "What must remote access use?", Correct: "The company VPN", WrongOptions: []string{"Any wifi", "A hotspot"}},
			},
		},
		answers: map[int]models.FallingBallAnswer{},
	}
}

func (f *fakeStore) GetSet(policyID int64, level models.Level) (*models.FallingBallSet, error) {
	s := f.set
	return &s, nil
}

func (f *fakeStore) GetSetByID(id int64) (*models.FallingBallSet, error) {
	s := f.set
	return &s, nil
}

func (f *fakeStore) UpsertSet(policyID int64, level models.Level, questions []models.FallingBallQuestion) (*models.FallingBallSet, error) {
	s := f.set
	return &s, nil
}

func (f *fakeStore) CreateAttempt(userID, policyID int64, level models.Level, setID int64) (*models.FallingBallAttempt, error) {
	a := f.attempt
	return &a, nil
}

func (f *fakeStore) GetAttempt(id int64) (*models.FallingBallAttempt, error) {
	if id != f.attempt.ID {
		return nil, models.ErrNotFound
	}
	a := f.attempt
	return &a, nil
}

func (f *fakeStore) RecordAnswer(a *models.FallingBallAnswer) (bool, error) {
	if _, ok := f.answers[a.QuestionIndex]; ok {
		return false, nil
	}
	f.answers[a.QuestionIndex] = *a
	return true, nil
}

func (f *fakeStore) GetAnswer(attemptID int64, questionIndex int) (*models.FallingBallAnswer, error) {
	a, ok := f.answers[questionIndex]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &a, nil
}

func (f *fakeStore) ApplyAnswer(attemptID int64, points int, isCorrect, wasMissed bool) (int, error) {
	f.applied++
	f.attempt.Score += points
	return f.attempt.Score, nil
}

func (f *fakeStore) FinishAttempt(attemptID int64, timeTaken float64) (*models.FallingBallAttempt, error) {
	a := f.attempt
	return &a, nil
}

func (f *fakeStore) Leaderboard(policyID int64, level models.Level, limit int) ([]models.LeaderboardEntry, error) {
	return nil, nil
}

func TestSubmitAnswerDuplicateIsIdempotent(t *testing.T) {
	store := newFakeStore()
	svc := &Service{store: store}

	req := models.SubmitFallingBallRequest{
		AttemptID:      3,
		QuestionIndex:  0,
		SelectedOption: "The company VPN",
		TimeTakenSecs:  1.2,
	}

	first, err := svc.SubmitAnswer(context.Background(), 42, req)
	if err != nil {
		t.Fatalf("first SubmitAnswer() error = %v", err)
	}
	if !first.Correct || first.Points != 12 || first.Duplicate {
		t.Fatalf("first submission = %+v, want correct, 12 points, not duplicate", first)
	}

	// Resubmitting the same index, even with a different selection,
	// returns the stored result and leaves the score alone.
	req.SelectedOption = "Any wifi"
	second, err := svc.SubmitAnswer(context.Background(), 42, req)
	if err != nil {
		t.Fatalf("second SubmitAnswer() error = %v", err)
	}
	if !second.Duplicate {
		t.Error("expected the resubmission to be flagged duplicate")
	}
	if !second.Correct {
		t.Error("expected the originally recorded correctness, not the resubmitted one")
	}
	if second.Points != 0 {
		t.Errorf("duplicate points = %d, want 0", second.Points)
	}
	if second.NewScore != first.NewScore {
		t.Errorf("duplicate score = %d, want unchanged %d", second.NewScore, first.NewScore)
	}
	if store.applied != 1 {
		t.Errorf("score applied %d times, want once", store.applied)
	}
}
