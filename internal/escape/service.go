package escape

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/singleflight"

	"github.com/policy-play/backend/internal/generator"
	"github.com/policy-play/backend/internal/models"
	"github.com/policy-play/backend/internal/policies"
)

// Scoring constants for escape rooms.
const (
	pointsCorrect   = 10
	pointsIncorrect = -5
	speedBonus      = 5
	speedWindowSecs = 60.0
)

// Storer is the persistence surface the service needs. *Store satisfies
// it.
type Storer interface {
	GetRoomSet(policyID int64, level models.Level) (*models.EscapeRoomSet, error)
	UpsertRoomSet(policyID int64, level models.Level, rooms *models.EscapeRooms) (*models.EscapeRoomSet, error)
	CreateAttempt(userID, policyID int64, level models.Level, roomSetID int64) (*models.EscapeAttempt, error)
	GetAttempt(id int64) (*models.EscapeAttempt, error)
	ApplyRoomResult(attemptID int64, roomIdx int, status string, points int) (int, error)
	FinishAttempt(attemptID int64, bonus int, timeTaken float64) (int, error)
	Leaderboard(level models.Level, limit int) ([]models.LeaderboardEntry, error)
}

type Service struct {
	store     Storer
	policies  *policies.Store
	generator *generator.Generator
	genGroup  singleflight.Group
}

func NewService(store Storer, policyStore *policies.Store, gen *generator.Generator) *Service {
	return &Service{store: store, policies: policyStore, generator: gen}
}

// EnsureRoomSet returns the room set for (policy, level), generating it
// when missing. A set whose first room is empty is treated as a failed
// generation and regenerated, as is any set when force is true.
// Generation is deduplicated per (policy, level): concurrent callers
// share one in-flight generation.
func (s *Service) EnsureRoomSet(ctx context.Context, policyID int64, level models.Level, force bool) (*models.EscapeRoomSet, error) {
	if !models.ValidLevels[level] {
		return nil, fmt.Errorf("level %q: %w", level, models.ErrInvalidInput)
	}

	if !force {
		set, err := s.store.GetRoomSet(policyID, level)
		if err == nil && len(set.Rooms.Room1) > 0 {
			return set, nil
		}
		if err != nil && err != models.ErrNotFound {
			return nil, err
		}
	}

	key := fmt.Sprintf("%d:%s", policyID, level)
	v, err, _ := s.genGroup.Do(key, func() (interface{}, error) {
		return s.generateRoomSet(ctx, policyID, level)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.EscapeRoomSet), nil
}

func (s *Service) generateRoomSet(ctx context.Context, policyID int64, level models.Level) (*models.EscapeRoomSet, error) {
	policy, err := s.policies.GetByID(policyID)
	if err != nil {
		return nil, err
	}

	rooms, err := s.generator.GenerateEscapeRooms(ctx, &policy.Structured, level)
	if err != nil {
		return nil, err
	}

	set, err := s.store.UpsertRoomSet(policyID, level, rooms)
	if err != nil {
		return nil, err
	}

	log.Printf("[escape] generated room set %d for policy %d level %s (%d/%d/%d/%d puzzles)",
		set.ID, policyID, level, len(rooms.Room1), len(rooms.Room2), len(rooms.Room3), len(rooms.Room4))
	return set, nil
}

// StartAttempt ensures content exists and opens a fresh attempt.
func (s *Service) StartAttempt(ctx context.Context, userID int64, req models.StartEscapeRequest) (*models.StartEscapeResponse, error) {
	set, err := s.EnsureRoomSet(ctx, req.PolicyID, req.Level, false)
	if err != nil {
		return nil, err
	}

	attempt, err := s.store.CreateAttempt(userID, req.PolicyID, req.Level, set.ID)
	if err != nil {
		return nil, err
	}

	return &models.StartEscapeResponse{
		AttemptID:    attempt.ID,
		EscapeRoomID: set.ID,
		Level:        req.Level,
		Rooms:        set.Rooms,
	}, nil
}

// SubmitRoom grades one room answer and applies the score delta. Each
// room accepts exactly one submission per attempt.
func (s *Service) SubmitRoom(ctx context.Context, attemptID, userID int64, req models.SubmitRoomRequest) (*models.SubmitRoomResponse, error) {
	attempt, err := s.store.GetAttempt(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, models.ErrNotFound
	}
	if attempt.CompletedAt != nil {
		return nil, models.ErrAlreadyCompleted
	}

	set, err := s.store.GetRoomSet(attempt.PolicyID, attempt.Level)
	if err != nil {
		return nil, err
	}

	correct, explanation, err := evaluate(&set.Rooms, req.Room, req.Answer)
	if err != nil {
		return nil, err
	}

	points := roomPoints(req.Room, correct, req.TimeTakenSecs)
	status := models.RoomFailed
	if correct {
		status = models.RoomDone
	}

	newScore, err := s.store.ApplyRoomResult(attemptID, req.Room-1, status, points)
	if err != nil {
		return nil, err
	}

	return &models.SubmitRoomResponse{
		Correct:     correct,
		Points:      points,
		TotalScore:  newScore,
		RoomStatus:  status,
		Explanation: explanation,
	}, nil
}

// roomPoints applies the per-room scoring table. The speed bonus covers
// rooms 1-4 only; the master room scores a flat +10.
func roomPoints(room int, correct bool, timeTaken float64) int {
	if !correct {
		return pointsIncorrect
	}
	points := pointsCorrect
	if room < models.RoomCount && timeTaken > 0 && timeTaken < speedWindowSecs {
		points += speedBonus
	}
	return points
}

// FinishAttempt closes an attempt and applies the time bonus:
// max(0, 100 - time_taken/10).
func (s *Service) FinishAttempt(ctx context.Context, attemptID, userID int64, req models.FinishEscapeRequest) (*models.FinishEscapeResponse, error) {
	attempt, err := s.store.GetAttempt(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, models.ErrNotFound
	}

	bonus := timeBonus(req.TimeTakenSecs)
	finalScore, err := s.store.FinishAttempt(attemptID, bonus, req.TimeTakenSecs)
	if err != nil {
		return nil, err
	}

	return &models.FinishEscapeResponse{
		FinalScore:     finalScore,
		TimeTaken:      req.TimeTakenSecs,
		TimeBonus:      bonus,
		RoomsCompleted: attempt.RoomsCompleted,
	}, nil
}

func timeBonus(timeTaken float64) int {
	bonus := 100 - int(timeTaken/10)
	if bonus < 0 {
		return 0
	}
	return bonus
}

func (s *Service) Leaderboard(level models.Level, limit int) ([]models.LeaderboardEntry, error) {
	return s.store.Leaderboard(level, limit)
}
