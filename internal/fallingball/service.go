package fallingball

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/policy-play/backend/internal/generator"
	"github.com/policy-play/backend/internal/models"
	"github.com/policy-play/backend/internal/policies"
)

// Per-question scoring.
const (
	pointsCorrect   = 10
	pointsIncorrect = -5
	pointsMissed    = -5
	speedBonus      = 2
	speedWindowSecs = 2.0
)

const defaultQuestionCount = 10

// Storer is the persistence surface the service needs. *Store satisfies
// it.
type Storer interface {
	GetSet(policyID int64, level models.Level) (*models.FallingBallSet, error)
	GetSetByID(id int64) (*models.FallingBallSet, error)
	UpsertSet(policyID int64, level models.Level, questions []models.FallingBallQuestion) (*models.FallingBallSet, error)
	CreateAttempt(userID, policyID int64, level models.Level, setID int64) (*models.FallingBallAttempt, error)
	GetAttempt(id int64) (*models.FallingBallAttempt, error)
	RecordAnswer(a *models.FallingBallAnswer) (bool, error)
	GetAnswer(attemptID int64, questionIndex int) (*models.FallingBallAnswer, error)
	ApplyAnswer(attemptID int64, points int, isCorrect, wasMissed bool) (int, error)
	FinishAttempt(attemptID int64, timeTaken float64) (*models.FallingBallAttempt, error)
	Leaderboard(policyID int64, level models.Level, limit int) ([]models.LeaderboardEntry, error)
}

type Service struct {
	store         Storer
	policies      *policies.Store
	generator     *generator.Generator
	questionCount int
	genGroup      singleflight.Group
}

func NewService(store Storer, policyStore *policies.Store, gen *generator.Generator) *Service {
	count := defaultQuestionCount
	if s := os.Getenv("FALLING_BALL_QUESTIONS"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			count = v
		}
	}
	return &Service{store: store, policies: policyStore, generator: gen, questionCount: count}
}

// EnsureSet returns the question set for (policy, level), generating it
// when missing. Concurrent callers share one in-flight generation.
func (s *Service) EnsureSet(ctx context.Context, policyID int64, level models.Level) (*models.FallingBallSet, error) {
	if !models.ValidLevels[level] {
		return nil, fmt.Errorf("level %q: %w", level, models.ErrInvalidInput)
	}

	set, err := s.store.GetSet(policyID, level)
	if err == nil {
		return set, nil
	}
	if err != models.ErrNotFound {
		return nil, err
	}

	key := fmt.Sprintf("%d:%s", policyID, level)
	v, err, _ := s.genGroup.Do(key, func() (interface{}, error) {
		policy, err := s.policies.GetByID(policyID)
		if err != nil {
			return nil, err
		}
		questions := s.generator.GenerateFallingBallQuestions(ctx, &policy.Structured, level, s.questionCount)
		set, err := s.store.UpsertSet(policyID, level, questions)
		if err != nil {
			return nil, err
		}
		log.Printf("[fallingball] generated set %d for policy %d level %s (%d questions)",
			set.ID, policyID, level, len(questions))
		return set, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.FallingBallSet), nil
}

func (s *Service) GetSet(id int64) (*models.FallingBallSet, error) {
	return s.store.GetSetByID(id)
}

func (s *Service) StartAttempt(ctx context.Context, userID int64, req models.StartFallingBallRequest) (*models.StartFallingBallResponse, error) {
	set, err := s.EnsureSet(ctx, req.PolicyID, req.Level)
	if err != nil {
		return nil, err
	}

	attempt, err := s.store.CreateAttempt(userID, req.PolicyID, req.Level, set.ID)
	if err != nil {
		return nil, err
	}

	return &models.StartFallingBallResponse{
		AttemptID: attempt.ID,
		SetID:     set.ID,
		Level:     req.Level,
		Questions: set.Questions,
	}, nil
}

// scoreAnswer applies the per-question scoring table. A missed ball is
// penalized regardless of what (if anything) was selected.
func scoreAnswer(isCorrect, wasMissed bool, timeTaken float64) (points int, countsCorrect bool) {
	if wasMissed {
		return pointsMissed, false
	}
	if !isCorrect {
		return pointsIncorrect, false
	}
	points = pointsCorrect
	if timeTaken > 0 && timeTaken < speedWindowSecs {
		points += speedBonus
	}
	return points, true
}

// SubmitAnswer grades one question. Resubmitting an already-answered
// index is idempotent: the stored result comes back with zero points and
// the score unchanged.
func (s *Service) SubmitAnswer(ctx context.Context, userID int64, req models.SubmitFallingBallRequest) (*models.SubmitFallingBallResponse, error) {
	attempt, err := s.store.GetAttempt(req.AttemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, models.ErrNotFound
	}
	if attempt.CompletedAt != nil {
		return nil, models.ErrAlreadyCompleted
	}

	set, err := s.store.GetSetByID(attempt.SetID)
	if err != nil {
		return nil, err
	}
	if req.QuestionIndex < 0 || req.QuestionIndex >= len(set.Questions) {
		return nil, fmt.Errorf("question index %d: %w", req.QuestionIndex, models.ErrInvalidInput)
	}

	question := set.Questions[req.QuestionIndex]
	isCorrect := !req.WasMissed && req.SelectedOption == question.Correct
	points, countsCorrect := scoreAnswer(isCorrect, req.WasMissed, req.TimeTakenSecs)

	inserted, err := s.store.RecordAnswer(&models.FallingBallAnswer{
		AttemptID:      req.AttemptID,
		QuestionIndex:  req.QuestionIndex,
		SelectedOption: req.SelectedOption,
		IsCorrect:      countsCorrect,
		TimeTakenSecs:  req.TimeTakenSecs,
		WasMissed:      req.WasMissed,
		Points:         points,
	})
	if err != nil {
		return nil, err
	}

	if !inserted {
		// Duplicate index: return the recorded outcome, award nothing.
		prior, err := s.store.GetAnswer(req.AttemptID, req.QuestionIndex)
		if err != nil {
			return nil, err
		}
		return &models.SubmitFallingBallResponse{
			Correct:       prior.IsCorrect,
			Points:        0,
			NewScore:      attempt.Score,
			CorrectAnswer: question.Correct,
			Duplicate:     true,
		}, nil
	}

	newScore, err := s.store.ApplyAnswer(req.AttemptID, points, countsCorrect, req.WasMissed)
	if err != nil {
		return nil, err
	}

	return &models.SubmitFallingBallResponse{
		Correct:       countsCorrect,
		Points:        points,
		NewScore:      newScore,
		CorrectAnswer: question.Correct,
	}, nil
}

func (s *Service) FinishAttempt(ctx context.Context, userID int64, req models.FinishFallingBallRequest) (*models.FinishFallingBallResponse, error) {
	attempt, err := s.store.GetAttempt(req.AttemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, models.ErrNotFound
	}

	finished, err := s.store.FinishAttempt(req.AttemptID, req.TimeTakenSecs)
	if err != nil {
		return nil, err
	}

	return &models.FinishFallingBallResponse{
		FinalScore:   finished.Score,
		CorrectCount: finished.CorrectCount,
		WrongCount:   finished.WrongCount,
		MissedCount:  finished.MissedCount,
	}, nil
}

func (s *Service) Leaderboard(policyID int64, level models.Level, limit int) ([]models.LeaderboardEntry, error) {
	return s.store.Leaderboard(policyID, level, limit)
}
