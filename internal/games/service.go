package games

import (
	"context"
	"fmt"
	"log"

	"github.com/policy-play/backend/internal/generator"
	"github.com/policy-play/backend/internal/models"
	"github.com/policy-play/backend/internal/policies"
)

// One-shot games score all or nothing.
const (
	scoreCorrect = 100
	scoreWrong   = 0
)

const maxBatchSize = 10

type Service struct {
	store     *Store
	policies  *policies.Store
	generator *generator.Generator
}

func NewService(store *Store, policyStore *policies.Store, gen *generator.Generator) *Service {
	return &Service{store: store, policies: policyStore, generator: gen}
}

// Generate creates one session of the requested type. ruleIndex cycles
// through the policy's rules modulo their count.
func (s *Service) Generate(ctx context.Context, userID, policyID int64, gameType string, ruleIndex int) (*models.GameSession, error) {
	policy, err := s.policies.GetByID(policyID)
	if err != nil {
		return nil, err
	}

	session := &models.GameSession{
		PolicyID: policyID,
		UserID:   userID,
		GameType: gameType,
	}

	switch gameType {
	case models.GameTypeScenario:
		scenario, err := s.generator.GenerateScenarioGame(ctx, &policy.Structured, ruleIndex)
		if err != nil {
			return nil, err
		}
		session.Scenario = scenario
	case models.GameTypeViolation:
		violation, err := s.generator.GenerateViolationGame(ctx, &policy.Structured, ruleIndex)
		if err != nil {
			return nil, err
		}
		session.Violation = violation
	default:
		return nil, fmt.Errorf("game type %q: %w", gameType, models.ErrInvalidInput)
	}

	if err := s.store.CreateSession(session); err != nil {
		return nil, err
	}
	return session, nil
}

// GenerateBatch creates up to count sessions, cycling the rule index so
// consecutive sessions cover different rules. Individual generation
// failures are skipped, not fatal, as long as at least one session
// succeeds.
func (s *Service) GenerateBatch(ctx context.Context, userID, policyID int64, gameType string, count int) ([]models.GameSession, error) {
	if count <= 0 {
		count = 3
	}
	if count > maxBatchSize {
		count = maxBatchSize
	}

	sessions := []models.GameSession{}
	var lastErr error
	for i := 0; i < count; i++ {
		session, err := s.Generate(ctx, userID, policyID, gameType, i)
		if err != nil {
			lastErr = err
			log.Printf("[games] batch generation %d/%d failed: %v", i+1, count, err)
			continue
		}
		sessions = append(sessions, *session)
	}

	if len(sessions) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return sessions, nil
}

func (s *Service) GetSession(id int64, userID int64) (*models.GameSession, error) {
	session, err := s.store.GetSession(id)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, models.ErrNotFound
	}
	return session, nil
}

// spansOverlap reports whether the user's marked span touches the
// correct violation span at all. Any overlap counts.
func spansOverlap(userStart, userEnd, correctStart, correctEnd int) bool {
	return userStart <= correctEnd && userEnd >= correctStart
}

// gradeSession grades a submission against the session content without
// touching storage: scenario by option index, violation by span overlap.
// The correct answer is revealed only on a wrong submission.
func gradeSession(session *models.GameSession, req models.SubmitGameRequest) (*models.GameResult, error) {
	result := &models.GameResult{SessionID: session.ID}
	var correctAnswer string

	switch session.GameType {
	case models.GameTypeScenario:
		if session.Scenario == nil || req.SelectedOption == nil {
			return nil, fmt.Errorf("scenario submission: %w", models.ErrInvalidInput)
		}
		sc := session.Scenario
		result.Correct = *req.SelectedOption == sc.Correct
		result.Explanation = sc.Explanation
		result.PolicyRule = sc.PolicyRuleUsed
		if sc.Correct >= 0 && sc.Correct < len(sc.Options) {
			correctAnswer = sc.Options[sc.Correct]
		}
	case models.GameTypeViolation:
		if session.Violation == nil || req.SelectedStart == nil || req.SelectedEnd == nil {
			return nil, fmt.Errorf("violation submission: %w", models.ErrInvalidInput)
		}
		v := session.Violation
		result.Correct = spansOverlap(*req.SelectedStart, *req.SelectedEnd, v.ViolationStart, v.ViolationEnd)
		result.Explanation = v.Explanation
		result.PolicyRule = v.PolicyRuleUsed
		correctAnswer = v.ViolationText
	default:
		return nil, fmt.Errorf("game type %q: %w", session.GameType, models.ErrInvalidInput)
	}

	if result.Correct {
		result.Score = scoreCorrect
	} else {
		result.Score = scoreWrong
		result.CorrectAnswer = correctAnswer
	}
	return result, nil
}

// Submit grades a one-shot session. A session accepts exactly one
// submission.
func (s *Service) Submit(ctx context.Context, userID int64, req models.SubmitGameRequest) (*models.GameResult, error) {
	session, err := s.GetSession(req.SessionID, userID)
	if err != nil {
		return nil, err
	}
	if session.Completed {
		return nil, models.ErrAlreadyCompleted
	}

	result, err := gradeSession(session, req)
	if err != nil {
		return nil, err
	}

	if err := s.store.CompleteSession(session.ID, result.Correct, result.Score); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) ListSessions(userID int64, limit int) ([]models.GameSession, error) {
	return s.store.ListSessions(userID, limit)
}

func (s *Service) UserScores(userID int64) (*models.UserScores, error) {
	return s.store.UserScores(userID)
}

func (s *Service) Leaderboard(limit int) ([]models.LeaderboardEntry, error) {
	return s.store.Leaderboard(limit)
}
