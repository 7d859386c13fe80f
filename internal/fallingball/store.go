package fallingball

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/policy-play/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetSet(policyID int64, level models.Level) (*models.FallingBallSet, error) {
	var (
		set       models.FallingBallSet
		questions []byte
	)
	err := s.db.QueryRow(
		`SELECT id, policy_id, level, questions, created_at FROM falling_ball_sets WHERE policy_id = $1 AND level = $2`,
		policyID, level,
	).Scan(&set.ID, &set.PolicyID, &set.Level, &questions, &set.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get falling ball set: %w", err)
	}
	if err := json.Unmarshal(questions, &set.Questions); err != nil {
		return nil, fmt.Errorf("unmarshal set %d questions: %w", set.ID, err)
	}
	return &set, nil
}

func (s *Store) GetSetByID(id int64) (*models.FallingBallSet, error) {
	var (
		set       models.FallingBallSet
		questions []byte
	)
	err := s.db.QueryRow(
		`SELECT id, policy_id, level, questions, created_at FROM falling_ball_sets WHERE id = $1`,
		id,
	).Scan(&set.ID, &set.PolicyID, &set.Level, &questions, &set.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get falling ball set %d: %w", id, err)
	}
	if err := json.Unmarshal(questions, &set.Questions); err != nil {
		return nil, fmt.Errorf("unmarshal set %d questions: %w", set.ID, err)
	}
	return &set, nil
}

func (s *Store) UpsertSet(policyID int64, level models.Level, questions []models.FallingBallQuestion) (*models.FallingBallSet, error) {
	data, err := json.Marshal(questions)
	if err != nil {
		return nil, fmt.Errorf("marshal questions: %w", err)
	}

	set := &models.FallingBallSet{PolicyID: policyID, Level: level, Questions: questions}
	err = s.db.QueryRow(
		`INSERT INTO falling_ball_sets (policy_id, level, questions)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (policy_id, level) DO UPDATE SET questions = EXCLUDED.questions, created_at = NOW()
		 RETURNING id, created_at`,
		policyID, level, data,
	).Scan(&set.ID, &set.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert falling ball set: %w", err)
	}
	return set, nil
}

func (s *Store) CreateAttempt(userID, policyID int64, level models.Level, setID int64) (*models.FallingBallAttempt, error) {
	attempt := &models.FallingBallAttempt{
		UserID:   userID,
		PolicyID: policyID,
		Level:    level,
		SetID:    setID,
	}
	err := s.db.QueryRow(
		`INSERT INTO falling_ball_attempts (user_id, policy_id, level, game_set_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, score, created_at`,
		userID, policyID, level, setID,
	).Scan(&attempt.ID, &attempt.Score, &attempt.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create falling ball attempt: %w", err)
	}
	return attempt, nil
}

func (s *Store) GetAttempt(id int64) (*models.FallingBallAttempt, error) {
	var attempt models.FallingBallAttempt
	err := s.db.QueryRow(
		`SELECT id, user_id, policy_id, level, game_set_id, score, correct_answers, wrong_answers, missed_answers, time_taken, created_at, completed_at
		 FROM falling_ball_attempts WHERE id = $1`,
		id,
	).Scan(
		&attempt.ID, &attempt.UserID, &attempt.PolicyID, &attempt.Level, &attempt.SetID,
		&attempt.Score, &attempt.CorrectCount, &attempt.WrongCount, &attempt.MissedCount,
		&attempt.TimeTakenSecs, &attempt.CreatedAt, &attempt.CompletedAt,
	)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get falling ball attempt %d: %w", id, err)
	}
	return &attempt, nil
}

// RecordAnswer inserts one answer row; the UNIQUE(attempt_id,
// question_index) constraint makes resubmission a no-op. Returns
// inserted=false when the index was already answered.
func (s *Store) RecordAnswer(a *models.FallingBallAnswer) (bool, error) {
	res, err := s.db.Exec(
		`INSERT INTO falling_ball_answers (attempt_id, question_index, selected_option, is_correct, time_taken, was_missed, points)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (attempt_id, question_index) DO NOTHING`,
		a.AttemptID, a.QuestionIndex, a.SelectedOption, a.IsCorrect, a.TimeTakenSecs, a.WasMissed, a.Points,
	)
	if err != nil {
		return false, fmt.Errorf("record answer: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("record answer: %w", err)
	}
	return n > 0, nil
}

// GetAnswer reads back a previously recorded answer for an index.
func (s *Store) GetAnswer(attemptID int64, questionIndex int) (*models.FallingBallAnswer, error) {
	var a models.FallingBallAnswer
	err := s.db.QueryRow(
		`SELECT attempt_id, question_index, selected_option, is_correct, time_taken, was_missed, points
		 FROM falling_ball_answers WHERE attempt_id = $1 AND question_index = $2`,
		attemptID, questionIndex,
	).Scan(&a.AttemptID, &a.QuestionIndex, &a.SelectedOption, &a.IsCorrect, &a.TimeTakenSecs, &a.WasMissed, &a.Points)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get answer: %w", err)
	}
	return &a, nil
}

// ApplyAnswer folds one newly recorded answer into the attempt counters.
func (s *Store) ApplyAnswer(attemptID int64, points int, isCorrect, wasMissed bool) (int, error) {
	var newScore int
	err := s.db.QueryRow(
		`UPDATE falling_ball_attempts
		 SET score = score + $1,
		     correct_answers = correct_answers + CASE WHEN $2 THEN 1 ELSE 0 END,
		     wrong_answers = wrong_answers + CASE WHEN NOT $2 AND NOT $3 THEN 1 ELSE 0 END,
		     missed_answers = missed_answers + CASE WHEN $3 THEN 1 ELSE 0 END
		 WHERE id = $4 AND completed_at IS NULL
		 RETURNING score`,
		points, isCorrect, wasMissed, attemptID,
	).Scan(&newScore)
	if err == sql.ErrNoRows {
		return 0, models.ErrAlreadyCompleted
	}
	if err != nil {
		return 0, fmt.Errorf("apply answer: %w", err)
	}
	return newScore, nil
}

func (s *Store) FinishAttempt(attemptID int64, timeTaken float64) (*models.FallingBallAttempt, error) {
	var attempt models.FallingBallAttempt
	err := s.db.QueryRow(
		`UPDATE falling_ball_attempts
		 SET time_taken = $1, completed_at = NOW()
		 WHERE id = $2 AND completed_at IS NULL
		 RETURNING id, user_id, policy_id, level, game_set_id, score, correct_answers, wrong_answers, missed_answers, time_taken, created_at, completed_at`,
		timeTaken, attemptID,
	).Scan(
		&attempt.ID, &attempt.UserID, &attempt.PolicyID, &attempt.Level, &attempt.SetID,
		&attempt.Score, &attempt.CorrectCount, &attempt.WrongCount, &attempt.MissedCount,
		&attempt.TimeTakenSecs, &attempt.CreatedAt, &attempt.CompletedAt,
	)
	if err == sql.ErrNoRows {
		return nil, models.ErrAlreadyCompleted
	}
	if err != nil {
		return nil, fmt.Errorf("finish falling ball attempt: %w", err)
	}
	return &attempt, nil
}

func (s *Store) Leaderboard(policyID int64, level models.Level, limit int) ([]models.LeaderboardEntry, error) {
	rows, err := s.db.Query(
		`SELECT u.id, u.name, MAX(a.score) AS best
		 FROM falling_ball_attempts a
		 JOIN users u ON u.id = a.user_id
		 WHERE a.completed_at IS NOT NULL
		   AND ($1 = 0 OR a.policy_id = $1)
		   AND ($2 = '' OR a.level = $2)
		 GROUP BY u.id, u.name
		 ORDER BY best DESC
		 LIMIT $3`,
		policyID, string(level), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("falling ball leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []models.LeaderboardEntry{}
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Name, &e.TotalScore); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
