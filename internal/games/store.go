package games

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

func (s *Store) CreateSession(session *models.GameSession) error {
	var scenario, violation []byte
	var err error
	if session.Scenario != nil {
		if scenario, err = json.Marshal(session.Scenario); err != nil {
			return fmt.Errorf("marshal scenario: %w", err)
		}
	}
	if session.Violation != nil {
		if violation, err = json.Marshal(session.Violation); err != nil {
			return fmt.Errorf("marshal violation: %w", err)
		}
	}

	err = s.db.QueryRow(
		`INSERT INTO game_sessions (policy_id, user_id, game_type, scenario, violation)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		session.PolicyID, session.UserID, session.GameType, nullable(scenario), nullable(violation),
	).Scan(&session.ID, &session.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert game session: %w", err)
	}
	return nil
}

func (s *Store) GetSession(id int64) (*models.GameSession, error) {
	var (
		session             models.GameSession
		scenario, violation []byte
	)
	err := s.db.QueryRow(
		`SELECT id, policy_id, user_id, game_type, scenario, violation, completed, correct, score, created_at, answered_at
		 FROM game_sessions WHERE id = $1`,
		id,
	).Scan(
		&session.ID, &session.PolicyID, &session.UserID, &session.GameType,
		&scenario, &violation, &session.Completed, &session.Correct, &session.Score,
		&session.CreatedAt, &session.AnsweredAt,
	)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session %d: %w", id, err)
	}

	if scenario != nil {
		session.Scenario = &models.GameScenario{}
		if err := json.Unmarshal(scenario, session.Scenario); err != nil {
			return nil, fmt.Errorf("unmarshal session %d scenario: %w", id, err)
		}
	}
	if violation != nil {
		session.Violation = &models.ViolationScenario{}
		if err := json.Unmarshal(violation, session.Violation); err != nil {
			return nil, fmt.Errorf("unmarshal session %d violation: %w", id, err)
		}
	}
	return &session, nil
}

// CompleteSession records the grading result, once. Returns
// ErrAlreadyCompleted when the session was already answered.
func (s *Store) CompleteSession(id int64, correct bool, score int) error {
	res, err := s.db.Exec(
		`UPDATE game_sessions
		 SET completed = TRUE, correct = $1, score = $2, answered_at = NOW()
		 WHERE id = $3 AND NOT completed`,
		correct, score, id,
	)
	if err != nil {
		return fmt.Errorf("complete session %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("complete session %d: %w", id, err)
	}
	if n == 0 {
		return models.ErrAlreadyCompleted
	}
	return nil
}

func (s *Store) ListSessions(userID int64, limit int) ([]models.GameSession, error) {
	rows, err := s.db.Query(
		`SELECT id, policy_id, user_id, game_type, completed, correct, score, created_at, answered_at
		 FROM game_sessions WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.GameSession{}
	for rows.Next() {
		var session models.GameSession
		if err := rows.Scan(
			&session.ID, &session.PolicyID, &session.UserID, &session.GameType,
			&session.Completed, &session.Correct, &session.Score,
			&session.CreatedAt, &session.AnsweredAt,
		); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// UserScores aggregates one user's results across all three game modes.
func (s *Store) UserScores(userID int64) (*models.UserScores, error) {
	scores := &models.UserScores{UserID: userID}

	err := s.db.QueryRow(
		`SELECT COALESCE(SUM(score), 0), COUNT(*), COUNT(*) FILTER (WHERE correct)
		 FROM game_sessions WHERE user_id = $1 AND completed`,
		userID,
	).Scan(&scores.GameScore, &scores.GamesPlayed, &scores.GamesCorrect)
	if err != nil {
		return nil, fmt.Errorf("user game scores: %w", err)
	}

	err = s.db.QueryRow(
		`SELECT COALESCE(SUM(score), 0), COUNT(*)
		 FROM escape_attempts WHERE user_id = $1 AND completed_at IS NOT NULL`,
		userID,
	).Scan(&scores.EscapeScore, &scores.EscapeRuns)
	if err != nil {
		return nil, fmt.Errorf("user escape scores: %w", err)
	}

	err = s.db.QueryRow(
		`SELECT COALESCE(SUM(score), 0), COUNT(*)
		 FROM falling_ball_attempts WHERE user_id = $1 AND completed_at IS NOT NULL`,
		userID,
	).Scan(&scores.FallingBallScore, &scores.FallingBallRuns)
	if err != nil {
		return nil, fmt.Errorf("user falling ball scores: %w", err)
	}

	scores.TotalScore = scores.GameScore + scores.EscapeScore + scores.FallingBallScore
	return scores, nil
}

// Leaderboard ranks users by combined score across all game modes.
func (s *Store) Leaderboard(limit int) ([]models.LeaderboardEntry, error) {
	rows, err := s.db.Query(
		`SELECT u.id, u.name,
		        COALESCE(g.total, 0) + COALESCE(e.total, 0) + COALESCE(f.total, 0) AS combined
		 FROM users u
		 LEFT JOIN (SELECT user_id, SUM(score) AS total FROM game_sessions WHERE completed GROUP BY user_id) g ON g.user_id = u.id
		 LEFT JOIN (SELECT user_id, SUM(score) AS total FROM escape_attempts WHERE completed_at IS NOT NULL GROUP BY user_id) e ON e.user_id = u.id
		 LEFT JOIN (SELECT user_id, SUM(score) AS total FROM falling_ball_attempts WHERE completed_at IS NOT NULL GROUP BY user_id) f ON f.user_id = u.id
		 WHERE COALESCE(g.total, 0) + COALESCE(e.total, 0) + COALESCE(f.total, 0) > 0
		 ORDER BY combined DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
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

// nullable maps empty JSON payloads onto SQL NULL.
func nullable(data []byte) interface{} {
	if len(data) == 0 {
		return nil
	}
	return data
}
