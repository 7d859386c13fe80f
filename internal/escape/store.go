package escape

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

func (s *Store) GetRoomSet(policyID int64, level models.Level) (*models.EscapeRoomSet, error) {
	var (
		set   models.EscapeRoomSet
		rooms []byte
	)
	err := s.db.QueryRow(
		`SELECT id, policy_id, level, rooms, created_at FROM escape_rooms WHERE policy_id = $1 AND level = $2`,
		policyID, level,
	).Scan(&set.ID, &set.PolicyID, &set.Level, &rooms, &set.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get room set: %w", err)
	}
	if err := json.Unmarshal(rooms, &set.Rooms); err != nil {
		return nil, fmt.Errorf("unmarshal room set %d: %w", set.ID, err)
	}
	return &set, nil
}

// UpsertRoomSet writes the generated rooms for (policy, level),
// replacing any previous generation.
func (s *Store) UpsertRoomSet(policyID int64, level models.Level, rooms *models.EscapeRooms) (*models.EscapeRoomSet, error) {
	data, err := json.Marshal(rooms)
	if err != nil {
		return nil, fmt.Errorf("marshal rooms: %w", err)
	}

	set := &models.EscapeRoomSet{PolicyID: policyID, Level: level, Rooms: *rooms}
	err = s.db.QueryRow(
		`INSERT INTO escape_rooms (policy_id, level, rooms)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (policy_id, level) DO UPDATE SET rooms = EXCLUDED.rooms, created_at = NOW()
		 RETURNING id, created_at`,
		policyID, level, data,
	).Scan(&set.ID, &set.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert room set: %w", err)
	}
	return set, nil
}

func (s *Store) CreateAttempt(userID, policyID int64, level models.Level, roomSetID int64) (*models.EscapeAttempt, error) {
	attempt := &models.EscapeAttempt{
		UserID:         userID,
		PolicyID:       policyID,
		Level:          level,
		EscapeRoomID:   roomSetID,
		RoomStatus:     pendingStatuses(),
		RoomsCompleted: []int{},
	}
	err := s.db.QueryRow(
		`INSERT INTO escape_attempts (user_id, policy_id, level, escape_room_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, score, created_at`,
		userID, policyID, level, roomSetID,
	).Scan(&attempt.ID, &attempt.Score, &attempt.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create attempt: %w", err)
	}
	return attempt, nil
}

func (s *Store) GetAttempt(id int64) (*models.EscapeAttempt, error) {
	var (
		attempt                   models.EscapeAttempt
		roomStatus, roomsComplete []byte
	)
	err := s.db.QueryRow(
		`SELECT id, user_id, policy_id, level, escape_room_id, score, time_taken, room_status, rooms_completed, created_at, completed_at
		 FROM escape_attempts WHERE id = $1`,
		id,
	).Scan(
		&attempt.ID, &attempt.UserID, &attempt.PolicyID, &attempt.Level, &attempt.EscapeRoomID,
		&attempt.Score, &attempt.TimeTakenSecs, &roomStatus, &roomsComplete,
		&attempt.CreatedAt, &attempt.CompletedAt,
	)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get attempt %d: %w", id, err)
	}
	if err := json.Unmarshal(roomStatus, &attempt.RoomStatus); err != nil {
		return nil, fmt.Errorf("unmarshal attempt %d room status: %w", id, err)
	}
	if err := json.Unmarshal(roomsComplete, &attempt.RoomsCompleted); err != nil {
		return nil, fmt.Errorf("unmarshal attempt %d rooms completed: %w", id, err)
	}
	return &attempt, nil
}

// ApplyRoomResult records one room outcome in a single statement. The
// score update is atomic and the WHERE clause enforces both "attempt not
// finished" and "room still pending", so a room can transition exactly
// once. Returns ErrAlreadyCompleted when no row matches.
func (s *Store) ApplyRoomResult(attemptID int64, roomIdx int, status string, points int) (int, error) {
	var newScore int
	err := s.db.QueryRow(
		`UPDATE escape_attempts
		 SET score = score + $1,
		     room_status = jsonb_set(room_status, ARRAY[$2::text], to_jsonb($3::text)),
		     rooms_completed = CASE WHEN $3 = 'done' THEN rooms_completed || to_jsonb($4::int) ELSE rooms_completed END
		 WHERE id = $5
		   AND completed_at IS NULL
		   AND room_status->>($2::int) = 'pending'
		 RETURNING score`,
		points, fmt.Sprintf("%d", roomIdx), status, roomIdx+1, attemptID,
	).Scan(&newScore)
	if err == sql.ErrNoRows {
		return 0, models.ErrAlreadyCompleted
	}
	if err != nil {
		return 0, fmt.Errorf("apply room result: %w", err)
	}
	return newScore, nil
}

// FinishAttempt adds the time bonus and stamps completion, once.
func (s *Store) FinishAttempt(attemptID int64, bonus int, timeTaken float64) (int, error) {
	var finalScore int
	err := s.db.QueryRow(
		`UPDATE escape_attempts
		 SET score = score + $1, time_taken = $2, completed_at = NOW()
		 WHERE id = $3 AND completed_at IS NULL
		 RETURNING score`,
		bonus, timeTaken, attemptID,
	).Scan(&finalScore)
	if err == sql.ErrNoRows {
		return 0, models.ErrAlreadyCompleted
	}
	if err != nil {
		return 0, fmt.Errorf("finish attempt: %w", err)
	}
	return finalScore, nil
}

func (s *Store) Leaderboard(level models.Level, limit int) ([]models.LeaderboardEntry, error) {
	rows, err := s.db.Query(
		`SELECT u.id, u.name, MAX(a.score) AS best
		 FROM escape_attempts a
		 JOIN users u ON u.id = a.user_id
		 WHERE a.completed_at IS NOT NULL AND ($1 = '' OR a.level = $1)
		 GROUP BY u.id, u.name
		 ORDER BY best DESC
		 LIMIT $2`,
		string(level), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("escape leaderboard: %w", err)
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

func pendingStatuses() []string {
	statuses := make([]string, models.RoomCount)
	for i := range statuses {
		statuses[i] = models.RoomPending
	}
	return statuses
}
