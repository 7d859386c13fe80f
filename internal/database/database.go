package database

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
)

func Connect() (*sql.DB, error) {
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "policy_user")
	password := getEnv("DB_PASSWORD", "policy_password")
	dbname := getEnv("DB_NAME", "policy_play")
	sslmode := getEnv("DB_SSLMODE", "disable")

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func Migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		email VARCHAR(255) UNIQUE NOT NULL,
		name VARCHAR(255) NOT NULL,
		password VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'user',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);

	CREATE TABLE IF NOT EXISTS policies (
		id          BIGSERIAL PRIMARY KEY,
		title       VARCHAR(255),
		summary     TEXT,
		filename    VARCHAR(255) NOT NULL,
		rules       JSONB NOT NULL DEFAULT '[]',
		roles       JSONB NOT NULL DEFAULT '[]',
		clauses     JSONB NOT NULL DEFAULT '[]',
		definitions JSONB NOT NULL DEFAULT '[]',
		exceptions  JSONB NOT NULL DEFAULT '[]',
		risks       JSONB NOT NULL DEFAULT '[]',
		sections    JSONB NOT NULL DEFAULT '[]',
		raw_text    TEXT NOT NULL,
		uploaded_by BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		uploaded_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_policies_user ON policies(uploaded_by);

	CREATE TABLE IF NOT EXISTS escape_rooms (
		id         BIGSERIAL PRIMARY KEY,
		policy_id  BIGINT NOT NULL REFERENCES policies(id) ON DELETE CASCADE,
		level      VARCHAR(20) NOT NULL,
		rooms      JSONB NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(policy_id, level)
	);

	CREATE TABLE IF NOT EXISTS escape_attempts (
		id              BIGSERIAL PRIMARY KEY,
		user_id         BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		policy_id       BIGINT NOT NULL REFERENCES policies(id) ON DELETE CASCADE,
		level           VARCHAR(20) NOT NULL,
		escape_room_id  BIGINT NOT NULL REFERENCES escape_rooms(id) ON DELETE CASCADE,
		score           INT NOT NULL DEFAULT 0,
		time_taken      REAL NOT NULL DEFAULT 0,
		room_status     JSONB NOT NULL DEFAULT '["pending","pending","pending","pending","pending"]',
		rooms_completed JSONB NOT NULL DEFAULT '[]',
		created_at      TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		completed_at    TIMESTAMP WITH TIME ZONE
	);

	CREATE INDEX IF NOT EXISTS idx_escape_attempts_user ON escape_attempts(user_id);
	CREATE INDEX IF NOT EXISTS idx_escape_attempts_board ON escape_attempts(level, score DESC) WHERE completed_at IS NOT NULL;

	CREATE TABLE IF NOT EXISTS falling_ball_sets (
		id         BIGSERIAL PRIMARY KEY,
		policy_id  BIGINT NOT NULL REFERENCES policies(id) ON DELETE CASCADE,
		level      VARCHAR(20) NOT NULL,
		questions  JSONB NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(policy_id, level)
	);

	CREATE TABLE IF NOT EXISTS falling_ball_attempts (
		id              BIGSERIAL PRIMARY KEY,
		user_id         BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		policy_id       BIGINT NOT NULL REFERENCES policies(id) ON DELETE CASCADE,
		level           VARCHAR(20) NOT NULL,
		game_set_id     BIGINT NOT NULL REFERENCES falling_ball_sets(id) ON DELETE CASCADE,
		score           INT NOT NULL DEFAULT 0,
		correct_answers INT NOT NULL DEFAULT 0,
		wrong_answers   INT NOT NULL DEFAULT 0,
		missed_answers  INT NOT NULL DEFAULT 0,
		time_taken      REAL NOT NULL DEFAULT 0,
		created_at      TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		completed_at    TIMESTAMP WITH TIME ZONE
	);

	CREATE INDEX IF NOT EXISTS idx_fb_attempts_user ON falling_ball_attempts(user_id);
	CREATE INDEX IF NOT EXISTS idx_fb_attempts_board ON falling_ball_attempts(policy_id, level, score DESC) WHERE completed_at IS NOT NULL;

	CREATE TABLE IF NOT EXISTS falling_ball_answers (
		id              BIGSERIAL PRIMARY KEY,
		attempt_id      BIGINT NOT NULL REFERENCES falling_ball_attempts(id) ON DELETE CASCADE,
		question_index  INT NOT NULL,
		selected_option TEXT NOT NULL DEFAULT '',
		is_correct      BOOLEAN NOT NULL,
		time_taken      REAL NOT NULL DEFAULT 0,
		was_missed      BOOLEAN NOT NULL DEFAULT FALSE,
		points          INT NOT NULL,
		created_at      TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(attempt_id, question_index)
	);

	CREATE TABLE IF NOT EXISTS game_sessions (
		id          BIGSERIAL PRIMARY KEY,
		policy_id   BIGINT NOT NULL REFERENCES policies(id) ON DELETE CASCADE,
		user_id     BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		game_type   VARCHAR(20) NOT NULL,
		scenario    JSONB,
		violation   JSONB,
		completed   BOOLEAN NOT NULL DEFAULT FALSE,
		correct     BOOLEAN NOT NULL DEFAULT FALSE,
		score       INT NOT NULL DEFAULT 0,
		created_at  TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		answered_at TIMESTAMP WITH TIME ZONE
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_user ON game_sessions(user_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_sessions_policy ON game_sessions(policy_id, game_type);
	`

	_, err := db.Exec(query)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
