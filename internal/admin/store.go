package admin

import (
	"database/sql"
	"fmt"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Summary is the admin dashboard rollup.
type Summary struct {
	TotalUsers        int              `json:"total_users"`
	TotalPolicies     int              `json:"total_policies"`
	TotalAttempts     int              `json:"total_attempts"`
	CompletionRate    float64          `json:"completion_rate"`
	AverageGameScore  float64          `json:"average_game_score"`
	MostViolatedRules []RuleMissCount  `json:"most_violated_rules"`
	ConfusingPolicies []PolicyAccuracy `json:"most_confusing_policies"`
}

// RuleMissCount counts wrong answers per policy rule.
type RuleMissCount struct {
	Rule   string `json:"rule"`
	Misses int    `json:"misses"`
}

// PolicyAccuracy ranks policies by how often players get their one-shot
// games wrong.
type PolicyAccuracy struct {
	PolicyID int64   `json:"policy_id"`
	Title    string  `json:"title"`
	Played   int     `json:"played"`
	Accuracy float64 `json:"accuracy"`
}

func (s *Store) Summary() (*Summary, error) {
	summary := &Summary{
		MostViolatedRules: []RuleMissCount{},
		ConfusingPolicies: []PolicyAccuracy{},
	}

	err := s.db.QueryRow(`SELECT
		(SELECT COUNT(*) FROM users),
		(SELECT COUNT(*) FROM policies),
		(SELECT COUNT(*) FROM game_sessions) +
		(SELECT COUNT(*) FROM escape_attempts) +
		(SELECT COUNT(*) FROM falling_ball_attempts)`,
	).Scan(&summary.TotalUsers, &summary.TotalPolicies, &summary.TotalAttempts)
	if err != nil {
		return nil, fmt.Errorf("summary totals: %w", err)
	}

	// Completion rate across every attempt type.
	var completed int
	err = s.db.QueryRow(`SELECT
		(SELECT COUNT(*) FROM game_sessions WHERE completed) +
		(SELECT COUNT(*) FROM escape_attempts WHERE completed_at IS NOT NULL) +
		(SELECT COUNT(*) FROM falling_ball_attempts WHERE completed_at IS NOT NULL)`,
	).Scan(&completed)
	if err != nil {
		return nil, fmt.Errorf("summary completions: %w", err)
	}
	if summary.TotalAttempts > 0 {
		summary.CompletionRate = float64(completed) / float64(summary.TotalAttempts)
	}

	err = s.db.QueryRow(
		`SELECT COALESCE(AVG(score), 0) FROM game_sessions WHERE completed`,
	).Scan(&summary.AverageGameScore)
	if err != nil {
		return nil, fmt.Errorf("summary average score: %w", err)
	}

	// Rules players most often get wrong, from both game types.
	rows, err := s.db.Query(
		`SELECT rule, COUNT(*) AS misses FROM (
			SELECT scenario->>'policy_rule_used' AS rule FROM game_sessions
			 WHERE completed AND NOT correct AND scenario IS NOT NULL
			UNION ALL
			SELECT violation->>'policy_rule_used' FROM game_sessions
			 WHERE completed AND NOT correct AND violation IS NOT NULL
		 ) misses
		 WHERE rule IS NOT NULL AND rule <> ''
		 GROUP BY rule ORDER BY misses DESC LIMIT 10`,
	)
	if err != nil {
		return nil, fmt.Errorf("summary violated rules: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var rc RuleMissCount
		if err := rows.Scan(&rc.Rule, &rc.Misses); err != nil {
			return nil, fmt.Errorf("scan rule misses: %w", err)
		}
		summary.MostViolatedRules = append(summary.MostViolatedRules, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	polRows, err := s.db.Query(
		`SELECT p.id, COALESCE(p.title, p.filename),
		        COUNT(*) AS played,
		        COUNT(*) FILTER (WHERE g.correct)::float / COUNT(*) AS accuracy
		 FROM game_sessions g
		 JOIN policies p ON p.id = g.policy_id
		 WHERE g.completed
		 GROUP BY p.id, p.title, p.filename
		 HAVING COUNT(*) >= 3
		 ORDER BY accuracy ASC
		 LIMIT 10`,
	)
	if err != nil {
		return nil, fmt.Errorf("summary confusing policies: %w", err)
	}
	defer polRows.Close()
	for polRows.Next() {
		var pa PolicyAccuracy
		if err := polRows.Scan(&pa.PolicyID, &pa.Title, &pa.Played, &pa.Accuracy); err != nil {
			return nil, fmt.Errorf("scan policy accuracy: %w", err)
		}
		summary.ConfusingPolicies = append(summary.ConfusingPolicies, pa)
	}
	return summary, polRows.Err()
}
