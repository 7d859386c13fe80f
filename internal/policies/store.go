package policies

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

func (s *Store) Create(p *models.StructuredPolicy, filename string, uploadedBy int64) (*models.Policy, error) {
	lists := make(map[string][]byte, 7)
	for name, list := range map[string][]string{
		"rules": p.Rules, "roles": p.Roles, "clauses": p.Clauses,
		"definitions": p.Definitions, "exceptions": p.Exceptions,
		"risks": p.Risks, "sections": p.Sections,
	} {
		data, err := json.Marshal(list)
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", name, err)
		}
		lists[name] = data
	}

	policy := &models.Policy{Filename: filename, Structured: *p, UploadedBy: uploadedBy}
	err := s.db.QueryRow(
		`INSERT INTO policies (title, summary, filename, rules, roles, clauses, definitions, exceptions, risks, sections, raw_text, uploaded_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id, uploaded_at`,
		p.Title, p.Summary, filename,
		lists["rules"], lists["roles"], lists["clauses"], lists["definitions"],
		lists["exceptions"], lists["risks"], lists["sections"],
		p.RawText, uploadedBy,
	).Scan(&policy.ID, &policy.UploadedAt)
	if err != nil {
		return nil, fmt.Errorf("insert policy: %w", err)
	}

	return policy, nil
}

func (s *Store) GetByID(id int64) (*models.Policy, error) {
	var (
		policy                                                         models.Policy
		rules, roles, clauses, definitions, exceptions, risks, section []byte
	)
	err := s.db.QueryRow(
		`SELECT id, title, summary, filename, rules, roles, clauses, definitions, exceptions, risks, sections, raw_text, uploaded_by, uploaded_at
		 FROM policies WHERE id = $1`,
		id,
	).Scan(
		&policy.ID, &policy.Structured.Title, &policy.Structured.Summary, &policy.Filename,
		&rules, &roles, &clauses, &definitions, &exceptions, &risks, &section,
		&policy.Structured.RawText, &policy.UploadedBy, &policy.UploadedAt,
	)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get policy %d: %w", id, err)
	}

	for dest, data := range map[*[]string][]byte{
		&policy.Structured.Rules: rules, &policy.Structured.Roles: roles,
		&policy.Structured.Clauses: clauses, &policy.Structured.Definitions: definitions,
		&policy.Structured.Exceptions: exceptions, &policy.Structured.Risks: risks,
		&policy.Structured.Sections: section,
	} {
		if err := json.Unmarshal(data, dest); err != nil {
			return nil, fmt.Errorf("unmarshal policy %d lists: %w", id, err)
		}
		if *dest == nil {
			*dest = []string{}
		}
	}

	return &policy, nil
}

func (s *Store) List() ([]models.PolicySummary, error) {
	rows, err := s.db.Query(
		`SELECT id, COALESCE(title, filename), filename,
		        jsonb_array_length(rules), jsonb_array_length(clauses)
		 FROM policies ORDER BY uploaded_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list policies: %w", err)
	}
	defer rows.Close()

	summaries := []models.PolicySummary{}
	for rows.Next() {
		var ps models.PolicySummary
		if err := rows.Scan(&ps.PolicyID, &ps.Title, &ps.Filename, &ps.RulesCount, &ps.ClausesCount); err != nil {
			return nil, fmt.Errorf("scan policy summary: %w", err)
		}
		summaries = append(summaries, ps)
	}
	return summaries, rows.Err()
}
