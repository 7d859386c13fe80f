package models

import "time"

type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelExpert       Level = "expert"
)

var ValidLevels = map[Level]bool{
	LevelBeginner:     true,
	LevelIntermediate: true,
	LevelExpert:       true,
}

// StructuredPolicy is the normalized output of the policy structuring call.
// All list fields are non-nil after construction; RawText is always present.
type StructuredPolicy struct {
	Title       *string  `json:"title"`
	Summary     *string  `json:"summary"`
	Rules       []string `json:"rules"`
	Roles       []string `json:"roles"`
	Clauses     []string `json:"clauses"`
	Definitions []string `json:"definitions"`
	Exceptions  []string `json:"exceptions"`
	Risks       []string `json:"risks"`
	Sections    []string `json:"policy_sections"`
	RawText     string   `json:"raw_text"`
}

// TitleOrDefault returns the policy title, falling back to a generic label.
func (p *StructuredPolicy) TitleOrDefault() string {
	if p.Title != nil && *p.Title != "" {
		return *p.Title
	}
	return "Policy"
}

// SummaryOrDefault returns the summary, falling back to the given default.
func (p *StructuredPolicy) SummaryOrDefault(def string) string {
	if p.Summary != nil && *p.Summary != "" {
		return *p.Summary
	}
	return def
}

// Policy is a persisted structured policy document.
type Policy struct {
	ID         int64            `json:"id"`
	Filename   string           `json:"filename"`
	Structured StructuredPolicy `json:"structured"`
	UploadedBy int64            `json:"uploaded_by"`
	UploadedAt time.Time        `json:"uploaded_at"`
}

// PolicySummary is the list-view shape (no raw text or full field lists).
type PolicySummary struct {
	PolicyID     int64  `json:"policy_id"`
	Title        string `json:"title"`
	Filename     string `json:"filename"`
	RulesCount   int    `json:"rules_count"`
	ClausesCount int    `json:"clauses_count"`
}
