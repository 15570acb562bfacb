package model

import (
	"time"

	"gorm.io/datatypes"
)

type CriticalError struct {
	Error   string `json:"error"`
	Article string `json:"article"`
	Fix     string `json:"fix"`
}

type Warning struct {
	Risk        string `json:"risk"`
	Explanation string `json:"explanation"`
	Suggestion  string `json:"suggestion"`
}

type MissingClause struct {
	ClauseName       string `json:"clause_name"`
	ArticleReference string `json:"article_reference"`
	DraftedText      string `json:"drafted_text"`
}

type ContractAnalysis struct {
	ID               uint                                `gorm:"primaryKey" json:"id"`
	UserID           uint                                `gorm:"not null;index" json:"user_id"`
	ContractText     string                              `gorm:"type:longtext;not null" json:"contract_text"`
	ValidityScore    int                                 `gorm:"not null" json:"validity_score"`
	ScoreExplanation string                              `gorm:"type:text" json:"score_explanation"`
	CriticalErrors   datatypes.JSONSlice[CriticalError] `json:"critical_errors"`
	Warnings         datatypes.JSONSlice[Warning]       `json:"warnings"`
	MissingClauses   datatypes.JSONSlice[MissingClause] `json:"missing_clauses"`
	Summary          string                              `gorm:"type:text" json:"summary"`
	Sources          datatypes.JSONSlice[Source]        `json:"sources"`
	RawResponse      string                              `gorm:"type:longtext" json:"-"`
	CreatedAt        time.Time                           `gorm:"index" json:"created_at"`
}

// ContractPreview is the first 200 runes of the analysed text.
func (a *ContractAnalysis) ContractPreview() string {
	return Truncate(a.ContractText, 200)
}
