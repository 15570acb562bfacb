// Package scoring turns the validator's raw model output into a
// ContractAnalysis and renders it for display.
package scoring

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"ailawyer/internal/apperr"
	"ailawyer/internal/model"
)

var numberPattern = regexp.MustCompile(`-?\d+(?:[.,]\d+)?`)

type rawAudit struct {
	ValidityScore    json.RawMessage   `json:"validity_score"`
	Score            json.RawMessage   `json:"score"`
	ScoreExplanation string            `json:"score_explanation"`
	CriticalErrors   []json.RawMessage `json:"critical_errors"`
	Warnings         []json.RawMessage `json:"warnings"`
	MissingClauses   []json.RawMessage `json:"missing_clauses"`
	Summary          string            `json:"summary"`
}

// Parse builds an analysis from raw model output. Score and summary are
// mandatory; list entries that are not well formed are dropped. The
// retrieval sources are attached whatever the model echoed.
func Parse(raw string, sources []model.Source) (*model.ContractAnalysis, error) {
	body := extractJSON(raw)
	if body == "" {
		return nil, fmt.Errorf("no json object in model output: %w", apperr.ErrGenerationFormat)
	}

	var audit rawAudit
	if err := json.Unmarshal([]byte(body), &audit); err != nil {
		return nil, fmt.Errorf("decode audit: %v: %w", err, apperr.ErrGenerationFormat)
	}

	scoreField := audit.ValidityScore
	if len(scoreField) == 0 {
		scoreField = audit.Score
	}
	score, ok := CoerceScore(scoreField)
	if !ok {
		return nil, fmt.Errorf("validity_score missing or not numeric: %w", apperr.ErrGenerationFormat)
	}
	summary := strings.TrimSpace(audit.Summary)
	if summary == "" {
		return nil, fmt.Errorf("summary missing: %w", apperr.ErrGenerationFormat)
	}

	if sources == nil {
		sources = []model.Source{}
	}
	return &model.ContractAnalysis{
		ValidityScore:    score,
		ScoreExplanation: strings.TrimSpace(audit.ScoreExplanation),
		CriticalErrors:   criticalErrors(audit.CriticalErrors),
		Warnings:         warnings(audit.Warnings),
		MissingClauses:   missingClauses(audit.MissingClauses),
		Summary:          summary,
		Sources:          sources,
		RawResponse:      raw,
	}, nil
}

// CoerceScore reads a score given as a JSON number or as a string with
// surrounding text ("85/100", "Score: 72"). The result is rounded and
// clamped to [0,100].
func CoerceScore(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var value float64
	var num float64
	var str string
	switch {
	case json.Unmarshal(raw, &num) == nil:
		value = num
	case json.Unmarshal(raw, &str) == nil:
		m := numberPattern.FindString(str)
		if m == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(strings.Replace(m, ",", ".", 1), 64)
		if err != nil {
			return 0, false
		}
		value = parsed
	default:
		return 0, false
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return int(math.Round(clamp(value))), true
}

// clamp runs before the int conversion so huge values cannot overflow.
func clamp(score float64) float64 {
	return math.Max(0, math.Min(100, score))
}

// fields decodes an entry as an object of strings. Entries that are not
// objects, carry non-string values or lack the primary field are rejected.
func fields(raw json.RawMessage, primary string, names ...string) (map[string]string, bool) {
	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, false
	}
	out := make(map[string]string, len(names)+1)
	for _, name := range append([]string{primary}, names...) {
		v, present := obj[name]
		if !present || v == nil {
			out[name] = ""
			continue
		}
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		out[name] = strings.TrimSpace(s)
	}
	if out[primary] == "" {
		return nil, false
	}
	return out, true
}

func criticalErrors(entries []json.RawMessage) []model.CriticalError {
	out := make([]model.CriticalError, 0, len(entries))
	for _, e := range entries {
		f, ok := fields(e, "error", "article", "fix")
		if !ok {
			continue
		}
		out = append(out, model.CriticalError{Error: f["error"], Article: f["article"], Fix: f["fix"]})
	}
	return out
}

func warnings(entries []json.RawMessage) []model.Warning {
	out := make([]model.Warning, 0, len(entries))
	for _, e := range entries {
		f, ok := fields(e, "risk", "explanation", "suggestion")
		if !ok {
			continue
		}
		out = append(out, model.Warning{Risk: f["risk"], Explanation: f["explanation"], Suggestion: f["suggestion"]})
	}
	return out
}

func missingClauses(entries []json.RawMessage) []model.MissingClause {
	out := make([]model.MissingClause, 0, len(entries))
	for _, e := range entries {
		f, ok := fields(e, "clause_name", "article_reference", "drafted_text")
		if !ok {
			continue
		}
		out = append(out, model.MissingClause{
			ClauseName:       f["clause_name"],
			ArticleReference: f["article_reference"],
			DraftedText:      f["drafted_text"],
		})
	}
	return out
}
