// Package history merges a user's chats, validations and generated
// contracts into one timeline.
package history

import (
	"fmt"
	"sort"
	"time"

	"ailawyer/internal/apperr"
	"ailawyer/internal/model"
	"ailawyer/internal/scoring"
)

type Kind string

const (
	KindChat       Kind = "chat"
	KindValidation Kind = "validation"
	KindGeneration Kind = "generation"
)

const (
	DefaultLimit = 50
	MaxLimit     = 100
	previewRunes = 100
)

// ParseKind accepts "" as "every kind".
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case "", KindChat, KindValidation, KindGeneration:
		return k, nil
	}
	return "", fmt.Errorf("unknown history type %q: %w", s, apperr.ErrInvalidInput)
}

func ClampLimit(n int) int {
	if n <= 0 {
		return DefaultLimit
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}

// Item is implemented only by the three record kinds below.
type Item interface {
	Kind() Kind
	ItemID() uint
	Created() time.Time
	item()
}

type ChatItem struct{ Session model.ChatSession }
type ValidationItem struct{ Analysis model.ContractAnalysis }
type GenerationItem struct{ Contract model.GeneratedContract }

func (ChatItem) Kind() Kind           { return KindChat }
func (c ChatItem) ItemID() uint       { return c.Session.ID }
func (c ChatItem) Created() time.Time { return c.Session.CreatedAt }
func (ChatItem) item()                {}

func (ValidationItem) Kind() Kind           { return KindValidation }
func (v ValidationItem) ItemID() uint       { return v.Analysis.ID }
func (v ValidationItem) Created() time.Time { return v.Analysis.CreatedAt }
func (ValidationItem) item()                {}

func (GenerationItem) Kind() Kind           { return KindGeneration }
func (g GenerationItem) ItemID() uint       { return g.Contract.ID }
func (g GenerationItem) Created() time.Time { return g.Contract.CreatedAt }
func (GenerationItem) item()                {}

// Entry is the wire shape of a timeline row.
type Entry struct {
	ID        uint                   `json:"id"`
	Type      Kind                   `json:"type"`
	Title     string                 `json:"title"`
	Preview   string                 `json:"preview"`
	Icon      string                 `json:"icon"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
	Metadata  map[string]interface{} `json:"metadata"`
}

func View(it Item) Entry {
	switch v := it.(type) {
	case ChatItem:
		s := v.Session
		return Entry{
			ID:        s.ID,
			Type:      KindChat,
			Title:     s.Title,
			Preview:   s.Title,
			Icon:      "💬",
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
			Metadata: map[string]interface{}{
				"session_type":  s.SessionType,
				"message_count": s.MessageCount,
			},
		}
	case ValidationItem:
		a := v.Analysis
		return Entry{
			ID:        a.ID,
			Type:      KindValidation,
			Title:     fmt.Sprintf("Проверка договора (%d/100)", a.ValidityScore),
			Preview:   model.Truncate(a.ContractText, previewRunes),
			Icon:      scoring.VerdictFor(a.ValidityScore).Icon,
			CreatedAt: a.CreatedAt,
			UpdatedAt: a.CreatedAt,
			Metadata: map[string]interface{}{
				"validity_score":        a.ValidityScore,
				"critical_errors_count": len(a.CriticalErrors),
				"warnings_count":        len(a.Warnings),
			},
		}
	case GenerationItem:
		c := v.Contract
		return Entry{
			ID:        c.ID,
			Type:      KindGeneration,
			Title:     "Договор: " + c.Category,
			Preview:   model.Truncate(c.Requirements, previewRunes),
			Icon:      "📝",
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.CreatedAt,
			Metadata: map[string]interface{}{
				"category":       c.Category,
				"template_count": len(c.TemplateNames),
			},
		}
	}
	panic(fmt.Sprintf("history: unexpected item %T", it))
}

// Merge orders items newest first and keeps at most limit of them. Equal
// timestamps fall back to kind then descending id so the order is stable.
func Merge(limit int, groups ...[]Item) []Item {
	var all []Item
	for _, g := range groups {
		all = append(all, g...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if !a.Created().Equal(b.Created()) {
			return a.Created().After(b.Created())
		}
		if a.Kind() != b.Kind() {
			return a.Kind() < b.Kind()
		}
		return a.ItemID() > b.ItemID()
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all
}
