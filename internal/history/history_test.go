package history

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ailawyer/internal/apperr"
	"ailawyer/internal/model"
)

func TestParseKindAndClampLimit(t *testing.T) {
	k, err := ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, Kind(""), k)
	k, err = ParseKind("validation")
	require.NoError(t, err)
	assert.Equal(t, KindValidation, k)
	_, err = ParseKind("emails")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	assert.Equal(t, 50, ClampLimit(0))
	assert.Equal(t, 100, ClampLimit(500))
	assert.Equal(t, 7, ClampLimit(7))
}

func TestMergeOrdersNewestFirstAndLimits(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	chats := []Item{
		ChatItem{Session: model.ChatSession{ID: 1, CreatedAt: base}},
		ChatItem{Session: model.ChatSession{ID: 2, CreatedAt: base.Add(3 * time.Hour)}},
	}
	validations := []Item{ValidationItem{Analysis: model.ContractAnalysis{ID: 5, CreatedAt: base.Add(time.Hour)}}}
	generations := []Item{GenerationItem{Contract: model.GeneratedContract{ID: 9, CreatedAt: base.Add(2 * time.Hour)}}}

	merged := Merge(3, chats, validations, generations)
	require.Len(t, merged, 3)
	assert.Equal(t, KindChat, merged[0].Kind())
	assert.Equal(t, uint(2), merged[0].ItemID())
	assert.Equal(t, KindGeneration, merged[1].Kind())
	assert.Equal(t, KindValidation, merged[2].Kind())
}

func TestViewShapes(t *testing.T) {
	now := time.Now()
	v := View(ValidationItem{Analysis: model.ContractAnalysis{
		ID:            3,
		ValidityScore: 55,
		ContractText:  strings.Repeat("д", 150),
		Warnings:      []model.Warning{{Risk: "r"}},
		CreatedAt:     now,
	}})
	assert.Equal(t, "Проверка договора (55/100)", v.Title)
	assert.Equal(t, "🟡", v.Icon)
	assert.Equal(t, 103, len([]rune(v.Preview)))
	assert.Equal(t, 1, v.Metadata["warnings_count"])

	g := View(GenerationItem{Contract: model.GeneratedContract{ID: 4, Category: "Аренда", Requirements: "Квартира", TemplateNames: []string{"a", "b"}}})
	assert.Equal(t, "Договор: Аренда", g.Title)
	assert.Equal(t, "📝", g.Icon)
	assert.Equal(t, 2, g.Metadata["template_count"])

	c := View(ChatItem{Session: model.ChatSession{ID: 8, Title: "Увольнение", SessionType: "hr", MessageCount: 4}})
	assert.Equal(t, "💬", c.Icon)
	assert.Equal(t, "Увольнение", c.Preview)
	assert.Equal(t, 4, c.Metadata["message_count"])
}
