package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ailawyer/internal/apperr"
	"ailawyer/internal/stream"
)

const draft = "# ДОГОВОР АРЕНДЫ\n\n1. Предмет договора..."

func TestGenerateRejectsUnknownCategory(t *testing.T) {
	f := newFixture(t, &fakeLLM{reply: draft})
	_, err := f.generator.Generate(context.Background(), GenerateInput{UserID: 1, Category: "xyz", Requirements: "Квартира в Ташкенте на один год, оплата ежемесячно"})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestGenerateRejectsShortRequirements(t *testing.T) {
	f := newFixture(t, &fakeLLM{reply: draft})
	_, err := f.generator.Generate(context.Background(), GenerateInput{UserID: 1, Category: "Аренда", Requirements: "Квартира"})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestGenerateStoresContract(t *testing.T) {
	f := newFixture(t, &fakeLLM{reply: draft})
	ctx := context.Background()

	s, err := f.generator.Generate(ctx, GenerateInput{UserID: 1, Category: "Аренда", Requirements: "Квартира в Ташкенте на один год, оплата ежемесячно"})
	require.NoError(t, err)
	text, done := drainStream(t, s)
	assert.Equal(t, draft, text)
	require.Equal(t, stream.KindDone, done.Kind)
	require.NotZero(t, done.Done.ContractID)

	c, err := f.generator.Get(ctx, 1, done.Done.ContractID)
	require.NoError(t, err)
	assert.Equal(t, "Аренда", c.Category)
	assert.Equal(t, []string{"Договор аренды"}, []string(c.TemplateNames))
	assert.Equal(t, draft, c.GeneratedText)

	_, err = f.generator.Get(ctx, 2, done.Done.ContractID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	_, err = f.generator.Get(ctx, 1, 12345)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCategoriesListsExistingFolders(t *testing.T) {
	f := newFixture(t, &fakeLLM{})
	cats := f.generator.Categories()
	require.Len(t, cats, 1)
	assert.Equal(t, "Аренда", cats[0].Name)
	assert.Equal(t, 1, cats[0].Count)
}
