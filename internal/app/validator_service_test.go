package app

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ailawyer/internal/apperr"
	"ailawyer/internal/stream"
)

var sampleContract = strings.Repeat("Арендодатель передаёт Арендатору квартиру во временное пользование. ", 3)

const auditJSON = "```json\n{\"validity_score\": \"85/100\", \"score_explanation\": \"Условия в целом соблюдены\", " +
	"\"critical_errors\": [], \"warnings\": [{\"risk\": \"Нет неустойки\", \"explanation\": \"...\", \"suggestion\": \"Добавить\"}], " +
	"\"missing_clauses\": [], \"summary\": \"Договор допустим\"}\n```"

func TestAnalyzeRejectsShortContract(t *testing.T) {
	f := newFixture(t, &fakeLLM{reply: auditJSON})
	_, err := f.validator.Analyze(context.Background(), 1, "Договор аренды квартиры")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	_, err = f.validator.AnalyzeStream(context.Background(), 1, "Договор")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestAnalyzeStoresParsedScore(t *testing.T) {
	f := newFixture(t, &fakeLLM{reply: auditJSON})
	ctx := context.Background()

	a, err := f.validator.Analyze(ctx, 1, sampleContract)
	require.NoError(t, err)
	assert.NotZero(t, a.ID)
	assert.Equal(t, 85, a.ValidityScore)
	assert.Len(t, a.Warnings, 1)
	assert.NotNil(t, a.Sources)

	stored, err := f.validator.Get(ctx, 1, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 85, stored.ValidityScore)
	assert.Equal(t, strings.TrimSpace(sampleContract), stored.ContractText)

	_, err = f.validator.Get(ctx, 2, a.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestAnalyzeStreamDoneCarriesAnalysisID(t *testing.T) {
	f := newFixture(t, &fakeLLM{reply: auditJSON})
	ctx := context.Background()

	s, err := f.validator.AnalyzeStream(ctx, 1, sampleContract)
	require.NoError(t, err)
	text, done := drainStream(t, s)
	assert.Equal(t, auditJSON, text)
	require.Equal(t, stream.KindDone, done.Kind)
	require.NotZero(t, done.Done.AnalysisID)

	list, err := f.validator.List(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, done.Done.AnalysisID, list[0].ID)
}

func TestAnalyzeMalformedOutputIsFormatError(t *testing.T) {
	f := newFixture(t, &fakeLLM{reply: "Извините, не могу оценить этот договор."})
	ctx := context.Background()

	_, err := f.validator.Analyze(ctx, 1, sampleContract)
	assert.ErrorIs(t, err, apperr.ErrGenerationFormat)

	s, err := f.validator.AnalyzeStream(ctx, 1, sampleContract)
	require.NoError(t, err)
	_, last := drainStream(t, s)
	assert.Equal(t, stream.KindError, last.Kind)
	assert.Equal(t, "generation_format", last.Code)

	list, err := f.validator.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}
