package scoring

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ailawyer/internal/apperr"
	"ailawyer/internal/model"
)

var testSources = []model.Source{{Article: "Статья 386", Source: "ГК РУз", Similarity: model.SimilarityHigh}}

func TestParseFencedOutputWithProse(t *testing.T) {
	raw := "Вот результат аудита:\n```json\n{\n" +
		`  "validity_score": 64,` + "\n" +
		`  "score_explanation": "Нет неустойки",` + "\n" +
		`  "critical_errors": [{"error": "Цена в долларах", "article": "Статья 18 Закона о валютном регулировании", "fix": "Указать цену в UZS"},],` + "\n" +
		`  "warnings": [{"risk": "Односторонний отказ", "explanation": "Право только у арендодателя", "suggestion": "Сделать взаимным"}],` + "\n" +
		`  "missing_clauses": [],` + "\n" +
		`  "summary": "Договор требует доработки",` + "\n" +
		"}\n```\nЕсли нужно, уточните."

	a, err := Parse(raw, testSources)
	require.NoError(t, err)
	assert.Equal(t, 64, a.ValidityScore)
	assert.Equal(t, "Нет неустойки", a.ScoreExplanation)
	require.Len(t, a.CriticalErrors, 1)
	assert.Equal(t, "Указать цену в UZS", a.CriticalErrors[0].Fix)
	require.Len(t, a.Warnings, 1)
	assert.Empty(t, a.MissingClauses)
	assert.Equal(t, "Договор требует доработки", a.Summary)
	assert.Equal(t, testSources, []model.Source(a.Sources))
	assert.Equal(t, raw, a.RawResponse)
}

func TestCoerceScore(t *testing.T) {
	cases := []struct {
		raw  string
		want int
		ok   bool
	}{
		{`85`, 85, true},
		{`72.6`, 73, true},
		{`"85/100"`, 85, true},
		{`"Score: 72"`, 72, true},
		{`"оценка 55,5 из 100"`, 56, true},
		{`140`, 100, true},
		{`-3`, 0, true},
		{`1e20`, 100, true},
		{`-1e20`, 0, true},
		{`"99999999999999999999/100"`, 100, true},
		{`"high"`, 0, false},
		{`null`, 0, false},
		{`true`, 0, false},
		{``, 0, false},
	}
	for _, tc := range cases {
		got, ok := CoerceScore(json.RawMessage(tc.raw))
		assert.Equal(t, tc.ok, ok, tc.raw)
		assert.Equal(t, tc.want, got, tc.raw)
	}
}

func TestParseStringScoreIsReproducible(t *testing.T) {
	a, err := Parse(`{"validity_score": "Score: 85/100", "summary": "ok"}`, nil)
	require.NoError(t, err)
	assert.Equal(t, 85, a.ValidityScore)
	assert.NotNil(t, a.Sources)
}

func TestParseFallsBackToScoreKey(t *testing.T) {
	a, err := Parse(`{"score": 40, "summary": "риск"}`, nil)
	require.NoError(t, err)
	assert.Equal(t, 40, a.ValidityScore)
}

func TestParseDropsMalformedEntries(t *testing.T) {
	raw := `{
		"validity_score": 50,
		"summary": "s",
		"critical_errors": [
			{"error": "ok", "article": "Статья 1", "fix": "f"},
			{"article": "Статья 2", "fix": "no primary field"},
			"just a string",
			{"error": "bad type", "article": 12, "fix": "f"}
		],
		"missing_clauses": [
			{"clause_name": "Форс-мажор", "drafted_text": "Стороны освобождаются..."},
			{"clause_name": ""}
		]
	}`
	a, err := Parse(raw, testSources)
	require.NoError(t, err)
	require.Len(t, a.CriticalErrors, 1)
	assert.Equal(t, "ok", a.CriticalErrors[0].Error)
	require.Len(t, a.MissingClauses, 1)
	assert.Equal(t, "", a.MissingClauses[0].ArticleReference)
}

func TestParseFormatErrors(t *testing.T) {
	for _, raw := range []string{
		"Извините, я не могу проанализировать договор.",
		`{"validity_score": 70}`,
		`{"summary": "no score"}`,
		`{"validity_score": "n/a", "summary": "x"}`,
		`{"validity_score": 70, "summary": }`,
	} {
		_, err := Parse(raw, nil)
		assert.ErrorIs(t, err, apperr.ErrGenerationFormat, raw)
	}
}

func TestStripLineCommentKeepsURLs(t *testing.T) {
	assert.Equal(t, `"url": "http://example.com"`, stripLineComment(`"url": "http://example.com" // note`))
	assert.Equal(t, `"a": 1,`, stripLineComment(`"a": 1, // trailing`))
}

func TestCleanJSONLeavesStringContentAlone(t *testing.T) {
	raw := "{\"summary\": \"Стороны: А, }Б\", \"list\": [\"a, ]\", \"b\",], \"q\": \"\\\", }\",\n}"
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(cleanJSON(raw)), &out))
	assert.Equal(t, "Стороны: А, }Б", out["summary"])
	assert.Equal(t, []interface{}{"a, ]", "b"}, out["list"])
	assert.Equal(t, "\", }", out["q"])
}

func TestParseKeepsCommaBraceInSummary(t *testing.T) {
	a, err := Parse("```json\n{\"validity_score\": 70, \"summary\": \"Стороны: А, }Б\",}\n```", testSources)
	require.NoError(t, err)
	assert.Equal(t, "Стороны: А, }Б", a.Summary)
}
