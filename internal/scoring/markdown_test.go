package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ailawyer/internal/model"
)

func TestVerdictBuckets(t *testing.T) {
	assert.Equal(t, "🟢", VerdictFor(80).Icon)
	assert.Equal(t, "🟡", VerdictFor(79).Icon)
	assert.Equal(t, "🟡", VerdictFor(50).Icon)
	assert.Equal(t, "🔴", VerdictFor(49).Icon)
}

func TestMarkdownSections(t *testing.T) {
	md := Markdown(&model.ContractAnalysis{
		ValidityScore:    42,
		ScoreExplanation: "Много рисков",
		CriticalErrors:   []model.CriticalError{{Error: "Нет предмета"}},
		MissingClauses:   []model.MissingClause{{ClauseName: "Форс-мажор"}},
		Summary:          "Не подписывать",
	})
	assert.Contains(t, md, "# 🔴 Оценка договора: 42/100")
	assert.Contains(t, md, "**ВЫСОКИЙ РИСК**")
	assert.Contains(t, md, "**Статья:** Не указана")
	assert.Contains(t, md, "Текст не предоставлен")
	assert.NotContains(t, md, "Предупреждения")
	assert.Contains(t, md, "## 📌 Итоговое заключение\n\nНе подписывать")
}
