package scoring

import (
	"fmt"
	"strings"

	"ailawyer/internal/model"
)

type Verdict struct {
	Icon  string `json:"icon"`
	Label string `json:"label"`
}

func VerdictFor(score int) Verdict {
	switch {
	case score >= 80:
		return Verdict{Icon: "🟢", Label: "ДОПУСТИМО"}
	case score >= 50:
		return Verdict{Icon: "🟡", Label: "ТРЕБУЕТ ДОРАБОТКИ"}
	default:
		return Verdict{Icon: "🔴", Label: "ВЫСОКИЙ РИСК"}
	}
}

func or(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// Markdown renders the audit report shown in the validator UI.
func Markdown(a *model.ContractAnalysis) string {
	v := VerdictFor(a.ValidityScore)
	var b strings.Builder
	fmt.Fprintf(&b, "# %s Оценка договора: %d/100\n", v.Icon, a.ValidityScore)
	fmt.Fprintf(&b, "## 🚦 Вердикт: **%s**\n\n", v.Label)
	b.WriteString(a.ScoreExplanation)
	b.WriteString("\n\n---\n")

	if len(a.CriticalErrors) > 0 {
		b.WriteString("\n## ❌ Критические ошибки\n\n")
		for _, e := range a.CriticalErrors {
			fmt.Fprintf(&b, "### %s\n", e.Error)
			fmt.Fprintf(&b, "**Статья:** %s\n", or(e.Article, "Не указана"))
			fmt.Fprintf(&b, "**Исправление:** %s\n\n", or(e.Fix, "Требуется консультация"))
		}
	}

	if len(a.Warnings) > 0 {
		b.WriteString("\n## ⚠️ Предупреждения\n\n")
		for _, w := range a.Warnings {
			fmt.Fprintf(&b, "### %s\n", w.Risk)
			fmt.Fprintf(&b, "%s\n", w.Explanation)
			fmt.Fprintf(&b, "**Рекомендация:** %s\n\n", w.Suggestion)
		}
	}

	if len(a.MissingClauses) > 0 {
		b.WriteString("\n## 📝 Недостающие пункты\n\n")
		for _, c := range a.MissingClauses {
			fmt.Fprintf(&b, "### %s\n", c.ClauseName)
			fmt.Fprintf(&b, "**Основание:** %s\n\n", or(c.ArticleReference, "Не указано"))
			fmt.Fprintf(&b, "```\n%s\n```\n\n", or(c.DraftedText, "Текст не предоставлен"))
		}
	}

	if a.Summary != "" {
		b.WriteString("\n---\n\n## 📌 Итоговое заключение\n\n")
		b.WriteString(a.Summary)
	}
	return b.String()
}
