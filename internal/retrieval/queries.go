package retrieval

import "strings"

// broadContractQueries are always searched when auditing a contract.
var broadContractQueries = []string{
	"существенные условия договора",
	"заключение договора обязательные условия",
	"неустойка штраф пеня",
	"валюта расчетов резиденты",
	"расторжение договора",
}

var contractTopics = []struct {
	markers []string
	query   string
}{
	{[]string{"купл", "продаж"}, "договор купли продажи существенные условия"},
	{[]string{"услуг"}, "договор оказания услуг обязательства"},
	{[]string{"труд", "работник"}, "трудовой договор обязательные условия"},
	{[]string{"аренд"}, "договор аренды существенные условия"},
	{[]string{"поставк"}, "договор поставки обязательства"},
}

// AuditQueries builds the search set for validating a contract: one query
// per detected contract topic plus the broad checks.
func AuditQueries(contractText string) []string {
	lower := strings.ToLower(contractText)
	var queries []string
	for _, t := range contractTopics {
		for _, m := range t.markers {
			if strings.Contains(lower, m) {
				queries = append(queries, t.query)
				break
			}
		}
	}
	if len(queries) == 0 {
		queries = append(queries, "договор существенные условия обязательства")
	}
	return append(queries, broadContractQueries...)
}

// GenerationQueries builds category-specific searches for drafting.
func GenerationQueries(category, requirements string) []string {
	c := strings.ToLower(category)
	var queries []string
	switch {
	case strings.Contains(c, "аренд"):
		queries = []string{
			"договор аренды существенные условия",
			"права обязанности арендодателя арендатора",
			"расторжение договора аренды",
		}
	case strings.Contains(c, "услуг"):
		queries = []string{
			"договор оказания услуг существенные условия",
			"ответственность исполнителя заказчика",
			"качество услуг претензии",
		}
	case strings.Contains(c, "купл"), strings.Contains(c, "продаж"), strings.Contains(c, "поставк"):
		queries = []string{
			"договор купли продажи существенные условия",
			"поставка товаров условия",
			"переход права собственности",
		}
	case strings.Contains(c, "займ"), strings.Contains(c, "кредит"):
		queries = []string{
			"договор займа существенные условия",
			"проценты по займу",
			"обеспечение исполнения обязательств",
		}
	default:
		queries = []string{
			"существенные условия договора",
			"права обязанности сторон",
			"ответственность сторон договора",
		}
	}
	if r := strings.TrimSpace(requirements); r != "" {
		queries = append(queries, firstRunes(r, 300))
	}
	return queries
}

func firstRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
