package ingest

import (
	"fmt"
	"regexp"
	"strings"

	"ailawyer/internal/model"
)

var (
	uzbekArticleCount   = regexp.MustCompile(`(?i)\d+-modda`)
	russianArticleCount = regexp.MustCompile(`(?i)Статья\s+\d+`)
	decreeMarker        = regexp.MustCompile(`(?i)QAROR|NIZOM|QONUN|FARMON`)

	ruSection = regexp.MustCompile(`(?i)^(РАЗДЕЛ\s+[А-ЯA-Z]+|ОБЩАЯ ЧАСТЬ|ОСОБЕННАЯ ЧАСТЬ)`)
	ruChapter = regexp.MustCompile(`(?i)^Глава\s+([IVXLC]+|\d+)[.\s]*(.*)$`)
	ruArticle = regexp.MustCompile(`(?i)^Статья\s+(\d+)[.\s]*(.*)$`)

	uzSection = regexp.MustCompile(`(?i)^(BIRINCHI|IKKINCHI|UCHINCHI|TOʻRTINCHI|BESHINCHI)?\s*BOʻLIM`)
	uzChapter = regexp.MustCompile(`(?i)^([IVXLC]+|\d+)\s*bob[.\s]*(.*)$`)
	uzArticle = regexp.MustCompile(`(?i)^(\d+)-modda[.\s]*(.*)$`)

	decreeTitle = regexp.MustCompile(`(?i)(QONUNI?|QARORI?|FARMONI?|NIZOMI?)\s*$`)
	decreePoint = regexp.MustCompile(`^(\d+)\.\s+(.*)$`)
)

// DetectDocType classifies a legal text by counting structural markers.
func DetectDocType(text string) string {
	switch {
	case len(uzbekArticleCount.FindAllStringIndex(text, 3)) >= 3:
		return model.DocTypeUzbekCode
	case len(russianArticleCount.FindAllStringIndex(text, 3)) >= 3:
		return model.DocTypeRussianCode
	case decreeMarker.MatchString(text):
		return model.DocTypeDecree
	default:
		return model.DocTypeOther
	}
}

// Article is one structural unit of a source: a code article, or a
// numbered point of a decree.
type Article struct {
	Display string
	Section string
	Chapter string
	Title   string
	Content string
}

type codeGrammar struct {
	section, chapter, article *regexp.Regexp
	defaultSection            string
	chapterLabel              func(num, title string) string
	articleLabel              func(num string) string
}

var russianGrammar = codeGrammar{
	section:        ruSection,
	chapter:        ruChapter,
	article:        ruArticle,
	defaultSection: "ОБЩАЯ ЧАСТЬ",
	chapterLabel:   func(num, title string) string { return strings.TrimSpace(fmt.Sprintf("Глава %s. %s", num, title)) },
	articleLabel:   func(num string) string { return "Статья " + num },
}

var uzbekGrammar = codeGrammar{
	section:        uzSection,
	chapter:        uzChapter,
	article:        uzArticle,
	defaultSection: "UMUMIY QOIDALAR",
	chapterLabel:   func(num, title string) string { return strings.TrimSpace(fmt.Sprintf("%s bob. %s", num, title)) },
	articleLabel:   func(num string) string { return num + "-modda" },
}

func parseCode(text string, g codeGrammar) []Article {
	var (
		out     []Article
		section = g.defaultSection
		chapter = "General"
		current *Article
		lines   []string
	)
	flush := func() {
		if current != nil && len(lines) > 0 {
			current.Content = strings.Join(lines, "\n")
			out = append(out, *current)
		}
	}
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if g.section.MatchString(line) {
			section = line
			continue
		}
		if m := g.chapter.FindStringSubmatch(line); m != nil {
			chapter = g.chapterLabel(m[1], strings.TrimSpace(m[2]))
			continue
		}
		if m := g.article.FindStringSubmatch(line); m != nil {
			flush()
			current = &Article{
				Display: g.articleLabel(m[1]),
				Section: section,
				Chapter: chapter,
				Title:   strings.TrimSpace(m[2]),
			}
			lines = []string{line}
			continue
		}
		if current != nil {
			lines = append(lines, line)
		}
	}
	flush()
	return out
}

func parseDecree(text string) []Article {
	title := "Unknown Document"
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if !decreeTitle.MatchString(strings.TrimSpace(line)) {
			continue
		}
		for _, next := range lines[i+1:] {
			if next = strings.TrimSpace(next); next != "" {
				title = firstRunes(next, 200)
				break
			}
		}
		break
	}
	section := firstRunes(title, 100)

	var (
		out     []Article
		current *Article
		body    []string
	)
	flush := func() {
		if current != nil {
			current.Content = strings.TrimSpace(strings.Join(body, "\n"))
			if current.Content != "" {
				current.Title = ellipsize(current.Content, 100)
				out = append(out, *current)
			}
		}
	}
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if m := decreePoint.FindStringSubmatch(line); m != nil {
			flush()
			current = &Article{Display: "пункт " + m[1], Section: section, Chapter: "General"}
			body = []string{m[2]}
			continue
		}
		if current != nil {
			body = append(body, line)
		}
	}
	flush()

	if len(out) >= 3 {
		return out
	}
	n := 0
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if runeLen(para) <= 100 || covered(out, para) {
			continue
		}
		n++
		out = append(out, Article{
			Display: fmt.Sprintf("раздел %d", n),
			Section: section,
			Chapter: "General",
			Title:   ellipsize(para, 80),
			Content: para,
		})
	}
	return out
}

func covered(articles []Article, para string) bool {
	head := firstRunes(para, 50)
	for _, a := range articles {
		if strings.Contains(a.Content, head) {
			return true
		}
	}
	return false
}

func firstRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func ellipsize(s string, n int) string {
	if runeLen(s) <= n {
		return s
	}
	return firstRunes(s, n) + "..."
}
