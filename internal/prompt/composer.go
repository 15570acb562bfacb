// Package prompt assembles model inputs for chat, contract validation and
// contract drafting.
package prompt

import (
	"fmt"
	"strings"

	"ailawyer/internal/ai"
	"ailawyer/internal/chunkstore"
	"ailawyer/internal/model"
	"ailawyer/internal/retrieval"
)

const briefContextRunes = 3000

type Composer struct {
	historyTokens int
	count         TokenCounter
}

func NewComposer(historyTokens int, count TokenCounter) *Composer {
	if count == nil {
		count = RuneCounter
	}
	if historyTokens <= 0 {
		historyTokens = 6000
	}
	return &Composer{historyTokens: historyTokens, count: count}
}

type ChatRequest struct {
	Mode      Mode
	History   []model.ChatMessage
	Question  string
	Grounding retrieval.Grounding
}

// Template is a named contract sample given to the drafting prompt.
type Template struct {
	Name string
	Text string
}

// Chat builds system instructions, bounded history and the tagged question.
func (c *Composer) Chat(req ChatRequest) []ai.ChatMessage {
	system := baseInstruction + "\n\n" + req.Mode.Persona

	history := c.boundHistory(req.History, req.Mode.HistoryTurns)
	messages := make([]ai.ChatMessage, 0, len(history)+2)
	messages = append(messages, ai.ChatMessage{Role: "system", Content: system})
	for _, m := range history {
		messages = append(messages, ai.ChatMessage{Role: m.Role, Content: m.Content})
	}

	context := FormatContext(req.Grounding.Hits)
	if req.Mode.Brief {
		context = model.Truncate(context, briefContextRunes)
	}

	var b strings.Builder
	if req.Grounding.Weak() {
		b.WriteString(fallbackInstruction)
		b.WriteString("\n\n")
	}
	b.WriteString("ПРАВОВОЙ КОНТЕКСТ:\n")
	b.WriteString(context)
	b.WriteString("\n\nВОПРОС ПОЛЬЗОВАТЕЛЯ:\n")
	b.WriteString(strings.TrimSpace(req.Question))
	if req.Mode.Brief {
		b.WriteString("\n\nОтветьте кратко и простым языком.")
	}
	messages = append(messages, ai.ChatMessage{Role: "user", Content: b.String()})
	return messages
}

// Validation builds the audit request that must come back as JSON.
func (c *Composer) Validation(contractText string, g retrieval.Grounding) []ai.ChatMessage {
	return []ai.ChatMessage{
		{Role: "system", Content: validatorSystem},
		{Role: "user", Content: fmt.Sprintf(auditTemplate, FormatContext(g.Hits), strings.TrimSpace(contractText))},
	}
}

func (c *Composer) Generation(category string, templates []Template, requirements string, g retrieval.Grounding) []ai.ChatMessage {
	var tb strings.Builder
	for i, t := range templates {
		if i > 0 {
			tb.WriteString("\n\n")
		}
		fmt.Fprintf(&tb, "=== ШАБЛОН: %s ===\n\n%s", t.Name, strings.TrimSpace(t.Text))
	}
	return []ai.ChatMessage{
		{Role: "system", Content: generatorSystem},
		{Role: "user", Content: fmt.Sprintf(generationTemplate, category, tb.String(), FormatContext(g.Hits), strings.TrimSpace(requirements))},
	}
}

// boundHistory keeps the last turns that fit the token budget. Older
// messages are dropped first; a dangling assistant reply at the head goes too.
func (c *Composer) boundHistory(history []model.ChatMessage, turns int) []model.ChatMessage {
	if turns <= 0 || len(history) == 0 {
		return nil
	}
	if limit := turns * 2; len(history) > limit {
		history = history[len(history)-limit:]
	}
	total := 0
	start := len(history)
	for i := len(history) - 1; i >= 0; i-- {
		cost := c.count(history[i].Content)
		if total+cost > c.historyTokens {
			break
		}
		total += cost
		start = i
	}
	history = history[start:]
	for len(history) > 0 && history[0].Role != model.RoleUser {
		history = history[1:]
	}
	return history
}

// FormatContext renders hits as numbered, tagged source blocks.
func FormatContext(hits []chunkstore.Hit) string {
	if len(hits) == 0 {
		return noSourcesText
	}
	parts := make([]string, 0, len(hits))
	for i, h := range hits {
		article := h.Chunk.Article
		if article == "" {
			article = "Unknown"
		}
		parts = append(parts, fmt.Sprintf("[Источник %d: %s | Статья %s]\nГлава: %s\nЗаголовок: %s\nТекст:\n%s\n---",
			i+1, h.Chunk.SourceName, article, h.Chunk.Chapter, h.Chunk.Title, h.Chunk.Text))
	}
	return strings.Join(parts, "\n\n")
}
