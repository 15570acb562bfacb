// Package ingest turns an uploaded legal document into chunks ready for
// embedding: detect the document type, split it along its articles, then
// cut long articles to size.
package ingest

import (
	"strings"

	"github.com/google/uuid"

	"ailawyer/internal/model"
)

type Result struct {
	DocType  string
	Articles int
	Chunks   []model.DocumentChunk
}

type Processor struct {
	splitter *Splitter
}

func NewProcessor(chunkSize, chunkOverlap int) *Processor {
	return &Processor{splitter: NewSplitter(chunkSize, chunkOverlap)}
}

// Process returns chunks without embeddings. A text with no recognisable
// structure is split as a whole.
func (p *Processor) Process(sourceName, text string) Result {
	docType := DetectDocType(text)
	var articles []Article
	switch docType {
	case model.DocTypeRussianCode:
		articles = parseCode(text, russianGrammar)
	case model.DocTypeUzbekCode:
		articles = parseCode(text, uzbekGrammar)
	case model.DocTypeDecree:
		articles = parseDecree(text)
	}

	res := Result{DocType: docType, Articles: len(articles)}
	if len(articles) == 0 {
		for _, piece := range p.splitter.Split(text) {
			res.Chunks = append(res.Chunks, newChunk(sourceName, docType, Article{Chapter: "General"}, piece))
		}
		return res
	}
	for _, a := range articles {
		for _, piece := range p.splitter.Split(a.Content) {
			res.Chunks = append(res.Chunks, newChunk(sourceName, docType, a, piece))
		}
	}
	return res
}

func newChunk(sourceName, docType string, a Article, text string) model.DocumentChunk {
	chapter := a.Chapter
	if a.Section != "" && a.Section != a.Chapter && a.Chapter != "General" {
		chapter = a.Section + " / " + a.Chapter
	}
	return model.DocumentChunk{
		ChunkKey:   uuid.NewString(),
		SourceName: sourceName,
		DocType:    docType,
		Chapter:    firstRunes(strings.TrimSpace(chapter), 200),
		Article:    firstRunes(a.Display, 32),
		Title:      firstRunes(a.Title, 150),
		Text:       text,
	}
}
