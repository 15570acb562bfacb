package retrieval

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ailawyer/internal/apperr"
	"ailawyer/internal/chunkstore"
	"ailawyer/internal/model"
)

type fakeEmbedder struct {
	err error
}

func (f fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{float32(len([]rune(text))), 1}, nil
}

type fakeIndex struct {
	mu       sync.Mutex
	calls    int
	failures int
	hits     map[float32][]chunkstore.Hit
}

func (f *fakeIndex) Query(_ context.Context, emb []float32, k int, _ chunkstore.Filter) ([]chunkstore.Hit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("transient")
	}
	hits := f.hits[emb[0]]
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func hit(id uint, source, article string, score float64) chunkstore.Hit {
	return chunkstore.Hit{
		Chunk: model.DocumentChunk{ID: id, SourceName: source, Article: article, Text: strings.Repeat("т", 400), Chapter: "Глава 1"},
		Score: score,
	}
}

func TestRetrieveMapsSourcesWithLabels(t *testing.T) {
	idx := &fakeIndex{hits: map[float32][]chunkstore.Hit{
		5: {hit(1, "labor.docx", "100", 0.9), hit(2, "labor.docx", "100", 0.8), hit(3, "civil.docx", "", 0.55), hit(4, "tax.docx", "7", 0.31)},
	}}
	r := New(fakeEmbedder{}, idx, 0.35, nil)

	g, err := r.Retrieve(context.Background(), "права", 10, chunkstore.Filter{})
	require.NoError(t, err)
	require.NoError(t, g.Err())
	assert.Len(t, g.Hits, 4)
	require.Len(t, g.Sources, 3)

	assert.Equal(t, "100", g.Sources[0].Article)
	assert.Equal(t, model.SimilarityHigh, g.Sources[0].Similarity)
	assert.Equal(t, "Unknown", g.Sources[1].Article)
	assert.Equal(t, model.SimilarityMedium, g.Sources[1].Similarity)
	assert.Equal(t, model.SimilarityLow, g.Sources[2].Similarity)
	assert.Len(t, []rune(g.Sources[0].Preview), 303)
	assert.False(t, g.Weak())
}

func TestRetrieveRetriesStoreOnce(t *testing.T) {
	idx := &fakeIndex{failures: 1, hits: map[float32][]chunkstore.Hit{1: {hit(1, "a", "1", 0.9)}}}
	g, err := New(fakeEmbedder{}, idx, 0.35, nil).Retrieve(context.Background(), "q", 3, chunkstore.Filter{})
	require.NoError(t, err)
	assert.Len(t, g.Hits, 1)
	assert.Equal(t, 2, idx.calls)
}

func TestRetrieveGivesUpAfterSecondFailure(t *testing.T) {
	idx := &fakeIndex{failures: 2}
	_, err := New(fakeEmbedder{}, idx, 0.35, nil).Retrieve(context.Background(), "q", 3, chunkstore.Filter{})
	require.Error(t, err)
	assert.Equal(t, 2, idx.calls)
}

func TestRetrievePropagatesEmbedderError(t *testing.T) {
	_, err := New(fakeEmbedder{err: apperr.ErrModelUnavailable}, &fakeIndex{}, 0.35, nil).Retrieve(context.Background(), "q", 3, chunkstore.Filter{})
	require.ErrorIs(t, err, apperr.ErrModelUnavailable)
}

func TestRetrieveEmptyCorpus(t *testing.T) {
	g, err := New(fakeEmbedder{}, &fakeIndex{}, 0.35, nil).Retrieve(context.Background(), "вопрос", 5, chunkstore.Filter{})
	require.NoError(t, err)
	assert.True(t, g.Empty())
	assert.True(t, g.Weak())
	assert.ErrorIs(t, g.Err(), apperr.ErrRetrievalEmpty)
	assert.NotNil(t, g.Sources)
	assert.Empty(t, g.Sources)
}

func TestRetrieveRejectsBlankQuery(t *testing.T) {
	_, err := New(fakeEmbedder{}, &fakeIndex{}, 0.35, nil).Retrieve(context.Background(), "  ", 5, chunkstore.Filter{})
	require.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestWeakWhenAverageBelowFallback(t *testing.T) {
	idx := &fakeIndex{hits: map[float32][]chunkstore.Hit{1: {hit(1, "a", "1", 0.4), hit(2, "a", "2", 0.3)}}}
	g, err := New(fakeEmbedder{}, idx, 0.36, nil).Retrieve(context.Background(), "q", 5, chunkstore.Filter{})
	require.NoError(t, err)
	assert.InDelta(t, 0.35, g.AverageScore(), 1e-9)
	assert.True(t, g.Weak())
}

func TestRetrieveManyMergesAndDedupes(t *testing.T) {
	idx := &fakeIndex{hits: map[float32][]chunkstore.Hit{
		1: {hit(1, "civil.docx", "10", 0.6), hit(2, "civil.docx", "11", 0.5)},
		2: {hit(3, "civil.docx", "10", 0.8), hit(4, "labor.docx", "5", 0.7)},
	}}
	g, err := New(fakeEmbedder{}, idx, 0.35, nil).RetrieveMany(context.Background(), []string{"a", "bb"}, 5, 2)
	require.NoError(t, err)
	require.Len(t, g.Hits, 2)
	assert.Equal(t, uint(3), g.Hits[0].Chunk.ID)
	assert.InDelta(t, 0.8, g.Hits[0].Score, 1e-9)
	assert.Equal(t, uint(4), g.Hits[1].Chunk.ID)
}

func TestRetrieveManyRequiresQueries(t *testing.T) {
	_, err := New(fakeEmbedder{}, &fakeIndex{}, 0.35, nil).RetrieveMany(context.Background(), nil, 5, 5)
	require.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestLabelBoundaries(t *testing.T) {
	assert.Equal(t, model.SimilarityHigh, Label(0.75))
	assert.Equal(t, model.SimilarityMedium, Label(0.5))
	assert.Equal(t, model.SimilarityLow, Label(0.49))
}

func TestAuditQueries(t *testing.T) {
	q := AuditQueries("Договор аренды нежилого помещения и оказания услуг")
	assert.Contains(t, q, "договор аренды существенные условия")
	assert.Contains(t, q, "договор оказания услуг обязательства")
	assert.Contains(t, q, "неустойка штраф пеня")

	q = AuditQueries("Соглашение")
	assert.Equal(t, "договор существенные условия обязательства", q[0])
}

func TestGenerationQueries(t *testing.T) {
	q := GenerationQueries("Займ (кредит)", "Сумма 10 млн сум на 12 месяцев")
	assert.Equal(t, "договор займа существенные условия", q[0])
	assert.Equal(t, "Сумма 10 млн сум на 12 месяцев", q[len(q)-1])

	q = GenerationQueries("Подряд", "")
	assert.Len(t, q, 3)
}
