// Package retrieval turns a question into ranked legal sources.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"ailawyer/internal/apperr"
	"ailawyer/internal/chunkstore"
	"ailawyer/internal/metrics"
	"ailawyer/internal/model"
	"ailawyer/internal/platform/logger"
)

const (
	previewRunes = 300
	chapterRunes = 80
	titleRunes   = 100

	highSimilarity   = 0.75
	mediumSimilarity = 0.5
)

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Index interface {
	Query(ctx context.Context, embedding []float32, k int, filter chunkstore.Filter) ([]chunkstore.Hit, error)
}

type Retriever struct {
	embedder          Embedder
	index             Index
	fallbackThreshold float64
	log               *logger.Logger
}

func New(embedder Embedder, index Index, fallbackThreshold float64, log *logger.Logger) *Retriever {
	if log == nil {
		log = logger.Nop()
	}
	return &Retriever{embedder: embedder, index: index, fallbackThreshold: fallbackThreshold, log: log}
}

// Grounding is the evidence gathered for one request.
type Grounding struct {
	Hits    []chunkstore.Hit
	Sources []model.Source

	fallbackThreshold float64
}

func (g Grounding) Empty() bool { return len(g.Hits) == 0 }

func (g Grounding) AverageScore() float64 {
	if len(g.Hits) == 0 {
		return 0
	}
	var sum float64
	for _, h := range g.Hits {
		sum += h.Score
	}
	return sum / float64(len(g.Hits))
}

// Weak reports whether the answer should be flagged as not backed by a
// matching norm: nothing retrieved, or matches too loose on average.
func (g Grounding) Weak() bool {
	return g.Empty() || g.AverageScore() < g.fallbackThreshold
}

// Err returns apperr.ErrRetrievalEmpty when nothing passed the threshold.
func (g Grounding) Err() error {
	if g.Empty() {
		return apperr.ErrRetrievalEmpty
	}
	return nil
}

// Retrieve embeds the query and returns up to k hits, best first.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int, filter chunkstore.Filter) (Grounding, error) {
	hits, err := r.search(ctx, query, k, filter)
	if err != nil {
		return Grounding{}, err
	}
	metrics.RetrievalHits.Observe(float64(len(hits)))
	return r.ground(hits), nil
}

// RetrieveMany runs the queries concurrently, keeps the best hit per
// cited article and returns the overall top k.
func (r *Retriever) RetrieveMany(ctx context.Context, queries []string, perQuery, k int) (Grounding, error) {
	if len(queries) == 0 {
		return Grounding{}, fmt.Errorf("no retrieval queries: %w", apperr.ErrInvalidInput)
	}
	results := make([][]chunkstore.Hit, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			hits, err := r.search(gctx, q, perQuery, chunkstore.Filter{})
			if err != nil {
				return err
			}
			results[i] = hits
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Grounding{}, err
	}

	best := make(map[string]int)
	merged := make([]chunkstore.Hit, 0)
	for _, hits := range results {
		for _, h := range hits {
			key := articleKey(h.Chunk)
			if idx, ok := best[key]; ok {
				if h.Score > merged[idx].Score {
					merged[idx] = h
				}
				continue
			}
			best[key] = len(merged)
			merged = append(merged, h)
		}
	}
	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Score != merged[j].Score {
			return merged[i].Score > merged[j].Score
		}
		return merged[i].Chunk.ID < merged[j].Chunk.ID
	})
	if k > 0 && len(merged) > k {
		merged = merged[:k]
	}
	metrics.RetrievalHits.Observe(float64(len(merged)))
	return r.ground(merged), nil
}

func (r *Retriever) search(ctx context.Context, query string, k int, filter chunkstore.Filter) ([]chunkstore.Hit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty retrieval query: %w", apperr.ErrInvalidInput)
	}
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query failed: %w", err)
	}
	hits, err := r.index.Query(ctx, vec, k, filter)
	if err != nil && ctx.Err() == nil {
		r.log.Warn("chunk store query failed, retrying", "error", err)
		hits, err = r.index.Query(ctx, vec, k, filter)
	}
	if err != nil {
		return nil, fmt.Errorf("query chunk store failed: %w", err)
	}
	return hits, nil
}

func (r *Retriever) ground(hits []chunkstore.Hit) Grounding {
	return Grounding{Hits: hits, Sources: SourcesFromHits(hits), fallbackThreshold: r.fallbackThreshold}
}

// SourcesFromHits projects hits into citations, one per article, keeping
// the order of first appearance.
func SourcesFromHits(hits []chunkstore.Hit) []model.Source {
	sources := make([]model.Source, 0, len(hits))
	seen := make(map[string]struct{}, len(hits))
	for _, h := range hits {
		src := model.Source{
			Article:    articleOrUnknown(h.Chunk.Article),
			Source:     h.Chunk.SourceName,
			Chapter:    model.Truncate(h.Chunk.Chapter, chapterRunes),
			Title:      model.Truncate(h.Chunk.Title, titleRunes),
			Preview:    model.Truncate(h.Chunk.Text, previewRunes),
			Similarity: Label(h.Score),
			Score:      h.Score,
		}
		if _, ok := seen[src.Key()]; ok {
			continue
		}
		seen[src.Key()] = struct{}{}
		sources = append(sources, src)
	}
	return sources
}

// Label buckets a cosine score for display.
func Label(score float64) string {
	switch {
	case score >= highSimilarity:
		return model.SimilarityHigh
	case score >= mediumSimilarity:
		return model.SimilarityMedium
	default:
		return model.SimilarityLow
	}
}

func articleKey(c model.DocumentChunk) string {
	return c.SourceName + "#" + articleOrUnknown(c.Article)
}

func articleOrUnknown(a string) string {
	if strings.TrimSpace(a) == "" {
		return "Unknown"
	}
	return a
}
