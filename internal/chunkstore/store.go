// Package chunkstore keeps every indexed legal chunk searchable by cosine
// similarity. The relational store is the system of record; this package
// mirrors it in an immutable in-memory snapshot that readers use lock-free.
//
// Every chunk write bumps a corpus version in the same transaction. A
// snapshot remembers the version it was built from, and reads reload it
// when the persisted version has moved, so replicas sharing one database
// see each other's uploads and deletions.
package chunkstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"ailawyer/internal/apperr"
	"ailawyer/internal/metrics"
	"ailawyer/internal/model"
)

type Repository interface {
	CreateBatch(ctx context.Context, chunks []model.DocumentChunk) error
	ListAll(ctx context.Context) ([]model.DocumentChunk, error)
	ListByKeys(ctx context.Context, keys []string) ([]model.DocumentChunk, error)
	DeleteBySource(ctx context.Context, sourceName string) (int, error)
	// Version changes whenever chunks are added or removed.
	Version(ctx context.Context) (int64, error)
}

type Hit struct {
	Chunk model.DocumentChunk
	Score float64
}

// Filter narrows a query. Zero value matches everything.
type Filter struct {
	DocType string
}

type DocumentStat struct {
	Source  string `json:"source"`
	DocType string `json:"doc_type"`
	Chunks  int    `json:"chunks"`
}

type Stats struct {
	TotalDocuments int            `json:"total_documents"`
	TotalChunks    int            `json:"total_chunks"`
	Documents      []DocumentStat `json:"documents"`
}

type entry struct {
	chunk model.DocumentChunk
	norm  float64
}

type snapshot struct {
	version int64
	entries []entry
	keys    map[string]struct{}
}

// unsynced never matches a persisted version.
const unsynced int64 = -1

type Store struct {
	repo          Repository
	minSimilarity float64

	mu   sync.Mutex
	snap atomic.Pointer[snapshot]
}

func New(repo Repository, minSimilarity float64) *Store {
	s := &Store{repo: repo, minSimilarity: minSimilarity}
	s.snap.Store(&snapshot{version: unsynced, keys: map[string]struct{}{}})
	return s
}

// Load replaces the in-memory index with the persisted chunks.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.reloadLocked(ctx)
	return err
}

// Refresh reloads the index if another process changed the corpus since
// the current snapshot was built.
func (s *Store) Refresh(ctx context.Context) error {
	_, err := s.current(ctx)
	return err
}

func (s *Store) current(ctx context.Context) (*snapshot, error) {
	v, err := s.repo.Version(ctx)
	if err != nil {
		return nil, err
	}
	if snap := s.snap.Load(); snap.version == v {
		return snap, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if snap := s.snap.Load(); snap.version == v {
		return snap, nil
	}
	return s.reloadLocked(ctx)
}

// reloadLocked reads the version before the rows: a write landing in
// between leaves the snapshot marked older than its contents, which only
// costs one more reload.
func (s *Store) reloadLocked(ctx context.Context) (*snapshot, error) {
	v, err := s.repo.Version(ctx)
	if err != nil {
		return nil, err
	}
	chunks, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	next := &snapshot{version: v, entries: make([]entry, 0, len(chunks)), keys: make(map[string]struct{}, len(chunks))}
	for _, c := range chunks {
		next.add(c)
	}
	s.publish(next)
	return next, nil
}

// Upsert persists chunks whose keys are not yet indexed and makes them
// searchable. Known keys are skipped. It returns how many were added.
func (s *Store) Upsert(ctx context.Context, chunks []model.DocumentChunk) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	fresh := make([]model.DocumentChunk, 0, len(chunks))
	seen := make(map[string]struct{}, len(chunks))
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			return 0, fmt.Errorf("chunk %q has no embedding: %w", c.ChunkKey, apperr.ErrInvalidInput)
		}
		if c.ChunkKey == "" {
			c.ChunkKey = uuid.NewString()
		}
		if _, ok := cur.keys[c.ChunkKey]; ok {
			continue
		}
		if _, ok := seen[c.ChunkKey]; ok {
			continue
		}
		seen[c.ChunkKey] = struct{}{}
		fresh = append(fresh, c)
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	if err := s.repo.CreateBatch(ctx, fresh); err != nil {
		return 0, err
	}
	keys := make([]string, len(fresh))
	for i := range fresh {
		keys[i] = fresh[i].ChunkKey
	}
	stored, err := s.repo.ListByKeys(ctx, keys)
	if err != nil {
		return 0, err
	}

	// The written version is not known here; leaving the old one forces the
	// next read to resync with whatever else changed meanwhile.
	next := cur.clone(len(stored))
	added := 0
	for _, c := range stored {
		if next.add(c) {
			added++
		}
	}
	s.publish(next)
	return added, nil
}

// DeleteBySource removes every chunk of the named source.
func (s *Store) DeleteBySource(ctx context.Context, sourceName string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.repo.DeleteBySource(ctx, sourceName)
	if err != nil {
		return 0, err
	}

	cur := s.snap.Load()
	next := &snapshot{version: cur.version, entries: make([]entry, 0, len(cur.entries)), keys: make(map[string]struct{}, len(cur.keys))}
	for _, e := range cur.entries {
		if e.chunk.SourceName == sourceName {
			continue
		}
		next.add(e.chunk)
	}
	s.publish(next)
	return removed, nil
}

// Query returns at most k chunks ordered by descending cosine similarity.
// Chunks under the minimum similarity never reach ranking. Equal scores
// keep insertion order. An empty store yields an empty result. The
// snapshot is resynced first if the corpus changed elsewhere.
func (s *Store) Query(ctx context.Context, embedding []float32, k int, filter Filter) ([]Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(embedding) == 0 {
		return nil, fmt.Errorf("query embedding is empty: %w", apperr.ErrInvalidInput)
	}
	if k <= 0 {
		return []Hit{}, nil
	}
	qNorm := norm(embedding)
	if qNorm == 0 {
		return []Hit{}, nil
	}

	snap, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	hits := make([]Hit, 0, k)
	for _, e := range snap.entries {
		if filter.DocType != "" && e.chunk.DocType != filter.DocType {
			continue
		}
		if len(e.chunk.Embedding) != len(embedding) {
			continue
		}
		score := cosine(embedding, e.chunk.Embedding, qNorm, e.norm)
		if score < s.minSimilarity {
			continue
		}
		hits = append(hits, Hit{Chunk: e.chunk, Score: score})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Stats and HasSource read the current snapshot; call Refresh first to
// include writes made by other processes.
func (s *Store) Stats() Stats {
	snap := s.snap.Load()
	byDoc := make(map[string]*DocumentStat)
	order := make([]string, 0)
	for _, e := range snap.entries {
		d, ok := byDoc[e.chunk.SourceName]
		if !ok {
			d = &DocumentStat{Source: e.chunk.SourceName, DocType: e.chunk.DocType}
			byDoc[e.chunk.SourceName] = d
			order = append(order, e.chunk.SourceName)
		}
		d.Chunks++
	}
	sort.Strings(order)
	stats := Stats{TotalDocuments: len(order), TotalChunks: len(snap.entries), Documents: make([]DocumentStat, 0, len(order))}
	for _, name := range order {
		stats.Documents = append(stats.Documents, *byDoc[name])
	}
	return stats
}

// HasSource reports whether any chunk of the source is indexed.
func (s *Store) HasSource(sourceName string) bool {
	for _, e := range s.snap.Load().entries {
		if e.chunk.SourceName == sourceName {
			return true
		}
	}
	return false
}

func (s *Store) publish(next *snapshot) {
	s.snap.Store(next)
	metrics.IndexedChunks.Set(float64(len(next.entries)))
}

func (sn *snapshot) clone(extra int) *snapshot {
	next := &snapshot{
		version: sn.version,
		entries: make([]entry, len(sn.entries), len(sn.entries)+extra),
		keys:    make(map[string]struct{}, len(sn.keys)+extra),
	}
	copy(next.entries, sn.entries)
	for k := range sn.keys {
		next.keys[k] = struct{}{}
	}
	return next
}

func (sn *snapshot) add(c model.DocumentChunk) bool {
	if _, ok := sn.keys[c.ChunkKey]; ok {
		return false
	}
	sn.keys[c.ChunkKey] = struct{}{}
	sn.entries = append(sn.entries, entry{chunk: c, norm: norm(c.Embedding)})
	return true
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func cosine(a, b []float32, normA, normB float64) float64 {
	if len(a) != len(b) || normA == 0 || normB == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (normA * normB)
}
