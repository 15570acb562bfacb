package app

import (
	"context"
	"fmt"
	"time"

	"ailawyer/internal/apperr"
	"ailawyer/internal/chunkstore"
	"ailawyer/internal/ingest"
	"ailawyer/internal/metrics"
	"ailawyer/internal/model"
	"ailawyer/internal/platform/logger"
	"ailawyer/internal/repository"
)

// embeddingBatchSize stays small; several providers cap inputs per call.
const embeddingBatchSize = 10

type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Indexer chunks, embeds and stores one document, recording the outcome
// on its LegalDocument row.
type Indexer struct {
	processor *ingest.Processor
	embedder  BatchEmbedder
	store     *chunkstore.Store
	docRepo   *repository.DocumentRepository
	log       *logger.Logger
}

func NewIndexer(processor *ingest.Processor, embedder BatchEmbedder, store *chunkstore.Store, docRepo *repository.DocumentRepository, log *logger.Logger) *Indexer {
	if log == nil {
		log = logger.Nop()
	}
	return &Indexer{processor: processor, embedder: embedder, store: store, docRepo: docRepo, log: log}
}

func (ix *Indexer) Index(ctx context.Context, job model.IndexJob) (int, error) {
	started := time.Now()
	n, err := ix.index(ctx, job)
	if err != nil {
		metrics.IndexJobs.WithLabelValues("failed").Inc()
		ix.log.Error("index document failed", "source", job.SourceName, "err", err)
		markCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if markErr := ix.docRepo.MarkFailed(markCtx, job.SourceName, err.Error()); markErr != nil {
			ix.log.Error("mark document failed", "source", job.SourceName, "err", markErr)
		}
		return 0, err
	}
	metrics.IndexJobs.WithLabelValues("indexed").Inc()
	ix.log.Info("document indexed", "source", job.SourceName, "chunks", n, "elapsed", time.Since(started).String())
	return n, nil
}

func (ix *Indexer) index(ctx context.Context, job model.IndexJob) (int, error) {
	res := ix.processor.Process(job.SourceName, job.Text)
	if len(res.Chunks) == 0 {
		return 0, fmt.Errorf("document %q produced no chunks: %w", job.SourceName, apperr.ErrInvalidInput)
	}
	for start := 0; start < len(res.Chunks); start += embeddingBatchSize {
		end := start + embeddingBatchSize
		if end > len(res.Chunks) {
			end = len(res.Chunks)
		}
		texts := make([]string, 0, end-start)
		for _, c := range res.Chunks[start:end] {
			texts = append(texts, c.Text)
		}
		vectors, err := ix.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return 0, fmt.Errorf("embed chunks %d-%d: %w", start, end, err)
		}
		if len(vectors) != len(texts) {
			return 0, fmt.Errorf("embedding count mismatch: got %d want %d: %w", len(vectors), len(texts), apperr.ErrModelUnavailable)
		}
		for i, v := range vectors {
			res.Chunks[start+i].Embedding = v
		}
	}
	n, err := ix.store.Upsert(ctx, res.Chunks)
	if err != nil {
		return 0, err
	}
	if err := ix.docRepo.MarkIndexed(ctx, job.SourceName, n); err != nil {
		return 0, err
	}
	return n, nil
}
