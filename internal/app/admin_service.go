package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"ailawyer/internal/apperr"
	"ailawyer/internal/chunkstore"
	"ailawyer/internal/ingest"
	"ailawyer/internal/model"
	"ailawyer/internal/pkg/textextract"
	"ailawyer/internal/platform/logger"
	"ailawyer/internal/repository"
)

type IndexJobPublisher interface {
	Publish(ctx context.Context, job model.IndexJob) error
}

// AdminService manages the legal corpus. Uploads are indexed by a queue
// worker when a publisher is configured, inline otherwise.
type AdminService struct {
	docRepo   *repository.DocumentRepository
	store     *chunkstore.Store
	indexer   *Indexer
	publisher IndexJobPublisher
	log       *logger.Logger
}

func NewAdminService(docRepo *repository.DocumentRepository, store *chunkstore.Store, indexer *Indexer, publisher IndexJobPublisher, log *logger.Logger) *AdminService {
	if log == nil {
		log = logger.Nop()
	}
	return &AdminService{docRepo: docRepo, store: store, indexer: indexer, publisher: publisher, log: log}
}

type AdminStats struct {
	chunkstore.Stats
	Pending int `json:"pending_documents"`
	Failed  int `json:"failed_documents"`
}

// Upload registers a document and schedules its indexing. The document
// type is inferred from the text, not from the file name.
func (s *AdminService) Upload(ctx context.Context, filename string, data []byte) (*model.LegalDocument, error) {
	source := filepath.Base(strings.TrimSpace(filename))
	if source == "" || source == "." || source == "/" {
		return nil, fmt.Errorf("file name is required: %w", apperr.ErrInvalidInput)
	}
	text, err := textextract.FromFile(source, data)
	if err != nil {
		if apperr.Code(err) == "internal" {
			return nil, fmt.Errorf("read %s: %v: %w", source, err, apperr.ErrInvalidInput)
		}
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%s has no extractable text: %w", source, apperr.ErrInvalidInput)
	}

	existing, err := s.docRepo.GetBySource(ctx, source)
	if err != nil {
		return nil, err
	}
	if err := s.store.Refresh(ctx); err != nil {
		return nil, err
	}
	switch {
	case existing != nil && existing.Status != model.DocumentFailed:
		return nil, fmt.Errorf("document %q: %w", source, apperr.ErrConflict)
	case existing != nil:
		// A failed run may have stored chunks before giving up.
		if _, err := s.store.DeleteBySource(ctx, source); err != nil {
			return nil, err
		}
		if err := s.docRepo.DeleteBySource(ctx, source); err != nil {
			return nil, err
		}
	case s.store.HasSource(source):
		return nil, fmt.Errorf("document %q: %w", source, apperr.ErrConflict)
	}

	doc := &model.LegalDocument{
		SourceName: source,
		DocType:    ingest.DetectDocType(text),
		Status:     model.DocumentPending,
	}
	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	job := model.IndexJob{SourceName: source, Text: text}
	if s.publisher == nil {
		n, err := s.indexer.Index(ctx, job)
		if err != nil {
			return nil, err
		}
		doc.Status = model.DocumentIndexed
		doc.ChunkCount = n
		return doc, nil
	}
	if err := s.publisher.Publish(ctx, job); err != nil {
		if markErr := s.docRepo.MarkFailed(ctx, source, err.Error()); markErr != nil {
			s.log.Error("mark document failed", "source", source, "err", markErr)
		}
		return nil, fmt.Errorf("enqueue index job: %w", err)
	}
	s.log.Info("index job queued", "source", source, "doc_type", doc.DocType)
	return doc, nil
}

func (s *AdminService) Documents(ctx context.Context) ([]model.LegalDocument, error) {
	return s.docRepo.List(ctx)
}

func (s *AdminService) Stats(ctx context.Context) (*AdminStats, error) {
	docs, err := s.docRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.store.Refresh(ctx); err != nil {
		return nil, err
	}
	stats := &AdminStats{Stats: s.store.Stats()}
	for _, d := range docs {
		switch d.Status {
		case model.DocumentPending:
			stats.Pending++
		case model.DocumentFailed:
			stats.Failed++
		}
	}
	return stats, nil
}

// Delete removes a source and every chunk cut from it, returning how many
// chunks went away.
func (s *AdminService) Delete(ctx context.Context, source string) (int, error) {
	doc, err := s.docRepo.GetBySource(ctx, source)
	if err != nil {
		return 0, err
	}
	if err := s.store.Refresh(ctx); err != nil {
		return 0, err
	}
	if doc == nil && !s.store.HasSource(source) {
		return 0, fmt.Errorf("document %q: %w", source, apperr.ErrNotFound)
	}
	removed, err := s.store.DeleteBySource(ctx, source)
	if err != nil {
		return 0, err
	}
	if err := s.docRepo.DeleteBySource(ctx, source); err != nil {
		return removed, err
	}
	s.log.Info("document removed", "source", source, "chunks", removed)
	return removed, nil
}
