package app

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"ailawyer/internal/ai"
	"ailawyer/internal/apperr"
	"ailawyer/internal/history"
	"ailawyer/internal/model"
	"ailawyer/internal/platform/logger"
	"ailawyer/internal/prompt"
	"ailawyer/internal/repository"
	"ailawyer/internal/retrieval"
	"ailawyer/internal/scoring"
	"ailawyer/internal/stream"
)

const (
	minContractRunes = 50
	perQueryTopK     = 8
)

// Completer is the blocking half of the model client.
type Completer interface {
	Complete(ctx context.Context, messages []ai.ChatMessage) (string, error)
}

type ValidatorService struct {
	analysisRepo *repository.AnalysisRepository
	retriever    *retrieval.Retriever
	composer     *prompt.Composer
	generator    *stream.Generator
	completer    Completer
	analysisTopK int
	log          *logger.Logger
}

func NewValidatorService(
	analysisRepo *repository.AnalysisRepository,
	retriever *retrieval.Retriever,
	composer *prompt.Composer,
	generator *stream.Generator,
	completer Completer,
	analysisTopK int,
	log *logger.Logger,
) *ValidatorService {
	if analysisTopK <= 0 {
		analysisTopK = 40
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ValidatorService{
		analysisRepo: analysisRepo,
		retriever:    retriever,
		composer:     composer,
		generator:    generator,
		completer:    completer,
		analysisTopK: analysisTopK,
		log:          log,
	}
}

type validationPlan struct {
	text     string
	messages []ai.ChatMessage
	sources  []model.Source
}

func (s *ValidatorService) plan(ctx context.Context, userID uint, contractText string) (*validationPlan, error) {
	text := strings.TrimSpace(contractText)
	if userID == 0 {
		return nil, apperr.ErrInvalidInput
	}
	if n := utf8.RuneCountInString(text); n < minContractRunes {
		return nil, fmt.Errorf("contract text has %d characters, need at least %d: %w", n, minContractRunes, apperr.ErrInvalidInput)
	}
	grounding, err := s.retriever.RetrieveMany(ctx, retrieval.AuditQueries(text), perQueryTopK, s.analysisTopK)
	if err != nil {
		return nil, err
	}
	if grounding.Empty() {
		s.log.Info("validating without sources", "user_id", userID)
	}
	return &validationPlan{
		text:     text,
		messages: s.composer.Validation(text, grounding),
		sources:  grounding.Sources,
	}, nil
}

func (s *ValidatorService) record(ctx context.Context, userID uint, p *validationPlan, raw string) (*model.ContractAnalysis, error) {
	analysis, err := scoring.Parse(raw, p.sources)
	if err != nil {
		s.log.Warn("audit output rejected", "user_id", userID, "err", err)
		return nil, err
	}
	analysis.UserID = userID
	analysis.ContractText = p.text
	if err := s.analysisRepo.Create(ctx, analysis); err != nil {
		return nil, err
	}
	return analysis, nil
}

// Analyze runs the audit without streaming and returns the stored record.
func (s *ValidatorService) Analyze(ctx context.Context, userID uint, contractText string) (*model.ContractAnalysis, error) {
	p, err := s.plan(ctx, userID, contractText)
	if err != nil {
		return nil, err
	}
	raw, err := s.completer.Complete(ctx, p.messages)
	if err != nil {
		return nil, err
	}
	return s.record(ctx, userID, p, raw)
}

// AnalyzeStream relays the raw audit as it is produced; the done event
// carries the id of the stored analysis.
func (s *ValidatorService) AnalyzeStream(ctx context.Context, userID uint, contractText string) (*stream.Stream, error) {
	p, err := s.plan(ctx, userID, contractText)
	if err != nil {
		return nil, err
	}
	return s.generator.Start(ctx, stream.Job{
		Kind:     "validation",
		Messages: p.messages,
		Finalize: func(ctx context.Context, full string) (stream.Done, error) {
			analysis, err := s.record(ctx, userID, p, full)
			if err != nil {
				return stream.Done{}, err
			}
			return stream.Done{AnalysisID: analysis.ID, Sources: p.sources}, nil
		},
	}), nil
}

func (s *ValidatorService) Get(ctx context.Context, userID, id uint) (*model.ContractAnalysis, error) {
	analysis, err := s.analysisRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if analysis == nil {
		return nil, fmt.Errorf("analysis %d: %w", id, apperr.ErrNotFound)
	}
	if analysis.UserID != userID {
		return nil, fmt.Errorf("analysis %d: %w", id, apperr.ErrForbidden)
	}
	return analysis, nil
}

func (s *ValidatorService) List(ctx context.Context, userID uint, limit int) ([]model.ContractAnalysis, error) {
	return s.analysisRepo.ListByUserID(ctx, userID, history.ClampLimit(limit))
}

func (s *ValidatorService) Delete(ctx context.Context, userID, id uint) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.analysisRepo.Delete(ctx, id)
}
