package app

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"ailawyer/internal/apperr"
	"ailawyer/internal/catalog"
	"ailawyer/internal/history"
	"ailawyer/internal/model"
	"ailawyer/internal/platform/logger"
	"ailawyer/internal/prompt"
	"ailawyer/internal/repository"
	"ailawyer/internal/retrieval"
	"ailawyer/internal/stream"
)

const (
	minRequirementRunes = 20
	generationTopK      = 15
)

type GeneratorService struct {
	contractRepo *repository.GeneratedContractRepository
	catalog      *catalog.Catalog
	retriever    *retrieval.Retriever
	composer     *prompt.Composer
	generator    *stream.Generator
	log          *logger.Logger
}

func NewGeneratorService(
	contractRepo *repository.GeneratedContractRepository,
	cat *catalog.Catalog,
	retriever *retrieval.Retriever,
	composer *prompt.Composer,
	generator *stream.Generator,
	log *logger.Logger,
) *GeneratorService {
	if log == nil {
		log = logger.Nop()
	}
	return &GeneratorService{
		contractRepo: contractRepo,
		catalog:      cat,
		retriever:    retriever,
		composer:     composer,
		generator:    generator,
		log:          log,
	}
}

func (s *GeneratorService) Categories() []catalog.Category {
	return s.catalog.ListCategories()
}

func (s *GeneratorService) Templates(category string) ([]catalog.TemplateInfo, error) {
	return s.catalog.Templates(category)
}

type GenerateInput struct {
	UserID       uint
	Category     string
	Requirements string
}

// Generate drafts a contract of the given category from its templates and
// the user's requirements. The done event carries the stored contract id.
func (s *GeneratorService) Generate(ctx context.Context, in GenerateInput) (*stream.Stream, error) {
	requirements := strings.TrimSpace(in.Requirements)
	if in.UserID == 0 {
		return nil, apperr.ErrInvalidInput
	}
	if !s.catalog.Exists(in.Category) {
		return nil, fmt.Errorf("unknown contract category %q: %w", in.Category, apperr.ErrInvalidInput)
	}
	if n := utf8.RuneCountInString(requirements); n < minRequirementRunes {
		return nil, fmt.Errorf("requirements have %d characters, need at least %d: %w", n, minRequirementRunes, apperr.ErrInvalidInput)
	}

	templates, err := s.catalog.Load(in.Category)
	if err != nil {
		return nil, err
	}
	grounding, err := s.retriever.RetrieveMany(ctx, retrieval.GenerationQueries(in.Category, requirements), perQueryTopK, generationTopK)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(templates))
	for i, t := range templates {
		names[i] = t.Name
	}
	sources := grounding.Sources

	return s.generator.Start(ctx, stream.Job{
		Kind:     "generation",
		Messages: s.composer.Generation(in.Category, templates, requirements, grounding),
		Finalize: func(ctx context.Context, full string) (stream.Done, error) {
			text := strings.TrimSpace(full)
			if text == "" {
				return stream.Done{}, fmt.Errorf("empty contract draft: %w", apperr.ErrGenerationFormat)
			}
			contract := &model.GeneratedContract{
				UserID:        in.UserID,
				Category:      in.Category,
				Requirements:  requirements,
				GeneratedText: text,
				TemplateNames: names,
				Sources:       sources,
			}
			if err := s.contractRepo.Create(ctx, contract); err != nil {
				return stream.Done{}, err
			}
			return stream.Done{ContractID: contract.ID, Sources: sources}, nil
		},
	}), nil
}

func (s *GeneratorService) Get(ctx context.Context, userID, id uint) (*model.GeneratedContract, error) {
	contract, err := s.contractRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, fmt.Errorf("contract %d: %w", id, apperr.ErrNotFound)
	}
	if contract.UserID != userID {
		return nil, fmt.Errorf("contract %d: %w", id, apperr.ErrForbidden)
	}
	return contract, nil
}

func (s *GeneratorService) List(ctx context.Context, userID uint, limit int) ([]model.GeneratedContract, error) {
	return s.contractRepo.ListByUserID(ctx, userID, history.ClampLimit(limit))
}

func (s *GeneratorService) Delete(ctx context.Context, userID, id uint) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.contractRepo.Delete(ctx, id)
}
