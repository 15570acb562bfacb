package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"ailawyer/internal/apperr"
	"ailawyer/internal/history"
	"ailawyer/internal/repository"
)

// HistoryService builds the unified timeline and deletes its items.
type HistoryService struct {
	sessionRepo  *repository.SessionRepository
	analysisRepo *repository.AnalysisRepository
	contractRepo *repository.GeneratedContractRepository
	chat         *ChatService
	validator    *ValidatorService
	generator    *GeneratorService
}

func NewHistoryService(
	sessionRepo *repository.SessionRepository,
	analysisRepo *repository.AnalysisRepository,
	contractRepo *repository.GeneratedContractRepository,
	chat *ChatService,
	validator *ValidatorService,
	generator *GeneratorService,
) *HistoryService {
	return &HistoryService{
		sessionRepo:  sessionRepo,
		analysisRepo: analysisRepo,
		contractRepo: contractRepo,
		chat:         chat,
		validator:    validator,
		generator:    generator,
	}
}

// Unified returns up to limit entries of the user's activity, newest first.
// An empty kind includes every kind.
func (s *HistoryService) Unified(ctx context.Context, userID uint, kind history.Kind, limit int) ([]history.Entry, error) {
	if userID == 0 {
		return nil, apperr.ErrInvalidInput
	}
	limit = history.ClampLimit(limit)

	var chats, validations, generations []history.Item
	g, gctx := errgroup.WithContext(ctx)
	if kind == "" || kind == history.KindChat {
		g.Go(func() error {
			sessions, err := s.sessionRepo.ListByUserID(gctx, userID)
			if err != nil {
				return err
			}
			for _, session := range sessions {
				chats = append(chats, history.ChatItem{Session: session})
			}
			return nil
		})
	}
	if kind == "" || kind == history.KindValidation {
		g.Go(func() error {
			list, err := s.analysisRepo.ListByUserID(gctx, userID, limit)
			if err != nil {
				return err
			}
			for _, a := range list {
				validations = append(validations, history.ValidationItem{Analysis: a})
			}
			return nil
		})
	}
	if kind == "" || kind == history.KindGeneration {
		g.Go(func() error {
			list, err := s.contractRepo.ListByUserID(gctx, userID, limit)
			if err != nil {
				return err
			}
			for _, c := range list {
				generations = append(generations, history.GenerationItem{Contract: c})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := history.Merge(limit, chats, validations, generations)
	out := make([]history.Entry, len(merged))
	for i, it := range merged {
		out[i] = history.View(it)
	}
	return out, nil
}

func (s *HistoryService) DeleteItem(ctx context.Context, userID uint, kind history.Kind, id uint) error {
	switch kind {
	case history.KindChat:
		return s.chat.DeleteSession(ctx, userID, id)
	case history.KindValidation:
		return s.validator.Delete(ctx, userID, id)
	case history.KindGeneration:
		return s.generator.Delete(ctx, userID, id)
	}
	return fmt.Errorf("history type %q cannot be deleted: %w", kind, apperr.ErrInvalidInput)
}
