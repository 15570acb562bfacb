package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"ailawyer/internal/model"
)

type AnalysisRepository struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

func (r *AnalysisRepository) Create(ctx context.Context, a *model.ContractAnalysis) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("create contract analysis failed: %w", err)
	}
	return nil
}

func (r *AnalysisRepository) GetByID(ctx context.Context, id uint) (*model.ContractAnalysis, error) {
	var a model.ContractAnalysis
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get contract analysis failed: %w", err)
	}
	return &a, nil
}

func (r *AnalysisRepository) ListByUserID(ctx context.Context, userID uint, limit int) ([]model.ContractAnalysis, error) {
	var list []model.ContractAnalysis
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Order("id DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list contract analyses failed: %w", err)
	}
	return list, nil
}

func (r *AnalysisRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.ContractAnalysis{}).Error; err != nil {
		return fmt.Errorf("delete contract analysis failed: %w", err)
	}
	return nil
}
