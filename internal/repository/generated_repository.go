package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"ailawyer/internal/model"
)

type GeneratedContractRepository struct {
	db *gorm.DB
}

func NewGeneratedContractRepository(db *gorm.DB) *GeneratedContractRepository {
	return &GeneratedContractRepository{db: db}
}

func (r *GeneratedContractRepository) Create(ctx context.Context, c *model.GeneratedContract) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("create generated contract failed: %w", err)
	}
	return nil
}

func (r *GeneratedContractRepository) GetByID(ctx context.Context, id uint) (*model.GeneratedContract, error) {
	var c model.GeneratedContract
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get generated contract failed: %w", err)
	}
	return &c, nil
}

func (r *GeneratedContractRepository) ListByUserID(ctx context.Context, userID uint, limit int) ([]model.GeneratedContract, error) {
	var list []model.GeneratedContract
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Order("id DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list generated contracts failed: %w", err)
	}
	return list, nil
}

func (r *GeneratedContractRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.GeneratedContract{}).Error; err != nil {
		return fmt.Errorf("delete generated contract failed: %w", err)
	}
	return nil
}
