package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"ailawyer/internal/model"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *model.LegalDocument) error {
	if err := r.db.WithContext(ctx).Create(doc).Error; err != nil {
		return fmt.Errorf("create legal document failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetBySource(ctx context.Context, sourceName string) (*model.LegalDocument, error) {
	var doc model.LegalDocument
	if err := r.db.WithContext(ctx).Where("source_name = ?", sourceName).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get legal document failed: %w", err)
	}
	return &doc, nil
}

func (r *DocumentRepository) List(ctx context.Context) ([]model.LegalDocument, error) {
	var list []model.LegalDocument
	if err := r.db.WithContext(ctx).Order("source_name ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list legal documents failed: %w", err)
	}
	return list, nil
}

func (r *DocumentRepository) MarkIndexed(ctx context.Context, sourceName string, chunkCount int) error {
	err := r.db.WithContext(ctx).Model(&model.LegalDocument{}).Where("source_name = ?", sourceName).Updates(map[string]interface{}{
		"status":      model.DocumentIndexed,
		"chunk_count": chunkCount,
		"error":       "",
	}).Error
	if err != nil {
		return fmt.Errorf("mark legal document indexed failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) MarkFailed(ctx context.Context, sourceName string, reason string) error {
	err := r.db.WithContext(ctx).Model(&model.LegalDocument{}).Where("source_name = ?", sourceName).Updates(map[string]interface{}{
		"status": model.DocumentFailed,
		"error":  reason,
	}).Error
	if err != nil {
		return fmt.Errorf("mark legal document failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) DeleteBySource(ctx context.Context, sourceName string) error {
	if err := r.db.WithContext(ctx).Where("source_name = ?", sourceName).Delete(&model.LegalDocument{}).Error; err != nil {
		return fmt.Errorf("delete legal document failed: %w", err)
	}
	return nil
}
