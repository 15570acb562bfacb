package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ailawyer/internal/model"
)

const (
	chunkInsertBatch = 100
	corpusVersionRow = 1
)

type ChunkRepository struct {
	db *gorm.DB
}

func NewChunkRepository(db *gorm.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

// CreateBatch inserts chunks, silently skipping keys that already exist.
// Inserted rows get their ID filled in and move the corpus version.
func (r *ChunkRepository) CreateBatch(ctx context.Context, chunks []model.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "chunk_key"}}, DoNothing: true}).
			CreateInBatches(&chunks, chunkInsertBatch)
		if res.Error != nil {
			return fmt.Errorf("create document chunks failed: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return bumpCorpusVersion(tx)
	})
}

// ListAll returns every chunk in insertion order.
func (r *ChunkRepository) ListAll(ctx context.Context) ([]model.DocumentChunk, error) {
	var chunks []model.DocumentChunk
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&chunks).Error; err != nil {
		return nil, fmt.Errorf("list document chunks failed: %w", err)
	}
	return chunks, nil
}

func (r *ChunkRepository) ListByKeys(ctx context.Context, keys []string) ([]model.DocumentChunk, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	var chunks []model.DocumentChunk
	if err := r.db.WithContext(ctx).Where("chunk_key IN ?", keys).Order("id ASC").Find(&chunks).Error; err != nil {
		return nil, fmt.Errorf("list document chunks by key failed: %w", err)
	}
	return chunks, nil
}

// DeleteBySource removes all chunks of a source and reports how many went.
func (r *ChunkRepository) DeleteBySource(ctx context.Context, sourceName string) (int, error) {
	removed := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("source_name = ?", sourceName).Delete(&model.DocumentChunk{})
		if res.Error != nil {
			return fmt.Errorf("delete document chunks by source failed: %w", res.Error)
		}
		removed = int(res.RowsAffected)
		if removed == 0 {
			return nil
		}
		return bumpCorpusVersion(tx)
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// Version returns the corpus version, 0 before the first write.
func (r *ChunkRepository) Version(ctx context.Context) (int64, error) {
	var row model.CorpusVersion
	err := r.db.WithContext(ctx).Where("id = ?", corpusVersionRow).Limit(1).Find(&row).Error
	if err != nil {
		return 0, fmt.Errorf("read corpus version failed: %w", err)
	}
	return row.Version, nil
}

func bumpCorpusVersion(tx *gorm.DB) error {
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.CorpusVersion{ID: corpusVersionRow}).Error; err != nil {
		return fmt.Errorf("init corpus version failed: %w", err)
	}
	err := tx.Model(&model.CorpusVersion{}).Where("id = ?", corpusVersionRow).
		UpdateColumn("version", gorm.Expr("version + ?", 1)).Error
	if err != nil {
		return fmt.Errorf("bump corpus version failed: %w", err)
	}
	return nil
}
