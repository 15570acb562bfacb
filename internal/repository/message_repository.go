package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"ailawyer/internal/model"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) ListBySessionID(ctx context.Context, sessionID uint) ([]model.ChatMessage, error) {
	var messages []model.ChatMessage
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("created_at ASC").Order("id ASC").Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list messages failed: %w", err)
	}
	return messages, nil
}

// ListRecentBySessionID returns the newest limit messages in chronological order.
func (r *MessageRepository) ListRecentBySessionID(ctx context.Context, sessionID uint, limit int) ([]model.ChatMessage, error) {
	if limit <= 0 {
		return nil, nil
	}
	var messages []model.ChatMessage
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("created_at DESC").Order("id DESC").Limit(limit).Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list recent messages failed: %w", err)
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *MessageRepository) CountBySessionID(ctx context.Context, sessionID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.ChatMessage{}).Where("session_id = ?", sessionID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count messages failed: %w", err)
	}
	return n, nil
}
