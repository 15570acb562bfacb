package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"ailawyer/internal/apperr"
	"ailawyer/internal/model"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Turn is one completed exchange. A zero SessionID starts a new session.
type Turn struct {
	SessionID uint
	UserID    uint
	Mode      string
	Title     string
	User      model.ChatMessage
	Assistant model.ChatMessage
}

func (r *SessionRepository) ListByUserID(ctx context.Context, userID uint) ([]model.ChatSession, error) {
	var sessions []model.ChatSession
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("updated_at DESC").Order("id DESC").Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list sessions failed: %w", err)
	}
	return sessions, nil
}

func (r *SessionRepository) GetByID(ctx context.Context, sessionID uint) (*model.ChatSession, error) {
	var session model.ChatSession
	if err := r.db.WithContext(ctx).Where("id = ?", sessionID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session failed: %w", err)
	}
	return &session, nil
}

// Delete removes the session together with all of its messages.
func (r *SessionRepository) Delete(ctx context.Context, sessionID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sessionID).Delete(&model.ChatMessage{}).Error; err != nil {
			return fmt.Errorf("delete session messages failed: %w", err)
		}
		if err := tx.Where("id = ?", sessionID).Delete(&model.ChatSession{}).Error; err != nil {
			return fmt.Errorf("delete session failed: %w", err)
		}
		return nil
	})
}

// AppendTurn stores both messages of a turn and bumps message_count by two
// in a single transaction, creating the session first when needed.
func (r *SessionRepository) AppendTurn(ctx context.Context, turn Turn) (*model.ChatSession, error) {
	var session model.ChatSession
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		if turn.SessionID == 0 {
			session = model.ChatSession{
				UserID:      turn.UserID,
				SessionType: turn.Mode,
				Title:       turn.Title,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := tx.Create(&session).Error; err != nil {
				return fmt.Errorf("create session failed: %w", err)
			}
		} else if err := tx.Where("id = ?", turn.SessionID).First(&session).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("session %d: %w", turn.SessionID, apperr.ErrNotFound)
			}
			return fmt.Errorf("get session failed: %w", err)
		}

		userMsg := turn.User
		userMsg.SessionID = session.ID
		userMsg.Role = model.RoleUser
		userMsg.CreatedAt = now
		assistantMsg := turn.Assistant
		assistantMsg.SessionID = session.ID
		assistantMsg.Role = model.RoleAssistant
		assistantMsg.CreatedAt = now.Add(time.Millisecond)

		if err := tx.Create(&userMsg).Error; err != nil {
			return fmt.Errorf("create user message failed: %w", err)
		}
		if err := tx.Create(&assistantMsg).Error; err != nil {
			return fmt.Errorf("create assistant message failed: %w", err)
		}

		if err := tx.Model(&model.ChatSession{}).Where("id = ?", session.ID).Updates(map[string]interface{}{
			"message_count": gorm.Expr("message_count + ?", 2),
			"updated_at":    assistantMsg.CreatedAt,
		}).Error; err != nil {
			return fmt.Errorf("update session counters failed: %w", err)
		}
		if err := tx.Where("id = ?", session.ID).First(&session).Error; err != nil {
			return fmt.Errorf("reload session failed: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}
