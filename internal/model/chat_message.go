package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is append-only; it is never edited after the turn is persisted.
type ChatMessage struct {
	ID        uint                         `gorm:"primaryKey" json:"id"`
	SessionID uint                         `gorm:"not null;index" json:"session_id"`
	Role      string                       `gorm:"size:16;not null" json:"role"`
	Content   string                       `gorm:"type:text;not null" json:"content"`
	Sources   datatypes.JSONSlice[Source] `json:"sources,omitempty"`
	CreatedAt time.Time                    `gorm:"index" json:"created_at"`
}
