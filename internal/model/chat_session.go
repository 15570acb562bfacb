package model

import "time"

type ChatSession struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	SessionType  string    `gorm:"size:32;not null;default:risk-manager" json:"session_type"`
	Title        string    `gorm:"size:128;not null" json:"title"`
	MessageCount int       `gorm:"not null;default:0" json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `gorm:"index" json:"updated_at"`
}
