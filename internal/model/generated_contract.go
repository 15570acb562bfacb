package model

import (
	"time"

	"gorm.io/datatypes"
)

type GeneratedContract struct {
	ID            uint                         `gorm:"primaryKey" json:"id"`
	UserID        uint                         `gorm:"not null;index" json:"user_id"`
	Category      string                       `gorm:"size:128;not null" json:"category"`
	Requirements  string                       `gorm:"type:text;not null" json:"requirements"`
	GeneratedText string                       `gorm:"type:longtext;not null" json:"generated_text"`
	TemplateNames datatypes.JSONSlice[string] `json:"template_names"`
	Sources       datatypes.JSONSlice[Source] `json:"sources"`
	CreatedAt     time.Time                    `gorm:"index" json:"created_at"`
}
