package model

import "time"

const (
	DocumentPending = "pending"
	DocumentIndexed = "indexed"
	DocumentFailed  = "failed"
)

// LegalDocument tracks one uploaded source through asynchronous indexing.
type LegalDocument struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SourceName string    `gorm:"size:255;not null;uniqueIndex" json:"source_name"`
	DocType    string    `gorm:"size:32;not null" json:"doc_type"`
	Status     string    `gorm:"size:16;not null;index" json:"status"`
	ChunkCount int       `gorm:"not null;default:0" json:"chunk_count"`
	Error      string    `gorm:"type:text" json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
