package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	DocTypeRussianCode = "russian_code"
	DocTypeUzbekCode   = "uzbek_code"
	DocTypeDecree      = "decree"
	DocTypeOther       = "other"
)

// DocumentChunk is one indexed passage of a legal source. Chunks are
// immutable; they disappear only when their whole source is removed.
// ID order is insertion order and breaks similarity ties.
type DocumentChunk struct {
	ID         uint                          `gorm:"primaryKey" json:"id"`
	ChunkKey   string                        `gorm:"size:36;not null;uniqueIndex" json:"chunk_key"`
	SourceName string                        `gorm:"size:255;not null;index" json:"source_name"`
	DocType    string                        `gorm:"size:32;not null" json:"doc_type"`
	Chapter    string                        `gorm:"size:255" json:"chapter"`
	Article    string                        `gorm:"size:32" json:"article"`
	Title      string                        `gorm:"size:255" json:"title"`
	Text       string                        `gorm:"type:text;not null" json:"text"`
	Embedding  datatypes.JSONSlice[float32] `json:"-"`
	CreatedAt  time.Time                     `json:"created_at"`
}
