package model

// CorpusVersion is a single-row counter bumped with every chunk insert or
// delete. Replicas compare it to decide when to reload their index.
type CorpusVersion struct {
	ID      uint  `gorm:"primaryKey;autoIncrement:false"`
	Version int64 `gorm:"not null;default:0"`
}
