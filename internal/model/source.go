package model

// Similarity buckets shown to users instead of raw scores.
const (
	SimilarityHigh   = "high"
	SimilarityMedium = "medium"
	SimilarityLow    = "low"
)

// Source is a legal citation derived from a retrieved chunk.
// Score stays in memory for ranking and is never serialized.
type Source struct {
	Article    string  `json:"article"`
	Source     string  `json:"source"`
	Chapter    string  `json:"chapter"`
	Title      string  `json:"title"`
	Preview    string  `json:"preview"`
	Similarity string  `json:"similarity"`
	Score      float64 `json:"-"`
}

// Key identifies the cited article within its source document.
func (s Source) Key() string {
	return s.Source + "#" + s.Article
}
