package model

// IndexJob is the queue message asking a worker to index an uploaded
// document. Text is the already extracted plain text.
type IndexJob struct {
	SourceName string `json:"source_name"`
	Text       string `json:"text"`
}
