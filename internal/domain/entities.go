package domain

import "errors"

var (
	ErrDimensionMismatch   = errors.New("embedding dimension mismatch")
	ErrEmptyID             = errors.New("record id is empty")
	ErrEmptyOwner          = errors.New("record owner is empty")
	ErrProviderUnavailable = errors.New("embedding provider unavailable")
	ErrUnknownFormat       = errors.New("unknown store format")
)

// VectorRecord is one embedded source document.
type VectorRecord struct {
	ID        string    `json:"id"`
	Owner     string    `json:"user_id"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding"`
}

// SearchHit is a ranked record returned by similarity search.
type SearchHit struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata"`
	Score    float64           `json:"score"`
}

// Title returns the title carried in the hit metadata.
func (h SearchHit) Title() string {
	return h.Metadata["title"]
}

type Stats struct {
	TotalRecords int            `json:"total_records"`
	Owners       map[string]int `json:"owners"`
	Dimension    int            `json:"dimension"`
}

// SourceRef identifies a saved source without its text or embedding.
type SourceRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// RAGContext is the prompt material built for one query: Library lists all
// of the owner's sources, Context holds the best matching excerpts.
type RAGContext struct {
	Query   string   `json:"query"`
	Library string   `json:"library"`
	Context string   `json:"context"`
	Titles  []string `json:"titles"`
}
