// Package entities contains core business entities.
// These are pure domain objects with no external dependencies.
package entities

// Document represents one unit of source text, e.g. a text file or a
// single page of a PDF. Documents are discarded after chunking; only
// chunks persist in the index.
type Document struct {
	ID      string
	Source  string // human-readable origin, e.g. "guide.pdf#page=3"
	Page    int    // 1-based page number for paged formats, 0 otherwise
	Content string
}

// Chunk is a contiguous window of a normalized document and the unit of
// retrieval. Offsets are rune offsets into the normalized document text.
type Chunk struct {
	ID          string
	DocumentID  string
	Source      string
	Content     string
	Index       int // position within the document, left to right
	StartOffset int
	EndOffset   int
	Embedding   []float32 // populated at index-build time, 1:1 with the chunk
}

// RetrievalResult is one retrieved chunk with its similarity score.
type RetrievalResult struct {
	Chunk Chunk
	Score float64
}

// Turn is a single message in a conversation.
type Turn struct {
	Role    string // RoleUser or RoleAssistant
	Content string
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// AskResult is a successful answer with the chunks that grounded it,
// in retrieval rank order.
type AskResult struct {
	Answer  string
	Sources []RetrievalResult
}
