// Package ports defines interfaces for external collaborators.
// Usecases depend on these abstractions; adapters implement them.
package ports

import (
	"context"

	"github.com/hctpa/guidebot/internal/domain/entities"
)

// Embedder maps text to fixed-dimension dense vectors. The dimension is
// fixed per provider instance and must match across all vectors in one
// index.
type Embedder interface {
	// Embed generates a vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates vectors for multiple texts. Implementations
	// must return one vector per input or an error; a missing vector
	// would break the 1:1 chunk-vector invariant.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Model identifies the embedding model, recorded in snapshots to
	// detect incompatible re-use.
	Model() string
}

// LLM generates an answer from a single composed prompt.
type LLM interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// VectorIndex is a read-only nearest-neighbour index over chunk
// embeddings. Implementations are immutable after construction and safe
// for concurrent reads.
type VectorIndex interface {
	// Retrieve returns the min(k, Len()) most similar chunks, sorted by
	// descending score. Score ties keep original indexing order.
	Retrieve(ctx context.Context, query []float32, k int) ([]entities.RetrievalResult, error)

	Len() int
	Dimension() int
}

// DocumentSource discovers and loads documents under a root directory.
type DocumentSource interface {
	ListDocuments(ctx context.Context, root string) ([]entities.Document, error)
}

// PDFParser extracts per-page text from PDF bytes.
type PDFParser interface {
	ParsePages(ctx context.Context, data []byte, filename string) ([]string, error)
}

// IndexSnapshot persists the built chunk set so a warm start can skip
// re-embedding. Load fails when the recorded model does not match.
type IndexSnapshot interface {
	Save(ctx context.Context, model string, chunks []entities.Chunk) error
	Load(ctx context.Context, model string) ([]entities.Chunk, error)
}

// FileEvent signals a change to a watched document file.
type FileEvent struct {
	Path string
}

// FileWatcher monitors the document directory for changes.
type FileWatcher interface {
	Watch(ctx context.Context, dir string) (<-chan FileEvent, error)
	Stop() error
}
