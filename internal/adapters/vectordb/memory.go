// Package vectordb provides the vector index adapters.
package vectordb

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/hctpa/guidebot/internal/domain/entities"
	"github.com/hctpa/guidebot/internal/domain/ports"
)

const defaultTopK = 3

// MemoryIndex is a brute-force cosine-similarity index. It is immutable
// after BuildIndex, so concurrent reads need no locking.
type MemoryIndex struct {
	chunks []entities.Chunk
	dim    int
}

// BuildIndex constructs an index from fully-embedded chunks. All
// embeddings must share one dimension; an empty chunk set is
// ErrEmptyCorpus, never a silent empty index.
func BuildIndex(chunks []entities.Chunk) (ports.VectorIndex, error) {
	if len(chunks) == 0 {
		return nil, entities.ErrEmptyCorpus
	}
	dim := len(chunks[0].Embedding)
	if dim == 0 {
		return nil, fmt.Errorf("chunk %s has no embedding", chunks[0].ID)
	}
	owned := make([]entities.Chunk, len(chunks))
	copy(owned, chunks)
	for _, c := range owned {
		if len(c.Embedding) != dim {
			return nil, &entities.ConfigError{
				Reason: fmt.Sprintf("embedding dimension mismatch: chunk %s has %d, index has %d", c.ID, len(c.Embedding), dim),
			}
		}
	}
	return &MemoryIndex{chunks: owned, dim: dim}, nil
}

// Retrieve returns the min(k, Len()) nearest chunks by cosine
// similarity, sorted by descending score. The stable sort keeps ties in
// original indexing order.
func (ix *MemoryIndex) Retrieve(ctx context.Context, query []float32, k int) ([]entities.RetrievalResult, error) {
	if len(query) != ix.dim {
		return nil, &entities.ConfigError{
			Reason: fmt.Sprintf("query dimension %d does not match index dimension %d", len(query), ix.dim),
		}
	}
	if k <= 0 {
		k = defaultTopK
	}

	results := make([]entities.RetrievalResult, len(ix.chunks))
	for i, c := range ix.chunks {
		results[i] = entities.RetrievalResult{
			Chunk: c,
			Score: cosineSimilarity(query, c.Embedding),
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Len returns the number of indexed chunks.
func (ix *MemoryIndex) Len() int { return len(ix.chunks) }

// Dimension returns the embedding dimension.
func (ix *MemoryIndex) Dimension() int { return ix.dim }

// cosineSimilarity calculates cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
