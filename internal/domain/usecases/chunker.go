package usecases

import (
	"fmt"
	"strconv"

	"github.com/hctpa/guidebot/internal/domain/entities"
)

// ChunkDocument slides a window of size runes over the document content
// with step size-overlap. Consecutive chunks overlap by exactly overlap
// runes; the final chunk may be shorter. An empty document yields no
// chunks.
func ChunkDocument(doc entities.Document, size, overlap int) ([]entities.Chunk, error) {
	if size <= 0 {
		return nil, &entities.ConfigError{Reason: fmt.Sprintf("chunk size must be positive, got %d", size)}
	}
	if overlap < 0 || overlap >= size {
		return nil, &entities.ConfigError{Reason: fmt.Sprintf("chunk overlap %d must be in [0, size=%d)", overlap, size)}
	}

	runes := []rune(doc.Content)
	step := size - overlap

	var chunks []entities.Chunk
	idx := 0
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, entities.Chunk{
			ID:          doc.ID + ":" + strconv.Itoa(idx),
			DocumentID:  doc.ID,
			Source:      doc.Source,
			Content:     string(runes[start:end]),
			Index:       idx,
			StartOffset: start,
			EndOffset:   end,
		})
		idx++
		if end == len(runes) {
			break
		}
	}
	return chunks, nil
}
