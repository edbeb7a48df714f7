package usecases

import (
	"fmt"
	"strings"

	"github.com/hctpa/guidebot/internal/domain/entities"
)

// answerTemplate forces answers into well-formed Indonesian regardless
// of the question's language.
const answerTemplate = `Gunakan informasi konteks berikut untuk menjawab pertanyaan pengguna dalam bahasa Indonesia yang baik dan terstruktur.
Selalu berikan jawaban terbaik yang dapat kamu berikan dalam bahasa indonesia.

Konteks: %s
Riwayat Chat: %s
Pertanyaan: %s

Jawaban:
`

const contextDelimiter = "\n\n"

// PromptBuilder renders the fixed answer template. maxChars bounds the
// assembled prompt; exceeding it is an error, never a silent clip.
type PromptBuilder struct {
	maxChars int
}

// NewPromptBuilder creates a builder. maxChars <= 0 disables the bound.
func NewPromptBuilder(maxChars int) *PromptBuilder {
	return &PromptBuilder{maxChars: maxChars}
}

// Build assembles the prompt from retrieved context (in rank order), the
// conversation history and the new question.
func (b *PromptBuilder) Build(contextChunks []entities.RetrievalResult, history []entities.Turn, question string) (string, error) {
	parts := make([]string, len(contextChunks))
	for i, r := range contextChunks {
		parts[i] = r.Chunk.Content
	}

	var hist strings.Builder
	for i, t := range history {
		if i > 0 {
			hist.WriteString("\n")
		}
		hist.WriteString(t.Role)
		hist.WriteString(": ")
		hist.WriteString(t.Content)
	}

	prompt := fmt.Sprintf(answerTemplate, strings.Join(parts, contextDelimiter), hist.String(), question)
	if b.maxChars > 0 && len([]rune(prompt)) > b.maxChars {
		return "", fmt.Errorf("%w: %d chars, budget %d", entities.ErrPromptTooLarge, len([]rune(prompt)), b.maxChars)
	}
	return prompt, nil
}
