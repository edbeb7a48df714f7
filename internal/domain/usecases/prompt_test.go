package usecases

import (
	"errors"
	"strings"
	"testing"

	"github.com/hctpa/guidebot/internal/domain/entities"
)

func retrieved(contents ...string) []entities.RetrievalResult {
	out := make([]entities.RetrievalResult, len(contents))
	for i, c := range contents {
		out[i] = entities.RetrievalResult{
			Chunk: entities.Chunk{ID: "c" + string(rune('0'+i)), Content: c},
			Score: 1 - float64(i)*0.1,
		}
	}
	return out
}

func TestPromptBuilder_Slots(t *testing.T) {
	b := NewPromptBuilder(0)
	history := []entities.Turn{
		{Role: entities.RoleUser, Content: "halo"},
		{Role: entities.RoleAssistant, Content: "halo juga"},
	}
	prompt, err := b.Build(retrieved("konteks pertama", "konteks kedua"), history, "apa kabar?")
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	for _, want := range []string{
		"Konteks: konteks pertama\n\nkonteks kedua",
		"Riwayat Chat: user: halo\nassistant: halo juga",
		"Pertanyaan: apa kabar?",
		"Jawaban:",
		"bahasa Indonesia",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestPromptBuilder_ContextRankOrder(t *testing.T) {
	b := NewPromptBuilder(0)
	prompt, err := b.Build(retrieved("paling relevan", "kurang relevan"), nil, "tanya")
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	first := strings.Index(prompt, "paling relevan")
	second := strings.Index(prompt, "kurang relevan")
	if first < 0 || second < 0 || first > second {
		t.Errorf("context chunks out of rank order (%d, %d)", first, second)
	}
}

func TestPromptBuilder_EmptyContextAndHistory(t *testing.T) {
	b := NewPromptBuilder(0)
	prompt, err := b.Build(nil, nil, "tanya")
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if !strings.Contains(prompt, "Konteks: \n") {
		t.Errorf("empty context slot missing:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Riwayat Chat: \n") {
		t.Errorf("empty history slot missing:\n%s", prompt)
	}
}

func TestPromptBuilder_TooLarge(t *testing.T) {
	b := NewPromptBuilder(100)
	_, err := b.Build(retrieved(strings.Repeat("x", 500)), nil, "tanya")
	if !errors.Is(err, entities.ErrPromptTooLarge) {
		t.Errorf("want ErrPromptTooLarge, got %v", err)
	}
}

func TestPromptBuilder_BoundDisabled(t *testing.T) {
	b := NewPromptBuilder(0)
	if _, err := b.Build(retrieved(strings.Repeat("x", 100000)), nil, "tanya"); err != nil {
		t.Errorf("bound disabled but got %v", err)
	}
}
