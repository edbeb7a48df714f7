package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hctpa/guidebot/internal/domain/entities"
)

// HuggingFaceEmbedder implements ports.Embedder against the Hugging
// Face Inference API feature-extraction pipeline. Suits sentence
// transformers such as LazarusNLP/all-indo-e5-small-v4.
type HuggingFaceEmbedder struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewHuggingFaceEmbedder creates a Hugging Face Inference API adapter.
func NewHuggingFaceEmbedder(baseURL, apiKey, model string) *HuggingFaceEmbedder {
	if baseURL == "" {
		baseURL = "https://api-inference.huggingface.co"
	}
	if model == "" {
		model = "LazarusNLP/all-indo-e5-small-v4"
	}
	return &HuggingFaceEmbedder{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type hfRequest struct {
	Inputs []string `json:"inputs"`
}

// Embed generates an embedding for a single text.
func (e *HuggingFaceEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// EmbedBatch generates embeddings for multiple texts in one call.
func (e *HuggingFaceEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(hfRequest{Inputs: texts})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/pipeline/feature-extraction/%s", e.baseURL, e.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &entities.ServiceError{Op: "huggingface embed", Err: err}
	}
	defer resp.Body.Close()

	if err := classifyStatus("huggingface embed", resp.StatusCode); err != nil {
		return nil, err
	}

	var vectors [][]float32
	if err := json.NewDecoder(resp.Body).Decode(&vectors); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, &entities.PermanentError{
			Op:  "huggingface embed",
			Err: fmt.Errorf("got %d vectors for %d inputs", len(vectors), len(texts)),
		}
	}
	return vectors, nil
}

// Model returns the embedding model name.
func (e *HuggingFaceEmbedder) Model() string { return e.model }
