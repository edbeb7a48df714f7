// Package llm provides language model adapters.
package llm

import (
	"context"
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hctpa/guidebot/internal/domain/entities"
)

const defaultGroqBaseURL = "https://api.groq.com/openai/v1"

// GroqLLM implements ports.LLM against the Groq chat completions API,
// which is OpenAI-compatible.
type GroqLLM struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// NewGroqLLM creates a Groq adapter.
func NewGroqLLM(baseURL, apiKey, model string, temperature float64, maxTokens int) (*GroqLLM, error) {
	if apiKey == "" {
		return nil, &entities.ConfigError{Reason: "groq requires an API key"}
	}
	if baseURL == "" {
		baseURL = defaultGroqBaseURL
	}
	if model == "" {
		model = "llama3-70b-8192"
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &GroqLLM{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		temperature: float32(temperature),
		maxTokens:   maxTokens,
	}, nil
}

// Generate sends the composed prompt as a single user message and
// returns the completion text.
func (g *GroqLLM) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", classifyError("groq generate", err)
	}
	if len(resp.Choices) == 0 {
		return "", &entities.PermanentError{Op: "groq generate", Err: errors.New("no choices returned")}
	}
	return resp.Choices[0].Message.Content, nil
}

// classifyError maps client errors to the domain error kinds: 5xx/429
// are transient, other API errors are permanent, context errors pass
// through for timeout handling upstream.
func classifyError(op string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode >= 500 || apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return &entities.ServiceError{Op: op, Err: err}
		}
		return &entities.PermanentError{Op: op, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	return &entities.ServiceError{Op: op, Err: err}
}
