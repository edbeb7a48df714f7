package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hctpa/guidebot/internal/domain/entities"
	"github.com/hctpa/guidebot/internal/domain/ports"
)

// AnswerPipeline orchestrates one question: normalize, retrieve top-k
// context, assemble the prompt, invoke the model and record the turn.
type AnswerPipeline struct {
	embedder   ports.Embedder
	manager    *IndexManager
	llm        ports.LLM
	prompts    *PromptBuilder
	topK       int
	genTimeout time.Duration
	log        *zap.Logger
}

// NewAnswerPipeline creates a pipeline. topK <= 0 defaults to 3; a
// non-positive genTimeout disables the deadline on model calls.
func NewAnswerPipeline(
	embedder ports.Embedder,
	manager *IndexManager,
	llm ports.LLM,
	prompts *PromptBuilder,
	topK int,
	genTimeout time.Duration,
	log *zap.Logger,
) *AnswerPipeline {
	if topK <= 0 {
		topK = 3
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AnswerPipeline{
		embedder:   embedder,
		manager:    manager,
		llm:        llm,
		prompts:    prompts,
		topK:       topK,
		genTimeout: genTimeout,
		log:        log,
	}
}

// Ask answers one question in the given session.
//
// The user turn is appended before the model is invoked and stays in
// history even when a later stage fails, preserving user intent in the
// transcript; the assistant turn is appended only on success. The
// prompt sees the history as it was before this turn.
func (p *AnswerPipeline) Ask(ctx context.Context, session *SessionContext, question string) (*entities.AskResult, error) {
	normalized := Normalize(question)
	if normalized == "" {
		return nil, entities.ErrEmptyQuestion
	}

	history := session.Conversation.History()
	session.Conversation.Append(entities.Turn{Role: entities.RoleUser, Content: question})

	// Readiness barrier: a failed or missing index fails fast here.
	idx, err := p.manager.Index(ctx)
	if err != nil {
		return nil, &entities.PipelineError{Stage: entities.StageRetrieving, Err: err}
	}

	vector, err := p.embedder.Embed(ctx, normalized)
	if err != nil {
		return nil, &entities.PipelineError{Stage: entities.StageEmbedding, Err: err}
	}

	results, err := idx.Retrieve(ctx, vector, p.topK)
	if err != nil {
		return nil, &entities.PipelineError{Stage: entities.StageRetrieving, Err: err}
	}

	// An empty retrieval is not an error: the model is invoked with an
	// empty context slot.
	prompt, err := p.prompts.Build(results, history, question)
	if err != nil {
		return nil, &entities.PipelineError{Stage: entities.StagePrompting, Err: err}
	}

	genCtx := ctx
	if p.genTimeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, p.genTimeout)
		defer cancel()
	}
	answer, err := p.llm.Generate(genCtx, prompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %v", entities.ErrTimeout, err)
		}
		return nil, &entities.PipelineError{Stage: entities.StageGenerating, Err: err}
	}

	session.Conversation.Append(entities.Turn{Role: entities.RoleAssistant, Content: answer})
	p.log.Debug("question answered",
		zap.String("session", session.ID),
		zap.Int("sources", len(results)))
	return &entities.AskResult{Answer: answer, Sources: results}, nil
}
