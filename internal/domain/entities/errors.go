package entities

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions the pipeline must detect and surface.
var (
	// ErrEmptyCorpus means no documents were found or indexed.
	ErrEmptyCorpus = errors.New("no documents indexed")

	// ErrEmptyQuestion means the question is empty after normalization.
	ErrEmptyQuestion = errors.New("question is empty")

	// ErrPromptTooLarge means context + history + question exceed the
	// model's input budget. The prompt is never silently truncated.
	ErrPromptTooLarge = errors.New("prompt exceeds model input budget")

	// ErrTimeout means the language model did not answer within the
	// configured deadline.
	ErrTimeout = errors.New("language model call timed out")
)

// ConfigError reports invalid configuration, e.g. a bad chunk size or a
// missing document directory.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "configuration error: " + e.Reason
}

// ServiceError is a transient collaborator failure (network, timeout,
// 5xx). Safe to retry; the core itself never retries.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: transient service failure: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// PermanentError is a collaborator rejecting malformed input. Retrying
// will not help.
type PermanentError struct {
	Op  string
	Err error
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("%s: permanent failure: %v", e.Op, e.Err)
}

func (e *PermanentError) Unwrap() error { return e.Err }

// Stage identifies where in the answer pipeline a failure occurred.
type Stage string

const (
	StageEmbedding  Stage = "embedding"
	StageRetrieving Stage = "retrieving"
	StagePrompting  Stage = "prompting"
	StageGenerating Stage = "generating"
)

// PipelineError wraps a failure with the stage that produced it.
type PipelineError struct {
	Stage Stage
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }
