// Package llm talks to hosted language models. Every provider implements
// Completer; Client layers timeouts, metrics and response parsing on top.
package llm

import (
	"context"
	"errors"
	"fmt"

	"catalogstudio/internal/domain"
)

const (
	staticProviderName = "static"
	geminiProviderName = "gemini"
	openAIProviderName = "openai"
)

// Operation names the purpose of a completion; it labels logs and metrics.
type Operation string

const (
	OperationValidate        Operation = "validate"
	OperationEvaluateQuality Operation = "evaluate_quality"
	OperationGenerate        Operation = "generate"
)

// Request is one system+user prompt exchange.
type Request struct {
	Operation   Operation
	System      string
	Prompt      string
	Temperature float64
	// JSON asks the provider for a raw JSON object when it supports that.
	JSON bool
}

// Response is the raw model answer.
type Response struct {
	Text     string
	Provider string
	Model    string
}

// Completer is implemented by every model provider.
type Completer interface {
	Complete(ctx context.Context, req Request) (*Response, error)
	Name() string
}

// ProviderError describes a failed call. It matches domain.ErrProviderFailure.
type ProviderError struct {
	Provider string
	Reason   string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Provider, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Reason, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func (e *ProviderError) Is(target error) bool {
	return target == domain.ErrProviderFailure
}

// FailureReason extracts the provider reason from err, or "error".
func FailureReason(err error) string {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Reason
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return "error"
}

// chain runs the fallback when the primary failed and one is configured.
func chain(ctx context.Context, fallback Completer, onFallback func(string, error), req Request, failure *ProviderError) (*Response, error) {
	if onFallback != nil {
		onFallback(failure.Reason, failure.Err)
	}
	if fallback == nil {
		return nil, failure
	}
	return fallback.Complete(ctx, req)
}
