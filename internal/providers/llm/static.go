package llm

import (
	"context"
	"errors"
)

// StaticCompleter answers without a model. Judgments come back as failing
// verdicts and generation is refused, so offline runs never invent content.
type StaticCompleter struct{}

func NewStaticCompleter() *StaticCompleter {
	return &StaticCompleter{}
}

func (s *StaticCompleter) Name() string { return staticProviderName }

func (s *StaticCompleter) Complete(ctx context.Context, req Request) (*Response, error) {
	switch req.Operation {
	case OperationEvaluateQuality:
		return &Response{
			Text:     `{"rating": 0, "remarks": "No language model configured"}`,
			Provider: staticProviderName,
		}, nil
	case OperationValidate:
		return &Response{
			Text:     `{"passed": false, "issues": ["No language model configured"], "quality": {"rating": 0, "remarks": "No language model configured"}}`,
			Provider: staticProviderName,
		}, nil
	default:
		return nil, &ProviderError{
			Provider: staticProviderName,
			Reason:   "unsupported_operation",
			Err:      errors.New("content generation requires a language model provider"),
		}
	}
}

var _ Completer = (*StaticCompleter)(nil)
