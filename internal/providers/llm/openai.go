package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o"
)

type OpenAIOptions struct {
	APIKey       string
	Model        string
	BaseURL      string
	Organization string
	HTTPClient   *http.Client
	Fallback     Completer
	OnFallback   func(reason string, err error)
	// OnModelSubstituted is told when the requested model was replaced.
	OnModelSubstituted func(requested, resolved string)
}

// OpenAICompleter calls the chat completions endpoint.
type OpenAICompleter struct {
	endpoint
	header http.Header
}

// openAIModels maps accepted spellings onto the chat models the prompts are
// tuned for. Keys are already folded by foldModelName.
var openAIModels = map[string]string{
	"gpt-4o":       "gpt-4o",
	"gpt4o":        "gpt-4o",
	"gpt-4":        "gpt-4o",
	"gpt4":         "gpt-4o",
	"gpt-4-turbo":  "gpt-4o",
	"gpt-4o-mini":  "gpt-4o-mini",
	"gpt4o-mini":   "gpt-4o-mini",
	"gpt-4.1":      "gpt-4.1",
	"gpt4.1":       "gpt-4.1",
	"gpt-4.1-mini": "gpt-4.1-mini",
}

type openAIChatRequest struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	ResponseFormat *openAIFormat   `json:"response_format,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIFormat struct {
	Type string `json:"type"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
}

func NewOpenAICompleter(opts OpenAIOptions) (*OpenAICompleter, error) {
	key := strings.TrimSpace(opts.APIKey)
	if key == "" {
		return nil, errors.New("openai api key is required")
	}
	model, exact := resolveOpenAIModel(opts.Model)
	if !exact && opts.OnModelSubstituted != nil {
		opts.OnModelSubstituted(strings.TrimSpace(opts.Model), model)
	}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+key)
	if org := strings.TrimSpace(opts.Organization); org != "" {
		header.Set("OpenAI-Organization", org)
	}
	return &OpenAICompleter{
		endpoint: newEndpoint(openAIProviderName, model, opts.BaseURL, defaultOpenAIBaseURL, opts.HTTPClient, opts.Fallback, opts.OnFallback),
		header:   header,
	}, nil
}

func (o *OpenAICompleter) Name() string { return openAIProviderName }

func (o *OpenAICompleter) Complete(ctx context.Context, req Request) (*Response, error) {
	payload := openAIChatRequest{
		Model:       o.model,
		Temperature: req.Temperature,
		Messages:    make([]openAIMessage, 0, 2),
	}
	if strings.TrimSpace(req.System) != "" {
		payload.Messages = append(payload.Messages, openAIMessage{Role: "system", Content: req.System})
	}
	payload.Messages = append(payload.Messages, openAIMessage{Role: "user", Content: req.Prompt})
	if req.JSON {
		payload.ResponseFormat = &openAIFormat{Type: "json_object"}
	}

	var out openAIChatResponse
	if failure := o.post(ctx, o.baseURL+"/chat/completions", o.header, payload, &out); failure != nil {
		return o.failover(ctx, req, failure)
	}
	if len(out.Choices) == 0 {
		return o.failover(ctx, req, o.failure("empty_choices", errors.New("no choices")))
	}
	return o.respond(ctx, req, out.Choices[0].Message.Content)
}

var _ Completer = (*OpenAICompleter)(nil)

// resolveOpenAIModel reports the model to call and whether it is the one
// requested. Blank input silently selects the default.
func resolveOpenAIModel(requested string) (string, bool) {
	folded := foldModelName(requested)
	if folded == "" {
		return defaultOpenAIModel, true
	}
	if model, ok := openAIModels[folded]; ok {
		return model, model == folded
	}
	// dated snapshots such as gpt-4o-mini-2024-07-18
	for i := len(folded) - 1; i > 0; i-- {
		if folded[i] != '-' {
			continue
		}
		if model, ok := openAIModels[folded[:i]]; ok {
			return model, false
		}
	}
	return defaultOpenAIModel, false
}

func foldModelName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '_', ' ':
			return '-'
		}
		return r
	}, strings.ToLower(strings.TrimSpace(name)))
}
