package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel   = "gemini-1.5-flash"
)

type GeminiOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Fallback   Completer
	OnFallback func(reason string, err error)
}

// GeminiCompleter calls generateContent. The key travels in a header, never
// in the query string, so it stays out of proxy logs.
type GeminiCompleter struct {
	endpoint
	header http.Header
}

type geminiRequest struct {
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	Contents          []geminiContent         `json:"contents"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature,omitempty"`
	CandidateCount   int     `json:"candidateCount,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

// text returns the first non-blank part of any candidate.
func (r geminiResponse) text() string {
	for _, cand := range r.Candidates {
		for _, part := range cand.Content.Parts {
			if strings.TrimSpace(part.Text) != "" {
				return part.Text
			}
		}
	}
	return ""
}

func NewGeminiCompleter(opts GeminiOptions) (*GeminiCompleter, error) {
	key := strings.TrimSpace(opts.APIKey)
	if key == "" {
		return nil, errors.New("gemini api key is required")
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultGeminiModel
	}
	header := http.Header{}
	header.Set("x-goog-api-key", key)
	return &GeminiCompleter{
		endpoint: newEndpoint(geminiProviderName, model, opts.BaseURL, defaultGeminiBaseURL, opts.HTTPClient, opts.Fallback, opts.OnFallback),
		header:   header,
	}, nil
}

func (g *GeminiCompleter) Name() string { return geminiProviderName }

func (g *GeminiCompleter) Complete(ctx context.Context, req Request) (*Response, error) {
	cfg := &geminiGenerationConfig{Temperature: req.Temperature, CandidateCount: 1}
	if req.JSON {
		cfg.ResponseMimeType = "application/json"
	}
	payload := geminiRequest{
		Contents:         []geminiContent{{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}}},
		GenerationConfig: cfg,
	}
	if strings.TrimSpace(req.System) != "" {
		payload.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}

	target := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, url.PathEscape(g.model))
	var out geminiResponse
	if failure := g.post(ctx, target, g.header, payload, &out); failure != nil {
		return g.failover(ctx, req, failure)
	}
	if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
		return g.failover(ctx, req, g.failure("blocked", fmt.Errorf("prompt blocked: %s", out.PromptFeedback.BlockReason)))
	}
	return g.respond(ctx, req, out.text())
}

var _ Completer = (*GeminiCompleter)(nil)
