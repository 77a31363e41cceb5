package llm

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"catalogstudio/internal/domain"
	"catalogstudio/internal/observability"
)

const defaultCallTimeout = 45 * time.Second

// Verdict is a model's pass/fail judgment of content.
type Verdict struct {
	Passed  bool
	Issues  []string
	Quality *domain.Quality
}

type modelQuality struct {
	Rating  float64 `json:"rating"`
	Remarks string  `json:"remarks"`
}

func (q modelQuality) toDomain() domain.Quality {
	rating := int(math.Round(q.Rating))
	rating = max(0, min(100, rating))
	return domain.Quality{Rating: rating, Remarks: q.Remarks}
}

type modelVerdict struct {
	Passed  bool          `json:"passed"`
	Issues  []string      `json:"issues"`
	Quality *modelQuality `json:"quality"`
}

type ClientOptions struct {
	Completer Completer
	Timeout   time.Duration
	Metrics   *observability.Metrics
	Logger    *zerolog.Logger
}

// Client bounds each call with a timeout, records metrics and decodes the
// model's JSON answers.
type Client struct {
	completer Completer
	timeout   time.Duration
	metrics   *observability.Metrics
	logger    zerolog.Logger
}

func NewClient(opts ClientOptions) *Client {
	completer := opts.Completer
	if completer == nil {
		completer = NewStaticCompleter()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Client{completer: completer, timeout: timeout, metrics: opts.Metrics, logger: logger}
}

// Provider names the primary completer.
func (c *Client) Provider() string { return c.completer.Name() }

func (c *Client) complete(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	start := time.Now()
	resp, err := c.completer.Complete(ctx, req)
	elapsed := time.Since(start)
	provider := c.completer.Name()
	if resp != nil && resp.Provider != "" {
		provider = resp.Provider
	}
	if err != nil {
		reason := FailureReason(err)
		c.metrics.RecordCapabilityCall(string(req.Operation), provider, reason, elapsed)
		c.logger.Warn().Err(err).
			Str("operation", string(req.Operation)).
			Str("provider", provider).
			Str("reason", reason).
			Dur("elapsed", elapsed).
			Msg("llm: call failed")
		return nil, err
	}
	c.metrics.RecordCapabilityCall(string(req.Operation), provider, "ok", elapsed)
	return resp, nil
}

// Validate asks for a {passed, issues, quality} verdict.
func (c *Client) Validate(ctx context.Context, system, prompt string) (Verdict, error) {
	resp, err := c.complete(ctx, Request{Operation: OperationValidate, System: system, Prompt: prompt, JSON: true})
	if err != nil {
		return Verdict{}, err
	}
	parsed, err := decodeModelJSON[modelVerdict](resp.Text)
	if err != nil {
		return Verdict{}, c.parseFailure(resp, err)
	}
	v := Verdict{Passed: parsed.Passed, Issues: parsed.Issues}
	if v.Issues == nil {
		v.Issues = []string{}
	}
	if parsed.Quality != nil {
		q := parsed.Quality.toDomain()
		v.Quality = &q
	}
	return v, nil
}

// EvaluateQuality asks for a {rating, remarks} object.
func (c *Client) EvaluateQuality(ctx context.Context, system, prompt string) (domain.Quality, error) {
	resp, err := c.complete(ctx, Request{Operation: OperationEvaluateQuality, System: system, Prompt: prompt, JSON: true})
	if err != nil {
		return domain.Quality{}, err
	}
	parsed, err := decodeModelJSON[modelQuality](resp.Text)
	if err != nil {
		return domain.Quality{}, c.parseFailure(resp, err)
	}
	return parsed.toDomain(), nil
}

// Generate returns the trimmed free-text answer.
func (c *Client) Generate(ctx context.Context, system, prompt string, temperature float64) (string, error) {
	resp, err := c.complete(ctx, Request{Operation: OperationGenerate, System: system, Prompt: prompt, Temperature: temperature})
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", &ProviderError{Provider: resp.Provider, Reason: "empty_response", Err: errors.New("empty generation")}
	}
	return text, nil
}

func (c *Client) parseFailure(resp *Response, err error) error {
	c.logger.Warn().Err(err).Str("provider", resp.Provider).Str("reason", "parse_payload").Msg("llm: unparseable answer")
	return &ProviderError{Provider: resp.Provider, Reason: "parse_payload", Err: err}
}
