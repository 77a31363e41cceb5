package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultProviderTimeout = 60 * time.Second
	// maxErrorBody caps how much of a failed response is kept for the log.
	maxErrorBody = 512
)

// endpoint is the plumbing shared by the hosted providers: one HTTP client,
// the resolved model and the fallback chain.
type endpoint struct {
	provider   string
	model      string
	baseURL    string
	client     *http.Client
	fallback   Completer
	onFallback func(reason string, err error)
}

func newEndpoint(provider, model, baseURL, defaultBase string, client *http.Client, fallback Completer, onFallback func(string, error)) endpoint {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBase
	}
	if client == nil {
		client = &http.Client{Timeout: defaultProviderTimeout}
	}
	return endpoint{
		provider:   provider,
		model:      model,
		baseURL:    baseURL,
		client:     client,
		fallback:   fallback,
		onFallback: onFallback,
	}
}

// post sends body as JSON to url and decodes a 2xx answer into out. Failures
// come back as *ProviderError with a stable reason.
func (e endpoint) post(ctx context.Context, url string, header http.Header, body, out any) *ProviderError {
	payload, err := json.Marshal(body)
	if err != nil {
		return e.failure("encode_request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return e.failure("build_request", err)
	}
	for k, vs := range header {
		req.Header[k] = vs
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return e.failure("timeout", err)
		}
		return e.failure("http_request", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return e.failure(fmt.Sprintf("http_%d", resp.StatusCode),
			fmt.Errorf("%s status %d: %s", e.provider, resp.StatusCode, strings.TrimSpace(string(snippet))))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return e.failure("decode_response", err)
	}
	return nil
}

func (e endpoint) failure(reason string, err error) *ProviderError {
	return &ProviderError{Provider: e.provider, Reason: reason, Err: err}
}

// respond wraps text into a Response, or fails over when it is blank.
func (e endpoint) respond(ctx context.Context, req Request, text string) (*Response, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return e.failover(ctx, req, e.failure("empty_response", errors.New("no text in response")))
	}
	return &Response{Text: text, Provider: e.provider, Model: e.model}, nil
}

func (e endpoint) failover(ctx context.Context, req Request, failure *ProviderError) (*Response, error) {
	return chain(ctx, e.fallback, e.onFallback, req, failure)
}
