package llm

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// Settings selects and configures the primary provider and an optional
// fallback provider.
type Settings struct {
	Provider         string
	FallbackProvider string

	OpenAIAPIKey       string
	OpenAIModel        string
	OpenAIBaseURL      string
	OpenAIOrganization string

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	HTTPClient *http.Client
	Logger     *zerolog.Logger
}

// NewCompleter builds the configured provider chain. A provider without an
// API key degrades to the static completer with a warning.
func NewCompleter(s Settings) (Completer, error) {
	logger := zerolog.Nop()
	if s.Logger != nil {
		logger = *s.Logger
	}
	var fallback Completer
	if name := normalizeProvider(s.FallbackProvider); name != "" && name != normalizeProvider(s.Provider) {
		fb, err := buildProvider(name, s, nil, logger)
		if err != nil {
			logger.Warn().Err(err).Str("provider", name).Msg("llm: fallback provider unavailable")
		} else {
			fallback = fb
		}
	}
	primary, err := buildProvider(normalizeProvider(s.Provider), s, fallback, logger)
	if err != nil {
		logger.Warn().Err(err).Str("provider", s.Provider).Msg("llm: provider unavailable, using static completer")
		if fallback != nil {
			return fallback, nil
		}
		return NewStaticCompleter(), nil
	}
	return primary, nil
}

func normalizeProvider(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func buildProvider(name string, s Settings, fallback Completer, logger zerolog.Logger) (Completer, error) {
	onFallback := func(reason string, err error) {
		logger.Warn().Err(err).Str("provider", name).Str("reason", reason).Msg("llm: provider call failed")
	}
	switch name {
	case openAIProviderName:
		return NewOpenAICompleter(OpenAIOptions{
			APIKey:       s.OpenAIAPIKey,
			Model:        s.OpenAIModel,
			BaseURL:      s.OpenAIBaseURL,
			Organization: s.OpenAIOrganization,
			HTTPClient:   s.HTTPClient,
			Fallback:     fallback,
			OnFallback:   onFallback,
			OnModelSubstituted: func(requested, resolved string) {
				logger.Warn().Str("provider", name).Str("requested", requested).Str("resolved", resolved).Msg("llm: model substituted")
			},
		})
	case geminiProviderName:
		return NewGeminiCompleter(GeminiOptions{
			APIKey:     s.GeminiAPIKey,
			Model:      s.GeminiModel,
			BaseURL:    s.GeminiBaseURL,
			HTTPClient: s.HTTPClient,
			Fallback:   fallback,
			OnFallback: onFallback,
		})
	case staticProviderName, "":
		return NewStaticCompleter(), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}
