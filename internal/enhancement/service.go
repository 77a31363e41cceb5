package enhancement

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"catalogstudio/internal/domain"
	"catalogstudio/internal/prompts"
	"catalogstudio/internal/rules"
)

const (
	generationTemperature = 0.7
	qualityErrorRemarks   = "Error evaluating content quality"
	modalComponent        = "AIEnhanceModal"
)

// Generator is the language model surface enhancement needs.
type Generator interface {
	EvaluateQuality(ctx context.Context, system, prompt string) (domain.Quality, error)
	Generate(ctx context.Context, system, prompt string, temperature float64) (string, error)
}

type ServiceOptions struct {
	Generator    Generator
	Goldstandard domain.GoldstandardRepository
	Claims       domain.ClaimsRepository
	History      domain.HistoryLedger
	Recorder     domain.RequestRecorder
	Templates    *prompts.Templates
	Logger       *zerolog.Logger
	Now          func() time.Time
}

// Service runs single quality evaluations and enhancements and writes their
// audit trail.
type Service struct {
	generator    Generator
	goldstandard domain.GoldstandardRepository
	claims       domain.ClaimsRepository
	history      domain.HistoryLedger
	recorder     domain.RequestRecorder
	composer     *Composer
	logger       zerolog.Logger
	now          func() time.Time
}

func NewService(opts ServiceOptions) *Service {
	s := &Service{
		generator:    opts.Generator,
		goldstandard: opts.Goldstandard,
		claims:       opts.Claims,
		history:      opts.History,
		recorder:     opts.Recorder,
		composer:     NewComposer(opts.Templates),
		logger:       zerolog.Nop(),
		now:          opts.Now,
	}
	if opts.Logger != nil {
		s.logger = *opts.Logger
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Enhancement is a generated value and the prompt that produced it.
type Enhancement struct {
	Value  string `json:"value"`
	Prompt string `json:"prompt"`
}

// EvaluateQuality rates content for field. It never fails: model errors
// collapse to a zero rating.
func (s *Service) EvaluateQuality(ctx context.Context, field domain.FieldConfig, content, lang string, product domain.Product, actor *domain.Actor) domain.Quality {
	start := s.now()
	rule := rules.ResolveExact(field, lang)
	prompt := s.composer.QualityPrompt(rule, content, s.examples(ctx, field.Name, lang))

	quality, err := s.evaluate(ctx, prompt)
	entry := s.logEntry(product, field.Name, lang, domain.RequestQualityEvaluation, actor, start)
	entry.Source.Command = "Evaluate Content Quality"
	entry.Source.Effect = fmt.Sprintf("Assessing quality of %s content before enhancement", field.Name)
	if err != nil {
		s.logger.Warn().Err(err).Str("field", field.Name).Msg("enhancement: quality evaluation failed")
		entry.Error = err.Error()
		s.record(ctx, entry, actor)
		return domain.Quality{Rating: 0, Remarks: qualityErrorRemarks}
	}
	rating := quality.Rating
	entry.Success = true
	entry.Results = &domain.RequestResults{QualityBefore: &rating}
	s.record(ctx, entry, actor)
	return quality
}

func (s *Service) evaluate(ctx context.Context, prompt string) (domain.Quality, error) {
	if s.generator == nil {
		return domain.Quality{}, fmt.Errorf("%w: no language model configured", domain.ErrProviderFailure)
	}
	return s.generator.EvaluateQuality(ctx, s.composer.QualitySystem(), prompt)
}

// Enhance rewrites content, or generates it when empty. product is the
// in-progress snapshot context fields are read from.
func (s *Service) Enhance(ctx context.Context, field domain.FieldConfig, content, lang string, product domain.Product, actor *domain.Actor) (Enhancement, error) {
	start := s.now()
	in := EnhanceInput{
		Field:    field,
		Rule:     rules.ResolveExact(field, lang),
		Current:  content,
		Examples: s.examples(ctx, field.Name, lang),
		Product:  product,
	}
	if field.UseClaimList {
		in.Claims = s.productClaims(ctx, product.Code, lang)
	}
	prompt := s.composer.EnhancePrompt(in)

	entry := s.logEntry(product, field.Name, lang, domain.RequestEnhancement, actor, start)
	entry.Source.Command = "Enhance Field Content"
	entry.Source.Effect = fmt.Sprintf("Enhancing %s content using AI with %s language requirements", field.Name, lang)

	if s.generator == nil {
		err := fmt.Errorf("%w: no language model configured", domain.ErrProviderFailure)
		entry.Error = err.Error()
		s.record(ctx, entry, actor)
		return Enhancement{}, err
	}
	value, err := s.generator.Generate(ctx, s.composer.EnhanceSystem(), prompt, generationTemperature)
	if err != nil {
		entry.Duration = s.now().Sub(start).Milliseconds()
		entry.Error = err.Error()
		s.record(ctx, entry, actor)
		return Enhancement{}, fmt.Errorf("enhance %s: %w", field.Name, err)
	}

	entry.Duration = s.now().Sub(start).Milliseconds()
	entry.Success = true
	entry.Results = &domain.RequestResults{Answer: value, ContentLength: len([]rune(value))}
	s.record(ctx, entry, actor)

	if actor != nil && s.history != nil {
		err := s.history.Append(ctx, domain.HistoryEntry{
			Timestamp:   s.now(),
			User:        *actor,
			ProductID:   product.Identifier(),
			ProductCode: product.Code,
			Field:       field.Name,
			Before:      content,
			After:       value,
		})
		if err != nil {
			s.logger.Error().Err(err).Str("field", field.Name).Str("product", product.Code).Msg("enhancement: history append failed")
		}
	}
	return Enhancement{Value: value, Prompt: prompt}, nil
}

func (s *Service) examples(ctx context.Context, fieldName, lang string) []domain.GoldstandardExample {
	if s.goldstandard == nil {
		return nil
	}
	out, err := s.goldstandard.FindByFieldAndLanguage(ctx, fieldName, lang)
	if err != nil {
		s.logger.Warn().Err(err).Str("field", fieldName).Msg("enhancement: goldstandard lookup failed")
		return nil
	}
	return out
}

func (s *Service) productClaims(ctx context.Context, code, lang string) []domain.Claim {
	if s.claims == nil {
		return nil
	}
	out, err := s.claims.FindByProductAndLanguage(ctx, code, lang)
	if err != nil {
		s.logger.Warn().Err(err).Str("product", code).Msg("enhancement: claims lookup failed")
		return nil
	}
	return out
}

func (s *Service) logEntry(product domain.Product, fieldName, lang string, typ domain.RequestType, actor *domain.Actor, start time.Time) domain.RequestLog {
	entry := domain.RequestLog{
		Timestamp: start,
		Product:   domain.NewProductRef(product),
		Field:     fieldName,
		Type:      typ,
		Language:  lang,
		Duration:  s.now().Sub(start).Milliseconds(),
		Source:    domain.RequestSource{Component: modalComponent},
	}
	if actor != nil {
		entry.User = *actor
	}
	return entry
}

func (s *Service) record(ctx context.Context, entry domain.RequestLog, actor *domain.Actor) {
	if actor == nil || s.recorder == nil {
		return
	}
	s.recorder.Record(ctx, entry)
}
