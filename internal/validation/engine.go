// Package validation judges product content against field rules. Media
// rules are checked structurally; text and HTML rules are judged by a
// language model.
package validation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"catalogstudio/internal/domain"
	"catalogstudio/internal/media"
	"catalogstudio/internal/observability"
	"catalogstudio/internal/prompts"
	"catalogstudio/internal/providers/llm"
	"catalogstudio/internal/rules"
)

const (
	// MediaCountField addresses the asset count check.
	MediaCountField = "media-count"
	// MediaAssetPrefix addresses a single asset, as in "media-<assetId>".
	MediaAssetPrefix = "media-"
)

const (
	branchConfig     = "config"
	branchMediaCount = "media_count"
	branchMediaAsset = "media_asset"
	branchSubField   = "subfield"
	branchMedia      = "media"
	branchText       = "text"
)

// Analyzer probes media URLs.
type Analyzer interface {
	AnalyzeAll(ctx context.Context, urls []string) []media.Analysis
}

// Judge asks a language model for a validation verdict.
type Judge interface {
	Validate(ctx context.Context, system, prompt string) (llm.Verdict, error)
}

type Options struct {
	Analyzer     Analyzer
	Judge        Judge
	Goldstandard domain.GoldstandardRepository
	Recorder     domain.RequestRecorder
	Templates    *prompts.Templates
	Metrics      *observability.Metrics
	Logger       *zerolog.Logger
	Now          func() time.Time
}

type Engine struct {
	analyzer     Analyzer
	judge        Judge
	goldstandard domain.GoldstandardRepository
	recorder     domain.RequestRecorder
	templates    *prompts.Templates
	metrics      *observability.Metrics
	logger       zerolog.Logger
	now          func() time.Time
}

func NewEngine(opts Options) *Engine {
	e := &Engine{
		analyzer:     opts.Analyzer,
		judge:        opts.Judge,
		goldstandard: opts.Goldstandard,
		recorder:     opts.Recorder,
		templates:    opts.Templates,
		metrics:      opts.Metrics,
		logger:       zerolog.Nop(),
		now:          opts.Now,
	}
	if opts.Logger != nil {
		e.logger = *opts.Logger
	}
	if e.analyzer == nil {
		e.analyzer = media.NewAnalyzer(media.Options{Logger: opts.Logger})
	}
	if e.templates == nil {
		e.templates = prompts.MustDefault()
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// outcome is a verdict plus what the request log needs to know about it.
type outcome struct {
	result   domain.ValidationResult
	branch   string
	success  bool
	errMsg   string
	detailed bool
}

// ValidateContent validates one field of product. When actor is set the
// call is written to the request log.
func (e *Engine) ValidateContent(ctx context.Context, product domain.Product, fieldName string, fields []domain.FieldConfig, lang string, actor *domain.Actor) domain.ValidationResult {
	if lang == "" {
		lang = domain.DefaultLanguage
	}
	start := e.now()
	out := e.dispatch(ctx, product, fieldName, fields, lang)
	if out.result.Issues == nil {
		out.result.Issues = []string{}
	}
	e.metrics.RecordVerdict(out.branch, out.result.Passed)
	e.logger.Debug().
		Str("product", product.Code).
		Str("field", fieldName).
		Str("branch", out.branch).
		Bool("passed", out.result.Passed).
		Msg("validation: verdict")
	if actor != nil && e.recorder != nil {
		e.record(ctx, product, fieldName, lang, *actor, start, out)
	}
	return out.result
}

func (e *Engine) dispatch(ctx context.Context, product domain.Product, fieldName string, fields []domain.FieldConfig, lang string) outcome {
	if fieldName == MediaCountField {
		return e.mediaCount(product, fields)
	}
	if strings.HasPrefix(fieldName, MediaAssetPrefix) {
		return e.mediaAsset(product, strings.TrimPrefix(fieldName, MediaAssetPrefix), fields)
	}

	matched := rules.MatchName(fields, fieldName)
	if len(matched) == 0 {
		return outcome{
			branch: branchConfig,
			errMsg: "Field configuration not found",
			result: domain.ValidationResult{
				Issues:             []string{"Field configuration not found"},
				ValidationCriteria: []string{"No active field configuration found"},
			},
		}
	}
	applicable := rules.SelectApplicable(matched, product.CategoryName)
	if len(applicable) == 0 {
		return outcome{
			branch:  branchConfig,
			success: true,
			result: domain.ValidationResult{
				Passed:             true,
				Issues:             []string{},
				ValidationCriteria: []string{"No field configuration applies to this product category"},
			},
		}
	}

	field := applicable[0]
	switch {
	case field.SubField != "":
		return e.subField(ctx, product, field)
	case field.IsMedia():
		return e.wholeMedia(ctx, product, fieldName, field)
	default:
		return e.text(ctx, field, fieldName, product.Text(fieldName), lang)
	}
}

func (e *Engine) record(ctx context.Context, product domain.Product, fieldName, lang string, actor domain.Actor, start time.Time, out outcome) {
	entry := domain.RequestLog{
		Timestamp: start,
		User:      actor,
		Product:   domain.NewProductRef(product),
		Field:     fieldName,
		Type:      domain.RequestValidation,
		Language:  lang,
		Success:   out.success,
		Error:     out.errMsg,
		Duration:  e.now().Sub(start).Milliseconds(),
		Source: domain.RequestSource{
			Component: "ProductCard",
			Command:   "Validate Field",
			Effect:    fmt.Sprintf("Validating %s content against field requirements", fieldName),
		},
	}
	if out.success {
		passed := out.result.Passed
		entry.Results = &domain.RequestResults{ValidationPassed: &passed}
		if out.detailed {
			if q := out.result.Quality; q != nil {
				rating := q.Rating
				entry.Results.QualityBefore = &rating
			}
			entry.Results.Answer = verdictSummary(out.result)
			entry.Results.IssuesFound = out.result.Issues
		}
	}
	e.recorder.Record(ctx, entry)
}

func verdictSummary(r domain.ValidationResult) string {
	s := "Validation failed"
	if r.Passed {
		s = "Validation passed"
	}
	if len(r.Issues) > 0 {
		s += fmt.Sprintf(" with %d issues", len(r.Issues))
	}
	return s
}
