// Package rules resolves field configurations into the effective rule that
// applies to one product, category and language.
package rules

import (
	"strings"

	"catalogstudio/internal/domain"
)

// EffectiveRule is the flattened view of a field for one language.
type EffectiveRule struct {
	FieldName             string
	Language              string
	Requirements          string
	Format                string
	Whitelist             string
	Blacklist             string
	PositiveExamples      string
	NegativeExamples      string
	SkipLanguageDetection bool
}

// Resolve flattens field for lang. Missing languages fall back to the
// English entry, then to an empty rule.
func Resolve(field domain.FieldConfig, lang string) EffectiveRule {
	cfg, ok := field.Languages[lang]
	if !ok {
		cfg = field.Languages[domain.DefaultLanguage]
	}
	return build(field, lang, cfg)
}

// ResolveExact flattens field for lang without the English fallback.
func ResolveExact(field domain.FieldConfig, lang string) EffectiveRule {
	return build(field, lang, field.Languages[lang])
}

func build(field domain.FieldConfig, lang string, cfg domain.LanguageRule) EffectiveRule {
	rule := EffectiveRule{
		FieldName:        field.Name,
		Language:         lang,
		Requirements:     cfg.Requirements,
		Format:           cfg.Format,
		Whitelist:        cfg.Whitelist,
		Blacklist:        cfg.Blacklist,
		PositiveExamples: cfg.PositiveExamples,
		NegativeExamples: cfg.NegativeExamples,
	}
	if g := field.General; g != nil {
		if rule.Requirements == "" {
			rule.Requirements = g.Requirements
		}
		if rule.Format == "" {
			rule.Format = g.Format
		}
		rule.SkipLanguageDetection = g.SkipLanguageDetection
	}
	return rule
}

// SplitTerms splits a comma separated term list, dropping blanks.
func SplitTerms(list string) []string {
	var out []string
	for _, part := range strings.Split(list, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
