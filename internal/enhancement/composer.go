// Package enhancement rates, rewrites and reviews product content one field
// at a time.
package enhancement

import (
	"fmt"
	"strings"

	"catalogstudio/internal/domain"
	"catalogstudio/internal/prompts"
	"catalogstudio/internal/rules"
)

const (
	noneProvided   = "None provided"
	missingContent = "[MISSING - Please generate new content based on the requirements and context]"

	optimizerSuffix = " You maintain strict adherence to the specified target language, while preserving product names, trademarks, and technical terms in their original form." +
		" CRITICAL: The goldstandard examples represent our ideal content style and must be prioritized as your primary reference for style, tone, and structure." +
		" Use any provided product context to ensure consistency across all content fields." +
		" When generating new content for missing fields, create comprehensive, high-quality content that follows all requirements and format specifications." +
		" CLAIMS USAGE: When product claims are provided, you MUST use them exactly as written without any modifications, paraphrasing, or changes." +
		" Claims can be naturally embedded within sentences, but the claim text itself must remain completely unchanged."
)

// generateRewrites turn the enhance template into a generate template when
// the field has no content yet.
var generateRewrites = []struct{ from, to string }{
	{"Please enhance the following {fieldName}", "Please generate content for the following {fieldName}"},
	{"Current Value:\n{currentValue}", "Current Value: [MISSING - Please generate new content]"},
	{"Please provide an improved version", "Please generate new content"},
}

// Composer renders the prompts sent to the language model.
type Composer struct {
	templates *prompts.Templates
}

func NewComposer(t *prompts.Templates) *Composer {
	if t == nil {
		t = prompts.MustDefault()
	}
	return &Composer{templates: t}
}

// EnhanceInput is everything the enhance prompt is built from.
type EnhanceInput struct {
	Field    domain.FieldConfig
	Rule     rules.EffectiveRule
	Current  string
	Examples []domain.GoldstandardExample
	Claims   []domain.Claim
	// Product is the in-progress snapshot the context fields are read from.
	Product domain.Product
}

// IsGenerate reports whether the content is missing and must be written
// from scratch.
func IsGenerate(current string) bool {
	return strings.TrimSpace(current) == ""
}

// EnhancePrompt renders the template, then appends the context and claims
// blocks.
func (c *Composer) EnhancePrompt(in EnhanceInput) string {
	tmpl := c.templates.Enhance
	if IsGenerate(in.Current) {
		for _, r := range generateRewrites {
			tmpl = strings.Replace(tmpl, r.from, r.to, 1)
		}
	}

	positive := noneProvided
	if len(in.Examples) > 0 {
		lines := make([]string, len(in.Examples))
		for i, ex := range in.Examples {
			lines[i] = "• " + ex.Content
		}
		positive = strings.Join(lines, "\n")
	}
	current := in.Current
	if current == "" {
		current = missingContent
	}

	out := prompts.Render(tmpl, map[string]string{
		"fieldName":        in.Field.Name,
		"requirements":     in.Rule.Requirements,
		"format":           in.Rule.Format,
		"whitelist":        in.Rule.Whitelist,
		"blacklist":        in.Rule.Blacklist,
		"positiveExamples": positive,
		"negativeExamples": bullets(in.Rule.NegativeExamples),
		"currentValue":     current,
		"language":         in.Rule.Language,
	})
	return out + contextBlock(in.Field.ContextFields, in.Product) + claimsBlock(in.Field.UseClaimList, in.Claims)
}

// EnhanceSystem is the system prompt for generation calls.
func (c *Composer) EnhanceSystem() string {
	return c.templates.System.ContentOptimizer + optimizerSuffix
}

// QualitySystem is the system prompt for quality evaluation.
func (c *Composer) QualitySystem() string {
	return c.templates.System.Evaluator
}

// QualityPrompt asks for a {rating, remarks} object with explicit bands.
func (c *Composer) QualityPrompt(rule rules.EffectiveRule, content string, examples []domain.GoldstandardExample) string {
	lang := rule.Language
	var b strings.Builder
	fmt.Fprintf(&b, "Evaluate the quality of the following content for a \"%s\" field according to these requirements:\n\n", rule.FieldName)
	fmt.Fprintf(&b, "Requirements: %s\n", rule.Requirements)
	fmt.Fprintf(&b, "Format: %s\n", rule.Format)
	fmt.Fprintf(&b, "Whitelist Terms: %s\n", rule.Whitelist)
	fmt.Fprintf(&b, "Blacklist Terms: %s\n", rule.Blacklist)
	fmt.Fprintf(&b, "Language: %s\n", lang)
	if len(examples) > 0 {
		contents := make([]string, len(examples))
		for i, ex := range examples {
			contents[i] = ex.Content
		}
		b.WriteString("\nGoldstandard Examples:\n")
		b.WriteString(strings.Join(contents, "\n\n"))
	}
	fmt.Fprintf(&b, "\n\nContent to evaluate:\n%s\n\n", content)
	fmt.Fprintf(&b, "IMPORTANT: First check if the content is actually written in %s language.\n", lang)
	b.WriteString("If it contains significant text in other languages (except for brand names and registered trademarks), it should receive a low quality rating.\n\n")
	b.WriteString("Please rate the content quality on a scale of 0-100%, where:\n")
	b.WriteString("- 0-25%: Poor quality, needs complete rewrite (including content in wrong language)\n")
	b.WriteString("- 26-50%: Below average, requires significant improvement\n")
	b.WriteString("- 51-75%: Average, could be improved\n")
	b.WriteString("- 76-90%: Good, needs minor improvements\n")
	b.WriteString("- 91-100%: Excellent, little to no improvement needed\n\n")
	b.WriteString("Return ONLY a JSON object with:\n")
	b.WriteString("1. rating: numeric score between 0-100\n")
	b.WriteString("2. remarks: brief explanation for the rating (including language assessment)\n\n")
	b.WriteString("For example:\n")
	b.WriteString(`{"rating": 85, "remarks": "Content is well-structured but could be more engaging."}`)
	return b.String()
}

func bullets(list string) string {
	items := rules.SplitTerms(list)
	if len(items) == 0 {
		return noneProvided
	}
	for i, it := range items {
		items[i] = "• " + it
	}
	return strings.Join(items, "\n")
}

func contextBlock(names []string, product domain.Product) string {
	var parts []string
	for _, name := range names {
		v := product.Text(name)
		if strings.TrimSpace(v) == "" {
			continue
		}
		parts = append(parts, name+": "+v)
	}
	if len(parts) == 0 {
		return ""
	}
	return "\n===== PRODUCT CONTEXT =====\n" +
		"The following content from other fields provides context about this product:\n\n" +
		strings.Join(parts, "\n\n") +
		"\n\nUse this context to ensure the enhanced content is consistent and complementary.\n"
}

func claimsBlock(enabled bool, claims []domain.Claim) string {
	if !enabled || len(claims) == 0 {
		return ""
	}
	lines := make([]string, len(claims))
	for i, c := range claims {
		lines[i] = "• " + c.Claim
	}
	return "\n===== PRODUCT CLAIMS =====\n" +
		"The following claims are defined for this product and MUST be used exactly as written (can be embedded in sentences):\n\n" +
		strings.Join(lines, "\n") +
		"\n\nIMPORTANT: Use these claims exactly as provided - do not modify, paraphrase, or change the wording. " +
		"They can be embedded naturally within sentences but the claim text itself must remain unchanged.\n"
}
