package validation

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"catalogstudio/internal/domain"
	"catalogstudio/internal/rules"
)

const (
	validationFailedIssue = "An error occurred during validation. Please try again."

	languageStrictness = "\nYou are especially skilled at detecting when content is not in the specified language. " +
		"Be strict about language validation while respecting that product names, technical terms, " +
		"and registered trademarks may be preserved in their original language."

	languageDetectionDisabled = "IMPORTANT: Language detection is disabled for this field. " +
		"Focus only on content quality, requirements, and format validation."
)

// ValidateText judges content against the text rules of field without
// touching the request log.
func (e *Engine) ValidateText(ctx context.Context, field domain.FieldConfig, content, lang string) domain.ValidationResult {
	if lang == "" {
		lang = domain.DefaultLanguage
	}
	out := e.text(ctx, field, field.Name, content, lang)
	if out.result.Issues == nil {
		out.result.Issues = []string{}
	}
	e.metrics.RecordVerdict(out.branch, out.result.Passed)
	return out.result
}

func (e *Engine) text(ctx context.Context, field domain.FieldConfig, fieldName, content, lang string) outcome {
	criteria := rules.TextCriteria(field, lang)
	if content == "" {
		msg := fmt.Sprintf("Field %q not found in product data", fieldName)
		return outcome{
			branch: branchText,
			errMsg: msg,
			result: domain.ValidationResult{Issues: []string{msg}, ValidationCriteria: criteria},
		}
	}

	rule := rules.Resolve(field, lang)
	prompt := textPrompt(rule, fieldName, content, e.goldstandardBlock(ctx, field.Name, lang))
	if e.judge == nil {
		return outcome{
			branch: branchText,
			errMsg: "no language model configured",
			result: domain.ValidationResult{Issues: []string{validationFailedIssue}, ValidationCriteria: criteria},
		}
	}

	verdict, err := e.judge.Validate(ctx, e.templates.System.Validator+languageStrictness, prompt)
	if err != nil {
		e.logger.Warn().Err(err).Str("field", fieldName).Str("language", lang).Msg("validation: judge failed")
		return outcome{
			branch: branchText,
			errMsg: err.Error(),
			result: domain.ValidationResult{Issues: []string{validationFailedIssue}, ValidationCriteria: criteria},
		}
	}
	return outcome{
		branch:   branchText,
		success:  true,
		detailed: true,
		result: domain.ValidationResult{
			Passed:             verdict.Passed,
			Issues:             verdict.Issues,
			Quality:            verdict.Quality,
			ValidationCriteria: criteria,
			ValidationPrompt:   prompt,
		},
	}
}

// goldstandardBlock joins the stored exemplars for the field. Lookup
// failures are logged and treated as "no examples".
func (e *Engine) goldstandardBlock(ctx context.Context, fieldName, lang string) string {
	if e.goldstandard == nil {
		return ""
	}
	examples, err := e.goldstandard.FindByFieldAndLanguage(ctx, fieldName, lang)
	if err != nil {
		e.logger.Warn().Err(err).Str("field", fieldName).Msg("validation: goldstandard lookup failed")
		return ""
	}
	contents := make([]string, 0, len(examples))
	for _, ex := range examples {
		contents = append(contents, ex.Content)
	}
	return strings.Join(contents, "\n\n")
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}

func textPrompt(rule rules.EffectiveRule, fieldName, content, examples string) string {
	lang := rule.Language
	var b strings.Builder
	fmt.Fprintf(&b, "Please validate and evaluate the following %s against these requirements and format guidelines:\n\n", fieldName)
	fmt.Fprintf(&b, "Requirements: %s\n", orNone(rule.Requirements))
	fmt.Fprintf(&b, "Format: %s\n", orNone(rule.Format))
	fmt.Fprintf(&b, "Whitelist Terms: %s\n", orNone(rule.Whitelist))
	fmt.Fprintf(&b, "Blacklist Terms: %s\n", orNone(rule.Blacklist))
	fmt.Fprintf(&b, "Language: %s\n", lang)
	if examples != "" {
		b.WriteString("\n===== GOLDSTANDARD EXAMPLES =====\n")
		b.WriteString(examples)
	}
	fmt.Fprintf(&b, "\n\nContent to validate:\n%s\n\n", content)
	if rule.SkipLanguageDetection {
		b.WriteString(languageDetectionDisabled)
	} else {
		b.WriteString(languageSection(lang))
	}
	b.WriteString("\n\nIf goldstandard examples are provided above, also evaluate how well the content aligns with the style, structure and quality of these examples.\n\n")
	b.WriteString("Rate the quality of this content on a scale of 0-100% based on:\n")
	b.WriteString("- How well it meets requirements\n")
	b.WriteString("- Proper formatting\n")
	b.WriteString("- Use of required terms\n")
	b.WriteString("- Avoidance of prohibited terms\n")
	if !rule.SkipLanguageDetection {
		fmt.Fprintf(&b, "- Whether it's actually in the specified language (%s)\n", lang)
	}
	b.WriteString("- Alignment with goldstandard examples (if provided)\n")
	b.WriteString("- Overall clarity and effectiveness\n\n")
	b.WriteString("Return ONLY a JSON object with:\n")
	b.WriteString("1. passed (boolean): whether the content passes validation requirements\n")
	b.WriteString("2. issues (array of strings): problems found, if any\n")
	b.WriteString("3. quality (object): with \"rating\" (number 0-100) and \"remarks\" (brief explanation for the rating)\n\n")
	b.WriteString("Do not include any markdown formatting, code blocks, or backticks. Return the raw JSON object only.")
	return b.String()
}

func languageSection(lang string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "IMPORTANT: First, verify whether the content is actually written in %s language.\n", lang)
	fmt.Fprintf(&b, "If it contains terms or phrases in other languages (except for brand names and registered trademarks), it should be marked as failing validation with \"Content not in %s language\" as an issue.\n\n", lang)
	b.WriteString("For language verification:\n")
	for _, code := range domain.SupportedLanguages {
		fmt.Fprintf(&b, "- %s: Content should be primarily in %s\n", code, LanguageName(code))
	}
	b.WriteString("\nNote that product names, registered trademarks (®, ™) and specific measurements can be preserved in their original form.")
	return b.String()
}

// LanguageName returns the English name of a catalog language code such as
// "DE". Unknown codes are returned unchanged.
func LanguageName(code string) string {
	tag, err := language.Parse(strings.ToLower(code))
	if err != nil {
		return code
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return code
}
