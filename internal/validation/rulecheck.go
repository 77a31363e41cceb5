package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"catalogstudio/internal/domain"
	"catalogstudio/internal/rules"
)

var htmlTag = regexp.MustCompile(`(?i)</?[a-z][\s\S]*>`)

// CheckRules runs the local format and term checks of rule against value.
// It needs no model and is used for content that was kept as is.
func CheckRules(rule rules.EffectiveRule, value string) domain.ValidationResult {
	issues := []string{}

	if strings.HasPrefix(value, "<") && strings.Contains(value, "</") && !htmlTag.MatchString(value) {
		issues = append(issues, "Invalid HTML format")
	}

	lower := strings.ToLower(value)
	if terms := rules.SplitTerms(rule.Whitelist); len(terms) > 0 {
		found := false
		for _, t := range terms {
			if strings.Contains(lower, strings.ToLower(t)) {
				found = true
				break
			}
		}
		if !found {
			issues = append(issues, "Must include at least one of: "+strings.Join(terms, ", "))
		}
	}
	if terms := rules.SplitTerms(rule.Blacklist); len(terms) > 0 {
		var hits []string
		for _, t := range terms {
			if strings.Contains(lower, strings.ToLower(t)) {
				hits = append(hits, t)
			}
		}
		if len(hits) > 0 {
			issues = append(issues, "Contains prohibited terms: "+strings.Join(hits, ", "))
		}
	}

	format := rule.Format
	if strings.Contains(format, "Title Case") && !isTitleCase(value) {
		issues = append(issues, "Must be in Title Case format")
	}
	if strings.Contains(format, "Paragraph") && !strings.Contains(value, ".") {
		issues = append(issues, "Must be in paragraph format")
	}
	if strings.Contains(format, "bullet points") && !strings.Contains(value, "•") {
		issues = append(issues, "Must include bullet points")
	}

	return domain.ValidationResult{Passed: len(issues) == 0, Issues: issues}
}

func isTitleCase(value string) bool {
	upper := cases.Upper(language.Und)
	for _, word := range strings.Split(value, " ") {
		if word == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(word)
		if r == utf8.RuneError {
			continue
		}
		first := word[:size]
		if upper.String(first) != first {
			return false
		}
	}
	return true
}
