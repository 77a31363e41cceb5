package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"catalogstudio/internal/rules"
)

func TestCheckRules(t *testing.T) {
	tests := []struct {
		name   string
		rule   rules.EffectiveRule
		value  string
		issues []string
	}{
		{
			name:   "clean",
			rule:   rules.EffectiveRule{Whitelist: "organic, fair", Blacklist: "cheap", Format: "Paragraph"},
			value:  "An Organic tea.",
			issues: []string{},
		},
		{
			name:   "missing whitelist term",
			rule:   rules.EffectiveRule{Whitelist: "organic, fair"},
			value:  "A tea",
			issues: []string{"Must include at least one of: organic, fair"},
		},
		{
			name:   "prohibited terms",
			rule:   rules.EffectiveRule{Blacklist: "cheap, best, free"},
			value:  "The BEST cheap tea",
			issues: []string{"Contains prohibited terms: cheap, best"},
		},
		{
			name:   "title case",
			rule:   rules.EffectiveRule{Format: "Title Case with ® where applicable"},
			value:  "Green tea  Blend",
			issues: []string{"Must be in Title Case format"},
		},
		{
			name:   "title case with umlaut",
			rule:   rules.EffectiveRule{Format: "Title Case"},
			value:  "Österreichischer Grüner Tee",
			issues: []string{},
		},
		{
			name:   "paragraph and bullets",
			rule:   rules.EffectiveRule{Format: "Paragraph with bullet points"},
			value:  "no sentence here",
			issues: []string{"Must be in paragraph format", "Must include bullet points"},
		},
		{
			name:   "valid html",
			rule:   rules.EffectiveRule{},
			value:  "<p>Fine</p>",
			issues: []string{},
		},
		{
			name:   "broken html",
			rule:   rules.EffectiveRule{},
			value:  "<1 </",
			issues: []string{"Invalid HTML format"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := CheckRules(tc.rule, tc.value)
			assert.Equal(t, tc.issues, got.Issues)
			assert.Equal(t, len(tc.issues) == 0, got.Passed)
		})
	}
}
