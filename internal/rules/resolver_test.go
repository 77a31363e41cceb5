package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"catalogstudio/internal/domain"
)

func descriptionField() domain.FieldConfig {
	return domain.FieldConfig{
		Name:      "assortmentProductDescription",
		FieldType: domain.FieldTypeText,
		IsActive:  true,
		General: &domain.GeneralRule{
			Requirements: "Describe the product",
			Format:       "Paragraph",
		},
		Languages: map[string]domain.LanguageRule{
			"EN": {Requirements: "Describe in English", Whitelist: "organic, natural", Blacklist: "cheap"},
			"DE": {Format: "Fließtext"},
		},
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		lang string
		want EffectiveRule
	}{
		{
			name: "exact language with general fallback for requirements",
			lang: "DE",
			want: EffectiveRule{FieldName: "assortmentProductDescription", Language: "DE", Requirements: "Describe the product", Format: "Fließtext"},
		},
		{
			name: "english entry",
			lang: "EN",
			want: EffectiveRule{FieldName: "assortmentProductDescription", Language: "EN", Requirements: "Describe in English", Format: "Paragraph", Whitelist: "organic, natural", Blacklist: "cheap"},
		},
		{
			name: "missing language falls back to english",
			lang: "FR",
			want: EffectiveRule{FieldName: "assortmentProductDescription", Language: "FR", Requirements: "Describe in English", Format: "Paragraph", Whitelist: "organic, natural", Blacklist: "cheap"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(descriptionField(), tt.lang))
		})
	}
}

func TestResolveExactSkipsEnglishFallback(t *testing.T) {
	got := ResolveExact(descriptionField(), "FR")
	assert.Equal(t, "Describe the product", got.Requirements)
	assert.Empty(t, got.Whitelist)
	assert.Empty(t, got.Blacklist)
}

func TestResolveSkipLanguageDetectionFromGeneralOnly(t *testing.T) {
	f := descriptionField()
	f.General.SkipLanguageDetection = true
	assert.True(t, Resolve(f, "DE").SkipLanguageDetection)

	f.General = nil
	got := Resolve(f, "DE")
	assert.False(t, got.SkipLanguageDetection)
	assert.Empty(t, got.Requirements)
}

func TestSplitTerms(t *testing.T) {
	assert.Equal(t, []string{"organic", "natural"}, SplitTerms(" organic, ,natural ,"))
	assert.Nil(t, SplitTerms(""))
}
