package validation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogstudio/internal/domain"
	"catalogstudio/internal/providers/llm"
)

func descriptionField(categories ...string) domain.FieldConfig {
	return domain.FieldConfig{
		ID:                "desc",
		Name:              "description",
		FieldType:         domain.FieldTypeText,
		IsActive:          true,
		ProductCategories: categories,
		Languages: map[string]domain.LanguageRule{
			"EN": {Requirements: "Two sentences", Format: "Paragraph", Whitelist: "organic"},
		},
	}
}

func TestValidateContentUnknownField(t *testing.T) {
	rec := &fakeRecorder{}
	e := NewEngine(Options{Analyzer: &fakeAnalyzer{}, Recorder: rec, Now: fixedClock()})

	got := e.ValidateContent(context.Background(), domain.Product{Code: "P1"}, "tagline", []domain.FieldConfig{descriptionField()}, "EN", testActor)

	assert.False(t, got.Passed)
	assert.Equal(t, []string{"Field configuration not found"}, got.Issues)
	assert.Equal(t, []string{"No active field configuration found"}, got.ValidationCriteria)

	require.Len(t, rec.entries, 1)
	entry := rec.entries[0]
	assert.False(t, entry.Success)
	assert.Equal(t, "Field configuration not found", entry.Error)
	assert.Equal(t, domain.RequestValidation, entry.Type)
	assert.Equal(t, "ProductCard", entry.Source.Component)
	assert.Equal(t, int64(250), entry.Duration)
}

func TestValidateContentNoApplicableCategory(t *testing.T) {
	e := NewEngine(Options{Analyzer: &fakeAnalyzer{}})
	product := domain.Product{Code: "P1", CategoryName: "Spices", Attributes: map[string]string{"description": "x"}}

	got := e.ValidateContent(context.Background(), product, "description", []domain.FieldConfig{descriptionField("Tea")}, "EN", nil)

	assert.True(t, got.Passed)
	assert.Empty(t, got.Issues)
	assert.NotNil(t, got.Issues)
	assert.Equal(t, []string{"No field configuration applies to this product category"}, got.ValidationCriteria)
}

func TestValidateContentPrefersCategorySpecificField(t *testing.T) {
	judge := &fakeJudge{verdict: llm.Verdict{Passed: true, Issues: []string{}, Quality: &domain.Quality{Rating: 93, Remarks: "good"}}}
	e := NewEngine(Options{Analyzer: &fakeAnalyzer{}, Judge: judge})

	universal := descriptionField()
	tea := descriptionField("Tea")
	tea.ID = "tea"
	tea.Languages = map[string]domain.LanguageRule{"EN": {Requirements: "Mention the harvest"}}
	product := domain.Product{Code: "P1", CategoryName: "Tea", Attributes: map[string]string{"description": "Spring harvest."}}

	got := e.ValidateContent(context.Background(), product, "description", []domain.FieldConfig{universal, tea}, "EN", nil)

	assert.True(t, got.Passed)
	assert.Contains(t, judge.prompt, "Requirements: Mention the harvest")
	assert.Contains(t, got.ValidationCriteria, "Requirements: Mention the harvest")
}

func TestValidateContentRecordsDetailedTextResult(t *testing.T) {
	rec := &fakeRecorder{}
	judge := &fakeJudge{verdict: llm.Verdict{Passed: false, Issues: []string{"too short", "no keyword"}, Quality: &domain.Quality{Rating: 40, Remarks: "weak"}}}
	e := NewEngine(Options{Analyzer: &fakeAnalyzer{}, Judge: judge, Recorder: rec, Now: fixedClock()})
	product := domain.Product{Code: "P1", Name: "Green Tea", CategoryName: "Tea", Attributes: map[string]string{"description": "Tea."}}

	got := e.ValidateContent(context.Background(), product, "description", []domain.FieldConfig{descriptionField()}, "EN", testActor)
	assert.False(t, got.Passed)

	require.Len(t, rec.entries, 1)
	res := rec.entries[0].Results
	require.NotNil(t, res)
	require.NotNil(t, res.ValidationPassed)
	assert.False(t, *res.ValidationPassed)
	require.NotNil(t, res.QualityBefore)
	assert.Equal(t, 40, *res.QualityBefore)
	assert.Equal(t, "Validation failed with 2 issues", res.Answer)
	assert.Equal(t, []string{"too short", "no keyword"}, res.IssuesFound)
	assert.Equal(t, "Green Tea", rec.entries[0].Product.Name)
}

func TestValidateContentDefaultsLanguage(t *testing.T) {
	judge := &fakeJudge{verdict: llm.Verdict{Passed: true}}
	e := NewEngine(Options{Analyzer: &fakeAnalyzer{}, Judge: judge})
	product := domain.Product{Code: "P1", Attributes: map[string]string{"description": "Fine tea."}}

	got := e.ValidateContent(context.Background(), product, "description", []domain.FieldConfig{descriptionField()}, "", nil)

	assert.Contains(t, got.ValidationCriteria, "Language: EN")
}
