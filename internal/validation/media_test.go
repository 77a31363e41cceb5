package validation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogstudio/internal/domain"
	"catalogstudio/internal/media"
)

func mediaField(mv *domain.MediaValidation, categories ...string) domain.FieldConfig {
	return domain.FieldConfig{
		ID:                "media",
		Name:              "media",
		FieldType:         domain.FieldTypeMedia,
		IsActive:          true,
		ProductCategories: categories,
		MediaValidation:   mv,
	}
}

func assets(urls ...string) []domain.MediaAsset {
	out := make([]domain.MediaAsset, len(urls))
	for i, u := range urls {
		out[i] = domain.MediaAsset{AssetID: domain.FlexString(string(rune('a' + i))), MediaURL: u}
	}
	return out
}

func TestMediaCount(t *testing.T) {
	mv := &domain.MediaValidation{MediaCountMin: 2, MediaCountMax: 4, MediaCountOptimal: 3}
	fields := []domain.FieldConfig{mediaField(mv)}
	e := NewEngine(Options{Analyzer: &fakeAnalyzer{}})

	tests := []struct {
		name    string
		count   int
		passed  bool
		rating  int
		remarks string
	}{
		{"none", 0, false, 0, "Media count issues: Insufficient media assets. Minimum required: 2, found: 0"},
		{"one short", 1, false, 25, "Media count issues: Insufficient media assets. Minimum required: 2, found: 1"},
		{"acceptable", 2, true, 90, "Acceptable number of media assets (2)"},
		{"optimal", 3, true, 100, "Optimal number of media assets (3)"},
		{"too many", 6, false, 60, "Media count issues: Too many media assets. Maximum allowed: 4, found: 6"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			urls := make([]string, tc.count)
			for i := range urls {
				urls[i] = "https://cdn.example.com/x.jpg"
			}
			product := domain.Product{Code: "P1", Media: assets(urls...)}
			got := e.ValidateContent(context.Background(), product, MediaCountField, fields, "EN", nil)
			assert.Equal(t, tc.passed, got.Passed)
			require.NotNil(t, got.Quality)
			assert.Equal(t, tc.rating, got.Quality.Rating)
			assert.Equal(t, tc.remarks, got.Quality.Remarks)
			assert.Equal(t, []string{
				"Minimum assets required: 2",
				"Maximum assets allowed: 4",
				"Optimal asset count: 3",
				"Current asset count: " + string(rune('0'+tc.count)),
			}, got.ValidationCriteria)
		})
	}
}

func TestMediaCountWithoutConfig(t *testing.T) {
	e := NewEngine(Options{Analyzer: &fakeAnalyzer{}})
	got := e.ValidateContent(context.Background(), domain.Product{Code: "P1"}, MediaCountField, nil, "EN", nil)

	assert.True(t, got.Passed)
	require.NotNil(t, got.Quality)
	assert.Equal(t, 50, got.Quality.Rating)
	assert.Equal(t, []string{"No media field configuration found for this product category"}, got.ValidationCriteria)
}

func TestMediaCountDefaults(t *testing.T) {
	e := NewEngine(Options{Analyzer: &fakeAnalyzer{}})
	product := domain.Product{Code: "P1", Media: assets("https://a/1.jpg")}
	got := e.ValidateContent(context.Background(), product, MediaCountField, []domain.FieldConfig{mediaField(nil)}, "EN", nil)

	assert.True(t, got.Passed)
	assert.Equal(t, 80, got.Quality.Rating)
	assert.Contains(t, got.ValidationCriteria, "Maximum assets allowed: 10")
}

func TestMediaAsset(t *testing.T) {
	mv := &domain.MediaValidation{RequireHTTPS: true, AllowedFileTypes: []string{"jpg", "png"}}
	fields := []domain.FieldConfig{mediaField(mv)}
	e := NewEngine(Options{Analyzer: &fakeAnalyzer{}})
	product := domain.Product{Code: "P1", Media: assets("https://cdn/x.jpg", "http://cdn/y.gif")}

	ok := e.ValidateContent(context.Background(), product, "media-a", fields, "EN", nil)
	assert.True(t, ok.Passed)
	assert.Equal(t, 100, ok.Quality.Rating)
	assert.Equal(t, "Asset meets all required specifications", ok.Quality.Remarks)

	bad := e.ValidateContent(context.Background(), product, "media-b", fields, "EN", nil)
	assert.False(t, bad.Passed)
	assert.Equal(t, []string{
		"URL must use HTTPS protocol",
		"File type 'gif' not allowed. Accepted types: jpg, png",
	}, bad.Issues)
	assert.Equal(t, 50, bad.Quality.Rating)
	assert.Equal(t, "Asset has 2 validation issues", bad.Quality.Remarks)

	missing := e.ValidateContent(context.Background(), product, "media-zz", fields, "EN", nil)
	assert.Equal(t, []string{`Asset "zz" not found`}, missing.Issues)
	assert.Equal(t, "Asset does not exist", missing.Quality.Remarks)
}

func TestMediaAssetWithoutRules(t *testing.T) {
	e := NewEngine(Options{Analyzer: &fakeAnalyzer{}})
	product := domain.Product{Code: "P1", Media: assets("http://cdn/x.jpg")}

	got := e.ValidateContent(context.Background(), product, "media-a", []domain.FieldConfig{mediaField(nil)}, "EN", nil)
	assert.True(t, got.Passed)
	assert.Equal(t, "No validation rules defined for media assets", got.Quality.Remarks)

	none := e.ValidateContent(context.Background(), product, "media-a", nil, "EN", nil)
	assert.False(t, none.Passed)
	assert.Equal(t, []string{"No media field configuration found for this product category"}, none.Issues)
}

func TestWholeMedia(t *testing.T) {
	mv := &domain.MediaValidation{RequireHTTPS: true, MinWidth: 1000}
	analyzer := &fakeAnalyzer{byURL: map[string]media.Analysis{
		"https://cdn/big.jpg":   {Dimensions: &media.Dimensions{Width: 1200, Height: 1200}, AspectRatio: "1:1", FileSize: 2048},
		"http://cdn/small.jpg":  {Dimensions: &media.Dimensions{Width: 500, Height: 500}, AspectRatio: "1:1", FileSize: 2048},
		"https://cdn/gone.jpg": {Error: "Could not load image"},
	}}
	rec := &fakeRecorder{}
	e := NewEngine(Options{Analyzer: analyzer, Recorder: rec})
	product := domain.Product{Code: "P1", Media: assets("https://cdn/big.jpg", "http://cdn/small.jpg", "https://cdn/gone.jpg")}

	got := e.ValidateContent(context.Background(), product, "media", []domain.FieldConfig{mediaField(mv)}, "EN", testActor)

	assert.False(t, got.Passed)
	assert.Equal(t, []string{
		"Asset b: URL must use HTTPS protocol",
		"Asset b: Width 500px is below minimum 1000px",
		"Asset c: Could not analyze dimensions for validation",
		"Asset c: Analysis error - Could not load image",
	}, got.Issues)
	// 100, 70 and 70 averaged.
	assert.Equal(t, 80, got.Quality.Rating)
	assert.Equal(t, "1 of 3 assets pass validation", got.Quality.Remarks)
	require.Len(t, analyzer.calls, 1)
	assert.Len(t, analyzer.calls[0], 3)

	require.Len(t, rec.entries, 1)
	assert.Equal(t, "Validation failed with 4 issues", rec.entries[0].Results.Answer)
}

func TestWholeMediaEdgeCases(t *testing.T) {
	e := NewEngine(Options{Analyzer: &fakeAnalyzer{}})
	field := mediaField(&domain.MediaValidation{RequireHTTPS: true})

	empty := e.ValidateContent(context.Background(), domain.Product{Code: "P1"}, "media", []domain.FieldConfig{field}, "EN", nil)
	assert.Equal(t, []string{"No media assets found"}, empty.Issues)
	assert.Equal(t, 0, empty.Quality.Rating)

	images := field
	images.Name = "images"
	wrong := e.ValidateContent(context.Background(), domain.Product{Code: "P1", Media: assets("https://a/b.jpg")}, "images", []domain.FieldConfig{images}, "EN", nil)
	assert.Equal(t, []string{"Not a media field"}, wrong.Issues)
	assert.Equal(t, []string{"Field type should be media"}, wrong.ValidationCriteria)
}

func packshotField(mv *domain.MediaValidation) domain.FieldConfig {
	f := mediaField(mv)
	f.ID = "packshot"
	f.SubField = "productContentType"
	f.SubFieldFilter = &domain.SubFieldFilter{Operator: domain.OperatorEquals, Value: "Packshot"}
	return f
}

func TestSubFieldValidation(t *testing.T) {
	mv := &domain.MediaValidation{AllowedFileTypes: []string{"png"}, AspectRatio: "1:1"}
	analyzer := &fakeAnalyzer{byURL: map[string]media.Analysis{
		"https://cdn/front.png": {Dimensions: &media.Dimensions{Width: 800, Height: 800}, AspectRatio: "1:1", FileSize: 4096},
		"https://cdn/back.jpg":  {Dimensions: &media.Dimensions{Width: 1600, Height: 900}, AspectRatio: "16:9", FileSize: 4096},
		"https://cdn/mood.jpg":  {Dimensions: &media.Dimensions{Width: 1600, Height: 900}, AspectRatio: "16:9"},
	}}
	e := NewEngine(Options{Analyzer: analyzer})
	product := domain.Product{Code: "P1", CategoryName: "Tea", Media: []domain.MediaAsset{
		{AssetID: "1", MediaURL: "https://cdn/front.png", ProductContentType: "Packshot"},
		{AssetID: "2", MediaURL: "https://cdn/back.jpg", ProductContentType: "Packshot"},
		{AssetID: "3", MediaURL: "https://cdn/mood.jpg", ProductContentType: "Mood"},
	}}

	got := e.ValidateContent(context.Background(), product, "media > productContentType", []domain.FieldConfig{packshotField(mv)}, "EN", nil)

	assert.False(t, got.Passed)
	assert.Equal(t, []string{
		"Asset 2: File type 'jpg' not allowed. Allowed types: png",
		"Asset 2: Aspect ratio 16:9 does not match required 1:1",
	}, got.Issues)
	// 100 and 60 averaged.
	assert.Equal(t, 80, got.Quality.Rating)
	assert.Equal(t, "1 of 2 matching assets pass validation. Issues found in 1 assets.", got.Quality.Remarks)
	assert.Equal(t, []string{
		`Subfield filter: productContentType equals "Packshot"`,
		"Total assets in product: 3",
		"Assets matching filter: 2",
		"Allowed file types: png",
		"Required aspect ratio: 1:1",
	}, got.ValidationCriteria)
	assert.Contains(t, got.ValidationPrompt, "Field: media > productContentType\n")
	assert.Contains(t, got.ValidationPrompt, "  productContentType: \"Mood\"\n  Matches Filter: NO\n")
	assert.Contains(t, got.ValidationPrompt, "  Dimensions: 800×800px\n")
	assert.Contains(t, got.ValidationPrompt, "  File Size: 4KB\n")
	assert.Contains(t, got.ValidationPrompt, "- Matching assets: 2\n")
	require.Len(t, analyzer.calls, 1)
}

func TestSubFieldNoMatches(t *testing.T) {
	e := NewEngine(Options{Analyzer: &fakeAnalyzer{}})
	product := domain.Product{Code: "P1", Media: []domain.MediaAsset{{AssetID: "1", MediaURL: "https://cdn/a.jpg", ProductContentType: "Mood"}}}

	got := e.ValidateContent(context.Background(), product, "media > productContentType", []domain.FieldConfig{packshotField(nil)}, "EN", nil)

	assert.False(t, got.Passed)
	assert.Equal(t, []string{`No media assets found where productContentType equals "Packshot". Found 1 total assets, but none match the filter criteria.`}, got.Issues)
	assert.Equal(t, `No assets match the required productContentType criteria. Expected: productContentType equals "Packshot"`, got.Quality.Remarks)
	assert.NotEmpty(t, got.ValidationPrompt)
}

func TestSubFieldWithoutMediaData(t *testing.T) {
	e := NewEngine(Options{Analyzer: &fakeAnalyzer{}})
	got := e.ValidateContent(context.Background(), domain.Product{Code: "P1"}, "media > productContentType", []domain.FieldConfig{packshotField(nil)}, "EN", nil)

	assert.Equal(t, []string{`Field "media" not found in product data`}, got.Issues)
	assert.Equal(t, []string{`Field "media" should exist in product data`}, got.ValidationCriteria)
}

func TestSubFieldOnTextField(t *testing.T) {
	e := NewEngine(Options{Analyzer: &fakeAnalyzer{}})
	field := descriptionField()
	field.SubField = "lang"
	field.SubFieldFilter = &domain.SubFieldFilter{Operator: domain.OperatorEquals, Value: "x"}
	product := domain.Product{Code: "P1", Attributes: map[string]string{"description": "text"}}

	got := e.ValidateContent(context.Background(), product, "description > lang", []domain.FieldConfig{field}, "EN", nil)
	assert.Equal(t, []string{"Subfield validation only supported for media fields"}, got.Issues)
}

func TestCheckAssetMissingURL(t *testing.T) {
	issues, deduction := checkAsset(domain.MediaAsset{AssetID: "9"}, media.Analysis{}, domain.MediaValidation{RequireHTTPS: true}, subFieldStyle)
	assert.Equal(t, []string{"Asset 9: Missing media URL"}, issues)
	assert.Equal(t, 50, deduction)
}
