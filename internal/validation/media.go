package validation

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"catalogstudio/internal/domain"
	"catalogstudio/internal/media"
	"catalogstudio/internal/rules"
)

const (
	defaultMediaCountMin     = 1
	defaultMediaCountMax     = 10
	defaultMediaCountOptimal = 3
)

func (e *Engine) mediaCount(product domain.Product, fields []domain.FieldConfig) outcome {
	field, ok := rules.MediaFieldFor(fields, product.CategoryName)
	if !ok {
		return outcome{
			branch:  branchMediaCount,
			success: true,
			result: domain.ValidationResult{
				Passed:             true,
				Issues:             []string{},
				Quality:            &domain.Quality{Rating: 50, Remarks: "No media requirements defined for this product category"},
				ValidationCriteria: []string{"No media field configuration found for this product category"},
			},
		}
	}

	minCount, maxCount, optimal := defaultMediaCountMin, defaultMediaCountMax, defaultMediaCountOptimal
	if mv := field.MediaValidation; mv != nil {
		if mv.MediaCountMin > 0 {
			minCount = mv.MediaCountMin
		}
		if mv.MediaCountMax > 0 {
			maxCount = mv.MediaCountMax
		}
		if mv.MediaCountOptimal > 0 {
			optimal = mv.MediaCountOptimal
		}
	}
	count := len(product.Media)

	issues := []string{}
	if count < minCount {
		issues = append(issues, fmt.Sprintf("Insufficient media assets. Minimum required: %d, found: %d", minCount, count))
	}
	if count > maxCount {
		issues = append(issues, fmt.Sprintf("Too many media assets. Maximum allowed: %d, found: %d", maxCount, count))
	}

	rating := 100
	switch {
	case count < minCount:
		rating = max(0, 50-(minCount-count)*25)
	case count > maxCount:
		rating = max(0, 70-(count-maxCount)*5)
	case count != optimal:
		diff := count - optimal
		if diff < 0 {
			diff = -diff
		}
		rating = max(70, 100-diff*10)
	}

	remarks := fmt.Sprintf("Media count issues: %s", strings.Join(issues, ", "))
	if len(issues) == 0 {
		remarks = fmt.Sprintf("Acceptable number of media assets (%d)", count)
		if count == optimal {
			remarks = fmt.Sprintf("Optimal number of media assets (%d)", count)
		}
	}

	return outcome{
		branch:  branchMediaCount,
		success: true,
		result: domain.ValidationResult{
			Passed:  len(issues) == 0,
			Issues:  issues,
			Quality: &domain.Quality{Rating: rating, Remarks: remarks},
			ValidationCriteria: []string{
				fmt.Sprintf("Minimum assets required: %d", minCount),
				fmt.Sprintf("Maximum assets allowed: %d", maxCount),
				fmt.Sprintf("Optimal asset count: %d", optimal),
				fmt.Sprintf("Current asset count: %d", count),
			},
		},
	}
}

// mediaAsset checks one asset for HTTPS and file type only.
func (e *Engine) mediaAsset(product domain.Product, assetID string, fields []domain.FieldConfig) outcome {
	field, ok := rules.MediaFieldFor(fields, product.CategoryName)
	if !ok {
		return outcome{
			branch:  branchMediaAsset,
			success: true,
			result: domain.ValidationResult{
				Issues:             []string{"No media field configuration found for this product category"},
				Quality:            &domain.Quality{Rating: 0, Remarks: "Cannot validate without field configuration"},
				ValidationCriteria: []string{"No active media field configuration found for this product category"},
			},
		}
	}

	idx := slices.IndexFunc(product.Media, func(a domain.MediaAsset) bool {
		return string(a.AssetID) == assetID
	})
	if idx < 0 {
		return outcome{
			branch:  branchMediaAsset,
			success: true,
			result: domain.ValidationResult{
				Issues:             []string{fmt.Sprintf("Asset %q not found", assetID)},
				Quality:            &domain.Quality{Rating: 0, Remarks: "Asset does not exist"},
				ValidationCriteria: rules.MediaCriteria(field),
			},
		}
	}

	mv := field.MediaValidation
	if mv == nil {
		return noMediaRules(branchMediaAsset)
	}

	asset := product.Media[idx]
	issues := []string{}
	if asset.MediaURL == "" {
		issues = append(issues, "Missing URL")
	}
	if mv.RequireHTTPS && !isHTTPS(asset.MediaURL) {
		issues = append(issues, "URL must use HTTPS protocol")
	}
	if issue, bad := fileTypeIssue(asset.MediaURL, mv.AllowedFileTypes, "Accepted types"); bad {
		issues = append(issues, issue)
	}

	rating := max(0, 100-len(issues)*25)
	remarks := "Asset meets all required specifications"
	if len(issues) > 0 {
		remarks = fmt.Sprintf("Asset has %d validation issues", len(issues))
	}
	return outcome{
		branch:  branchMediaAsset,
		success: true,
		result: domain.ValidationResult{
			Passed:             len(issues) == 0,
			Issues:             issues,
			Quality:            &domain.Quality{Rating: rating, Remarks: remarks},
			ValidationCriteria: rules.MediaCriteria(field),
		},
	}
}

// subField validates the assets selected by the field's subfield filter.
func (e *Engine) subField(ctx context.Context, product domain.Product, field domain.FieldConfig) outcome {
	if field.SubField == "" || field.SubFieldFilter == nil {
		return outcome{
			branch:  branchSubField,
			success: true,
			result: domain.ValidationResult{
				Issues:             []string{"Subfield configuration incomplete"},
				ValidationCriteria: []string{"Subfield configuration is incomplete"},
			},
		}
	}
	present := product.Media != nil
	if !field.IsMedia() {
		_, present = product.Value(field.Name)
	}
	if !present {
		return outcome{
			branch:  branchSubField,
			success: true,
			result: domain.ValidationResult{
				Issues:             []string{fmt.Sprintf("Field %q not found in product data", field.Name)},
				ValidationCriteria: []string{fmt.Sprintf("Field %q should exist in product data", field.Name)},
			},
		}
	}
	if !field.IsMedia() {
		msg := "Subfield validation only supported for media fields"
		return outcome{
			branch:  branchSubField,
			success: true,
			result:  domain.ValidationResult{Issues: []string{msg}, ValidationCriteria: []string{msg}},
		}
	}

	filter := *field.SubFieldFilter
	filterDesc := rules.FilterDescription(field.SubField, filter)
	assets := product.Media
	analyses := e.analyze(ctx, assets)

	var matching []int
	for i, a := range assets {
		if rules.MatchesSubField(a, field.SubField, filter) {
			matching = append(matching, i)
		}
	}

	criteria := append([]string{
		"Subfield filter: " + filterDesc,
		fmt.Sprintf("Total assets in product: %d", len(assets)),
		fmt.Sprintf("Assets matching filter: %d", len(matching)),
	}, rules.MediaCriteria(field)...)
	prompt := subFieldPrompt(product, field, filterDesc, assets, analyses, matching, criteria)

	if len(matching) == 0 {
		return outcome{
			branch:   branchSubField,
			success:  true,
			detailed: true,
			result: domain.ValidationResult{
				Issues: []string{fmt.Sprintf("No media assets found where %s. Found %d total assets, but none match the filter criteria.", filterDesc, len(assets))},
				Quality: &domain.Quality{
					Rating:  0,
					Remarks: fmt.Sprintf("No assets match the required %s criteria. Expected: %s", field.SubField, filterDesc),
				},
				ValidationCriteria: criteria,
				ValidationPrompt:   prompt,
			},
		}
	}

	var mv domain.MediaValidation
	if field.MediaValidation != nil {
		mv = *field.MediaValidation
	}
	issues := []string{}
	total, valid := 0, 0
	for _, i := range matching {
		found, deduction := checkAsset(assets[i], analyses[i], mv, subFieldStyle)
		issues = append(issues, found...)
		total += max(0, 100-deduction)
		if len(found) == 0 {
			valid++
		}
	}

	remarks := fmt.Sprintf("All %d matching %s assets meet requirements", len(matching), field.SubField)
	if len(issues) > 0 {
		remarks = fmt.Sprintf("%d of %d matching assets pass validation. Issues found in %d assets.", valid, len(matching), len(matching)-valid)
	}
	return outcome{
		branch:   branchSubField,
		success:  true,
		detailed: true,
		result: domain.ValidationResult{
			Passed:             len(issues) == 0,
			Issues:             issues,
			Quality:            &domain.Quality{Rating: roundedMean(total, len(matching)), Remarks: remarks},
			ValidationCriteria: criteria,
			ValidationPrompt:   prompt,
		},
	}
}

// wholeMedia validates every asset of the product.
func (e *Engine) wholeMedia(ctx context.Context, product domain.Product, fieldName string, field domain.FieldConfig) outcome {
	if fieldName != "media" {
		return outcome{
			branch:   branchMedia,
			success:  true,
			detailed: true,
			result: domain.ValidationResult{
				Issues:             []string{"Not a media field"},
				ValidationCriteria: []string{"Field type should be media"},
			},
		}
	}
	if len(product.Media) == 0 {
		return outcome{
			branch:   branchMedia,
			success:  true,
			detailed: true,
			result: domain.ValidationResult{
				Issues:             []string{"No media assets found"},
				Quality:            &domain.Quality{Rating: 0, Remarks: "No media assets available to validate"},
				ValidationCriteria: rules.MediaCriteria(field),
			},
		}
	}
	if field.MediaValidation == nil {
		return noMediaRules(branchMedia)
	}

	mv := *field.MediaValidation
	analyses := e.analyze(ctx, product.Media)
	issues := []string{}
	total, valid := 0, 0
	for i, asset := range product.Media {
		found, _ := checkAsset(asset, analyses[i], mv, wholeMediaStyle)
		issues = append(issues, found...)
		if len(found) == 0 {
			total += 100
			valid++
			continue
		}
		total += max(0, 100-15*len(found))
	}

	remarks := "All media assets meet the required specifications"
	if len(issues) > 0 {
		remarks = fmt.Sprintf("%d of %d assets pass validation", valid, len(product.Media))
	}
	return outcome{
		branch:   branchMedia,
		success:  true,
		detailed: true,
		result: domain.ValidationResult{
			Passed:             len(issues) == 0,
			Issues:             issues,
			Quality:            &domain.Quality{Rating: roundedMean(total, len(product.Media)), Remarks: remarks},
			ValidationCriteria: rules.MediaCriteria(field),
		},
	}
}

func noMediaRules(branch string) outcome {
	return outcome{
		branch:  branch,
		success: true,
		result: domain.ValidationResult{
			Passed:             true,
			Issues:             []string{},
			Quality:            &domain.Quality{Rating: 100, Remarks: "No validation rules defined for media assets"},
			ValidationCriteria: []string{"No specific media validation rules defined"},
		},
	}
}

// analyze probes every asset concurrently. Assets without a URL are not
// probed and get an empty analysis.
func (e *Engine) analyze(ctx context.Context, assets []domain.MediaAsset) []media.Analysis {
	urls := make([]string, 0, len(assets))
	index := make([]int, 0, len(assets))
	for i, a := range assets {
		if a.MediaURL != "" {
			urls = append(urls, a.MediaURL)
			index = append(index, i)
		}
	}
	out := make([]media.Analysis, len(assets))
	if len(urls) == 0 {
		return out
	}
	for j, a := range e.analyzer.AnalyzeAll(ctx, urls) {
		out[index[j]] = a
		if a.Error != "" {
			e.metrics.RecordMediaProbe("error")
		} else {
			e.metrics.RecordMediaProbe("ok")
		}
	}
	return out
}

type assetStyle struct {
	missingURL string
	typesLabel string
}

var (
	subFieldStyle   = assetStyle{missingURL: "Missing media URL", typesLabel: "Allowed types"}
	wholeMediaStyle = assetStyle{missingURL: "Missing URL", typesLabel: "Accepted types"}
)

// checkAsset runs the structural checks for one asset. It returns the
// prefixed issues and the total quality deduction they carry.
func checkAsset(asset domain.MediaAsset, a media.Analysis, mv domain.MediaValidation, style assetStyle) ([]string, int) {
	var issues []string
	deduction := 0
	add := func(issue string, points int) {
		issues = append(issues, fmt.Sprintf("Asset %s: %s", asset.AssetID, issue))
		deduction += points
	}

	if asset.MediaURL == "" {
		add(style.missingURL, 50)
		return issues, deduction
	}
	if mv.RequireHTTPS && !isHTTPS(asset.MediaURL) {
		add("URL must use HTTPS protocol", 25)
	}
	if issue, bad := fileTypeIssue(asset.MediaURL, mv.AllowedFileTypes, style.typesLabel); bad {
		add(issue, 20)
	}

	if a.Dimensions != nil {
		for _, issue := range media.ValidateDimensions(*a.Dimensions, mv) {
			add(issue, 15)
		}
		for _, issue := range media.ValidateAspectRatio(*a.Dimensions, mv) {
			add(issue, 20)
		}
	} else if mv.HasDimensionConstraints() {
		add("Could not analyze dimensions for validation", 10)
	}

	if a.FileSize > 0 {
		for _, issue := range media.ValidateFileSize(a.FileSize, mv) {
			add(issue, 15)
		}
	} else if mv.HasFileSizeConstraints() {
		add("Could not analyze file size for validation", 10)
	}

	if a.Error != "" {
		add("Analysis error - "+a.Error, 5)
	}
	return issues, deduction
}

func isHTTPS(url string) bool {
	return strings.HasPrefix(url, "https://")
}

func fileTypeIssue(url string, allowed []string, label string) (string, bool) {
	if len(allowed) == 0 {
		return "", false
	}
	ext := media.FileExtension(url)
	if ext != "" && slices.ContainsFunc(allowed, func(t string) bool { return strings.EqualFold(t, ext) }) {
		return "", false
	}
	if ext == "" {
		ext = "unknown"
	}
	return fmt.Sprintf("File type '%s' not allowed. %s: %s", ext, label, strings.Join(allowed, ", ")), true
}

func roundedMean(total, n int) int {
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(total) / float64(n)))
}

func subFieldPrompt(product domain.Product, field domain.FieldConfig, filterDesc string, assets []domain.MediaAsset, analyses []media.Analysis, matching []int, criteria []string) string {
	matches := make(map[int]bool, len(matching))
	for _, i := range matching {
		matches[i] = true
	}
	yesNo := func(b bool) string {
		if b {
			return "YES"
		}
		return "NO"
	}

	var b strings.Builder
	b.WriteString("Media Subfield Validation Analysis\n\n")
	fmt.Fprintf(&b, "Field: %s > %s\n", field.Name, field.SubField)
	fmt.Fprintf(&b, "Filter: %s\n", filterDesc)
	fmt.Fprintf(&b, "Product Category: %s\n\n", product.CategoryName)
	b.WriteString("Asset Analysis:\n")
	for i, asset := range assets {
		a := analyses[i]
		value, ok := asset.Attribute(field.SubField)
		if !ok {
			value = "undefined"
		}
		fileType := media.FileExtension(asset.MediaURL)
		if fileType == "" {
			fileType = "unknown"
		}
		dims := "Unknown"
		if a.Dimensions != nil {
			dims = fmt.Sprintf("%d×%dpx", a.Dimensions.Width, a.Dimensions.Height)
		}
		ratio := a.AspectRatio
		if ratio == "" {
			ratio = "Unknown"
		}
		size := "Unknown"
		if a.FileSize > 0 {
			size = fmt.Sprintf("%dKB", int(math.Round(float64(a.FileSize)/1024)))
		}
		analysisErr := ""
		if a.Error != "" {
			analysisErr = "Analysis Error: " + a.Error
		}
		fmt.Fprintf(&b, "\n- Asset ID: %s\n", asset.AssetID)
		fmt.Fprintf(&b, "  URL: %s\n", asset.MediaURL)
		fmt.Fprintf(&b, "  %s: \"%s\"\n", field.SubField, value)
		fmt.Fprintf(&b, "  Matches Filter: %s\n", yesNo(matches[i]))
		fmt.Fprintf(&b, "  File Type: %s\n", fileType)
		fmt.Fprintf(&b, "  HTTPS: %s\n", yesNo(isHTTPS(asset.MediaURL)))
		fmt.Fprintf(&b, "  Dimensions: %s\n", dims)
		fmt.Fprintf(&b, "  Aspect Ratio: %s\n", ratio)
		fmt.Fprintf(&b, "  File Size: %s\n", size)
		fmt.Fprintf(&b, "  %s\n", analysisErr)
	}
	b.WriteString("\n\nSummary:\n")
	fmt.Fprintf(&b, "- Total assets: %d\n", len(assets))
	fmt.Fprintf(&b, "- Matching assets: %d\n", len(matching))
	fmt.Fprintf(&b, "- Filter criteria: %s\n\n", filterDesc)
	b.WriteString("Validation Rules Applied:\n")
	b.WriteString(strings.Join(criteria, "\n"))
	return b.String()
}
