package rules

import (
	"slices"
	"sort"
	"strings"

	"catalogstudio/internal/domain"
)

// SubFieldSeparator joins a field and its subfield in a request name.
const SubFieldSeparator = " > "

// AppliesToCategory reports whether field governs products of category.
// Fields without categories apply everywhere.
func AppliesToCategory(field domain.FieldConfig, category string) bool {
	return field.IsUniversal() || slices.Contains(field.ProductCategories, category)
}

// SelectApplicable keeps the fields applicable to category. Category
// specific fields are ordered ahead of universal ones; relative order is
// otherwise preserved.
func SelectApplicable(fields []domain.FieldConfig, category string) []domain.FieldConfig {
	var out []domain.FieldConfig
	for _, f := range fields {
		if AppliesToCategory(f, category) {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return !out[i].IsUniversal() && out[j].IsUniversal()
	})
	return out
}

// SplitFieldName splits "main > sub" into its parts.
func SplitFieldName(name string) (main, sub string, ok bool) {
	main, sub, ok = strings.Cut(name, SubFieldSeparator)
	return main, sub, ok
}

// MatchName selects the active fields addressed by name. A "main > sub" name
// selects subfield configurations; a plain name selects configurations
// without a subfield.
func MatchName(fields []domain.FieldConfig, name string) []domain.FieldConfig {
	main, sub, isSub := SplitFieldName(name)
	var out []domain.FieldConfig
	for _, f := range fields {
		if !f.IsActive {
			continue
		}
		if isSub {
			if f.Name == main && f.SubField == sub {
				out = append(out, f)
			}
			continue
		}
		if f.Name == name && f.SubField == "" {
			out = append(out, f)
		}
	}
	return out
}

// MatchNameFold selects active fields whose name equals name ignoring case.
func MatchNameFold(fields []domain.FieldConfig, name string) []domain.FieldConfig {
	var out []domain.FieldConfig
	for _, f := range fields {
		if f.IsActive && strings.EqualFold(f.Name, name) {
			out = append(out, f)
		}
	}
	return out
}

// MediaFieldFor returns the media configuration that governs category.
func MediaFieldFor(fields []domain.FieldConfig, category string) (domain.FieldConfig, bool) {
	var media []domain.FieldConfig
	for _, f := range fields {
		if f.IsActive && f.IsMedia() {
			media = append(media, f)
		}
	}
	applicable := SelectApplicable(media, category)
	if len(applicable) == 0 {
		return domain.FieldConfig{}, false
	}
	return applicable[0], true
}
