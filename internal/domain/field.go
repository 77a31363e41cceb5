package domain

import "strings"

// FieldType enumerates the content modalities a field rule governs.
type FieldType string

const (
	FieldTypeText  FieldType = "text"
	FieldTypeHTML  FieldType = "html"
	FieldTypeMedia FieldType = "media"
)

// ApplicableTo tells whether a rule targets base products, variants or both.
type ApplicableTo string

const (
	ApplicableToBase    ApplicableTo = "base"
	ApplicableToVariant ApplicableTo = "variant"
	ApplicableToBoth    ApplicableTo = "both"
)

// DefaultQualityThreshold is used when a field does not define its own threshold.
const DefaultQualityThreshold = 90

// DefaultLanguage is the language consulted when a field has no entry for the requested one.
const DefaultLanguage = "EN"

// GeneralRule holds the language independent fallback settings of a field.
type GeneralRule struct {
	Requirements          string `json:"requirements" yaml:"requirements"`
	Format                string `json:"format" yaml:"format"`
	SkipLanguageDetection bool   `json:"skipLanguageDetection,omitempty" yaml:"skipLanguageDetection,omitempty"`
}

// LanguageRule holds the per-language settings of a field.
type LanguageRule struct {
	Requirements     string `json:"requirements" yaml:"requirements"`
	Format           string `json:"format" yaml:"format"`
	Whitelist        string `json:"whitelist" yaml:"whitelist"`
	Blacklist        string `json:"blacklist" yaml:"blacklist"`
	PositiveExamples string `json:"positiveExamples" yaml:"positiveExamples"`
	NegativeExamples string `json:"negativeExamples" yaml:"negativeExamples"`
}

// SubFieldOperator enumerates the predicates a subfield filter supports.
type SubFieldOperator string

const (
	OperatorEquals     SubFieldOperator = "equals"
	OperatorContains   SubFieldOperator = "contains"
	OperatorStartsWith SubFieldOperator = "startsWith"
	OperatorEndsWith   SubFieldOperator = "endsWith"
	OperatorNotEquals  SubFieldOperator = "notEquals"
)

// SubFieldFilter restricts a media rule to the assets whose subfield matches.
type SubFieldFilter struct {
	Operator SubFieldOperator `json:"operator" yaml:"operator"`
	Value    string           `json:"value" yaml:"value"`
}

// MediaValidation describes structural constraints for media assets.
// File sizes are expressed in KB, dimensions in pixels. Zero means unset.
type MediaValidation struct {
	AllowedFileTypes    []string `json:"allowedFileTypes" yaml:"allowedFileTypes"`
	AspectRatio         string   `json:"aspectRatio,omitempty" yaml:"aspectRatio,omitempty"`
	AllowedAspectRatios []string `json:"allowedAspectRatios,omitempty" yaml:"allowedAspectRatios,omitempty"`
	MinWidth            int      `json:"minWidth,omitempty" yaml:"minWidth,omitempty"`
	MaxWidth            int      `json:"maxWidth,omitempty" yaml:"maxWidth,omitempty"`
	MinHeight           int      `json:"minHeight,omitempty" yaml:"minHeight,omitempty"`
	MaxHeight           int      `json:"maxHeight,omitempty" yaml:"maxHeight,omitempty"`
	MinFileSize         int      `json:"minFileSize,omitempty" yaml:"minFileSize,omitempty"`
	MaxFileSize         int      `json:"maxFileSize,omitempty" yaml:"maxFileSize,omitempty"`
	RequireHTTPS        bool     `json:"requireHttps" yaml:"requireHttps"`
	MediaCountMin       int      `json:"mediaCountMin,omitempty" yaml:"mediaCountMin,omitempty"`
	MediaCountMax       int      `json:"mediaCountMax,omitempty" yaml:"mediaCountMax,omitempty"`
	MediaCountOptimal   int      `json:"mediaCountOptimal,omitempty" yaml:"mediaCountOptimal,omitempty"`
}

// HasDimensionConstraints reports whether any width, height or ratio rule is set.
func (m MediaValidation) HasDimensionConstraints() bool {
	return m.MinWidth > 0 || m.MaxWidth > 0 || m.MinHeight > 0 || m.MaxHeight > 0 ||
		m.AspectRatio != "" || len(m.AllowedAspectRatios) > 0
}

// HasFileSizeConstraints reports whether a file size bound is set.
func (m MediaValidation) HasFileSizeConstraints() bool {
	return m.MinFileSize > 0 || m.MaxFileSize > 0
}

// FieldConfig is a named content rule for one product attribute.
type FieldConfig struct {
	ID                string                  `json:"id" yaml:"id,omitempty"`
	Name              string                  `json:"name" yaml:"name"`
	DisplayName       string                  `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	SubField          string                  `json:"subField,omitempty" yaml:"subField,omitempty"`
	FieldType         FieldType               `json:"fieldType" yaml:"fieldType"`
	ApplicableTo      ApplicableTo            `json:"applicableTo" yaml:"applicableTo"`
	IsActive          bool                    `json:"isActive" yaml:"isActive"`
	IsMandatory       bool                    `json:"isMandatory,omitempty" yaml:"isMandatory,omitempty"`
	General           *GeneralRule            `json:"general,omitempty" yaml:"general,omitempty"`
	Languages         map[string]LanguageRule `json:"languages" yaml:"languages"`
	ProductCategories []string                `json:"productCategories" yaml:"productCategories"`
	QualityThreshold  *int                    `json:"qualityThreshold,omitempty" yaml:"qualityThreshold,omitempty"`
	MediaValidation   *MediaValidation        `json:"mediaValidation,omitempty" yaml:"mediaValidation,omitempty"`
	SubFieldFilter    *SubFieldFilter         `json:"subFieldFilter,omitempty" yaml:"subFieldFilter,omitempty"`
	ContextFields     []string                `json:"contextFields" yaml:"contextFields"`
	UseClaimList      bool                    `json:"useClaimList,omitempty" yaml:"useClaimList,omitempty"`
}

// Threshold returns the configured quality threshold or the default of 90.
func (f FieldConfig) Threshold() int {
	if f.QualityThreshold == nil || *f.QualityThreshold <= 0 {
		return DefaultQualityThreshold
	}
	return *f.QualityThreshold
}

// IsUniversal reports whether the field applies to every category.
func (f FieldConfig) IsUniversal() bool {
	return len(f.ProductCategories) == 0
}

// IsMedia reports whether the field governs media assets.
func (f FieldConfig) IsMedia() bool {
	return f.FieldType == FieldTypeMedia
}

// Label returns the display name when present, otherwise the technical name.
func (f FieldConfig) Label() string {
	if strings.TrimSpace(f.DisplayName) != "" {
		return f.DisplayName
	}
	return f.Name
}

// Clone returns a deep copy so callers can mutate slices and maps freely.
func (f FieldConfig) Clone() FieldConfig {
	out := f
	if f.General != nil {
		g := *f.General
		out.General = &g
	}
	if f.Languages != nil {
		out.Languages = make(map[string]LanguageRule, len(f.Languages))
		for k, v := range f.Languages {
			out.Languages[k] = v
		}
	}
	out.ProductCategories = append([]string(nil), f.ProductCategories...)
	out.ContextFields = append([]string(nil), f.ContextFields...)
	if f.QualityThreshold != nil {
		t := *f.QualityThreshold
		out.QualityThreshold = &t
	}
	if f.MediaValidation != nil {
		mv := *f.MediaValidation
		mv.AllowedFileTypes = append([]string(nil), f.MediaValidation.AllowedFileTypes...)
		mv.AllowedAspectRatios = append([]string(nil), f.MediaValidation.AllowedAspectRatios...)
		out.MediaValidation = &mv
	}
	if f.SubFieldFilter != nil {
		sf := *f.SubFieldFilter
		out.SubFieldFilter = &sf
	}
	return out
}

// SupportedLanguages are the content languages the catalog is maintained in.
var SupportedLanguages = []string{"EN", "DE", "FR"}
