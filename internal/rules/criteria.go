package rules

import (
	"fmt"
	"strings"

	"catalogstudio/internal/domain"
)

const noMediaRules = "No specific media validation rules defined"

// TextCriteria lists the human readable rules a text field is checked against.
func TextCriteria(field domain.FieldConfig, lang string) []string {
	rule := Resolve(field, lang)
	var out []string
	if rule.Requirements != "" {
		out = append(out, "Requirements: "+rule.Requirements)
	}
	if rule.Format != "" {
		out = append(out, "Format: "+rule.Format)
	}
	if rule.Whitelist != "" {
		out = append(out, "Must include terms: "+rule.Whitelist)
	}
	if rule.Blacklist != "" {
		out = append(out, "Must not include terms: "+rule.Blacklist)
	}
	return append(out, "Language: "+lang)
}

// MediaCriteria lists the structural media rules of field.
func MediaCriteria(field domain.FieldConfig) []string {
	mv := field.MediaValidation
	if mv == nil {
		return []string{noMediaRules}
	}
	var out []string
	if mv.RequireHTTPS {
		out = append(out, "HTTPS URLs required")
	}
	if len(mv.AllowedFileTypes) > 0 {
		out = append(out, "Allowed file types: "+strings.Join(mv.AllowedFileTypes, ", "))
	}
	if mv.AspectRatio != "" {
		out = append(out, "Required aspect ratio: "+mv.AspectRatio)
	}
	if len(mv.AllowedAspectRatios) > 0 {
		out = append(out, "Allowed aspect ratios: "+strings.Join(mv.AllowedAspectRatios, ", "))
	}
	if r := bounds(mv.MinWidth, mv.MaxWidth, "px"); r != "" {
		out = append(out, "Width constraints: "+r)
	}
	if r := bounds(mv.MinHeight, mv.MaxHeight, "px"); r != "" {
		out = append(out, "Height constraints: "+r)
	}
	if r := bounds(mv.MinFileSize, mv.MaxFileSize, "KB"); r != "" {
		out = append(out, "File size constraints: "+r)
	}
	var count []string
	if mv.MediaCountMin > 0 {
		count = append(count, fmt.Sprintf("min: %d", mv.MediaCountMin))
	}
	if mv.MediaCountMax > 0 {
		count = append(count, fmt.Sprintf("max: %d", mv.MediaCountMax))
	}
	if mv.MediaCountOptimal > 0 {
		count = append(count, fmt.Sprintf("optimal: %d", mv.MediaCountOptimal))
	}
	if len(count) > 0 {
		out = append(out, "Asset count requirements: "+strings.Join(count, ", "))
	}
	return out
}

func bounds(lo, hi int, unit string) string {
	var parts []string
	if lo > 0 {
		parts = append(parts, fmt.Sprintf("min: %d%s", lo, unit))
	}
	if hi > 0 {
		parts = append(parts, fmt.Sprintf("max: %d%s", hi, unit))
	}
	return strings.Join(parts, ", ")
}

// FilterDescription renders a subfield filter as `sub op "value"`.
func FilterDescription(subField string, filter domain.SubFieldFilter) string {
	return fmt.Sprintf("%s %s \"%s\"", subField, filter.Operator, filter.Value)
}
