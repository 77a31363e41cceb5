package rules

import (
	"strings"

	"catalogstudio/internal/domain"
)

// MatchesSubField evaluates filter against the named asset attribute.
// Absent or empty attributes never match, whatever the operator.
func MatchesSubField(asset domain.MediaAsset, subField string, filter domain.SubFieldFilter) bool {
	v, ok := asset.Attribute(subField)
	if !ok {
		return false
	}
	switch filter.Operator {
	case domain.OperatorEquals:
		return v == filter.Value
	case domain.OperatorContains:
		return strings.Contains(v, filter.Value)
	case domain.OperatorStartsWith:
		return strings.HasPrefix(v, filter.Value)
	case domain.OperatorEndsWith:
		return strings.HasSuffix(v, filter.Value)
	case domain.OperatorNotEquals:
		return v != filter.Value
	default:
		return false
	}
}

// FilterAssets returns the assets matching the field's subfield filter.
func FilterAssets(assets []domain.MediaAsset, subField string, filter domain.SubFieldFilter) []domain.MediaAsset {
	var out []domain.MediaAsset
	for _, a := range assets {
		if MatchesSubField(a, subField, filter) {
			out = append(out, a)
		}
	}
	return out
}
