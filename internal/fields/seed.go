package fields

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"catalogstudio/internal/domain"
)

//go:embed default_fields.yaml
var defaultFields []byte

// DefaultFields returns the embedded seed set without ids.
func DefaultFields() ([]domain.FieldConfig, error) {
	return ParseYAML(defaultFields)
}

// ParseYAML decodes a YAML list of field configurations.
func ParseYAML(data []byte) ([]domain.FieldConfig, error) {
	var out []domain.FieldConfig
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse fields: %w", err)
	}
	return out, nil
}

// LoadFile reads a YAML or JSON field list from path. JSON is valid YAML.
func LoadFile(path string) ([]domain.FieldConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseYAML(data)
}
