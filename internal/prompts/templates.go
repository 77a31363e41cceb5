// Package prompts holds the system prompts and the enhancement template.
// Defaults are embedded; a YAML file may override any of them.
package prompts

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var embeddedTemplates []byte

// System holds the system prompts per capability operation.
type System struct {
	Validator        string `yaml:"validator"`
	Evaluator        string `yaml:"evaluator"`
	ContentOptimizer string `yaml:"contentOptimizer"`
}

// Templates is the prompt catalogue used by validation and enhancement.
type Templates struct {
	System  System `yaml:"system"`
	Enhance string `yaml:"enhance"`
}

// Default returns the embedded templates.
func Default() (*Templates, error) {
	t := &Templates{}
	if err := yaml.Unmarshal(embeddedTemplates, t); err != nil {
		return nil, fmt.Errorf("parse embedded templates: %w", err)
	}
	return t, nil
}

// MustDefault is Default for callers that treat a broken embed as fatal.
func MustDefault() *Templates {
	t, err := Default()
	if err != nil {
		panic(err)
	}
	return t
}

// Load reads templates from path. Keys missing from the file keep their
// embedded defaults. An empty path returns the defaults.
func Load(path string) (*Templates, error) {
	t, err := Default()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(path) == "" {
		return t, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates %s: %w", path, err)
	}
	override := &Templates{}
	if err := yaml.Unmarshal(raw, override); err != nil {
		return nil, fmt.Errorf("parse templates %s: %w", path, err)
	}
	t.merge(override)
	return t, nil
}

func (t *Templates) merge(o *Templates) {
	if s := strings.TrimSpace(o.System.Validator); s != "" {
		t.System.Validator = o.System.Validator
	}
	if s := strings.TrimSpace(o.System.Evaluator); s != "" {
		t.System.Evaluator = o.System.Evaluator
	}
	if s := strings.TrimSpace(o.System.ContentOptimizer); s != "" {
		t.System.ContentOptimizer = o.System.ContentOptimizer
	}
	if s := strings.TrimSpace(o.Enhance); s != "" {
		t.Enhance = o.Enhance
	}
}

var placeholder = regexp.MustCompile(`\{([^}]+)\}`)

// Render substitutes {key} placeholders. Unknown keys are left verbatim.
func Render(tmpl string, values map[string]string) string {
	return placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		if v, ok := values[m[1:len(m)-1]]; ok {
			return v
		}
		return m
	})
}
