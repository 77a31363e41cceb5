package prompts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultTemplatesCarryRewriteAnchors(t *testing.T) {
	tmpl, err := Default()
	if err != nil {
		t.Fatalf("Default returned error: %v", err)
	}
	for _, anchor := range []string{
		"Please enhance the following {fieldName}",
		"Current Value:\n{currentValue}",
		"Please provide an improved version",
	} {
		if !strings.Contains(tmpl.Enhance, anchor) {
			t.Errorf("enhance template is missing %q", anchor)
		}
	}
	if tmpl.System.Validator == "" || tmpl.System.Evaluator == "" || tmpl.System.ContentOptimizer == "" {
		t.Fatalf("system prompts incomplete: %+v", tmpl.System)
	}
}

func TestLoadMergesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	if err := os.WriteFile(path, []byte("system:\n  validator: Custom validator\n"), 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}
	tmpl, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if tmpl.System.Validator != "Custom validator" {
		t.Fatalf("Validator = %q", tmpl.System.Validator)
	}
	def := MustDefault()
	if tmpl.Enhance != def.Enhance || tmpl.System.Evaluator != def.System.Evaluator {
		t.Fatal("override dropped embedded defaults")
	}
}

func TestRender(t *testing.T) {
	got := Render("Fix {fieldName} in {language}; keep {unknown}.", map[string]string{
		"fieldName": "name",
		"language":  "DE",
	})
	if got != "Fix name in DE; keep {unknown}." {
		t.Fatalf("Render = %q", got)
	}
}
