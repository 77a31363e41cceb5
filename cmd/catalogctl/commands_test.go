package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogstudio/internal/domain"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd(os.Stdout, os.Stderr)
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCheckPassesTitleCase(t *testing.T) {
	out, err := run(t, "check", "--field", "assortmentProductName", "Nitrile Examination Glove")
	require.NoError(t, err)
	var res domain.ValidationResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.Passed)
	assert.Empty(t, res.Issues)
}

func TestCheckReportsIssues(t *testing.T) {
	out, err := run(t, "check", "-f", "assortmentProductName", "nitrile glove")
	require.ErrorIs(t, err, errCheckFailed)
	var res domain.ValidationResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.False(t, res.Passed)
	assert.Contains(t, res.Issues, "Must be in Title Case format")
}

func TestCheckUnknownField(t *testing.T) {
	_, err := run(t, "check", "--field", "nope", "value")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no active configuration")
}

func TestCategories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"categories":[
	  {"name":"Gloves","products":[],"subcategories":[{"name":"Nitrile","products":[]}]},
	  {"name":"Wound Care","products":[]}
	]}`), 0o644))

	out, err := run(t, "--catalog", path, "categories")
	require.NoError(t, err)
	assert.Contains(t, out, "Gloves\n")
	assert.Contains(t, out, "Wound Care\n")
}

func TestCategoriesNeedsCatalog(t *testing.T) {
	t.Setenv("CATALOG_PATH", "")
	_, err := run(t, "categories")
	require.Error(t, err)
}

func TestSetKeyNeedsDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := run(t, "set-key", "--provider", "openai", "--key", "sk-test")
	require.EqualError(t, err, "DATABASE_URL is required")
}
