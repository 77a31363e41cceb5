package fields

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogstudio/internal/domain"
	"catalogstudio/internal/storage"
)

func emptySeed() ([]domain.FieldConfig, error) { return nil, nil }

func textField(name string, categories ...string) domain.FieldConfig {
	return domain.FieldConfig{
		Name:              name,
		FieldType:         domain.FieldTypeText,
		IsActive:          true,
		ProductCategories: categories,
	}
}

func TestRegistrySeedsDefaults(t *testing.T) {
	store := storage.NewMemoryStore()
	r := NewRegistry(store)

	all, err := r.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 6)
	assert.Equal(t, "assortmentProductName", all[0].Name)
	assert.NotEmpty(t, all[0].ID)
	assert.Equal(t, "Title Case with registered trademark symbols where applicable", all[0].Languages["EN"].Format)
	assert.Equal(t, domain.FieldTypeHTML, all[2].FieldType)

	// a second registry on the same store does not seed again
	again, err := NewRegistry(store).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, all[0].ID, again[0].ID)
}

func TestRegistryKeepsEmptyImport(t *testing.T) {
	r := NewRegistry(storage.NewMemoryStore())
	_, err := r.Import(context.Background(), nil)
	require.NoError(t, err)

	all, err := r.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all, "an explicitly emptied registry is not reseeded")
}

func TestRegistryDuplicates(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(storage.NewMemoryStore(), WithSeed(emptySeed))

	first, err := r.Create(ctx, textField("description", "Bandages", "Gloves"))
	require.NoError(t, err)

	_, err = r.Create(ctx, textField("Description", "Gloves"))
	assert.ErrorIs(t, err, domain.ErrDuplicateField)

	_, err = r.Create(ctx, textField("description", "Wipes"))
	require.NoError(t, err)

	universal, err := r.Create(ctx, textField("description"))
	require.NoError(t, err, "universal fields coexist with category specific ones")

	_, err = r.Update(ctx, universal.ID, textField("description", "Wipes"))
	assert.ErrorIs(t, err, domain.ErrDuplicateField)

	all, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3, "rejected writes change nothing")

	renamed := textField("description", "Bandages", "Gloves")
	renamed.DisplayName = "Long description"
	updated, err := r.Update(ctx, first.ID, renamed)
	require.NoError(t, err, "a field does not collide with itself")
	assert.Equal(t, first.ID, updated.ID)
}

func TestRegistryCopy(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(storage.NewMemoryStore(), WithSeed(emptySeed))

	src, err := r.Create(ctx, textField("claim", "Gloves"))
	require.NoError(t, err)

	c1, err := r.Copy(ctx, src.ID)
	require.NoError(t, err)
	assert.Equal(t, "claim (Copy)", c1.Name)
	assert.False(t, c1.IsActive)
	assert.NotEqual(t, src.ID, c1.ID)

	c2, err := r.Copy(ctx, src.ID)
	require.NoError(t, err)
	assert.Equal(t, "claim (Copy 2)", c2.Name)

	_, err = r.Copy(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegistryImportAndDelete(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(storage.NewMemoryStore())

	in := []domain.FieldConfig{textField("a"), textField("b")}
	in[0].ID = "keep-me"
	out, err := r.Import(ctx, in)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.NotEqual(t, "keep-me", out[0].ID)
	assert.NotNil(t, out[0].ContextFields)
	assert.Equal(t, domain.ApplicableToBase, out[0].ApplicableTo)

	require.NoError(t, r.Delete(ctx, out[0].ID))
	assert.ErrorIs(t, r.Delete(ctx, out[0].ID), domain.ErrNotFound)

	got, err := r.Get(ctx, out[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "b", got.Name)

	_, err = r.Import(ctx, []domain.FieldConfig{{Name: "x", FieldType: "audio"}})
	assert.ErrorIs(t, err, domain.ErrInvalidField)
}

func TestRegistrySeedFailure(t *testing.T) {
	r := NewRegistry(storage.NewMemoryStore(), WithSeed(func() ([]domain.FieldConfig, error) {
		return nil, errors.New("broken seed")
	}))
	_, err := r.List(context.Background())
	assert.Error(t, err)
}

func TestParseYAML(t *testing.T) {
	fields, err := ParseYAML([]byte(`
- name: packshot
  fieldType: media
  subField: productContentType
  subFieldFilter: {operator: equals, value: packshot}
  mediaValidation:
    allowedFileTypes: [jpg, png]
    requireHttps: true
    minWidth: 800
`))
	require.NoError(t, err)
	require.Len(t, fields, 1)
	require.NotNil(t, fields[0].MediaValidation)
	assert.Equal(t, 800, fields[0].MediaValidation.MinWidth)
	assert.Equal(t, domain.OperatorEquals, fields[0].SubFieldFilter.Operator)

	_, err = ParseYAML([]byte(`{not: [valid`))
	assert.Error(t, err)
}
