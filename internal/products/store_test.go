package products

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogstudio/internal/catalog"
	"catalogstudio/internal/domain"
	"catalogstudio/internal/storage"
)

type fakeGoldstandard struct {
	added []domain.GoldstandardExample
	err   error
}

func (f *fakeGoldstandard) FindByFieldAndLanguage(context.Context, string, string) ([]domain.GoldstandardExample, error) {
	return f.added, nil
}

func (f *fakeGoldstandard) AppendIfAbsent(_ context.Context, ex domain.GoldstandardExample) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.added = append(f.added, ex)
	return true, nil
}

const sample = `{"catalogId":"c1","categories":[{"name":"Gloves","products":[
  {"code":"P1","name":"Nitrile","description":"Old"},
  {"code":"P2","name":"Latex"},
  {"code":"P3","name":"Vinyl"}
]}]}`

func newStore(t *testing.T, gold domain.GoldstandardRepository) *Store {
	t.Helper()
	cat, err := catalog.Load(strings.NewReader(sample))
	require.NoError(t, err)
	s, err := New(storage.NewMemoryStore(), cat, Options{
		Goldstandard: gold,
		Now:          func() time.Time { return time.Date(2026, 6, 2, 8, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return s
}

func TestUpdateAndGetProductData(t *testing.T) {
	gold := &fakeGoldstandard{}
	s := newStore(t, gold)
	ctx := context.Background()

	original, err := s.GetProductData(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, "Old", original.Text("description"))

	updated := original.WithValue("description", "New text").WithValue("claim", "  ")
	require.NoError(t, s.Update(ctx, "P1", updated, original, []string{"description", "claim"}, "DE"))

	got, err := s.GetProductData(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, "New text", got.Text("description"))

	require.Len(t, gold.added, 1, "blank fields are not harvested")
	ex := gold.added[0]
	assert.Equal(t, "description", ex.FieldName)
	assert.Equal(t, "DE", ex.Language)
	assert.Equal(t, []string{"Gloves"}, ex.Categories)
	assert.Equal(t, []string{"P1"}, ex.Products)
	assert.Equal(t, domain.GoldstandardSourceAuto, ex.Source)

	// a second update replaces the first
	require.NoError(t, s.Update(ctx, "P1", updated.WithValue("description", "Newer"), original, nil, "DE"))
	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{TotalProducts: 3, EnhancedProducts: 1, EnhancementPercentage: 33}, st)

	_, err = s.GetProductData(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateToleratesGoldstandardFailure(t *testing.T) {
	s := newStore(t, &fakeGoldstandard{err: errors.New("disk full")})
	p, err := s.GetProductData(context.Background(), "P2")
	require.NoError(t, err)
	assert.NoError(t, s.Update(context.Background(), "P2", p.WithValue("name", "Latex Pro"), p, []string{"name"}, "EN"))
}

func TestListResetExport(t *testing.T) {
	s := newStore(t, nil)
	ctx := context.Background()
	p, err := s.GetProductData(ctx, "P2")
	require.NoError(t, err)
	require.NoError(t, s.Update(ctx, "P2", p.WithValue("name", "Latex Pro"), p, []string{"name"}, "EN"))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Latex Pro", list[1].Name)

	data, err := s.ExportCatalog(ctx)
	require.NoError(t, err)
	var doc struct {
		CatalogID      string `json:"catalogId"`
		ExportMetadata struct {
			ExportType        string `json:"exportType"`
			TotalEnhancements int    `json:"totalEnhancements"`
		} `json:"exportMetadata"`
		Products []domain.Product `json:"products"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "c1", doc.CatalogID)
	assert.Equal(t, "enhanced_catalog", doc.ExportMetadata.ExportType)
	assert.Equal(t, 1, doc.ExportMetadata.TotalEnhancements)
	require.Len(t, doc.Products, 3)
	assert.Equal(t, "Latex Pro", doc.Products[1].Name)
	assert.Equal(t, "enhanced_catalog_2026-06-02.json", ExportName(time.Date(2026, 6, 2, 23, 0, 0, 0, time.UTC)))

	require.NoError(t, s.Reset(ctx))
	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, st.EnhancedProducts)
	assert.Equal(t, []string{"Gloves"}, s.Categories())
}
