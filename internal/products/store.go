// Package products holds the enhanced working copies of catalog products.
package products

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"catalogstudio/internal/catalog"
	"catalogstudio/internal/domain"
	"catalogstudio/internal/infra"
	"catalogstudio/internal/storage"
)

type Options struct {
	Goldstandard domain.GoldstandardRepository
	Logger       *infra.Logger
	Now          func() time.Time
}

// Store overlays confirmed enhancements on the immutable catalog.
type Store struct {
	enhanced     *storage.Collection[domain.Product]
	catalog      *catalog.Catalog
	originals    []domain.Product
	goldstandard domain.GoldstandardRepository
	logger       zerolog.Logger
	now          func() time.Time
}

func New(store domain.BlobStore, cat *catalog.Catalog, opts Options) (*Store, error) {
	if cat == nil {
		cat = catalog.Empty()
	}
	originals, err := catalog.ExtractProducts(cat)
	if err != nil {
		return nil, err
	}
	s := &Store{
		enhanced:     storage.NewCollection[domain.Product](store, domain.CollectionEnhancedProducts),
		catalog:      cat,
		originals:    originals,
		goldstandard: opts.Goldstandard,
		logger:       zerolog.Nop(),
		now:          opts.Now,
	}
	if opts.Logger != nil {
		s.logger = *opts.Logger
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// Categories lists the catalog category names.
func (s *Store) Categories() []string {
	return catalog.ExtractCategoryNames(s.catalog)
}

// Originals returns the unmodified catalog products.
func (s *Store) Originals() []domain.Product {
	out := make([]domain.Product, len(s.originals))
	for i, p := range s.originals {
		out[i] = p.Clone()
	}
	return out
}

func (s *Store) original(code string) (domain.Product, bool) {
	for _, p := range s.originals {
		if p.Code == code {
			return p.Clone(), true
		}
	}
	return domain.Product{}, false
}

// Update stores the enhanced product under productID and adds every changed
// non-empty field to the goldstandard. Goldstandard failures are logged.
func (s *Store) Update(ctx context.Context, productID string, updated, original domain.Product, changedFields []string, lang string) error {
	updated = updated.Clone()
	_, err := s.enhanced.Update(ctx, func(items []domain.Product) ([]domain.Product, error) {
		for i, p := range items {
			if p.Identifier() == productID {
				items[i] = updated
				return items, nil
			}
		}
		return append(items, updated), nil
	})
	if err != nil {
		return fmt.Errorf("store enhanced product %s: %w", productID, err)
	}
	if s.goldstandard == nil {
		return nil
	}
	for _, field := range changedFields {
		content := updated.Text(field)
		if strings.TrimSpace(content) == "" {
			continue
		}
		added, err := s.goldstandard.AppendIfAbsent(ctx, domain.GoldstandardExample{
			Content:    content,
			FieldName:  field,
			Categories: []string{original.Category()},
			Products:   []string{productID},
			CreatedAt:  s.now().UTC(),
			Source:     domain.GoldstandardSourceAuto,
			Language:   lang,
		})
		if err != nil {
			s.logger.Warn().Err(err).Str("field", field).Str("product", productID).Msg("products: goldstandard auto-add failed")
			continue
		}
		if added {
			s.logger.Info().Str("field", field).Str("product", productID).Str("language", lang).Msg("products: auto-added goldstandard example")
		}
	}
	return nil
}

// GetProductData returns the enhanced version of a product, else the
// catalog original.
func (s *Store) GetProductData(ctx context.Context, code string) (domain.Product, error) {
	items, err := s.enhanced.Load(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	for _, p := range items {
		if p.Identifier() == code {
			return p, nil
		}
	}
	if p, ok := s.original(code); ok {
		return p, nil
	}
	return domain.Product{}, fmt.Errorf("product %s: %w", code, domain.ErrNotFound)
}

// List returns the catalog products with enhancements applied.
func (s *Store) List(ctx context.Context) ([]domain.Product, error) {
	items, err := s.enhanced.Load(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Product, len(items))
	for _, p := range items {
		byID[p.Identifier()] = p
	}
	out := make([]domain.Product, 0, len(s.originals))
	for _, p := range s.originals {
		if e, ok := byID[p.Code]; ok {
			out = append(out, e)
			continue
		}
		out = append(out, p.Clone())
	}
	return out, nil
}

// Stats summarizes how much of the catalog has been enhanced.
type Stats struct {
	TotalProducts         int `json:"totalProducts"`
	EnhancedProducts      int `json:"enhancedProducts"`
	EnhancementPercentage int `json:"enhancementPercentage"`
}

func (s *Store) Stats(ctx context.Context) (Stats, error) {
	items, err := s.enhanced.Load(ctx)
	if err != nil {
		return Stats{}, err
	}
	st := Stats{TotalProducts: len(s.originals), EnhancedProducts: len(items)}
	if st.TotalProducts > 0 {
		st.EnhancementPercentage = int(math.Round(float64(st.EnhancedProducts) / float64(st.TotalProducts) * 100))
	}
	return st, nil
}

// Reset drops every stored enhancement.
func (s *Store) Reset(ctx context.Context) error {
	return s.enhanced.Replace(ctx, nil)
}

type exportMetadata struct {
	ExportDate        time.Time `json:"exportDate"`
	ExportType        string    `json:"exportType"`
	EnhancementStats  Stats     `json:"enhancementStats"`
	TotalEnhancements int       `json:"totalEnhancements"`
}

// ExportCatalog renders the catalog with enhancements applied as a flat
// products list plus export metadata.
func (s *Store) ExportCatalog(ctx context.Context) ([]byte, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	st, err := s.Stats(ctx)
	if err != nil {
		return nil, err
	}
	doc := make(map[string]any, len(s.catalog.Raw)+2)
	for k, v := range s.catalog.Raw {
		doc[k] = v
	}
	doc["exportMetadata"] = exportMetadata{
		ExportDate:        s.now().UTC(),
		ExportType:        "enhanced_catalog",
		EnhancementStats:  st,
		TotalEnhancements: st.EnhancedProducts,
	}
	doc["products"] = list
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export catalog: %w", err)
	}
	return data, nil
}

// ExportName is the suggested download name for an export taken at t.
func ExportName(t time.Time) string {
	return fmt.Sprintf("enhanced_catalog_%s.json", t.UTC().Format(time.DateOnly))
}
