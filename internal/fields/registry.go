// Package fields manages the field configuration registry.
package fields

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"catalogstudio/internal/domain"
	"catalogstudio/internal/infra"
	"catalogstudio/internal/storage"
)

// Registry persists field configurations. An empty store is seeded with the
// embedded defaults on first use.
type Registry struct {
	items  *storage.Collection[domain.FieldConfig]
	seed   func() ([]domain.FieldConfig, error)
	logger infra.Logger

	seedMu sync.Mutex
	seeded bool
}

type Option func(*Registry)

// WithSeed replaces the embedded default fields.
func WithSeed(seed func() ([]domain.FieldConfig, error)) Option {
	return func(r *Registry) { r.seed = seed }
}

func WithLogger(logger infra.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

func NewRegistry(store domain.BlobStore, opts ...Option) *Registry {
	r := &Registry{
		items:  storage.NewCollection[domain.FieldConfig](store, domain.CollectionFields),
		seed:   DefaultFields,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) ensureSeeded(ctx context.Context) error {
	r.seedMu.Lock()
	defer r.seedMu.Unlock()
	if r.seeded {
		return nil
	}
	exists, err := r.items.Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		defaults, err := r.seed()
		if err != nil {
			return err
		}
		seeded := make([]domain.FieldConfig, 0, len(defaults))
		for _, f := range defaults {
			seeded = append(seeded, normalize(f, uuid.NewString()))
		}
		if err := r.items.Replace(ctx, seeded); err != nil {
			return err
		}
		r.logger.Info().Int("count", len(seeded)).Msg("fields: seeded default configuration")
	}
	r.seeded = true
	return nil
}

// List returns all field configurations in stored order.
func (r *Registry) List(ctx context.Context) ([]domain.FieldConfig, error) {
	if err := r.ensureSeeded(ctx); err != nil {
		return nil, err
	}
	return r.items.Load(ctx)
}

func (r *Registry) Get(ctx context.Context, id string) (domain.FieldConfig, error) {
	all, err := r.List(ctx)
	if err != nil {
		return domain.FieldConfig{}, err
	}
	for _, f := range all {
		if f.ID == id {
			return f, nil
		}
	}
	return domain.FieldConfig{}, fmt.Errorf("field %s: %w", id, domain.ErrNotFound)
}

// Create stores a new field. It fails with ErrDuplicateField when another
// field of the same name shares a product category.
func (r *Registry) Create(ctx context.Context, field domain.FieldConfig) (domain.FieldConfig, error) {
	if err := validate(field); err != nil {
		return domain.FieldConfig{}, err
	}
	if err := r.ensureSeeded(ctx); err != nil {
		return domain.FieldConfig{}, err
	}
	created := normalize(field, uuid.NewString())
	_, err := r.items.Update(ctx, func(items []domain.FieldConfig) ([]domain.FieldConfig, error) {
		if IsDuplicate(items, created) {
			return nil, domain.ErrDuplicateField
		}
		return append(items, created), nil
	})
	if err != nil {
		return domain.FieldConfig{}, err
	}
	return created, nil
}

// Update replaces the field with id, keeping the id.
func (r *Registry) Update(ctx context.Context, id string, field domain.FieldConfig) (domain.FieldConfig, error) {
	if err := validate(field); err != nil {
		return domain.FieldConfig{}, err
	}
	if err := r.ensureSeeded(ctx); err != nil {
		return domain.FieldConfig{}, err
	}
	updated := normalize(field, id)
	_, err := r.items.Update(ctx, func(items []domain.FieldConfig) ([]domain.FieldConfig, error) {
		idx := indexOf(items, id)
		if idx < 0 {
			return nil, fmt.Errorf("field %s: %w", id, domain.ErrNotFound)
		}
		if IsDuplicate(items, updated) {
			return nil, domain.ErrDuplicateField
		}
		items[idx] = updated
		return items, nil
	})
	if err != nil {
		return domain.FieldConfig{}, err
	}
	return updated, nil
}

func (r *Registry) Delete(ctx context.Context, id string) error {
	if err := r.ensureSeeded(ctx); err != nil {
		return err
	}
	_, err := r.items.Update(ctx, func(items []domain.FieldConfig) ([]domain.FieldConfig, error) {
		idx := indexOf(items, id)
		if idx < 0 {
			return nil, fmt.Errorf("field %s: %w", id, domain.ErrNotFound)
		}
		return append(items[:idx], items[idx+1:]...), nil
	})
	return err
}

// Copy appends an inactive duplicate named "<name> (Copy)" or
// "<name> (Copy N)" for the first free N.
func (r *Registry) Copy(ctx context.Context, id string) (domain.FieldConfig, error) {
	if err := r.ensureSeeded(ctx); err != nil {
		return domain.FieldConfig{}, err
	}
	var copied domain.FieldConfig
	_, err := r.items.Update(ctx, func(items []domain.FieldConfig) ([]domain.FieldConfig, error) {
		idx := indexOf(items, id)
		if idx < 0 {
			return nil, fmt.Errorf("field %s: %w", id, domain.ErrNotFound)
		}
		src := items[idx]
		copied = normalize(src.Clone(), uuid.NewString())
		copied.Name = copyName(items, src.Name)
		copied.IsActive = false
		return append(items, copied), nil
	})
	if err != nil {
		return domain.FieldConfig{}, err
	}
	return copied, nil
}

// Import replaces the whole registry. Every imported field gets a new id.
func (r *Registry) Import(ctx context.Context, fields []domain.FieldConfig) ([]domain.FieldConfig, error) {
	out := make([]domain.FieldConfig, 0, len(fields))
	for i, f := range fields {
		if err := validate(f); err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		out = append(out, normalize(f, uuid.NewString()))
	}
	r.seedMu.Lock()
	defer r.seedMu.Unlock()
	if err := r.items.Replace(ctx, out); err != nil {
		return nil, err
	}
	r.seeded = true
	return out, nil
}

// IsDuplicate reports whether candidate collides with another field: same
// name ignoring case and at least one shared category. Universal fields never
// collide.
func IsDuplicate(existing []domain.FieldConfig, candidate domain.FieldConfig) bool {
	for _, f := range existing {
		if f.ID == candidate.ID {
			continue
		}
		if !strings.EqualFold(f.Name, candidate.Name) {
			continue
		}
		if f.IsUniversal() || candidate.IsUniversal() {
			continue
		}
		for _, c := range f.ProductCategories {
			for _, other := range candidate.ProductCategories {
				if c == other {
					return true
				}
			}
		}
	}
	return false
}

func copyName(items []domain.FieldConfig, name string) string {
	taken := make(map[string]struct{}, len(items))
	for _, f := range items {
		taken[f.Name] = struct{}{}
	}
	candidate := name + " (Copy)"
	for n := 2; ; n++ {
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
		candidate = fmt.Sprintf("%s (Copy %d)", name, n)
	}
}

func validate(f domain.FieldConfig) error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("name is required: %w", domain.ErrInvalidField)
	}
	switch f.FieldType {
	case domain.FieldTypeText, domain.FieldTypeHTML, domain.FieldTypeMedia:
	default:
		return fmt.Errorf("unknown field type %q: %w", f.FieldType, domain.ErrInvalidField)
	}
	switch f.ApplicableTo {
	case "", domain.ApplicableToBase, domain.ApplicableToVariant, domain.ApplicableToBoth:
	default:
		return fmt.Errorf("unknown applicableTo %q: %w", f.ApplicableTo, domain.ErrInvalidField)
	}
	if f.SubFieldFilter != nil && strings.TrimSpace(f.SubField) == "" {
		return fmt.Errorf("subfield filter without subfield: %w", domain.ErrInvalidField)
	}
	return nil
}

func normalize(f domain.FieldConfig, id string) domain.FieldConfig {
	f.ID = id
	f.Name = strings.TrimSpace(f.Name)
	if f.ApplicableTo == "" {
		f.ApplicableTo = domain.ApplicableToBase
	}
	if f.Languages == nil {
		f.Languages = map[string]domain.LanguageRule{}
	}
	if f.ProductCategories == nil {
		f.ProductCategories = []string{}
	}
	if f.ContextFields == nil {
		f.ContextFields = []string{}
	}
	return f
}

func indexOf(items []domain.FieldConfig, id string) int {
	for i, f := range items {
		if f.ID == id {
			return i
		}
	}
	return -1
}

var _ domain.FieldSource = (*Registry)(nil)
