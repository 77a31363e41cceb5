// Package corpus stores the goldstandard examples and product claims that
// ground enhancement prompts.
package corpus

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"catalogstudio/internal/domain"
	"catalogstudio/internal/storage"
)

// Goldstandard is the persisted list of exemplar contents, newest first.
type Goldstandard struct {
	items *storage.Collection[domain.GoldstandardExample]
	now   func() time.Time
}

func NewGoldstandard(store domain.BlobStore) *Goldstandard {
	return &Goldstandard{
		items: storage.NewCollection[domain.GoldstandardExample](store, domain.CollectionGoldstandardExamples),
		now:   time.Now,
	}
}

// List returns every example.
func (g *Goldstandard) List(ctx context.Context) ([]domain.GoldstandardExample, error) {
	return g.items.Load(ctx)
}

// FindByFieldAndLanguage returns the examples whose field name and language
// match exactly, in stored order.
func (g *Goldstandard) FindByFieldAndLanguage(ctx context.Context, fieldName, language string) ([]domain.GoldstandardExample, error) {
	all, err := g.items.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.GoldstandardExample, 0)
	for _, ex := range all {
		if ex.FieldName == fieldName && ex.Language == language {
			out = append(out, ex)
		}
	}
	return out, nil
}

// AppendIfAbsent prepends the example unless one with the same field, content
// and language exists. It reports whether the example was added.
func (g *Goldstandard) AppendIfAbsent(ctx context.Context, example domain.GoldstandardExample) (bool, error) {
	added := false
	_, err := g.items.Update(ctx, func(items []domain.GoldstandardExample) ([]domain.GoldstandardExample, error) {
		for _, ex := range items {
			if ex.SameContent(example) {
				return items, nil
			}
		}
		added = true
		return append([]domain.GoldstandardExample{g.stamp(example)}, items...), nil
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

// Add stores a manually curated example at the front of the list.
func (g *Goldstandard) Add(ctx context.Context, example domain.GoldstandardExample) (domain.GoldstandardExample, error) {
	if strings.TrimSpace(example.Content) == "" || strings.TrimSpace(example.FieldName) == "" {
		return domain.GoldstandardExample{}, fmt.Errorf("goldstandard example needs content and field name: %w", domain.ErrInvalidField)
	}
	if example.Language == "" {
		example.Language = domain.DefaultLanguage
	}
	example = g.stamp(example)
	_, err := g.items.Update(ctx, func(items []domain.GoldstandardExample) ([]domain.GoldstandardExample, error) {
		return append([]domain.GoldstandardExample{example}, items...), nil
	})
	if err != nil {
		return domain.GoldstandardExample{}, err
	}
	return example, nil
}

// Delete removes the example with id.
func (g *Goldstandard) Delete(ctx context.Context, id string) error {
	_, err := g.items.Update(ctx, func(items []domain.GoldstandardExample) ([]domain.GoldstandardExample, error) {
		return removeByID(items, id, func(ex domain.GoldstandardExample) string { return ex.ID })
	})
	return err
}

func (g *Goldstandard) stamp(ex domain.GoldstandardExample) domain.GoldstandardExample {
	if ex.ID == "" {
		ex.ID = uuid.NewString()
	}
	if ex.CreatedAt.IsZero() {
		ex.CreatedAt = g.now().UTC()
	}
	if ex.Categories == nil {
		ex.Categories = []string{}
	}
	if ex.Products == nil {
		ex.Products = []string{}
	}
	return ex
}

func removeByID[T any](items []T, id string, key func(T) string) ([]T, error) {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if key(it) != id {
			out = append(out, it)
		}
	}
	if len(out) == len(items) {
		return nil, fmt.Errorf("%s: %w", id, domain.ErrNotFound)
	}
	return out, nil
}

var _ domain.GoldstandardRepository = (*Goldstandard)(nil)
