package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"catalogstudio/internal/domain"
)

// Collection is a JSON array of T stored as one document. Writers are
// serialized within the process; each Update is a read-modify-write of the
// whole array.
type Collection[T any] struct {
	store domain.BlobStore
	name  string
	mu    sync.Mutex
}

func NewCollection[T any](store domain.BlobStore, name string) *Collection[T] {
	return &Collection[T]{store: store, name: name}
}

// Name returns the logical document name.
func (c *Collection[T]) Name() string { return c.name }

// Load returns all items. A document that was never written is empty.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	data, err := c.store.Get(ctx, c.name)
	if errors.Is(err, domain.ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", c.name, err)
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.name, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Exists reports whether the document was ever written.
func (c *Collection[T]) Exists(ctx context.Context) (bool, error) {
	_, err := c.store.Get(ctx, c.name)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Update loads the items, applies fn and stores the result. Nothing is
// written when fn fails.
func (c *Collection[T]) Update(ctx context.Context, fn func([]T) ([]T, error)) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, err := c.Load(ctx)
	if err != nil {
		return nil, err
	}
	next, err := fn(items)
	if err != nil {
		return nil, err
	}
	if err := c.save(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Replace overwrites the whole collection.
func (c *Collection[T]) Replace(ctx context.Context, items []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.save(ctx, items)
}

func (c *Collection[T]) save(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.name, err)
	}
	if err := c.store.Put(ctx, c.name, data); err != nil {
		return fmt.Errorf("save %s: %w", c.name, err)
	}
	return nil
}
