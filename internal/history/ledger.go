// Package history keeps the append-only audit trail of enhancements.
package history

import (
	"context"
	"time"

	"catalogstudio/internal/domain"
	"catalogstudio/internal/storage"
)

type Ledger struct {
	entries *storage.Collection[domain.HistoryEntry]
	now     func() time.Time
}

func NewLedger(store domain.BlobStore) *Ledger {
	return &Ledger{
		entries: storage.NewCollection[domain.HistoryEntry](store, domain.CollectionEnhancementHistory),
		now:     time.Now,
	}
}

// Append adds entry at the end. A zero timestamp is set to now.
func (l *Ledger) Append(ctx context.Context, entry domain.HistoryEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = l.now().UTC()
	}
	_, err := l.entries.Update(ctx, func(items []domain.HistoryEntry) ([]domain.HistoryEntry, error) {
		return append(items, entry), nil
	})
	return err
}

func (l *Ledger) List(ctx context.Context) ([]domain.HistoryEntry, error) {
	return l.entries.Load(ctx)
}

// ForProductField returns the entries of one product field in append order.
func (l *Ledger) ForProductField(ctx context.Context, productID, field string) ([]domain.HistoryEntry, error) {
	all, err := l.entries.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.HistoryEntry, 0)
	for _, e := range all {
		if e.ProductID == productID && e.Field == field {
			out = append(out, e)
		}
	}
	return out, nil
}

// Clear drops the whole trail.
func (l *Ledger) Clear(ctx context.Context) error {
	return l.entries.Replace(ctx, nil)
}

var _ domain.HistoryLedger = (*Ledger)(nil)
