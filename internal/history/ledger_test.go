package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogstudio/internal/domain"
	"catalogstudio/internal/storage"
)

func TestLedger(t *testing.T) {
	l := NewLedger(storage.NewMemoryStore())
	l.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	ctx := context.Background()
	user := domain.Actor{ID: "u1", Name: "Ada", Email: "ada@example.com", Role: domain.UserRoleEditor}

	require.NoError(t, l.Append(ctx, domain.HistoryEntry{User: user, ProductID: "P1", ProductCode: "P1", Field: "description", Before: "a", After: "b"}))
	require.NoError(t, l.Append(ctx, domain.HistoryEntry{User: user, ProductID: "P1", ProductCode: "P1", Field: "name", Before: "x", After: "y"}))
	require.NoError(t, l.Append(ctx, domain.HistoryEntry{User: user, ProductID: "P1", ProductCode: "P1", Field: "description", Before: "b", After: "c"}))

	all, err := l.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 2026, all[0].Timestamp.Year())

	desc, err := l.ForProductField(ctx, "P1", "description")
	require.NoError(t, err)
	require.Len(t, desc, 2)
	assert.Equal(t, "c", desc[1].After)

	require.NoError(t, l.Clear(ctx))
	all, err = l.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
