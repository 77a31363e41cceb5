package enhancement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogstudio/internal/domain"
)

func TestMemoryStoreUpdateIsAtomic(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, &Session{ID: "s1", Fields: []string{"a"}, States: map[string]FieldState{}}))

	boom := errors.New("boom")
	_, err := store.Update(ctx, "s1", func(s *Session) error {
		s.Language = "DE"
		s.States["a"] = FieldState{Accepted: true}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, got.Language)
	assert.Empty(t, got.States)
}

func TestMemoryStoreSnapshotsAreIndependent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, &Session{ID: "s1", Fields: []string{"a"}, States: map[string]FieldState{}}))

	snap, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	snap.States["a"] = FieldState{Declined: true}
	snap.Fields[0] = "changed"

	again, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, again.States)
	assert.Equal(t, []string{"a"}, again.Fields)
}

func TestMemoryStoreSweepAndDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Create(ctx, &Session{ID: "old", UpdatedAt: old}))
	require.NoError(t, store.Create(ctx, &Session{ID: "new", UpdatedAt: old.Add(time.Hour)}))
	assert.Error(t, store.Create(ctx, &Session{ID: "new"}))

	assert.Equal(t, 1, store.Sweep(old.Add(time.Minute)))
	assert.Equal(t, 1, store.Len())

	_, err := store.Get(ctx, "old")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	require.NoError(t, store.Delete(ctx, "new"))
	assert.ErrorIs(t, store.Delete(ctx, "new"), domain.ErrSessionNotFound)
}
