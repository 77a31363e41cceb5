package requestlog

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogstudio/internal/domain"
	"catalogstudio/internal/storage"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time {
	c.t = c.t.Add(time.Hour)
	return c.t
}

func newLogger(max int) (*Logger, *clock) {
	c := &clock{t: time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC)}
	return New(storage.NewMemoryStore(), Options{MaxEntries: max, Now: c.now}), c
}

func entry(typ domain.RequestType, user string, success bool, duration int64) domain.RequestLog {
	return domain.RequestLog{
		Type:     typ,
		User:     domain.Actor{ID: user, Name: user},
		Product:  domain.ProductRef{ID: "P1", Code: "P1"},
		Field:    "description",
		Language: "EN",
		Success:  success,
		Duration: duration,
	}
}

func TestRecordAssignsIDAndCountry(t *testing.T) {
	l, _ := newLogger(0)
	ctx := domain.WithCountry(context.Background(), "DE")

	id := l.Record(ctx, entry(domain.RequestValidation, "ada", true, 10))
	assert.NotEmpty(t, id)

	logs, err := l.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, id, logs[0].ID)
	assert.Equal(t, "DE", logs[0].Country)
	assert.False(t, logs[0].Timestamp.IsZero())
}

func TestRecordKeepsNewest(t *testing.T) {
	l, _ := newLogger(3)
	ctx := context.Background()
	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, l.Record(ctx, entry(domain.RequestEnhancement, "ada", true, 0)))
	}
	logs, err := l.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, ids[4], logs[0].ID, "newest first")
	assert.Equal(t, ids[2], logs[2].ID)
}

func TestListFilter(t *testing.T) {
	l, c := newLogger(0)
	ctx := context.Background()
	l.Record(ctx, entry(domain.RequestValidation, "ada", true, 0))
	mid := c.t
	l.Record(ctx, entry(domain.RequestEnhancement, "bob", false, 0))
	l.Record(ctx, entry(domain.RequestEnhancement, "ada", true, 0))

	failed := false
	logs, err := l.List(ctx, Filter{Success: &failed})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "bob", logs[0].User.ID)

	logs, err = l.List(ctx, Filter{Type: domain.RequestEnhancement, UserID: "ada"})
	require.NoError(t, err)
	assert.Len(t, logs, 1)

	after := mid.Add(time.Minute)
	logs, err = l.List(ctx, Filter{From: &after})
	require.NoError(t, err)
	assert.Len(t, logs, 2)

	logs, err = l.List(ctx, Filter{To: &mid})
	require.NoError(t, err)
	assert.Len(t, logs, 1)

	logs, err = l.List(ctx, Filter{Field: "name"})
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestStats(t *testing.T) {
	l, _ := newLogger(0)
	ctx := context.Background()
	l.Record(ctx, entry(domain.RequestValidation, "ada", true, 100))
	l.Record(ctx, entry(domain.RequestValidation, "ada", false, 0))
	l.Record(ctx, entry(domain.RequestEnhancement, "bob", true, 251))

	st, err := l.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, st.TotalRequests)
	assert.Equal(t, 66.67, st.SuccessRate)
	assert.Equal(t, int64(176), st.AverageDuration, "entries without duration are ignored")
	assert.Equal(t, map[string]int{"validation": 2, "enhancement": 1}, st.RequestsByType)
	assert.Equal(t, map[string]int{"ada": 2, "bob": 1}, st.RequestsByUser)
	assert.Equal(t, map[string]int{"2026-05-01": 3}, st.RequestsByDay)

	empty, _ := newLogger(0)
	st, err = empty.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, st.SuccessRate)
	assert.Zero(t, st.AverageDuration)
}

func TestExportClearPrune(t *testing.T) {
	l, c := newLogger(0)
	ctx := context.Background()
	l.Record(ctx, entry(domain.RequestValidation, "ada", true, 0))
	cutoff := c.t.Add(time.Minute)
	l.Record(ctx, entry(domain.RequestValidation, "ada", true, 0))

	data, err := l.Export(ctx)
	require.NoError(t, err)
	var exported []domain.RequestLog
	require.NoError(t, json.Unmarshal(data, &exported))
	assert.Len(t, exported, 2)
	assert.Equal(t, "request_logs_2026-05-01.json", ExportName(c.t))

	removed, err := l.Prune(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	require.NoError(t, l.Clear(ctx))
	logs, err := l.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Empty(t, logs)
}
