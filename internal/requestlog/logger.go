// Package requestlog records every validation and enhancement request for
// the dashboard audit views.
package requestlog

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"catalogstudio/internal/domain"
	"catalogstudio/internal/infra"
	"catalogstudio/internal/storage"
)

// DefaultMaxEntries is how many of the newest entries are kept.
const DefaultMaxEntries = 10000

type Options struct {
	MaxEntries int
	Logger     *infra.Logger
	Now        func() time.Time
}

// Logger is the persisted request log.
type Logger struct {
	entries *storage.Collection[domain.RequestLog]
	max     int
	logger  zerolog.Logger
	now     func() time.Time
}

func New(store domain.BlobStore, opts Options) *Logger {
	l := &Logger{
		entries: storage.NewCollection[domain.RequestLog](store, domain.CollectionRequestLogs),
		max:     opts.MaxEntries,
		logger:  zerolog.Nop(),
		now:     opts.Now,
	}
	if l.max <= 0 {
		l.max = DefaultMaxEntries
	}
	if opts.Logger != nil {
		l.logger = *opts.Logger
	}
	if l.now == nil {
		l.now = time.Now
	}
	return l
}

// Record stores entry and returns its id. The id and timestamp are assigned
// here; the country falls back to the one attached to ctx. Storage failures
// are logged and never surface to the caller.
func (l *Logger) Record(ctx context.Context, entry domain.RequestLog) string {
	entry.ID = uuid.NewString()
	entry.Timestamp = l.now().UTC()
	if entry.Country == "" {
		entry.Country = domain.CountryFrom(ctx)
	}
	_, err := l.entries.Update(ctx, func(items []domain.RequestLog) ([]domain.RequestLog, error) {
		items = append(items, entry)
		if len(items) > l.max {
			items = items[len(items)-l.max:]
		}
		return items, nil
	})
	if err != nil {
		l.logger.Error().Err(err).Str("type", string(entry.Type)).Msg("requestlog: store entry")
		return entry.ID
	}
	l.logger.Debug().
		Str("type", string(entry.Type)).
		Str("user", entry.User.Name).
		Str("product", entry.Product.Name).
		Str("field", entry.Field).
		Bool("success", entry.Success).
		Int64("duration_ms", entry.Duration).
		Msg("request logged")
	return entry.ID
}

// Filter narrows List. Zero values match everything.
type Filter struct {
	Type      domain.RequestType
	UserID    string
	ProductID string
	Field     string
	From      *time.Time
	To        *time.Time
	Success   *bool
}

func (f Filter) match(e domain.RequestLog) bool {
	switch {
	case f.Type != "" && e.Type != f.Type:
		return false
	case f.UserID != "" && e.User.ID != f.UserID:
		return false
	case f.ProductID != "" && e.Product.ID != f.ProductID:
		return false
	case f.Field != "" && e.Field != f.Field:
		return false
	case f.From != nil && e.Timestamp.Before(*f.From):
		return false
	case f.To != nil && e.Timestamp.After(*f.To):
		return false
	case f.Success != nil && e.Success != *f.Success:
		return false
	}
	return true
}

// List returns the matching entries, newest first.
func (l *Logger) List(ctx context.Context, f Filter) ([]domain.RequestLog, error) {
	all, err := l.entries.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.RequestLog, 0, len(all))
	for _, e := range all {
		if f.match(e) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

// Stats aggregates the whole log.
type Stats struct {
	TotalRequests   int            `json:"totalRequests"`
	SuccessRate     float64        `json:"successRate"`
	AverageDuration int64          `json:"averageDuration"`
	RequestsByType  map[string]int `json:"requestsByType"`
	RequestsByUser  map[string]int `json:"requestsByUser"`
	RequestsByDay   map[string]int `json:"requestsByDay"`
}

func (l *Logger) Stats(ctx context.Context) (Stats, error) {
	all, err := l.entries.Load(ctx)
	if err != nil {
		return Stats{}, err
	}
	return computeStats(all), nil
}

func computeStats(all []domain.RequestLog) Stats {
	st := Stats{
		TotalRequests:  len(all),
		RequestsByType: map[string]int{},
		RequestsByUser: map[string]int{},
		RequestsByDay:  map[string]int{},
	}
	var ok, timed int
	var total int64
	for _, e := range all {
		if e.Success {
			ok++
		}
		if e.Duration > 0 {
			timed++
			total += e.Duration
		}
		st.RequestsByType[string(e.Type)]++
		st.RequestsByUser[e.User.Name]++
		st.RequestsByDay[e.Timestamp.UTC().Format(time.DateOnly)]++
	}
	if len(all) > 0 {
		st.SuccessRate = math.Round(float64(ok)/float64(len(all))*100*100) / 100
	}
	if timed > 0 {
		st.AverageDuration = int64(math.Round(float64(total) / float64(timed)))
	}
	return st
}

// Export renders the stored entries as an indented JSON document.
func (l *Logger) Export(ctx context.Context) ([]byte, error) {
	all, err := l.entries.Load(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export request logs: %w", err)
	}
	return data, nil
}

// ExportName is the suggested download name for an export taken at t.
func ExportName(t time.Time) string {
	return fmt.Sprintf("request_logs_%s.json", t.UTC().Format(time.DateOnly))
}

func (l *Logger) Clear(ctx context.Context) error {
	return l.entries.Replace(ctx, nil)
}

// Prune drops entries older than cutoff and returns how many were removed.
func (l *Logger) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	removed := 0
	_, err := l.entries.Update(ctx, func(items []domain.RequestLog) ([]domain.RequestLog, error) {
		kept := items[:0]
		for _, e := range items {
			if e.Timestamp.Before(cutoff) {
				removed++
				continue
			}
			kept = append(kept, e)
		}
		return kept, nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

var _ domain.RequestRecorder = (*Logger)(nil)
