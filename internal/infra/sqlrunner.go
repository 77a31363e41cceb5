package infra

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// SQLExecutor is what repositories need from a database handle.
type SQLExecutor interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
}

var (
	markerRegexp     = regexp.MustCompile(`^--sql [0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	errEmptyQuery    = errors.New("empty query")
	errMissingMarker = errors.New("sql marker missing or invalid")
)

// SQLRunner executes marker-tagged queries on a pool and logs each one under
// its marker. Queries without a marker are refused.
type SQLRunner struct {
	Pool   *pgxpool.Pool
	Logger zerolog.Logger
}

func NewSQLRunner(pool *pgxpool.Pool, logger zerolog.Logger) *SQLRunner {
	return &SQLRunner{Pool: pool, Logger: logger}
}

func (r *SQLRunner) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	marker, body, err := extractMarker(query)
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	start := time.Now()
	tag, err := r.Pool.Exec(ctx, body, args...)
	r.trace("exec", marker, start, err).Int64("rows", tag.RowsAffected()).Send()
	return tag, err
}

func (r *SQLRunner) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	marker, body, err := extractMarker(query)
	if err != nil {
		return errorRow{err: err}
	}
	return tracedRow{row: r.Pool.QueryRow(ctx, body, args...), runner: r, marker: marker, start: time.Now()}
}

func (r *SQLRunner) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	marker, body, err := extractMarker(query)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	rows, err := r.Pool.Query(ctx, body, args...)
	if err != nil {
		r.trace("query", marker, start, err).Send()
		return nil, err
	}
	return tracedRows{Rows: rows, runner: r, marker: marker, start: start}, nil
}

// trace starts a log event for one statement. No-rows results are not
// failures and stay at debug level.
func (r *SQLRunner) trace(op, marker string, start time.Time, err error) *zerolog.Event {
	ev := r.Logger.Debug()
	if err != nil && !IsNoRows(err) {
		ev = r.Logger.Error().Err(err)
	}
	return ev.Str("op", op).Str("marker", marker).Dur("elapsed", time.Since(start))
}

type tracedRow struct {
	row    pgx.Row
	runner *SQLRunner
	marker string
	start  time.Time
}

func (t tracedRow) Scan(dest ...any) error {
	err := t.row.Scan(dest...)
	t.runner.trace("query_row", t.marker, t.start, err).Send()
	return err
}

type tracedRows struct {
	pgx.Rows
	runner *SQLRunner
	marker string
	start  time.Time
}

func (t tracedRows) Close() {
	t.Rows.Close()
	t.runner.trace("query", t.marker, t.start, t.Rows.Err()).Send()
}

type errorRow struct {
	err error
}

func (e errorRow) Scan(...any) error {
	return e.err
}

// extractMarker splits the "--sql <uuid>" first line from the statement.
func extractMarker(query string) (marker, body string, err error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return "", "", errEmptyQuery
	}
	first, rest, _ := strings.Cut(trimmed, "\n")
	first = strings.TrimSpace(first)
	if !markerRegexp.MatchString(first) {
		return "", "", errMissingMarker
	}
	return strings.TrimPrefix(first, "--sql "), rest, nil
}

// IsNoRows reports whether err means a single-row query found nothing.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

var _ SQLExecutor = (*SQLRunner)(nil)
