package handlers

import (
	"net/http"
	"strconv"
	"time"

	"catalogstudio/internal/domain"
	"catalogstudio/internal/requestlog"
)

func (a *App) ListLogs(w http.ResponseWriter, r *http.Request) {
	filter, err := parseLogFilter(r)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	logs, err := a.Logs.List(r.Context(), filter)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	limit := len(logs)
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n < limit {
			limit = n
		}
	}
	a.json(w, http.StatusOK, map[string]any{"items": logs[:limit], "total": len(logs)})
}

func parseLogFilter(r *http.Request) (requestlog.Filter, error) {
	q := r.URL.Query()
	f := requestlog.Filter{
		Type:      domain.RequestType(q.Get("type")),
		UserID:    q.Get("userId"),
		ProductID: q.Get("productId"),
		Field:     q.Get("field"),
	}
	for key, dst := range map[string]**time.Time{"from": &f.From, "to": &f.To} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		t, dateOnly, err := parseTime(raw)
		if err != nil {
			return f, err
		}
		if dateOnly && key == "to" {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		*dst = &t
	}
	if raw := q.Get("success"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return f, err
		}
		f.Success = &b
	}
	return f, nil
}

// parseTime accepts RFC 3339 timestamps and plain dates.
func parseTime(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, false, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	return t, true, err
}

func (a *App) LogStats(w http.ResponseWriter, r *http.Request) {
	st, err := a.Logs.Stats(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, st)
}

func (a *App) ExportLogs(w http.ResponseWriter, r *http.Request) {
	data, err := a.Logs.Export(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.download(w, requestlog.ExportName(a.now()), data)
}

func (a *App) ClearLogs(w http.ResponseWriter, r *http.Request) {
	if !a.canManage(w, r) {
		return
	}
	if err := a.Logs.Clear(r.Context()); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
