package handlers

import (
	"context"
	"net/http"
	"time"
)

type healthResponse struct {
	Status string `json:"status"`
	Fields int    `json:"fields"`
}

// Health reports ready once the field registry can be read, since every
// validation depends on it.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	cfgs, err := a.Fields.List(ctx)
	if err != nil {
		a.requestLogger(r).Warn().Err(err).Msg("health: field registry unavailable")
		a.json(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}
	a.json(w, http.StatusOK, healthResponse{Status: "ok", Fields: len(cfgs)})
}
