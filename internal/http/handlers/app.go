package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"catalogstudio/internal/corpus"
	"catalogstudio/internal/domain"
	"catalogstudio/internal/enhancement"
	"catalogstudio/internal/fields"
	"catalogstudio/internal/history"
	"catalogstudio/internal/middleware"
	"catalogstudio/internal/products"
	"catalogstudio/internal/requestlog"
	"catalogstudio/internal/validation"
)

const maxBodyBytes = 4 << 20

// App carries the services the HTTP handlers call into.
type App struct {
	Fields       *fields.Registry
	Products     *products.Store
	Validator    *validation.Engine
	Wizard       *enhancement.Wizard
	Goldstandard *corpus.Goldstandard
	Claims       *corpus.Claims
	History      *history.Ledger
	Logs         *requestlog.Logger
	Logger       zerolog.Logger
	Now          func() time.Time
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, msg string) {
	a.json(w, status, errorBody{Error: errorDetail{Code: code, Message: msg}})
}

// writeError maps domain errors to HTTP statuses.
func (a *App) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrSessionNotFound):
		a.error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrDuplicateField):
		a.error(w, http.StatusConflict, "duplicate_field", domain.ErrDuplicateField.Error())
	case errors.Is(err, domain.ErrInvalidField):
		a.error(w, http.StatusBadRequest, "invalid_field", err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		a.error(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, domain.ErrVersionConflict):
		a.error(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
	case errors.Is(err, domain.ErrProviderFailure):
		a.error(w, http.StatusBadGateway, "provider_failure", err.Error())
	default:
		a.requestLogger(r).Error().Err(err).
			Str("path", r.URL.Path).
			Msg("handler failed")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

// requestLogger prefers the logger bound by the access log middleware, which
// already carries the request id.
func (a *App) requestLogger(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	l := a.Logger.With().Str("request_id", middleware.RequestIDFromContext(r.Context())).Logger()
	return &l
}

func (a *App) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return false
	}
	return true
}

// actor returns the authenticated actor. The auth middleware always sets one.
func (a *App) actor(r *http.Request) *domain.Actor {
	act, ok := domain.ActorFrom(r.Context())
	if !ok {
		return nil
	}
	return &act
}

func (a *App) canManage(w http.ResponseWriter, r *http.Request) bool {
	act := a.actor(r)
	if act == nil || !act.CanManageFields() {
		a.error(w, http.StatusForbidden, "forbidden", "field configuration requires the admin or manager role")
		return false
	}
	return true
}

// language picks the explicit value when set, else the negotiated one.
func (a *App) language(r *http.Request, explicit string) string {
	fallback := middleware.LanguageFromContext(r.Context())
	if strings.TrimSpace(explicit) == "" {
		return fallback
	}
	return middleware.NormalizeLanguage(explicit, fallback)
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) download(w http.ResponseWriter, name string, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
