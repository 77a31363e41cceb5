package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type startSessionRequest struct {
	ProductCode string   `json:"productCode"`
	Fields      []string `json:"fields"`
	Language    string   `json:"language"`
}

func (a *App) StartSession(w http.ResponseWriter, r *http.Request) {
	var in startSessionRequest
	if !a.decode(w, r, &in) {
		return
	}
	s, err := a.Wizard.Start(r.Context(), in.ProductCode, in.Fields, a.language(r, in.Language), a.actor(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, s)
}

func (a *App) GetSession(w http.ResponseWriter, r *http.Request) {
	s, err := a.Wizard.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, s)
}

func (a *App) CloseSession(w http.ResponseWriter, r *http.Request) {
	if err := a.Wizard.Close(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type enhanceRequest struct {
	Force bool `json:"force"`
}

func (a *App) EnhanceSessionField(w http.ResponseWriter, r *http.Request) {
	var in enhanceRequest
	if !a.decode(w, r, &in) {
		return
	}
	s, err := a.Wizard.EnhanceCurrent(r.Context(), chi.URLParam(r, "id"), in.Force)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, s)
}

func (a *App) AcceptSessionField(w http.ResponseWriter, r *http.Request) {
	s, err := a.Wizard.Accept(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, s)
}

func (a *App) DeclineSessionField(w http.ResponseWriter, r *http.Request) {
	s, err := a.Wizard.Decline(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, s)
}

func (a *App) BackSessionField(w http.ResponseWriter, r *http.Request) {
	s, err := a.Wizard.Back(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, s)
}

type languageRequest struct {
	Language string `json:"language"`
}

func (a *App) SetSessionLanguage(w http.ResponseWriter, r *http.Request) {
	var in languageRequest
	if !a.decode(w, r, &in) {
		return
	}
	if in.Language == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "language is required")
		return
	}
	s, err := a.Wizard.SetLanguage(r.Context(), chi.URLParam(r, "id"), a.language(r, in.Language))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, s)
}

func (a *App) SessionSummary(w http.ResponseWriter, r *http.Request) {
	rows, err := a.Wizard.Summary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": rows})
}

func (a *App) ConfirmSession(w http.ResponseWriter, r *http.Request) {
	p, err := a.Wizard.Confirm(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, p)
}
