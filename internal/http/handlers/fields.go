package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"catalogstudio/internal/domain"
)

func (a *App) ListFields(w http.ResponseWriter, r *http.Request) {
	list, err := a.Fields.List(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": list})
}

func (a *App) GetField(w http.ResponseWriter, r *http.Request) {
	f, err := a.Fields.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, f)
}

func (a *App) CreateField(w http.ResponseWriter, r *http.Request) {
	if !a.canManage(w, r) {
		return
	}
	// omitted isActive means active
	in := domain.FieldConfig{IsActive: true}
	if !a.decode(w, r, &in) {
		return
	}
	created, err := a.Fields.Create(r.Context(), in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, created)
}

func (a *App) UpdateField(w http.ResponseWriter, r *http.Request) {
	if !a.canManage(w, r) {
		return
	}
	id := chi.URLParam(r, "id")
	current, err := a.Fields.Get(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	// partial updates: absent keys keep their current values
	in := current.Clone()
	if !a.decode(w, r, &in) {
		return
	}
	updated, err := a.Fields.Update(r.Context(), id, in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, updated)
}

func (a *App) DeleteField(w http.ResponseWriter, r *http.Request) {
	if !a.canManage(w, r) {
		return
	}
	if err := a.Fields.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) CopyField(w http.ResponseWriter, r *http.Request) {
	if !a.canManage(w, r) {
		return
	}
	copied, err := a.Fields.Copy(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, copied)
}

func (a *App) ImportFields(w http.ResponseWriter, r *http.Request) {
	if !a.canManage(w, r) {
		return
	}
	var in []domain.FieldConfig
	if !a.decode(w, r, &in) {
		return
	}
	out, err := a.Fields.Import(r.Context(), in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": out})
}
