package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"catalogstudio/internal/domain"
	"catalogstudio/internal/products"
)

func (a *App) ListProducts(w http.ResponseWriter, r *http.Request) {
	list, err := a.Products.List(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	search := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	out := make([]domain.Product, 0, len(list))
	for _, p := range list {
		if category != "" && p.CategoryName != category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.DisplayName()), search) &&
			!strings.Contains(strings.ToLower(p.Code), search) {
			continue
		}
		out = append(out, p)
	}
	a.json(w, http.StatusOK, map[string]any{"items": out, "total": len(out)})
}

func (a *App) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := a.Products.GetProductData(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, p)
}

func (a *App) Categories(w http.ResponseWriter, r *http.Request) {
	names := a.Products.Categories()
	if names == nil {
		names = []string{}
	}
	a.json(w, http.StatusOK, map[string]any{"items": names})
}

func (a *App) ProductStats(w http.ResponseWriter, r *http.Request) {
	st, err := a.Products.Stats(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, st)
}

func (a *App) ResetEnhancements(w http.ResponseWriter, r *http.Request) {
	if !a.canManage(w, r) {
		return
	}
	if err := a.Products.Reset(r.Context()); err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := a.History.Clear(r.Context()); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) ExportCatalog(w http.ResponseWriter, r *http.Request) {
	data, err := a.Products.ExportCatalog(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.download(w, products.ExportName(a.now()), data)
}

type validateRequest struct {
	Field    string `json:"field"`
	Language string `json:"language"`
}

// ValidateField runs the validation engine on one field of a product.
func (a *App) ValidateField(w http.ResponseWriter, r *http.Request) {
	var in validateRequest
	if !a.decode(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Field) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "field is required")
		return
	}
	product, err := a.Products.GetProductData(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	configs, err := a.Fields.List(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	result := a.Validator.ValidateContent(r.Context(), product, in.Field, configs, a.language(r, in.Language), a.actor(r))
	a.json(w, http.StatusOK, result)
}
