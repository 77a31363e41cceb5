package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"catalogstudio/internal/corpus"
	"catalogstudio/internal/domain"
)

func (a *App) ListGoldstandard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		list []domain.GoldstandardExample
		err  error
	)
	if field := q.Get("field"); field != "" {
		list, err = a.Goldstandard.FindByFieldAndLanguage(r.Context(), field, a.language(r, q.Get("language")))
	} else {
		list, err = a.Goldstandard.List(r.Context())
	}
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": list})
}

func (a *App) AddGoldstandard(w http.ResponseWriter, r *http.Request) {
	var in domain.GoldstandardExample
	if !a.decode(w, r, &in) {
		return
	}
	in.ID = ""
	if in.Language == "" {
		in.Language = a.language(r, "")
	}
	ex, err := a.Goldstandard.Add(r.Context(), in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, ex)
}

func (a *App) DeleteGoldstandard(w http.ResponseWriter, r *http.Request) {
	if err := a.Goldstandard.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListClaims supports the claims page filters: free text, claim type and
// language.
func (a *App) ListClaims(w http.ResponseWriter, r *http.Request) {
	all, err := a.Claims.List(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	search := strings.ToLower(strings.TrimSpace(q.Get("q")))
	claimType := q.Get("claimType")
	lang := q.Get("language")
	productID := q.Get("productId")
	out := make([]domain.Claim, 0, len(all))
	for _, c := range all {
		if claimType != "" && c.ClaimType != claimType {
			continue
		}
		if lang != "" && !strings.EqualFold(c.Language, lang) {
			continue
		}
		if productID != "" && !c.AppliesTo(productID) {
			continue
		}
		if search != "" && !claimMatches(c, search) {
			continue
		}
		out = append(out, c)
	}
	a.json(w, http.StatusOK, map[string]any{"items": out})
}

func claimMatches(c domain.Claim, search string) bool {
	if strings.Contains(strings.ToLower(c.Claim), search) || strings.Contains(strings.ToLower(c.ClaimType), search) {
		return true
	}
	for _, id := range c.ProductIDs {
		if strings.Contains(strings.ToLower(id), search) {
			return true
		}
	}
	return false
}

type addClaimRequest struct {
	Claim      string `json:"claim"`
	ClaimType  string `json:"claimType"`
	Language   string `json:"language"`
	ProductIDs any    `json:"productIds"`
}

func (a *App) AddClaim(w http.ResponseWriter, r *http.Request) {
	var in addClaimRequest
	if !a.decode(w, r, &in) {
		return
	}
	claim := domain.Claim{
		Claim:      in.Claim,
		ClaimType:  in.ClaimType,
		Language:   a.language(r, in.Language),
		ProductIDs: productIDs(in.ProductIDs),
	}
	created, err := a.Claims.Add(r.Context(), claim)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, created)
}

// productIDs accepts a JSON list or a separated string.
func productIDs(v any) []string {
	switch t := v.(type) {
	case string:
		return corpus.ParseProductIDs(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			if s, ok := p.(string); ok {
				parts = append(parts, s)
			}
		}
		return corpus.ParseProductIDs(strings.Join(parts, ","))
	}
	return nil
}

func (a *App) DeleteClaim(w http.ResponseWriter, r *http.Request) {
	if err := a.Claims.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) ListHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	productID, field := q.Get("productId"), q.Get("field")
	var (
		entries []domain.HistoryEntry
		err     error
	)
	if productID != "" && field != "" {
		entries, err = a.History.ForProductField(r.Context(), productID, field)
	} else {
		entries, err = a.History.List(r.Context())
	}
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": entries})
}
