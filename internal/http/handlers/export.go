package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"catalogstudio/internal/products"
	"catalogstudio/internal/requestlog"
	"catalogstudio/pkg/zip"
)

func marshalList[T any](list func(context.Context) ([]T, error)) func(context.Context) ([]byte, error) {
	return func(ctx context.Context) ([]byte, error) {
		items, err := list(ctx)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []T{}
		}
		return json.MarshalIndent(items, "", "  ")
	}
}

// ExportBundle downloads one zip with the enhanced catalog, the field
// configurations, both corpora and the request log.
func (a *App) ExportBundle(w http.ResponseWriter, r *http.Request) {
	now := a.now()
	sources := []struct {
		name  string
		build func(context.Context) ([]byte, error)
	}{
		{products.ExportName(now), a.Products.ExportCatalog},
		{"fields.json", marshalList(a.Fields.List)},
		{"goldstandard.json", marshalList(a.Goldstandard.List)},
		{"claims.json", marshalList(a.Claims.List)},
		{requestlog.ExportName(now), a.Logs.Export},
	}

	files := make([]zip.File, len(sources))
	g, ctx := errgroup.WithContext(r.Context())
	for i, src := range sources {
		g.Go(func() error {
			data, err := src.build(ctx)
			if err != nil {
				return fmt.Errorf("export %s: %w", src.name, err)
			}
			files[i] = zip.File{Name: src.name, Data: data, Modified: now}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		a.writeError(w, r, err)
		return
	}

	data, err := zip.Archive(files)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", bundleName(now)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func bundleName(t time.Time) string {
	return fmt.Sprintf("catalogstudio_export_%s.zip", t.UTC().Format(time.DateOnly))
}
