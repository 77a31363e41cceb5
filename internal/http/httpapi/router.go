package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"catalogstudio/internal/http/handlers"
	"catalogstudio/internal/middleware"
	"catalogstudio/internal/observability"
)

type Options struct {
	Logger          zerolog.Logger
	JWTSecret       string
	CORSOrigins     []string
	RateLimitPerMin int
	DefaultLanguage string
	CountryLookup   middleware.CountryLookup
	Metrics         *observability.Metrics
	MetricsHandler  http.Handler
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.CORSOrigins),
	)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.MetricsMiddleware)
	}

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/openapi.json", app.OpenAPI)
	r.Get("/v1/docs", app.APIDocs)
	if opts.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", opts.MetricsHandler)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(
			middleware.RateLimit(opts.RateLimitPerMin, time.Minute),
			middleware.AuthJWT(opts.JWTSecret),
			middleware.ContentLanguage(opts.DefaultLanguage, opts.CountryLookup),
		)

		r.Route("/fields", func(r chi.Router) {
			r.Get("/", app.ListFields)
			r.Post("/", app.CreateField)
			r.Post("/import", app.ImportFields)
			r.Get("/{id}", app.GetField)
			r.Put("/{id}", app.UpdateField)
			r.Delete("/{id}", app.DeleteField)
			r.Post("/{id}/copy", app.CopyField)
		})

		r.Get("/categories", app.Categories)
		r.Get("/catalog/export", app.ExportCatalog)
		r.Get("/export/bundle", app.ExportBundle)
		r.Route("/products", func(r chi.Router) {
			r.Get("/", app.ListProducts)
			r.Get("/stats", app.ProductStats)
			r.Delete("/enhancements", app.ResetEnhancements)
			r.Get("/{code}", app.GetProduct)
			r.Post("/{code}/validate", app.ValidateField)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", app.StartSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", app.GetSession)
				r.Delete("/", app.CloseSession)
				r.Post("/enhance", app.EnhanceSessionField)
				r.Post("/accept", app.AcceptSessionField)
				r.Post("/decline", app.DeclineSessionField)
				r.Post("/back", app.BackSessionField)
				r.Post("/language", app.SetSessionLanguage)
				r.Get("/summary", app.SessionSummary)
				r.Post("/confirm", app.ConfirmSession)
			})
		})

		r.Route("/goldstandard", func(r chi.Router) {
			r.Get("/", app.ListGoldstandard)
			r.Post("/", app.AddGoldstandard)
			r.Delete("/{id}", app.DeleteGoldstandard)
		})
		r.Route("/claims", func(r chi.Router) {
			r.Get("/", app.ListClaims)
			r.Post("/", app.AddClaim)
			r.Delete("/{id}", app.DeleteClaim)
		})
		r.Get("/history", app.ListHistory)

		r.Route("/logs", func(r chi.Router) {
			r.Get("/", app.ListLogs)
			r.Get("/stats", app.LogStats)
			r.Get("/export", app.ExportLogs)
			r.Delete("/", app.ClearLogs)
		})
	})

	return r
}
