package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"dreamtown/internal/http/handlers"
	"dreamtown/internal/middleware"
)

type Options struct {
	Logger          zerolog.Logger
	AllowedOrigins  []string
	DefaultLocale   string
	CountryLookup   middleware.CountryLookup
	RateLimitPerMin int
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
		middleware.Session,
	)
	if app.Metrics != nil {
		r.Use(middleware.Metrics(app.Metrics))
	}

	limit := opts.RateLimitPerMin
	if limit <= 0 {
		limit = 30
	}
	// One limiter shared by the routes that reach paid collaborators.
	limiter := middleware.NewRateLimiter(limit, time.Minute)

	r.Get("/metrics", app.ServeMetrics)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthz", app.Health)
		r.Get("/catalog", app.Catalog)

		r.Route("/session", func(r chi.Router) {
			r.Post("/", app.CreateSession)
			r.Get("/", app.GetSession)
			r.Delete("/", app.DeleteSession)
			r.Put("/options", app.PutOptions)
			r.Post("/back", app.Back)
		})
		r.Post("/prompts/preview", app.Preview)

		r.Group(func(r chi.Router) {
			r.Use(limiter.Handler)
			r.Post("/generations", app.CreateGeneration)
			r.Post("/mail", app.SendMail)
		})
	})

	return r
}
