// Package http provides the HTTP delivery layer for the URL shortener service.
// It contains the router, handlers, request validation and the middleware that
// guards the admin API and rate limits public endpoints.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/vadimbarashkov/shortly/docs"
	"github.com/vadimbarashkov/shortly/pkg/metrics"
	"github.com/vadimbarashkov/shortly/pkg/middleware/recoverer"
	"github.com/vadimbarashkov/shortly/pkg/ratelimit"
)

// RouterConfig carries the settings the router needs from the application config.
type RouterConfig struct {
	BaseURL        string
	AdminSecret    string
	AllowedOrigins []string
	BlockedHosts   []string
	// TrustProxyHeaders takes the client address from X-Forwarded-For and
	// similar headers. Enable it only behind a proxy that overwrites them.
	TrustProxyHeaders bool
	// Limiter guards /api/ routes. Nil disables rate limiting.
	Limiter ratelimit.Limiter
	// Metrics defaults to a fresh collector set when nil.
	Metrics *metrics.Metrics
}

// NewRouter initializes and returns a new Chi router configured with middleware and routes for the URL shortener API.
func NewRouter(logger *httplog.Logger, cfg RouterConfig, urlUseCase urlUseCase, adminUseCase adminUseCase) *chi.Mux {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New()
	}

	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"POST", "GET", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept", AdminKeyHeader},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	if cfg.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(liftAdminKey)
	r.Use(httplog.RequestLogger(logger))
	r.Use(recoverer.New(logger.Logger))
	r.Use(cfg.Metrics.Middleware)

	r.Handle("/metrics", cfg.Metrics.Handler())

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/swagger.yml"),
	))

	r.Get("/docs/swagger.yml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(docs.Swagger)
	})

	validate := newValidator(cfg.BlockedHosts)
	uh := newURLHandler(urlUseCase, validate, cfg.BaseURL, cfg.Metrics)
	ah := newAdminHandler(adminUseCase)

	r.Route("/api", func(r chi.Router) {
		if cfg.Limiter != nil {
			r.Use(rateLimit(cfg.Limiter))
		}

		r.Get("/health", handleHealth)
		r.Post("/shorten", uh.shortenURL)
		r.Get("/analytics/{shortCode}", uh.getAnalytics)

		r.Route("/admin", func(r chi.Router) {
			r.Use(adminAuth(cfg.AdminSecret))

			r.Get("/urls", ah.listURLs)
			r.Delete("/urls/{id}", ah.deactivateURL)
			r.Get("/stats", ah.getStats)
		})
	})

	r.Get("/{shortCode}", uh.redirect)

	return r
}
