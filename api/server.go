// ABOUTME: Huma API server configuration and setup
// ABOUTME: Mounts the documented API under /api next to the health and metrics endpoints

package api

import (
	"net/http"
	"time"

	"aiml-digests/api/middleware"
	"aiml-digests/core/interfaces"
	"aiml-digests/pkg/featureflags"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

// Prefix is where the documented API is mounted
const Prefix = "/api"

// APIConfig holds configuration for the API
type APIConfig struct {
	Logger     interfaces.Logger
	RateLimit  int           // requests per window
	RateWindow time.Duration // rate limit window

	// Flags gates rate limiting and /metrics at request time; nil leaves both on
	Flags featureflags.Manager

	// Gatherer backs /metrics; nil leaves the endpoint unregistered
	Gatherer prometheus.Gatherer
}

// Registrar is implemented by every handler group
type Registrar interface {
	RegisterRoutes(api huma.API)
}

// NewAPI creates a bare API without logging, rate limiting or metrics
func NewAPI() (huma.API, chi.Router) {
	return NewAPIWithMiddleware(APIConfig{})
}

// NewAPIWithMiddleware creates a new API with middleware configured
func NewAPIWithMiddleware(cfg APIConfig) (huma.API, chi.Router) {
	router := chi.NewRouter()

	// CORS must run before anything that can reject the request
	router.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Retry-After"},
		MaxAge:         300,
	}).Handler)

	if cfg.Logger != nil {
		router.Use(middleware.RequestLoggingMiddleware(cfg.Logger))
	}

	router.Get("/health", healthHandler)
	if cfg.Gatherer != nil {
		router.Handle("/metrics", metricsHandler(cfg.Gatherer, cfg.Flags))
	}

	var api huma.API
	router.Route(Prefix, func(r chi.Router) {
		if cfg.RateLimit > 0 && cfg.RateWindow > 0 {
			limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
			r.Use(middleware.RateLimitMiddleware(limiter, cfg.Flags))
		}

		config := huma.DefaultConfig("AI/ML Digests API", "1.0.0")
		config.Info.Description = "Feed subscriptions, enriched articles and manual pipeline triggers"
		config.Servers = []*huma.Server{{URL: Prefix}}
		api = humachi.New(r, config)
	})

	return api, router
}

// Register attaches every handler group to api
func Register(api huma.API, groups ...Registrar) {
	for _, g := range groups {
		g.RegisterRoutes(api)
	}
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func metricsHandler(gatherer prometheus.Gatherer, flags featureflags.Manager) http.Handler {
	h := promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if flags != nil && !flags.IsEnabled(r.Context(), featureflags.MetricsEnabled) {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}
