package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/snapgate/snapgate/internal/api/handler"
	"github.com/snapgate/snapgate/internal/api/middleware"
	"github.com/snapgate/snapgate/internal/browser"
	"github.com/snapgate/snapgate/internal/storage"
)

// NewRouter creates a new HTTP router with all routes configured.
func NewRouter(
	store storage.Storage,
	mgr *browser.Manager,
	corsOrigins []string,
	logger *logrus.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logging(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	r.Use(metrics.Instrument)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	// Health check (no auth required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.ContentType)

		r.Get("/", handler.Root)

		// API key management (no auth on these routes)
		keyHandler := handler.NewAPIKeyHandler(store)
		r.Post("/api-keys", keyHandler.Create)
		r.Get("/api-keys", keyHandler.List)
		r.Delete("/api-keys/{id}", keyHandler.Deactivate)

		// Screenshot capture (auth required)
		shotHandler := handler.NewScreenshotHandler(mgr, logger)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(store))
			r.Post("/v1/screenshot", shotHandler.Capture)
		})
	})

	return r
}
