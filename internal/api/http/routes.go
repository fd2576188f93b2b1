package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stillcast/internal/config"
	"stillcast/internal/service"
	"stillcast/internal/storage"
)

// NewRouter creates a new HTTP router with configured routes, middleware, and handlers.
// It sets up the conversion routes, liveness check, and Prometheus metrics endpoint.
func NewRouter(cfg *config.Config, convertService *service.ConvertService, store *storage.FileStore, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	convertHandler := NewConvertHandler(convertService, store, cfg.MaxUploadBytes, cfg.PublicBaseURL, logger)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/convert", convertHandler.Convert)
	r.Get("/download/{downloadID}", convertHandler.Download)

	r.Handle("/metrics", promhttp.Handler())

	return r
}
