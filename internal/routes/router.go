package routes

import (
	"net/http"
	"time"

	"platewatch/internal/api"
	"platewatch/internal/config"
	"platewatch/internal/db"
	"platewatch/internal/logging"
	"platewatch/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// RegisterRoutes builds the chi router with the full HTTP surface.
func RegisterRoutes(cfg *config.Config, deps *api.Dependencies, upSince time.Time) http.Handler {
	r := chi.NewRouter()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MetricsMiddleware(deps.Metrics))
	r.Use(middleware.RateLimitMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://localhost:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.AuthGateMiddleware(cfg))

	logging.Info("Router initialized with metrics and logging middleware")

	r.Get("/healthCheck", api.HealthCheckHandler(db.DB, upSince))

	// Sighting lifecycle
	r.Get("/", api.ListSightingsHandler(deps))
	r.Post("/add", api.CreateSightingHandler(deps))
	r.Get("/search", api.SearchSightingsHandler(deps))
	r.Get("/edit/{id}", api.GetSightingHandler(deps))
	r.Post("/edit/{id}", api.UpdateSightingHandler(deps))
	r.Post("/delete/{id}", api.DeleteSightingHandler(deps))

	// Images
	r.Get("/image/{filename}", api.ServeImageHandler(deps))
	r.Post("/bulk_upload", api.BulkUploadHandler(deps))

	// JSON API
	r.Get("/api/car_info/{plate}", api.CarInfoHandler(deps))

	// Exports
	r.Get("/export/csv", api.ExportCSVHandler(deps))
	r.Get("/export/zip", api.ExportZipHandler(deps))
	r.Get("/export/seed", api.ExportSeedHandler(deps))

	return r
}
