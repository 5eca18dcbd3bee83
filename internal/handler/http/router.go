package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/internal/service"
	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/pkg/health"
	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/pkg/middleware"
)

// requestTimeout is the hard ceiling for any single request.
const requestTimeout = 30 * time.Second

// NewRouter assembles the HTTP surface: public search endpoints, index
// administration, health checks, and Prometheus metrics.
func NewRouter(
	searchSvc *service.SearchService,
	syncSvc *service.SyncService,
	healthHandler *health.Handler,
	corsCfg middleware.CORSConfig,
	log *slog.Logger,
) http.Handler {
	searchHandler := NewSearchHandler(searchSvc, log)
	adminHandler := NewAdminHandler(syncSvc, log)

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestLogging(log))
	r.Use(middleware.PrometheusMetrics("search"))
	r.Use(middleware.CORS(corsCfg))
	r.Use(chimiddleware.Compress(5))
	r.Use(chimiddleware.Timeout(requestTimeout))

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/search", func(r chi.Router) {
		r.Get("/", searchHandler.Search)
		r.Get("/suggest", searchHandler.Suggest)
		r.Get("/similar/{id}", searchHandler.Similar)
		r.Get("/popular", searchHandler.Popular)
	})

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Post("/products", adminHandler.IndexProduct)
		r.Delete("/products/{id}", adminHandler.DeleteProduct)
		r.Post("/products/bulk", adminHandler.BulkIndex)
		r.Post("/reindex", adminHandler.Reindex)
		r.Post("/sync", adminHandler.SyncAll)
	})

	return r
}
