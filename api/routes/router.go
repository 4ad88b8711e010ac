package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stocklane/stocklane-backend/api/controllers"
	"github.com/stocklane/stocklane-backend/api/middleware"
	"github.com/stocklane/stocklane-backend/pkg/logger"
	"github.com/stocklane/stocklane-backend/pkg/redis"
)

// Deps carries everything the router mounts.
type Deps struct {
	Logger      *logger.Logger
	Idempotency redis.IdempotencyStore
	Registry    *prometheus.Registry

	Health     *controllers.HealthController
	Transfers  *controllers.TransfersController
	Stock      *controllers.StockController
	Warehouses *controllers.WarehousesController
}

// New assembles the HTTP router.
func New(deps Deps) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer(deps.Logger))
	router.Use(chimiddleware.Timeout(60 * time.Second))

	router.Get("/health/live", deps.Health.Live)
	router.Get("/health/ready", deps.Health.Ready)

	if deps.Registry != nil {
		router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.TenantContext)
		r.Use(middleware.Logging(deps.Logger))
		r.Use(middleware.Idempotency(deps.Idempotency))

		r.Route("/transfers", func(r chi.Router) {
			r.Post("/", deps.Transfers.Create)
			r.Get("/", deps.Transfers.List)
			r.Post("/quick", deps.Transfers.QuickTransfer)

			r.Route("/{transferID}", func(r chi.Router) {
				r.Get("/", deps.Transfers.Get)
				r.Delete("/", deps.Transfers.Delete)
				r.Get("/movements", deps.Transfers.Movements)

				r.Post("/lines", deps.Transfers.AddLine)
				r.Route("/lines/{lineID}", func(r chi.Router) {
					r.Patch("/", deps.Transfers.UpdateLine)
					r.Delete("/", deps.Transfers.RemoveLine)
					r.Post("/pick", deps.Transfers.PickLine)
					r.Post("/receive", deps.Transfers.ReceiveLine)
				})

				r.Post("/submit", deps.Transfers.Submit)
				r.Post("/release", deps.Transfers.Release)
				r.Post("/assign", deps.Transfers.Assign)
				r.Post("/start-picking", deps.Transfers.StartPicking)
				r.Post("/complete-picking", deps.Transfers.CompletePicking)
				r.Post("/dispatch", deps.Transfers.MarkInTransit)
				r.Post("/complete-receiving", deps.Transfers.CompleteReceiving)
				r.Post("/cancel", deps.Transfers.Cancel)
			})
		})

		r.Post("/replenishments", deps.Transfers.Replenish)

		r.Get("/stock/levels", deps.Stock.Levels)

		r.Route("/warehouses", func(r chi.Router) {
			r.Get("/", deps.Warehouses.List)
			r.Get("/{warehouseID}", deps.Warehouses.Get)
		})
		r.Get("/locations", deps.Warehouses.Locations)
	})

	return router
}
