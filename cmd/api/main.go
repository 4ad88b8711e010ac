package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/stocklane/stocklane-backend/api/controllers"
	"github.com/stocklane/stocklane-backend/api/routes"
	"github.com/stocklane/stocklane-backend/internal/directory"
	"github.com/stocklane/stocklane-backend/internal/numbering"
	"github.com/stocklane/stocklane-backend/internal/stock"
	"github.com/stocklane/stocklane-backend/internal/transfers"
	"github.com/stocklane/stocklane-backend/pkg/config"
	"github.com/stocklane/stocklane-backend/pkg/db"
	"github.com/stocklane/stocklane-backend/pkg/logger"
	"github.com/stocklane/stocklane-backend/pkg/metrics"
	"github.com/stocklane/stocklane-backend/pkg/migrate"
	"github.com/stocklane/stocklane-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logg := logger.New(logger.Options{
		ServiceName: "stocklane-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "api exited", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { _ = dbClient.Close() }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer func() { _ = redisClient.Close() }()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	transferMetrics := metrics.NewTransferMetrics(registry)

	numbers, err := numbering.NewService(cfg.Numbering.SequenceWidth)
	if err != nil {
		return err
	}

	stockRepo := stock.NewRepository(dbClient.DB())
	dirRepo := directory.NewRepository(dbClient.DB())

	transferSvc, err := transfers.NewService(
		dbClient,
		transfers.NewRepository(dbClient.DB()),
		stockRepo,
		dirRepo,
		numbers,
		cfg.Numbering,
		logg,
		transferMetrics,
	)
	if err != nil {
		return err
	}
	orch, err := transfers.NewOrchestrator(transferSvc, logg)
	if err != nil {
		return err
	}

	router := routes.New(routes.Deps{
		Logger:      logg,
		Idempotency: redisClient,
		Registry:    registry,
		Health:      controllers.NewHealthController(dbClient, redisClient),
		Transfers:   controllers.NewTransfersController(transferSvc, orch),
		Stock:       controllers.NewStockController(stockRepo),
		Warehouses:  controllers.NewWarehousesController(dirRepo),
	})

	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(logg.WithField(ctx, "port", cfg.App.Port), "api listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
