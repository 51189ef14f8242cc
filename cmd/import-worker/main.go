package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/as-electrica/storefront-backend/internal/cron"
	"github.com/as-electrica/storefront-backend/internal/importer"
	"github.com/as-electrica/storefront-backend/pkg/config"
	"github.com/as-electrica/storefront-backend/pkg/db"
	"github.com/as-electrica/storefront-backend/pkg/logger"
	"github.com/as-electrica/storefront-backend/pkg/metrics"
	"github.com/as-electrica/storefront-backend/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "import-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "import-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	repo := importer.NewRepository(dbClient.DB())
	importMetrics := metrics.NewImportMetrics(prometheus.DefaultRegisterer)

	pricing, err := importer.NewPricingImporter(repo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing importer", err)
		os.Exit(1)
	}
	stock, err := importer.NewStockImporter(repo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create stock importer", err)
		os.Exit(1)
	}

	feedJob, err := importer.NewFeedJob(cfg.Importer, pricing, stock, importMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create feed job", err)
		os.Exit(1)
	}

	lockPath := filepath.Join(cfg.Importer.Dir, cfg.Importer.LockFile)
	lock, err := cron.NewFileLock(lockPath, cfg.Importer.LockStaleness)
	if err != nil {
		logg.Error(context.Background(), "failed to create import lock", err)
		os.Exit(1)
	}

	cronMetrics := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(feedJob),
		Lock:     lock,
		Metrics:  cronMetrics,
		Interval: cfg.Importer.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"feed_dir": cfg.Importer.Dir,
	})
	logg.Info(ctx, "starting import worker")

	metricsServer := &http.Server{
		Addr:    cfg.Importer.MetricsAddr,
		Handler: promhttp.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "metrics server stopped unexpectedly", err)
		}
	}()
	defer metricsServer.Close()

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "import worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "import worker shutting down gracefully")
}
