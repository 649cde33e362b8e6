package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mcarruthers/shotsort/internal/bootstrap"
	"github.com/mcarruthers/shotsort/internal/config"
	"github.com/mcarruthers/shotsort/internal/observability/logging"
	"github.com/mcarruthers/shotsort/internal/observability/metrics"
)

const service = "importer"

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger(service, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	importerMetrics := metrics.NewImporterMetrics(service)
	app.ImportUC.SetAssetObserver(func(outcome string) {
		importerMetrics.ObserveAsset(service, outcome)
	})

	metricsServer := &http.Server{
		Addr:    ":" + cfg.ImporterMetricsPort,
		Handler: importerMetrics.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	// Records left pending by a previous crash are reported, not retried.
	app.ImportUC.ReportStalePending(ctx, cfg.StalePendingAge)

	scan := func() {
		scanErr := app.ImportUC.ImportAll(ctx)
		importerMetrics.ObserveScan(service, scanErr)
		if scanErr != nil && ctx.Err() == nil {
			logger.Error("library scan", "error", scanErr)
		}
	}

	logger.Info("importer started", "asset_dir", cfg.AssetDir, "scan_interval", cfg.ScanInterval.String())
	scan()

	if err := app.Source.Watch(ctx, scan); err != nil && ctx.Err() == nil {
		log.Fatalf("asset source watch error: %v", err)
	}
}
