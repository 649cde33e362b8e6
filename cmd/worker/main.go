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
	"github.com/mcarruthers/shotsort/internal/core/usecase"
	"github.com/mcarruthers/shotsort/internal/observability/logging"
	"github.com/mcarruthers/shotsort/internal/observability/metrics"
)

const service = "worker"

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

	workerMetrics := metrics.NewWorkerMetrics(service)
	app.ProcessUC.SetOutcomeObserver(func(outcome usecase.ClassifyOutcome) {
		workerMetrics.ObserveOutcome(service, string(outcome))
	})

	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
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

	logger.Info("worker subscribed", "subject", cfg.NATSSubject, "concurrency", cfg.WorkerConcurrency)
	err = app.Queue.SubscribeScreenshotImported(ctx, func(handlerCtx context.Context, screenshotID string) error {
		processCtx, cancel := context.WithTimeout(handlerCtx, cfg.ProcessTimeout)
		defer cancel()

		workerMetrics.StartScreenshot()
		start := time.Now()
		if shot, getErr := app.Screenshots.GetByID(processCtx, screenshotID); getErr == nil {
			workerMetrics.ObserveQueueLag(service, start.Sub(shot.UpdatedAt))
		}

		processErr := app.ProcessUC.ProcessByID(processCtx, screenshotID)
		workerMetrics.FinishScreenshot(service, time.Since(start), processErr)
		return processErr
	})
	if err != nil && ctx.Err() == nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
