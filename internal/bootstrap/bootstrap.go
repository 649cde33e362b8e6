package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mcarruthers/shotsort/internal/config"
	"github.com/mcarruthers/shotsort/internal/core/ports"
	"github.com/mcarruthers/shotsort/internal/core/usecase"
	"github.com/mcarruthers/shotsort/internal/imaging"
	"github.com/mcarruthers/shotsort/internal/infrastructure/assetsource/localdir"
	"github.com/mcarruthers/shotsort/internal/infrastructure/classify/keyword"
	"github.com/mcarruthers/shotsort/internal/infrastructure/classify/remote"
	ocrollama "github.com/mcarruthers/shotsort/internal/infrastructure/ocr/ollama"
	"github.com/mcarruthers/shotsort/internal/infrastructure/queue/nats"
	"github.com/mcarruthers/shotsort/internal/infrastructure/repository/postgres"
	"github.com/mcarruthers/shotsort/internal/infrastructure/resilience"
	"github.com/mcarruthers/shotsort/internal/infrastructure/storage/localfs"
)

// App wires the pipeline. Both binaries build the same graph and use the
// parts they need.
type App struct {
	Config config.Config

	Queue       ports.MessageQueue
	Screenshots ports.ScreenshotRepository
	Categories  ports.CategoryStore
	Source      ports.AssetSource

	ImportUC  *usecase.ImportAssetUseCase
	ProcessUC *usecase.ProcessScreenshotUseCase

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	screenshots := postgres.NewScreenshotRepository(db)
	categories := postgres.NewCategoryRepository(db)
	if err := categories.Seed(ctx); err != nil {
		return nil, fmt.Errorf("seed taxonomy: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init artifact storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		Workers:            cfg.WorkerConcurrency,
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	source, err := localdir.New(cfg.AssetDir, cfg.ScanInterval)
	if err != nil {
		return nil, fmt.Errorf("init asset source: %w", err)
	}

	codec := imaging.NewCodec(cfg.ThumbnailMaxDim)

	ocrClient := ocrollama.New(cfg.OllamaURL, cfg.OllamaOCRModel, cfg.OCRTimeout, executor)
	extractor := ocrollama.NewExtractor(storage, ocrClient)

	remoteClassifier := remote.New(cfg.ClassifyURL, cfg.ClassifyTimeout, cfg.ClassifyMaxCallsPerSec, executor)
	fallbackClassifier, err := keyword.NewFromFile(cfg.KeywordTablePath)
	if err != nil {
		return nil, fmt.Errorf("init keyword classifier: %w", err)
	}

	importUC := usecase.NewImportAssetUseCase(screenshots, storage, queue, source, codec, logger)
	processUC := usecase.NewProcessScreenshotUseCase(
		screenshots, categories, extractor, remoteClassifier, fallbackClassifier, logger)

	return &App{
		Config: cfg,

		Queue:       queue,
		Screenshots: screenshots,
		Categories:  categories,
		Source:      source,

		ImportUC:  importUC,
		ProcessUC: processUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
