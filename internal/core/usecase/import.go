package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mcarruthers/shotsort/internal/core/domain"
	"github.com/mcarruthers/shotsort/internal/core/ports"
	"github.com/mcarruthers/shotsort/internal/imaging"
)

var _ ports.AssetImporter = (*ImportAssetUseCase)(nil)

// ImportAssetUseCase drives ingestion: dedup check, pending row, artifact
// persistence, work dispatch. Classification runs off the caller's path via
// the message queue.
type ImportAssetUseCase struct {
	repo    ports.ScreenshotRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
	source  ports.AssetSource
	codec   *imaging.Codec
	logger  *slog.Logger
	observe AssetObserver
}

// AssetObserver receives the per-asset outcome of a library scan:
// "imported", "skipped" or "error".
type AssetObserver func(outcome string)

func NewImportAssetUseCase(
	repo ports.ScreenshotRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
	source ports.AssetSource,
	codec *imaging.Codec,
	logger *slog.Logger,
) *ImportAssetUseCase {
	return &ImportAssetUseCase{
		repo:    repo,
		storage: storage,
		queue:   queue,
		source:  source,
		codec:   codec,
		logger:  logger,
	}
}

// SetAssetObserver wires metrics without making the use case depend on them.
func (uc *ImportAssetUseCase) SetAssetObserver(observe AssetObserver) {
	uc.observe = observe
}

// ImportAsset ingests one raw image. When assetIdentifier is non-empty and a
// record for it already exists the call is an idempotent no-op returning the
// existing record. Artifact failures are logged and never abort the import: a
// record with missing artifacts still reaches done, a record that never
// reaches done does not.
func (uc *ImportAssetUseCase) ImportAsset(
	ctx context.Context,
	raw []byte,
	assetIdentifier string,
	capturedAt time.Time,
) (*domain.Screenshot, error) {
	if assetIdentifier != "" {
		existing, err := uc.repo.GetByAssetIdentifier(ctx, assetIdentifier)
		if err != nil && !domain.IsKind(err, domain.ErrScreenshotNotFound) {
			return nil, fmt.Errorf("dedup lookup: %w", err)
		}
		if existing != nil {
			uc.logger.Debug("asset already imported",
				"asset_identifier", assetIdentifier,
				"screenshot_id", existing.ID,
				"status", string(existing.Status),
			)
			return existing, nil
		}
	}

	if capturedAt.IsZero() {
		capturedAt = time.Now().UTC()
	}
	shot := &domain.Screenshot{
		ID:              uuid.NewString(),
		AssetIdentifier: assetIdentifier,
		Status:          domain.StatusPending,
		CreatedAt:       capturedAt,
		UpdatedAt:       time.Now().UTC(),
	}

	if err := uc.repo.Create(ctx, shot); err != nil {
		if domain.IsKind(err, domain.ErrDuplicateAsset) {
			// Lost a race with a concurrent import of the same asset.
			return uc.repo.GetByAssetIdentifier(ctx, assetIdentifier)
		}
		return nil, fmt.Errorf("create screenshot record: %w", err)
	}

	uc.persistArtifacts(ctx, shot, raw)

	if err := uc.queue.PublishScreenshotImported(ctx, shot.ID); err != nil {
		// The record stays pending; visible via the startup gap report.
		uc.logger.Error("publish classification work",
			"screenshot_id", shot.ID, "error", err)
	}
	return shot, nil
}

// persistArtifacts writes the full-resolution artifact and a bounded
// thumbnail, then records both on the row. Each step degrades independently.
func (uc *ImportAssetUseCase) persistArtifacts(ctx context.Context, shot *domain.Screenshot, raw []byte) {
	key := shot.ID + ".jpg"
	imagePath := ""
	if err := uc.storage.Save(ctx, key, bytes.NewReader(raw)); err != nil {
		uc.logger.Error("save full image artifact", "screenshot_id", shot.ID, "error", err)
	} else {
		imagePath = key
	}

	var thumbnail []byte
	img, err := uc.codec.Decode(raw)
	if err != nil {
		uc.logger.Warn("decode image for thumbnail",
			"screenshot_id", shot.ID,
			"error", domain.WrapError(domain.ErrDecodeFailure, "decode", err),
		)
	} else if thumb, err := uc.codec.ThumbnailJPEG(img); err != nil {
		uc.logger.Warn("encode thumbnail", "screenshot_id", shot.ID, "error", err)
	} else {
		thumbnail = thumb
	}

	if imagePath == "" && thumbnail == nil {
		return
	}
	if err := uc.repo.UpdateArtifacts(ctx, shot.ID, thumbnail, imagePath); err != nil {
		uc.logger.Error("record artifacts", "screenshot_id", shot.ID, "error", err)
		return
	}
	shot.Thumbnail = thumbnail
	shot.ImagePath = imagePath
}

// ImportAll enumerates the asset source and imports every asset whose
// identifier has no record yet. A per-scan perceptual filter additionally
// skips byte-distinct copies of images already seen in the same scan.
func (uc *ImportAssetUseCase) ImportAll(ctx context.Context) error {
	assets, err := uc.source.Enumerate(ctx)
	if err != nil {
		return fmt.Errorf("enumerate asset source: %w", err)
	}

	seen := imaging.NewDedupFilter()
	imported := 0
	for _, asset := range assets {
		if err := ctx.Err(); err != nil {
			return err
		}

		existing, err := uc.repo.GetByAssetIdentifier(ctx, asset.Identifier)
		if err != nil && !domain.IsKind(err, domain.ErrScreenshotNotFound) {
			uc.logger.Error("dedup lookup", "asset_identifier", asset.Identifier, "error", err)
			uc.observeAsset("error")
			continue
		}
		if existing != nil {
			uc.observeAsset("skipped")
			continue
		}

		raw, err := uc.readAsset(ctx, asset.Identifier)
		if err != nil {
			uc.logger.Error("read asset", "asset_identifier", asset.Identifier, "error", err)
			uc.observeAsset("error")
			continue
		}

		if img, err := uc.codec.Decode(raw); err == nil && seen.IsDuplicate(img) {
			uc.logger.Debug("perceptual duplicate within scan", "asset_identifier", asset.Identifier)
			uc.observeAsset("skipped")
			continue
		}

		if _, err := uc.ImportAsset(ctx, raw, asset.Identifier, asset.CapturedAt); err != nil {
			uc.logger.Error("import asset", "asset_identifier", asset.Identifier, "error", err)
			uc.observeAsset("error")
			continue
		}
		imported++
		uc.observeAsset("imported")
	}

	uc.logger.Info("library scan complete", "assets", len(assets), "imported", imported)
	return nil
}

func (uc *ImportAssetUseCase) observeAsset(outcome string) {
	if uc.observe != nil {
		uc.observe(outcome)
	}
}

func (uc *ImportAssetUseCase) readAsset(ctx context.Context, identifier string) ([]byte, error) {
	reader, err := uc.source.Open(ctx, identifier)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}

// ReportStalePending logs records stuck at pending from a previous run. They
// are not retried automatically; the log keeps the gap visible.
func (uc *ImportAssetUseCase) ReportStalePending(ctx context.Context, olderThan time.Duration) {
	count, err := uc.repo.CountPending(ctx, time.Now().UTC().Add(-olderThan))
	if err != nil {
		uc.logger.Error("count stale pending records", "error", err)
		return
	}
	if count > 0 {
		uc.logger.Warn("records stuck at pending from a previous run; not retried",
			"count", count)
	}
}
