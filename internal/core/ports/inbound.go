package ports

import (
	"context"
	"time"

	"github.com/mcarruthers/shotsort/internal/core/domain"
)

// AssetImporter is the inbound contract for import orchestration.
type AssetImporter interface {
	// ImportAsset ingests one raw image. assetIdentifier may be empty for
	// ad-hoc imports; when set it is the dedup key.
	ImportAsset(ctx context.Context, raw []byte, assetIdentifier string, capturedAt time.Time) (*domain.Screenshot, error)
	// ImportAll scans the asset source and imports everything not already
	// imported. Safe to invoke on every change notification.
	ImportAll(ctx context.Context) error
}

// ScreenshotProcessor is the inbound contract for asynchronous classification.
type ScreenshotProcessor interface {
	ProcessByID(ctx context.Context, screenshotID string) error
}
