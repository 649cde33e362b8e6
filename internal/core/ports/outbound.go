package ports

import (
	"context"
	"io"
	"time"

	"github.com/mcarruthers/shotsort/internal/core/domain"
)

// ScreenshotRepository persists and reads screenshot state.
type ScreenshotRepository interface {
	// Create inserts a pending row. Returns domain.ErrDuplicateAsset when a
	// row with the same non-empty asset identifier already exists.
	Create(ctx context.Context, shot *domain.Screenshot) error
	GetByID(ctx context.Context, id string) (*domain.Screenshot, error)
	GetByAssetIdentifier(ctx context.Context, assetIdentifier string) (*domain.Screenshot, error)
	// UpdateArtifacts attaches the thumbnail and full-image path written by
	// the importer before classification starts.
	UpdateArtifacts(ctx context.Context, id string, thumbnail []byte, imagePath string) error
	// CompleteClassification sets ocr text, category and status=done in a
	// single write. Completing an already-done row is a no-op.
	CompleteClassification(ctx context.Context, id string, cls domain.Classification) error
	CountPending(ctx context.Context, olderThan time.Time) (int, error)
}

// CategoryStore owns the mutable taxonomy.
type CategoryStore interface {
	// Seed ensures the default taxonomy exists. Idempotent; safe to call on
	// every process start and from concurrent starts.
	Seed(ctx context.Context) error
	// ResolveOrCreate looks a category up by case-insensitive name, creating
	// it when missing. Concurrent calls for the same name never produce two
	// rows with the same case-insensitive name.
	ResolveOrCreate(ctx context.Context, name string) (*domain.Category, error)
	// IsKnown is the case-insensitive membership test used to validate
	// remote classifier output.
	IsKnown(ctx context.Context, name string) (bool, error)
	GetByName(ctx context.Context, name string) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
}

// ObjectStorage stores full-resolution image artifacts.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue dispatches per-screenshot classification work.
type MessageQueue interface {
	PublishScreenshotImported(ctx context.Context, screenshotID string) error
	SubscribeScreenshotImported(ctx context.Context, handler func(context.Context, string) error) error
}

// TextExtractor recognizes text in a stored screenshot image.
type TextExtractor interface {
	Extract(ctx context.Context, shot *domain.Screenshot) (string, error)
}

// TextClassifier maps cleaned text to a category name. The remote and the
// keyword fallback implementations sit behind this one interface; the
// processing use case depends only on it.
type TextClassifier interface {
	Classify(ctx context.Context, text string) (string, error)
}

// Asset is one enumerated source image reference.
type Asset struct {
	Identifier string
	CapturedAt time.Time
}

// AssetSource enumerates the external image library.
type AssetSource interface {
	Enumerate(ctx context.Context) ([]Asset, error)
	Open(ctx context.Context, identifier string) (io.ReadCloser, error)
	// Watch invokes notify (no payload) whenever the source may have
	// changed, until ctx is done.
	Watch(ctx context.Context, notify func()) error
}
