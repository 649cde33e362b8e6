package ollama

import (
	"context"
	"fmt"
	"io"

	"github.com/mcarruthers/shotsort/internal/core/domain"
	"github.com/mcarruthers/shotsort/internal/core/ports"
)

// Extractor implements ports.TextExtractor against the vision client, reading
// the stored full-resolution artifact.
type Extractor struct {
	storage ports.ObjectStorage
	client  *Client
}

func NewExtractor(storage ports.ObjectStorage, client *Client) *Extractor {
	return &Extractor{storage: storage, client: client}
}

func (e *Extractor) Extract(ctx context.Context, shot *domain.Screenshot) (string, error) {
	if shot.ImagePath == "" {
		// Artifact persistence failed at import; nothing to recognize.
		return "", nil
	}
	reader, err := e.storage.Open(ctx, shot.ImagePath)
	if err != nil {
		return "", fmt.Errorf("open screenshot artifact: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read screenshot artifact: %w", err)
	}
	return e.client.Recognize(ctx, raw)
}
