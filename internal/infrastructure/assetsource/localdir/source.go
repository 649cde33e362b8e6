package localdir

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mcarruthers/shotsort/internal/core/domain"
	"github.com/mcarruthers/shotsort/internal/core/ports"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Source is a directory-backed asset source. The stable identifier is the
// slash-separated path relative to the root; capture time is file mtime.
type Source struct {
	root         string
	pollInterval time.Duration
}

func New(root string, pollInterval time.Duration) (*Source, error) {
	if root == "" {
		return nil, fmt.Errorf("asset dir is required")
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat asset dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("asset path is not a directory: %s", root)
	}
	if pollInterval <= 0 {
		pollInterval = time.Minute
	}
	return &Source{root: root, pollInterval: pollInterval}, nil
}

func (s *Source) Enumerate(ctx context.Context) ([]ports.Asset, error) {
	var assets []ports.Asset
	err := filepath.WalkDir(s.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if entry.IsDir() {
			if strings.HasPrefix(entry.Name(), ".") && path != s.root {
				return fs.SkipDir
			}
			return nil
		}
		if !imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return nil // raced with a delete; skip
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return nil
		}
		assets = append(assets, ports.Asset{
			Identifier: filepath.ToSlash(rel),
			CapturedAt: info.ModTime().UTC(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk asset dir: %w", err)
	}
	return assets, nil
}

func (s *Source) Open(_ context.Context, identifier string) (io.ReadCloser, error) {
	rel := filepath.FromSlash(identifier)
	if rel == "" || filepath.IsAbs(rel) || strings.Contains(rel, "..") {
		return nil, domain.WrapError(domain.ErrInvalidInput, "open asset",
			fmt.Errorf("invalid identifier %q", identifier))
	}
	f, err := os.Open(filepath.Join(s.root, rel))
	if err != nil {
		return nil, fmt.Errorf("open asset: %w", err)
	}
	return f, nil
}

// Watch fires notify on a fixed interval. The notification carries no
// payload; the importer re-scans and relies on dedup to stay idempotent.
func (s *Source) Watch(ctx context.Context, notify func()) error {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			notify()
		}
	}
}
