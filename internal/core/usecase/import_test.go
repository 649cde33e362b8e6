package usecase

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"
	"time"

	"github.com/mcarruthers/shotsort/internal/core/domain"
	"github.com/mcarruthers/shotsort/internal/core/ports"
	"github.com/mcarruthers/shotsort/internal/imaging"
)

type storageFake struct {
	saved   map[string][]byte
	saveErr error
}

func newStorageFake() *storageFake {
	return &storageFake{saved: make(map[string][]byte)}
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.saved[key] = raw
	return nil
}

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	raw, ok := f.saved[key]
	if !ok {
		return nil, errors.New("no such artifact: " + key)
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

type queueFake struct {
	published  []string
	publishErr error
}

func (f *queueFake) PublishScreenshotImported(_ context.Context, screenshotID string) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, screenshotID)
	return nil
}

func (f *queueFake) SubscribeScreenshotImported(context.Context, func(context.Context, string) error) error {
	return nil
}

type sourceFake struct {
	assets  []ports.Asset
	content map[string][]byte
	openErr map[string]error
}

func (f *sourceFake) Enumerate(context.Context) ([]ports.Asset, error) {
	return f.assets, nil
}

func (f *sourceFake) Open(_ context.Context, identifier string) (io.ReadCloser, error) {
	if err := f.openErr[identifier]; err != nil {
		return nil, err
	}
	raw, ok := f.content[identifier]
	if !ok {
		return nil, errors.New("no such asset: " + identifier)
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (f *sourceFake) Watch(ctx context.Context, _ func()) error {
	<-ctx.Done()
	return ctx.Err()
}

// pngBytes encodes a small solid-color image so the codec path runs for real.
func pngBytes(t *testing.T, c color.Color, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return encodePNG(t, img)
}

// pngGradient encodes a left-to-right brightness ramp, perceptually far from
// any solid-color image.
func pngGradient(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := uint8(x * 255 / (width - 1))
			img.Set(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return encodePNG(t, img)
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func newImportUC(repo *screenshotRepoFake, storage *storageFake, queue *queueFake, source *sourceFake) *ImportAssetUseCase {
	return NewImportAssetUseCase(repo, storage, queue, source, imaging.NewCodec(0), testLogger())
}

func TestImportAssetCreatesPendingAndPublishes(t *testing.T) {
	repo := newScreenshotRepoFake()
	storage := newStorageFake()
	queue := &queueFake{}
	uc := newImportUC(repo, storage, queue, &sourceFake{})

	raw := pngBytes(t, color.White, 320, 240)
	shot, err := uc.ImportAsset(context.Background(), raw, "asset-1", time.Now())
	if err != nil {
		t.Fatalf("ImportAsset() error = %v", err)
	}
	if shot.Status != domain.StatusPending {
		t.Fatalf("expected pending, got %s", shot.Status)
	}
	if shot.ImagePath == "" {
		t.Fatalf("expected full image artifact path recorded")
	}
	if len(shot.Thumbnail) == 0 {
		t.Fatalf("expected thumbnail bytes")
	}
	if _, ok := storage.saved[shot.ImagePath]; !ok {
		t.Fatalf("full image not saved under %s", shot.ImagePath)
	}
	if len(queue.published) != 1 || queue.published[0] != shot.ID {
		t.Fatalf("expected one publish for %s, got %v", shot.ID, queue.published)
	}
}

func TestImportAssetIsIdempotentPerIdentifier(t *testing.T) {
	repo := newScreenshotRepoFake()
	queue := &queueFake{}
	uc := newImportUC(repo, newStorageFake(), queue, &sourceFake{})

	raw := pngBytes(t, color.White, 32, 32)
	first, err := uc.ImportAsset(context.Background(), raw, "asset-1", time.Now())
	if err != nil {
		t.Fatalf("first import: %v", err)
	}
	second, err := uc.ImportAsset(context.Background(), raw, "asset-1", time.Now())
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected existing record back, got %s vs %s", second.ID, first.ID)
	}
	if len(repo.shots) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(repo.shots))
	}
	if len(queue.published) != 1 {
		t.Fatalf("re-import must not dispatch again, got %d publishes", len(queue.published))
	}
}

func TestImportAssetUndecodableBytesStillImport(t *testing.T) {
	repo := newScreenshotRepoFake()
	storage := newStorageFake()
	uc := newImportUC(repo, storage, &queueFake{}, &sourceFake{})

	shot, err := uc.ImportAsset(context.Background(), []byte("not an image"), "asset-1", time.Now())
	if err != nil {
		t.Fatalf("ImportAsset() error = %v", err)
	}
	if shot.Thumbnail != nil {
		t.Fatalf("expected no thumbnail for undecodable bytes")
	}
	if shot.ImagePath == "" {
		t.Fatalf("raw bytes should still be persisted")
	}
}

func TestImportAssetPublishFailureLeavesPending(t *testing.T) {
	repo := newScreenshotRepoFake()
	queue := &queueFake{publishErr: errors.New("nats gone")}
	uc := newImportUC(repo, newStorageFake(), queue, &sourceFake{})

	shot, err := uc.ImportAsset(context.Background(), pngBytes(t, color.White, 16, 16), "asset-1", time.Now())
	if err != nil {
		t.Fatalf("publish failure must not fail the import: %v", err)
	}
	if repo.shots[shot.ID].Status != domain.StatusPending {
		t.Fatalf("record must stay pending when dispatch fails")
	}
}

func TestImportAllSkipsKnownIdentifiersAndPerceptualCopies(t *testing.T) {
	white := pngBytes(t, color.White, 64, 64)
	gradient := pngGradient(t, 64, 64)
	source := &sourceFake{
		assets: []ports.Asset{
			{Identifier: "2026/known.png"},
			{Identifier: "2026/white-a.png"},
			{Identifier: "2026/white-b.png"},
			{Identifier: "2026/ramp.png"},
		},
		content: map[string][]byte{
			"2026/white-a.png": white,
			"2026/white-b.png": append([]byte(nil), white...),
			"2026/ramp.png":    gradient,
		},
	}
	repo := newScreenshotRepoFake(&domain.Screenshot{
		ID: "existing", AssetIdentifier: "2026/known.png", Status: domain.StatusDone,
	})
	uc := newImportUC(repo, newStorageFake(), &queueFake{}, source)

	outcomes := map[string]int{}
	uc.SetAssetObserver(func(outcome string) { outcomes[outcome]++ })

	if err := uc.ImportAll(context.Background()); err != nil {
		t.Fatalf("ImportAll() error = %v", err)
	}
	// known.png skipped by identifier, white-b skipped as a perceptual copy
	// of white-a within the same scan.
	if outcomes["imported"] != 2 {
		t.Fatalf("expected 2 imports, got %v", outcomes)
	}
	if outcomes["skipped"] != 2 {
		t.Fatalf("expected 2 skips, got %v", outcomes)
	}
	if len(repo.shots) != 3 {
		t.Fatalf("expected 3 records total, got %d", len(repo.shots))
	}
}

func TestImportAllContinuesPastUnreadableAssets(t *testing.T) {
	source := &sourceFake{
		assets: []ports.Asset{
			{Identifier: "broken.png"},
			{Identifier: "good.png"},
		},
		content: map[string][]byte{"good.png": pngBytes(t, color.White, 16, 16)},
		openErr: map[string]error{"broken.png": errors.New("io error")},
	}
	repo := newScreenshotRepoFake()
	uc := newImportUC(repo, newStorageFake(), &queueFake{}, source)

	outcomes := map[string]int{}
	uc.SetAssetObserver(func(outcome string) { outcomes[outcome]++ })

	if err := uc.ImportAll(context.Background()); err != nil {
		t.Fatalf("ImportAll() error = %v", err)
	}
	if outcomes["error"] != 1 || outcomes["imported"] != 1 {
		t.Fatalf("expected one error and one import, got %v", outcomes)
	}
}
