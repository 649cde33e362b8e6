package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// DefaultThumbnailMaxDim matches the list-view thumbnail size.
	DefaultThumbnailMaxDim = 200
	thumbnailJPEGQuality   = 70
)

// Codec decodes source images and produces bounded thumbnails.
type Codec struct {
	maxDim int
}

func NewCodec(thumbnailMaxDim int) *Codec {
	if thumbnailMaxDim <= 0 {
		thumbnailMaxDim = DefaultThumbnailMaxDim
	}
	return &Codec{maxDim: thumbnailMaxDim}
}

// Decode parses raw image bytes (jpeg, png, gif or webp).
func (c *Codec) Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// ThumbnailJPEG downscales img so its largest side is at most the configured
// maximum and encodes it as JPEG. Images already within bounds are re-encoded
// without scaling.
func (c *Codec) ThumbnailJPEG(img image.Image) ([]byte, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("empty image bounds")
	}

	if w > c.maxDim || h > c.maxDim {
		scale := float64(c.maxDim) / float64(max(w, h))
		dst := image.NewRGBA(image.Rect(0, 0, scaled(w, scale), scaled(h, scale)))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: thumbnailJPEGQuality}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

func scaled(dim int, scale float64) int {
	out := int(float64(dim) * scale)
	if out < 1 {
		return 1
	}
	return out
}
