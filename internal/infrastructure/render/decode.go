package render

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/garyjia/field-report/internal/domain/entity"
)

var contentTypes = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// DefaultMaxPhotoPixels caps width*height of an accepted photo (50 MP)
const DefaultMaxPhotoPixels = 50_000_000

// PhotoInspector admits photo payloads the renderer can draw. MaxPixels bounds the
// decoded raster; zero means DefaultMaxPhotoPixels.
type PhotoInspector struct {
	MaxPixels int
}

// Inspect checks the header against the pixel limit, then decodes the full raster so
// truncated or corrupt payloads are rejected before they reach an export.
func (p PhotoInspector) Inspect(data []byte) (entity.PhotoInfo, error) {
	if len(data) == 0 {
		return entity.PhotoInfo{}, fmt.Errorf("empty image data")
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return entity.PhotoInfo{}, fmt.Errorf("unsupported image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return entity.PhotoInfo{}, fmt.Errorf("image has no pixels")
	}
	limit := p.MaxPixels
	if limit <= 0 {
		limit = DefaultMaxPhotoPixels
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(limit) {
		return entity.PhotoInfo{}, fmt.Errorf("image is %dx%d, larger than %d pixels", cfg.Width, cfg.Height, limit)
	}
	if _, err := decodePhoto(data); err != nil {
		return entity.PhotoInfo{}, fmt.Errorf("corrupt image: %w", err)
	}
	return entity.PhotoInfo{
		Width:       cfg.Width,
		Height:      cfg.Height,
		ContentType: contentTypes[format],
	}, nil
}

func decodePhoto(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image data")
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("image has no pixels")
	}
	return img, nil
}
