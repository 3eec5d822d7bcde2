package pdf

import (
	"bytes"
	"fmt"
	"image/jpeg"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

const (
	DefaultPreviewDPI     = 36.0
	previewJPEGQuality    = 80
	PreviewContentType    = "image/jpeg"
	PreviewFileNameSuffix = ".preview.jpg"
)

// Previewer rasterizes the first page of an assembled document into a thumbnail.
type Previewer struct {
	dpi    float64
	logger *zap.Logger
}

// NewPreviewer creates a previewer; non-positive dpi falls back to DefaultPreviewDPI.
func NewPreviewer(dpi float64, logger *zap.Logger) *Previewer {
	if dpi <= 0 {
		dpi = DefaultPreviewDPI
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Previewer{dpi: dpi, logger: logger}
}

// Thumbnail renders page 1 of the PDF in data as a JPEG.
func (p *Previewer) Thumbnail(data []byte) ([]byte, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, ErrEmptyPreview
	}

	img, err := doc.ImageDPI(0, p.dpi)
	if err != nil {
		return nil, fmt.Errorf("failed to rasterize first page: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: previewJPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}

	p.logger.Debug("Preview rendered",
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()),
		zap.Int("bytes", buf.Len()))

	return buf.Bytes(), nil
}
