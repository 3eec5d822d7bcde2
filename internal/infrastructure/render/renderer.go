package render

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image/jpeg"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/field-report/internal/domain/report"
)

// Config controls the raster output of the renderer.
type Config struct {
	DPI         int
	MarginMM    float64
	JPEGQuality int
}

// DefaultConfig returns A4 at 150 DPI with a 12mm margin and JPEG quality 92.
func DefaultConfig() Config {
	return Config{
		DPI:         DefaultDPI,
		MarginMM:    DefaultMarginMM,
		JPEGQuality: DefaultJPEGQuality,
	}
}

// Mark identifies one generation run in every page footer.
type Mark struct {
	GeneratedAt time.Time
	DocumentID  string
}

// Reference is the short document reference printed in footers.
func (m Mark) Reference() string {
	ref := strings.ToUpper(strings.ReplaceAll(m.DocumentID, "-", ""))
	if len(ref) > 8 {
		ref = ref[:8]
	}
	return ref
}

// Text is the footer line for the mark.
func (m Mark) Text() string {
	text := "generated " + m.GeneratedAt.Format(captionTimeLayout)
	if ref := m.Reference(); ref != "" {
		text += " | ref " + ref
	}
	return text
}

// RenderedPage is one encoded page raster. It is not modified after Render returns.
type RenderedPage struct {
	PageIndex int
	PageCount int
	Width     int
	Height    int
	DPI       int
	JPEG      []byte
	// Checksum is the hex SHA-256 of the raw RGBA pixels
	Checksum string
}

// Renderer lays out page descriptors onto a surface and encodes the result.
type Renderer struct {
	format  PageFormat
	quality int
	logger  *zap.Logger
}

// NewRenderer creates a renderer, loading the embedded fonts up front.
func NewRenderer(cfg Config, logger *zap.Logger) (*Renderer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	quality := cfg.JPEGQuality
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	if _, _, err := loadFonts(); err != nil {
		return nil, err
	}
	return &Renderer{
		format:  A4(cfg.DPI, cfg.MarginMM),
		quality: quality,
		logger:  logger,
	}, nil
}

// Format returns the page format every rendered page conforms to.
func (r *Renderer) Format() PageFormat {
	return r.format
}

// NewSurface allocates a surface matching the renderer's page format.
func (r *Renderer) NewSurface() *Surface {
	return NewSurfaceFor(r.format)
}

// Render draws one page. Any failure is returned as a *report.RenderError carrying the
// page index.
func (r *Renderer) Render(surface *Surface, desc report.PageDescriptor, mark Mark) (*RenderedPage, error) {
	if desc == nil {
		return nil, &report.RenderError{PageIndex: -1, Err: ErrUnknownDescriptor}
	}
	idx := desc.Index()
	fail := func(err error) (*RenderedPage, error) {
		r.logger.Error("Failed to render page",
			zap.Int("page_index", idx),
			zap.String("kind", string(desc.Kind())),
			zap.Error(err))
		return nil, &report.RenderError{PageIndex: idx, Err: err}
	}

	if surface == nil {
		return fail(fmt.Errorf("%w: no surface", ErrSurfaceGeometry))
	}
	want := r.format.Bounds()
	if got := surface.Bounds(); got.Empty() || got != want {
		return fail(fmt.Errorf("%w: surface %dx%d, page %dx%d", ErrSurfaceGeometry, got.Dx(), got.Dy(), want.Dx(), want.Dy()))
	}

	dst, release, err := surface.Acquire()
	if err != nil {
		return fail(err)
	}
	defer release()

	faces, err := newFaceSet(r.format.DPI)
	if err != nil {
		return fail(err)
	}
	defer faces.Close()

	switch page := desc.(type) {
	case *report.InfoPage:
		err = r.drawInfoPage(dst, faces, page, mark)
	case *report.PhotoPage:
		err = r.drawPhotoPage(dst, faces, page, mark)
	default:
		err = fmt.Errorf("%w: %T", ErrUnknownDescriptor, desc)
	}
	if err != nil {
		return fail(err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: r.quality}); err != nil {
		return fail(fmt.Errorf("failed to encode page: %w", err))
	}
	sum := sha256.Sum256(dst.Pix)

	r.logger.Debug("Page rendered",
		zap.Int("page_index", idx),
		zap.Int("page_count", desc.Count()),
		zap.String("kind", string(desc.Kind())),
		zap.Int("bytes", buf.Len()))

	return &RenderedPage{
		PageIndex: idx,
		PageCount: desc.Count(),
		Width:     want.Dx(),
		Height:    want.Dy(),
		DPI:       r.format.DPI,
		JPEG:      buf.Bytes(),
		Checksum:  hex.EncodeToString(sum[:]),
	}, nil
}
