package pdf

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/garyjia/field-report/internal/domain/report"
	"github.com/garyjia/field-report/internal/infrastructure/render"
)

const producer = "field-report"

// Assembler places rendered pages, one per sheet, into a single PDF document.
type Assembler struct {
	format   render.PageFormat
	verifier *Verifier
	logger   *zap.Logger
}

// NewAssembler creates an assembler for pages of the given format.
func NewAssembler(format render.PageFormat, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{
		format:   format,
		verifier: NewVerifier(format),
		logger:   logger,
	}
}

// Assemble builds the document. Errors are returned as *report.AssemblyError; precondition
// failures wrap report.ErrEmptyDocument, report.ErrPageOrder or report.ErrPageGeometry.
func (a *Assembler) Assemble(pages []*render.RenderedPage, meta Meta) (*Artifact, error) {
	if err := a.checkPages(pages); err != nil {
		return nil, &report.AssemblyError{Err: err}
	}

	data, err := a.write(pages, meta)
	if err != nil {
		a.logger.Error("Failed to write document", zap.Error(err))
		return nil, &report.AssemblyError{Err: err}
	}

	if err := a.verifier.Verify(data, len(pages)); err != nil {
		a.logger.Error("Assembled document failed verification", zap.Error(err))
		return nil, &report.AssemblyError{Err: err}
	}

	artifact := &Artifact{
		Pages:       pages,
		Bytes:       data,
		DataURI:     EncodeDataURI(data),
		Filename:    report.Filename(meta.Title, meta.Date),
		PageCount:   len(pages),
		GeneratedAt: meta.GeneratedAt,
	}

	a.logger.Info("Document assembled",
		zap.String("filename", artifact.Filename),
		zap.Int("page_count", artifact.PageCount),
		zap.Int64("size_bytes", artifact.Size()))

	return artifact, nil
}

func (a *Assembler) checkPages(pages []*render.RenderedPage) error {
	if len(pages) == 0 {
		return report.ErrEmptyDocument
	}
	first := pages[0]
	if first == nil {
		return fmt.Errorf("%w: page 1 missing", report.ErrPageOrder)
	}
	for i, p := range pages {
		if p == nil {
			return fmt.Errorf("%w: page %d missing", report.ErrPageOrder, i+1)
		}
		if p.PageIndex != i {
			return fmt.Errorf("%w: position %d holds page index %d", report.ErrPageOrder, i, p.PageIndex)
		}
		if p.PageCount != len(pages) {
			return fmt.Errorf("%w: page %d numbered against %d pages, document has %d",
				report.ErrPageOrder, i+1, p.PageCount, len(pages))
		}
		if p.Width != first.Width || p.Height != first.Height || p.Width <= 0 || p.Height <= 0 {
			return fmt.Errorf("%w: page %d is %dx%d, page 1 is %dx%d",
				report.ErrPageGeometry, i+1, p.Width, p.Height, first.Width, first.Height)
		}
		if len(p.JPEG) == 0 {
			return fmt.Errorf("%w: page %d has no raster", report.ErrPageGeometry, i+1)
		}
	}
	return nil
}

func (a *Assembler) write(pages []*render.RenderedPage, meta Meta) ([]byte, error) {
	doc := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: a.format.WidthMM, Ht: a.format.HeightMM},
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.SetCompression(true)
	doc.SetCatalogSort(true)
	if !meta.GeneratedAt.IsZero() {
		doc.SetCreationDate(meta.GeneratedAt)
		doc.SetModificationDate(meta.GeneratedAt)
	}
	doc.SetTitle(meta.Title, true)
	doc.SetAuthor(meta.Author, true)
	doc.SetSubject(meta.Subject, true)
	doc.SetCreator(producer, true)
	doc.SetProducer(producer, true)

	opts := fpdf.ImageOptions{ImageType: "JPG", ReadDpi: false}
	for _, p := range pages {
		name := fmt.Sprintf("page-%04d", p.PageIndex)
		doc.RegisterImageOptionsReader(name, opts, bytes.NewReader(p.JPEG))
		doc.AddPage()
		doc.ImageOptions(name, 0, 0, a.format.WidthMM, a.format.HeightMM, false, opts, 0, "")
		if err := doc.Error(); err != nil {
			return nil, fmt.Errorf("failed to place page %d: %w", p.PageIndex+1, err)
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize document: %w", err)
	}
	return buf.Bytes(), nil
}
