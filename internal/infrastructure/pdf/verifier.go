package pdf

import (
	"bytes"
	"fmt"
	"math"
	"sync"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/garyjia/field-report/internal/domain/report"
	"github.com/garyjia/field-report/internal/infrastructure/render"
)

// dimensionTolerance is the allowed deviation per page edge, in points.
const dimensionTolerance = 1.0

var disableConfigDir sync.Once

// Verifier re-reads a serialized document and checks the physical page contract.
type Verifier struct {
	widthPt  float64
	heightPt float64
}

// NewVerifier creates a verifier for the given page format.
func NewVerifier(format render.PageFormat) *Verifier {
	disableConfigDir.Do(pdfapi.DisableConfigDir)
	w, h := format.PointSize()
	return &Verifier{widthPt: w, heightPt: h}
}

// Verify checks that data parses, has wantPages pages, and that every page has the
// configured dimensions.
func (v *Verifier) Verify(data []byte, wantPages int) error {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := pdfapi.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return fmt.Errorf("failed to read assembled document: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return fmt.Errorf("failed to count pages: %w", err)
	}
	if ctx.PageCount != wantPages {
		return fmt.Errorf("%w: got %d, want %d", ErrPageCountMismatch, ctx.PageCount, wantPages)
	}

	dims, err := ctx.PageDims()
	if err != nil {
		return fmt.Errorf("failed to read page dimensions: %w", err)
	}
	for i, d := range dims {
		if math.Abs(d.Width-v.widthPt) > dimensionTolerance || math.Abs(d.Height-v.heightPt) > dimensionTolerance {
			return fmt.Errorf("%w: page %d is %.1fx%.1fpt, want %.1fx%.1fpt",
				report.ErrPageGeometry, i+1, d.Width, d.Height, v.widthPt, v.heightPt)
		}
	}
	return nil
}
