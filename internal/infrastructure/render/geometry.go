package render

import (
	"image"
	"math"
)

const (
	mmPerInch = 25.4
	ptPerInch = 72.0

	// A4 portrait
	PageWidthMM  = 210.0
	PageHeightMM = 297.0

	DefaultDPI         = 150
	DefaultMarginMM    = 12.0
	DefaultJPEGQuality = 92
)

// PageFormat is the physical page contract shared by every rendered page.
type PageFormat struct {
	WidthMM  float64
	HeightMM float64
	MarginMM float64
	DPI      int
}

// A4 returns the A4 portrait format at the given raster density.
func A4(dpi int, marginMM float64) PageFormat {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	if marginMM < 0 {
		marginMM = DefaultMarginMM
	}
	return PageFormat{
		WidthMM:  PageWidthMM,
		HeightMM: PageHeightMM,
		MarginMM: marginMM,
		DPI:      dpi,
	}
}

// Px converts millimetres to whole pixels at the format density.
func (f PageFormat) Px(mm float64) int {
	return int(math.Round(mm / mmPerInch * float64(f.DPI)))
}

// Size returns the raster size of a full page in pixels.
func (f PageFormat) Size() (int, int) {
	return f.Px(f.WidthMM), f.Px(f.HeightMM)
}

// Bounds is the full page rectangle.
func (f PageFormat) Bounds() image.Rectangle {
	w, h := f.Size()
	return image.Rect(0, 0, w, h)
}

// Content is the page rectangle inside the margins.
func (f PageFormat) Content() image.Rectangle {
	m := f.Px(f.MarginMM)
	return f.Bounds().Inset(m)
}

// PointSize returns the page size in PDF points.
func (f PageFormat) PointSize() (float64, float64) {
	return f.WidthMM / mmPerInch * ptPerInch, f.HeightMM / mmPerInch * ptPerInch
}
