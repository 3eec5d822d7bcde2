package render

import (
	"fmt"
	"image"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/garyjia/field-report/internal/domain/entity"
	"github.com/garyjia/field-report/internal/domain/report"
)

const (
	gridColumns = 2
	gridRows    = 3

	captionTimeLayout = "02 Jan 2006 15:04"
	blurFactor        = 16
)

func (r *Renderer) drawPhotoPage(dst *image.RGBA, faces *faceSet, page *report.PhotoPage, mark Mark) error {
	fr := r.frame(faces)
	c := fr.content
	px := r.format.Px

	y := c.Min.Y
	drawText(dst, faces.heading, colorAccent, c.Min.X, y, "Photographic evidence")
	drawTextRight(dst, faces.label, colorMuted, c.Max.X, y+px(0.5), page.HeaderText())
	y += lineHeight(faces.heading) + px(2)
	hline(dst, c.Min.X, c.Max.X, y, colorAccent, px(0.6))
	y += px(4)

	gap := px(4)
	cellW := (c.Dx() - gap*(gridColumns-1)) / gridColumns
	cellH := (fr.bodyBottom - y - gap*(gridRows-1)) / gridRows
	if cellW <= 0 || cellH <= 0 {
		return fmt.Errorf("%w: no room for photo grid", ErrSurfaceGeometry)
	}

	for slot := 0; slot < gridColumns*gridRows; slot++ {
		col, row := slot%gridColumns, slot/gridColumns
		x0 := c.Min.X + col*(cellW+gap)
		y0 := y + row*(cellH+gap)
		cell := image.Rect(x0, y0, x0+cellW, y0+cellH)

		if slot >= len(page.Photos) {
			strokeRect(dst, cell, colorFrame, px(0.4))
			continue
		}
		if err := r.drawPhotoCell(dst, faces, cell, &page.Photos[slot]); err != nil {
			return err
		}
	}

	r.drawFooter(dst, faces, fr, page, mark)
	return nil
}

func (r *Renderer) drawPhotoCell(dst *image.RGBA, faces *faceSet, cell image.Rectangle, photo *entity.Photo) error {
	px := r.format.Px
	src, err := decodePhoto(photo.Data)
	if err != nil {
		return fmt.Errorf("failed to decode photo %s: %w", photo.ShortID(), err)
	}

	captionH := lineHeight(faces.label) + px(2)
	inner := cell.Inset(px(1.5))
	imgArea := image.Rect(inner.Min.X, inner.Min.Y, inner.Max.X, inner.Max.Y-captionH)
	if imgArea.Empty() {
		return fmt.Errorf("%w: photo cell too small", ErrSurfaceGeometry)
	}

	fillCover(dst, imgArea, src)
	drawContain(dst, imgArea, src)
	strokeRect(dst, cell, colorRule, px(0.3))

	cy := imgArea.Max.Y + px(1)
	id := photo.ShortID()
	drawText(dst, faces.label, colorInk, inner.Min.X, cy, id)
	captured := "time unknown"
	if !photo.CapturedAt.IsZero() {
		captured = photo.CapturedAt.Format(captionTimeLayout)
	}
	drawTextRight(dst, faces.small, colorMuted, inner.Max.X, cy+px(0.3),
		truncate(faces.small, captured, inner.Dx()-textWidth(faces.label, id)-px(2)))
	return nil
}

// fillCover paints area with a blurred copy of src scaled to cover it, cropping the overflow.
// The blur comes from scaling down to a coarse grid and back up.
func fillCover(dst draw.Image, area image.Rectangle, src image.Image) {
	sb := src.Bounds()
	scale := math.Max(float64(area.Dx())/float64(sb.Dx()), float64(area.Dy())/float64(sb.Dy()))
	cropW := int(math.Round(float64(area.Dx()) / scale))
	cropH := int(math.Round(float64(area.Dy()) / scale))
	cropW = min(max(cropW, 1), sb.Dx())
	cropH = min(max(cropH, 1), sb.Dy())
	x0 := sb.Min.X + (sb.Dx()-cropW)/2
	y0 := sb.Min.Y + (sb.Dy()-cropH)/2
	crop := image.Rect(x0, y0, x0+cropW, y0+cropH)

	small := image.NewRGBA(image.Rect(0, 0, max(area.Dx()/blurFactor, 1), max(area.Dy()/blurFactor, 1)))
	xdraw.ApproxBiLinear.Scale(small, small.Bounds(), src, crop, draw.Src, nil)
	xdraw.BiLinear.Scale(dst, area, small, small.Bounds(), draw.Src, nil)
	fillRect(dst, area, colorVeil)
}

// drawContain draws src centred in area, scaled to fit without cropping.
func drawContain(dst draw.Image, area image.Rectangle, src image.Image) {
	target := containRect(area, src.Bounds())
	xdraw.CatmullRom.Scale(dst, target, src, src.Bounds(), draw.Over, nil)
}

func containRect(area, src image.Rectangle) image.Rectangle {
	scale := math.Min(float64(area.Dx())/float64(src.Dx()), float64(area.Dy())/float64(src.Dy()))
	w := max(int(math.Round(float64(src.Dx())*scale)), 1)
	h := max(int(math.Round(float64(src.Dy())*scale)), 1)
	x0 := area.Min.X + (area.Dx()-w)/2
	y0 := area.Min.Y + (area.Dy()-h)/2
	return image.Rect(x0, y0, x0+w, y0+h)
}
