package render

import (
	"image"
	"image/color"
	"image/draw"
	"sync/atomic"
)

// Surface is the single drawing target used for one export. Pages are drawn onto it one
// at a time; it refuses a second acquisition until the holder releases it.
type Surface struct {
	img  *image.RGBA
	held atomic.Bool
}

// NewSurface allocates a white surface of the given pixel size.
func NewSurface(width, height int) *Surface {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Surface{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// NewSurfaceFor allocates a surface sized for one page of the format.
func NewSurfaceFor(format PageFormat) *Surface {
	w, h := format.Size()
	return NewSurface(w, h)
}

// Bounds returns the pixel rectangle of the surface.
func (s *Surface) Bounds() image.Rectangle {
	return s.img.Bounds()
}

// Acquire clears the surface to white and hands it to the caller.
// The returned release func must be called once the page is encoded.
func (s *Surface) Acquire() (*image.RGBA, func(), error) {
	if !s.held.CompareAndSwap(false, true) {
		return nil, nil, ErrSurfaceBusy
	}
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	var released atomic.Bool
	release := func() {
		if released.CompareAndSwap(false, true) {
			s.held.Store(false)
		}
	}
	return s.img, release, nil
}

// InUse reports whether a page currently holds the surface.
func (s *Surface) InUse() bool {
	return s.held.Load()
}
