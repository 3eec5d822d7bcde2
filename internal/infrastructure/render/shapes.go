package render

import (
	"image"
	"image/color"
	"image/draw"
)

var (
	colorInk    = color.RGBA{R: 33, G: 37, B: 41, A: 255}
	colorMuted  = color.RGBA{R: 108, G: 117, B: 125, A: 255}
	colorAccent = color.RGBA{R: 31, G: 78, B: 121, A: 255}
	colorRule   = color.RGBA{R: 206, G: 212, B: 218, A: 255}
	colorShade  = color.RGBA{R: 244, G: 246, B: 249, A: 255}
	colorFrame  = color.RGBA{R: 226, G: 230, B: 234, A: 255}
	colorVeil   = color.NRGBA{R: 255, G: 255, B: 255, A: 96}
)

func fillRect(dst draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Over)
}

// strokeRect draws a border of the given width inside r.
func strokeRect(dst draw.Image, r image.Rectangle, c color.Color, width int) {
	if width < 1 {
		width = 1
	}
	fillRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width), c)
	fillRect(dst, image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y), c)
	fillRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+width, r.Max.Y), c)
	fillRect(dst, image.Rect(r.Max.X-width, r.Min.Y, r.Max.X, r.Max.Y), c)
}

func hline(dst draw.Image, x0, x1, y int, c color.Color, width int) {
	if width < 1 {
		width = 1
	}
	fillRect(dst, image.Rect(x0, y, x1, y+width), c)
}

func vline(dst draw.Image, x, y0, y1 int, c color.Color, width int) {
	if width < 1 {
		width = 1
	}
	fillRect(dst, image.Rect(x, y0, x+width, y1), c)
}
