package render

import (
	"image"
	"image/color"
	"strings"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

const ellipsis = "…"

func lineHeight(face font.Face) int {
	m := face.Metrics()
	return (m.Ascent + m.Descent).Ceil() + m.Height.Ceil()/5
}

func ascent(face font.Face) int {
	return face.Metrics().Ascent.Ceil()
}

func textWidth(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

// drawText draws s with its top edge at y.
func drawText(dst *image.RGBA, face font.Face, c color.Color, x, y int, s string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y+ascent(face)),
	}
	d.DrawString(s)
}

// drawTextRight draws s so that it ends at right.
func drawTextRight(dst *image.RGBA, face font.Face, c color.Color, right, y int, s string) {
	drawText(dst, face, c, right-textWidth(face, s), y, s)
}

// wrapText breaks s into lines no wider than maxWidth. Explicit newlines are kept and
// words wider than a full line are broken between runes.
func wrapText(face font.Face, s string, maxWidth int) []string {
	if maxWidth <= 0 {
		return nil
	}
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		current := ""
		for _, word := range words {
			candidate := word
			if current != "" {
				candidate = current + " " + word
			}
			if textWidth(face, candidate) <= maxWidth {
				current = candidate
				continue
			}
			if current != "" {
				lines = append(lines, current)
				current = ""
			}
			for textWidth(face, word) > maxWidth {
				head, tail := splitToWidth(face, word, maxWidth)
				lines = append(lines, head)
				word = tail
			}
			current = word
		}
		lines = append(lines, current)
	}
	return lines
}

// splitToWidth returns the longest prefix of s that fits, and the remainder. At least
// one rune is always consumed.
func splitToWidth(face font.Face, s string, maxWidth int) (string, string) {
	end := 0
	for i, r := range s {
		next := i + utf8.RuneLen(r)
		if end > 0 && textWidth(face, s[:next]) > maxWidth {
			break
		}
		end = next
	}
	return s[:end], s[end:]
}

// truncate shortens s with a trailing ellipsis so that it fits maxWidth.
func truncate(face font.Face, s string, maxWidth int) string {
	if textWidth(face, s) <= maxWidth {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := strings.TrimRight(string(runes), " ") + ellipsis
		if textWidth(face, candidate) <= maxWidth {
			return candidate
		}
	}
	return ellipsis
}

// clampLines keeps at most n lines, marking the cut with an ellipsis.
func clampLines(face font.Face, lines []string, n, width int) []string {
	if len(lines) <= n {
		return lines
	}
	out := append([]string{}, lines[:n]...)
	out[n-1] = truncate(face, out[n-1]+" "+ellipsis, width)
	return out
}
