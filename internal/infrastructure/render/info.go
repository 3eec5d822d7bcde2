package render

import (
	"image"
	"strings"

	"github.com/garyjia/field-report/internal/domain/entity"
	"github.com/garyjia/field-report/internal/domain/report"
)

const (
	defaultTitle = "Field report"
	undatedLabel = "undated"
)

// pageFrame holds the regions shared by both page layouts.
type pageFrame struct {
	content    image.Rectangle
	bodyBottom int
	footerTop  int
}

func (r *Renderer) frame(faces *faceSet) pageFrame {
	content := r.format.Content()
	footerTop := content.Max.Y - lineHeight(faces.small)
	return pageFrame{
		content:    content,
		footerTop:  footerTop,
		bodyBottom: footerTop - r.format.Px(4),
	}
}

func (r *Renderer) drawFooter(dst *image.RGBA, faces *faceSet, fr pageFrame, desc report.PageDescriptor, mark Mark) {
	c := fr.content
	hline(dst, c.Min.X, c.Max.X, fr.footerTop-r.format.Px(1.5), colorRule, r.format.Px(0.3))
	drawText(dst, faces.small, colorMuted, c.Min.X, fr.footerTop, mark.Text())
	drawTextRight(dst, faces.small, colorInk, c.Max.X, fr.footerTop, desc.FooterText())
}

func (r *Renderer) drawInfoPage(dst *image.RGBA, faces *faceSet, page *report.InfoPage, mark Mark) error {
	fr := r.frame(faces)
	c := fr.content
	px := r.format.Px
	pad := px(2)

	tpl := page.Template
	if tpl == nil {
		tpl = &entity.Template{}
	}

	// header: title on the left, date badge on the right
	y := c.Min.Y
	dateText := undatedLabel
	if !page.Values.Date.IsZero() {
		dateText = page.Values.Date.Format(entity.DisplayDateLayout)
	}
	badgeW := textWidth(faces.strong, dateText) + 2*px(3)
	badgeH := lineHeight(faces.strong) + 2*px(1)
	fillRect(dst, image.Rect(c.Max.X-badgeW, y, c.Max.X, y+badgeH), colorAccent)
	drawText(dst, faces.strong, colorShade, c.Max.X-badgeW+px(3), y+px(1), dateText)

	title := strings.TrimSpace(tpl.Title)
	if title == "" {
		title = defaultTitle
	}
	titleLines := clampLines(faces.title, wrapText(faces.title, title, c.Dx()-badgeW-px(4)), 2, c.Dx()-badgeW-px(4))
	for _, line := range titleLines {
		drawText(dst, faces.title, colorInk, c.Min.X, y, line)
		y += lineHeight(faces.title)
	}
	if y < c.Min.Y+badgeH {
		y = c.Min.Y + badgeH
	}
	if desc := strings.TrimSpace(tpl.Description); desc != "" {
		y += px(1)
		for _, line := range clampLines(faces.body, wrapText(faces.body, desc, c.Dx()), 3, c.Dx()) {
			drawText(dst, faces.body, colorMuted, c.Min.X, y, line)
			y += lineHeight(faces.body)
		}
	}
	y += px(3)
	hline(dst, c.Min.X, c.Max.X, y, colorAccent, px(0.6))
	y += px(4)

	// summary: organization and preparer side by side
	colGap := px(4)
	colW := (c.Dx() - colGap) / 2
	boxH := lineHeight(faces.label) + lineHeight(faces.strong) + 2*pad
	summary := []struct{ label, value string }{
		{"Organization", page.Values.OrganizationName},
		{"Prepared by", page.Values.PreparerName},
	}
	for i, s := range summary {
		x := c.Min.X + i*(colW+colGap)
		fillRect(dst, image.Rect(x, y, x+colW, y+boxH), colorShade)
		drawText(dst, faces.label, colorMuted, x+pad, y+pad, s.label)
		value := strings.TrimSpace(s.value)
		if value == "" {
			value = report.EmptyValue
		}
		drawText(dst, faces.strong, colorInk, x+pad, y+pad+lineHeight(faces.label), truncate(faces.strong, value, colW-2*pad))
	}
	y += boxH + px(5)

	// field table
	drawText(dst, faces.heading, colorAccent, c.Min.X, y, "Details")
	y += lineHeight(faces.heading) + px(1.5)

	limit := fr.bodyBottom
	if page.HasNotes() {
		limit -= px(5) + lineHeight(faces.heading) + px(1.5) + 2*lineHeight(faces.body) + 2*pad
	}
	y = r.drawFieldTable(dst, faces, c, y, limit, page.Rows())

	if page.HasNotes() && y+px(5) < fr.bodyBottom {
		y += px(5)
		drawText(dst, faces.heading, colorAccent, c.Min.X, y, "Notes")
		y += lineHeight(faces.heading) + px(1.5)
		if y < fr.bodyBottom {
			r.drawNotes(dst, faces, image.Rect(c.Min.X, y, c.Max.X, fr.bodyBottom), page.Notes)
		}
	}

	r.drawFooter(dst, faces, fr, page, mark)
	return nil
}

// drawFieldTable draws one row per field starting at y and returns the y below the table.
// Rows that do not fit above limit are replaced by a single ellipsis row.
func (r *Renderer) drawFieldTable(dst *image.RGBA, faces *faceSet, c image.Rectangle, y, limit int, rows []report.FieldRow) int {
	px := r.format.Px
	pad := px(2)
	border := px(0.25)
	labelW := c.Dx() * 35 / 100
	valueW := c.Dx() - labelW
	overflowH := lineHeight(faces.body) + 2*pad

	for i, row := range rows {
		labelLines := wrapText(faces.label, row.Label, labelW-2*pad)
		valueLines := wrapText(faces.body, row.Value, valueW-2*pad)
		rowH := max(len(labelLines)*lineHeight(faces.label), len(valueLines)*lineHeight(faces.body)) + 2*pad

		room := limit
		if i < len(rows)-1 {
			room -= overflowH
		}
		if y+rowH > room {
			rect := image.Rect(c.Min.X, y, c.Max.X, y+overflowH)
			strokeRect(dst, rect, colorRule, border)
			drawText(dst, faces.body, colorMuted, c.Min.X+pad, y+pad, ellipsis)
			return y + overflowH
		}

		rect := image.Rect(c.Min.X, y, c.Max.X, y+rowH)
		if i%2 == 0 {
			fillRect(dst, rect, colorShade)
		}
		strokeRect(dst, rect, colorRule, border)
		vline(dst, c.Min.X+labelW, rect.Min.Y, rect.Max.Y, colorRule, border)

		ly := y + pad
		for _, line := range labelLines {
			drawText(dst, faces.label, colorMuted, c.Min.X+pad, ly, line)
			ly += lineHeight(faces.label)
		}
		vy := y + pad
		for _, line := range valueLines {
			drawText(dst, faces.body, colorInk, c.Min.X+labelW+pad, vy, line)
			vy += lineHeight(faces.body)
		}
		y += rowH
	}
	return y
}

func (r *Renderer) drawNotes(dst *image.RGBA, faces *faceSet, area image.Rectangle, notes string) {
	pad := r.format.Px(2)
	lh := lineHeight(faces.body)
	maxLines := (area.Dy() - 2*pad) / lh
	if maxLines <= 0 {
		return
	}
	lines := clampLines(faces.body, wrapText(faces.body, notes, area.Dx()-2*pad), maxLines, area.Dx()-2*pad)

	box := image.Rect(area.Min.X, area.Min.Y, area.Max.X, area.Min.Y+len(lines)*lh+2*pad)
	strokeRect(dst, box, colorRule, r.format.Px(0.25))
	y := box.Min.Y + pad
	for _, line := range lines {
		drawText(dst, faces.body, colorInk, box.Min.X+pad, y, line)
		y += lh
	}
}
