package report

import (
	"fmt"
	"strings"

	"github.com/garyjia/field-report/internal/domain/entity"
)

// EmptyValue is printed in the field table for absent or empty values
const EmptyValue = "-"

// PageKind tags a descriptor variant
type PageKind string

const (
	PageKindInfo  PageKind = "INFO"
	PageKindPhoto PageKind = "PHOTO"
)

// PageDescriptor is the plan for one output page. It is either an *InfoPage or a *PhotoPage.
type PageDescriptor interface {
	Kind() PageKind
	// Index is the zero-based position of the page in the document
	Index() int
	// Count is the total number of pages in the document
	Count() int
	// FooterText is the pagination label printed at the bottom of the page
	FooterText() string
}

// FieldRow is one line of the info page field table
type FieldRow struct {
	Key   string
	Label string
	Value string
}

// InfoPage is always the first page: header, summary, field table and notes
type InfoPage struct {
	Template  *entity.Template
	Values    entity.FormValues
	Notes     string
	PageIndex int
	PageCount int
}

func (p *InfoPage) Kind() PageKind     { return PageKindInfo }
func (p *InfoPage) Index() int         { return p.PageIndex }
func (p *InfoPage) Count() int         { return p.PageCount }
func (p *InfoPage) FooterText() string { return footerText(p.PageIndex, p.PageCount) }

// HasNotes returns true if a notes block is printed
func (p *InfoPage) HasNotes() bool {
	return p.Notes != ""
}

// Rows returns the field table: every template field in declared order
func (p *InfoPage) Rows() []FieldRow {
	if p.Template == nil {
		return nil
	}
	rows := make([]FieldRow, 0, len(p.Template.Fields))
	for _, f := range p.Template.Fields {
		value := EmptyValue
		if v, ok := p.Values.Value(f.Key); ok && !v.IsEmpty() {
			value = v.String()
		}
		label := strings.TrimSpace(f.Label)
		if label == "" {
			label = f.Key
		}
		rows = append(rows, FieldRow{Key: f.Key, Label: label, Value: value})
	}
	return rows
}

// PhotoPage holds up to PageCapacity photos laid out on a fixed grid
type PhotoPage struct {
	Photos    []entity.Photo
	Section   int // 1-based position among photo pages
	Sections  int // total number of photo pages
	PageIndex int
	PageCount int
}

func (p *PhotoPage) Kind() PageKind     { return PageKindPhoto }
func (p *PhotoPage) Index() int         { return p.PageIndex }
func (p *PhotoPage) Count() int         { return p.PageCount }
func (p *PhotoPage) FooterText() string { return footerText(p.PageIndex, p.PageCount) }

// HeaderText is the section label printed above the photo grid
func (p *PhotoPage) HeaderText() string {
	return fmt.Sprintf("section %d of %d", p.Section, p.Sections)
}

// EmptySlots is the number of grid cells left blank on this page
func (p *PhotoPage) EmptySlots() int {
	return PageCapacity - len(p.Photos)
}

func footerText(index, count int) string {
	return fmt.Sprintf("page %d of %d", index+1, count)
}
