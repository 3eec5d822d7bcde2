package report

import (
	"html"
	"strings"
	"sync"

	"github.com/garyjia/field-report/internal/domain/entity"
	"github.com/microcosm-cc/bluemonday"
)

var (
	notesPolicyOnce sync.Once
	notesPolicy     *bluemonday.Policy
)

// Build turns the inputs of one export into the ordered page plan.
// The first descriptor is always the info page; photo pages follow in chunk order.
// PageCount is stamped on every descriptor before Build returns and never changes afterwards.
func Build(tpl *entity.Template, values entity.FormValues, notes string, photos []entity.Photo) []PageDescriptor {
	groups := Chunk(photos, PageCapacity)
	total := PageCountFor(len(photos))

	pages := make([]PageDescriptor, 0, total)
	pages = append(pages, &InfoPage{
		Template:  tpl,
		Values:    values,
		Notes:     CleanNotes(notes),
		PageIndex: 0,
		PageCount: total,
	})

	for i, group := range groups {
		pages = append(pages, &PhotoPage{
			Photos:    group,
			Section:   i + 1,
			Sections:  len(groups),
			PageIndex: i + 1,
			PageCount: total,
		})
	}

	return pages
}

// PageCountFor returns the number of pages a document with n photos has
func PageCountFor(n int) int {
	if n <= 0 {
		return 1
	}
	return 1 + (n+PageCapacity-1)/PageCapacity
}

// CleanNotes strips markup and surrounding whitespace from free-text notes
func CleanNotes(notes string) string {
	trimmed := strings.TrimSpace(notes)
	if trimmed == "" {
		return ""
	}
	notesPolicyOnce.Do(func() {
		notesPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(html.UnescapeString(notesPolicy.Sanitize(trimmed)))
}

// Validate checks the inputs an export requires before any page is built
func Validate(values entity.FormValues) error {
	if strings.TrimSpace(values.OrganizationName) == "" {
		return &ValidationError{Field: "organization_name", Message: "is required"}
	}
	return nil
}
