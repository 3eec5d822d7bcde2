package report

import (
	"regexp"
	"strings"
	"time"
)

const (
	filenameSeparator = "_"
	defaultTitle      = "report"
	undated           = "undated"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	unsafeChars   = regexp.MustCompile(`[^\p{L}\p{N}\-_.]`)
	separatorRun  = regexp.MustCompile(`_+`)
)

// Filename derives the export file name from the template title and the form date.
// The same title and date always give the same name.
func Filename(title string, date time.Time) string {
	name := whitespaceRun.ReplaceAllString(strings.TrimSpace(title), filenameSeparator)
	name = strings.ReplaceAll(name, "..", "")
	name = unsafeChars.ReplaceAllString(name, "")
	name = separatorRun.ReplaceAllString(name, filenameSeparator)
	name = strings.Trim(name, filenameSeparator+".")
	if name == "" {
		name = defaultTitle
	}

	stamp := undated
	if !date.IsZero() {
		stamp = date.Format("2006-01-02")
	}

	return name + filenameSeparator + stamp + ".pdf"
}
