package utils

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	emailRegex   = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	controlChars = regexp.MustCompile(`[\x00-\x1f\x7f]`)
	lineControls = regexp.MustCompile(`[\x00-\x09\x0b-\x1f\x7f]`)

	strictPolicy = bluemonday.StrictPolicy()
)

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

// SanitizeString removes control characters and surrounding whitespace
func SanitizeString(s string) string {
	return strings.TrimSpace(controlChars.ReplaceAllString(s, ""))
}

// SanitizeFileName keeps only the base name of an uploaded file, without control characters
func SanitizeFileName(name string) string {
	name = SanitizeString(name)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if len(name) > 255 {
		name = name[:255]
	}
	return name
}

// StripMarkup reduces free text to plain text: tags are dropped, entities decoded
// and control characters other than newlines removed.
func StripMarkup(s string) string {
	s = html.UnescapeString(strictPolicy.Sanitize(s))
	return strings.TrimSpace(lineControls.ReplaceAllString(s, ""))
}
