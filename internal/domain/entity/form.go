package entity

import (
	"strings"
	"time"
)

// DisplayDateLayout is the layout used when a date value is shown on a page
const DisplayDateLayout = "02 Jan 2006"

// FieldValue is a scalar form value: either free text or a date
type FieldValue struct {
	Text string    `json:"text,omitempty"`
	Date time.Time `json:"date,omitempty"`
}

// TextValue creates a text field value
func TextValue(s string) FieldValue {
	return FieldValue{Text: s}
}

// DateValue creates a date field value
func DateValue(t time.Time) FieldValue {
	return FieldValue{Date: t}
}

// IsEmpty reports whether the value carries no content
func (v FieldValue) IsEmpty() bool {
	return strings.TrimSpace(v.Text) == "" && v.Date.IsZero()
}

// String formats the value for display. Dates win over text.
func (v FieldValue) String() string {
	if !v.Date.IsZero() {
		return v.Date.Format(DisplayDateLayout)
	}
	return strings.TrimSpace(v.Text)
}

// FormValues is the snapshot of a filled form. Besides the template fields it carries
// the fixed top-level keys every report has.
type FormValues struct {
	OrganizationName string                `json:"organization_name"`
	PreparerName     string                `json:"preparer_name"`
	Date             time.Time             `json:"date"`
	Fields           map[string]FieldValue `json:"fields"`
}

// Value returns the value for a template field key
func (f FormValues) Value(key string) (FieldValue, bool) {
	v, ok := f.Fields[key]
	return v, ok
}

// Clone returns a deep copy so later edits by the caller cannot reach an export in progress
func (f FormValues) Clone() FormValues {
	out := f
	out.Fields = make(map[string]FieldValue, len(f.Fields))
	for k, v := range f.Fields {
		out.Fields[k] = v
	}
	return out
}
