package entity

// DefaultPhotoLimit is the photo capacity used when a template does not set one
const DefaultPhotoLimit = 15

// Field input kinds
const (
	FieldKindText     = "text"
	FieldKindTextarea = "textarea"
	FieldKindNumber   = "number"
	FieldKindDate     = "date"
	FieldKindSelect   = "select"
)

// FieldDef describes one input of a template
type FieldDef struct {
	Key         string   `json:"key" yaml:"key"`
	Label       string   `json:"label" yaml:"label"`
	Kind        string   `json:"kind" yaml:"kind"`
	Placeholder string   `json:"placeholder,omitempty" yaml:"placeholder"`
	Options     []string `json:"options,omitempty" yaml:"options"`
}

// IsDate returns true if the field holds a date value
func (f FieldDef) IsDate() bool {
	return f.Kind == FieldKindDate
}

// Template is the caller-owned schema of a report: title, fields and photo capacity.
// The export pipeline never mutates it.
type Template struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Fields      []FieldDef `json:"fields" yaml:"fields"`
	PhotoLimit  int        `json:"photo_limit" yaml:"photo_limit"`
}

// MaxPhotos returns the photo capacity, falling back to DefaultPhotoLimit
func (t *Template) MaxPhotos() int {
	if t.PhotoLimit <= 0 {
		return DefaultPhotoLimit
	}
	return t.PhotoLimit
}

// Field looks up a field definition by key
func (t *Template) Field(key string) (FieldDef, bool) {
	for _, f := range t.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return FieldDef{}, false
}
