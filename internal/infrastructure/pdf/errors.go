package pdf

import "errors"

var (
	// ErrPageCountMismatch is returned when the serialized document has a different number of pages than assembled
	ErrPageCountMismatch = errors.New("document page count does not match assembled pages")

	// ErrEmptyPreview is returned when a preview is requested for a document without pages
	ErrEmptyPreview = errors.New("document has no page to preview")
)
