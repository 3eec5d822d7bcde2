package port

import "errors"

var (
	// ErrLocked is returned by SessionLock.Acquire when the key is already held
	ErrLocked = errors.New("lock already held")

	// ErrTemplateNotFound is returned by TemplateCatalog.Get for unknown IDs
	ErrTemplateNotFound = errors.New("template not found")
)
