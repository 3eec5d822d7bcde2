package port

import (
	"context"
	"time"
)

// FileStorage defines file storage operations on paths relative to the storage root
type FileStorage interface {
	Save(ctx context.Context, path string, content []byte) error
	Read(ctx context.Context, path string) ([]byte, error)
	Exists(ctx context.Context, path string) bool
	Delete(ctx context.Context, path string) error
	GetFullPath(relativePath string) string
}

// FolderManager lays out and removes the per-document folders under the storage root
type FolderManager interface {
	DocumentFolder(documentID string, generatedAt time.Time) string
	Delete(ctx context.Context, folder string) error
}
