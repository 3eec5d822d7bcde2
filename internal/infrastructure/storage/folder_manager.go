package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/field-report/internal/application/port"
)

const documentsRoot = "documents"

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9\-_]`)

// LocalFolderManager lays out one folder per document: documents/<date>/<id>
type LocalFolderManager struct {
	baseDir string
	logger  *zap.Logger
}

// NewLocalFolderManager creates a new LocalFolderManager
func NewLocalFolderManager(baseDir string, logger *zap.Logger) *LocalFolderManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalFolderManager{
		baseDir: baseDir,
		logger:  logger,
	}
}

// DocumentFolder returns the slash-separated folder, relative to the storage root, that
// holds every file of one document.
func (m *LocalFolderManager) DocumentFolder(documentID string, generatedAt time.Time) string {
	day := generatedAt.UTC().Format("2006-01-02")
	return path.Join(documentsRoot, day, SanitizeName(documentID))
}

// Delete removes a document folder and all contents. Missing folders are not an error.
func (m *LocalFolderManager) Delete(ctx context.Context, folder string) error {
	if strings.TrimSpace(folder) == "" {
		return fmt.Errorf("cannot delete folder: empty name")
	}
	folderPath, err := withinRoot(m.baseDir, filepath.Join(m.baseDir, filepath.FromSlash(folder)))
	if err != nil {
		return err
	}

	if err := os.RemoveAll(folderPath); err != nil {
		m.logger.Error("Failed to delete folder",
			zap.String("folder_path", folderPath),
			zap.Error(err))
		return fmt.Errorf("failed to delete folder: %w", err)
	}

	m.logger.Debug("Deleted folder", zap.String("folder_path", folderPath))
	return nil
}

// SanitizeName returns a filesystem-safe version of the name
// Removes path separators and special characters to prevent directory traversal
func SanitizeName(name string) string {
	name = strings.ReplaceAll(name, "..", "")
	name = unsafeNameChars.ReplaceAllString(name, "")
	if name == "" {
		return "unnamed"
	}
	return name
}

// Verify interface compliance
var _ port.FolderManager = (*LocalFolderManager)(nil)
