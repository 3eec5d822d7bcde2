package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalFileStorage_Save(t *testing.T) {
	tempDir := t.TempDir()
	fs := NewLocalFileStorage(tempDir, zap.NewNop())
	ctx := context.Background()

	t.Run("saves file and creates parent directories", func(t *testing.T) {
		err := fs.Save(ctx, "documents/2024-03-09/doc/report.pdf", []byte("%PDF-1.4"))
		require.NoError(t, err)

		fullPath := filepath.Join(tempDir, "documents", "2024-03-09", "doc", "report.pdf")
		assert.FileExists(t, fullPath)
		assert.Equal(t, fullPath, fs.GetFullPath("documents/2024-03-09/doc/report.pdf"))

		content, err := fs.Read(ctx, "documents/2024-03-09/doc/report.pdf")
		require.NoError(t, err)
		assert.Equal(t, []byte("%PDF-1.4"), content)
	})

	t.Run("overwrites existing file without leaving temp files", func(t *testing.T) {
		require.NoError(t, fs.Save(ctx, "a/file.txt", []byte("original")))
		require.NoError(t, fs.Save(ctx, "a/file.txt", []byte("updated")))

		content, err := fs.Read(ctx, "a/file.txt")
		require.NoError(t, err)
		assert.Equal(t, []byte("updated"), content)

		entries, err := os.ReadDir(filepath.Join(tempDir, "a"))
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("rejects paths outside the root", func(t *testing.T) {
		assert.ErrorIs(t, fs.Save(ctx, "../escape.txt", []byte("x")), ErrPathEscapesRoot)
		_, err := fs.Read(ctx, "../../etc/passwd")
		assert.ErrorIs(t, err, ErrPathEscapesRoot)
		assert.Error(t, fs.Save(ctx, "", []byte("x")))
	})
}

func TestLocalFileStorage_ExistsAndDelete(t *testing.T) {
	fs := NewLocalFileStorage(t.TempDir(), zap.NewNop())
	ctx := context.Background()

	require.NoError(t, fs.Save(ctx, "x/y.bin", []byte{1, 2, 3}))
	assert.True(t, fs.Exists(ctx, "x/y.bin"))
	assert.False(t, fs.Exists(ctx, "x"), "directories are not files")
	assert.False(t, fs.Exists(ctx, "../x/y.bin"))

	require.NoError(t, fs.Delete(ctx, "x/y.bin"))
	assert.False(t, fs.Exists(ctx, "x/y.bin"))
	assert.NoError(t, fs.Delete(ctx, "x/y.bin"), "delete is idempotent")
}

func TestLocalFolderManager(t *testing.T) {
	tempDir := t.TempDir()
	fm := NewLocalFolderManager(tempDir, zap.NewNop())
	fs := NewLocalFileStorage(tempDir, zap.NewNop())
	ctx := context.Background()

	at := time.Date(2024, 3, 9, 23, 30, 0, 0, time.FixedZone("X", -2*3600))
	folder := fm.DocumentFolder("1a2b-3c4d", at)
	assert.Equal(t, "documents/2024-03-10/1a2b-3c4d", folder)
	assert.Equal(t, "documents/2024-03-10/etcpasswd", fm.DocumentFolder("../etc/passwd", at))

	require.NoError(t, fs.Save(ctx, folder+"/report.pdf", []byte("pdf")))
	require.NoError(t, fs.Save(ctx, folder+"/report.preview.jpg", []byte("jpg")))

	require.NoError(t, fm.Delete(ctx, folder))
	assert.NoDirExists(t, filepath.Join(tempDir, filepath.FromSlash(folder)))
	assert.NoError(t, fm.Delete(ctx, folder), "delete is idempotent")

	assert.Error(t, fm.Delete(ctx, ""))
	assert.ErrorIs(t, fm.Delete(ctx, "../.."), ErrPathEscapesRoot)
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abc-123_x", "abc-123_x"},
		{"../../etc", "etc"},
		{"a b/c\\d", "abcd"},
		{"***", "unnamed"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeName(tt.in))
		})
	}
}
