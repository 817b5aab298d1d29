package storage_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nordcargo/forwarding-api/internal/config"
	"github.com/nordcargo/forwarding-api/internal/storage"
)

func TestNewStorage(t *testing.T) {
	logger := zap.NewNop()

	t.Run("local mode", func(t *testing.T) {
		s, err := storage.NewStorage(&config.StorageConfig{
			Mode:          "local",
			LocalBasePath: t.TempDir(),
		}, logger)
		require.NoError(t, err)
		assert.NotNil(t, s)
	})

	t.Run("cloud mode requires connection string", func(t *testing.T) {
		_, err := storage.NewStorage(&config.StorageConfig{Mode: "cloud"}, logger)
		assert.Error(t, err)
	})

	t.Run("unsupported mode", func(t *testing.T) {
		_, err := storage.NewStorage(&config.StorageConfig{Mode: "ftp"}, logger)
		assert.Error(t, err)
	})
}

func TestLocalStorage_UploadDownloadDelete(t *testing.T) {
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	content := "%PDF-1.4 quotation document"
	storagePath, size, err := s.Upload(ctx, "quote.pdf", "application/pdf", strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), size)
	assert.NotEmpty(t, storagePath)
	assert.True(t, strings.HasSuffix(storagePath, ".pdf"))

	reader, err := s.Download(ctx, storagePath)
	require.NoError(t, err)
	downloaded, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.NoError(t, reader.Close())
	assert.Equal(t, content, string(downloaded))

	require.NoError(t, s.Delete(ctx, storagePath))

	_, err = s.Download(ctx, storagePath)
	assert.Error(t, err)
}

func TestLocalStorage_UniquePaths(t *testing.T) {
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	// Same filename twice must not collide
	first, _, err := s.Upload(ctx, "quote.pdf", "application/pdf", strings.NewReader("one"))
	require.NoError(t, err)
	second, _, err := s.Upload(ctx, "quote.pdf", "application/pdf", strings.NewReader("two"))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestLocalStorage_DeleteMissingFileIsIdempotent(t *testing.T) {
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, s.Delete(context.Background(), "ab/cd/missing.pdf"))
}
