package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecotrack/internal/domain/service"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir, "http://localhost:5000/uploads/", 0)
	require.NoError(t, err)

	data := encodedImage(t, 20, 20, imaging.PNG)
	url, err := store.UploadImage(context.Background(), service.FileUpload{
		Filename:    "pothole.png",
		ContentType: "image/png",
		Size:        int64(len(data)),
		Content:     bytes.NewReader(data),
	}, "reports")
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(url, "http://localhost:5000/uploads/reports/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	stored := filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(url, "http://localhost:5000/uploads/")))
	_, err = os.Stat(stored)
	require.NoError(t, err)

	require.NoError(t, store.DeleteFile(context.Background(), url))
	_, err = os.Stat(stored)
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStorageRejectsForeignURLs(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "http://localhost:5000/uploads", 0)
	require.NoError(t, err)

	assert.Error(t, store.DeleteFile(context.Background(), "https://storage.googleapis.com/bucket/a.jpg"))
}

func TestBuildObjectName(t *testing.T) {
	name := buildObjectName("ecotrack", "/resolved/", "image/png")
	assert.True(t, strings.HasPrefix(name, "ecotrack/resolved/"))
	assert.True(t, strings.HasSuffix(name, ".png"))

	assert.True(t, strings.HasSuffix(buildObjectName("", "reports", "image/jpeg"), ".jpg"))
}
