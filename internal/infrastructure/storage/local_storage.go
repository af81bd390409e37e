package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"ecotrack/internal/domain/service"
)

// LocalStorage keeps uploads on disk under dir and serves them from baseURL.
// It backs development setups without a bucket.
type LocalStorage struct {
	dir      string
	baseURL  string
	maxWidth int
}

func NewLocalStorage(dir, baseURL string, maxWidth int) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %v", err)
	}
	return &LocalStorage{
		dir:      dir,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxWidth: maxWidth,
	}, nil
}

func (s *LocalStorage) UploadImage(ctx context.Context, file service.FileUpload, folder string) (string, error) {
	raw, err := io.ReadAll(file.Content)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %v", err)
	}

	data, contentType, err := PrepareImage(raw, file.ContentType, s.maxWidth)
	if err != nil {
		return "", err
	}

	name := buildObjectName("", folder, contentType)
	target := filepath.Join(s.dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create folder: %v", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %v", err)
	}
	return s.baseURL + "/" + name, nil
}

func (s *LocalStorage) DeleteFile(ctx context.Context, fileURL string) error {
	if !strings.HasPrefix(fileURL, s.baseURL+"/") {
		return fmt.Errorf("file %s is not stored locally", fileURL)
	}

	name := path.Clean("/" + strings.TrimPrefix(fileURL, s.baseURL+"/"))
	if err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(name))); err != nil {
		return fmt.Errorf("failed to delete file: %v", err)
	}
	return nil
}

func (s *LocalStorage) Close() error {
	return nil
}
