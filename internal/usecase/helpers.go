package usecase

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"ecotrack/internal/domain/repository"
	"ecotrack/internal/domain/service"
	"ecotrack/pkg/errors"
	"ecotrack/pkg/logger"
)

// UploadLimits bounds the images accepted by a single request.
type UploadLimits struct {
	MaxFiles int
	MaxSize  int64
}

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
}

func validateImages(files []service.FileUpload, limits UploadLimits) error {
	if limits.MaxFiles > 0 && len(files) > limits.MaxFiles {
		return errors.Validation(fmt.Sprintf("At most %d images are allowed", limits.MaxFiles), nil)
	}
	for _, f := range files {
		if !allowedImageTypes[strings.ToLower(f.ContentType)] {
			return errors.Validation(fmt.Sprintf("%s: only jpeg and png images are allowed", f.Filename), nil)
		}
		if limits.MaxSize > 0 && f.Size > limits.MaxSize {
			return errors.Validation(fmt.Sprintf("%s exceeds the %d MB limit", f.Filename, limits.MaxSize/(1024*1024)), nil)
		}
	}
	return nil
}

// uploadAll stores files in order. On failure the files already stored are
// removed again.
func uploadAll(ctx context.Context, files service.FileUploadService, uploads []service.FileUpload, folder string) ([]string, error) {
	urls := make([]string, 0, len(uploads))
	for _, upload := range uploads {
		url, err := files.UploadImage(ctx, upload, folder)
		if err != nil {
			discardUploads(ctx, files, urls)
			return nil, errors.Internal("Failed to upload image", err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func discardUploads(ctx context.Context, files service.FileUploadService, urls []string) {
	for _, url := range urls {
		if err := files.DeleteFile(ctx, url); err != nil {
			logger.Warn("Failed to delete orphaned upload %s: %v", url, err)
		}
	}
}

func loadError(err error, resource string) error {
	if stderrors.Is(err, repository.ErrNotFound) {
		return errors.NotFound(resource, err)
	}
	return errors.Internal("Failed to load "+strings.ToLower(resource), err)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
