package service

import (
	"context"
	"io"
)

// FileUpload is one file taken from a multipart form.
type FileUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

type FileUploadService interface {
	// UploadImage stores an image under folder and returns its public URL.
	UploadImage(ctx context.Context, file FileUpload, folder string) (string, error)
	DeleteFile(ctx context.Context, fileURL string) error
	Close() error
}
