package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"ecotrack/internal/domain/service"
	"ecotrack/pkg/logger"
)

const publicURLPrefix = "https://storage.googleapis.com/"

type CloudStorageClient struct {
	client     *storage.Client
	bucketName string
	rootFolder string
	maxWidth   int
}

type Options struct {
	BucketName      string
	RootFolder      string
	CredentialsFile string
	CredentialsJSON string
	MaxImageWidth   int
	CORSOrigins     []string
}

func NewCloudStorageClient(ctx context.Context, opts Options) (*CloudStorageClient, error) {
	var clientOpts []option.ClientOption
	switch {
	case opts.CredentialsJSON != "":
		clientOpts = append(clientOpts, option.WithCredentialsJSON([]byte(opts.CredentialsJSON)))
	case opts.CredentialsFile != "":
		clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsFile))
	}

	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %v", err)
	}

	storageClient := &CloudStorageClient{
		client:     client,
		bucketName: opts.BucketName,
		rootFolder: strings.Trim(opts.RootFolder, "/"),
		maxWidth:   opts.MaxImageWidth,
	}

	if err := storageClient.setBucketCORS(ctx, opts.CORSOrigins); err != nil {
		logger.Warn("Failed to set bucket CORS configuration: %v", err)
	}

	return storageClient, nil
}

func (c *CloudStorageClient) setBucketCORS(ctx context.Context, origins []string) error {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	bucket := c.client.Bucket(c.bucketName)

	bucketAttrs, err := bucket.Attrs(ctx)
	if err != nil {
		return fmt.Errorf("failed to get bucket attributes: %v", err)
	}
	if len(bucketAttrs.CORS) > 0 {
		return nil
	}

	_, err = bucket.Update(ctx, storage.BucketAttrsToUpdate{
		CORS: []storage.CORS{{
			MaxAge:          time.Hour,
			Methods:         []string{"GET", "HEAD"},
			Origins:         origins,
			ResponseHeaders: []string{"Content-Type"},
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to update bucket CORS: %v", err)
	}
	return nil
}

// UploadImage downscales the image if needed and stores it as a public object.
func (c *CloudStorageClient) UploadImage(ctx context.Context, file service.FileUpload, folder string) (string, error) {
	raw, err := io.ReadAll(file.Content)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %v", err)
	}

	data, contentType, err := PrepareImage(raw, file.ContentType, c.maxWidth)
	if err != nil {
		return "", err
	}

	objectName := c.objectName(folder, contentType)
	obj := c.client.Bucket(c.bucketName).Object(objectName)
	wc := obj.NewWriter(ctx)
	wc.ContentType = contentType
	wc.CacheControl = "public, max-age=86400"

	if _, err := io.Copy(wc, bytes.NewReader(data)); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("failed to copy file to GCS: %v", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %v", err)
	}

	if err := obj.ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
		return "", fmt.Errorf("failed to set ACL: %v", err)
	}

	return publicURLPrefix + c.bucketName + "/" + objectName, nil
}

func (c *CloudStorageClient) objectName(folder, contentType string) string {
	return buildObjectName(c.rootFolder, folder, contentType)
}

// buildObjectName returns root/folder/<uuid>-<timestamp>.<ext>.
func buildObjectName(root, folder, contentType string) string {
	ext := ".jpg"
	if contentType == "image/png" {
		ext = ".png"
	}
	name := fmt.Sprintf("%s/%s-%s%s", strings.Trim(folder, "/"), uuid.New().String(), time.Now().UTC().Format("20060102150405"), ext)
	if root != "" {
		name = root + "/" + name
	}
	return name
}

func (c *CloudStorageClient) DeleteFile(ctx context.Context, fileURL string) error {
	objectName, err := ObjectNameFromURL(fileURL, c.bucketName)
	if err != nil {
		return err
	}

	if err := c.client.Bucket(c.bucketName).Object(objectName).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete file: %v", err)
	}
	return nil
}

// ObjectNameFromURL extracts the object path from a public GCS URL of bucket.
func ObjectNameFromURL(fileURL, bucket string) (string, error) {
	if !strings.HasPrefix(fileURL, publicURLPrefix) {
		return "", fmt.Errorf("invalid GCS URL format")
	}
	parts := strings.SplitN(fileURL[len(publicURLPrefix):], "/", 2)
	if len(parts) != 2 || parts[0] != bucket || parts[1] == "" {
		return "", fmt.Errorf("invalid GCS URL format or bucket mismatch")
	}
	return parts[1], nil
}

func (c *CloudStorageClient) Close() error {
	return c.client.Close()
}
