package storage

import (
	"context"
	"errors"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// S3 multipart limits.
const (
	MinPartNumber = 1
	MaxPartNumber = 10000
)

var ErrInvalidPart = errors.New("invalid multipart part")

// CompletedPart identifies one uploaded part of a multipart upload.
type CompletedPart struct {
	PartNumber int32  `json:"partNumber"`
	ETag       string `json:"etag"`
}

// FileStorage defines the interface for object storage operations. Object
// bytes never pass through the API server: clients upload and download with
// presigned URLs.
type FileStorage interface {
	// GeneratePresignedUploadURL creates a temporary URL that allows PUT requests
	// for uploading an object directly to the storage provider.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests
	// for downloading/viewing an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	DeleteObject(ctx context.Context, objectKey string) error

	// CreateMultipartUpload starts a multipart upload and returns the provider's upload id.
	CreateMultipartUpload(ctx context.Context, objectKey string, contentType string) (string, error)
	GeneratePresignedPartURL(ctx context.Context, objectKey, uploadID string, partNumber int32, expires time.Duration) (string, error)
	CompleteMultipartUpload(ctx context.Context, objectKey, uploadID string, parts []CompletedPart) error
	AbortMultipartUpload(ctx context.Context, objectKey, uploadID string) error
}

// ValidatePartNumber checks n against S3's part number range.
func ValidatePartNumber(n int32) error {
	if n < MinPartNumber || n > MaxPartNumber {
		return ErrInvalidPart
	}
	return nil
}
