package storage

import (
	"alcyxob/fitcoach/internal/config"
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletedParts_SortsAndValidates(t *testing.T) {
	parts, err := completedParts([]CompletedPart{
		{PartNumber: 3, ETag: "c"},
		{PartNumber: 1, ETag: "a"},
		{PartNumber: 2, ETag: "b"},
	})
	require.NoError(t, err)
	require.Len(t, parts, 3)
	for i, p := range parts {
		assert.Equal(t, int32(i+1), aws.ToInt32(p.PartNumber))
	}

	_, err = completedParts(nil)
	assert.ErrorIs(t, err, ErrInvalidPart)
	_, err = completedParts([]CompletedPart{{PartNumber: 0, ETag: "x"}})
	assert.ErrorIs(t, err, ErrInvalidPart)
	_, err = completedParts([]CompletedPart{{PartNumber: 1, ETag: ""}})
	assert.ErrorIs(t, err, ErrInvalidPart)
	_, err = completedParts([]CompletedPart{{PartNumber: 1, ETag: "a"}, {PartNumber: 1, ETag: "b"}})
	assert.ErrorIs(t, err, ErrInvalidPart)
}

func TestValidatePartNumber(t *testing.T) {
	assert.NoError(t, ValidatePartNumber(1))
	assert.NoError(t, ValidatePartNumber(10000))
	assert.ErrorIs(t, ValidatePartNumber(10001), ErrInvalidPart)
}

func newTestStorage(t *testing.T) FileStorage {
	t.Helper()
	s, err := NewS3Storage(context.Background(), config.S3Config{
		Endpoint:        "http://localhost:9000",
		Region:          "us-east-1",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio-secret",
		BucketName:      "videos",
	})
	require.NoError(t, err)
	return s
}

// Presigning is a local signing operation, no server is contacted.
func TestPresignedURLs(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	put, err := s.GeneratePresignedUploadURL(ctx, "logs/videos/a/b/c.mp4", "video/mp4", time.Minute)
	require.NoError(t, err)
	u, err := url.Parse(put)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.True(t, strings.HasPrefix(u.Path, "/videos/logs/videos/a/b/c.mp4"))
	assert.Equal(t, "60", u.Query().Get("X-Amz-Expires"))

	get, err := s.GeneratePresignedDownloadURL(ctx, "logs/videos/a/b/c.mp4", 0)
	require.NoError(t, err)
	u, err = url.Parse(get)
	require.NoError(t, err)
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))

	part, err := s.GeneratePresignedPartURL(ctx, "k.mp4", "upload-1", 2, time.Minute)
	require.NoError(t, err)
	u, err = url.Parse(part)
	require.NoError(t, err)
	assert.Equal(t, "2", u.Query().Get("partNumber"))
	assert.Equal(t, "upload-1", u.Query().Get("uploadId"))

	_, err = s.GeneratePresignedPartURL(ctx, "k.mp4", "upload-1", 0, time.Minute)
	assert.ErrorIs(t, err, ErrInvalidPart)
}
