package storage

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStorage fakes the presigning side of FileStorage. URLs are fake but
// stable, and multipart sessions are tracked so tests can check their state.
type MemoryStorage struct {
	mu      sync.Mutex
	Deleted []string
	// Uploads maps a provider upload id to its object key while it is open.
	Uploads  map[string]string
	Objects  map[string][]CompletedPart
	Err      error
	sequence int
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{Uploads: map[string]string{}, Objects: map[string][]CompletedPart{}}
}

func (m *MemoryStorage) GeneratePresignedUploadURL(_ context.Context, objectKey string, contentType string, expires time.Duration) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return fmt.Sprintf("https://storage.test/%s?op=put&type=%s&expires=%d", objectKey, contentType, int(expires.Seconds())), nil
}

func (m *MemoryStorage) GeneratePresignedDownloadURL(_ context.Context, objectKey string, expires time.Duration) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return fmt.Sprintf("https://storage.test/%s?op=get&expires=%d", objectKey, int(expires.Seconds())), nil
}

func (m *MemoryStorage) DeleteObject(_ context.Context, objectKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Deleted = append(m.Deleted, objectKey)
	delete(m.Objects, objectKey)
	return nil
}

func (m *MemoryStorage) CreateMultipartUpload(_ context.Context, objectKey string, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	m.sequence++
	id := fmt.Sprintf("upload-%d", m.sequence)
	m.Uploads[id] = objectKey
	return id, nil
}

func (m *MemoryStorage) GeneratePresignedPartURL(_ context.Context, objectKey, uploadID string, partNumber int32, expires time.Duration) (string, error) {
	if err := ValidatePartNumber(partNumber); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	if m.Uploads[uploadID] != objectKey {
		return "", fmt.Errorf("no such upload %s", uploadID)
	}
	return fmt.Sprintf("https://storage.test/%s?uploadId=%s&partNumber=%d&expires=%d", objectKey, uploadID, partNumber, int(expires.Seconds())), nil
}

func (m *MemoryStorage) CompleteMultipartUpload(_ context.Context, objectKey, uploadID string, parts []CompletedPart) error {
	sorted, err := completedParts(parts)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if m.Uploads[uploadID] != objectKey {
		return fmt.Errorf("no such upload %s", uploadID)
	}
	delete(m.Uploads, uploadID)
	stored := make([]CompletedPart, len(sorted))
	for i, p := range sorted {
		stored[i] = CompletedPart{PartNumber: *p.PartNumber, ETag: *p.ETag}
	}
	m.Objects[objectKey] = stored
	return nil
}

func (m *MemoryStorage) AbortMultipartUpload(_ context.Context, _ string, uploadID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	delete(m.Uploads, uploadID)
	return nil
}
