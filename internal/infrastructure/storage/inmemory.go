package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	billingapp "github.com/kellertobias/servobill-sub000/internal/application/billing"
)

var _ billingapp.DocumentStorageService = (*InMemoryObjectStorage)(nil)

// InMemoryObjectStorage implements DocumentStorageService with an in-process
// map. Used for local development and tests where no S3 endpoint exists.
type InMemoryObjectStorage struct {
	mu      sync.RWMutex
	objects map[string][]byte

	// BaseURL is used when generating download URLs
	BaseURL string
	bucket  string
	region  string
}

// NewInMemoryObjectStorage creates an empty in-memory store
func NewInMemoryObjectStorage(bucket, region string) *InMemoryObjectStorage {
	return &InMemoryObjectStorage{
		objects: make(map[string][]byte),
		BaseURL: "https://storage.invalid",
		bucket:  bucket,
		region:  region,
	}
}

// Upload stores data under the given key, overwriting any existing object
func (s *InMemoryObjectStorage) Upload(_ context.Context, storageKey string, data []byte, _ string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	s.objects[storageKey] = buf
	return nil
}

// GenerateDownloadURL returns a fake URL; the object must exist
func (s *InMemoryObjectStorage) GenerateDownloadURL(
	_ context.Context,
	storageKey string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	if expiresIn <= 0 {
		expiresIn = defaultPresignExpiration
	}

	s.mu.RLock()
	_, exists := s.objects[storageKey]
	s.mu.RUnlock()
	if !exists {
		return "", time.Time{}, errors.New("object not found: " + storageKey)
	}

	expiresAt := time.Now().Add(expiresIn)
	return s.BaseURL + "/" + s.bucket + "/" + storageKey, expiresAt, nil
}

// DeleteObject removes an object; deleting a missing object is not an error
func (s *InMemoryObjectStorage) DeleteObject(_ context.Context, storageKey string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, storageKey)
	return nil
}

// ObjectExists reports whether an object is present
func (s *InMemoryObjectStorage) ObjectExists(_ context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errors.New("storage key is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.objects[storageKey]
	return exists, nil
}

// Get returns the stored bytes for a key, for assertions in tests
func (s *InMemoryObjectStorage) Get(storageKey string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, exists := s.objects[storageKey]
	return data, exists
}

// GetBucket returns the bucket name
func (s *InMemoryObjectStorage) GetBucket() string {
	return s.bucket
}

// GetRegion returns the bucket region
func (s *InMemoryObjectStorage) GetRegion() string {
	return s.region
}
