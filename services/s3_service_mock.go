package services

import (
	"context"
	"fmt"
	"sync"
)

// MockS3Service is an in-memory S3Interface for tests
type MockS3Service struct {
	objects map[string][]byte
	mu      sync.RWMutex

	// PutErr, when set, is returned by PutObject
	PutErr error
}

// NewMockS3Service creates a new mock S3 service
func NewMockS3Service() *MockS3Service {
	return &MockS3Service{
		objects: make(map[string][]byte),
	}
}

// SetAsMockForTesting sets this mock as the global S3 service instance for testing
func (m *MockS3Service) SetAsMockForTesting() {
	SetS3Service(m)
}

// PutObject stores content under a mock key
func (m *MockS3Service) PutObject(ctx context.Context, folder, filename, contentType string, content []byte) (string, error) {
	if m.PutErr != nil {
		return "", m.PutErr
	}

	s3Key := fmt.Sprintf("%s/mock_%s", folder, filename)

	m.mu.Lock()
	m.objects[s3Key] = append([]byte(nil), content...)
	m.mu.Unlock()

	return s3Key, nil
}

// GetPresignedURL returns a fake presigned URL for stored keys
func (m *MockS3Service) GetPresignedURL(ctx context.Context, s3Key string) (string, error) {
	if s3Key == "" {
		return "", nil
	}

	m.mu.RLock()
	_, exists := m.objects[s3Key]
	m.mu.RUnlock()

	if !exists {
		return "", fmt.Errorf("file not found in mock S3: %s", s3Key)
	}

	return fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/%s?mock=true", s3Key), nil
}

// DeleteFile removes a stored key
func (m *MockS3Service) DeleteFile(ctx context.Context, s3Key string) error {
	if s3Key == "" {
		return nil
	}

	m.mu.Lock()
	delete(m.objects, s3Key)
	m.mu.Unlock()

	return nil
}

// GetUploadedFiles returns a copy of all stored objects
func (m *MockS3Service) GetUploadedFiles() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make(map[string][]byte, len(m.objects))
	for k, v := range m.objects {
		files[k] = v
	}
	return files
}

// FileExists checks if a key exists in mock storage
func (m *MockS3Service) FileExists(s3Key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.objects[s3Key]
	return exists
}

// Clear removes all objects from mock storage
func (m *MockS3Service) Clear() {
	m.mu.Lock()
	m.objects = make(map[string][]byte)
	m.mu.Unlock()
}
