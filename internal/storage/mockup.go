package storage

import (
	"context"
	"sync"

	"mobility-portal/internal/models"
)

const mockBaseURL = "https://mock-storage.local/"

// MockUploader keeps documents in memory. It is the development default
// and backs tests that need a working storage.
type MockUploader struct {
	mu      sync.Mutex
	objects map[string]*models.File
}

func NewMockUploader() *MockUploader {
	return &MockUploader{objects: make(map[string]*models.File)}
}

func (m *MockUploader) UploadSingleFile(ctx context.Context, email string, slot models.Slot, submissionID string, file *models.File) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := ObjectKey("", email, slot, submissionID)

	m.mu.Lock()
	m.objects[key] = file
	m.mu.Unlock()

	return mockBaseURL + key, nil
}

// Object returns the document stored under key.
func (m *MockUploader) Object(key string) (*models.File, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.objects[key]
	return f, ok
}

func (m *MockUploader) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
