package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"mobility-portal/internal/models"
)

// MockDatabaseID is the id of the first record saved in a MemoryStore.
const MockDatabaseID = "mock-db-id-123"

// MemoryStore keeps records in memory, newest last.
type MemoryStore struct {
	mu      sync.RWMutex
	records []models.SubmissionMetaDb
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) SaveSubmission(ctx context.Context, data models.SubmissionData) (*models.SubmissionMetaDb, error) {
	if err := ValidateRecord(data); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := MockDatabaseID
	if n := len(m.records); n > 0 {
		id = fmt.Sprintf("%s-%d", MockDatabaseID, n+1)
	}
	rec := models.SubmissionMetaDb{SubmissionData: data, DatabaseID: id}
	m.records = append(m.records, rec)
	return &rec, nil
}

func (m *MemoryStore) GetMySubmission(ctx context.Context, email string) (*models.SubmissionMetaDb, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.records) - 1; i >= 0; i-- {
		if strings.EqualFold(m.records[i].Email, email) {
			rec := m.records[i]
			return &rec, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) ListAllSubmissions(ctx context.Context) ([]models.SubmissionMetaDb, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.SubmissionMetaDb(nil), m.records...), nil
}
