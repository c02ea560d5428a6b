package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/helpdesk-rag/internal/core/domain"
)

// MockDocumentStore is a mock implementation of DocumentStore for testing
type MockDocumentStore struct {
	mu        sync.RWMutex
	documents map[string]*domain.Document
	updates   []domain.ProcessingUpdate
}

// NewMockDocumentStore creates a new MockDocumentStore
func NewMockDocumentStore() *MockDocumentStore {
	return &MockDocumentStore{
		documents: make(map[string]*domain.Document),
	}
}

// Save seeds a document (test setup only; the pipeline never creates documents)
func (m *MockDocumentStore) Save(doc *domain.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *doc
	m.documents[doc.ID] = &cp
}

// Updates returns all processing updates applied, in order
func (m *MockDocumentStore) Updates() []domain.ProcessingUpdate {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.ProcessingUpdate, len(m.updates))
	copy(out, m.updates)
	return out
}

func (m *MockDocumentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *doc
	return &cp, nil
}

func (m *MockDocumentStore) UpdateProcessing(ctx context.Context, id string, update domain.ProcessingUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.documents[id]
	if !ok {
		return domain.ErrNotFound
	}
	doc.ProcessingStatus = update.Status
	doc.Processed = update.Processed
	doc.ChunksCount = update.ChunksCount
	doc.ProcessingNote = update.Note
	m.updates = append(m.updates, update)
	return nil
}
