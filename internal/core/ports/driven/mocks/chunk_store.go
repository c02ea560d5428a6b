package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/helpdesk-rag/internal/core/domain"
)

// MockChunkStore is a mock implementation of ChunkStore for testing
type MockChunkStore struct {
	mu         sync.RWMutex
	byDocument map[string][]*domain.Chunk
	replaceErr error
}

// NewMockChunkStore creates a new MockChunkStore
func NewMockChunkStore() *MockChunkStore {
	return &MockChunkStore{
		byDocument: make(map[string][]*domain.Chunk),
	}
}

// SetReplaceError makes Replace fail with err
func (m *MockChunkStore) SetReplaceError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replaceErr = err
}

func (m *MockChunkStore) Replace(ctx context.Context, documentID string, chunks []*domain.Chunk) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.replaceErr != nil {
		return 0, m.replaceErr
	}

	stored := make([]*domain.Chunk, len(chunks))
	for i, c := range chunks {
		cp := *c
		stored[i] = &cp
	}
	m.byDocument[documentID] = stored
	return len(stored), nil
}

func (m *MockChunkStore) DeleteByDocument(ctx context.Context, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byDocument, documentID)
	return nil
}

func (m *MockChunkStore) All(ctx context.Context) ([]*domain.Chunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docIDs := make([]string, 0, len(m.byDocument))
	for id := range m.byDocument {
		docIDs = append(docIDs, id)
	}
	sort.Strings(docIDs)

	var all []*domain.Chunk
	for _, id := range docIDs {
		all = append(all, m.byDocument[id]...)
	}
	return all, nil
}

func (m *MockChunkStore) Count(ctx context.Context, documentID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byDocument[documentID]), nil
}

func (m *MockChunkStore) Stats(ctx context.Context) (*domain.CorpusStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &domain.CorpusStats{}
	for _, chunks := range m.byDocument {
		if len(chunks) == 0 {
			continue
		}
		stats.UniqueDocuments++
		stats.TotalChunks += len(chunks)
	}
	return stats, nil
}
