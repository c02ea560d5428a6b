package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/helpdesk-rag/internal/core/domain"
)

// MockAnswerCache is a mock implementation of AnswerCache for testing
type MockAnswerCache struct {
	mu      sync.RWMutex
	entries map[string]*domain.Answer
	puts    int
}

// NewMockAnswerCache creates a new MockAnswerCache
func NewMockAnswerCache() *MockAnswerCache {
	return &MockAnswerCache{
		entries: make(map[string]*domain.Answer),
	}
}

// Puts returns how many times Put was called
func (m *MockAnswerCache) Puts() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.puts
}

func (m *MockAnswerCache) Get(ctx context.Context, query string) (*domain.Answer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	answer, ok := m.entries[domain.QueryFingerprint(query)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *answer
	cp.Cached = true
	return &cp, nil
}

func (m *MockAnswerCache) Put(ctx context.Context, query string, answer *domain.Answer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *answer
	m.entries[domain.QueryFingerprint(query)] = &cp
	m.puts++
	return nil
}
