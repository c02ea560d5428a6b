package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/helpdesk-rag/internal/core/domain"
)

// MockTextExtractor is a mock implementation of TextExtractor for testing
type MockTextExtractor struct {
	mu    sync.RWMutex
	texts map[string]string
	err   error
}

// NewMockTextExtractor creates a new MockTextExtractor
func NewMockTextExtractor() *MockTextExtractor {
	return &MockTextExtractor{
		texts: make(map[string]string),
	}
}

// SetText pins the extracted text for a path
func (m *MockTextExtractor) SetText(path, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts[path] = text
}

// SetError makes all subsequent calls fail with err
func (m *MockTextExtractor) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockTextExtractor) Extract(ctx context.Context, path, mimeType string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.err != nil {
		return "", m.err
	}
	text, ok := m.texts[path]
	if !ok {
		return "", domain.ErrExtractionFailed
	}
	return text, nil
}
