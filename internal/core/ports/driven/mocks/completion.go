package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/helpdesk-rag/internal/core/domain"
)

// MockCompletionService is a mock implementation of CompletionService for testing
type MockCompletionService struct {
	mu     sync.Mutex
	answer *domain.Answer
	err    error
	calls  int
}

// NewMockCompletionService creates a new MockCompletionService
func NewMockCompletionService() *MockCompletionService {
	return &MockCompletionService{}
}

// SetAnswer pins the answer returned by Complete
func (m *MockCompletionService) SetAnswer(answer *domain.Answer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answer = answer
}

// SetError makes all subsequent calls fail with err
func (m *MockCompletionService) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many completion calls were made
func (m *MockCompletionService) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockCompletionService) Complete(ctx context.Context, query string, chunks []*domain.RetrievedChunk) (*domain.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.err != nil {
		return nil, m.err
	}
	if m.answer != nil {
		return m.answer, nil
	}

	answer := &domain.Answer{
		ResponseType: domain.ResponseTypeAnswer,
		Summary:      "mock answer for: " + query,
		CreatedAt:    time.Now(),
	}
	for _, rc := range chunks {
		answer.Sources = append(answer.Sources, domain.AnswerSource{
			DocumentID: rc.Chunk.DocumentID,
			ChunkIndex: rc.Chunk.Index,
			Score:      rc.Score,
		})
	}
	return answer, nil
}

func (m *MockCompletionService) Model() string {
	return "mock-completion"
}

func (m *MockCompletionService) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

func (m *MockCompletionService) Close() error {
	return nil
}
