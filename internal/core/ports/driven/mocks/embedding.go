package mocks

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/custodia-labs/helpdesk-rag/internal/core/domain"
)

// MockEmbeddingService is a mock implementation of EmbeddingService for testing.
// By default it produces deterministic pseudo-embeddings derived from the
// text, so identical texts always embed identically. Tests can pin exact
// vectors per text, inject errors, or make calls block until cancellation.
type MockEmbeddingService struct {
	mu         sync.Mutex
	dimensions int
	vectors    map[string][]float32
	err        error
	block      bool
	calls      int
}

// NewMockEmbeddingService creates a new MockEmbeddingService
func NewMockEmbeddingService(dimensions int) *MockEmbeddingService {
	if dimensions <= 0 {
		dimensions = 8
	}
	return &MockEmbeddingService{
		dimensions: dimensions,
		vectors:    make(map[string][]float32),
	}
}

// SetVector pins the embedding returned for an exact text
func (m *MockEmbeddingService) SetVector(text string, vector []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vectors[text] = vector
}

// SetError makes all subsequent calls fail with err
func (m *MockEmbeddingService) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetBlocking makes calls hang until the context is cancelled, then return
// domain.ErrEmbeddingTimeout. Used to simulate a provider that never responds.
func (m *MockEmbeddingService) SetBlocking(block bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.block = block
}

// Calls returns how many embedding calls were made
func (m *MockEmbeddingService) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockEmbeddingService) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.calls++
	err := m.err
	block := m.block
	m.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, domain.ErrEmbeddingTimeout
	}
	if err != nil {
		return nil, err
	}

	result := make([][]float32, len(texts))
	for i, text := range texts {
		result[i] = m.vectorFor(text)
	}
	return result, nil
}

func (m *MockEmbeddingService) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	vectors, err := m.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (m *MockEmbeddingService) Dimensions() int {
	return m.dimensions
}

func (m *MockEmbeddingService) Model() string {
	return "mock-embedding"
}

func (m *MockEmbeddingService) HealthCheck(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

func (m *MockEmbeddingService) Close() error {
	return nil
}

// vectorFor returns the pinned vector for a text, or a deterministic
// hash-derived one.
func (m *MockEmbeddingService) vectorFor(text string) []float32 {
	m.mu.Lock()
	if v, ok := m.vectors[text]; ok {
		m.mu.Unlock()
		out := make([]float32, len(v))
		copy(out, v)
		return out
	}
	dims := m.dimensions
	m.mu.Unlock()

	h := fnv.New32a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum32()

	vector := make([]float32, dims)
	for i := range vector {
		seed = seed*1664525 + 1013904223
		vector[i] = float32(seed%1000)/500.0 - 1.0
	}
	return vector
}
