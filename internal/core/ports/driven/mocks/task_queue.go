package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/helpdesk-rag/internal/core/domain"
)

// MockTaskQueue is an in-memory mock implementation of TaskQueue for testing
type MockTaskQueue struct {
	mu        sync.Mutex
	pending   []*domain.Task
	completed []string
	failed    []string
}

// NewMockTaskQueue creates a new MockTaskQueue
func NewMockTaskQueue() *MockTaskQueue {
	return &MockTaskQueue{}
}

// Pending returns the tasks currently waiting
func (m *MockTaskQueue) Pending() []*domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Task, len(m.pending))
	copy(out, m.pending)
	return out
}

// Completed returns acknowledged task IDs
func (m *MockTaskQueue) Completed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.completed))
	copy(out, m.completed)
	return out
}

// Failed returns failed task IDs
func (m *MockTaskQueue) Failed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.failed))
	copy(out, m.failed)
	return out
}

func (m *MockTaskQueue) Enqueue(ctx context.Context, task *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, task)
	return nil
}

func (m *MockTaskQueue) Dequeue(ctx context.Context, timeout time.Duration) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.pending) == 0 {
		return nil, nil
	}
	task := m.pending[0]
	m.pending = m.pending[1:]
	return task, nil
}

func (m *MockTaskQueue) Complete(ctx context.Context, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completed = append(m.completed, taskID)
	return nil
}

func (m *MockTaskQueue) Fail(ctx context.Context, task *domain.Task, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed = append(m.failed, task.ID)
	return nil
}
