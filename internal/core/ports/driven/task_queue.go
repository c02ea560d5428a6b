package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/helpdesk-rag/internal/core/domain"
)

// TaskQueue is the queue of background ingestion jobs.
type TaskQueue interface {
	// Enqueue adds a task to the queue for processing.
	Enqueue(ctx context.Context, task *domain.Task) error

	// Dequeue retrieves the next available task, blocking up to timeout.
	// Returns (nil, nil) when no task is available.
	Dequeue(ctx context.Context, timeout time.Duration) (*domain.Task, error)

	// Complete acknowledges successful processing of a task.
	Complete(ctx context.Context, taskID string) error

	// Fail records a task failure; the queue decides whether to retry.
	Fail(ctx context.Context, task *domain.Task, errMsg string) error
}
