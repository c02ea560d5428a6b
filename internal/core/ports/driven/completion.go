package driven

import (
	"context"

	"github.com/custodia-labs/helpdesk-rag/internal/core/domain"
)

// CompletionService turns retrieved chunks into a final structured answer.
// Implementations are the only place that parse model output into
// domain.Answer fields.
type CompletionService interface {
	// Complete answers a query using the given chunks as context.
	// A call that exceeds the provider deadline returns domain.ErrCompletionTimeout.
	Complete(ctx context.Context, query string, chunks []*domain.RetrievedChunk) (*domain.Answer, error)

	// Model returns the model name being used
	Model() string

	// Ping verifies the completion service is available
	Ping(ctx context.Context) error

	// Close releases resources held by the completion service
	Close() error
}
