package driving

import (
	"context"

	"github.com/custodia-labs/helpdesk-rag/internal/core/domain"
)

// AnswerService answers natural-language questions against the knowledge base.
type AnswerService interface {
	// Answer runs the query flow: cache check, retrieval, completion, cache
	// write. Completion failures come back as a degraded answer, not an
	// error; retrieval/embedding failures are returned as errors.
	Answer(ctx context.Context, query, sessionID string) (*domain.Answer, error)
}
