package driven

import (
	"context"

	"github.com/custodia-labs/helpdesk-rag/internal/core/domain"
)

// AnswerCache memoizes final answers keyed by normalized-query fingerprint.
// Entries older than the configured TTL are treated as absent.
type AnswerCache interface {
	// Get returns the live cached answer for a query, or domain.ErrNotFound
	// if there is none (or it has expired).
	Get(ctx context.Context, query string) (*domain.Answer, error)

	// Put upserts the answer for a query, resetting its age.
	Put(ctx context.Context, query string, answer *domain.Answer) error
}
