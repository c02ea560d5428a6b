package driving

import (
	"context"

	"github.com/custodia-labs/helpdesk-rag/internal/core/domain"
)

// Retriever returns the chunks most relevant to a query, best first.
type Retriever interface {
	// Retrieve embeds the query and scores every stored chunk by cosine
	// similarity. At most topN chunks with score >= minSimilarity are
	// returned; an empty result means the corpus has nothing relevant and
	// is not an error.
	Retrieve(ctx context.Context, query string, topN int, minSimilarity float64) ([]*domain.RetrievedChunk, error)
}
