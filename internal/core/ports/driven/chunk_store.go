package driven

import (
	"context"

	"github.com/custodia-labs/helpdesk-rag/internal/core/domain"
)

// ChunkStore persists document chunks and their embeddings.
// (document_id, chunk_index) is the unit of identity; Replace for one
// document is the unit of atomicity.
type ChunkStore interface {
	// Replace atomically swaps all chunks for a document with the given set
	// and returns the number of chunks committed. On failure nothing is kept
	// for the document, so the caller's chunk bookkeeping always matches
	// what is actually stored.
	Replace(ctx context.Context, documentID string, chunks []*domain.Chunk) (int, error)

	// DeleteByDocument removes all chunks for a document. Idempotent.
	DeleteByDocument(ctx context.Context, documentID string) error

	// All returns every stored chunk, for brute-force similarity scoring.
	// Acceptable at helpdesk corpus sizes; an ANN index can replace it
	// behind this same interface.
	All(ctx context.Context) ([]*domain.Chunk, error)

	// Count returns the number of chunks stored for a document.
	Count(ctx context.Context, documentID string) (int, error)

	// Stats returns corpus-wide totals for dashboards.
	Stats(ctx context.Context) (*domain.CorpusStats, error)
}
