package driven

import (
	"context"

	"github.com/custodia-labs/helpdesk-rag/internal/core/domain"
)

// DocumentStore is the host application's document repository.
// The pipeline never creates or deletes documents; it only reads them and
// writes the bounded set of processing fields.
type DocumentStore interface {
	// Get retrieves a document by ID, or domain.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// UpdateProcessing writes the processing status fields for a document.
	UpdateProcessing(ctx context.Context, id string, update domain.ProcessingUpdate) error
}
