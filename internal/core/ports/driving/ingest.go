package driving

import (
	"context"

	"github.com/custodia-labs/helpdesk-rag/internal/core/domain"
)

// IngestService is the ingestion surface exposed to the HTTP layer.
// Ingest and Reingest are fire-and-forget: they enqueue a background task and
// return; progress is observable via the document's processing_status.
type IngestService interface {
	// Ingest schedules ingestion of an approved document.
	Ingest(ctx context.Context, documentID string) error

	// Reingest schedules a chunk wipe followed by a fresh ingestion.
	Reingest(ctx context.Context, documentID string) error

	// Stats returns corpus totals for dashboards.
	Stats(ctx context.Context) (*domain.CorpusStats, error)
}
