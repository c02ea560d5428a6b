package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/custodia-labs/helpdesk-rag/internal/core/domain"
	"github.com/custodia-labs/helpdesk-rag/internal/core/ports/driven"
	"github.com/custodia-labs/helpdesk-rag/internal/core/ports/driving"
)

// Ensure IngestFront implements driving.IngestService
var _ driving.IngestService = (*IngestFront)(nil)

// IngestFront is the thin scheduling surface in front of the ingestion
// pipeline. It validates the document, resets its processing state, and
// enqueues a background task; the worker does the heavy lifting.
type IngestFront struct {
	documentStore driven.DocumentStore
	chunkStore    driven.ChunkStore
	queue         driven.TaskQueue
	logger        *slog.Logger
}

// NewIngestFront creates a new IngestFront.
func NewIngestFront(documentStore driven.DocumentStore, chunkStore driven.ChunkStore, queue driven.TaskQueue, logger *slog.Logger) *IngestFront {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestFront{
		documentStore: documentStore,
		chunkStore:    chunkStore,
		queue:         queue,
		logger:        logger,
	}
}

// Ingest schedules ingestion of a document and returns once the task is
// queued. domain.ErrNotFound if the document does not exist.
func (f *IngestFront) Ingest(ctx context.Context, documentID string) error {
	return f.schedule(ctx, documentID, domain.NewIngestTask(documentID))
}

// Reingest schedules a wipe-and-ingest cycle for a document that changed.
func (f *IngestFront) Reingest(ctx context.Context, documentID string) error {
	return f.schedule(ctx, documentID, domain.NewReingestTask(documentID))
}

func (f *IngestFront) schedule(ctx context.Context, documentID string, task *domain.Task) error {
	if documentID == "" {
		return domain.ErrInvalidInput
	}

	if _, err := f.documentStore.Get(ctx, documentID); err != nil {
		return fmt.Errorf("get document %s: %w", documentID, err)
	}

	// Back to pending before the worker picks it up, so callers polling the
	// document see the restart immediately
	if err := f.documentStore.UpdateProcessing(ctx, documentID, domain.ProcessingUpdate{
		Status: domain.ProcessingStatusPending,
	}); err != nil {
		return fmt.Errorf("reset processing state: %w", err)
	}

	if err := f.queue.Enqueue(ctx, task); err != nil {
		return fmt.Errorf("enqueue %s: %w", task.Type, err)
	}

	f.logger.Info("ingestion scheduled", "document_id", documentID, "task_id", task.ID, "type", task.Type)
	return nil
}

// Stats returns corpus totals from the chunk store.
func (f *IngestFront) Stats(ctx context.Context) (*domain.CorpusStats, error) {
	stats, err := f.chunkStore.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("corpus stats: %w", err)
	}
	return stats, nil
}
