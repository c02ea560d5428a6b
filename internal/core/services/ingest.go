package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/custodia-labs/helpdesk-rag/internal/chunker"
	"github.com/custodia-labs/helpdesk-rag/internal/core/domain"
	"github.com/custodia-labs/helpdesk-rag/internal/core/ports/driven"
	"github.com/custodia-labs/helpdesk-rag/internal/metrics"
	"github.com/custodia-labs/helpdesk-rag/internal/runtime"
)

const (
	// defaultIngestBudget is the end-to-end time allowed per document
	defaultIngestBudget = 60 * time.Second

	// defaultEmbedBatchSize bounds how many chunks go to the provider per call
	defaultEmbedBatchSize = 16

	// statusWriteTimeout bounds terminal status writes, which run on a fresh
	// context because the ingestion budget context is already dead
	statusWriteTimeout = 10 * time.Second
)

// IngestOrchestrator drives a document through the ingestion state machine:
//
//	pending -> processing -> completed | timeout | failed
//
// The three terminal states are stable until an explicit re-ingestion.
// Ingestion errors never propagate to the caller that triggered them; they
// are absorbed here as terminal state transitions.
type IngestOrchestrator struct {
	documentStore driven.DocumentStore
	chunkStore    driven.ChunkStore
	extractor     driven.TextExtractor
	services      *runtime.Services
	logger        *slog.Logger
	metrics       *metrics.Metrics

	budget         time.Duration
	embedBatchSize int

	// Per-document in-flight guard. Single-process by design: concurrent
	// re-entry for the same document is a no-op, different documents run
	// fully in parallel.
	mu       sync.Mutex
	inFlight map[string]struct{}
}

// IngestOrchestratorConfig holds dependencies for IngestOrchestrator.
type IngestOrchestratorConfig struct {
	DocumentStore  driven.DocumentStore
	ChunkStore     driven.ChunkStore
	Extractor      driven.TextExtractor
	Services       *runtime.Services
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Budget         time.Duration // end-to-end budget per document
	EmbedBatchSize int
}

// NewIngestOrchestrator creates a new ingestion orchestrator.
func NewIngestOrchestrator(cfg IngestOrchestratorConfig) *IngestOrchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	budget := cfg.Budget
	if budget <= 0 {
		budget = defaultIngestBudget
	}
	batchSize := cfg.EmbedBatchSize
	if batchSize <= 0 {
		batchSize = defaultEmbedBatchSize
	}

	return &IngestOrchestrator{
		documentStore:  cfg.DocumentStore,
		chunkStore:     cfg.ChunkStore,
		extractor:      cfg.Extractor,
		services:       cfg.Services,
		logger:         logger,
		metrics:        cfg.Metrics,
		budget:         budget,
		embedBatchSize: batchSize,
		inFlight:       make(map[string]struct{}),
	}
}

// ProcessDocument ingests one document: extract -> chunk -> embed -> store,
// then records the terminal state on the document record. When wipe is set
// the document's chunks are deleted first (re-ingestion).
//
// Returns domain.ErrIngestInProgress if an ingestion for the same document
// is already running; callers treat that as a no-op, not a failure.
func (o *IngestOrchestrator) ProcessDocument(ctx context.Context, documentID string, wipe bool) error {
	if documentID == "" {
		return domain.ErrInvalidInput
	}
	if !o.acquire(documentID) {
		o.logger.Info("ingestion already running, skipping", "document_id", documentID)
		return domain.ErrIngestInProgress
	}
	defer o.release(documentID)

	start := time.Now()

	doc, err := o.documentStore.Get(ctx, documentID)
	if err != nil {
		return fmt.Errorf("get document %s: %w", documentID, err)
	}

	o.logger.Info("starting ingestion", "document_id", documentID, "title", doc.Title, "wipe", wipe)

	if err := o.documentStore.UpdateProcessing(ctx, documentID, domain.ProcessingUpdate{
		Status: domain.ProcessingStatusProcessing,
	}); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}

	if wipe {
		if err := o.chunkStore.DeleteByDocument(ctx, documentID); err != nil {
			o.failDocument(ctx, doc, start, fmt.Errorf("wipe chunks: %w", err))
			return nil
		}
	}

	budgetCtx, cancel := context.WithTimeout(ctx, o.budget)
	defer cancel()

	count, err := o.runPipeline(budgetCtx, doc)
	if err != nil {
		if budgetCtx.Err() == context.DeadlineExceeded {
			o.timeoutDocument(ctx, doc, start)
		} else {
			o.failDocument(ctx, doc, start, err)
		}
		return nil
	}

	if err := o.documentStore.UpdateProcessing(ctx, documentID, domain.ProcessingUpdate{
		Status:      domain.ProcessingStatusCompleted,
		Processed:   true,
		ChunksCount: count,
	}); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}

	if o.metrics != nil {
		o.metrics.IngestTotal.WithLabelValues(string(domain.ProcessingStatusCompleted)).Inc()
		o.metrics.IngestDuration.Observe(time.Since(start).Seconds())
		o.metrics.ChunksStoredTotal.Add(float64(count))
	}

	o.logger.Info("ingestion completed",
		"document_id", documentID,
		"chunks", count,
		"duration_seconds", time.Since(start).Seconds(),
	)

	return nil
}

// runPipeline performs the pipeline stages and returns the number of chunks
// actually committed by the chunk store. The returned count is the only
// source of truth for chunks_count; it is never estimated.
func (o *IngestOrchestrator) runPipeline(ctx context.Context, doc *domain.Document) (int, error) {
	text, err := o.extractor.Extract(ctx, doc.FilePath, doc.MimeType)
	if err != nil {
		return 0, fmt.Errorf("extract %s: %w", doc.FilePath, err)
	}

	settings := o.services.Config().Settings()
	chunkTexts := chunker.New(chunker.Config{
		TargetSize:         settings.ChunkSize,
		Overlap:            settings.ChunkOverlap,
		PreserveSentences:  true,
		PreserveParagraphs: true,
	}).Split(text)

	// Empty extraction is a processing failure, not a silent success
	if len(chunkTexts) == 0 {
		return 0, fmt.Errorf("%w: document produced no text", domain.ErrExtractionFailed)
	}

	embeddingService := o.services.EmbeddingService()
	if embeddingService == nil {
		return 0, domain.ErrServiceUnavailable
	}

	now := time.Now()
	chunks := make([]*domain.Chunk, 0, len(chunkTexts))

	for batchStart := 0; batchStart < len(chunkTexts); batchStart += o.embedBatchSize {
		batchEnd := batchStart + o.embedBatchSize
		if batchEnd > len(chunkTexts) {
			batchEnd = len(chunkTexts)
		}
		batch := chunkTexts[batchStart:batchEnd]

		vectors, err := embeddingService.Embed(ctx, batch)
		if err != nil {
			return 0, fmt.Errorf("embed chunks %d-%d: %w", batchStart, batchEnd-1, err)
		}
		if len(vectors) != len(batch) {
			return 0, fmt.Errorf("%w: got %d vectors for %d texts", domain.ErrEmbeddingProvider, len(vectors), len(batch))
		}

		for i, vector := range vectors {
			chunks = append(chunks, &domain.Chunk{
				DocumentID: doc.ID,
				Index:      batchStart + i,
				Text:       batch[i],
				Embedding:  vector,
				CreatedAt:  now,
			})
		}
	}

	count, err := o.chunkStore.Replace(ctx, doc.ID, chunks)
	if err != nil {
		return 0, fmt.Errorf("store chunks: %w", err)
	}
	return count, nil
}

// timeoutDocument records the fail-open timeout outcome: the document stays
// visible in the knowledge base (processed=true) but is unsearchable until
// re-ingested (chunks_count=0). Partial chunks are wiped so the recorded
// count matches the store.
func (o *IngestOrchestrator) timeoutDocument(ctx context.Context, doc *domain.Document, start time.Time) {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), statusWriteTimeout)
	defer cancel()

	if err := o.chunkStore.DeleteByDocument(writeCtx, doc.ID); err != nil {
		o.logger.Warn("failed to wipe partial chunks after timeout", "document_id", doc.ID, "error", err)
	}

	update := domain.ProcessingUpdate{
		Status:    domain.ProcessingStatusTimeout,
		Processed: true,
		Note:      fmt.Sprintf("processing exceeded the %s budget; document is visible but not yet searchable", o.budget),
	}
	if err := o.documentStore.UpdateProcessing(writeCtx, doc.ID, update); err != nil {
		o.logger.Error("failed to record timeout state", "document_id", doc.ID, "error", err)
	}

	if o.metrics != nil {
		o.metrics.IngestTotal.WithLabelValues(string(domain.ProcessingStatusTimeout)).Inc()
		o.metrics.IngestDuration.Observe(time.Since(start).Seconds())
	}

	o.logger.Warn("ingestion timed out",
		"document_id", doc.ID,
		"budget", o.budget,
		"duration_seconds", time.Since(start).Seconds(),
	)
}

// failDocument records a failed ingestion. The document stays ineligible for
// retrieval and the reason is kept on the record, never swallowed.
func (o *IngestOrchestrator) failDocument(ctx context.Context, doc *domain.Document, start time.Time, cause error) {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), statusWriteTimeout)
	defer cancel()

	update := domain.ProcessingUpdate{
		Status: domain.ProcessingStatusFailed,
		Note:   cause.Error(),
	}
	if err := o.documentStore.UpdateProcessing(writeCtx, doc.ID, update); err != nil {
		o.logger.Error("failed to record failure state", "document_id", doc.ID, "error", err)
	}

	if o.metrics != nil {
		o.metrics.IngestTotal.WithLabelValues(string(domain.ProcessingStatusFailed)).Inc()
		o.metrics.IngestDuration.Observe(time.Since(start).Seconds())
	}

	o.logger.Error("ingestion failed", "document_id", doc.ID, "error", cause)
}

func (o *IngestOrchestrator) acquire(documentID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, busy := o.inFlight[documentID]; busy {
		return false
	}
	o.inFlight[documentID] = struct{}{}
	return true
}

func (o *IngestOrchestrator) release(documentID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inFlight, documentID)
}
