package services

import (
	"context"
	"errors"
	"testing"

	"github.com/custodia-labs/helpdesk-rag/internal/core/domain"
	"github.com/custodia-labs/helpdesk-rag/internal/core/ports/driven/mocks"
)

func newFrontFixture() (*IngestFront, *mocks.MockDocumentStore, *mocks.MockChunkStore, *mocks.MockTaskQueue) {
	documents := mocks.NewMockDocumentStore()
	chunks := mocks.NewMockChunkStore()
	queue := mocks.NewMockTaskQueue()
	front := NewIngestFront(documents, chunks, queue, discardLogger())
	return front, documents, chunks, queue
}

func TestIngestEnqueuesTask(t *testing.T) {
	front, documents, _, queue := newFrontFixture()
	documents.Save(&domain.Document{ID: "doc-1", ProcessingStatus: domain.ProcessingStatusFailed})

	if err := front.Ingest(context.Background(), "doc-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pending := queue.Pending()
	if len(pending) != 1 {
		t.Fatalf("expected 1 queued task, got %d", len(pending))
	}
	if pending[0].Type != domain.TaskTypeIngestDocument {
		t.Errorf("task type = %s, want ingest_document", pending[0].Type)
	}
	if pending[0].DocumentID() != "doc-1" {
		t.Errorf("task document = %s, want doc-1", pending[0].DocumentID())
	}

	doc, _ := documents.Get(context.Background(), "doc-1")
	if doc.ProcessingStatus != domain.ProcessingStatusPending {
		t.Errorf("status = %s, want pending after scheduling", doc.ProcessingStatus)
	}
}

func TestReingestEnqueuesWipeTask(t *testing.T) {
	front, documents, _, queue := newFrontFixture()
	documents.Save(&domain.Document{ID: "doc-1", ProcessingStatus: domain.ProcessingStatusCompleted, Processed: true, ChunksCount: 7})

	if err := front.Reingest(context.Background(), "doc-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pending := queue.Pending()
	if len(pending) != 1 || pending[0].Type != domain.TaskTypeReingestDocument {
		t.Fatalf("expected one reingest_document task, got %+v", pending)
	}
}

func TestIngestUnknownDocument(t *testing.T) {
	front, _, _, queue := newFrontFixture()

	err := front.Ingest(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(queue.Pending()) != 0 {
		t.Error("nothing must be queued for an unknown document")
	}
}

func TestIngestEmptyID(t *testing.T) {
	front, _, _, _ := newFrontFixture()

	if err := front.Ingest(context.Background(), ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestStats(t *testing.T) {
	front, _, chunks, _ := newFrontFixture()
	seedChunk(t, chunks, "doc-a", 0, "a", []float32{1})
	seedChunk(t, chunks, "doc-a", 1, "b", []float32{1})
	seedChunk(t, chunks, "doc-b", 0, "c", []float32{1})

	stats, err := front.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalChunks != 3 {
		t.Errorf("total_chunks = %d, want 3", stats.TotalChunks)
	}
	if stats.UniqueDocuments != 2 {
		t.Errorf("unique_documents = %d, want 2", stats.UniqueDocuments)
	}
}
