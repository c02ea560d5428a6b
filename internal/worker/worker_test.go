package worker

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/custodia-labs/helpdesk-rag/internal/core/domain"
	"github.com/custodia-labs/helpdesk-rag/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/helpdesk-rag/internal/core/services"
	"github.com/custodia-labs/helpdesk-rag/internal/runtime"
)

type workerFixture struct {
	worker    *Worker
	queue     *mocks.MockTaskQueue
	documents *mocks.MockDocumentStore
	chunks    *mocks.MockChunkStore
	extractor *mocks.MockTextExtractor
}

func newWorkerFixture(t *testing.T) *workerFixture {
	t.Helper()

	f := &workerFixture{
		queue:     mocks.NewMockTaskQueue(),
		documents: mocks.NewMockDocumentStore(),
		chunks:    mocks.NewMockChunkStore(),
		extractor: mocks.NewMockTextExtractor(),
	}

	svcs := runtime.NewServices(domain.NewRuntimeConfig(domain.DefaultPipelineSettings()))
	svcs.SetEmbeddingService(mocks.NewMockEmbeddingService(8))

	orchestrator := services.NewIngestOrchestrator(services.IngestOrchestratorConfig{
		DocumentStore: f.documents,
		ChunkStore:    f.chunks,
		Extractor:     f.extractor,
		Services:      svcs,
		Logger:        slog.New(slog.DiscardHandler),
	})

	f.worker = New(Config{
		TaskQueue:      f.queue,
		Orchestrator:   orchestrator,
		Logger:         slog.New(slog.DiscardHandler),
		Concurrency:    2,
		DequeueTimeout: 10 * time.Millisecond,
	})
	return f
}

func (f *workerFixture) seedDocument(id string) {
	f.documents.Save(&domain.Document{
		ID:       id,
		FilePath: "/docs/" + id + ".txt",
		MimeType: "text/plain",
	})
	f.extractor.SetText("/docs/"+id+".txt", strings.Repeat("Helpdesk content. ", 100))
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal(msg)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestWorkerProcessesIngestTask(t *testing.T) {
	f := newWorkerFixture(t)
	f.seedDocument("doc-1")

	task := domain.NewIngestTask("doc-1")
	_ = f.queue.Enqueue(context.Background(), task)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := f.worker.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer f.worker.Stop()

	waitFor(t, func() bool { return len(f.queue.Completed()) == 1 }, "task never completed")

	doc, _ := f.documents.Get(context.Background(), "doc-1")
	if doc.ProcessingStatus != domain.ProcessingStatusCompleted {
		t.Errorf("status = %s, want completed", doc.ProcessingStatus)
	}
	if f.queue.Completed()[0] != task.ID {
		t.Errorf("completed wrong task: %s", f.queue.Completed()[0])
	}
}

func TestWorkerProcessesReingestTask(t *testing.T) {
	f := newWorkerFixture(t)
	f.seedDocument("doc-1")

	_ = f.queue.Enqueue(context.Background(), domain.NewReingestTask("doc-1"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_ = f.worker.Start(ctx)
	defer f.worker.Stop()

	waitFor(t, func() bool { return len(f.queue.Completed()) == 1 }, "reingest task never completed")
}

func TestWorkerFailsTaskForUnknownDocument(t *testing.T) {
	f := newWorkerFixture(t)

	_ = f.queue.Enqueue(context.Background(), domain.NewIngestTask("missing"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_ = f.worker.Start(ctx)
	defer f.worker.Stop()

	waitFor(t, func() bool { return len(f.queue.Failed()) == 1 }, "task never failed")
}

func TestWorkerFailsTaskWithBadPayload(t *testing.T) {
	f := newWorkerFixture(t)

	task := domain.NewTask(domain.TaskTypeIngestDocument, map[string]string{})
	_ = f.queue.Enqueue(context.Background(), task)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_ = f.worker.Start(ctx)
	defer f.worker.Stop()

	waitFor(t, func() bool { return len(f.queue.Failed()) == 1 }, "bad payload task never failed")
}

func TestWorkerDrainsMultipleTasks(t *testing.T) {
	f := newWorkerFixture(t)
	for _, id := range []string{"a", "b", "c", "d"} {
		f.seedDocument(id)
		_ = f.queue.Enqueue(context.Background(), domain.NewIngestTask(id))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_ = f.worker.Start(ctx)
	defer f.worker.Stop()

	waitFor(t, func() bool { return len(f.queue.Completed()) == 4 }, "queue never drained")
}

func TestWorkerStopIsIdempotent(t *testing.T) {
	f := newWorkerFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_ = f.worker.Start(ctx)
	if !f.worker.Running() {
		t.Error("expected running after Start")
	}

	f.worker.Stop()
	f.worker.Stop()

	if f.worker.Running() {
		t.Error("expected stopped after Stop")
	}
}
