// Package worker runs the background ingestion loop: dequeue a task, hand it
// to the ingest orchestrator, acknowledge the outcome.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/custodia-labs/helpdesk-rag/internal/core/domain"
	"github.com/custodia-labs/helpdesk-rag/internal/core/ports/driven"
	"github.com/custodia-labs/helpdesk-rag/internal/core/services"
)

// Worker processes ingestion tasks from the task queue.
type Worker struct {
	taskQueue    driven.TaskQueue
	orchestrator *services.IngestOrchestrator
	logger       *slog.Logger

	concurrency    int
	dequeueTimeout time.Duration

	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// Config holds configuration for the worker.
type Config struct {
	TaskQueue      driven.TaskQueue
	Orchestrator   *services.IngestOrchestrator
	Logger         *slog.Logger
	Concurrency    int           // number of concurrent task processors
	DequeueTimeout time.Duration // how long to wait for a task before checking again
}

// New creates a new task worker.
func New(cfg Config) *Worker {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	dequeueTimeout := cfg.DequeueTimeout
	if dequeueTimeout <= 0 {
		dequeueTimeout = 5 * time.Second
	}

	return &Worker{
		taskQueue:      cfg.TaskQueue,
		orchestrator:   cfg.Orchestrator,
		logger:         logger,
		concurrency:    concurrency,
		dequeueTimeout: dequeueTimeout,
	}
}

// Start begins the worker loop.
// It runs until Stop is called or the context is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	w.logger.Info("worker starting",
		"concurrency", w.concurrency,
		"dequeue_timeout", w.dequeueTimeout,
	)

	var wg sync.WaitGroup
	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			w.processLoop(ctx, workerID)
		}(i)
	}

	go func() {
		wg.Wait()
		close(w.doneCh)
	}()

	return nil
}

// Stop gracefully stops the worker and waits for in-flight tasks.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	close(w.stopCh)
	w.mu.Unlock()

	<-w.doneCh

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	w.logger.Info("worker stopped")
}

// Running reports whether the worker loop is active.
func (w *Worker) Running() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// processLoop is the main processing loop for a worker goroutine.
func (w *Worker) processLoop(ctx context.Context, workerID int) {
	logger := w.logger.With("worker_id", workerID)
	logger.Info("worker goroutine started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("worker context cancelled")
			return
		case <-w.stopCh:
			logger.Info("worker stop signal received")
			return
		default:
		}

		task, err := w.taskQueue.Dequeue(ctx, w.dequeueTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			logger.Error("failed to dequeue task", "error", err)
			time.Sleep(time.Second) // back off on error
			continue
		}

		if task == nil {
			continue
		}

		w.processTask(ctx, task, logger)
	}
}

// processTask processes a single task.
func (w *Worker) processTask(ctx context.Context, task *domain.Task, logger *slog.Logger) {
	logger = logger.With("task_id", task.ID, "task_type", task.Type, "document_id", task.DocumentID())
	logger.Info("processing task")

	startTime := time.Now()
	err := w.handleTask(ctx, task)
	duration := time.Since(startTime)

	if err != nil {
		logger.Error("task failed", "duration", duration, "error", err)

		if failErr := w.taskQueue.Fail(ctx, task, err.Error()); failErr != nil {
			logger.Error("failed to record task failure", "fail_error", failErr)
		}
		return
	}

	logger.Info("task completed", "duration", duration)

	if ackErr := w.taskQueue.Complete(ctx, task.ID); ackErr != nil {
		logger.Error("failed to ack task", "ack_error", ackErr)
	}
}

// handleTask dispatches by task type. The orchestrator absorbs pipeline
// failures into document terminal states; an error here means the task
// itself could not run (bad payload, missing document) and goes back to the
// queue's retry policy. A concurrent duplicate is dropped as done.
func (w *Worker) handleTask(ctx context.Context, task *domain.Task) error {
	documentID := task.DocumentID()
	if documentID == "" {
		return fmt.Errorf("document_id not found in task payload")
	}

	var err error
	switch task.Type {
	case domain.TaskTypeIngestDocument:
		err = w.orchestrator.ProcessDocument(ctx, documentID, false)
	case domain.TaskTypeReingestDocument:
		err = w.orchestrator.ProcessDocument(ctx, documentID, true)
	default:
		return fmt.Errorf("unknown task type: %s", task.Type)
	}

	if errors.Is(err, domain.ErrIngestInProgress) {
		return nil
	}
	return err
}
