package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/helpdesk-rag/internal/core/domain"
	"github.com/custodia-labs/helpdesk-rag/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.TaskQueue = (*Queue)(nil)

// Queue implements TaskQueue using PostgreSQL with SKIP LOCKED.
// This is the fallback queue when Redis is not configured; with a single
// process and a handful of workers it is more than enough.
type Queue struct {
	db *DB
}

// NewQueue creates a new PostgreSQL-backed task queue
func NewQueue(db *DB) *Queue {
	return &Queue{db: db}
}

// Enqueue adds a task to the queue
func (q *Queue) Enqueue(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return errors.New("task is required")
	}

	payload, err := json.Marshal(task.Payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	_, err = q.db.ExecContext(ctx, `
		INSERT INTO ingest_tasks (id, type, payload, status, attempts, max_attempts, error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		task.ID,
		task.Type,
		payload,
		task.Status,
		task.Attempts,
		task.MaxAttempts,
		task.Error,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}

	return nil
}

// Dequeue retrieves the next pending task using SELECT FOR UPDATE SKIP LOCKED
// so concurrent workers never claim the same task. Returns (nil, nil) after
// the timeout when nothing is pending.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*domain.Task, error) {
	task, err := q.tryDequeue(ctx)
	if err != nil || task != nil {
		return task, err
	}

	if timeout <= 0 {
		return nil, nil
	}

	// Poll until the timeout; the table has no notify channel
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return nil, nil
		case <-time.After(250 * time.Millisecond):
		}

		task, err := q.tryDequeue(ctx)
		if err != nil || task != nil {
			return task, err
		}
	}

	return nil, nil
}

func (q *Queue) tryDequeue(ctx context.Context) (*domain.Task, error) {
	var task domain.Task
	var payload []byte

	err := q.db.Transaction(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			SELECT id, type, payload, status, attempts, max_attempts, error, created_at, updated_at
			FROM ingest_tasks
			WHERE status = $1
			ORDER BY created_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		`, domain.TaskStatusPending).Scan(
			&task.ID,
			&task.Type,
			&payload,
			&task.Status,
			&task.Attempts,
			&task.MaxAttempts,
			&task.Error,
			&task.CreatedAt,
			&task.UpdatedAt,
		)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE ingest_tasks
			SET status = $1, attempts = attempts + 1, updated_at = NOW()
			WHERE id = $2
		`, domain.TaskStatusProcessing, task.ID)
		return err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("dequeue task: %w", err)
	}

	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &task.Payload); err != nil {
			return nil, fmt.Errorf("unmarshal payload: %w", err)
		}
	}

	task.MarkProcessing()
	return &task, nil
}

// Complete acknowledges successful processing of a task
func (q *Queue) Complete(ctx context.Context, taskID string) error {
	result, err := q.db.ExecContext(ctx, `
		UPDATE ingest_tasks
		SET status = $1, error = '', updated_at = NOW()
		WHERE id = $2
	`, domain.TaskStatusCompleted, taskID)
	if err != nil {
		return fmt.Errorf("complete task: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Fail records a task failure. Tasks with attempts left go back to pending;
// exhausted tasks are marked failed and stay for inspection.
func (q *Queue) Fail(ctx context.Context, task *domain.Task, errMsg string) error {
	status := domain.TaskStatusFailed
	if task.CanRetry() {
		status = domain.TaskStatusPending
	}

	_, err := q.db.ExecContext(ctx, `
		UPDATE ingest_tasks
		SET status = $1, error = $2, updated_at = NOW()
		WHERE id = $3
	`, status, errMsg, task.ID)
	if err != nil {
		return fmt.Errorf("fail task: %w", err)
	}
	return nil
}
