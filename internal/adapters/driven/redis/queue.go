package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/helpdesk-rag/internal/core/domain"
	"github.com/custodia-labs/helpdesk-rag/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.TaskQueue = (*Queue)(nil)

const (
	taskStream = "helpdesk:tasks"
	taskGroup  = "helpdesk:workers"

	// claimTimeout is how long a message may sit unacked in another
	// consumer's pending list before it is considered abandoned.
	claimTimeout = 5 * time.Minute
)

// Queue implements TaskQueue using Redis Streams with a consumer group.
// Each message carries the full task as JSON; the stream entry ID doubles as
// the acknowledgment handle.
type Queue struct {
	client       *redis.Client
	consumerName string
	claimMinIdle time.Duration
}

// NewQueue creates a new Redis-backed task queue.
// consumerName should be unique per worker process.
func NewQueue(client *redis.Client, consumerName string) (*Queue, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if consumerName == "" {
		consumerName = fmt.Sprintf("worker-%d", time.Now().UnixNano())
	}

	q := &Queue{client: client, consumerName: consumerName, claimMinIdle: claimTimeout}

	err := q.client.XGroupCreateMkStream(context.Background(), taskStream, taskGroup, "0").Err()
	if err != nil && !isGroupExistsError(err) {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return q, nil
}

// Enqueue adds a task to the stream
func (q *Queue) Enqueue(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return errors.New("task is required")
	}

	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}

	err = q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: taskStream,
		Values: map[string]interface{}{"task": string(data)},
	}).Err()
	if err != nil {
		return fmt.Errorf("enqueue task: %w", err)
	}

	return nil
}

// Dequeue reads the next task from the stream, blocking up to timeout.
// When nothing new arrives it tries to claim a message abandoned by a dead
// consumer, so a crash between read and ack never strands a task.
// Returns (nil, nil) when no task is available.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*domain.Task, error) {
	if timeout <= 0 {
		timeout = time.Second
	}

	streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    taskGroup,
		Consumer: q.consumerName,
		Streams:  []string{taskStream, ">"},
		Count:    1,
		Block:    timeout,
	}).Result()
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, nil
		}
		if errors.Is(err, redis.Nil) {
			return q.claimAbandoned(ctx)
		}
		return nil, fmt.Errorf("read stream: %w", err)
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return q.claimAbandoned(ctx)
	}

	return q.taskFromMessage(ctx, streams[0].Messages[0]), nil
}

// claimAbandoned transfers messages stuck in a dead consumer's pending list
// to this consumer. Best effort: any error just means nothing to do this
// round.
func (q *Queue) claimAbandoned(ctx context.Context) (*domain.Task, error) {
	pending, err := q.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: taskStream,
		Group:  taskGroup,
		Start:  "-",
		End:    "+",
		Count:  10,
		Idle:   q.claimMinIdle,
	}).Result()
	if err != nil || len(pending) == 0 {
		return nil, nil
	}

	for _, p := range pending {
		if p.Consumer == q.consumerName {
			continue
		}

		claimed, err := q.client.XClaim(ctx, &redis.XClaimArgs{
			Stream:   taskStream,
			Group:    taskGroup,
			Consumer: q.consumerName,
			MinIdle:  q.claimMinIdle,
			Messages: []string{p.ID},
		}).Result()
		if err != nil || len(claimed) == 0 {
			continue
		}

		if task := q.taskFromMessage(ctx, claimed[0]); task != nil {
			return task, nil
		}
	}

	return nil, nil
}

// taskFromMessage decodes a stream entry into a task and records the entry ID
// for the later ack. Undecodable messages are acked and dropped rather than
// wedging the stream.
func (q *Queue) taskFromMessage(ctx context.Context, msg redis.XMessage) *domain.Task {
	raw, ok := msg.Values["task"].(string)
	if !ok {
		q.ack(ctx, msg.ID)
		return nil
	}

	var task domain.Task
	if err := json.Unmarshal([]byte(raw), &task); err != nil {
		q.ack(ctx, msg.ID)
		return nil
	}

	task.MarkProcessing()

	// The worker acks via Complete/Fail using the task ID; remember the
	// stream entry behind it.
	q.client.Set(ctx, msgKey(task.ID), msg.ID, 24*time.Hour)

	return &task
}

// Complete acknowledges successful processing of a task
func (q *Queue) Complete(ctx context.Context, taskID string) error {
	msgID, err := q.client.Get(ctx, msgKey(taskID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("lookup message for task %s: %w", taskID, err)
	}

	q.ack(ctx, msgID)
	q.client.Del(ctx, msgKey(taskID))
	return nil
}

// Fail records a task failure. Tasks with attempts left are re-enqueued;
// exhausted tasks are acked and dropped after logging upstream.
func (q *Queue) Fail(ctx context.Context, task *domain.Task, errMsg string) error {
	if err := q.Complete(ctx, task.ID); err != nil {
		return err
	}

	if !task.CanRetry() {
		task.MarkFailed(errMsg)
		return nil
	}

	retry := *task
	retry.Status = domain.TaskStatusPending
	retry.Error = errMsg
	retry.UpdatedAt = time.Now()
	return q.Enqueue(ctx, &retry)
}

func (q *Queue) ack(ctx context.Context, msgID string) {
	q.client.XAck(ctx, taskStream, taskGroup, msgID)
	q.client.XDel(ctx, taskStream, msgID)
}

func msgKey(taskID string) string {
	return "helpdesk:task-msg:" + taskID
}

func isGroupExistsError(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "BUSYGROUP")
}
