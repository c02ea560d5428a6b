package domain

import (
	"crypto/rand"
	"encoding/base64"
	"time"
)

// GenerateID creates a unique random ID.
func GenerateID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// TaskType identifies the type of background task
type TaskType string

const (
	// TaskTypeIngestDocument ingests an approved document
	TaskTypeIngestDocument TaskType = "ingest_document"
	// TaskTypeReingestDocument wipes a document's chunks and ingests it again
	TaskTypeReingestDocument TaskType = "reingest_document"
)

// TaskStatus represents the current state of a task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task represents a background job to be processed by workers
type Task struct {
	ID string `json:"id"`

	Type TaskType `json:"type"`

	// Payload contains task-specific data.
	// For ingest_document / reingest_document: {"document_id": "doc-123"}
	Payload map[string]string `json:"payload"`

	Status TaskStatus `json:"status"`

	// Attempts is how many times this task has been attempted
	Attempts int `json:"attempts"`

	// MaxAttempts is the maximum retry count before giving up
	MaxAttempts int `json:"max_attempts"`

	// Error contains the last error message if failed
	Error string `json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewTask creates a new task with default values
func NewTask(taskType TaskType, payload map[string]string) *Task {
	now := time.Now()
	return &Task{
		ID:          GenerateID(),
		Type:        taskType,
		Payload:     payload,
		Status:      TaskStatusPending,
		MaxAttempts: 3,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewIngestTask creates a task to ingest a document
func NewIngestTask(documentID string) *Task {
	return NewTask(TaskTypeIngestDocument, map[string]string{
		"document_id": documentID,
	})
}

// NewReingestTask creates a task to wipe and re-ingest a document
func NewReingestTask(documentID string) *Task {
	return NewTask(TaskTypeReingestDocument, map[string]string{
		"document_id": documentID,
	})
}

// DocumentID extracts the document_id from the payload
func (t *Task) DocumentID() string {
	if t.Payload == nil {
		return ""
	}
	return t.Payload["document_id"]
}

// CanRetry returns true if the task can be retried
func (t *Task) CanRetry() bool {
	return t.Attempts < t.MaxAttempts
}

// MarkProcessing updates the task to processing state
func (t *Task) MarkProcessing() {
	now := time.Now()
	t.Status = TaskStatusProcessing
	t.StartedAt = &now
	t.UpdatedAt = now
	t.Attempts++
}

// MarkCompleted updates the task to completed state
func (t *Task) MarkCompleted() {
	now := time.Now()
	t.Status = TaskStatusCompleted
	t.CompletedAt = &now
	t.UpdatedAt = now
	t.Error = ""
}

// MarkFailed updates the task to failed state
func (t *Task) MarkFailed(err string) {
	now := time.Now()
	t.Status = TaskStatusFailed
	t.UpdatedAt = now
	t.Error = err
}
