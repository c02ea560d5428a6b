package domain

import "time"

// ProcessingStatus tracks a document's ingestion state
type ProcessingStatus string

const (
	ProcessingStatusPending    ProcessingStatus = "pending"
	ProcessingStatusProcessing ProcessingStatus = "processing"
	ProcessingStatusCompleted  ProcessingStatus = "completed"
	ProcessingStatusTimeout    ProcessingStatus = "timeout"
	ProcessingStatusFailed     ProcessingStatus = "failed"
)

// Terminal reports whether the status is stable until an explicit re-ingestion.
func (s ProcessingStatus) Terminal() bool {
	switch s {
	case ProcessingStatusCompleted, ProcessingStatusTimeout, ProcessingStatusFailed:
		return true
	}
	return false
}

// Document is the knowledge-base document record owned by the host
// application. The pipeline reads it and mutates only the processing fields
// (status, processed, chunks_count, note).
type Document struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	FilePath         string           `json:"file_path"`
	MimeType         string           `json:"mime_type"`
	ProcessingStatus ProcessingStatus `json:"processing_status"`
	Processed        bool             `json:"processed"` // eligible for retrieval
	ChunksCount      int              `json:"chunks_count"`
	ProcessingNote   string           `json:"processing_note,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// ProcessingUpdate is the bounded set of document fields the pipeline may write.
type ProcessingUpdate struct {
	Status      ProcessingStatus `json:"processing_status"`
	Processed   bool             `json:"processed"`
	ChunksCount int              `json:"chunks_count"`
	Note        string           `json:"note,omitempty"`
}
