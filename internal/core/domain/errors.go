package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrExtractionFailed indicates raw text could not be obtained from a file
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrEmbeddingTimeout indicates the embedding provider did not answer in time
	ErrEmbeddingTimeout = errors.New("embedding timeout")

	// ErrEmbeddingProvider indicates the embedding provider returned an error
	ErrEmbeddingProvider = errors.New("embedding provider error")

	// ErrStoreFailure indicates chunk persistence failed
	ErrStoreFailure = errors.New("chunk store failure")

	// ErrCompletionTimeout indicates the completion service did not answer in time
	ErrCompletionTimeout = errors.New("completion timeout")

	// ErrCompletionProvider indicates the completion service returned an error
	ErrCompletionProvider = errors.New("completion provider error")

	// ErrIngestInProgress indicates an ingestion is already running for this document
	ErrIngestInProgress = errors.New("ingestion already in progress")

	// ErrServiceUnavailable indicates a required AI service is not configured
	ErrServiceUnavailable = errors.New("service unavailable")
)
