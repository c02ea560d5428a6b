package driven

import "context"

// TextExtractor turns a stored file into plain text.
// Failures surface as domain.ErrExtractionFailed and mark the ingestion failed.
type TextExtractor interface {
	Extract(ctx context.Context, path, mimeType string) (string, error)
}
