// Package extractor reads document files from disk and produces plain text
// for chunking. Only text-based formats are handled here; binary formats are
// expected to be converted by the host application before approval.
package extractor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/helpdesk-rag/internal/core/domain"
	"github.com/custodia-labs/helpdesk-rag/internal/core/ports/driven"
)

// Ensure FileExtractor implements TextExtractor
var _ driven.TextExtractor = (*FileExtractor)(nil)

// maxFileSize caps how much we read from a single document (16 MiB)
const maxFileSize = 16 << 20

// textMimeTypes are the MIME types handled directly
var textMimeTypes = map[string]bool{
	"text/plain":      true,
	"text/markdown":   true,
	"text/html":       false, // html needs stripping the host does upstream
	"application/json": true,
	"text/csv":        true,
}

// textExtensions cover files uploaded without a MIME type
var textExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".text": true,
	".csv":  true,
	".json": true,
	".log":  true,
}

// FileExtractor extracts text from files on the local filesystem.
type FileExtractor struct{}

// NewFileExtractor creates a new FileExtractor.
func NewFileExtractor() *FileExtractor {
	return &FileExtractor{}
}

// Extract reads the file at path and returns its text content.
// Unsupported formats and unreadable files return domain.ErrExtractionFailed.
func (e *FileExtractor) Extract(ctx context.Context, path, mimeType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if path == "" {
		return "", fmt.Errorf("%w: empty file path", domain.ErrExtractionFailed)
	}

	if !e.supported(path, mimeType) {
		return "", fmt.Errorf("%w: unsupported format %q for %s", domain.ErrExtractionFailed, mimeType, filepath.Base(path))
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}
	if info.Size() > maxFileSize {
		return "", fmt.Errorf("%w: file %s exceeds %d bytes", domain.ErrExtractionFailed, filepath.Base(path), maxFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}

	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8 text", domain.ErrExtractionFailed, filepath.Base(path))
	}

	return string(data), nil
}

func (e *FileExtractor) supported(path, mimeType string) bool {
	if mimeType != "" {
		// Parameters like "; charset=utf-8" are not part of the type
		base := strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])
		if ok, known := textMimeTypes[base]; known {
			return ok
		}
		return false
	}
	return textExtensions[strings.ToLower(filepath.Ext(path))]
}
