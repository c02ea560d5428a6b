package extractor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/custodia-labs/helpdesk-rag/internal/core/domain"
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func TestExtractPlainText(t *testing.T) {
	path := writeFile(t, "policy.txt", []byte("Password policy content."))

	got, err := NewFileExtractor().Extract(context.Background(), path, "text/plain")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Password policy content." {
		t.Errorf("unexpected content: %q", got)
	}
}

func TestExtractMarkdownByExtension(t *testing.T) {
	path := writeFile(t, "guide.md", []byte("# Onboarding\n\nSteps here."))

	got, err := NewFileExtractor().Extract(context.Background(), path, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == "" {
		t.Error("expected content")
	}
}

func TestExtractMimeWithCharset(t *testing.T) {
	path := writeFile(t, "notes.txt", []byte("notes"))

	if _, err := NewFileExtractor().Extract(context.Background(), path, "text/plain; charset=utf-8"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExtractUnsupportedMime(t *testing.T) {
	path := writeFile(t, "doc.pdf", []byte("%PDF-1.4"))

	_, err := NewFileExtractor().Extract(context.Background(), path, "application/pdf")
	if !errors.Is(err, domain.ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
}

func TestExtractUnsupportedExtension(t *testing.T) {
	path := writeFile(t, "image.png", []byte{0x89, 0x50})

	_, err := NewFileExtractor().Extract(context.Background(), path, "")
	if !errors.Is(err, domain.ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
}

func TestExtractMissingFile(t *testing.T) {
	_, err := NewFileExtractor().Extract(context.Background(), "/nonexistent/file.txt", "text/plain")
	if !errors.Is(err, domain.ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
}

func TestExtractInvalidUTF8(t *testing.T) {
	path := writeFile(t, "binary.txt", []byte{0xff, 0xfe, 0x00, 0x01})

	_, err := NewFileExtractor().Extract(context.Background(), path, "text/plain")
	if !errors.Is(err, domain.ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
}

func TestExtractCancelledContext(t *testing.T) {
	path := writeFile(t, "doc.txt", []byte("content"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewFileExtractor().Extract(ctx, path, "text/plain"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
