package runtime

import (
	"context"
	"errors"
	"testing"

	"github.com/custodia-labs/helpdesk-rag/internal/core/domain"
	"github.com/custodia-labs/helpdesk-rag/internal/core/ports/driven/mocks"
)

func newTestServices() *Services {
	return NewServices(domain.NewRuntimeConfig(domain.DefaultPipelineSettings()))
}

func TestServicesStartEmpty(t *testing.T) {
	svcs := newTestServices()

	if svcs.EmbeddingService() != nil {
		t.Error("expected nil embedding service at construction")
	}
	if svcs.CompletionService() != nil {
		t.Error("expected nil completion service at construction")
	}
	if svcs.Config().EmbeddingAvailable() {
		t.Error("expected embedding unavailable")
	}
}

func TestSetEmbeddingServiceUpdatesFlags(t *testing.T) {
	svcs := newTestServices()

	svcs.SetEmbeddingService(mocks.NewMockEmbeddingService(8))
	if !svcs.Config().EmbeddingAvailable() {
		t.Error("expected embedding available after set")
	}

	svcs.SetEmbeddingService(nil)
	if svcs.Config().EmbeddingAvailable() {
		t.Error("expected embedding unavailable after unset")
	}
}

func TestValidateAndSetEmbeddingRejectsUnhealthy(t *testing.T) {
	svcs := newTestServices()

	embedding := mocks.NewMockEmbeddingService(8)
	embedding.SetError(errors.New("connection refused"))

	if err := svcs.ValidateAndSetEmbedding(context.Background(), embedding); err == nil {
		t.Fatal("expected validation error")
	}
	if svcs.EmbeddingService() != nil {
		t.Error("unhealthy service must not be installed")
	}
}

func TestValidateAndSetCompletion(t *testing.T) {
	svcs := newTestServices()

	if err := svcs.ValidateAndSetCompletion(context.Background(), mocks.NewMockCompletionService()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !svcs.Config().CompletionAvailable() {
		t.Error("expected completion available")
	}
}

func TestClose(t *testing.T) {
	svcs := newTestServices()
	svcs.SetEmbeddingService(mocks.NewMockEmbeddingService(8))
	svcs.SetCompletionService(mocks.NewMockCompletionService())

	if err := svcs.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svcs.EmbeddingService() != nil || svcs.CompletionService() != nil {
		t.Error("expected services cleared after Close")
	}
	if svcs.Config().EmbeddingAvailable() || svcs.Config().CompletionAvailable() {
		t.Error("expected capability flags cleared after Close")
	}
}
