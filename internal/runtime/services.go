// Package runtime holds the dynamically configurable AI services.
// The host application constructs and refreshes them on its own schedule;
// the pipeline never reaches into ambient or global state.
package runtime

import (
	"context"
	"sync"

	"github.com/custodia-labs/helpdesk-rag/internal/core/domain"
	"github.com/custodia-labs/helpdesk-rag/internal/core/ports/driven"
)

// Services holds references to dynamically configurable services.
// AI services (embedding, completion) can be swapped at runtime.
// Thread-safe for concurrent access.
type Services struct {
	mu sync.RWMutex

	// Config tracks capability flags and pipeline settings
	config *domain.RuntimeConfig

	// Dynamic services (can be nil, updated at runtime)
	embeddingService  driven.EmbeddingService
	completionService driven.CompletionService
}

// NewServices creates a new Services registry
func NewServices(config *domain.RuntimeConfig) *Services {
	return &Services{
		config: config,
	}
}

// Config returns the runtime configuration
func (s *Services) Config() *domain.RuntimeConfig {
	return s.config
}

// EmbeddingService returns the current embedding service (may be nil)
func (s *Services) EmbeddingService() driven.EmbeddingService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.embeddingService
}

// CompletionService returns the current completion service (may be nil)
func (s *Services) CompletionService() driven.CompletionService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.completionService
}

// SetEmbeddingService updates the embedding service.
// Closes the old service if present. Updates config flags.
func (s *Services) SetEmbeddingService(svc driven.EmbeddingService) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.embeddingService != nil {
		_ = s.embeddingService.Close()
	}

	s.embeddingService = svc
	s.config.SetEmbeddingAvailable(svc != nil)
}

// SetCompletionService updates the completion service.
// Closes the old service if present. Updates config flags.
func (s *Services) SetCompletionService(svc driven.CompletionService) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.completionService != nil {
		_ = s.completionService.Close()
	}

	s.completionService = svc
	s.config.SetCompletionAvailable(svc != nil)
}

// ValidateAndSetEmbedding validates connectivity before setting the embedding service
func (s *Services) ValidateAndSetEmbedding(ctx context.Context, svc driven.EmbeddingService) error {
	if svc == nil {
		s.SetEmbeddingService(nil)
		return nil
	}

	if err := svc.HealthCheck(ctx); err != nil {
		_ = svc.Close()
		return err
	}

	s.SetEmbeddingService(svc)
	return nil
}

// ValidateAndSetCompletion validates connectivity before setting the completion service
func (s *Services) ValidateAndSetCompletion(ctx context.Context, svc driven.CompletionService) error {
	if svc == nil {
		s.SetCompletionService(nil)
		return nil
	}

	if err := svc.Ping(ctx); err != nil {
		_ = svc.Close()
		return err
	}

	s.SetCompletionService(svc)
	return nil
}

// Close shuts down all services
func (s *Services) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.embeddingService != nil {
		_ = s.embeddingService.Close()
		s.embeddingService = nil
	}
	if s.completionService != nil {
		_ = s.completionService.Close()
		s.completionService = nil
	}

	s.config.SetEmbeddingAvailable(false)
	s.config.SetCompletionAvailable(false)

	return nil
}
