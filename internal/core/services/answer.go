package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/helpdesk-rag/internal/core/domain"
	"github.com/custodia-labs/helpdesk-rag/internal/core/ports/driven"
	"github.com/custodia-labs/helpdesk-rag/internal/core/ports/driving"
	"github.com/custodia-labs/helpdesk-rag/internal/metrics"
	"github.com/custodia-labs/helpdesk-rag/internal/runtime"
)

// Ensure AnswerOrchestrator implements driving.AnswerService
var _ driving.AnswerService = (*AnswerOrchestrator)(nil)

// resolveBudget bounds one shared resolution: embedding plus completion plus
// store round trips, with headroom.
const resolveBudget = 90 * time.Second

// AnswerOrchestrator runs the query flow: cache lookup, retrieval, completion,
// cache write. Concurrent identical queries are collapsed via singleflight so
// the completion provider sees each distinct question once.
type AnswerOrchestrator struct {
	cache     driven.AnswerCache
	retriever driving.Retriever
	services  *runtime.Services
	logger    *slog.Logger
	metrics   *metrics.Metrics

	group singleflight.Group
}

// NewAnswerOrchestrator creates a new AnswerOrchestrator.
func NewAnswerOrchestrator(cache driven.AnswerCache, retriever driving.Retriever, services *runtime.Services, logger *slog.Logger, m *metrics.Metrics) *AnswerOrchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnswerOrchestrator{
		cache:     cache,
		retriever: retriever,
		services:  services,
		logger:    logger,
		metrics:   m,
	}
}

// Answer resolves a helpdesk question. Completion failures degrade rather
// than error: the caller still gets the retrieved sources. Only full answers
// are cached; degraded and empty responses stay uncached so retries can heal.
func (a *AnswerOrchestrator) Answer(ctx context.Context, query, sessionID string) (*domain.Answer, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrInvalidInput
	}

	logger := a.logger.With("session_id", sessionID)

	if cached := a.cacheLookup(ctx, query, logger); cached != nil {
		return cached, nil
	}

	fingerprint := domain.QueryFingerprint(query)
	result, err, shared := a.group.Do(fingerprint, func() (interface{}, error) {
		// The resolution is shared by every collapsed caller, so it must not
		// die with the first caller's request context.
		resolveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), resolveBudget)
		defer cancel()
		return a.resolve(resolveCtx, query, logger)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logger.Debug("query collapsed into in-flight resolution", "fingerprint", fingerprint)
	}
	return result.(*domain.Answer), nil
}

func (a *AnswerOrchestrator) cacheLookup(ctx context.Context, query string, logger *slog.Logger) *domain.Answer {
	cached, err := a.cache.Get(ctx, query)
	if err == nil {
		if a.metrics != nil {
			a.metrics.CacheHitsTotal.Inc()
			a.metrics.QueriesTotal.WithLabelValues(string(cached.ResponseType)).Inc()
		}
		logger.Info("answer cache hit", "fingerprint", domain.QueryFingerprint(query))
		return cached
	}
	if !errors.Is(err, domain.ErrNotFound) {
		// Cache trouble must never block answering
		logger.Warn("answer cache lookup failed", "error", err)
	}
	if a.metrics != nil {
		a.metrics.CacheMissesTotal.Inc()
	}
	return nil
}

// resolve performs retrieval and completion for a cache miss.
func (a *AnswerOrchestrator) resolve(ctx context.Context, query string, logger *slog.Logger) (*domain.Answer, error) {
	settings := a.services.Config().Settings()

	chunks, err := a.retriever.Retrieve(ctx, query, settings.TopN, settings.MinSimilarity)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}

	if len(chunks) == 0 {
		answer := &domain.Answer{
			ResponseType: domain.ResponseTypeNoDocuments,
			Summary:      "No relevant documents were found for this question.",
			CreatedAt:    time.Now(),
		}
		a.observe(answer)
		logger.Info("no documents cleared the similarity floor", "min_similarity", settings.MinSimilarity)
		return answer, nil
	}

	completionService := a.services.CompletionService()
	if completionService == nil {
		answer := degradedAnswer(chunks)
		a.observe(answer)
		logger.Warn("completion service unavailable, returning degraded answer")
		return answer, nil
	}

	answer, err := completionService.Complete(ctx, query, chunks)
	if err != nil {
		answer = degradedAnswer(chunks)
		a.observe(answer)
		logger.Warn("completion failed, returning degraded answer", "error", err)
		return answer, nil
	}

	if answer.CreatedAt.IsZero() {
		answer.CreatedAt = time.Now()
	}

	if answer.Cacheable() {
		if err := a.cache.Put(ctx, query, answer); err != nil {
			logger.Warn("answer cache write failed", "error", err)
		}
	}

	a.observe(answer)
	logger.Info("query answered", "response_type", answer.ResponseType, "sources", len(answer.Sources))
	return answer, nil
}

func (a *AnswerOrchestrator) observe(answer *domain.Answer) {
	if a.metrics != nil {
		a.metrics.QueriesTotal.WithLabelValues(string(answer.ResponseType)).Inc()
	}
}

// degradedAnswer builds the fallback payload when completion is unavailable.
// The retrieved sources are preserved so the UI can at least link the
// relevant documents.
func degradedAnswer(chunks []*domain.RetrievedChunk) *domain.Answer {
	answer := &domain.Answer{
		ResponseType: domain.ResponseTypeDegraded,
		Summary:      "The answer service is temporarily unavailable. The documents below may contain what you need.",
		CreatedAt:    time.Now(),
	}
	for _, rc := range chunks {
		answer.Sources = append(answer.Sources, domain.AnswerSource{
			DocumentID: rc.Chunk.DocumentID,
			ChunkIndex: rc.Chunk.Index,
			Score:      rc.Score,
		})
	}
	return answer
}
