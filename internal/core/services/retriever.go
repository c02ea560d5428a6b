package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/helpdesk-rag/internal/core/domain"
	"github.com/custodia-labs/helpdesk-rag/internal/core/ports/driven"
	"github.com/custodia-labs/helpdesk-rag/internal/core/ports/driving"
	"github.com/custodia-labs/helpdesk-rag/internal/metrics"
	"github.com/custodia-labs/helpdesk-rag/internal/runtime"
)

// Ensure Retriever implements driving.Retriever
var _ driving.Retriever = (*Retriever)(nil)

// Retriever scores every stored chunk against the query embedding.
// Brute-force cosine over a full scan; fine at helpdesk corpus sizes.
type Retriever struct {
	chunkStore driven.ChunkStore
	services   *runtime.Services
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewRetriever creates a new Retriever.
// The embedding service is accessed dynamically via runtime.Services.
func NewRetriever(chunkStore driven.ChunkStore, services *runtime.Services, logger *slog.Logger, m *metrics.Metrics) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		chunkStore: chunkStore,
		services:   services,
		logger:     logger,
		metrics:    m,
	}
}

// Retrieve embeds the query once, scans all chunks, and returns at most topN
// chunks scoring >= minSimilarity, ordered by score descending with
// deterministic tie-breaks (chunk index, then document ID, ascending).
//
// Embedding failures propagate: an error here is not the same thing as
// "nothing relevant found" and must not look like it.
func (r *Retriever) Retrieve(ctx context.Context, query string, topN int, minSimilarity float64) ([]*domain.RetrievedChunk, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrInvalidInput
	}

	settings := r.services.Config().Settings()
	if topN <= 0 {
		topN = settings.TopN
	}

	embeddingService := r.services.EmbeddingService()
	if embeddingService == nil {
		return nil, domain.ErrServiceUnavailable
	}

	start := time.Now()

	queryVector, err := embeddingService.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	chunks, err := r.chunkStore.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan chunks: %w", err)
	}

	var scored []*domain.RetrievedChunk
	for _, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			continue
		}
		score := CosineSimilarity(queryVector, chunk.Embedding)
		if score < minSimilarity {
			continue
		}
		scored = append(scored, &domain.RetrievedChunk{Chunk: chunk, Score: score})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if scored[i].Chunk.Index != scored[j].Chunk.Index {
			return scored[i].Chunk.Index < scored[j].Chunk.Index
		}
		return scored[i].Chunk.DocumentID < scored[j].Chunk.DocumentID
	})

	if len(scored) > topN {
		scored = scored[:topN]
	}

	if r.metrics != nil {
		r.metrics.RetrievalLatency.Observe(time.Since(start).Seconds())
	}

	r.logger.Debug("retrieval done",
		"candidates", len(chunks),
		"matches", len(scored),
		"top_n", topN,
		"min_similarity", minSimilarity,
	)

	return scored, nil
}

// CosineSimilarity computes the cosine of the angle between two vectors:
// dot(a,b) / (|a|*|b|). Stored vectors are not assumed unit-norm.
// Returns 0 for mismatched lengths or zero-norm inputs.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
