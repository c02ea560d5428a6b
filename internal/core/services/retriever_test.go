package services

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/custodia-labs/helpdesk-rag/internal/core/domain"
	"github.com/custodia-labs/helpdesk-rag/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/helpdesk-rag/internal/runtime"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestRuntime(embedding *mocks.MockEmbeddingService) *runtime.Services {
	svcs := runtime.NewServices(domain.NewRuntimeConfig(domain.DefaultPipelineSettings()))
	if embedding != nil {
		svcs.SetEmbeddingService(embedding)
	}
	return svcs
}

func seedChunk(t *testing.T, store *mocks.MockChunkStore, docID string, index int, text string, embedding []float32) {
	t.Helper()
	chunks, err := store.All(context.Background())
	if err != nil {
		t.Fatalf("read store: %v", err)
	}
	var existing []*domain.Chunk
	for _, c := range chunks {
		if c.DocumentID == docID {
			existing = append(existing, c)
		}
	}
	existing = append(existing, &domain.Chunk{
		DocumentID: docID,
		Index:      index,
		Text:       text,
		Embedding:  embedding,
		CreatedAt:  time.Now(),
	})
	if _, err := store.Replace(context.Background(), docID, existing); err != nil {
		t.Fatalf("seed chunk: %v", err)
	}
}

func TestRetrieveOrdersByScoreDescending(t *testing.T) {
	embedding := mocks.NewMockEmbeddingService(3)
	embedding.SetVector("query", []float32{1, 0, 0})

	store := mocks.NewMockChunkStore()
	seedChunk(t, store, "doc-a", 0, "far", []float32{0, 1, 0.2})
	seedChunk(t, store, "doc-a", 1, "close", []float32{1, 0.1, 0})
	seedChunk(t, store, "doc-b", 0, "exact", []float32{2, 0, 0})

	r := NewRetriever(store, newTestRuntime(embedding), discardLogger(), nil)

	got, err := r.Retrieve(context.Background(), "query", 10, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Errorf("results out of order at %d: %f > %f", i, got[i].Score, got[i-1].Score)
		}
	}
	if got[0].Chunk.Text != "exact" {
		t.Errorf("expected best match 'exact', got %q", got[0].Chunk.Text)
	}
}

func TestRetrieveTieBreakIsDeterministic(t *testing.T) {
	embedding := mocks.NewMockEmbeddingService(2)
	embedding.SetVector("query", []float32{1, 0})

	store := mocks.NewMockChunkStore()
	// Same direction, same cosine score, different index and document
	seedChunk(t, store, "doc-b", 0, "b0", []float32{3, 0})
	seedChunk(t, store, "doc-a", 0, "a0", []float32{2, 0})
	seedChunk(t, store, "doc-a", 1, "a1", []float32{1, 0})

	r := NewRetriever(store, newTestRuntime(embedding), discardLogger(), nil)

	for run := 0; run < 5; run++ {
		got, err := r.Retrieve(context.Background(), "query", 10, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 results, got %d", len(got))
		}
		// Equal scores: index ascending, then document ID ascending
		want := []string{"a0", "b0", "a1"}
		for i, w := range want {
			if got[i].Chunk.Text != w {
				t.Fatalf("run %d: position %d got %q, want %q", run, i, got[i].Chunk.Text, w)
			}
		}
	}
}

func TestRetrieveAppliesSimilarityFloor(t *testing.T) {
	embedding := mocks.NewMockEmbeddingService(2)
	embedding.SetVector("query", []float32{1, 0})

	store := mocks.NewMockChunkStore()
	seedChunk(t, store, "doc", 0, "aligned", []float32{1, 0})
	seedChunk(t, store, "doc", 1, "orthogonal", []float32{0, 1})

	r := NewRetriever(store, newTestRuntime(embedding), discardLogger(), nil)

	got, err := r.Retrieve(context.Background(), "query", 10, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Chunk.Text != "aligned" {
		t.Fatalf("expected only the aligned chunk, got %d results", len(got))
	}
}

func TestRetrieveTruncatesToTopN(t *testing.T) {
	embedding := mocks.NewMockEmbeddingService(2)
	embedding.SetVector("query", []float32{1, 0})

	store := mocks.NewMockChunkStore()
	var chunks []*domain.Chunk
	for i := 0; i < 10; i++ {
		chunks = append(chunks, &domain.Chunk{
			DocumentID: "doc",
			Index:      i,
			Text:       "chunk",
			Embedding:  []float32{1, float32(i) * 0.1},
		})
	}
	if _, err := store.Replace(context.Background(), "doc", chunks); err != nil {
		t.Fatalf("seed: %v", err)
	}

	r := NewRetriever(store, newTestRuntime(embedding), discardLogger(), nil)

	got, err := r.Retrieve(context.Background(), "query", 3, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
}

func TestRetrieveEmptyCorpus(t *testing.T) {
	r := NewRetriever(mocks.NewMockChunkStore(), newTestRuntime(mocks.NewMockEmbeddingService(4)), discardLogger(), nil)

	got, err := r.Retrieve(context.Background(), "anything", 5, 0.3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no results, got %d", len(got))
	}
}

func TestRetrieveEmptyQueryRejected(t *testing.T) {
	r := NewRetriever(mocks.NewMockChunkStore(), newTestRuntime(mocks.NewMockEmbeddingService(4)), discardLogger(), nil)

	if _, err := r.Retrieve(context.Background(), "   ", 5, 0.3); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRetrieveEmbeddingErrorPropagates(t *testing.T) {
	embedding := mocks.NewMockEmbeddingService(4)
	embedding.SetError(domain.ErrEmbeddingProvider)

	store := mocks.NewMockChunkStore()
	seedChunk(t, store, "doc", 0, "text", []float32{1, 0, 0, 0})

	r := NewRetriever(store, newTestRuntime(embedding), discardLogger(), nil)

	if _, err := r.Retrieve(context.Background(), "query", 5, 0.3); !errors.Is(err, domain.ErrEmbeddingProvider) {
		t.Fatalf("expected provider error to propagate, got %v", err)
	}
}

func TestRetrieveNoEmbeddingService(t *testing.T) {
	r := NewRetriever(mocks.NewMockChunkStore(), newTestRuntime(nil), discardLogger(), nil)

	if _, err := r.Retrieve(context.Background(), "query", 5, 0.3); !errors.Is(err, domain.ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"scale invariant", []float32{1, 1}, []float32{5, 5}, 1},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"length mismatch", []float32{1, 2}, []float32{1, 2, 3}, 0},
		{"empty", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineSimilarity(%v, %v) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCosineSimilarityBounds(t *testing.T) {
	embedding := mocks.NewMockEmbeddingService(16)
	for _, text := range []string{"alpha", "beta", "gamma", "delta"} {
		v1, _ := embedding.EmbedQuery(context.Background(), text)
		v2, _ := embedding.EmbedQuery(context.Background(), text+" other")
		score := CosineSimilarity(v1, v2)
		if score < -1.0000001 || score > 1.0000001 {
			t.Errorf("score out of bounds for %q: %f", text, score)
		}
		if self := CosineSimilarity(v1, v1); math.Abs(self-1) > 1e-6 {
			t.Errorf("self similarity for %q = %f, want 1", text, self)
		}
	}
}
