package domain

import (
	"sync"
	"time"
)

// PipelineSettings are the tunables the host application may refresh at
// runtime (model choice lives on the AI adapters themselves).
type PipelineSettings struct {
	ChunkSize     int           `json:"chunk_size"`     // target characters per chunk
	ChunkOverlap  int           `json:"chunk_overlap"`  // characters repeated between chunks
	TopN          int           `json:"top_n"`          // max chunks returned by retrieval
	MinSimilarity float64       `json:"min_similarity"` // relevance floor
	CacheTTL      time.Duration `json:"cache_ttl"`
}

// DefaultPipelineSettings returns sensible defaults.
func DefaultPipelineSettings() PipelineSettings {
	return PipelineSettings{
		ChunkSize:     1000,
		ChunkOverlap:  200,
		TopN:          5,
		MinSimilarity: 0.3,
		CacheTTL:      24 * time.Hour,
	}
}

// Normalized returns a copy with out-of-range values clamped to defaults.
func (s PipelineSettings) Normalized() PipelineSettings {
	def := DefaultPipelineSettings()
	if s.ChunkSize <= 0 {
		s.ChunkSize = def.ChunkSize
	}
	if s.ChunkOverlap < 0 || s.ChunkOverlap >= s.ChunkSize {
		s.ChunkOverlap = s.ChunkSize / 5
	}
	if s.TopN <= 0 {
		s.TopN = def.TopN
	}
	if s.MinSimilarity < -1 || s.MinSimilarity > 1 {
		s.MinSimilarity = def.MinSimilarity
	}
	if s.CacheTTL <= 0 {
		s.CacheTTL = def.CacheTTL
	}
	return s
}

// RuntimeConfig tracks which AI capabilities are currently available.
// Thread-safe: services can be configured while queries are in flight.
type RuntimeConfig struct {
	mu                  sync.RWMutex
	embeddingAvailable  bool
	completionAvailable bool
	settings            PipelineSettings
}

// NewRuntimeConfig creates a RuntimeConfig with the given settings.
func NewRuntimeConfig(settings PipelineSettings) *RuntimeConfig {
	return &RuntimeConfig{settings: settings.Normalized()}
}

// EmbeddingAvailable reports whether an embedding service is configured.
func (c *RuntimeConfig) EmbeddingAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.embeddingAvailable
}

// CompletionAvailable reports whether a completion service is configured.
func (c *RuntimeConfig) CompletionAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.completionAvailable
}

// SetEmbeddingAvailable updates the embedding capability flag.
func (c *RuntimeConfig) SetEmbeddingAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.embeddingAvailable = available
}

// SetCompletionAvailable updates the completion capability flag.
func (c *RuntimeConfig) SetCompletionAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.completionAvailable = available
}

// Settings returns the current pipeline settings.
func (c *RuntimeConfig) Settings() PipelineSettings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings
}

// UpdateSettings replaces the pipeline settings after normalization.
func (c *RuntimeConfig) UpdateSettings(settings PipelineSettings) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings = settings.Normalized()
}
