package ai

import (
	"time"

	"github.com/custodia-labs/helpdesk-rag/internal/core/ports/driven"
)

// Settings describes an AI provider configuration.
type Settings struct {
	APIKey          string
	BaseURL         string
	EmbeddingModel  string
	CompletionModel string
	Timeout         time.Duration
}

// IsConfigured reports whether the settings carry enough to build services.
func (s Settings) IsConfigured() bool {
	return s.APIKey != ""
}

// NewServices builds the embedding and completion services from settings.
// Unconfigured settings yield nil services without error; the pipeline
// degrades gracefully until the operator supplies credentials.
func NewServices(s Settings) (driven.EmbeddingService, driven.CompletionService, error) {
	if !s.IsConfigured() {
		return nil, nil, nil
	}

	embedding, err := NewOpenAIEmbedding(s.APIKey, s.EmbeddingModel, s.BaseURL, s.Timeout)
	if err != nil {
		return nil, nil, err
	}

	completion, err := NewOpenAICompletion(s.APIKey, s.CompletionModel, s.BaseURL, s.Timeout)
	if err != nil {
		_ = embedding.Close()
		return nil, nil, err
	}

	return embedding, completion, nil
}
