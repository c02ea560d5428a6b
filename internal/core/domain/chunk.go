package domain

import "time"

// Chunk represents one bounded slice of a document's extracted text.
// (DocumentID, Index) is unique per stored chunk.
type Chunk struct {
	DocumentID string    `json:"document_id"`
	Index      int       `json:"chunk_index"` // 0-based ordinal within the document
	Text       string    `json:"text"`
	Embedding  []float32 `json:"embedding,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// RetrievedChunk pairs a chunk with its relevance score for a query.
type RetrievedChunk struct {
	Chunk *Chunk  `json:"chunk"`
	Score float64 `json:"score"`
}

// CorpusStats summarizes the chunk store for dashboards.
type CorpusStats struct {
	TotalChunks     int `json:"total_chunks"`
	UniqueDocuments int `json:"unique_documents"`
}
