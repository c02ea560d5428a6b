package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/custodia-labs/helpdesk-rag/internal/core/domain"
	"github.com/custodia-labs/helpdesk-rag/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore implements driven.ChunkStore using PostgreSQL.
// Embeddings live in a double precision array column; retrieval scans them
// in application code rather than in SQL.
type ChunkStore struct {
	db *DB
}

// NewChunkStore creates a new ChunkStore
func NewChunkStore(db *DB) *ChunkStore {
	return &ChunkStore{db: db}
}

// Replace atomically swaps a document's chunk set. The returned count is the
// number of rows actually inserted; callers record it as chunks_count.
func (s *ChunkStore) Replace(ctx context.Context, documentID string, chunks []*domain.Chunk) (int, error) {
	var inserted int

	err := s.db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = $1`, documentID); err != nil {
			return fmt.Errorf("delete existing chunks: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO chunks (document_id, chunk_index, content, embedding, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, chunk := range chunks {
			if _, err := stmt.ExecContext(ctx,
				documentID,
				chunk.Index,
				chunk.Text,
				pq.Array(toFloat64(chunk.Embedding)),
				chunk.CreatedAt,
			); err != nil {
				return fmt.Errorf("insert chunk %d: %w", chunk.Index, err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrStoreFailure, err)
	}

	return inserted, nil
}

// DeleteByDocument deletes all chunks for a document
func (s *ChunkStore) DeleteByDocument(ctx context.Context, documentID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreFailure, err)
	}
	return nil
}

// All returns every stored chunk ordered by document then index.
func (s *ChunkStore) All(ctx context.Context) ([]*domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT document_id, chunk_index, content, embedding, created_at
		FROM chunks
		ORDER BY document_id ASC, chunk_index ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreFailure, err)
	}
	defer rows.Close()

	var chunks []*domain.Chunk
	for rows.Next() {
		var chunk domain.Chunk
		var embedding []float64
		if err := rows.Scan(
			&chunk.DocumentID,
			&chunk.Index,
			&chunk.Text,
			pq.Array(&embedding),
			&chunk.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrStoreFailure, err)
		}
		chunk.Embedding = toFloat32(embedding)
		chunks = append(chunks, &chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreFailure, err)
	}

	return chunks, nil
}

// Count returns how many chunks a document has
func (s *ChunkStore) Count(ctx context.Context, documentID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks WHERE document_id = $1`, documentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrStoreFailure, err)
	}
	return count, nil
}

// Stats returns corpus-wide totals
func (s *ChunkStore) Stats(ctx context.Context) (*domain.CorpusStats, error) {
	var stats domain.CorpusStats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT document_id) FROM chunks
	`).Scan(&stats.TotalChunks, &stats.UniqueDocuments)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreFailure, err)
	}
	return &stats, nil
}

// lib/pq arrays speak float64; embeddings live as float32 in memory
func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}
