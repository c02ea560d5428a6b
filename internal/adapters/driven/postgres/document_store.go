package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/helpdesk-rag/internal/core/domain"
	"github.com/custodia-labs/helpdesk-rag/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore implements driven.DocumentStore using PostgreSQL.
// Documents are created by the host application; this adapter only reads
// them and writes the processing columns.
type DocumentStore struct {
	db *DB
}

// NewDocumentStore creates a new DocumentStore
func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// Get retrieves a document by ID
func (s *DocumentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	var doc domain.Document
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, file_path, mime_type, processing_status, processed,
		       chunks_count, processing_note, created_at, updated_at
		FROM documents
		WHERE id = $1
	`, id).Scan(
		&doc.ID,
		&doc.Title,
		&doc.FilePath,
		&doc.MimeType,
		&doc.ProcessingStatus,
		&doc.Processed,
		&doc.ChunksCount,
		&doc.ProcessingNote,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreFailure, err)
	}

	return &doc, nil
}

// UpdateProcessing writes the pipeline-owned processing fields
func (s *DocumentStore) UpdateProcessing(ctx context.Context, id string, update domain.ProcessingUpdate) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE documents
		SET processing_status = $2,
		    processed = $3,
		    chunks_count = $4,
		    processing_note = $5,
		    updated_at = NOW()
		WHERE id = $1
	`, id, update.Status, update.Processed, update.ChunksCount, update.Note)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreFailure, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreFailure, err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	return nil
}
