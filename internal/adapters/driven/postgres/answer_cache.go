package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/helpdesk-rag/internal/core/domain"
	"github.com/custodia-labs/helpdesk-rag/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.AnswerCache = (*AnswerCache)(nil)

// AnswerCache implements driven.AnswerCache using PostgreSQL.
// TTL is evaluated at read time; a stale row behaves exactly like a miss and
// is cleaned up opportunistically.
type AnswerCache struct {
	db  *DB
	ttl time.Duration
}

// NewAnswerCache creates a new AnswerCache with the given TTL
func NewAnswerCache(db *DB, ttl time.Duration) *AnswerCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AnswerCache{db: db, ttl: ttl}
}

// Get returns the cached answer for a query, or domain.ErrNotFound when the
// entry is missing or expired.
func (c *AnswerCache) Get(ctx context.Context, query string) (*domain.Answer, error) {
	fingerprint := domain.QueryFingerprint(query)

	var payload []byte
	var createdAt time.Time
	err := c.db.QueryRowContext(ctx, `
		SELECT answer, created_at FROM answer_cache WHERE fingerprint = $1
	`, fingerprint).Scan(&payload, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreFailure, err)
	}

	if time.Since(createdAt) > c.ttl {
		_, _ = c.db.ExecContext(ctx, `DELETE FROM answer_cache WHERE fingerprint = $1`, fingerprint)
		return nil, domain.ErrNotFound
	}

	var answer domain.Answer
	if err := json.Unmarshal(payload, &answer); err != nil {
		return nil, fmt.Errorf("%w: corrupt cache entry: %v", domain.ErrStoreFailure, err)
	}
	answer.Cached = true

	return &answer, nil
}

// Put upserts the answer for a query; the TTL window restarts.
func (c *AnswerCache) Put(ctx context.Context, query string, answer *domain.Answer) error {
	payload, err := json.Marshal(answer)
	if err != nil {
		return fmt.Errorf("marshal answer: %w", err)
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO answer_cache (fingerprint, original_query, answer, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (fingerprint) DO UPDATE SET
			original_query = EXCLUDED.original_query,
			answer = EXCLUDED.answer,
			created_at = EXCLUDED.created_at
	`, domain.QueryFingerprint(query), domain.NormalizeQuery(query), payload)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreFailure, err)
	}

	return nil
}
