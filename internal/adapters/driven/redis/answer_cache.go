// Package redis implements the answer cache and task queue on Redis.
// Both are optional: the service falls back to Postgres when no Redis
// address is configured.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/helpdesk-rag/internal/core/domain"
	"github.com/custodia-labs/helpdesk-rag/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.AnswerCache = (*AnswerCache)(nil)

const answerKeyPrefix = "helpdesk:answer:"

// AnswerCache implements driven.AnswerCache using Redis with native TTL.
type AnswerCache struct {
	client *redis.Client
	ttl    time.Duration
}

// cacheEntry is the stored value. The normalized query travels with the
// answer so entries stay inspectable by their hash alone.
type cacheEntry struct {
	OriginalQuery string         `json:"original_query"`
	Answer        *domain.Answer `json:"answer"`
}

// NewAnswerCache creates a new Redis-backed answer cache
func NewAnswerCache(client *redis.Client, ttl time.Duration) (*AnswerCache, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AnswerCache{client: client, ttl: ttl}, nil
}

// Get returns the cached answer for a query, or domain.ErrNotFound when the
// entry is missing or Redis already expired it.
func (c *AnswerCache) Get(ctx context.Context, query string) (*domain.Answer, error) {
	data, err := c.client.Get(ctx, answerKeyPrefix+domain.QueryFingerprint(query)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreFailure, err)
	}

	var entry cacheEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil || entry.Answer == nil {
		return nil, fmt.Errorf("%w: corrupt cache entry: %v", domain.ErrStoreFailure, err)
	}
	entry.Answer.Cached = true

	return entry.Answer, nil
}

// Put upserts the answer for a query; the TTL window restarts.
func (c *AnswerCache) Put(ctx context.Context, query string, answer *domain.Answer) error {
	data, err := json.Marshal(cacheEntry{
		OriginalQuery: domain.NormalizeQuery(query),
		Answer:        answer,
	})
	if err != nil {
		return fmt.Errorf("marshal answer: %w", err)
	}

	if err := c.client.Set(ctx, answerKeyPrefix+domain.QueryFingerprint(query), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreFailure, err)
	}
	return nil
}
