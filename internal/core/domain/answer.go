package domain

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"time"
)

// ResponseType tags the outcome of a query so callers can tell a real answer
// from a degraded one or an empty corpus.
type ResponseType string

const (
	// ResponseTypeAnswer is a normal answer produced from retrieved chunks
	ResponseTypeAnswer ResponseType = "answer"
	// ResponseTypeNoDocuments means no chunk cleared the similarity floor
	ResponseTypeNoDocuments ResponseType = "no_documents_found"
	// ResponseTypeDegraded means the completion service failed or timed out
	ResponseTypeDegraded ResponseType = "degraded"
)

// AnswerSource points at a chunk that contributed to an answer.
type AnswerSource struct {
	DocumentID string  `json:"document_id"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score"`
}

// Answer is the structured payload returned to the helpdesk UI.
// The completion adapter is the only place that parses model output into it.
type Answer struct {
	ResponseType    ResponseType   `json:"response_type"`
	Summary         string         `json:"summary"`
	Details         string         `json:"details,omitempty"`
	ActionRequired  string         `json:"action_required,omitempty"`
	ContactInfo     string         `json:"contact_info,omitempty"`
	RelatedPolicies []string       `json:"related_policies,omitempty"`
	Sources         []AnswerSource `json:"sources,omitempty"`
	Cached          bool           `json:"cached"`
	CreatedAt       time.Time      `json:"created_at"`
}

// Cacheable reports whether the answer may be memoized. Empty-corpus and
// degraded responses are never cached so a later retry can succeed.
func (a *Answer) Cacheable() bool {
	return a != nil && a.ResponseType == ResponseTypeAnswer
}

// NormalizeQuery lower-cases, trims, and collapses whitespace so that
// trivially different spellings of the same question share a cache entry.
func NormalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

// QueryFingerprint returns the deterministic cache key for a query.
// MD5 is fine here: the fingerprint is a cache key, not a security boundary.
func QueryFingerprint(query string) string {
	sum := md5.Sum([]byte(NormalizeQuery(query)))
	return hex.EncodeToString(sum[:])
}
