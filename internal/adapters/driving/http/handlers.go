package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/custodia-labs/helpdesk-rag/internal/core/domain"
)

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// AnswerRequest is the body of POST /api/v1/answer.
type AnswerRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

// Health endpoints

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady checks the backing stores before reporting ready.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	if s.redisClient != nil {
		if err := s.redisClient.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "redis unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Query endpoint

// handleAnswer runs the full query flow and returns the structured answer.
// Degraded and no-documents outcomes are successful responses; only
// retrieval-side failures surface as errors.
func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	answer, err := s.answerService.Answer(r.Context(), req.Query, req.SessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, answer)
}

// Document endpoints

// handleGetDocument returns a document with its processing state, so callers
// can poll ingestion progress.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.documentStore.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleIngestDocument schedules background ingestion and returns immediately.
func (s *Server) handleIngestDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.ingestService.Ingest(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// handleReingestDocument wipes existing chunks and schedules a fresh ingestion.
func (s *Server) handleReingestDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.ingestService.Reingest(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// Stats endpoint

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.ingestService.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// writeServiceError maps domain sentinels onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrServiceUnavailable),
		errors.Is(err, domain.ErrEmbeddingTimeout),
		errors.Is(err, domain.ErrEmbeddingProvider):
		writeError(w, http.StatusServiceUnavailable, "service unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
