package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/custodia-labs/helpdesk-rag/internal/core/ports/driven"
	"github.com/custodia-labs/helpdesk-rag/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string
	logger     *slog.Logger

	// Services
	answerService driving.AnswerService
	ingestService driving.IngestService

	// Infrastructure
	documentStore  driven.DocumentStore
	metricsHandler http.Handler
	db             Pinger // PostgreSQL health check
	redisClient    Pinger // Redis health check (optional)
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string
	Logger  *slog.Logger
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:    "0.0.0.0",
		Port:    8080,
		Version: "dev",
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	answerService driving.AnswerService,
	ingestService driving.IngestService,
	documentStore driven.DocumentStore,
	metricsHandler http.Handler,
	db Pinger,
	redisClient Pinger, // can be nil
) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		router:         http.NewServeMux(),
		version:        cfg.Version,
		logger:         logger,
		answerService:  answerService,
		ingestService:  ingestService,
		documentStore:  documentStore,
		metricsHandler: metricsHandler,
		db:             db,
		redisClient:    redisClient,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      RequestLogger(logger)(s.router),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second, // answer path waits on the completion provider
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health endpoints
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Query endpoint
	s.router.HandleFunc("POST /api/v1/answer", s.handleAnswer)

	// Document endpoints
	s.router.HandleFunc("GET /api/v1/documents/{id}", s.handleGetDocument)
	s.router.HandleFunc("POST /api/v1/documents/{id}/ingest", s.handleIngestDocument)
	s.router.HandleFunc("POST /api/v1/documents/{id}/reingest", s.handleReingestDocument)

	// Corpus stats
	s.router.HandleFunc("GET /api/v1/stats", s.handleStats)

	// Prometheus metrics
	if s.metricsHandler != nil {
		s.router.Handle("GET /metrics", s.metricsHandler)
	}
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	// Channel to listen for OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or listen failure
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}
	s.logger.Info("shutting down server")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
