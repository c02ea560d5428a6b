package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/helpdesk-rag/internal/adapters/driven/ai"
	"github.com/custodia-labs/helpdesk-rag/internal/adapters/driven/extractor"
	"github.com/custodia-labs/helpdesk-rag/internal/adapters/driven/postgres"
	redisadapter "github.com/custodia-labs/helpdesk-rag/internal/adapters/driven/redis"
	httpapi "github.com/custodia-labs/helpdesk-rag/internal/adapters/driving/http"
	"github.com/custodia-labs/helpdesk-rag/internal/config"
	"github.com/custodia-labs/helpdesk-rag/internal/core/domain"
	"github.com/custodia-labs/helpdesk-rag/internal/core/ports/driven"
	"github.com/custodia-labs/helpdesk-rag/internal/core/services"
	"github.com/custodia-labs/helpdesk-rag/internal/metrics"
	"github.com/custodia-labs/helpdesk-rag/internal/runtime"
	"github.com/custodia-labs/helpdesk-rag/internal/worker"
)

var version = "dev"

func main() {
	// .env is optional; real deployments set environment variables directly
	_ = godotenv.Load()

	configPath := flag.String("config", os.Getenv("HELPDESK_CONFIG"), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)
	logger.Info("helpdesk-rag starting", "version", version)

	ctx := context.Background()

	// ===== PostgreSQL =====
	dbCfg := postgres.DefaultConfig(cfg.Postgres.DSN())
	dbCfg.MaxOpenConns = cfg.Postgres.MaxOpenConns
	dbCfg.MaxIdleConns = cfg.Postgres.MaxIdleConns
	dbCfg.ConnMaxLifetime = cfg.Postgres.ConnLifetime
	db, err := postgres.Connect(ctx, dbCfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}
	logger.Info("postgres connected, schema initialized")

	// ===== Redis (optional) =====
	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		logger.Info("redis connected", "addr", cfg.Redis.Addr)
	}

	// ===== Stores =====
	documentStore := postgres.NewDocumentStore(db)
	chunkStore := postgres.NewChunkStore(db)

	// ===== Answer cache (Redis if available, otherwise PostgreSQL) =====
	settings := cfg.Pipeline.Settings()
	var answerCache driven.AnswerCache
	if redisClient != nil {
		answerCache, err = redisadapter.NewAnswerCache(redisClient, settings.CacheTTL)
		if err != nil {
			log.Fatalf("Failed to create answer cache: %v", err)
		}
		logger.Info("using redis answer cache")
	} else {
		answerCache = postgres.NewAnswerCache(db, settings.CacheTTL)
		logger.Info("using postgres answer cache")
	}

	// ===== Task queue (Redis if available, otherwise PostgreSQL) =====
	var taskQueue driven.TaskQueue
	if redisClient != nil {
		taskQueue, err = redisadapter.NewQueue(redisClient, fmt.Sprintf("worker-%d", os.Getpid()))
		if err != nil {
			log.Fatalf("Failed to create task queue: %v", err)
		}
		logger.Info("using redis task queue")
	} else {
		taskQueue = postgres.NewQueue(db)
		logger.Info("using postgres task queue")
	}

	// ===== Runtime AI services =====
	runtimeServices := runtime.NewServices(domain.NewRuntimeConfig(settings))
	defer runtimeServices.Close()

	aiSettings := ai.Settings{
		APIKey:          cfg.OpenAI.APIKey,
		BaseURL:         cfg.OpenAI.BaseURL,
		EmbeddingModel:  cfg.OpenAI.EmbeddingModel,
		CompletionModel: cfg.OpenAI.CompletionModel,
		Timeout:         cfg.OpenAI.Timeout,
	}
	if aiSettings.IsConfigured() {
		embedding, completion, err := ai.NewServices(aiSettings)
		if err != nil {
			log.Fatalf("Failed to create AI services: %v", err)
		}
		connectAIServices(ctx, runtimeServices, embedding, completion, logger)
	} else {
		logger.Warn("no AI provider configured; answers will be degraded and ingestion will fail")
	}

	// ===== Metrics =====
	m := metrics.New()

	// ===== Core services =====
	retriever := services.NewRetriever(chunkStore, runtimeServices, logger, m)
	answerService := services.NewAnswerOrchestrator(answerCache, retriever, runtimeServices, logger, m)
	ingestService := services.NewIngestFront(documentStore, chunkStore, taskQueue, logger)

	orchestrator := services.NewIngestOrchestrator(services.IngestOrchestratorConfig{
		DocumentStore: documentStore,
		ChunkStore:    chunkStore,
		Extractor:     extractor.NewFileExtractor(),
		Services:      runtimeServices,
		Logger:        logger,
		Metrics:       m,
		Budget:        cfg.Pipeline.IngestBudget,
	})

	// ===== Background worker =====
	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	w := worker.New(worker.Config{
		TaskQueue:      taskQueue,
		Orchestrator:   orchestrator,
		Logger:         logger,
		Concurrency:    cfg.Worker.Concurrency,
		DequeueTimeout: cfg.Worker.PollInterval,
	})
	if err := w.Start(workerCtx); err != nil {
		log.Fatalf("Failed to start worker: %v", err)
	}

	// ===== HTTP server (blocks until shutdown signal) =====
	var redisPinger httpapi.Pinger
	if redisClient != nil {
		redisPinger = pingAdapter{redisClient}
	}

	server := httpapi.NewServer(
		httpapi.Config{
			Host:    "0.0.0.0",
			Port:    cfg.Server.Port,
			Version: version,
			Logger:  logger,
		},
		answerService,
		ingestService,
		documentStore,
		m.Handler(),
		db,
		redisPinger,
	)

	if err := server.Start(); err != nil {
		logger.Error("server exited with error", "error", err)
	}

	// Drain in-flight ingestion before releasing connections
	cancelWorker()
	w.Stop()
	logger.Info("helpdesk-rag stopped")
}

// connectAIServices validates the provider before registering it. Validation
// failures are not fatal: the provider may recover, and per-call errors
// already degrade gracefully.
func connectAIServices(ctx context.Context, svcs *runtime.Services, embedding driven.EmbeddingService, completion driven.CompletionService, logger *slog.Logger) {
	checkCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := svcs.ValidateAndSetEmbedding(checkCtx, embedding); err != nil {
		logger.Warn("embedding provider health check failed, registering anyway", "error", err)
		svcs.SetEmbeddingService(embedding)
	}
	if err := svcs.ValidateAndSetCompletion(checkCtx, completion); err != nil {
		logger.Warn("completion provider health check failed, registering anyway", "error", err)
		svcs.SetCompletionService(completion)
	}
	logger.Info("AI services registered",
		"embedding_model", embedding.Model(),
		"completion_model", completion.Model(),
	)
}

// pingAdapter bridges the go-redis client to the server's Pinger interface.
type pingAdapter struct {
	client *redis.Client
}

func (p pingAdapter) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
