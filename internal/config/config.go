// Package config loads application configuration from a YAML file with
// environment-variable overrides. Every field has a sensible default so the
// service can start with no config file at all.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/helpdesk-rag/internal/core/domain"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Worker   WorkerConfig   `yaml:"worker"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	Database     string        `yaml:"database"`
	User         string        `yaml:"user"`
	Password     string        `yaml:"password"`
	SSLMode      string        `yaml:"sslMode"`
	MaxOpenConns int           `yaml:"maxOpenConns"`
	MaxIdleConns int           `yaml:"maxIdleConns"`
	ConnLifetime time.Duration `yaml:"connLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// RedisConfig holds Redis connection parameters. Redis is optional: when Addr
// is empty, caching and queueing fall back to Postgres.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"poolSize"`
}

// Enabled reports whether a Redis address is configured.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// OpenAIConfig holds the AI provider credentials and model choices.
type OpenAIConfig struct {
	APIKey          string        `yaml:"apiKey"`
	BaseURL         string        `yaml:"baseUrl"`
	EmbeddingModel  string        `yaml:"embeddingModel"`
	CompletionModel string        `yaml:"completionModel"`
	Timeout         time.Duration `yaml:"timeout"`
}

// PipelineConfig holds chunking, retrieval, and caching tunables.
type PipelineConfig struct {
	ChunkSize     int           `yaml:"chunkSize"`
	ChunkOverlap  int           `yaml:"chunkOverlap"`
	TopN          int           `yaml:"topN"`
	MinSimilarity float64       `yaml:"minSimilarity"`
	CacheTTL      time.Duration `yaml:"cacheTTL"`
	IngestBudget  time.Duration `yaml:"ingestBudget"`
}

// Settings converts the pipeline section into domain settings.
func (p PipelineConfig) Settings() domain.PipelineSettings {
	return domain.PipelineSettings{
		ChunkSize:     p.ChunkSize,
		ChunkOverlap:  p.ChunkOverlap,
		TopN:          p.TopN,
		MinSimilarity: p.MinSimilarity,
		CacheTTL:      p.CacheTTL,
	}.Normalized()
}

// WorkerConfig controls the background ingestion workers.
type WorkerConfig struct {
	Concurrency  int           `yaml:"concurrency"`
	PollInterval time.Duration `yaml:"pollInterval"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Postgres: PostgresConfig{
			Host:         "localhost",
			Port:         5432,
			Database:     "helpdesk",
			User:         "helpdesk",
			Password:     "localdev",
			SSLMode:      "disable",
			MaxOpenConns: 25,
			MaxIdleConns: 5,
			ConnLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			Addr:     "",
			PoolSize: 10,
		},
		OpenAI: OpenAIConfig{
			BaseURL:         "https://api.openai.com/v1",
			EmbeddingModel:  "text-embedding-3-small",
			CompletionModel: "gpt-4o-mini",
			Timeout:         30 * time.Second,
		},
		Pipeline: PipelineConfig{
			ChunkSize:     1000,
			ChunkOverlap:  200,
			TopN:          5,
			MinSimilarity: 0.3,
			CacheTTL:      24 * time.Hour,
			IngestBudget:  60 * time.Second,
		},
		Worker: WorkerConfig{
			Concurrency:  2,
			PollInterval: time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// applyEnvOverrides reads HELPDESK_* environment variables and overrides the
// corresponding config fields. Secrets usually arrive this way.
func applyEnvOverrides(cfg *Config) {
	setString := func(key string, target *string) {
		if v := os.Getenv(key); v != "" {
			*target = v
		}
	}
	setInt := func(key string, target *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*target = n
			}
		}
	}

	setInt("HELPDESK_SERVER_PORT", &cfg.Server.Port)
	setString("HELPDESK_POSTGRES_HOST", &cfg.Postgres.Host)
	setInt("HELPDESK_POSTGRES_PORT", &cfg.Postgres.Port)
	setString("HELPDESK_POSTGRES_DATABASE", &cfg.Postgres.Database)
	setString("HELPDESK_POSTGRES_USER", &cfg.Postgres.User)
	setString("HELPDESK_POSTGRES_PASSWORD", &cfg.Postgres.Password)
	setString("HELPDESK_POSTGRES_SSLMODE", &cfg.Postgres.SSLMode)
	setString("HELPDESK_REDIS_ADDR", &cfg.Redis.Addr)
	setString("HELPDESK_REDIS_PASSWORD", &cfg.Redis.Password)
	setString("HELPDESK_OPENAI_API_KEY", &cfg.OpenAI.APIKey)
	setString("HELPDESK_OPENAI_BASE_URL", &cfg.OpenAI.BaseURL)
	setString("HELPDESK_OPENAI_EMBEDDING_MODEL", &cfg.OpenAI.EmbeddingModel)
	setString("HELPDESK_OPENAI_COMPLETION_MODEL", &cfg.OpenAI.CompletionModel)
	setInt("HELPDESK_PIPELINE_TOP_N", &cfg.Pipeline.TopN)
	setInt("HELPDESK_PIPELINE_CHUNK_SIZE", &cfg.Pipeline.ChunkSize)
	setInt("HELPDESK_PIPELINE_CHUNK_OVERLAP", &cfg.Pipeline.ChunkOverlap)
	setInt("HELPDESK_WORKER_CONCURRENCY", &cfg.Worker.Concurrency)
	setString("HELPDESK_LOGGING_LEVEL", &cfg.Logging.Level)
	setString("HELPDESK_LOGGING_FORMAT", &cfg.Logging.Format)

	if v := os.Getenv("HELPDESK_PIPELINE_MIN_SIMILARITY"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Pipeline.MinSimilarity = f
		}
	}
	if v := os.Getenv("HELPDESK_PIPELINE_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Pipeline.CacheTTL = d
		}
	}
}
