// Package config loads worker configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds full worker configuration: queue/storage connectivity plus
// every tuning knob named in SPEC_FULL.md (DPI ladder, column threshold,
// table bucket size, embedding dimension, scoring/match weights).
type Config struct {
	// Queue
	RedisURL string

	// Persistent store
	DatabaseURL      string
	QdrantURL        string
	QdrantCandidates string
	QdrantJobs       string

	// Embedding model
	EmbeddingAPIKey   string
	EmbeddingAPIURL   string
	EmbeddingModel    string
	EmbeddingDimension int
	EmbeddingCacheSize int // LRU-cached embedding vectors, per spec.md §5

	// External services (§6.3)
	CandidateDataBaseURL string
	SSOTokenURL          string
	SSOClientID          string
	SSOClientSecret      string

	// Worker
	WorkerConcurrency int
	MaxFileSize       int64
	ChunkSize         int64
	ProcessingTimeout int // milliseconds, per-job budget (analog of the 120s request-timeout in §5)

	// OCR
	TesseractPath   string
	OCRPrimaryEngine string // "tesseract" | "" (absent => fallback-only)

	// Image Prep (C1) tuning
	PDFRasterizerPath string   // external renderer binary invoked by C1
	PDFDPILadder      []int    // default [200, 150, 100]
	ColumnSplitX      int      // default 500 (C3)
	TableBucketPx     int      // default 25 (C12)

	// Match Orchestrator (C11) default weights
	SemanticWeight float64 // default 0.4
	CriteriaWeight float64 // default 0.6

	// Embedding Composer (C9) truncation
	EmbeddingMaxChars int // default 8000

	TempDir string
	NodeEnv string
}

// LoadConfig loads configuration from environment variables, panicking via
// getEnvOrThrow (unchanged teacher idiom) when a required variable is
// missing, then validating ranges.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		RedisURL:             getEnvOrDefault("REDIS_URL", "redis://localhost:6379"),
		DatabaseURL:          getEnvOrThrow("DATABASE_URL"),
		QdrantURL:            getEnvOrDefault("QDRANT_URL", "localhost:6334"),
		QdrantCandidates:     getEnvOrDefault("QDRANT_CANDIDATES_COLLECTION", "candidate_embeddings"),
		QdrantJobs:           getEnvOrDefault("QDRANT_JOBS_COLLECTION", "job_embeddings"),
		EmbeddingAPIKey:      getEnvOrDefault("EMBEDDING_API_KEY", ""),
		EmbeddingAPIURL:      getEnvOrDefault("EMBEDDING_API_URL", "https://api.voyageai.com/v1/embeddings"),
		EmbeddingModel:       getEnvOrDefault("EMBEDDING_MODEL", "voyage-3"),
		EmbeddingDimension:   getEnvAsIntOrDefault("EMBEDDING_DIMENSION", 384),
		EmbeddingCacheSize:   getEnvAsIntOrDefault("EMBEDDING_CACHE_SIZE", 1000),
		CandidateDataBaseURL: getEnvOrDefault("CANDIDATE_DATA_URL", "http://candidate-data.internal"),
		SSOTokenURL:          getEnvOrDefault("SSO_TOKEN_URL", "http://sso.internal/oauth/token"),
		SSOClientID:          getEnvOrDefault("SSO_CLIENT_ID", ""),
		SSOClientSecret:      getEnvOrDefault("SSO_CLIENT_SECRET", ""),
		WorkerConcurrency:    getEnvAsIntOrDefault("WORKER_CONCURRENCY", 10),
		MaxFileSize:          getEnvAsInt64OrDefault("MAX_FILE_SIZE", 5368709120), // 5GB
		ChunkSize:            getEnvAsInt64OrDefault("CHUNK_SIZE", 65536),         // 64KB
		ProcessingTimeout:    getEnvAsIntOrDefault("PROCESSING_TIMEOUT", 120000),  // 120s, per §5
		TesseractPath:        getEnvOrDefault("TESSERACT_PATH", "/usr/bin/tesseract"),
		OCRPrimaryEngine:     getEnvOrDefault("OCR_PRIMARY_ENGINE", ""),
		PDFRasterizerPath:    getEnvOrDefault("PDF_RASTERIZER_PATH", "/usr/bin/pdftoppm"),
		PDFDPILadder:         []int{200, 150, 100},
		ColumnSplitX:         getEnvAsIntOrDefault("COLUMN_SPLIT_X", 500),
		TableBucketPx:        getEnvAsIntOrDefault("TABLE_BUCKET_PX", 25),
		SemanticWeight:       getEnvAsFloatOrDefault("SEMANTIC_WEIGHT", 0.4),
		CriteriaWeight:       getEnvAsFloatOrDefault("CRITERIA_WEIGHT", 0.6),
		EmbeddingMaxChars:    getEnvAsIntOrDefault("EMBEDDING_MAX_CHARS", 8000),
		TempDir:              getEnvOrDefault("TEMP_DIR", "/tmp/resume-match"),
		NodeEnv:              getEnvOrDefault("ENVIRONMENT", "development"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.WorkerConcurrency < 1 || c.WorkerConcurrency > 100 {
		return fmt.Errorf("WORKER_CONCURRENCY must be between 1 and 100, got %d", c.WorkerConcurrency)
	}
	if c.MaxFileSize < 1024 || c.MaxFileSize > 10737418240 {
		return fmt.Errorf("MAX_FILE_SIZE must be between 1KB and 10GB, got %d", c.MaxFileSize)
	}
	if c.ChunkSize < 1024 || c.ChunkSize > 1048576 {
		return fmt.Errorf("CHUNK_SIZE must be between 1KB and 1MB, got %d", c.ChunkSize)
	}
	if c.EmbeddingDimension < 1 {
		return fmt.Errorf("EMBEDDING_DIMENSION must be positive, got %d", c.EmbeddingDimension)
	}
	if c.SemanticWeight+c.CriteriaWeight <= 0 {
		return fmt.Errorf("SEMANTIC_WEIGHT + CRITERIA_WEIGHT must be positive")
	}
	if c.TableBucketPx < 1 {
		return fmt.Errorf("TABLE_BUCKET_PX must be positive, got %d", c.TableBucketPx)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvOrThrow(key string) string {
	value := os.Getenv(key)
	if value == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return value
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsInt64OrDefault(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}
