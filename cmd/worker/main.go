// Command worker is the resume-match pipeline's entry point: a Redis-backed
// job consumer that decodes resumes, extracts structured candidate data,
// composes embeddings, and persists them, the way the teacher's
// FileProcessAgent worker wires document processing end to end.
//
// Architecture:
//   - asynq primary consumer + a secondary BullMQ-compatible Redis consumer
//   - C1-C8 structured extraction pipeline
//   - C9 VoyageAI embedding composition
//   - PostgreSQL + Qdrant persistence via the storage Manager
//   - C10 scoring and C11 match orchestration, run from the asynq
//     consumer's "find-matches" task against the same storage/clients wiring
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nexus-talent/resume-match/internal/clients"
	"github.com/nexus-talent/resume-match/internal/config"
	"github.com/nexus-talent/resume-match/internal/embedding"
	"github.com/nexus-talent/resume-match/internal/imageprep"
	"github.com/nexus-talent/resume-match/internal/logging"
	"github.com/nexus-talent/resume-match/internal/matching"
	"github.com/nexus-talent/resume-match/internal/ocr"
	"github.com/nexus-talent/resume-match/internal/pipeline"
	"github.com/nexus-talent/resume-match/internal/queue"
	"github.com/nexus-talent/resume-match/internal/storage"
)

func main() {
	log := logging.NewLogger("worker")
	defer log.Sync()

	if err := godotenv.Load(".env"); err != nil {
		log.Warn("no .env file found, using system environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log.Info("resume-match worker starting",
		"redis", cfg.RedisURL, "qdrant", cfg.QdrantURL, "workers", cfg.WorkerConcurrency)

	ctx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelInit()

	postgres, err := storage.NewPostgresClient(ctx, cfg.DatabaseURL, 25, 5)
	if err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer postgres.Close()

	qdrant, err := storage.NewQdrantClient(ctx, cfg.QdrantURL, cfg.EmbeddingDimension)
	if err != nil {
		log.Error("failed to connect to qdrant", "error", err)
		os.Exit(1)
	}
	defer qdrant.Close()

	store := storage.NewManager(postgres, qdrant)
	log.Info("storage manager initialized")

	embedder, err := embedding.NewVoyageEmbedder(cfg.EmbeddingAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDimension, cfg.EmbeddingCacheSize, logging.NewLogger("embedding"))
	if err != nil {
		log.Error("failed to initialize embedding model client", "error", err)
		os.Exit(1)
	}

	sso := clients.NewSSOClient(cfg.SSOTokenURL, cfg.SSOClientID, cfg.SSOClientSecret)
	candidateData := clients.NewCandidateDataClient(cfg.CandidateDataBaseURL, sso, logging.NewLogger("candidatedata"))

	rasterizer := imageprep.NewExternalRasterizer(cfg.PDFRasterizerPath, cfg.TempDir, cfg.PDFDPILadder)

	var primaryEngine ocr.Ocr
	if cfg.OCRPrimaryEngine == "tesseract" {
		if p := ocr.NewPrimaryEngine(cfg.TesseractPath, ocr.DefaultTuning()); p != nil {
			primaryEngine = p
		}
	}
	fallbackEngine := ocr.NewTesseractEngine(cfg.TesseractPath)
	ocrEngine, err := ocr.NewEngine(primaryEngine, fallbackEngine)
	if err != nil {
		log.Error("failed to initialize ocr engine", "error", err)
		os.Exit(1)
	}

	extractor := pipeline.NewExtractor(rasterizer, ocrEngine, cfg.ColumnSplitX, logging.NewLogger("pipeline"))

	handler := queue.NewHandler(extractor, embedder, store, logging.NewLogger("handler"))

	// The Match Orchestrator shares the same storage, candidate-data, and
	// embedding collaborators as ingestion; the asynq consumer routes its
	// own "find-matches" task type into it alongside "process-document".
	matcher := matching.NewOrchestrator(store, candidateData, embedder)

	asynqConsumer, err := queue.NewConsumer(&queue.ConsumerConfig{
		RedisURL:          cfg.RedisURL,
		QueueName:         "resume-match:jobs",
		Concurrency:       cfg.WorkerConcurrency,
		Handler:           handler,
		Matcher:           matcher,
		ProcessingTimeout: int64(cfg.ProcessingTimeout),
	}, logging.NewLogger("consumer"))
	if err != nil {
		log.Error("failed to initialize asynq consumer", "error", err)
		os.Exit(1)
	}

	redisConsumer, err := queue.NewRedisConsumer(&queue.RedisConsumerConfig{
		RedisURL:          cfg.RedisURL,
		QueueName:         "resume-match:legacy-jobs",
		Concurrency:       cfg.WorkerConcurrency,
		Handler:           handler,
		ProcessingTimeout: int64(cfg.ProcessingTimeout),
	}, logging.NewLogger("redis-consumer"))
	if err != nil {
		log.Error("failed to initialize redis consumer", "error", err)
		os.Exit(1)
	}

	if err := asynqConsumer.Start(context.Background()); err != nil {
		log.Error("failed to start asynq consumer", "error", err)
		os.Exit(1)
	}
	if err := redisConsumer.Start(); err != nil {
		log.Error("failed to start redis consumer", "error", err)
		os.Exit(1)
	}

	log.Info("resume-match worker ready", "concurrency", cfg.WorkerConcurrency)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-sigChan
	log.Info("received shutdown signal, stopping gracefully", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := asynqConsumer.Stop(shutdownCtx); err != nil {
		log.Error("error stopping asynq consumer", "error", err)
	}
	if err := redisConsumer.Stop(); err != nil {
		log.Error("error stopping redis consumer", "error", err)
	}
	if err := store.Close(); err != nil {
		log.Error("error closing storage manager", "error", err)
	}

	log.Info("shutdown complete")
}
