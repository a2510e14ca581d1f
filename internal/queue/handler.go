// handler.go is the queue-agnostic job handler both consumer.go (asynq) and
// redis_consumer.go (direct Redis BRPop) call into, generalized from the
// teacher's DocumentProcessorInterface boundary so the two transport
// mechanisms share one pipeline wiring instead of duplicating it.
package queue

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/nexus-talent/resume-match/internal/embedding"
	"github.com/nexus-talent/resume-match/internal/logging"
	"github.com/nexus-talent/resume-match/internal/model"
	"github.com/nexus-talent/resume-match/internal/pipeline"
	"github.com/nexus-talent/resume-match/internal/storage"
)

// JobRequest is the transport-agnostic shape both queue implementations
// decode their wire format into before calling Handler.
type JobRequest struct {
	JobID      string
	EntityID   string
	EntityType string // "candidate" | "job"
	Filename   string
	MimeType   string
	FileBuffer []byte
	Metadata   map[string]interface{}
}

// JobResult mirrors the teacher's ProcessResult shape, generalized to this
// domain's outputs.
type JobResult struct {
	EntityID           string
	Confidence         float64
	TablesExtracted    int
	EmbeddingGenerated bool
	ContentHash        string
	ProcessingTimeMs   int64
}

// Handler runs one document-ingestion job end to end: C1/C2 decode+OCR,
// C3-C8 structured extraction, C9 embedding composition, and storage.
type Handler struct {
	extractor *pipeline.Extractor
	embedder  embedding.Embedder
	store     *storage.Manager
	log       *logging.Logger
}

// NewHandler wires the already-constructed collaborators.
func NewHandler(extractor *pipeline.Extractor, embedder embedding.Embedder, store *storage.Manager, log *logging.Logger) *Handler {
	return &Handler{extractor: extractor, embedder: embedder, store: store, log: log}
}

// ProcessDocument runs the full ingestion pipeline for one job, storing the
// resulting embedding record when store is non-nil.
func (h *Handler) ProcessDocument(ctx context.Context, req JobRequest) (JobResult, error) {
	start := time.Now()

	if req.EntityID == "" {
		req.EntityID = fallbackEntityID(req.Filename)
	}

	candidate, tables, err := h.extractor.ExtractFromDocument(ctx, req.FileBuffer, req.MimeType)
	if err != nil {
		return JobResult{}, err
	}

	var vector model.EmbeddingVector
	var hash string
	if req.EntityType == "job" {
		vector, hash, err = pipeline.GenerateJobEmbedding(ctx, h.embedder, "", "")
	} else {
		vector, hash, err = pipeline.GenerateCandidateEmbedding(ctx, h.embedder, candidate)
	}
	if err != nil {
		return JobResult{}, err
	}

	if h.store != nil {
		rec := model.EmbeddingRecord{
			EntityID:    req.EntityID,
			EntityType:  req.EntityType,
			Combined:    vector,
			ModelName:   "voyage-3",
			ContentHash: hash,
			UpdatedAt:   time.Now(),
		}
		if err := h.store.UpsertEmbedding(ctx, rec); err != nil {
			return JobResult{}, err
		}
	}

	h.log.Info("document ingested", "job_id", req.JobID, "entity_id", req.EntityID, "tables", len(tables))

	return JobResult{
		EntityID:           req.EntityID,
		Confidence:         candidate.OverallConfidence,
		TablesExtracted:    len(tables),
		EmbeddingGenerated: true,
		ContentHash:        hash,
		ProcessingTimeMs:   time.Since(start).Milliseconds(),
	}, nil
}

func fallbackEntityID(filename string) string {
	sum := sha256.Sum256([]byte(filename))
	return hex.EncodeToString(sum[:8])
}
