// storage_manager.go coordinates PostgreSQL (metadata) and Qdrant (vectors)
// the way the teacher's StorageManager does, generalized from document-DNA
// storage to upserting candidate/job EmbeddingRecords: the vector goes to
// Qdrant first (fails fast on a dimension mismatch) and its metadata row
// goes to Postgres second, so a failed second step leaves an orphaned
// vector rather than a dangling metadata row with nothing to search.
package storage

import (
	"context"
	"time"

	"github.com/nexus-talent/resume-match/internal/apperr"
	"github.com/nexus-talent/resume-match/internal/model"
)

// Manager coordinates PostgreSQL and Qdrant operations.
type Manager struct {
	Postgres *PostgresClient
	Qdrant   *QdrantClient
}

// NewManager wires an already-constructed pair of clients.
func NewManager(postgres *PostgresClient, qdrant *QdrantClient) *Manager {
	return &Manager{Postgres: postgres, Qdrant: qdrant}
}

// UpsertEmbedding stores an EmbeddingRecord's vector in Qdrant, then its
// metadata in Postgres. The two writes are not atomic: if the Postgres step
// fails, the Qdrant vector is not rolled back.
func (m *Manager) UpsertEmbedding(ctx context.Context, rec model.EmbeddingRecord) error {
	collection := CandidateCollection
	if rec.EntityType == "job" {
		collection = JobCollection
	}

	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = rec.UpdatedAt
	}

	err := m.Qdrant.Upsert(ctx, collection, VectorPoint{
		ID:     rec.EntityID,
		Vector: rec.Combined,
		Metadata: map[string]interface{}{
			"entity_type": rec.EntityType,
			"model_name":  rec.ModelName,
		},
	})
	if err != nil {
		return err
	}

	if err := m.Postgres.UpsertEmbeddingRecord(ctx, rec); err != nil {
		return apperr.Internal("vector stored but metadata upsert failed; record is inconsistent until retried", err)
	}
	return nil
}

// DeleteEmbedding removes both the vector and metadata row for an entity.
// Qdrant delete is treated as idempotent (see qdrant.go); the metadata
// RowsAffected count is what the caller should report as "deleted" vs.
// "not found".
func (m *Manager) DeleteEmbedding(ctx context.Context, entityType, entityID string) (bool, error) {
	collection := CandidateCollection
	if entityType == "job" {
		collection = JobCollection
	}
	if err := m.Qdrant.Delete(ctx, collection, entityID); err != nil {
		return false, err
	}
	return m.Postgres.DeleteEmbeddingRecord(ctx, entityType, entityID)
}

// SearchCandidates queries the candidate collection by cosine distance on
// the combined embedding, per spec.md §4.11 step 3.
func (m *Manager) SearchCandidates(ctx context.Context, queryVector model.EmbeddingVector, limit int) ([]VectorPoint, error) {
	return m.Qdrant.Search(ctx, CandidateCollection, queryVector, limit)
}

// GetCandidateVector fetches a single candidate's stored combined vector.
func (m *Manager) GetCandidateVector(ctx context.Context, candidateID string) (*VectorPoint, error) {
	return m.Qdrant.Get(ctx, CandidateCollection, candidateID)
}

// GetJobVector fetches a single job's stored combined vector.
func (m *Manager) GetJobVector(ctx context.Context, jobID string) (*VectorPoint, error) {
	return m.Qdrant.Get(ctx, JobCollection, jobID)
}

func (m *Manager) Close() error {
	var err error
	if m.Qdrant != nil {
		if e := m.Qdrant.Close(); e != nil {
			err = e
		}
	}
	if m.Postgres != nil {
		if e := m.Postgres.Close(); e != nil {
			err = e
		}
	}
	return err
}
