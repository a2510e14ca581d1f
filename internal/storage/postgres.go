// Package storage implements the Postgres and Qdrant adapters named as
// external collaborators in spec.md §1/§6.2, generalized from the
// teacher's internal/storage/postgres.go single fileprocess.processing_jobs
// table into the six-table schema of spec.md §6.2: candidate_embeddings,
// job_embeddings, scoring_criteria, semantic_match_results,
// notification_thresholds, plus the vector-index columns Qdrant serves.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/nexus-talent/resume-match/internal/apperr"
	"github.com/nexus-talent/resume-match/internal/model"
)

// PostgresClient handles relational persistence for embeddings, scoring
// criteria, and match results.
type PostgresClient struct {
	db *sql.DB
}

// NewPostgresClient opens and pings a connection pool sized per spec.md §5's
// "standard pool discipline, pool-size [min,max] configurable" note.
func NewPostgresClient(ctx context.Context, databaseURL string, maxOpen, maxIdle int) (*PostgresClient, error) {
	if databaseURL == "" {
		return nil, apperr.Unavailable("database URL is required", nil)
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, apperr.Unavailable("failed to open database", err)
	}

	if maxOpen <= 0 {
		maxOpen = 25
	}
	if maxIdle <= 0 {
		maxIdle = 5
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, apperr.Unavailable("failed to ping database", err)
	}

	return &PostgresClient{db: db}, nil
}

func (p *PostgresClient) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

func (p *PostgresClient) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// UpsertEmbeddingRecord persists an EmbeddingRecord's metadata row
// (candidate_embeddings or job_embeddings per EntityType) — the combined
// vector itself lives in Qdrant; Postgres keeps the content hash and part
// presence for idempotence checks (spec.md §8's "second call is an upsert"
// invariant).
func (p *PostgresClient) UpsertEmbeddingRecord(ctx context.Context, rec model.EmbeddingRecord) error {
	table := embeddingTable(rec.EntityType)
	if table == "" {
		return apperr.BadInput(fmt.Sprintf("unknown entity type %q", rec.EntityType), nil)
	}

	partsJSON, err := json.Marshal(rec.Parts)
	if err != nil {
		return apperr.Internal("failed to marshal embedding parts", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (entity_id, content_hash, model_name, parts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (entity_id) DO UPDATE SET
			content_hash = EXCLUDED.content_hash,
			model_name   = EXCLUDED.model_name,
			parts        = EXCLUDED.parts,
			updated_at   = EXCLUDED.updated_at
	`, table)

	now := rec.UpdatedAt
	if now.IsZero() {
		now = time.Now()
	}
	_, err = p.db.ExecContext(ctx, query, rec.EntityID, rec.ContentHash, rec.ModelName, partsJSON, now)
	if err != nil {
		return apperr.Internal("failed to upsert embedding record", err)
	}
	return nil
}

// ContentHash fetches the stored content hash for an entity, so callers can
// short-circuit regeneration when unchanged, per spec.md §4.9.
func (p *PostgresClient) ContentHash(ctx context.Context, entityType, entityID string) (string, bool, error) {
	table := embeddingTable(entityType)
	if table == "" {
		return "", false, apperr.BadInput(fmt.Sprintf("unknown entity type %q", entityType), nil)
	}
	var hash string
	err := p.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT content_hash FROM %s WHERE entity_id = $1`, table), entityID).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, apperr.Internal("failed to fetch content hash", err)
	}
	return hash, true, nil
}

// DeleteEmbeddingRecord removes a metadata row and reports whether a row
// was actually deleted via the driver's affected-rows count — replacing
// the "DELETE 0" string-sentinel anti-pattern (SPEC_FULL.md §4.11/§9).
func (p *PostgresClient) DeleteEmbeddingRecord(ctx context.Context, entityType, entityID string) (bool, error) {
	table := embeddingTable(entityType)
	if table == "" {
		return false, apperr.BadInput(fmt.Sprintf("unknown entity type %q", entityType), nil)
	}
	res, err := p.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE entity_id = $1`, table), entityID)
	if err != nil {
		return false, apperr.Internal("failed to delete embedding record", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperr.Internal("failed to read affected row count", err)
	}
	return n > 0, nil
}

func embeddingTable(entityType string) string {
	switch entityType {
	case "candidate":
		return "candidate_embeddings"
	case "job":
		return "job_embeddings"
	default:
		return ""
	}
}

// UpsertScoringCriterion enforces the unique (job_id, type, value) key of
// spec.md §6.2.
func (p *PostgresClient) UpsertScoringCriterion(ctx context.Context, c model.ScoringCriterion) error {
	query := `
		INSERT INTO scoring_criteria (job_id, type, value, points, required, weight, min_value, per_unit_points, max_points, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (job_id, type, value) DO UPDATE SET
			points          = EXCLUDED.points,
			required        = EXCLUDED.required,
			weight          = EXCLUDED.weight,
			min_value       = EXCLUDED.min_value,
			per_unit_points = EXCLUDED.per_unit_points,
			max_points      = EXCLUDED.max_points,
			sort_order      = EXCLUDED.sort_order
	`
	_, err := p.db.ExecContext(ctx, query, c.JobID, string(c.Type), c.Value, c.Points, c.Required, c.Weight, c.MinValue, c.PerUnitPoints, c.MaxPoints, c.SortOrder)
	if err != nil {
		return apperr.Internal("failed to upsert scoring criterion", err)
	}
	return nil
}

// DeleteScoringCriterion reports whether a row was removed, via RowsAffected.
func (p *PostgresClient) DeleteScoringCriterion(ctx context.Context, jobID string, critType model.CriterionType, value string) (bool, error) {
	res, err := p.db.ExecContext(ctx, `DELETE FROM scoring_criteria WHERE job_id = $1 AND type = $2 AND value = $3`, jobID, string(critType), value)
	if err != nil {
		return false, apperr.Internal("failed to delete scoring criterion", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperr.Internal("failed to read affected row count", err)
	}
	return n > 0, nil
}

// ListScoringCriteria fetches every criterion for a job, ordered per
// sort_order.
func (p *PostgresClient) ListScoringCriteria(ctx context.Context, jobID string) ([]model.ScoringCriterion, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT job_id, type, value, points, required, weight, min_value, per_unit_points, max_points, sort_order
		FROM scoring_criteria WHERE job_id = $1 ORDER BY sort_order ASC
	`, jobID)
	if err != nil {
		return nil, apperr.Internal("failed to list scoring criteria", err)
	}
	defer rows.Close()

	var out []model.ScoringCriterion
	for rows.Next() {
		var c model.ScoringCriterion
		var critType string
		var minValue sql.NullInt64
		var perUnitPoints sql.NullFloat64
		var maxPoints sql.NullInt64
		if err := rows.Scan(&c.JobID, &critType, &c.Value, &c.Points, &c.Required, &c.Weight, &minValue, &perUnitPoints, &maxPoints, &c.SortOrder); err != nil {
			return nil, apperr.Internal("failed to scan scoring criterion", err)
		}
		c.Type = model.CriterionType(critType)
		if minValue.Valid {
			v := uint32(minValue.Int64)
			c.MinValue = &v
		}
		if perUnitPoints.Valid {
			c.PerUnitPoints = &perUnitPoints.Float64
		}
		if maxPoints.Valid {
			v := uint32(maxPoints.Int64)
			c.MaxPoints = &v
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpsertMatchResult upserts by (candidate_id, job_id), recomputing
// criteria_percentage per spec.md §4.11.
func (p *PostgresClient) UpsertMatchResult(ctx context.Context, m model.MatchResult) error {
	percentage := 0.0
	if m.CriteriaMax > 0 {
		percentage = 100 * m.CriteriaPoints / float64(m.CriteriaMax)
	}
	breakdownJSON, err := json.Marshal(m.Breakdown)
	if err != nil {
		return apperr.Internal("failed to marshal match breakdown", err)
	}

	query := `
		INSERT INTO semantic_match_results (candidate_id, job_id, cosine, criteria_points, criteria_max, criteria_percentage, combined_score, rank, breakdown, disqualified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		ON CONFLICT (candidate_id, job_id) DO UPDATE SET
			cosine               = EXCLUDED.cosine,
			criteria_points       = EXCLUDED.criteria_points,
			criteria_max          = EXCLUDED.criteria_max,
			criteria_percentage   = EXCLUDED.criteria_percentage,
			combined_score        = EXCLUDED.combined_score,
			rank                  = EXCLUDED.rank,
			breakdown             = EXCLUDED.breakdown,
			disqualified          = EXCLUDED.disqualified,
			updated_at            = EXCLUDED.updated_at
	`
	_, err = p.db.ExecContext(ctx, query, m.CandidateID, m.JobID, m.Cosine, m.CriteriaPoints, m.CriteriaMax, percentage, m.CombinedScore, m.Rank, breakdownJSON, m.Disqualified, time.Now())
	if err != nil {
		return apperr.Internal("failed to upsert match result", err)
	}
	return nil
}

// ListMatchResults fetches persisted matches for a job, ordered by rank
// ascending (rank 1 first).
func (p *PostgresClient) ListMatchResults(ctx context.Context, jobID string) ([]model.MatchResult, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT candidate_id, job_id, cosine, criteria_points, criteria_max, combined_score, rank, disqualified
		FROM semantic_match_results WHERE job_id = $1 ORDER BY rank ASC
	`, jobID)
	if err != nil {
		return nil, apperr.Internal("failed to list match results", err)
	}
	defer rows.Close()

	var out []model.MatchResult
	for rows.Next() {
		var m model.MatchResult
		if err := rows.Scan(&m.CandidateID, &m.JobID, &m.Cosine, &m.CriteriaPoints, &m.CriteriaMax, &m.CombinedScore, &m.Rank, &m.Disqualified); err != nil {
			return nil, apperr.Internal("failed to scan match result", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
