// Package matching implements the Match Orchestrator (C11): ranking
// candidates against a job posting by a weighted blend of semantic
// (combined-embedding cosine) and criteria (C10 scoring) similarity. It is
// grounded on the teacher's StorageManager.StoreDocumentDNA/
// SearchSimilarDocuments atomic dual-store pattern (Qdrant-first,
// Postgres-second), generalized from one "document DNA" vector to the
// candidate_embeddings/job_embeddings/scoring_criteria/semantic_match_results
// schema.
package matching

import (
	"context"
	"sort"

	"github.com/nexus-talent/resume-match/internal/apperr"
	"github.com/nexus-talent/resume-match/internal/clients"
	"github.com/nexus-talent/resume-match/internal/embedding"
	"github.com/nexus-talent/resume-match/internal/model"
	"github.com/nexus-talent/resume-match/internal/scoring"
	"github.com/nexus-talent/resume-match/internal/storage"
)

// Weights are the default semantic/criteria blend for combined_score.
const (
	DefaultSemanticWeight = 0.4
	DefaultCriteriaWeight = 0.6
)

// FindMatchesOptions parametrizes find_matches per spec.md §4.11.
type FindMatchesOptions struct {
	MinScore           float64
	Limit              int
	IncludeBreakdown   bool
	ExcludeDisqualified bool
}

// Orchestrator runs the C11 algorithms against a storage Manager, the
// candidate-data OData client, and an Embedder for query embedding.
type Orchestrator struct {
	store    *storage.Manager
	data     *clients.CandidateDataClient
	embedder embedding.Embedder
}

// NewOrchestrator wires the already-constructed collaborators.
func NewOrchestrator(store *storage.Manager, data *clients.CandidateDataClient, embedder embedding.Embedder) *Orchestrator {
	return &Orchestrator{store: store, data: data, embedder: embedder}
}

// FindMatches ranks candidates for a job posting per spec.md §4.11 steps 1-5.
func (o *Orchestrator) FindMatches(ctx context.Context, jobID string, opts FindMatchesOptions) ([]model.MatchResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	jobVector, err := o.store.GetJobVector(ctx, jobID)
	if err != nil {
		if apperr.As(err, apperr.KindNotFound) {
			return nil, nil
		}
		return nil, err
	}

	criteria, err := o.data.GetJobScoringCriteria(ctx, jobID)
	if err != nil {
		return nil, err
	}

	candidates, err := o.store.SearchCandidates(ctx, jobVector.Vector, 2*limit)
	if err != nil {
		return nil, err
	}

	results := make([]model.MatchResult, 0, len(candidates))
	for _, point := range candidates {
		cosine, _ := point.Metadata["score"].(float64)

		candidateData, err := o.data.GetCandidateScoringData(ctx, point.ID)
		if err != nil {
			return nil, err
		}

		scored := scoring.Score(candidateData, criteria)
		result := buildMatchResult(point.ID, jobID, cosine, scored, DefaultSemanticWeight, DefaultCriteriaWeight, opts.IncludeBreakdown)

		if opts.ExcludeDisqualified && result.Disqualified {
			continue
		}
		if result.CombinedScore < opts.MinScore {
			continue
		}
		results = append(results, result)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].CombinedScore > results[j].CombinedScore })
	for i := range results {
		results[i].Rank = i + 1
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// CalculateSingleMatch scores one candidate/job pair directly, without a
// nearest-neighbor search. Rank is left 0, per spec.md §4.11.
func (o *Orchestrator) CalculateSingleMatch(ctx context.Context, candidateID, jobID string) (model.MatchResult, error) {
	candidateVector, err := o.store.GetCandidateVector(ctx, candidateID)
	if err != nil {
		return model.MatchResult{}, err
	}
	jobVector, err := o.store.GetJobVector(ctx, jobID)
	if err != nil {
		return model.MatchResult{}, err
	}

	cosine := embedding.Cosine(candidateVector.Vector, jobVector.Vector)

	criteria, err := o.data.GetJobScoringCriteria(ctx, jobID)
	if err != nil {
		return model.MatchResult{}, err
	}
	candidateData, err := o.data.GetCandidateScoringData(ctx, candidateID)
	if err != nil {
		return model.MatchResult{}, err
	}

	scored := scoring.Score(candidateData, criteria)
	result := buildMatchResult(candidateID, jobID, cosine, scored, DefaultSemanticWeight, DefaultCriteriaWeight, true)
	result.Rank = 0
	return result, nil
}

// SemanticSearchQuery embeds free text with the query prefix and returns
// candidates whose combined-vector cosine meets minSimilarity.
func (o *Orchestrator) SemanticSearchQuery(ctx context.Context, text string, limit int, minSimilarity float64) ([]model.MatchResult, error) {
	if limit <= 0 {
		limit = 10
	}

	queryVector, err := embedding.EncodeQuery(ctx, o.embedder, text)
	if err != nil {
		return nil, err
	}

	candidates, err := o.store.SearchCandidates(ctx, queryVector, limit)
	if err != nil {
		return nil, err
	}

	out := make([]model.MatchResult, 0, len(candidates))
	for i, point := range candidates {
		cosine, _ := point.Metadata["score"].(float64)
		if cosine < minSimilarity {
			continue
		}
		out = append(out, model.MatchResult{
			CandidateID:   point.ID,
			Cosine:        cosine,
			CombinedScore: 100 * cosine,
			Rank:          i + 1,
		})
	}
	return out, nil
}

// PersistMatch upserts a MatchResult, recomputing criteria_percentage per
// spec.md §4.11's persistence rule.
func (o *Orchestrator) PersistMatch(ctx context.Context, result model.MatchResult) error {
	return o.store.Postgres.UpsertMatchResult(ctx, result)
}

func buildMatchResult(candidateID, jobID string, cosine float64, scored model.ScoringResult, semanticWeight, criteriaWeight float64, includeBreakdown bool) model.MatchResult {
	combined := semanticWeight*(100*cosine) + criteriaWeight*scored.Percentage

	matched := make([]string, 0, len(scored.Matched))
	for _, m := range scored.Matched {
		matched = append(matched, m.Value)
	}
	missing := make([]string, 0, len(scored.Missing))
	for _, m := range scored.Missing {
		missing = append(missing, m.Value)
	}

	result := model.MatchResult{
		CandidateID:    candidateID,
		JobID:          jobID,
		Cosine:         cosine,
		CriteriaPoints: scored.TotalPoints,
		CriteriaMax:    scored.MaxPoints,
		CombinedScore:  combined,
		Matched:        matched,
		Missing:        missing,
		Disqualified:   scored.Disqualified,
	}
	if includeBreakdown {
		result.Breakdown = map[string]interface{}{
			"semantic_score":      100 * cosine,
			"criteria_percentage": scored.Percentage,
			"disqualification_reason": scored.Reason,
		}
	}
	return result
}
