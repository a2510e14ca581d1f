package matching

import (
	"testing"

	"github.com/nexus-talent/resume-match/internal/model"
)

func TestBuildMatchResultBlendsSemanticAndCriteriaWeights(t *testing.T) {
	scored := model.ScoringResult{
		TotalPoints: 80,
		MaxPoints:   100,
		Percentage:  80,
		Matched:     []model.CriterionResult{{Value: "go"}},
		Missing:     []model.CriterionResult{{Value: "rust"}},
	}

	result := buildMatchResult("cand-1", "job-1", 0.5, scored, DefaultSemanticWeight, DefaultCriteriaWeight, false)

	want := DefaultSemanticWeight*50 + DefaultCriteriaWeight*80
	if result.CombinedScore != want {
		t.Fatalf("expected combined score %.4f, got %.4f", want, result.CombinedScore)
	}
	if result.CandidateID != "cand-1" || result.JobID != "job-1" {
		t.Fatalf("unexpected ids: %+v", result)
	}
	if len(result.Matched) != 1 || result.Matched[0] != "go" {
		t.Fatalf("expected matched=[go], got %v", result.Matched)
	}
	if len(result.Missing) != 1 || result.Missing[0] != "rust" {
		t.Fatalf("expected missing=[rust], got %v", result.Missing)
	}
	if result.Breakdown != nil {
		t.Fatalf("expected no breakdown when includeBreakdown=false, got %v", result.Breakdown)
	}
}

func TestBuildMatchResultIncludesBreakdownWhenRequested(t *testing.T) {
	scored := model.ScoringResult{
		Percentage:   60,
		Disqualified: true,
		Reason:       "missing required: skill:kubernetes",
	}

	result := buildMatchResult("cand-2", "job-2", 0.25, scored, DefaultSemanticWeight, DefaultCriteriaWeight, true)

	if result.Breakdown == nil {
		t.Fatalf("expected breakdown to be populated")
	}
	if result.Breakdown["semantic_score"] != 25.0 {
		t.Fatalf("expected semantic_score 25.0, got %v", result.Breakdown["semantic_score"])
	}
	if result.Breakdown["criteria_percentage"] != 60.0 {
		t.Fatalf("expected criteria_percentage 60.0, got %v", result.Breakdown["criteria_percentage"])
	}
	if !result.Disqualified {
		t.Fatalf("expected disqualified=true to carry through")
	}
}

func TestDefaultWeightsSumToOne(t *testing.T) {
	if DefaultSemanticWeight+DefaultCriteriaWeight != 1.0 {
		t.Fatalf("expected default weights to sum to 1.0, got %.4f", DefaultSemanticWeight+DefaultCriteriaWeight)
	}
}
