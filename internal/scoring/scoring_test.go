package scoring

import (
	"testing"

	"github.com/nexus-talent/resume-match/internal/model"
)

func candidate() model.CandidateScoringData {
	return model.CandidateScoringData{
		Skills:          map[string]struct{}{"go": {}, "javascript": {}},
		Languages:       map[string]string{"english": "fluent"},
		Certifications:  map[string]struct{}{"aws certified developer": {}},
		YearsExperience: 4,
		EducationLevel:  "bachelor",
	}
}

func TestScoreSkillMatch(t *testing.T) {
	result := Score(candidate(), []model.ScoringCriterion{
		{Type: model.CriterionSkill, Value: "go", Points: 10, Weight: 1, Required: true},
	})
	if len(result.Matched) != 1 {
		t.Fatalf("expected skill match, got %+v", result)
	}
	if result.Disqualified {
		t.Fatalf("expected no disqualification")
	}
}

func TestScoreSkillSynonymGroupMatch(t *testing.T) {
	result := Score(candidate(), []model.ScoringCriterion{
		{Type: model.CriterionSkill, Value: "js", Points: 10, Weight: 1, Required: false},
	})
	if len(result.Matched) != 1 {
		t.Fatalf("expected synonym-group skill match, got %+v", result)
	}
}

func TestScoreRequiredMissingDisqualifies(t *testing.T) {
	result := Score(candidate(), []model.ScoringCriterion{
		{Type: model.CriterionSkill, Value: "rust", Points: 10, Weight: 1, Required: true},
	})
	if !result.Disqualified {
		t.Fatalf("expected disqualification when required criterion missing")
	}
	if result.Reason == "" {
		t.Fatalf("expected a disqualification reason")
	}
}

func TestScoreLanguageProficiencyMultiplier(t *testing.T) {
	result := Score(candidate(), []model.ScoringCriterion{
		{Type: model.CriterionLanguage, Value: "english", Points: 10, Weight: 1},
	})
	if len(result.Matched) != 1 || result.Matched[0].PointsEarned != 9 {
		t.Fatalf("expected fluent multiplier 0.9 * 10 = 9, got %+v", result.Matched)
	}
}

func TestScoreExperienceBelowMinimumNotRequiredPartialCredit(t *testing.T) {
	minVal := uint32(10)
	result := Score(candidate(), []model.ScoringCriterion{
		{Type: model.CriterionExperience, Value: "10", Points: 10, Weight: 1, MinValue: &minVal, Required: false},
	})
	if len(result.Missing) != 1 {
		t.Fatalf("expected unmatched-but-scored experience criterion, got %+v", result)
	}
	if result.Missing[0].PointsEarned <= 0 {
		t.Fatalf("expected partial credit for below-minimum experience, got %+v", result.Missing[0])
	}
}

func TestScoreEducationMeetsRequirement(t *testing.T) {
	result := Score(candidate(), []model.ScoringCriterion{
		{Type: model.CriterionEducation, Value: "bachelor", Points: 10, Weight: 1},
	})
	if len(result.Matched) != 1 {
		t.Fatalf("expected education match, got %+v", result)
	}
}

func TestScorePercentageBoundsAndZeroMax(t *testing.T) {
	result := Score(candidate(), nil)
	if result.Percentage != 100 {
		t.Fatalf("expected 100%% when max points is 0, got %v", result.Percentage)
	}
}
