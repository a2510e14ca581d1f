// Package scoring implements C10: the Scoring Engine, evaluating a job's
// criteria against normalised candidate data and deciding disqualification.
// Built fresh (no direct teacher subsystem covers rule-based scoring) in the
// table-dispatch idiom the rest of this module favors for enumerated kinds
// (see internal/section's canonical-pattern tables, internal/apperr's
// Kind->status table).
package scoring

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nexus-talent/resume-match/internal/model"
)

// synonymGroups maps a canonical term to every term that counts as a match
// for it, per spec.md §4.10, transcribed from the multilingual SKILL_SYNONYMS
// table in the ported scoring service (programming languages, frameworks,
// SAP technologies, German/Turkish skill names, cloud platforms, data/ML).
// Lookups are symmetric: matching checks both directions via groupMatch.
var synonymGroups = map[string][]string{
	"javascript": {"js", "ecmascript", "es6", "es2015"},
	"typescript": {"ts"},
	"python":     {"py", "python3"},
	"java":       {"j2ee", "jee"},
	"c++":        {"cpp", "cplusplus"},
	"c#":         {"csharp", "c sharp", "dotnet", ".net"},

	"react":   {"reactjs", "react.js"},
	"angular": {"angularjs", "angular.js"},
	"vue":     {"vuejs", "vue.js"},
	"nodejs":  {"node", "node.js"},
	"express": {"expressjs", "express.js"},

	"sap":   {"sap erp", "sap ag"},
	"abap":  {"abap/4"},
	"fiori": {"sap fiori", "sapui5", "ui5"},
	"hana":  {"sap hana", "s/4hana", "s4hana"},
	"btp":   {"sap btp", "business technology platform", "cloud foundry"},

	"softwareentwicklung": {"software development", "yazılım geliştirme"},
	"datenbanken":         {"databases", "veritabanı"},
	"programmierung":      {"programming", "programlama"},
	"projektmanagement":   {"project management", "proje yönetimi"},

	"yazılım":         {"software"},
	"veri analizi":    {"data analysis", "datenanalyse"},
	"web geliştirme":  {"web development", "webentwicklung"},

	"aws":   {"amazon web services", "amazon aws"},
	"azure": {"microsoft azure", "ms azure"},
	"gcp":   {"google cloud", "google cloud platform"},

	"machine learning":       {"ml", "makine öğrenimi", "maschinelles lernen"},
	"deep learning":          {"dl", "derin öğrenme"},
	"data science":           {"datenwissenschaft", "veri bilimi"},
	"artificial intelligence": {"ai", "ki", "künstliche intelligenz", "yapay zeka"},
}

// proficiencyMultipliers maps a lowercased proficiency label to its scoring
// multiplier, transcribed from the ported scoring service's
// LANGUAGE_PROFICIENCY_SCORES table (English, German, Turkish).
var proficiencyMultipliers = map[string]float64{
	"native": 1.0, "fluent": 0.9, "professional": 0.7, "intermediate": 0.5, "basic": 0.3, "beginner": 0.2,

	"muttersprachler":    1.0,
	"fließend":           0.9,
	"verhandlungssicher": 0.8,
	"fortgeschritten":    0.6,
	"grundkenntnisse":    0.3,

	"anadil":    1.0,
	"akıcı":     0.9,
	"ileri":     0.7,
	"orta":      0.5,
	"başlangıç": 0.2,
}

const unknownProficiencyMultiplier = 0.5

// educationRanks orders recognised education levels low to high; index+1 is
// the rank.
var educationRanks = []string{"high_school", "associate", "bachelor", "master", "doctorate", "phd"}

// Score evaluates every criterion against candidate data and aggregates a
// ScoringResult, per spec.md §4.10.
func Score(candidate model.CandidateScoringData, criteria []model.ScoringCriterion) model.ScoringResult {
	var result model.ScoringResult

	for _, c := range criteria {
		possible := uint32(math.Round(float64(c.Points) * c.Weight))
		result.MaxPoints += possible

		cr := evaluate(candidate, c, possible)
		result.TotalPoints += cr.PointsEarned

		if cr.Matched {
			result.Matched = append(result.Matched, cr)
		} else {
			result.Missing = append(result.Missing, cr)
			if c.Required {
				result.RequiredMissing = append(result.RequiredMissing, cr)
			}
		}
	}

	if result.MaxPoints == 0 {
		result.Percentage = 100
	} else {
		result.Percentage = 100 * result.TotalPoints / float64(result.MaxPoints)
	}

	result.Disqualified = len(result.RequiredMissing) > 0
	if result.Disqualified {
		result.Reason = disqualificationReason(result.RequiredMissing)
	}

	return result
}

func disqualificationReason(missing []model.CriterionResult) string {
	names := make([]string, 0, 3)
	for i, m := range missing {
		if i >= 3 {
			break
		}
		names = append(names, fmt.Sprintf("%s:%s", m.Type, m.Value))
	}
	return "missing required: " + strings.Join(names, ", ")
}

func evaluate(candidate model.CandidateScoringData, c model.ScoringCriterion, possible uint32) model.CriterionResult {
	switch c.Type {
	case model.CriterionSkill:
		return evaluateSkill(candidate, c, possible)
	case model.CriterionLanguage:
		return evaluateLanguage(candidate, c, possible)
	case model.CriterionCertification:
		return evaluateCertification(candidate, c, possible)
	case model.CriterionExperience:
		return evaluateExperience(candidate, c, possible)
	case model.CriterionEducation:
		return evaluateEducation(candidate, c, possible)
	default:
		return model.CriterionResult{Type: c.Type, Value: c.Value, PointsPossible: possible, Required: c.Required, Details: "unscored custom criterion"}
	}
}

func evaluateSkill(candidate model.CandidateScoringData, c model.ScoringCriterion, possible uint32) model.CriterionResult {
	value := strings.ToLower(c.Value)
	matched := false
	for skill := range candidate.Skills {
		if skill == value || strings.Contains(skill, value) || strings.Contains(value, skill) || groupMatch(value, skill) {
			matched = true
			break
		}
	}
	res := model.CriterionResult{Type: c.Type, Value: c.Value, PointsPossible: possible, Required: c.Required, Matched: matched}
	if matched {
		res.PointsEarned = float64(possible)
		res.Details = "skill matched"
	} else {
		res.Details = "skill not found in candidate profile"
	}
	return res
}

func groupMatch(a, b string) bool {
	for canonical, synonyms := range synonymGroups {
		inGroup := func(term string) bool {
			if term == canonical {
				return true
			}
			for _, s := range synonyms {
				if term == s {
					return true
				}
			}
			return false
		}
		if inGroup(a) && inGroup(b) {
			return true
		}
	}
	return false
}

func evaluateLanguage(candidate model.CandidateScoringData, c model.ScoringCriterion, possible uint32) model.CriterionResult {
	value := strings.ToLower(c.Value)
	res := model.CriterionResult{Type: c.Type, Value: c.Value, PointsPossible: possible, Required: c.Required}
	proficiency, ok := candidate.Languages[value]
	if !ok {
		res.Details = "language not in candidate profile"
		return res
	}
	multiplier, known := proficiencyMultipliers[proficiency]
	if !known {
		multiplier = unknownProficiencyMultiplier
	}
	res.Matched = true
	res.PointsEarned = float64(possible) * multiplier
	res.Details = fmt.Sprintf("proficiency %q, multiplier %.2f", proficiency, multiplier)
	return res
}

func evaluateCertification(candidate model.CandidateScoringData, c model.ScoringCriterion, possible uint32) model.CriterionResult {
	value := strings.ToLower(c.Value)
	matched := false
	for cert := range candidate.Certifications {
		if cert == value || strings.Contains(cert, value) {
			matched = true
			break
		}
	}
	res := model.CriterionResult{Type: c.Type, Value: c.Value, PointsPossible: possible, Required: c.Required, Matched: matched}
	if matched {
		res.PointsEarned = float64(possible)
		res.Details = "certification matched"
	} else {
		res.Details = "certification not found"
	}
	return res
}

func evaluateExperience(candidate model.CandidateScoringData, c model.ScoringCriterion, possible uint32) model.CriterionResult {
	minYears := parseMinYears(c)
	years := candidate.YearsExperience
	res := model.CriterionResult{Type: c.Type, Value: c.Value, PointsPossible: possible, Required: c.Required}

	if minYears <= 0 {
		res.Matched = true
		res.PointsEarned = float64(possible)
		res.Details = "no minimum specified"
		return res
	}

	if years >= minYears {
		res.Matched = true
		if c.PerUnitPoints != nil {
			earned := math.Round(years * *c.PerUnitPoints)
			if c.MaxPoints != nil && earned > float64(*c.MaxPoints) {
				earned = float64(*c.MaxPoints)
			}
			res.PointsEarned = earned
		} else {
			res.PointsEarned = float64(possible)
		}
		res.Details = fmt.Sprintf("%.1f years meets minimum %.1f", years, minYears)
		return res
	}

	if !c.Required {
		ceiling := float64(possible)
		if c.MaxPoints != nil {
			ceiling = float64(*c.MaxPoints)
		}
		res.PointsEarned = math.Round(ceiling * years / minYears)
		res.Details = fmt.Sprintf("%.1f years below minimum %.1f, partial credit", years, minYears)
		return res
	}

	res.Details = fmt.Sprintf("%.1f years below required minimum %.1f", years, minYears)
	return res
}

func parseMinYears(c model.ScoringCriterion) float64 {
	if c.MinValue != nil {
		return float64(*c.MinValue)
	}
	if v, err := strconv.ParseFloat(c.Value, 64); err == nil {
		return v
	}
	return 0
}

func evaluateEducation(candidate model.CandidateScoringData, c model.ScoringCriterion, possible uint32) model.CriterionResult {
	requiredRank := educationRank(strings.ToLower(c.Value))
	candidateRank := educationRank(candidate.EducationLevel)
	res := model.CriterionResult{Type: c.Type, Value: c.Value, PointsPossible: possible, Required: c.Required}

	if requiredRank == 0 {
		res.Details = "unrecognised required education level"
		return res
	}
	if candidateRank >= requiredRank {
		res.Matched = true
		res.PointsEarned = float64(possible)
		res.Details = "education level meets requirement"
		return res
	}
	if !c.Required && candidateRank > 0 {
		res.PointsEarned = math.Round(float64(possible) * float64(candidateRank) / float64(requiredRank))
		res.Details = "education level below requirement, partial credit"
		return res
	}
	res.Details = "education level below requirement"
	return res
}

func educationRank(level string) int {
	for i, l := range educationRanks {
		if l == level {
			return i + 1
		}
	}
	return 0
}
