// Package model holds the data types shared across the pipeline (§3),
// generalized from the teacher's internal/processor/ocr_types.go BoundingBox/
// OCRPage shapes into the exact types spec.md §3 names.
package model

import "time"

// Point is one vertex of a bounding polygon, in pixel space.
type Point struct {
	X int
	Y int
}

// OcrLine is produced by C2 and immutable after emission.
type OcrLine struct {
	Text       string
	Confidence float64 // 0-100
	BBox       [4]Point
	Page       uint32
}

// LeftX returns the smallest x among the line's polygon vertices.
func (l OcrLine) LeftX() int {
	x := l.BBox[0].X
	for _, p := range l.BBox[1:] {
		if p.X < x {
			x = p.X
		}
	}
	return x
}

// TopY returns the smallest y among the line's polygon vertices.
func (l OcrLine) TopY() int {
	y := l.BBox[0].Y
	for _, p := range l.BBox[1:] {
		if p.Y < y {
			y = p.Y
		}
	}
	return y
}

// CenterY returns the vertical midpoint of the line's bounding polygon.
func (l OcrLine) CenterY() int {
	minY, maxY := l.BBox[0].Y, l.BBox[0].Y
	for _, p := range l.BBox[1:] {
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return (minY + maxY) / 2
}

// Page is an ordered sequence of OcrLine with pixel dimensions.
type Page struct {
	Index  uint32
	Width  int
	Height int
	Lines  []OcrLine
}

// SectionName enumerates the canonical section names C4 can detect, a
// tagged-variant replacement for the dynamic string-keyed union the source
// used (see SPEC_FULL.md §9).
type SectionName string

const (
	SectionWorkExperience SectionName = "work_experience"
	SectionEducation      SectionName = "education"
	SectionSkills         SectionName = "skills"
)

// SectionSpan is a byte-range into reconstructed text attributed to one
// canonical section name.
type SectionSpan struct {
	Name  SectionName
	Start int
	End   int
}

// ConfidenceField is the {value, confidence, source} shape shared by every
// extracted field in the data model.
type ConfidenceField struct {
	Value      string
	Confidence float64 // 0-100
	Source     string
}

// Tier1Profile holds the personal-info fields C8 extracts.
type Tier1Profile struct {
	FirstName *ConfidenceField
	LastName  *ConfidenceField
	Email     *ConfidenceField
	Phone     *ConfidenceField
	Location  *ConfidenceField
}

// IsEmpty reports whether no field was extracted at all.
func (t Tier1Profile) IsEmpty() bool {
	return t.FirstName == nil && t.LastName == nil && t.Email == nil && t.Phone == nil && t.Location == nil
}

// OverallConfidence is the arithmetic mean of present field confidences, 0
// if none are present.
func (t Tier1Profile) OverallConfidence() float64 {
	var sum float64
	var n int
	for _, f := range []*ConfidenceField{t.FirstName, t.LastName, t.Email, t.Phone, t.Location} {
		if f != nil {
			sum += f.Confidence
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// JobRecord is a parsed work-history entry.
type JobRecord struct {
	JobTitle         ConfidenceField
	Company          ConfidenceField
	StartDate        ConfidenceField
	EndDate          ConfidenceField
	Responsibilities ConfidenceField
}

// EducationRecord is a parsed degree entry.
type EducationRecord struct {
	Degree         ConfidenceField
	FieldOfStudy   ConfidenceField
	Institution    ConfidenceField
	GraduationYear ConfidenceField
}

// SkillToken is a single deduplicated, filtered skill.
type SkillToken struct {
	Name           ConfidenceField
	MatchedSkillID *string
}

// StructuredCandidate is the full output of the structured-extraction
// operation (C3+C4+{C5,C6,C7}+C8).
type StructuredCandidate struct {
	OverallConfidence float64
	Tier1             Tier1Profile
	WorkHistory       []JobRecord
	Education         []EducationRecord
	Skills            []SkillToken
	RawSections       RawSections
}

// RawSections carries the raw section text alongside the parsed structure,
// useful for downstream embedding composition (C9's cv/skills/experience
// parts).
type RawSections struct {
	Experience *string
	Education  *string
}

// EmbeddingVector is a fixed-dimension vector of 32-bit floats. The
// dimension is a service-level configuration value (default 384), not a
// compile-time constant, per SPEC_FULL.md §3.
type EmbeddingVector []float32

// EmbeddingParts holds the optional named source texts an embedding was
// composed from.
type EmbeddingParts struct {
	CV         *string
	Skills     *string
	Experience *string
	Description *string
	Requirements *string
}

// EmbeddingRecord is the persisted shape for both candidates and jobs.
type EmbeddingRecord struct {
	EntityID    string
	EntityType  string // "candidate" | "job"
	Combined    EmbeddingVector
	Parts       EmbeddingParts
	ModelName   string
	ContentHash string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CriterionType enumerates the scoring criterion kinds.
type CriterionType string

const (
	CriterionSkill          CriterionType = "skill"
	CriterionLanguage       CriterionType = "language"
	CriterionCertification  CriterionType = "certification"
	CriterionExperience     CriterionType = "experience"
	CriterionEducation      CriterionType = "education"
	CriterionCustom         CriterionType = "custom"
)

// ScoringCriterion is one job-posting requirement to evaluate a candidate
// against.
type ScoringCriterion struct {
	JobID         string
	Type          CriterionType
	Value         string
	Points        uint32
	Required      bool
	Weight        float64
	MinValue      *uint32
	PerUnitPoints *float64
	MaxPoints     *uint32
	SortOrder     int32
}

// CriterionResult is the outcome of evaluating one ScoringCriterion.
type CriterionResult struct {
	Type           CriterionType
	Value          string
	PointsPossible uint32
	PointsEarned   float64
	Required       bool
	Matched        bool
	Details        string
}

// ScoringResult aggregates every CriterionResult for one candidate/job pair.
type ScoringResult struct {
	TotalPoints     float64
	MaxPoints       uint32
	Percentage      float64
	Matched         []CriterionResult
	Missing         []CriterionResult
	RequiredMissing []CriterionResult
	Disqualified    bool
	Reason          string
}

// MatchResult is the final ranked outcome of C11 for one candidate/job pair.
type MatchResult struct {
	CandidateID    string
	JobID          string
	Cosine         float64
	CriteriaPoints float64
	CriteriaMax    uint32
	CombinedScore  float64
	Rank           int
	Breakdown      map[string]interface{}
	Matched        []string
	Missing        []string
	Disqualified   bool
}

// CandidateScoringData is the normalized shape C10 evaluates criteria
// against (§4.10).
type CandidateScoringData struct {
	Skills          map[string]struct{}   // lowercased
	Languages       map[string]string      // lowercased language -> lowercased proficiency
	Certifications  map[string]struct{}    // lowercased
	YearsExperience float64
	EducationLevel  string // lowercased
}
