// Package skills implements C7: the Skills Parser, porting original_source's
// parse_skills truncation/normalization/filter/dedup pipeline.
package skills

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/nexus-talent/resume-match/internal/model"
)

var sectionBoundaries = map[string]struct{}{
	"languages": {}, "language": {}, "reference": {}, "references": {}, "certifications": {},
	"projects": {}, "hobbies": {}, "interests": {}, "awards": {}, "publications": {},
}

var skipPhrases = map[string]struct{}{
	"skills": {}, "technical skills": {}, "competencies": {}, "technologies": {}, "expertise": {},
	"proficient in": {}, "soft skills": {}, "hard skills": {}, "core competencies": {},
	"course": {}, "courses": {}, "training": {}, "certifications": {}, "certificate": {},
	"education": {}, "experience": {}, "work history": {}, "contact": {}, "profile": {},
}

var (
	newlinesPattern       = regexp.MustCompile(`\n+`)
	bulletDashPattern     = regexp.MustCompile(`(^|,)\s*-\s+`)
	leadingBulletPattern  = regexp.MustCompile(`^[●•·]\s*`)
	leadingDashPattern    = regexp.MustCompile(`^-\s+`)
	wrappedParensPattern  = regexp.MustCompile(`^\(([^)]+)\)$`)
	phonePattern          = regexp.MustCompile(`^\+?[\d\s\-\(\)]{7,}$`)
	emailPattern          = regexp.MustCompile(`@`)
	datePattern           = regexp.MustCompile(`(?i)^\(?\s*(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec|january|february|march|april|may|june|july|august|september|october|november|december)\s*\d{4}`)
	dateRangePattern      = regexp.MustCompile(`(?i)\d{4}\s*[-–—]\s*(?:\d{4}|present|current)`)
	courseCodePattern     = regexp.MustCompile(`(?i)^[A-Z]{2,4}[-\s]?\d{3,4}`)
	numericOnlyPattern    = regexp.MustCompile(`^[\d\s\-\(\)]+$`)
)

// Parse truncates section text at section-boundary headers, normalizes
// bullets/newlines into comma separators (preserving dashes inside skill
// names), and filters/dedups the resulting tokens, per spec.md §4.7.
func Parse(text string) []model.SkillToken {
	var skills []model.SkillToken
	seen := map[string]struct{}{}

	lines := strings.Split(text, "\n")
	var truncated []string
	for _, line := range lines {
		lower := strings.ToLower(strings.TrimSpace(line))
		if _, isBoundary := sectionBoundaries[lower]; isBoundary {
			break
		}
		truncated = append(truncated, line)
	}
	truncatedText := strings.Join(truncated, "\n")

	normalized := strings.ReplaceAll(truncatedText, "•", ",")
	normalized = strings.ReplaceAll(normalized, "·", ",")
	normalized = newlinesPattern.ReplaceAllString(normalized, ",")
	normalized = bulletDashPattern.ReplaceAllString(normalized, "$1")

	for _, raw := range strings.Split(normalized, ",") {
		skill := strings.TrimSpace(raw)
		skill = leadingBulletPattern.ReplaceAllString(skill, "")
		skill = leadingDashPattern.ReplaceAllString(skill, "")
		skill = wrappedParensPattern.ReplaceAllString(skill, "$1")
		skill = strings.TrimSpace(skill)

		if len([]rune(skill)) < 2 {
			continue
		}
		if len(strings.Fields(skill)) > 5 {
			continue
		}
		skillLower := strings.ToLower(skill)
		if _, skip := skipPhrases[skillLower]; skip {
			continue
		}
		if _, boundary := sectionBoundaries[skillLower]; boundary {
			continue
		}
		if phonePattern.MatchString(skill) {
			continue
		}
		if emailPattern.MatchString(skill) {
			continue
		}
		if datePattern.MatchString(skill) || dateRangePattern.MatchString(skill) {
			continue
		}
		if courseCodePattern.MatchString(skill) {
			continue
		}
		if strings.Contains(skillLower, "introduction") || strings.HasPrefix(skillLower, "intro") {
			continue
		}
		if isAllUpper(skill) && len(strings.Fields(skill)) == 1 && len(skill) > 3 && !strings.Contains(skill, "-") {
			continue
		}
		if numericOnlyPattern.MatchString(skill) {
			continue
		}
		if _, dup := seen[skillLower]; dup {
			continue
		}
		seen[skillLower] = struct{}{}

		skills = append(skills, model.SkillToken{
			Name: model.ConfidenceField{Value: skill, Confidence: 90},
		})
	}

	return skills
}

func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}
