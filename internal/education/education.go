// Package education implements C6: the Education Parser, porting
// original_source's parse_education degree-starter absorption and
// institution/year fallback passes.
package education

import (
	"regexp"
	"strings"

	"github.com/nexus-talent/resume-match/internal/model"
)

var yearPattern = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
var leadingBulletPattern = regexp.MustCompile(`^[●•·\-\s]+`)
var trailingYearPattern = regexp.MustCompile(`\s*\d{4}.*$`)

var institutionIndicators = []string{"university", "college", "institute", "school", "academy", "üniversitesi", "universität"}

var degreeStarters = []string{"bachelor", "master", "doctor", "ph.d", "phd", "associate", "diploma", "certificate", "b.s.", "b.a.", "m.s.", "m.a.", "mba"}

// Parse scans section text for degree-starter lines and institution-only
// lines, per spec.md §4.6.
func Parse(text string) []model.EducationRecord {
	var education []model.EducationRecord
	lines := splitNonEmpty(text)
	if len(lines) == 0 {
		return education
	}

	i := 0
	for i < len(lines) {
		line := lines[i]
		lineLower := strings.ToLower(line)

		if startsWithAny(lineLower, degreeStarters) {
			degreeParts := []string{line}
			j := i + 1
			for j < len(lines) {
				next := lines[j]
				nextLower := strings.ToLower(next)
				if containsAny(nextLower, institutionIndicators) || yearPattern.MatchString(next) || startsWithBullet(next) {
					break
				}
				degreeParts = append(degreeParts, next)
				j++
			}
			fullDegree := strings.Join(degreeParts, " ")

			institution, graduationYear := "", ""
			for j < len(lines) {
				check := lines[j]
				checkLower := strings.ToLower(check)

				if containsAny(checkLower, institutionIndicators) {
					inst := leadingBulletPattern.ReplaceAllString(check, "")
					inst = trailingYearPattern.ReplaceAllString(inst, "")
					institution = strings.TrimSpace(inst)
				}
				if years := yearPattern.FindAllString(check, -1); len(years) > 0 {
					graduationYear = years[len(years)-1]
				}

				if (institution != "" && graduationYear != "") || startsWithAny(checkLower, degreeStarters) {
					break
				}
				j++
			}

			education = append(education, model.EducationRecord{
				Degree:         model.ConfidenceField{Value: fullDegree, Confidence: 92},
				FieldOfStudy:   model.ConfidenceField{Value: "", Confidence: 50},
				Institution:    confField(institution, 88, 50),
				GraduationYear: confField(graduationYear, 95, 50),
			})

			i = j
			continue
		}

		if containsAny(lineLower, institutionIndicators) {
			prevDegree := ""
			lo := i - 3
			if lo < -1 {
				lo = -1
			}
			for k := i - 1; k > lo; k-- {
				prev := lines[k]
				if prev != "" && !containsAny(strings.ToLower(prev), institutionIndicators) {
					prevDegree = prev
					break
				}
			}

			institution := leadingBulletPattern.ReplaceAllString(line, "")
			institution = strings.TrimSpace(trailingYearPattern.ReplaceAllString(institution, ""))

			graduationYear := ""
			if years := yearPattern.FindAllString(line, -1); len(years) > 0 {
				graduationYear = years[len(years)-1]
			} else if i+1 < len(lines) {
				if years := yearPattern.FindAllString(lines[i+1], -1); len(years) > 0 {
					graduationYear = years[len(years)-1]
				}
			}

			education = append(education, model.EducationRecord{
				Degree:         confField(prevDegree, 70, 50),
				FieldOfStudy:   model.ConfidenceField{Value: "", Confidence: 50},
				Institution:    model.ConfidenceField{Value: institution, Confidence: 88},
				GraduationYear: confField(graduationYear, 95, 50),
			})
		}

		i++
	}

	return education
}

func startsWithAny(lower string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

func containsAny(lower string, substrs []string) bool {
	for _, s := range substrs {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

func startsWithBullet(s string) bool {
	return strings.HasPrefix(s, "●") || strings.HasPrefix(s, "•") || strings.HasPrefix(s, "·") || strings.HasPrefix(s, "-")
}

func confField(value string, confIfPresent, confIfAbsent float64) model.ConfidenceField {
	if value == "" {
		return model.ConfidenceField{Value: value, Confidence: confIfAbsent}
	}
	return model.ConfidenceField{Value: value, Confidence: confIfPresent}
}

func splitNonEmpty(text string) []string {
	var out []string
	for _, l := range strings.Split(strings.TrimSpace(text), "\n") {
		if t := strings.TrimSpace(l); t != "" {
			out = append(out, t)
		}
	}
	return out
}
