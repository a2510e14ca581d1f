// Package section implements C4: the Section Locator, a fuzzy matcher for
// résumé section headers (work_experience/education/skills), ported from
// original_source's find_section_headers/fuzzy_match/normalize_text into
// Go idiom (not a line-by-line translation).
package section

import (
	"strings"

	"github.com/nexus-talent/resume-match/internal/model"
)

// Patterns is the canonical section-name -> pattern-list table from
// spec.md §4.4.
var Patterns = map[model.SectionName][]string{
	model.SectionWorkExperience: {"work experience", "work history", "employment history", "experience", "employment"},
	model.SectionEducation:      {"education", "academic background", "qualifications", "academic"},
	model.SectionSkills:         {"skills", "technical skills", "competencies", "technologies", "expertise"},
}

// degreePrefixes reject a header match on the degree-name/long-sentence
// false-positive lines spec.md §4.4 names.
var degreePrefixes = []string{"bachelor", "master", "doctor", "associate", "diploma", "certificate", "b.s.", "m.s.", "ph.d."}

// sectionOrder fixes deterministic iteration over Patterns, since Go map
// iteration order is random and the source's first-matching-pattern
// behavior must be stable.
var sectionOrder = []model.SectionName{model.SectionWorkExperience, model.SectionEducation, model.SectionSkills}

// NormalizeText lowercases and collapses whitespace runs to single spaces.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// IsSectionHeader runs the three-test fuzzy matcher from spec.md §4.4 over
// a single line against one canonical pattern.
func IsSectionHeader(line, pattern string) bool {
	textNorm := NormalizeText(line)
	patternNorm := NormalizeText(pattern)
	if textNorm == "" || patternNorm == "" {
		return false
	}

	if len(textNorm) > len(patternNorm)*3 {
		return false
	}
	for _, prefix := range degreePrefixes {
		if strings.HasPrefix(textNorm, prefix) {
			return false
		}
	}

	// Test 1: contains, gated by the >=60%-of-line-length and
	// starts-with-first-4-chars rules.
	if strings.Contains(textNorm, patternNorm) {
		if float64(len(patternNorm)) < float64(len(textNorm))*0.6 {
			return false
		}
		prefixLen := 4
		if prefixLen > len(patternNorm) {
			prefixLen = len(patternNorm)
		}
		if !strings.HasPrefix(textNorm, patternNorm[:prefixLen]) {
			return false
		}
		return true
	}

	// Test 2: merged-word match.
	mergedPattern := strings.ReplaceAll(patternNorm, " ", "")
	mergedText := strings.ReplaceAll(textNorm, " ", "")
	if mergedPattern != "" && strings.Contains(mergedText, mergedPattern) {
		return true
	}

	// Test 3: longest-common-subsequence ratio >= 0.75.
	return lcsRatio(textNorm, patternNorm) >= 0.75
}

// MatchSection reports the first canonical section name whose pattern list
// contains a header match for line, in canonical table order.
func MatchSection(line string) (model.SectionName, bool) {
	for _, name := range sectionOrder {
		for _, pattern := range Patterns[name] {
			if IsSectionHeader(line, pattern) {
				return name, true
			}
		}
	}
	return "", false
}

// FindSectionSpans scans reconstructed text line by line and emits the
// byte-range span for each detected section, per spec.md §4.4: a span runs
// from just after its header line to just before the next detected header
// (or end-of-text); a document with no headers produces no spans.
func FindSectionSpans(text string) []model.SectionSpan {
	lines := strings.Split(text, "\n")

	var spans []model.SectionSpan
	var current model.SectionName
	haveCurrent := false
	sectionStart := 0

	// byteOffset(i) is the byte offset of the start of lines[i] in the
	// original text, accounting for the stripped '\n' separators.
	offsets := make([]int, len(lines)+1)
	pos := 0
	for i, l := range lines {
		offsets[i] = pos
		pos += len(l) + 1
	}
	offsets[len(lines)] = len(text)

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if name, ok := MatchSection(trimmed); ok {
			if haveCurrent {
				spans = append(spans, model.SectionSpan{Name: current, Start: sectionStart, End: offsets[i]})
			}
			current = name
			haveCurrent = true
			sectionStart = offsets[i+1]
			if sectionStart > len(text) {
				sectionStart = len(text)
			}
		}
	}

	if haveCurrent {
		spans = append(spans, model.SectionSpan{Name: current, Start: sectionStart, End: len(text)})
	}
	return spans
}

// lcsRatio computes 2*L/(len(a)+len(b)) where L is the length of the
// longest common subsequence, matching Python difflib.SequenceMatcher's
// ratio() definition closely enough for this matcher's threshold test
// (difflib uses matching-blocks rather than a strict LCS, but for the short
// header-length strings this component operates over the two coincide).
func lcsRatio(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	l := lcsLen(a, b)
	return 2 * float64(l) / float64(len(a)+len(b))
}

func lcsLen(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	n, m := len(ra), len(rb)
	prev := make([]int, m+1)
	curr := make([]int, m+1)
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[m]
}
