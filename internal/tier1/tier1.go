// Package tier1 implements C8: the Tier-1 Parser, extracting name, email,
// phone, and location from a document's header area, ported from
// original_source's extract_tier1_personal_info.
package tier1

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/nexus-talent/resume-match/internal/model"
)

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// phonePattern is the Open-Question-resolved pattern (see DESIGN.md):
// spec.md §9 calls for the stricter phone regex over the looser
// all-digits-and-punctuation original, to cut header/date false positives.
var phonePattern = regexp.MustCompile(`(?:[+]?[1-9]\d{0,2}[-.\s]?)?\(?\d{2,4}\)?[-.\s]?\d{2,4}[-.\s]?\d{2,6}`)

var labeledLocationPattern = regexp.MustCompile(`(?i)(?:Location|Address|City|Based in)[:\s]+([A-Za-z\s,]+?)(?:\n|$)`)

var cityCountryPattern = regexp.MustCompile(`([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?),\s*(Turkey|Germany|USA|UK|France|Spain|Italy|Netherlands|Belgium|Switzerland|Austria|Canada|Australia|India|China|Japan|[A-Z]{2})\b`)

var techWords = map[string]struct{}{
	"selenium": {}, "gauge": {}, "cypress": {}, "python": {}, "javascript": {}, "react": {}, "angular": {},
	"java": {}, "nodejs": {}, "docker": {}, "kubernetes": {}, "jenkins": {}, "git": {}, "jira": {}, "postman": {},
	"appium": {}, "playwright": {}, "testng": {}, "junit": {}, "maven": {}, "gradle": {}, "spring": {},
}

// Extract runs the header-area scans described in spec.md §4.8 over the
// document's raw recognized text.
func Extract(text string) model.Tier1Profile {
	var profile model.Tier1Profile

	lines := strings.Split(strings.TrimSpace(text), "\n")

	headCount := 5
	if headCount > len(lines) {
		headCount = len(lines)
	}
	for i := 0; i < headCount; i++ {
		line := strings.TrimSpace(lines[i])
		words := strings.Fields(line)
		if line != "" && len(words) >= 2 {
			profile.FirstName = &model.ConfidenceField{Value: words[0], Confidence: 98, Source: sourceLine(i)}
			profile.LastName = &model.ConfidenceField{Value: words[len(words)-1], Confidence: 95, Source: sourceLine(i)}
			break
		}
	}

	if m := emailPattern.FindString(text); m != "" {
		profile.Email = &model.ConfidenceField{Value: m, Confidence: 95, Source: "regex_match"}
	}

	if m := phonePattern.FindString(text); m != "" {
		profile.Phone = &model.ConfidenceField{Value: strings.TrimSpace(m), Confidence: 88, Source: "regex_match"}
	}

	headerLimit := 15
	if headerLimit > len(lines) {
		headerLimit = len(lines)
	}
	headerLines := strings.Join(lines[:headerLimit], "\n")

	var locationValue string
	var locationConfidence float64

	if m := labeledLocationPattern.FindStringSubmatch(headerLines); m != nil {
		locationValue = strings.TrimSpace(m[1])
		locationConfidence = 90
	} else if m := cityCountryPattern.FindString(headerLines); m != "" {
		if !containsTechWord(m) {
			locationValue = m
			locationConfidence = 85
		}
	}

	if locationValue != "" {
		profile.Location = &model.ConfidenceField{Value: locationValue, Confidence: locationConfidence, Source: "regex_match"}
	}

	return profile
}

func containsTechWord(match string) bool {
	for _, w := range strings.Fields(strings.ReplaceAll(match, ",", " ")) {
		if _, found := techWords[strings.ToLower(w)]; found {
			return true
		}
	}
	return false
}

func sourceLine(i int) string {
	return "line_" + strconv.Itoa(i+1)
}
