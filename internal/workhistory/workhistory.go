// Package workhistory implements C5: the Work History Parser, a date-anchor
// scan that turns a work-experience section's text into structured job
// entries, ported from original_source's parse_work_history.
package workhistory

import (
	"regexp"
	"strings"

	"github.com/nexus-talent/resume-match/internal/model"
)

var datePattern = regexp.MustCompile(`(?i)(?:(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s*)?(\d{4})\s*[-–—to]+\s*(?:(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s*)?(present|current|now|\d{4})`)

var yearPattern = regexp.MustCompile(`\d{4}`)
var trailingDashPattern = regexp.MustCompile(`[-–—]+\s*$`)

var monthNames = map[string]struct{}{
	"jan": {}, "feb": {}, "mar": {}, "apr": {}, "may": {}, "jun": {}, "jul": {}, "aug": {}, "sep": {}, "oct": {}, "nov": {}, "dec": {},
	"january": {}, "february": {}, "march": {}, "april": {}, "june": {}, "july": {}, "august": {}, "september": {}, "october": {}, "november": {}, "december": {},
}

var companyIndicators = []string{"inc", "ltd", "llc", "corp", "gmbh", "ag", "co.", "company", "solutions", "technologies", "services", "consulting", "software", ".com"}

var jobTitleIndicators = []string{"/", "engineer", "developer", "manager", "specialist", "analyst", "consultant", "lead", "senior", "junior", "intern"}

// Parse scans section text for date-range anchors and resolves the job
// title/company/responsibilities around each, per spec.md §4.5.
func Parse(text string) []model.JobRecord {
	var jobs []model.JobRecord
	lines := splitNonEmpty(text)
	if len(lines) == 0 {
		return jobs
	}

	i := 0
	for i < len(lines) {
		line := lines[i]
		match := datePattern.FindStringSubmatch(line)
		if match == nil {
			i++
			continue
		}

		jobTitle, company := resolveTitleCompany(lines, i, line)
		company = strings.TrimSpace(trailingDashPattern.ReplaceAllString(company, ""))

		j := i + 1
		var responsibilities []string
		for j < len(lines) {
			next := lines[j]
			if datePattern.MatchString(next) {
				break
			}
			if startsWithBullet(next) || len(responsibilities) > 0 {
				responsibilities = append(responsibilities, next)
			}
			j++
		}

		jobs = append(jobs, model.JobRecord{
			JobTitle:         confField(jobTitle, 90, 50),
			Company:          confField(company, 85, 50),
			StartDate:        model.ConfidenceField{Value: match[1], Confidence: 95},
			EndDate:          model.ConfidenceField{Value: match[2], Confidence: 95},
			Responsibilities: model.ConfidenceField{Value: strings.Join(responsibilities, "\n"), Confidence: 80},
		})

		i = j
	}

	return jobs
}

// resolveTitleCompany implements the three-step title/company resolution
// from spec.md §4.5: same-line pipe split, same-line pre-date text, or a
// two-line-lookback heuristic keyed on company/job-title indicator words.
func resolveTitleCompany(lines []string, i int, line string) (jobTitle, company string) {
	if strings.Contains(line, "|") {
		parts := strings.SplitN(line, "|", 2)
		company = strings.TrimSpace(parts[0])
		if i > 0 {
			jobTitle = lines[i-1]
		}
		return
	}

	preDateText := strings.TrimSpace(yearPattern.Split(line, 2)[0])
	preDateText = strings.TrimSpace(trailingDashPattern.ReplaceAllString(preDateText, ""))
	_, isJustMonth := monthNames[strings.ToLower(strings.TrimSpace(preDateText))]

	if preDateText != "" && !isJustMonth {
		company = preDateText
		if i > 0 {
			jobTitle = lines[i-1]
		}
		return
	}

	switch {
	case i >= 2:
		prev1, prev2 := lines[i-1], lines[i-2]
		prev1IsCompany := containsAny(prev1, companyIndicators)
		prev2IsCompany := containsAny(prev2, companyIndicators)
		prev1IsTitle := containsAny(prev1, jobTitleIndicators)
		prev2IsTitle := containsAny(prev2, jobTitleIndicators)

		switch {
		case prev1IsCompany && !prev2IsCompany:
			company, jobTitle = prev1, prev2
		case prev2IsCompany && !prev1IsCompany:
			company, jobTitle = prev2, prev1
		case prev2IsTitle && !prev1IsTitle:
			jobTitle, company = prev2, prev1
		case prev1IsTitle && !prev2IsTitle:
			jobTitle, company = prev1, prev2
		default:
			jobTitle, company = prev2, prev1
		}
	case i >= 1:
		jobTitle = lines[i-1]
	}
	return
}

func containsAny(s string, indicators []string) bool {
	lower := strings.ToLower(s)
	for _, ind := range indicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return false
}

func startsWithBullet(s string) bool {
	return strings.HasPrefix(s, "-") || strings.HasPrefix(s, "•") || strings.HasPrefix(s, "*")
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
