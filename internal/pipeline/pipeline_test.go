package pipeline

import (
	"strings"
	"testing"

	"github.com/nexus-talent/resume-match/internal/logging"
	"github.com/nexus-talent/resume-match/internal/model"
)

func newTestExtractor() *Extractor {
	return NewExtractor(nil, nil, 0, logging.NewLogger("pipeline-test"))
}

func TestExtractStructuredBuildsFullCandidate(t *testing.T) {
	text := strings.Join([]string{
		"Jane Doe",
		"jane.doe@example.com",
		"",
		"Work Experience",
		"Senior Engineer | Acme Corp",
		"2019 - Present",
		"- Built distributed systems",
		"",
		"Education",
		"Bachelor of Science in Computer Science",
		"State University",
		"2015",
		"",
		"Skills",
		"Go, Python, Kubernetes",
	}, "\n")

	e := newTestExtractor()
	candidate, err := e.ExtractStructured(linesFromText(text))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if candidate.Tier1.FirstName == nil || candidate.Tier1.FirstName.Value != "Jane" {
		t.Fatalf("expected first name Jane, got %+v", candidate.Tier1.FirstName)
	}
	if len(candidate.WorkHistory) != 1 {
		t.Fatalf("expected 1 job record, got %d: %+v", len(candidate.WorkHistory), candidate.WorkHistory)
	}
	if len(candidate.Education) != 1 {
		t.Fatalf("expected 1 education record, got %d", len(candidate.Education))
	}
	if len(candidate.Skills) == 0 {
		t.Fatalf("expected skills to be extracted")
	}
	if candidate.OverallConfidence <= 0 {
		t.Fatalf("expected a positive overall confidence, got %f", candidate.OverallConfidence)
	}
}

func TestExtractStructuredNoPersonalInfoIsBadInput(t *testing.T) {
	e := newTestExtractor()
	_, err := e.ExtractStructured(linesFromText("unrelated\ntext"))
	if err == nil {
		t.Fatalf("expected an error for a document with no tier-1 fields")
	}
}

func linesFromText(text string) []model.OcrLine {
	lines := strings.Split(text, "\n")
	out := make([]model.OcrLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, model.OcrLine{Text: l})
	}
	return out
}
