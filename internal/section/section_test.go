package section

import (
	"testing"

	"github.com/nexus-talent/resume-match/internal/model"
)

func TestIsSectionHeaderContainsTest(t *testing.T) {
	if !IsSectionHeader("WORK EXPERIENCE", "work experience") {
		t.Fatalf("expected exact-case-insensitive match")
	}
	if !IsSectionHeader("Work Experience Summary", "work experience") {
		t.Fatalf("expected contains match with prefix+length gates satisfied")
	}
}

func TestIsSectionHeaderMergedWordTest(t *testing.T) {
	if !IsSectionHeader("WorkExperience", "work experience") {
		t.Fatalf("expected merged-word match")
	}
}

func TestIsSectionHeaderRejectsDegreePrefix(t *testing.T) {
	if IsSectionHeader("Bachelor of Science in Computer Science", "education") {
		t.Fatalf("degree-prefixed line must never match a section header")
	}
}

func TestIsSectionHeaderRejectsOverlyLongLine(t *testing.T) {
	long := "I worked for several years gaining experience across many different industries and roles"
	if IsSectionHeader(long, "experience") {
		t.Fatalf("line over 3x pattern length must be rejected")
	}
}

func TestMatchSectionCanonicalOrder(t *testing.T) {
	name, ok := MatchSection("Technical Skills")
	if !ok || name != model.SectionSkills {
		t.Fatalf("expected skills match, got %v ok=%v", name, ok)
	}
}

func TestFindSectionSpansAssignsTailToLastHeader(t *testing.T) {
	text := "John Doe\nWork Experience\nEngineer at Acme\nEducation\nBS Computer Science"
	spans := FindSectionSpans(text)
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d: %+v", len(spans), spans)
	}
	if spans[0].Name != model.SectionWorkExperience {
		t.Fatalf("expected first span to be work experience, got %v", spans[0].Name)
	}
	if spans[1].Name != model.SectionEducation {
		t.Fatalf("expected second span to be education, got %v", spans[1].Name)
	}
	if text[spans[0].Start:spans[0].End] != "Engineer at Acme\n" {
		t.Fatalf("unexpected first span text: %q", text[spans[0].Start:spans[0].End])
	}
	if text[spans[1].Start:spans[1].End] != "BS Computer Science" {
		t.Fatalf("unexpected second span text (tail-to-last-header): %q", text[spans[1].Start:spans[1].End])
	}
}

func TestFindSectionSpansNoHeaderProducesNoSpans(t *testing.T) {
	text := "just a paragraph of prose with no recognizable headers at all"
	spans := FindSectionSpans(text)
	if len(spans) != 0 {
		t.Fatalf("expected no spans for a headerless document, got %+v", spans)
	}
}

func TestNormalizeTextCollapsesWhitespace(t *testing.T) {
	if NormalizeText("  Work    Experience \n") != "work experience" {
		t.Fatalf("expected normalized whitespace/case")
	}
}
