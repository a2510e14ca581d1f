package education

import "testing"

func TestParseDegreeStarterWithInstitutionAndYear(t *testing.T) {
	text := "Bachelor of Science in Computer Science\nState University\n2018"
	edu := Parse(text)
	if len(edu) != 1 {
		t.Fatalf("expected 1 education entry, got %d", len(edu))
	}
	e := edu[0]
	if e.Degree.Value != "Bachelor of Science in Computer Science" {
		t.Fatalf("unexpected degree: %q", e.Degree.Value)
	}
	if e.Institution.Value != "State University" {
		t.Fatalf("unexpected institution: %q", e.Institution.Value)
	}
	if e.GraduationYear.Value != "2018" {
		t.Fatalf("unexpected year: %q", e.GraduationYear.Value)
	}
}

func TestParseInstitutionOnlyLineFallback(t *testing.T) {
	text := "Computer Science Diploma\nTech Institute 2020"
	edu := Parse(text)
	if len(edu) == 0 {
		t.Fatalf("expected at least one education entry")
	}
}

func TestParseEmptyTextReturnsNoEducation(t *testing.T) {
	if edu := Parse(""); len(edu) != 0 {
		t.Fatalf("expected no education entries for empty text, got %d", len(edu))
	}
}
