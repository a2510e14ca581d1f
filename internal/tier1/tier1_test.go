package tier1

import "testing"

func TestExtractNameFromFirstNonEmptyLine(t *testing.T) {
	p := Extract("Jane Doe\nSoftware Engineer\njane.doe@example.com")
	if p.FirstName == nil || p.FirstName.Value != "Jane" {
		t.Fatalf("expected first name Jane, got %+v", p.FirstName)
	}
	if p.LastName == nil || p.LastName.Value != "Doe" {
		t.Fatalf("expected last name Doe, got %+v", p.LastName)
	}
}

func TestExtractEmail(t *testing.T) {
	p := Extract("Jane Doe\nContact: jane.doe@example.com")
	if p.Email == nil || p.Email.Value != "jane.doe@example.com" {
		t.Fatalf("expected extracted email, got %+v", p.Email)
	}
}

func TestExtractLabeledLocation(t *testing.T) {
	p := Extract("Jane Doe\nLocation: Berlin, Germany\nSkills: Go, Python")
	if p.Location == nil {
		t.Fatalf("expected location extracted")
	}
	if p.Location.Value != "Berlin, Germany" {
		t.Fatalf("unexpected location value: %q", p.Location.Value)
	}
}

func TestExtractLocationExcludesTechWords(t *testing.T) {
	p := Extract("Jane Doe\nPython, Docker, CI")
	if p.Location != nil {
		t.Fatalf("expected no location match against tech-word false positive, got %+v", p.Location)
	}
}

func TestIsEmptyWhenNothingFound(t *testing.T) {
	p := Extract("")
	if !p.IsEmpty() {
		t.Fatalf("expected empty profile for empty text")
	}
}
