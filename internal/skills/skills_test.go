package skills

import "testing"

func contains(tokens []string, want string) bool {
	for _, t := range tokens {
		if t == want {
			return true
		}
	}
	return false
}

func TestParsePreservesDashesInSkillNames(t *testing.T) {
	result := Parse("REST-API, CI-CD\nNode.js")
	var found []string
	for _, s := range result {
		found = append(found, s.Name.Value)
	}
	if !contains(found, "REST-API") {
		t.Fatalf("expected REST-API preserved, got %v", found)
	}
	if !contains(found, "CI-CD") {
		t.Fatalf("expected CI-CD preserved, got %v", found)
	}
}

func TestParseStopsAtSectionBoundary(t *testing.T) {
	result := Parse("Python\nGo\nLanguages\nFrench")
	var found []string
	for _, s := range result {
		found = append(found, s.Name.Value)
	}
	if contains(found, "French") {
		t.Fatalf("expected truncation at Languages boundary, got %v", found)
	}
	if !contains(found, "Python") || !contains(found, "Go") {
		t.Fatalf("expected Python and Go retained, got %v", found)
	}
}

func TestParseDedupesCaseInsensitively(t *testing.T) {
	result := Parse("Python, python, PYTHON")
	if len(result) != 1 {
		t.Fatalf("expected 1 deduped skill, got %d: %v", len(result), result)
	}
}

func TestParseFiltersDatesAndPhonesAndEmails(t *testing.T) {
	result := Parse("Python, May 2022 - Oct 2022, 555-123-4567, foo@bar.com, Go")
	var found []string
	for _, s := range result {
		found = append(found, s.Name.Value)
	}
	if len(found) != 2 {
		t.Fatalf("expected only Python and Go to survive, got %v", found)
	}
}

func TestParseEmptyTextReturnsNoSkills(t *testing.T) {
	if result := Parse(""); len(result) != 0 {
		t.Fatalf("expected no skills for empty text, got %d", len(result))
	}
}
