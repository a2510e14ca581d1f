package workhistory

import "testing"

func TestParsePipeFormat(t *testing.T) {
	text := "Senior Engineer\nAcme Corp | 2020 - Present\n- Built things\n- Shipped things"
	jobs := Parse(text)
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
	j := jobs[0]
	if j.Company.Value != "Acme Corp" {
		t.Fatalf("unexpected company: %q", j.Company.Value)
	}
	if j.JobTitle.Value != "Senior Engineer" {
		t.Fatalf("unexpected job title: %q", j.JobTitle.Value)
	}
	if j.StartDate.Value != "2020" || j.EndDate.Value != "Present" {
		t.Fatalf("unexpected dates: %+v %+v", j.StartDate, j.EndDate)
	}
	if j.Responsibilities.Value != "- Built things\n- Shipped things" {
		t.Fatalf("unexpected responsibilities: %q", j.Responsibilities.Value)
	}
}

func TestParseThreeLineLookback(t *testing.T) {
	text := "Software Engineer / Backend\nInitech Solutions\n2019 - 2021"
	jobs := Parse(text)
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
	j := jobs[0]
	if j.Company.Value != "Initech Solutions" {
		t.Fatalf("unexpected company: %q", j.Company.Value)
	}
	if j.JobTitle.Value != "Software Engineer / Backend" {
		t.Fatalf("unexpected job title: %q", j.JobTitle.Value)
	}
}

func TestParseMultipleJobs(t *testing.T) {
	text := "Engineer\nAcme | 2018 - 2020\nAnalyst\nInitech | 2020 - Present"
	jobs := Parse(text)
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
}

func TestParseEmptyTextReturnsNoJobs(t *testing.T) {
	if jobs := Parse(""); len(jobs) != 0 {
		t.Fatalf("expected no jobs for empty text, got %d", len(jobs))
	}
}
