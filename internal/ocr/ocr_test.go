package ocr

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/nexus-talent/resume-match/internal/model"
)

type stubEngine struct {
	name    string
	err     error
	lines   []model.OcrLine
	calls   int
}

func (s *stubEngine) Info() EngineInfo { return EngineInfo{Name: s.name} }

func (s *stubEngine) ExtractLines(ctx context.Context, page image.Image, pageIndex uint32) ([]model.OcrLine, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.lines, nil
}

func TestEngineUsesPrimaryWhenHealthy(t *testing.T) {
	primary := &stubEngine{name: "primary", lines: []model.OcrLine{{Text: "hi"}}}
	fallback := &stubEngine{name: "fallback"}
	e, err := NewEngine(primary, fallback)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines, err := e.ExtractLines(context.Background(), nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 1 || lines[0].Text != "hi" {
		t.Fatalf("expected primary's line, got %v", lines)
	}
	if fallback.calls != 0 {
		t.Fatalf("fallback should not have been called")
	}
}

func TestEngineSubstitutesFallbackOnPrimaryFailure(t *testing.T) {
	primary := &stubEngine{name: "primary", err: errors.New("boom")}
	fallback := &stubEngine{name: "fallback", lines: []model.OcrLine{{Text: "fb"}}}
	e, _ := NewEngine(primary, fallback)

	lines, err := e.ExtractLines(context.Background(), nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 1 || lines[0].Text != "fb" {
		t.Fatalf("expected fallback's line, got %v", lines)
	}
	if info := e.Info(); info.IsPrimary {
		t.Fatalf("expected active engine to be fallback after substitution")
	}
}

func TestEngineUnavailableWhenBothNil(t *testing.T) {
	if _, err := NewEngine(nil, nil); err == nil {
		t.Fatalf("expected EngineUnavailable when neither engine is configured")
	}
}

func TestEngineAbsentPrimaryUsesFallbackSilently(t *testing.T) {
	fallback := &stubEngine{name: "fallback", lines: []model.OcrLine{{Text: "fb"}}}
	e, err := NewEngine(nil, fallback)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info := e.Info(); info.Name != "fallback" {
		t.Fatalf("expected fallback to serve when primary absent, got %q", info.Name)
	}
}
