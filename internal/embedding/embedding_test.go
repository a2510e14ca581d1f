package embedding

import (
	"context"
	"strings"
	"testing"

	"github.com/nexus-talent/resume-match/internal/model"
)

type stubEmbedder struct {
	dim     int
	byText  map[string]model.EmbeddingVector
	queries []string
}

func (s *stubEmbedder) Dimension() int { return s.dim }

func (s *stubEmbedder) Encode(ctx context.Context, text string, isQuery bool) (model.EmbeddingVector, error) {
	if isQuery {
		s.queries = append(s.queries, text)
	}
	if v, ok := s.byText[text]; ok {
		return v, nil
	}
	v := make(model.EmbeddingVector, s.dim)
	v[0] = 1
	return v, nil
}

func strPtr(s string) *string { return &s }

func TestComposeCandidateWeightsAndRenormalizes(t *testing.T) {
	e := &stubEmbedder{dim: 3, byText: map[string]model.EmbeddingVector{
		"passage: cv text":         {1, 0, 0},
		"passage: skills text":     {0, 1, 0},
		"passage: experience text": {0, 0, 1},
	}}
	vec, hash, err := ComposeCandidate(context.Background(), e, model.EmbeddingParts{
		CV: strPtr("cv text"), Skills: strPtr("skills text"), Experience: strPtr("experience text"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !IsUnitNorm(vec) {
		t.Fatalf("expected unit-norm vector, got %v", vec)
	}
	if hash == "" {
		t.Fatalf("expected non-empty content hash")
	}
	// weighted (0.5,0.3,0.2) on orthonormal basis vectors before renorm.
	if vec[0] <= vec[1] || vec[1] <= vec[2] {
		t.Fatalf("expected weight ordering cv > skills > experience in %v", vec)
	}
}

func TestComposeCandidateNoPartsIsBadInput(t *testing.T) {
	e := &stubEmbedder{dim: 3}
	_, _, err := ComposeCandidate(context.Background(), e, model.EmbeddingParts{})
	if err == nil {
		t.Fatalf("expected error when no parts present")
	}
}

func TestPreEncodeNormalizeTruncatesAndCollapsesWhitespace(t *testing.T) {
	long := strings.Repeat("a ", 10000)
	got := PreEncodeNormalize(long)
	if len(got) > MaxChars {
		t.Fatalf("expected truncation at %d chars, got %d", MaxChars, len(got))
	}
	if strings.Contains(PreEncodeNormalize("a   b\n\nc"), "  ") {
		t.Fatalf("expected whitespace collapsed to single spaces")
	}
}

func TestCosineOfIdenticalVectorsIsOne(t *testing.T) {
	v := model.EmbeddingVector{0.6, 0.8}
	if got := Cosine(v, v); got < 0.999 {
		t.Fatalf("expected cosine ~1, got %v", got)
	}
}

func TestContentHashDeterministic(t *testing.T) {
	_, h1, _ := ComposeCandidate(context.Background(), &stubEmbedder{dim: 2}, model.EmbeddingParts{CV: strPtr("x")})
	_, h2, _ := ComposeCandidate(context.Background(), &stubEmbedder{dim: 2}, model.EmbeddingParts{CV: strPtr("x")})
	if h1 != h2 {
		t.Fatalf("expected identical content hash for identical input, got %q vs %q", h1, h2)
	}
}
