// Package embedding implements C9: the Embedding Composer, combining
// per-part embeddings into a single unit-norm vector and computing the
// content hash used to short-circuit regeneration, generalized from the
// teacher's internal/processor/embedding.go VoyageAI client (kept as the
// one concrete Embedder implementation in voyage.go).
package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strings"

	"github.com/nexus-talent/resume-match/internal/apperr"
	"github.com/nexus-talent/resume-match/internal/model"
)

// MaxChars is the pre-encoding truncation limit from spec.md §4.9.
const MaxChars = 8000

// candidateWeights/jobWeights are the fixed per-part weighting schemes.
var candidateWeights = [3]float64{0.5, 0.3, 0.2} // cv, skills, experience
var jobWeights = [2]float64{0.6, 0.4}            // description, requirements

// Embedder is the opaque encode(text, is_query) -> unit-norm vector
// capability spec.md §6.3 names as an external collaborator.
type Embedder interface {
	Encode(ctx context.Context, text string, isQuery bool) (model.EmbeddingVector, error)
	Dimension() int
}

// PreEncodeNormalize trims, collapses internal whitespace runs, and
// truncates at MaxChars, per spec.md §4.9.
func PreEncodeNormalize(text string) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	if len(collapsed) > MaxChars {
		collapsed = collapsed[:MaxChars]
	}
	return collapsed
}

// ComposeCandidate computes the candidate's combined embedding over the
// (cv, skills, experience) parts present, weighted (0.5, 0.3, 0.2) and
// renormalised to unit length.
func ComposeCandidate(ctx context.Context, embedder Embedder, parts model.EmbeddingParts) (model.EmbeddingVector, string, error) {
	texts := []*string{parts.CV, parts.Skills, parts.Experience}
	vec, err := composeWeighted(ctx, embedder, texts[:], candidateWeights[:])
	if err != nil {
		return nil, "", err
	}
	return vec, contentHash(valueOr(parts.CV), valueOr(parts.Skills), valueOr(parts.Experience)), nil
}

// ComposeJob computes the job's combined embedding over (description,
// requirements), weighted (0.6, 0.4).
func ComposeJob(ctx context.Context, embedder Embedder, parts model.EmbeddingParts) (model.EmbeddingVector, string, error) {
	texts := []*string{parts.Description, parts.Requirements}
	vec, err := composeWeighted(ctx, embedder, texts[:], jobWeights[:])
	if err != nil {
		return nil, "", err
	}
	return vec, contentHash(valueOr(parts.Description), valueOr(parts.Requirements)), nil
}

func composeWeighted(ctx context.Context, embedder Embedder, texts []*string, weights []float64) (model.EmbeddingVector, error) {
	dim := embedder.Dimension()
	combined := make([]float64, dim)
	var totalWeight float64

	for i, t := range texts {
		if t == nil || strings.TrimSpace(*t) == "" {
			continue
		}
		normalized := PreEncodeNormalize(*t)
		vec, err := embedder.Encode(ctx, "passage: "+normalized, false)
		if err != nil {
			return nil, err
		}
		if len(vec) != dim {
			return nil, apperr.Internal(fmt.Sprintf("embedder returned dimension %d, expected %d", len(vec), dim), nil)
		}
		w := weights[i]
		for j, f := range vec {
			combined[j] += w * float64(f)
		}
		totalWeight += w
	}

	if totalWeight == 0 {
		return nil, apperr.BadInput("no embeddable parts present", nil)
	}

	return renormalize(combined), nil
}

// renormalize scales a vector to unit L2 norm.
func renormalize(v []float64) model.EmbeddingVector {
	var sumSquares float64
	for _, f := range v {
		sumSquares += f * f
	}
	norm := math.Sqrt(sumSquares)
	out := make(model.EmbeddingVector, len(v))
	if norm == 0 {
		return out
	}
	for i, f := range v {
		out[i] = float32(f / norm)
	}
	return out
}

// IsUnitNorm checks the spec.md §8 unit-norm invariant with its 1e-5
// tolerance.
func IsUnitNorm(v model.EmbeddingVector) bool {
	var sumSquares float64
	for _, f := range v {
		sumSquares += float64(f) * float64(f)
	}
	return math.Abs(math.Sqrt(sumSquares)-1) < 1e-5
}

// contentHash is sha256-hex of the concatenation of raw parts in
// canonical order, with missing parts as empty string.
func contentHash(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func valueOr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// EncodeQuery wraps a free-text query with the retrieval-style "query: "
// prefix before encoding, per spec.md §4.9.
func EncodeQuery(ctx context.Context, embedder Embedder, text string) (model.EmbeddingVector, error) {
	return embedder.Encode(ctx, "query: "+PreEncodeNormalize(text), true)
}

// Cosine computes cosine similarity between two equal-dimension vectors.
func Cosine(a, b model.EmbeddingVector) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
