package layout

import (
	"strings"
	"testing"

	"github.com/nexus-talent/resume-match/internal/model"
)

func line(text string, x, y int) model.OcrLine {
	return model.OcrLine{
		Text: text,
		BBox: [4]model.Point{{X: x, Y: y}, {X: x + 100, Y: y}, {X: x + 100, Y: y + 10}, {X: x, Y: y + 10}},
	}
}

func TestSplitAssignsByLeftX(t *testing.T) {
	lines := []model.OcrLine{
		line("right-2", 600, 20),
		line("left-1", 10, 10),
		line("right-1", 550, 10),
		line("left-2", 20, 20),
	}
	left, right := Split(lines, DefaultColumnSplitX)
	if left != "left-1\nleft-2" {
		t.Fatalf("unexpected left column: %q", left)
	}
	if right != "right-1\nright-2" {
		t.Fatalf("unexpected right column: %q", right)
	}
}

// Column-split totality invariant (spec.md §8): concatenation (multiset)
// of left+right lines equals the input line set.
func TestSplitIsTotal(t *testing.T) {
	lines := []model.OcrLine{
		line("a", 0, 0), line("b", 900, 0), line("c", 499, 5), line("d", 500, 5),
	}
	left, right := Split(lines, DefaultColumnSplitX)
	combined := strings.Fields(strings.ReplaceAll(left+"\n"+right, "\n", " "))
	if len(combined) != len(lines) {
		t.Fatalf("expected %d total lines across both columns, got %d", len(lines), len(combined))
	}
}

func TestSplitOrRawSkipsWhenNoGeometry(t *testing.T) {
	lines := []model.OcrLine{{Text: "first"}, {Text: "second"}}
	left, right := SplitOrRaw(lines, DefaultColumnSplitX)
	if right != "" {
		t.Fatalf("expected right column empty when geometry absent, got %q", right)
	}
	if left != "first\nsecond" {
		t.Fatalf("expected raw newline-joined text, got %q", left)
	}
}
