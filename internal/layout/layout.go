// Package layout implements C3: reading-order reconstruction by splitting
// a page's OcrLine list into left/right column text, grounded on
// original_source's separate_columns (same 500px threshold, confirming
// spec.md's explicit default) and the teacher's internal/processor/
// layout_analyzer.go column-handling idiom.
package layout

import (
	"sort"
	"strings"

	"github.com/nexus-talent/resume-match/internal/model"
)

// DefaultColumnSplitX is spec.md §4.3's default left/right threshold.
const DefaultColumnSplitX = 500

// Split assigns each line to the left or right column by its left-x
// coordinate against threshold, sorts each column by top-y ascending, and
// returns the two newline-joined strings.
func Split(lines []model.OcrLine, thresholdPx int) (left, right string) {
	var leftLines, rightLines []model.OcrLine
	for _, l := range lines {
		if l.LeftX() < thresholdPx {
			leftLines = append(leftLines, l)
		} else {
			rightLines = append(rightLines, l)
		}
	}
	sortByTopY(leftLines)
	sortByTopY(rightLines)
	return joinText(leftLines), joinText(rightLines)
}

// SplitOrRaw runs Split when lines carry usable geometry; when the caller
// supplies no geometry (an empty line set, or every line's bbox is the
// zero value) the splitter is skipped and the raw newline-joined text is
// returned instead, per spec.md §4.3.
func SplitOrRaw(lines []model.OcrLine, thresholdPx int) (left, right string) {
	if !hasGeometry(lines) {
		sorted := make([]model.OcrLine, len(lines))
		copy(sorted, lines)
		return joinText(sorted), ""
	}
	return Split(lines, thresholdPx)
}

func hasGeometry(lines []model.OcrLine) bool {
	for _, l := range lines {
		if l.BBox != ([4]model.Point{}) {
			return true
		}
	}
	return false
}

func sortByTopY(lines []model.OcrLine) {
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].TopY() < lines[j].TopY()
	})
}

func joinText(lines []model.OcrLine) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = l.Text
	}
	return strings.Join(parts, "\n")
}
