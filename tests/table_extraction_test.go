// Table-detection accuracy test: builds a synthetic multi-table OCR page
// from literal line fixtures and checks the bucket-rule detector (C12)
// recovers every table's row/column shape, the way the rest of this
// repository tests parsing components — no test image or ground-truth
// JSON fixtures required.
package tests

import (
	"testing"

	"github.com/nexus-talent/resume-match/internal/model"
	"github.com/nexus-talent/resume-match/internal/table"
)

func cell(text string, x, y int) model.OcrLine {
	return model.OcrLine{Text: text, BBox: [4]model.Point{{X: x, Y: y}, {X: x + 60, Y: y}, {X: x + 60, Y: y + 12}, {X: x, Y: y + 12}}}
}

func TestTableDetectionRecoversTwoDistinctTables(t *testing.T) {
	var lines []model.OcrLine

	// First table: a 3-row, 2-column skills/level grid.
	lines = append(lines,
		cell("Skill", 0, 100), cell("Level", 200, 100),
		cell("Go", 0, 125), cell("Expert", 200, 125),
		cell("SQL", 0, 150), cell("Intermediate", 200, 150),
	)

	// A lone summary line between tables must not merge into either table.
	lines = append(lines, cell("Summary", 0, 300))

	// Second table: a 4-row, 3-column certification grid, far enough below
	// that its y-buckets never collide with the first table's.
	lines = append(lines,
		cell("Cert", 0, 500), cell("Issuer", 200, 500), cell("Year", 400, 500),
		cell("AWS SA", 0, 525), cell("Amazon", 200, 525), cell("2021", 400, 525),
		cell("CKA", 0, 550), cell("CNCF", 200, 550), cell("2022", 400, 550),
		cell("PMP", 0, 575), cell("PMI", 200, 575), cell("2023", 400, 575),
	)

	tables := table.Detect(lines)
	if len(tables) != 2 {
		t.Fatalf("expected 2 tables, got %d: %+v", len(tables), tables)
	}

	first, second := tables[0], tables[1]
	if first.RowCount != 3 || first.ColCount != 2 {
		t.Fatalf("expected first table 3x2, got %dx%d", first.RowCount, first.ColCount)
	}
	if second.RowCount != 4 || second.ColCount != 3 {
		t.Fatalf("expected second table 4x3, got %dx%d", second.RowCount, second.ColCount)
	}
	if first.Rows[0][0] != "Skill" || first.Rows[0][1] != "Level" {
		t.Fatalf("expected header row sorted by left-x, got %v", first.Rows[0])
	}
	if second.Rows[0][0] != "Cert" || second.Rows[0][2] != "Year" {
		t.Fatalf("expected second table header sorted by left-x, got %v", second.Rows[0])
	}
}

func TestTableDetectionIgnoresLoneSingleColumnLines(t *testing.T) {
	lines := []model.OcrLine{
		cell("Objective", 0, 0),
		cell("Seeking a senior engineering role.", 0, 20),
		cell("References available upon request.", 0, 40),
	}
	if tables := table.Detect(lines); len(tables) != 0 {
		t.Fatalf("expected no tables among prose lines, got %+v", tables)
	}
}
