package table

import (
	"testing"

	"github.com/nexus-talent/resume-match/internal/model"
)

func cellLine(text string, x, y int) model.OcrLine {
	return model.OcrLine{Text: text, BBox: [4]model.Point{{X: x, Y: y}, {X: x + 50, Y: y}, {X: x + 50, Y: y + 10}, {X: x, Y: y + 10}}}
}

func TestDetectGroupsConsecutiveMultiLineRowsIntoTable(t *testing.T) {
	lines := []model.OcrLine{
		cellLine("Skill", 0, 100), cellLine("Level", 200, 100),
		cellLine("Go", 0, 125), cellLine("Expert", 200, 125),
		cellLine("Python", 0, 150), cellLine("Advanced", 200, 150),
	}
	tables := Detect(lines)
	if len(tables) != 1 {
		t.Fatalf("expected 1 detected table, got %d: %+v", len(tables), tables)
	}
	tbl := tables[0]
	if tbl.RowCount != 3 {
		t.Fatalf("expected 3 rows, got %d", tbl.RowCount)
	}
	if tbl.ColCount != 2 {
		t.Fatalf("expected 2 columns, got %d", tbl.ColCount)
	}
	if tbl.Rows[0][0] != "Skill" || tbl.Rows[0][1] != "Level" {
		t.Fatalf("expected left-x-sorted row, got %v", tbl.Rows[0])
	}
}

func TestDetectIgnoresSingleLineRows(t *testing.T) {
	lines := []model.OcrLine{cellLine("Summary", 0, 0)}
	if tables := Detect(lines); len(tables) != 0 {
		t.Fatalf("expected no tables for single-column text, got %+v", tables)
	}
}

func TestDetectRequiresTwoConsecutiveRows(t *testing.T) {
	lines := []model.OcrLine{
		cellLine("A", 0, 0), cellLine("B", 100, 0),
	}
	if tables := Detect(lines); len(tables) != 0 {
		t.Fatalf("expected no table from a single qualifying row, got %+v", tables)
	}
}
