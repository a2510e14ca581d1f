// Package table implements C12: the Table Detector, deriving row groupings
// from OCR line polygons by y-center bucketing, grounded structurally on
// the teacher's internal/processor/layout_analyzer.go (which groups lines
// into rows by a different, delimiter-based mechanism; only its
// row/table-building naming and structure carry over here, since this
// spec's bucketed-y-coordinate grouping is a distinct algorithm).
package table

import (
	"sort"

	"github.com/nexus-talent/resume-match/internal/model"
)

// BucketPx is the y-center rounding granularity from spec.md §4.12.
const BucketPx = 25

// Table is a detected run of consecutive multi-line rows.
type Table struct {
	Rows     [][]string
	RowCount int
	ColCount int
}

// Detect buckets lines by rounded y-center, promotes any bucket with 2+
// lines to a row, and groups consecutive such rows into tables.
func Detect(lines []model.OcrLine) []Table {
	buckets := map[int][]model.OcrLine{}
	var bucketOrder []int
	for _, l := range lines {
		b := roundToBucket(l.CenterY())
		if _, seen := buckets[b]; !seen {
			bucketOrder = append(bucketOrder, b)
		}
		buckets[b] = append(buckets[b], l)
	}
	sort.Ints(bucketOrder)

	var rows [][]string
	var isRow []bool
	for _, b := range bucketOrder {
		bucketLines := buckets[b]
		sort.SliceStable(bucketLines, func(i, j int) bool { return bucketLines[i].LeftX() < bucketLines[j].LeftX() })
		row := make([]string, len(bucketLines))
		for i, l := range bucketLines {
			row[i] = l.Text
		}
		rows = append(rows, row)
		isRow = append(isRow, len(bucketLines) >= 2)
	}

	var tables []Table
	i := 0
	for i < len(rows) {
		if !isRow[i] {
			i++
			continue
		}
		j := i
		for j < len(rows) && isRow[j] {
			j++
		}
		if j-i >= 2 {
			tables = append(tables, buildTable(rows[i:j]))
		}
		i = j
	}
	return tables
}

func buildTable(rows [][]string) Table {
	maxCols := 0
	for _, r := range rows {
		if len(r) > maxCols {
			maxCols = len(r)
		}
	}
	return Table{Rows: rows, RowCount: len(rows), ColCount: maxCols}
}

func roundToBucket(y int) int {
	if y >= 0 {
		return ((y + BucketPx/2) / BucketPx) * BucketPx
	}
	return -((-y + BucketPx/2) / BucketPx) * BucketPx
}
