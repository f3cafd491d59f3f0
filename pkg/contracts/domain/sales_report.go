package domain

import (
	"strconv"
)

// CellKind discriminates the value held by a Cell
type CellKind int

const (
	// CellAbsent marks an empty or missing field
	CellAbsent CellKind = iota
	// CellNumeric marks a field that read as a plain number
	CellNumeric
	// CellText marks any other non-empty field
	CellText
)

// String returns the kind name used in logs
func (k CellKind) String() string {
	switch k {
	case CellNumeric:
		return "numeric"
	case CellText:
		return "text"
	default:
		return "absent"
	}
}

// Cell is a single report field. Exactly one of Number or Text is meaningful,
// selected by Kind. Numeric cells keep their source text in Text.
type Cell struct {
	Kind   CellKind
	Number float64
	Text   string
}

// AbsentCell returns an empty cell
func AbsentCell() Cell {
	return Cell{Kind: CellAbsent}
}

// NumericCell returns a numeric cell
func NumericCell(v float64) Cell {
	return Cell{Kind: CellNumeric, Number: v, Text: strconv.FormatFloat(v, 'f', -1, 64)}
}

// TextCell returns a text cell
func TextCell(s string) Cell {
	return Cell{Kind: CellText, Text: s}
}

// String returns the cell as it appeared in the source report.
// Absent cells render as the empty string.
func (c Cell) String() string {
	if c.Kind == CellAbsent {
		return ""
	}
	return c.Text
}

// Row is one report record, aligned with Report.Columns
type Row []Cell

// Report is an uploaded sales report held in memory for one aggregation pass
type Report struct {
	Columns []string
	Rows    []Row
}

// ColumnIndex returns the position of the column with exactly the given name,
// or -1 when the header does not contain it.
func (r *Report) ColumnIndex(name string) int {
	for i, col := range r.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// Cell returns the cell at (row, col). Out of range columns read as absent.
func (r *Report) Cell(row, col int) Cell {
	if row < 0 || row >= len(r.Rows) || col < 0 || col >= len(r.Rows[row]) {
		return AbsentCell()
	}
	return r.Rows[row][col]
}

// BrandRule maps SKUs starting with Pattern to a brand Label.
// Rule order is significant: the first matching rule wins.
type BrandRule struct {
	Pattern string `yaml:"pattern" json:"pattern" validate:"required"`
	Label   string `yaml:"label" json:"label" validate:"required"`
}

// BrandSummary is one row of the brand-level sales summary
type BrandSummary struct {
	Brand         string  `json:"brand" csv:"Brand"`
	ConsumerSales float64 `json:"consumer_sales" csv:"Consumer Sales"`
	B2BSales      float64 `json:"b2b_sales" csv:"B2B Sales"`
	TotalSales    float64 `json:"total_sales" csv:"Total Sales"`
}

// SummaryHeader is the column order of every rendered summary table
var SummaryHeader = []string{"Brand", "Consumer Sales", "B2B Sales", "Total Sales"}
