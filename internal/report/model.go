// Package report turns fetched sales and expenses into a format-agnostic report model.
//
// The pipeline is period filter → aggregation → model builder; renderers live in
// package export. Nothing here performs I/O or keeps state between calls.
package report

import (
	"time"

	"github.com/shopspring/decimal"
)

// CellKind tells typed renderers how to emit a cell
type CellKind int

const (
	CellText CellKind = iota
	CellDate
	CellMoney
	CellInteger
	CellPercent
)

// Cell is a rendered value. Text is always set; Value is meaningful for the numeric kinds.
type Cell struct {
	Kind  CellKind
	Text  string
	Value decimal.Decimal
}

// IsNumeric reports whether the cell carries a number
func (c Cell) IsNumeric() bool {
	return c.Kind == CellMoney || c.Kind == CellInteger || c.Kind == CellPercent
}

// TextCell builds a plain text cell
func TextCell(s string) Cell {
	return Cell{Kind: CellText, Text: s}
}

// DateCell builds a dd/MM/yyyy cell; zero dates render empty
func DateCell(t time.Time) Cell {
	return Cell{Kind: CellDate, Text: FormatDate(t)}
}

// MoneyCell builds a currency cell
func MoneyCell(d decimal.Decimal) Cell {
	return Cell{Kind: CellMoney, Text: FormatCurrency(d), Value: d}
}

// IntegerCell builds a whole-number cell
func IntegerCell(d decimal.Decimal) Cell {
	return Cell{Kind: CellInteger, Text: d.StringFixed(0), Value: d.Round(0)}
}

// PercentCell builds a percentage cell with one fractional digit
func PercentCell(d decimal.Decimal) Cell {
	return Cell{Kind: CellPercent, Text: FormatPercent(d), Value: d.Round(1)}
}

// Field is a label/value metadata pair
type Field struct {
	Label string
	Value string
}

// SummaryRow is one labelled figure of the summary block
type SummaryRow struct {
	Group string
	Label string
	Value Cell
}

// Column describes a table column; Width is a hint in characters
type Column struct {
	Name  string
	Width float64
}

// Section is a titled table
type Section struct {
	Heading string
	Columns []Column
	Rows    [][]Cell
}

// Model is the intermediate representation consumed by every exporter
type Model struct {
	Topic       string
	Title       string
	GeneratedAt time.Time
	PeriodLabel string
	Filters     []Field
	Summary     []SummaryRow
	Sections    []Section

	// SkippedRecords counts records dropped for having no usable date
	SkippedRecords int
}

// RowCount returns the number of table rows across all sections
func (m *Model) RowCount() int {
	n := 0
	for _, s := range m.Sections {
		n += len(s.Rows)
	}
	return n
}

// SummaryValue returns the summary cell with the given label
func (m *Model) SummaryValue(label string) (Cell, bool) {
	for _, row := range m.Summary {
		if row.Label == label {
			return row.Value, true
		}
	}
	return Cell{}, false
}
