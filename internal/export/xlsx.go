package export

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dafibh/vendas/vendas-backend/internal/domain"
	"github.com/dafibh/vendas/vendas-backend/internal/report"
	"github.com/xuri/excelize/v2"
)

const (
	// SummarySheet is the first sheet of every workbook
	SummarySheet = "Summary"

	defaultSheet      = "Sheet1"
	maxSheetNameRunes = 31
	moneyNumFmt       = 4 // #,##0.00
	integerNumFmt     = 1 // 0
	summaryLabelWidth = 30
	summaryValueWidth = 20
)

var (
	percentNumFmt     = `0.0"%"`
	sheetNameReplacer = strings.NewReplacer("[", "_", "]", "_", ":", "_", "*", "_", "?", "_", "/", "_", "\\", "_")
)

// XLSXExporter writes a workbook with a summary sheet and one sheet per section
type XLSXExporter struct{}

// NewXLSXExporter creates a new XLSXExporter
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

func (e *XLSXExporter) Format() domain.ExportFormat { return domain.ExportFormatXLSX }
func (e *XLSXExporter) Extension() string           { return "xlsx" }
func (e *XLSXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

type xlsxStyles struct {
	bold    int
	header  int
	money   int
	integer int
	percent int
}

// Render builds the workbook in memory
func (e *XLSXExporter) Render(m *report.Model) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	styles, err := newXLSXStyles(f)
	if err != nil {
		return nil, err
	}

	if err := f.SetSheetName(defaultSheet, SummarySheet); err != nil {
		return nil, fmt.Errorf("rename summary sheet: %w", err)
	}
	if err := writeSummarySheet(f, styles, m); err != nil {
		return nil, err
	}

	used := map[string]bool{strings.ToLower(SummarySheet): true}
	for _, s := range m.Sections {
		name := uniqueSheetName(SheetName(s.Heading), used)
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %q: %w", name, err)
		}
		if err := writeSectionSheet(f, styles, name, s); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func newXLSXStyles(f *excelize.File) (xlsxStyles, error) {
	var s xlsxStyles
	var err error
	if s.bold, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return s, fmt.Errorf("bold style: %w", err)
	}
	s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9D9D9"}, Pattern: 1},
	})
	if err != nil {
		return s, fmt.Errorf("header style: %w", err)
	}
	if s.money, err = f.NewStyle(&excelize.Style{NumFmt: moneyNumFmt}); err != nil {
		return s, fmt.Errorf("money style: %w", err)
	}
	if s.integer, err = f.NewStyle(&excelize.Style{NumFmt: integerNumFmt}); err != nil {
		return s, fmt.Errorf("integer style: %w", err)
	}
	if s.percent, err = f.NewStyle(&excelize.Style{CustomNumFmt: &percentNumFmt}); err != nil {
		return s, fmt.Errorf("percent style: %w", err)
	}
	return s, nil
}

func writeSummarySheet(f *excelize.File, styles xlsxStyles, m *report.Model) error {
	w := &sheetWriter{f: f, sheet: SummarySheet}

	w.row++
	w.set(1, m.Title, styles.bold)
	for _, field := range metadataFields(m) {
		w.row++
		w.set(1, field.Label, 0)
		w.set(2, field.Value, 0)
	}

	group := ""
	for _, row := range m.Summary {
		if row.Group != group {
			group = row.Group
			w.row += 2
			w.set(1, group, styles.bold)
		}
		w.row++
		w.set(1, row.Label, 0)
		w.cell(2, row.Value, styles)
	}

	if w.err != nil {
		return fmt.Errorf("write summary sheet: %w", w.err)
	}
	if err := f.SetColWidth(SummarySheet, "A", "A", summaryLabelWidth); err != nil {
		return err
	}
	return f.SetColWidth(SummarySheet, "B", "B", summaryValueWidth)
}

func writeSectionSheet(f *excelize.File, styles xlsxStyles, name string, s report.Section) error {
	w := &sheetWriter{f: f, sheet: name, row: 1}
	for i, col := range s.Columns {
		w.set(i+1, col.Name, styles.header)
		if col.Width > 0 {
			colName, err := excelize.ColumnNumberToName(i + 1)
			if err != nil {
				return err
			}
			if err := f.SetColWidth(name, colName, colName, col.Width); err != nil {
				return fmt.Errorf("set width on %q: %w", name, err)
			}
		}
	}
	for _, row := range s.Rows {
		w.row++
		for i, c := range row {
			w.cell(i+1, c, styles)
		}
	}
	if w.err != nil {
		return fmt.Errorf("write sheet %q: %w", name, w.err)
	}
	return nil
}

// sheetWriter keeps the first error so callers can check once after a batch of writes
type sheetWriter struct {
	f     *excelize.File
	sheet string
	row   int
	err   error
}

func (w *sheetWriter) set(col int, value any, style int) {
	if w.err != nil {
		return
	}
	ref, err := excelize.CoordinatesToCellName(col, w.row)
	if err != nil {
		w.err = err
		return
	}
	if err := w.f.SetCellValue(w.sheet, ref, value); err != nil {
		w.err = err
		return
	}
	if style != 0 {
		w.err = w.f.SetCellStyle(w.sheet, ref, ref, style)
	}
}

func (w *sheetWriter) cell(col int, c report.Cell, styles xlsxStyles) {
	switch c.Kind {
	case report.CellMoney:
		w.set(col, c.Value.InexactFloat64(), styles.money)
	case report.CellInteger:
		w.set(col, c.Value.IntPart(), styles.integer)
	case report.CellPercent:
		w.set(col, c.Value.InexactFloat64(), styles.percent)
	default:
		w.set(col, c.Text, 0)
	}
}

// SheetName applies Excel's sheet naming rules: no []:*?/\ and at most 31 characters
func SheetName(heading string) string {
	name := strings.TrimSpace(sheetNameReplacer.Replace(heading))
	name = strings.Trim(name, "'")
	if name == "" {
		name = "Sheet"
	}
	if utf8.RuneCountInString(name) > maxSheetNameRunes {
		name = string([]rune(name)[:maxSheetNameRunes])
	}
	return name
}

func uniqueSheetName(name string, used map[string]bool) string {
	candidate := name
	for i := 2; used[strings.ToLower(candidate)]; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		runes := []rune(name)
		if len(runes)+len(suffix) > maxSheetNameRunes {
			runes = runes[:maxSheetNameRunes-len(suffix)]
		}
		candidate = string(runes) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}
