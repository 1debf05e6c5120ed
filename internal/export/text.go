package export

import (
	"strconv"
	"strings"

	"github.com/dafibh/vendas/vendas-backend/internal/domain"
	"github.com/dafibh/vendas/vendas-backend/internal/report"
)

const (
	textSeparator       = " - "
	generatedAtLayout   = "02/01/2006 15:04"
	labelGeneratedAt    = "Gerado em"
	labelPeriod         = "Período"
	labelSkippedRecords = "Registros sem data"
)

// TextExporter writes a flat, line-oriented transcript of the report
type TextExporter struct{}

// NewTextExporter creates a new TextExporter
func NewTextExporter() *TextExporter {
	return &TextExporter{}
}

func (e *TextExporter) Format() domain.ExportFormat { return domain.ExportFormatText }
func (e *TextExporter) Extension() string           { return "txt" }
func (e *TextExporter) ContentType() string         { return "text/plain; charset=utf-8" }

// Render writes title and metadata, the summary as "label: value" lines, then
// each section heading with its column names followed by one line per row.
func (e *TextExporter) Render(m *report.Model) ([]byte, error) {
	var b strings.Builder

	b.WriteString(m.Title)
	b.WriteByte('\n')
	for _, f := range metadataFields(m) {
		writeField(&b, f.Label, f.Value)
	}

	group := ""
	for _, row := range m.Summary {
		if row.Group != group {
			group = row.Group
			b.WriteByte('\n')
			b.WriteString(group)
			b.WriteByte('\n')
		}
		writeField(&b, row.Label, row.Value.Text)
	}

	for _, s := range m.Sections {
		b.WriteByte('\n')
		b.WriteString(s.Heading)
		b.WriteByte('\n')
		b.WriteString(columnNames(s.Columns))
		b.WriteByte('\n')
		for _, row := range s.Rows {
			b.WriteString(joinRow(row))
			b.WriteByte('\n')
		}
	}
	return []byte(b.String()), nil
}

func writeField(b *strings.Builder, label, value string) {
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteByte('\n')
}

// joinRow keeps one field per cell, empty ones included, so positions match the header
func joinRow(row []report.Cell) string {
	parts := make([]string, len(row))
	for i, c := range row {
		parts[i] = c.Text
	}
	return strings.Join(parts, textSeparator)
}

func columnNames(cols []report.Column) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return strings.Join(names, textSeparator)
}

// metadataFields lists the header lines shared by every format
func metadataFields(m *report.Model) []report.Field {
	fields := []report.Field{{Label: labelGeneratedAt, Value: m.GeneratedAt.Format(generatedAtLayout)}}
	if m.PeriodLabel != "" {
		fields = append(fields, report.Field{Label: labelPeriod, Value: m.PeriodLabel})
	}
	fields = append(fields, m.Filters...)
	if m.SkippedRecords > 0 {
		fields = append(fields, report.Field{Label: labelSkippedRecords, Value: strconv.Itoa(m.SkippedRecords)})
	}
	return fields
}
