package export

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"
	"strings"
	"unicode/utf8"

	"github.com/dafibh/vendas/vendas-backend/internal/domain"
	"github.com/dafibh/vendas/vendas-backend/internal/report"
	"github.com/disintegration/imaging"
	"github.com/go-pdf/fpdf"
)

const (
	pdfMargin         = 15.0
	pdfFont           = "Helvetica"
	pdfRowHeight      = 7.0
	pdfTitleHeight    = 10.0
	pdfHeadingHeight  = 9.0
	pdfLineHeight     = 6.0
	pdfLogoWidth      = 30.0
	pdfLogoName       = "logo"
	pdfLogoGap        = 3.0
	pdfCellLineHeight = 4.5
	pdfCellPadding    = 1.0
	pdfTableFontSize  = 9.0
	pdfMinFontSize    = 6.0

	// LogoMaxWidthPx bounds the logo before it is embedded
	LogoMaxWidthPx = 300
)

// PDFOption configures a PDFExporter
type PDFOption func(*PDFExporter)

// WithLogo draws the given PNG in the top-right corner of the first page.
// Use PrepareLogo to scale an arbitrary image first.
func WithLogo(png []byte) PDFOption {
	return func(e *PDFExporter) {
		e.logo = png
	}
}

// PDFExporter writes an A4 document with paginated tables
type PDFExporter struct {
	logo []byte
}

// NewPDFExporter creates a new PDFExporter
func NewPDFExporter(opts ...PDFOption) *PDFExporter {
	e := &PDFExporter{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *PDFExporter) Format() domain.ExportFormat { return domain.ExportFormatPDF }
func (e *PDFExporter) Extension() string           { return "pdf" }
func (e *PDFExporter) ContentType() string         { return "application/pdf" }

// PrepareLogo decodes a PNG or JPEG, shrinks it to LogoMaxWidthPx and re-encodes it as PNG
func PrepareLogo(raw []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode logo: %w", err)
	}
	if img.Bounds().Dx() > LogoMaxWidthPx {
		img = imaging.Resize(img, LogoMaxWidthPx, 0, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode logo: %w", err)
	}
	return buf.Bytes(), nil
}

// Render lays the model out top to bottom with a running cursor.
// Table cells wrap onto as many lines as they need; a row that would cross the
// bottom margin starts a new page and repeats the header row.
func (e *PDFExporter) Render(m *report.Model) ([]byte, error) {
	r := newPDFRenderer(m)
	pdf := r.pdf

	pdf.AddPage()
	if len(e.logo) > 0 {
		r.drawLogo(e.logo)
	}
	r.drawHeader(m)
	r.drawSummary(m.Summary)
	for _, s := range m.Sections {
		r.drawSection(s)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("layout pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

type pdfRenderer struct {
	pdf          *fpdf.Fpdf
	tr           func(string) string
	pageWidth    float64
	pageHeight   float64
	contentWidth float64
	logoBottom   float64
}

func newPDFRenderer(m *report.Model) *pdfRenderer {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(false)
	pdf.SetTitle(m.Title, true)
	pdf.SetCreator("vendas-backend", true)
	pdf.SetCreationDate(m.GeneratedAt)
	pdf.SetModificationDate(m.GeneratedAt)
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)

	r := &pdfRenderer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	r.pageWidth, r.pageHeight = pdf.GetPageSize()
	r.contentWidth = r.pageWidth - 2*pdfMargin
	return r
}

// drawLogo places the logo in the top-right corner and records its bottom edge
func (r *pdfRenderer) drawLogo(logo []byte) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(logo))
	if err != nil {
		r.pdf.SetError(fmt.Errorf("logo: %w", err))
		return
	}
	if cfg.Width == 0 {
		r.pdf.SetError(fmt.Errorf("logo: empty image"))
		return
	}
	height := pdfLogoWidth * float64(cfg.Height) / float64(cfg.Width)

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	r.pdf.RegisterImageOptionsReader(pdfLogoName, opts, bytes.NewReader(logo))
	x := r.pageWidth - pdfMargin - pdfLogoWidth
	r.pdf.ImageOptions(pdfLogoName, x, pdfMargin, pdfLogoWidth, height, false, opts, 0, "")
	r.logoBottom = pdfMargin + height
}

// drawHeader writes title and metadata beside the logo, then moves the cursor below both
func (r *pdfRenderer) drawHeader(m *report.Model) {
	width := r.contentWidth
	if r.logoBottom > 0 {
		width -= pdfLogoWidth + pdfLogoGap
	}
	r.pdf.SetFont(pdfFont, "B", 16)
	r.pdf.MultiCell(width, pdfTitleHeight, r.tr(m.Title), "", "L", false)
	r.pdf.SetFont(pdfFont, "", 10)
	for _, f := range metadataFields(m) {
		r.pdf.MultiCell(width, pdfLineHeight, r.tr(f.Label+": "+f.Value), "", "L", false)
	}
	r.pdf.Ln(pdfLineHeight / 2)
	if r.logoBottom > 0 && r.pdf.GetY() < r.logoBottom+pdfLogoGap {
		r.pdf.SetY(r.logoBottom + pdfLogoGap)
	}
}

func (r *pdfRenderer) drawSummary(rows []report.SummaryRow) {
	labelWidth := r.contentWidth * 0.6
	widths := []float64{labelWidth, r.contentWidth - labelWidth}
	group := ""
	for _, row := range rows {
		if row.Group != group {
			group = row.Group
			r.ensureSpace(pdfHeadingHeight + pdfRowHeight)
			r.drawHeading(group)
		}
		r.pdf.SetFont(pdfFont, "", 10)
		cells, h := r.layoutRow([]report.Cell{report.TextCell(row.Label), row.Value}, widths, 10)
		r.ensureSpace(h)
		r.drawRow(cells, widths, h, false)
	}
}

func (r *pdfRenderer) drawSection(s report.Section) {
	widths := r.columnWidths(s.Columns)
	r.ensureSpace(pdfHeadingHeight + 2*pdfRowHeight)
	r.drawHeading(s.Heading)
	r.drawTableHeader(s.Columns, widths)

	for _, row := range s.Rows {
		r.pdf.SetFont(pdfFont, "", pdfTableFontSize)
		cells, h := r.layoutRow(row, widths, pdfTableFontSize)
		if r.ensureSpace(h) {
			r.drawTableHeader(s.Columns, widths)
			r.pdf.SetFont(pdfFont, "", pdfTableFontSize)
		}
		r.drawRow(cells, widths, h, false)
	}
}

func (r *pdfRenderer) drawHeading(text string) {
	r.pdf.Ln(pdfLineHeight / 2)
	r.pdf.SetFont(pdfFont, "B", 12)
	r.pdf.CellFormat(r.contentWidth, pdfHeadingHeight, r.tr(text), "", 1, "L", false, 0, "")
}

func (r *pdfRenderer) drawTableHeader(cols []report.Column, widths []float64) {
	r.pdf.SetFont(pdfFont, "B", pdfTableFontSize)
	r.pdf.SetFillColor(217, 217, 217)
	names := make([]report.Cell, len(cols))
	for i, col := range cols {
		names[i] = report.TextCell(col.Name)
	}
	cells, h := r.layoutRow(names, widths, pdfTableFontSize)
	for i := range cells {
		cells[i].align = "C"
	}
	r.drawRow(cells, widths, h, true)
}

// pdfCell is one laid-out table cell. Text cells wrap; numeric cells stay on a
// single line and shrink their font instead.
type pdfCell struct {
	lines    []string
	align    string
	fontSize float64
}

// layoutRow wraps every cell of row with the current font and returns the row height
func (r *pdfRenderer) layoutRow(row []report.Cell, widths []float64, fontSize float64) ([]pdfCell, float64) {
	cells := make([]pdfCell, len(widths))
	maxLines := 1
	for i, w := range widths {
		var c report.Cell
		if i < len(row) {
			c = row[i]
		}
		if c.IsNumeric() {
			cells[i] = pdfCell{lines: []string{r.tr(c.Text)}, align: "R", fontSize: r.shrinkToFit(c.Text, w, fontSize)}
			r.pdf.SetFontSize(fontSize)
			continue
		}
		cells[i] = pdfCell{lines: r.wrap(c.Text, w), align: "L", fontSize: fontSize}
		if n := len(cells[i].lines); n > maxLines {
			maxLines = n
		}
	}
	h := float64(maxLines)*pdfCellLineHeight + 2*pdfCellPadding
	if h < pdfRowHeight {
		h = pdfRowHeight
	}
	return cells, h
}

// drawRow draws bordered cells of height h at the cursor and moves below them
func (r *pdfRenderer) drawRow(cells []pdfCell, widths []float64, h float64, fill bool) {
	style := "D"
	if fill {
		style = "FD"
	}
	x0, y := r.pdf.GetX(), r.pdf.GetY()
	x := x0
	for i, w := range widths {
		r.pdf.Rect(x, y, w, h, style)
		c := cells[i]
		r.pdf.SetFontSize(c.fontSize)
		top := y + (h-float64(len(c.lines))*pdfCellLineHeight)/2
		for j, line := range c.lines {
			r.pdf.SetXY(x, top+float64(j)*pdfCellLineHeight)
			r.pdf.CellFormat(w, pdfCellLineHeight, line, "", 0, c.align, false, 0, "")
		}
		x += w
	}
	r.pdf.SetXY(x0, y+h)
}

// ensureSpace starts a new page when h does not fit above the bottom margin.
// It reports whether a page was added.
func (r *pdfRenderer) ensureSpace(h float64) bool {
	if r.pdf.GetY()+h <= r.pageHeight-pdfMargin {
		return false
	}
	r.pdf.AddPage()
	return true
}

// columnWidths scales the width hints to the printable width
func (r *pdfRenderer) columnWidths(cols []report.Column) []float64 {
	total := 0.0
	for _, c := range cols {
		total += columnHint(c)
	}
	widths := make([]float64, len(cols))
	for i, c := range cols {
		widths[i] = r.contentWidth * columnHint(c) / total
	}
	return widths
}

func columnHint(c report.Column) float64 {
	if c.Width <= 0 {
		return 10
	}
	return c.Width
}

func (r *pdfRenderer) textWidth(s string) float64 {
	return r.pdf.GetStringWidth(r.tr(s))
}

func (r *pdfRenderer) innerWidth(width float64) float64 {
	return width - 2*r.pdf.GetCellMargin()
}

// wrap splits s into lines that fit width, breaking at spaces and explicit
// newlines, and inside words only when a single word is wider than the cell.
// The returned lines are translated to the font's code page.
func (r *pdfRenderer) wrap(s string, width float64) []string {
	limit := r.innerWidth(width)
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		line := ""
		for _, word := range strings.Fields(para) {
			candidate := word
			if line != "" {
				candidate = line + " " + word
			}
			if r.textWidth(candidate) <= limit {
				line = candidate
				continue
			}
			if line != "" {
				lines = append(lines, line)
			}
			for r.textWidth(word) > limit {
				cut := r.fitPrefix(word, limit)
				lines = append(lines, word[:cut])
				word = word[cut:]
			}
			line = word
		}
		lines = append(lines, line)
	}
	for i := range lines {
		lines[i] = r.tr(lines[i])
	}
	return lines
}

// fitPrefix returns the byte length of the longest prefix of word, at least one rune, that fits limit
func (r *pdfRenderer) fitPrefix(word string, limit float64) int {
	cut := 0
	for i := range word {
		if i > 0 && r.textWidth(word[:i]) > limit {
			break
		}
		cut = i
	}
	if cut == 0 {
		_, size := utf8.DecodeRuneInString(word)
		return size
	}
	return cut
}

// shrinkToFit returns the largest font size, down to pdfMinFontSize, at which s fits width.
// It leaves the font size changed; callers restore it.
func (r *pdfRenderer) shrinkToFit(s string, width, size float64) float64 {
	limit := r.innerWidth(width)
	r.pdf.SetFontSize(size)
	for size > pdfMinFontSize && r.textWidth(s) > limit {
		size -= 0.5
		r.pdf.SetFontSize(size)
	}
	return size
}
