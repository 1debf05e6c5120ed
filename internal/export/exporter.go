// Package export renders a report.Model into downloadable artifacts.
package export

import (
	"fmt"
	"time"

	"github.com/dafibh/vendas/vendas-backend/internal/domain"
	"github.com/dafibh/vendas/vendas-backend/internal/report"
)

const filenameDateLayout = "2006_01_02"

// Exporter renders a model into one artifact format.
// Implementations must be safe for concurrent use.
type Exporter interface {
	Render(m *report.Model) ([]byte, error)
	Format() domain.ExportFormat
	Extension() string
	ContentType() string
}

// Artifact is a rendered report ready to be downloaded or archived
type Artifact struct {
	Filename    string
	ContentType string
	Format      domain.ExportFormat
	Data        []byte
}

// Size returns the artifact length in bytes
func (a *Artifact) Size() int64 {
	return int64(len(a.Data))
}

// Filename builds "<topic>_<YYYY_MM_DD>.<ext>"
func Filename(topic string, generatedAt time.Time, ext string) string {
	return fmt.Sprintf("%s_%s.%s", topic, generatedAt.Format(filenameDateLayout), ext)
}

// Export renders m with e and wraps the result in an Artifact
func Export(e Exporter, m *report.Model) (*Artifact, error) {
	data, err := e.Render(m)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", e.Format(), err)
	}
	return &Artifact{
		Filename:    Filename(m.Topic, m.GeneratedAt, e.Extension()),
		ContentType: e.ContentType(),
		Format:      e.Format(),
		Data:        data,
	}, nil
}

// Registry resolves exporters by format
type Registry struct {
	exporters map[domain.ExportFormat]Exporter
}

// NewRegistry creates a registry holding the given exporters
func NewRegistry(exporters ...Exporter) *Registry {
	r := &Registry{exporters: make(map[domain.ExportFormat]Exporter, len(exporters))}
	for _, e := range exporters {
		r.exporters[e.Format()] = e
	}
	return r
}

// NewDefaultRegistry registers the PDF, spreadsheet and text exporters
func NewDefaultRegistry(pdfOpts ...PDFOption) *Registry {
	return NewRegistry(NewPDFExporter(pdfOpts...), NewXLSXExporter(), NewTextExporter())
}

// Get returns the exporter for format or domain.ErrUnsupportedFormat
func (r *Registry) Get(format domain.ExportFormat) (Exporter, error) {
	e, ok := r.exporters[format]
	if !ok {
		return nil, domain.ErrUnsupportedFormat
	}
	return e, nil
}
