package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ExportFormat identifies one of the artifact renderers
type ExportFormat string

const (
	ExportFormatPDF  ExportFormat = "pdf"
	ExportFormatXLSX ExportFormat = "xlsx"
	ExportFormatText ExportFormat = "txt"
)

// ParseExportFormat accepts the format names used by the export menu
func ParseExportFormat(s string) (ExportFormat, error) {
	switch s {
	case "pdf":
		return ExportFormatPDF, nil
	case "xlsx", "excel":
		return ExportFormatXLSX, nil
	case "txt", "text":
		return ExportFormatText, nil
	}
	return "", ErrUnsupportedFormat
}

// ExportRecord is the audit entry written after an artifact is archived
type ExportRecord struct {
	ID          uuid.UUID    `json:"id"`
	Topic       string       `json:"topic"`
	Format      ExportFormat `json:"format"`
	Filename    string       `json:"filename"`
	ObjectKey   string       `json:"objectKey"`
	SizeBytes   int64        `json:"sizeBytes"`
	RowCount    int          `json:"rowCount"`
	GeneratedAt time.Time    `json:"generatedAt"`
	CreatedAt   time.Time    `json:"createdAt"`

	// DownloadURL is a short-lived link, filled in when listing
	DownloadURL string `json:"downloadUrl,omitempty"`
}

// ExportLogRepository persists export audit entries
type ExportLogRepository interface {
	Create(ctx context.Context, record *ExportRecord) error
	ListRecent(ctx context.Context, topic string, limit int) ([]*ExportRecord, error)
}
