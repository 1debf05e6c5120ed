package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dafibh/vendas/vendas-backend/internal/domain"
	"github.com/dafibh/vendas/vendas-backend/internal/export"
	"github.com/dafibh/vendas/vendas-backend/internal/report"
	"github.com/dafibh/vendas/vendas-backend/internal/repository/storage"
	"github.com/rs/zerolog/log"
)

// DownloadURLExpiry is how long archived download links stay valid
const DownloadURLExpiry = 15 * time.Minute

// ExportService renders report models. Rendering never touches the network;
// archiving, when enabled, happens on the ArchiveWorker.
type ExportService struct {
	registry *export.Registry
	worker   *ArchiveWorker
	archive  storage.ArchiveRepository
	logRepo  domain.ExportLogRepository
}

// NewExportService creates a new ExportService. worker may be nil.
func NewExportService(registry *export.Registry, worker *ArchiveWorker) *ExportService {
	s := &ExportService{registry: registry, worker: worker}
	if worker != nil {
		s.archive = worker.archive
		s.logRepo = worker.logRepo
	}
	return s
}

// ArchiveEnabled reports whether artifacts are archived
func (s *ExportService) ArchiveEnabled() bool {
	return s.worker != nil
}

// Export renders m in format. Any renderer failure, including a panic, is
// reported as domain.ErrExportFailed.
func (s *ExportService) Export(m *report.Model, format domain.ExportFormat) (*export.Artifact, error) {
	if m == nil {
		log.Error().Str("format", string(format)).Msg("Export requested without a report")
		return nil, fmt.Errorf("%w: no report", domain.ErrExportFailed)
	}

	exporter, err := s.registry.Get(format)
	if err != nil {
		return nil, err
	}

	artifact, err := render(exporter, m)
	if err != nil {
		log.Error().Err(err).Str("topic", m.Topic).Str("format", string(format)).Msg("Export failed")
		return nil, err
	}

	log.Info().
		Str("topic", m.Topic).
		Str("format", string(format)).
		Int("rows", m.RowCount()).
		Int64("size", artifact.Size()).
		Msg("Report exported")

	if s.worker != nil {
		s.worker.Enqueue(ArchiveJob{
			Artifact:    artifact,
			Topic:       m.Topic,
			RowCount:    m.RowCount(),
			GeneratedAt: m.GeneratedAt,
		})
	}
	return artifact, nil
}

func render(exporter export.Exporter, m *report.Model) (artifact *export.Artifact, err error) {
	defer func() {
		if r := recover(); r != nil {
			artifact = nil
			err = fmt.Errorf("%w: %s renderer panicked: %v", domain.ErrExportFailed, exporter.Format(), r)
		}
	}()
	artifact, err = export.Export(exporter, m)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExportFailed, err)
	}
	return artifact, nil
}

// Recent lists archived exports with short-lived download links
func (s *ExportService) Recent(ctx context.Context, topic string, limit int) ([]*domain.ExportRecord, error) {
	if s.logRepo == nil {
		return []*domain.ExportRecord{}, nil
	}
	records, err := s.logRepo.ListRecent(ctx, topic, limit)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		url, err := s.archive.PresignURL(ctx, rec.ObjectKey, DownloadURLExpiry)
		if err != nil {
			log.Warn().Err(err).Str("object_key", rec.ObjectKey).Msg("Failed to presign archived export")
			continue
		}
		rec.DownloadURL = url
	}
	if records == nil {
		records = []*domain.ExportRecord{}
	}
	return records, nil
}
