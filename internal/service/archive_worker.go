package service

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/dafibh/vendas/vendas-backend/internal/domain"
	"github.com/dafibh/vendas/vendas-backend/internal/export"
	"github.com/dafibh/vendas/vendas-backend/internal/repository/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ArchiveJob is one rendered artifact waiting to be archived
type ArchiveJob struct {
	Artifact    *export.Artifact
	Topic       string
	RowCount    int
	GeneratedAt time.Time
}

// ArchiveWorkerConfig holds configuration for the archive worker
type ArchiveWorkerConfig struct {
	QueueSize     int           // Jobs buffered before new ones are dropped
	UploadTimeout time.Duration // Per-job budget for upload and log write
}

// DefaultArchiveWorkerConfig returns sensible defaults
func DefaultArchiveWorkerConfig() ArchiveWorkerConfig {
	return ArchiveWorkerConfig{
		QueueSize:     32,
		UploadTimeout: 30 * time.Second,
	}
}

// ArchiveWorker uploads exported artifacts and records them in the export log
type ArchiveWorker struct {
	archive storage.ArchiveRepository
	logRepo domain.ExportLogRepository
	logger  zerolog.Logger
	timeout time.Duration
	jobs    chan ArchiveJob
	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
	running bool
}

// NewArchiveWorker creates a new archive worker
func NewArchiveWorker(
	archive storage.ArchiveRepository,
	logRepo domain.ExportLogRepository,
	logger zerolog.Logger,
	config ArchiveWorkerConfig,
) *ArchiveWorker {
	defaults := DefaultArchiveWorkerConfig()
	if config.QueueSize <= 0 {
		config.QueueSize = defaults.QueueSize
	}
	if config.UploadTimeout <= 0 {
		config.UploadTimeout = defaults.UploadTimeout
	}

	return &ArchiveWorker{
		archive: archive,
		logRepo: logRepo,
		logger:  logger.With().Str("component", "archive_worker").Logger(),
		timeout: config.UploadTimeout,
		jobs:    make(chan ArchiveJob, config.QueueSize),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// Start begins processing queued jobs
func (w *ArchiveWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info().Int("queue_size", cap(w.jobs)).Msg("Starting archive worker")

	go w.run(ctx)
}

// Stop drains the queue and waits for the worker to exit
func (w *ArchiveWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	w.logger.Info().Msg("Stopping archive worker")
	close(w.stopCh)
	<-w.doneCh
	w.logger.Info().Msg("Archive worker stopped")
}

// Enqueue hands a job to the worker without blocking. It reports false when
// the queue is full and the job was dropped.
func (w *ArchiveWorker) Enqueue(job ArchiveJob) bool {
	select {
	case w.jobs <- job:
		return true
	default:
		w.logger.Warn().
			Str("filename", job.Artifact.Filename).
			Msg("Archive queue full, dropping export")
		return false
	}
}

// IsRunning returns whether the worker is currently running
func (w *ArchiveWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *ArchiveWorker) run(ctx context.Context) {
	defer close(w.doneCh)
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			w.drain(ctx)
			return
		case job := <-w.jobs:
			w.process(ctx, job)
		}
	}
}

// drain processes whatever is already queued
func (w *ArchiveWorker) drain(ctx context.Context) {
	for {
		select {
		case job := <-w.jobs:
			w.process(ctx, job)
		default:
			return
		}
	}
}

func (w *ArchiveWorker) process(ctx context.Context, job ArchiveJob) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	start := time.Now()
	artifact := job.Artifact
	key := storage.ArchiveObjectKey(job.Topic, artifact.Filename, job.GeneratedAt)

	if _, err := w.archive.Upload(ctx, key, bytes.NewReader(artifact.Data), artifact.ContentType, artifact.Size()); err != nil {
		w.logger.Error().Err(err).Str("object_key", key).Msg("Failed to archive export")
		return
	}

	record := &domain.ExportRecord{
		ID:          uuid.New(),
		Topic:       job.Topic,
		Format:      artifact.Format,
		Filename:    artifact.Filename,
		ObjectKey:   key,
		SizeBytes:   artifact.Size(),
		RowCount:    job.RowCount,
		GeneratedAt: job.GeneratedAt,
	}
	if err := w.logRepo.Create(ctx, record); err != nil {
		w.logger.Error().Err(err).Str("object_key", key).Msg("Failed to record archived export")
		return
	}

	w.logger.Debug().
		Str("object_key", key).
		Int64("size", record.SizeBytes).
		Dur("elapsed", time.Since(start)).
		Msg("Archived export")
}
