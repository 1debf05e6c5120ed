package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dafibh/vendas/vendas-backend/internal/domain"
	"github.com/dafibh/vendas/vendas-backend/internal/export"
	"github.com/dafibh/vendas/vendas-backend/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJob(name string) ArchiveJob {
	return ArchiveJob{
		Artifact: &export.Artifact{
			Filename:    name,
			ContentType: "text/plain; charset=utf-8",
			Format:      domain.ExportFormatText,
			Data:        []byte("conteudo"),
		},
		Topic:       "vendas",
		RowCount:    3,
		GeneratedAt: time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC),
	}
}

func TestArchiveWorker_StartStop(t *testing.T) {
	worker := NewArchiveWorker(testutil.NewMockArchiveRepository(), testutil.NewMockExportLogRepository(), zerolog.Nop(), ArchiveWorkerConfig{})
	assert.False(t, worker.IsRunning())

	worker.Start(context.Background())
	assert.True(t, worker.IsRunning())
	worker.Start(context.Background())

	worker.Stop()
	assert.False(t, worker.IsRunning())
	worker.Stop()
}

func TestArchiveWorker_StopDrainsQueue(t *testing.T) {
	archive := testutil.NewMockArchiveRepository()
	logRepo := testutil.NewMockExportLogRepository()
	worker := NewArchiveWorker(archive, logRepo, zerolog.Nop(), ArchiveWorkerConfig{QueueSize: 4})

	// queued before the worker runs
	require.True(t, worker.Enqueue(testJob("a.txt")))
	require.True(t, worker.Enqueue(testJob("b.txt")))

	worker.Start(context.Background())
	worker.Stop()

	assert.Len(t, archive.Keys(), 2)
	recent, err := logRepo.ListRecent(context.Background(), "vendas", 0)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "b.txt", recent[0].Filename)
	assert.Equal(t, 3, recent[0].RowCount)
}

func TestArchiveWorker_DropsWhenQueueFull(t *testing.T) {
	worker := NewArchiveWorker(testutil.NewMockArchiveRepository(), testutil.NewMockExportLogRepository(), zerolog.Nop(), ArchiveWorkerConfig{QueueSize: 1})

	assert.True(t, worker.Enqueue(testJob("a.txt")))
	assert.False(t, worker.Enqueue(testJob("b.txt")))
}

func TestArchiveWorker_UploadFailureSkipsLog(t *testing.T) {
	archive := testutil.NewMockArchiveRepository()
	archive.UploadErr = errors.New("bucket unavailable")
	logRepo := testutil.NewMockExportLogRepository()
	worker := NewArchiveWorker(archive, logRepo, zerolog.Nop(), ArchiveWorkerConfig{})

	worker.Enqueue(testJob("a.txt"))
	worker.Start(context.Background())
	worker.Stop()

	assert.Empty(t, archive.Keys())
	assert.Empty(t, logRepo.Records)
}
