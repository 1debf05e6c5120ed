package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/dafibh/vendas/vendas-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const exportLogSchema = `
CREATE TABLE IF NOT EXISTS export_log (
	id           UUID PRIMARY KEY,
	topic        TEXT NOT NULL,
	format       TEXT NOT NULL,
	filename     TEXT NOT NULL,
	object_key   TEXT NOT NULL,
	size_bytes   BIGINT NOT NULL,
	row_count    INTEGER NOT NULL,
	generated_at TIMESTAMPTZ NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS export_log_topic_created_idx ON export_log (topic, created_at DESC);
`

const insertExportLog = `
INSERT INTO export_log (id, topic, format, filename, object_key, size_bytes, row_count, generated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING created_at`

const listRecentExportLog = `
SELECT id, topic, format, filename, object_key, size_bytes, row_count, generated_at, created_at
FROM export_log
WHERE $1 = '' OR topic = $1
ORDER BY created_at DESC
LIMIT $2`

// ExportLogRepository implements domain.ExportLogRepository using PostgreSQL
type ExportLogRepository struct {
	pool *pgxpool.Pool
}

// NewExportLogRepository creates a new ExportLogRepository
func NewExportLogRepository(pool *pgxpool.Pool) *ExportLogRepository {
	return &ExportLogRepository{pool: pool}
}

// EnsureSchema creates the export_log table when missing
func (r *ExportLogRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, exportLogSchema); err != nil {
		return fmt.Errorf("create export_log: %w", err)
	}
	return nil
}

// Create inserts a record; a nil ID is generated
func (r *ExportLogRepository) Create(ctx context.Context, record *domain.ExportRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	var createdAt pgtype.Timestamptz
	err := r.pool.QueryRow(ctx, insertExportLog,
		uuidToPg(record.ID),
		record.Topic,
		string(record.Format),
		record.Filename,
		record.ObjectKey,
		record.SizeBytes,
		int32(record.RowCount),
		timeToPgTimestamptz(record.GeneratedAt),
	).Scan(&createdAt)
	if err != nil {
		return fmt.Errorf("insert export_log: %w", err)
	}
	record.CreatedAt = createdAt.Time
	return nil
}

// ListRecent returns the newest records, optionally restricted to one topic
func (r *ExportLogRepository) ListRecent(ctx context.Context, topic string, limit int) ([]*domain.ExportRecord, error) {
	rows, err := r.pool.Query(ctx, listRecentExportLog, topic, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("list export_log: %w", err)
	}
	return pgx.CollectRows(rows, scanExportRecord)
}

func scanExportRecord(row pgx.CollectableRow) (*domain.ExportRecord, error) {
	var (
		id          pgtype.UUID
		format      string
		rowCount    int32
		generatedAt pgtype.Timestamptz
		createdAt   pgtype.Timestamptz
		rec         domain.ExportRecord
	)
	err := row.Scan(&id, &rec.Topic, &format, &rec.Filename, &rec.ObjectKey, &rec.SizeBytes, &rowCount, &generatedAt, &createdAt)
	if err != nil {
		return nil, err
	}
	rec.ID = uuid.UUID(id.Bytes)
	rec.Format = domain.ExportFormat(format)
	rec.RowCount = int(rowCount)
	rec.GeneratedAt = generatedAt.Time
	rec.CreatedAt = createdAt.Time
	return &rec, nil
}

func uuidToPg(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: !t.IsZero()}
}
