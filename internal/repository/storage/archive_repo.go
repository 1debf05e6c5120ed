package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
)

// ArchiveRepository stores rendered export artifacts
type ArchiveRepository interface {
	Upload(ctx context.Context, objectKey string, data io.Reader, contentType string, size int64) (string, error)
	PresignURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
}

// ArchiveObjectKey builds "exports/<topic>/<yyyy>/<mm>/<uuid>_<filename>"
func ArchiveObjectKey(topic, filename string, generatedAt time.Time) string {
	return path.Join(
		"exports",
		topic,
		fmt.Sprintf("%04d", generatedAt.Year()),
		fmt.Sprintf("%02d", int(generatedAt.Month())),
		uuid.New().String()+"_"+path.Base(filename),
	)
}
