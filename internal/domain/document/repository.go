package document

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/shared"
)

// FileRepository defines the interface for file metadata persistence
type FileRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*FileObject, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]FileObject, error)
	FindByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]FileObject, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, file *FileObject) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ObjectInfo describes a stored blob
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// ObjectStorage abstracts the blob bucket
type ObjectStorage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, *ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, error)
}
