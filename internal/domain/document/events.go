package document

import (
	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/shared"
)

// AggregateTypeFile is the aggregate type for files
const AggregateTypeFile = "FileObject"

const (
	EventTypeFileUploaded = "FileUploaded"
	EventTypeFileDeleted  = "FileDeleted"
)

// FileEvent is published when a file is uploaded or removed
type FileEvent struct {
	shared.BaseDomainEvent
	FileName   string     `json:"file_name"`
	StorageKey string     `json:"storage_key"`
	Size       int64      `json:"size"`
	EntityType string     `json:"entity_type,omitempty"`
	EntityID   *uuid.UUID `json:"entity_id,omitempty"`
}

// NewFileEvent creates a file event of the given type
func NewFileEvent(eventType string, f *FileObject) *FileEvent {
	return &FileEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeFile, f.ID),
		FileName:        f.FileName,
		StorageKey:      f.StorageKey,
		Size:            f.Size,
		EntityType:      f.EntityType,
		EntityID:        f.EntityID,
	}
}
