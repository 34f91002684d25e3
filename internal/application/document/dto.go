package document

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/application/common"
	"github.com/ledgerbook/backend/internal/domain/document"
)

// UploadInput is a file received from a client
type UploadInput struct {
	FileName string
	Body     io.Reader
	// Size is the size the client declared, or 0 when unknown
	Size       int64
	EntityType string
	EntityID   *uuid.UUID
}

// FileListFilter filters the file list
type FileListFilter struct {
	common.ListQuery
	EntityType  string `form:"entity_type" binding:"omitempty,max=50"`
	EntityID    string `form:"entity_id" binding:"omitempty,uuid"`
	ContentType string `form:"content_type" binding:"omitempty,max=100"`
}

// FileResponse is file metadata returned to clients. The storage key stays internal.
type FileResponse struct {
	ID          uuid.UUID  `json:"id"`
	FileName    string     `json:"file_name"`
	ContentType string     `json:"content_type"`
	Size        int64      `json:"size"`
	Checksum    string     `json:"checksum"`
	EntityType  string     `json:"entity_type,omitempty"`
	EntityID    *uuid.UUID `json:"entity_id,omitempty"`
	UploadedBy  *uuid.UUID `json:"uploaded_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// DownloadURLResponse is a presigned link to the file content
type DownloadURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ToFileResponse converts file metadata to its response
func ToFileResponse(f *document.FileObject) FileResponse {
	return FileResponse{
		ID:          f.ID,
		FileName:    f.FileName,
		ContentType: f.ContentType,
		Size:        f.Size,
		Checksum:    f.Checksum,
		EntityType:  f.EntityType,
		EntityID:    f.EntityID,
		UploadedBy:  f.UploadedBy,
		CreatedAt:   f.CreatedAt,
	}
}

// ToFileResponses converts a slice of files
func ToFileResponses(files []document.FileObject) []FileResponse {
	out := make([]FileResponse, len(files))
	for i := range files {
		out[i] = ToFileResponse(&files[i])
	}
	return out
}
