package document

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/shared"
)

// StorageKeyPrefix is the bucket prefix all uploads live under
const StorageKeyPrefix = "files"

// Entity types a file may be attached to
const (
	EntityCustomerInvoice = "customer_invoice"
	EntityCustomerPayment = "customer_payment"
	EntityPartnerExpense  = "partner_expense"
	EntityTransaction     = "transaction"
	EntityCustomer        = "customer"
	EntityProject         = "project"
)

var attachableEntities = map[string]bool{
	EntityCustomerInvoice: true,
	EntityCustomerPayment: true,
	EntityPartnerExpense:  true,
	EntityTransaction:     true,
	EntityCustomer:        true,
	EntityProject:         true,
}

// IsAttachableEntity reports whether files can be linked to entityType
func IsAttachableEntity(entityType string) bool {
	return attachableEntities[entityType]
}

// FileObject is metadata for a blob kept in object storage
type FileObject struct {
	shared.BaseAggregateRoot
	FileName    string
	StorageKey  string
	ContentType string
	Size        int64
	Checksum    string
	EntityType  string
	EntityID    *uuid.UUID
	UploadedBy  *uuid.UUID
}

// NewFileObject creates file metadata with a fresh storage key
func NewFileObject(fileName, contentType string, size int64, checksum string, uploadedAt time.Time) (*FileObject, error) {
	fileName = SanitizeFileName(fileName)
	if fileName == "" {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "File name cannot be empty")
	}
	if size <= 0 {
		return nil, shared.NewDomainError("EMPTY_FILE", "File is empty")
	}
	if len(checksum) != 64 {
		return nil, shared.NewDomainError("INVALID_CHECKSUM", "Checksum must be a sha256 hex digest")
	}

	f := &FileObject{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		FileName:          fileName,
		ContentType:       contentType,
		Size:              size,
		Checksum:          strings.ToLower(checksum),
	}
	f.StorageKey = BuildStorageKey(f.ID, fileName, uploadedAt)
	f.AddDomainEvent(NewFileEvent(EventTypeFileUploaded, f))
	return f, nil
}

// AttachTo links the file to an entity
func (f *FileObject) AttachTo(entityType string, entityID uuid.UUID) error {
	if !IsAttachableEntity(entityType) {
		return shared.NewDomainError("INVALID_ENTITY_TYPE", fmt.Sprintf("Files cannot be attached to %s", entityType))
	}
	if entityID == uuid.Nil {
		return shared.NewDomainError("INVALID_ENTITY_ID", "Entity ID cannot be empty")
	}
	f.EntityType = entityType
	f.EntityID = &entityID
	f.Touch()
	return nil
}

// SetUploader records who uploaded the file
func (f *FileObject) SetUploader(userID uuid.UUID) {
	if userID == uuid.Nil {
		return
	}
	f.UploadedBy = &userID
	f.SetCreatedBy(userID)
}

// Extension returns the lower-cased file extension including the dot
func (f *FileObject) Extension() string {
	return strings.ToLower(filepath.Ext(f.FileName))
}

// BuildStorageKey returns files/YYYY/MM/<uuid><ext>
func BuildStorageKey(id uuid.UUID, fileName string, at time.Time) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return path.Join(StorageKeyPrefix, at.UTC().Format("2006"), at.UTC().Format("01"), id.String()+ext)
}

// SanitizeFileName strips directories and control characters from a client supplied name
func SanitizeFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(strings.TrimSpace(name))
	if name == "." || name == "/" {
		return ""
	}
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || r == '"' {
			return -1
		}
		return r
	}, name)
	if len(name) > 255 {
		ext := filepath.Ext(name)
		if len(ext) > 16 {
			ext = ""
		}
		name = name[:255-len(ext)] + ext
	}
	return name
}
