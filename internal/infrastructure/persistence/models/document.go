package models

import (
	"github.com/google/uuid"
	"github.com/ledgerbook/backend/internal/domain/document"
)

// FileObjectModel is the persistence model for uploaded file metadata.
type FileObjectModel struct {
	AggregateModel
	FileName    string     `gorm:"type:varchar(255);not null"`
	StorageKey  string     `gorm:"type:varchar(512);not null;uniqueIndex"`
	ContentType string     `gorm:"type:varchar(100);not null"`
	Size        int64      `gorm:"not null"`
	Checksum    string     `gorm:"type:varchar(64);not null"`
	EntityType  string     `gorm:"type:varchar(50);index:idx_file_entity,priority:1"`
	EntityID    *uuid.UUID `gorm:"type:uuid;index:idx_file_entity,priority:2"`
	UploadedBy  *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (FileObjectModel) TableName() string {
	return "files"
}

// ToDomain converts the persistence model to a domain FileObject.
func (m *FileObjectModel) ToDomain() *document.FileObject {
	return &document.FileObject{
		BaseAggregateRoot: m.ToAggregateRoot(),
		FileName:          m.FileName,
		StorageKey:        m.StorageKey,
		ContentType:       m.ContentType,
		Size:              m.Size,
		Checksum:          m.Checksum,
		EntityType:        m.EntityType,
		EntityID:          m.EntityID,
		UploadedBy:        m.UploadedBy,
	}
}

// FromDomain populates the persistence model from a domain FileObject.
func (m *FileObjectModel) FromDomain(f *document.FileObject) {
	m.FromDomainAggregateRoot(f.BaseAggregateRoot)
	m.FileName = f.FileName
	m.StorageKey = f.StorageKey
	m.ContentType = f.ContentType
	m.Size = f.Size
	m.Checksum = f.Checksum
	m.EntityType = f.EntityType
	m.EntityID = f.EntityID
	m.UploadedBy = f.UploadedBy
}

// FileObjectModelFromDomain creates a new persistence model from a domain FileObject.
func FileObjectModelFromDomain(f *document.FileObject) *FileObjectModel {
	m := &FileObjectModel{}
	m.FromDomain(f)
	return m
}
