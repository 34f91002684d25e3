package document

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/ledgerbook/backend/internal/application/common"
	"github.com/ledgerbook/backend/internal/domain/document"
	"github.com/ledgerbook/backend/internal/domain/shared"
	"github.com/ledgerbook/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const (
	DefaultMaxUploadSize     int64 = 10 << 20
	DefaultPresignExpiration       = 15 * time.Minute
)

// DefaultAllowedTypes is used when no allow-list is configured. SVG is left
// out because it can carry script.
var DefaultAllowedTypes = []string{
	"application/pdf",
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"image/heic",
	"text/plain",
	"text/csv",
	"application/zip",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"application/msword",
	"application/vnd.ms-excel",
}

// FileServiceConfig holds upload limits
type FileServiceConfig struct {
	MaxUploadSize     int64
	AllowedTypes      []string
	PresignExpiration time.Duration
}

// FileService stores uploaded files in object storage and keeps their metadata
type FileService struct {
	fileRepo       document.FileRepository
	storage        document.ObjectStorage
	eventPublisher shared.EventPublisher
	clock          clockwork.Clock
	config         FileServiceConfig
	allowed        map[string]bool
	logger         *zap.Logger
}

// NewFileService creates a new FileService. Zero config values fall back to the defaults.
func NewFileService(
	fileRepo document.FileRepository,
	storage document.ObjectStorage,
	eventPublisher shared.EventPublisher,
	clock clockwork.Clock,
	config FileServiceConfig,
	logger *zap.Logger,
) *FileService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if config.MaxUploadSize <= 0 {
		config.MaxUploadSize = DefaultMaxUploadSize
	}
	if config.PresignExpiration <= 0 {
		config.PresignExpiration = DefaultPresignExpiration
	}
	if len(config.AllowedTypes) == 0 {
		config.AllowedTypes = DefaultAllowedTypes
	}
	allowed := make(map[string]bool, len(config.AllowedTypes))
	for _, t := range config.AllowedTypes {
		allowed[strings.ToLower(strings.TrimSpace(t))] = true
	}
	return &FileService{
		fileRepo:       fileRepo,
		storage:        storage,
		eventPublisher: eventPublisher,
		clock:          clock,
		config:         config,
		allowed:        allowed,
		logger:         common.LoggerOrNop(logger),
	}
}

// MaxUploadSize returns the configured upload limit in bytes
func (s *FileService) MaxUploadSize() int64 {
	return s.config.MaxUploadSize
}

// Upload stores the content and records its metadata. The content type is
// sniffed from the bytes; the client's claim is ignored.
func (s *FileService) Upload(ctx context.Context, input UploadInput) (*FileResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "file", "upload")
	defer span.End()

	if input.Size > s.config.MaxUploadSize {
		return nil, s.tooLarge()
	}
	if input.Body == nil {
		return nil, shared.NewDomainError("EMPTY_FILE", "File is empty")
	}

	// One spare byte tells an exact-limit file apart from an oversized one
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(input.Body, s.config.MaxUploadSize+1))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if n > s.config.MaxUploadSize {
		return nil, s.tooLarge()
	}
	if n == 0 {
		return nil, shared.NewDomainError("EMPTY_FILE", "File is empty")
	}
	data := buf.Bytes()

	contentType, err := s.detectContentType(data)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(data)

	f, err := document.NewFileObject(input.FileName, contentType, n, hex.EncodeToString(sum[:]), s.clock.Now())
	if err != nil {
		return nil, err
	}
	if input.EntityType != "" || input.EntityID != nil {
		if input.EntityID == nil {
			return nil, shared.NewDomainError("INVALID_ENTITY_ID", "Entity ID is required with an entity type")
		}
		if err := f.AttachTo(input.EntityType, *input.EntityID); err != nil {
			return nil, err
		}
		f.ClearDomainEvents()
		f.AddDomainEvent(document.NewFileEvent(document.EventTypeFileUploaded, f))
	}
	f.SetUploader(shared.ActorID(ctx))
	telemetry.SetAttributes(span, telemetry.SpanAttrFileID, f.ID.String(), "file.size", n, "file.content_type", contentType)

	if err := s.storage.Put(ctx, f.StorageKey, bytes.NewReader(data), n, contentType); err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Failed to store file content", zap.String("storage_key", f.StorageKey), zap.Error(err))
		return nil, shared.NewDomainError("STORAGE_UNAVAILABLE", "File storage is unavailable")
	}
	if err := s.fileRepo.Save(ctx, f); err != nil {
		telemetry.RecordError(span, err)
		// Leave no orphaned blob behind
		if delErr := s.storage.Delete(context.WithoutCancel(ctx), f.StorageKey); delErr != nil {
			s.logger.Error("Failed to remove blob after metadata save failed",
				zap.String("storage_key", f.StorageKey), zap.Error(delErr))
		}
		return nil, err
	}

	common.PublishEvents(ctx, s.eventPublisher, s.logger, f)
	telemetry.SetOK(span)

	s.logger.Info("File uploaded",
		zap.String("file_id", f.ID.String()),
		zap.String("content_type", contentType),
		zap.Int64("size", n))

	response := ToFileResponse(f)
	return &response, nil
}

// GetByID retrieves file metadata
func (s *FileService) GetByID(ctx context.Context, id uuid.UUID) (*FileResponse, error) {
	f, err := s.fileRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToFileResponse(f)
	return &response, nil
}

// List retrieves a page of file metadata
func (s *FileService) List(ctx context.Context, filter FileListFilter) (shared.Paginated[FileResponse], error) {
	f := filter.Filter()
	common.SetFilter(&f, "entity_type", filter.EntityType)
	common.SetFilter(&f, "entity_id", filter.EntityID)
	common.SetFilter(&f, "content_type", filter.ContentType)

	files, err := s.fileRepo.FindAll(ctx, f)
	if err != nil {
		return shared.Paginated[FileResponse]{}, err
	}
	total, err := s.fileRepo.Count(ctx, f)
	if err != nil {
		return shared.Paginated[FileResponse]{}, err
	}
	return shared.NewPaginated(ToFileResponses(files), total, f.Page, f.PageSize), nil
}

// ListForEntity returns every file attached to one record
func (s *FileService) ListForEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]FileResponse, error) {
	files, err := s.fileRepo.FindByEntity(ctx, entityType, entityID)
	if err != nil {
		return nil, err
	}
	return ToFileResponses(files), nil
}

// DownloadURL returns a presigned GET link valid for the configured period
func (s *FileService) DownloadURL(ctx context.Context, id uuid.UUID) (*DownloadURLResponse, error) {
	f, err := s.fileRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	url, err := s.storage.PresignGet(ctx, f.StorageKey, s.config.PresignExpiration)
	if err != nil {
		s.logger.Error("Failed to presign download", zap.String("file_id", id.String()), zap.Error(err))
		return nil, shared.NewDomainError("STORAGE_UNAVAILABLE", "File storage is unavailable")
	}
	return &DownloadURLResponse{
		URL:       url,
		ExpiresAt: s.clock.Now().Add(s.config.PresignExpiration),
	}, nil
}

// Download opens the file content. The caller must close the reader.
func (s *FileService) Download(ctx context.Context, id uuid.UUID) (io.ReadCloser, *FileResponse, error) {
	f, err := s.fileRepo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	body, _, err := s.storage.Get(ctx, f.StorageKey)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("File content missing from storage", zap.String("file_id", id.String()))
			return nil, nil, shared.NewDomainError("NOT_FOUND", "File content not found")
		}
		return nil, nil, shared.NewDomainError("STORAGE_UNAVAILABLE", "File storage is unavailable")
	}
	response := ToFileResponse(f)
	return body, &response, nil
}

// Delete removes the metadata and then the blob. A blob that cannot be
// removed is logged and left for cleanup.
func (s *FileService) Delete(ctx context.Context, id uuid.UUID) error {
	f, err := s.fileRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.fileRepo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, f.StorageKey); err != nil {
		s.logger.Warn("Failed to delete file content",
			zap.String("file_id", id.String()),
			zap.String("storage_key", f.StorageKey),
			zap.Error(err))
	}

	f.ClearDomainEvents()
	f.AddDomainEvent(document.NewFileEvent(document.EventTypeFileDeleted, f))
	common.PublishEvents(ctx, s.eventPublisher, s.logger, f)
	return nil
}

func (s *FileService) detectContentType(data []byte) (string, error) {
	detected := mimetype.Detect(data)
	for m := detected; m != nil; m = m.Parent() {
		base := strings.ToLower(strings.TrimSpace(strings.SplitN(m.String(), ";", 2)[0]))
		if s.allowed[base] {
			return base, nil
		}
	}
	return "", shared.NewDomainError("UNSUPPORTED_FILE_TYPE",
		fmt.Sprintf("Files of type %s are not accepted", detected.String()))
}

func (s *FileService) tooLarge() error {
	return shared.NewDomainError("FILE_TOO_LARGE",
		fmt.Sprintf("File exceeds the %d MB upload limit", s.config.MaxUploadSize>>20))
}
